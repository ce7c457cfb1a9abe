package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/wrenchbase/wrenchbase/internal/database"
	"github.com/wrenchbase/wrenchbase/internal/models"
	"github.com/wrenchbase/wrenchbase/internal/search"
)

// LocationRequestRepository defines the interface for request data access
type LocationRequestRepository interface {
	Create(ctx context.Context, req *models.LocationRequest) (*models.LocationRequest, error)
	GetByID(ctx context.Context, id string) (*models.LocationRequest, error)
	HasPending(ctx context.Context, mechanicID string) (bool, error)
	ListByMechanic(ctx context.Context, mechanicID string) ([]*models.LocationRequest, error)
	ListWithMechanics(ctx context.Context, status string) ([]*models.RequestWithMechanic, error)
	MarkProcessed(ctx context.Context, q database.Querier, id, status string, locationData map[string]any, processedBy, rejectionReason string) (*models.LocationRequest, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

// MechanicLocationRepository defines the interface for the published
// location projection
type MechanicLocationRepository interface {
	GetByMechanic(ctx context.Context, mechanicID string) (*models.MechanicLocation, error)
	Upsert(ctx context.Context, q database.Querier, loc *models.MechanicLocation) (*models.MechanicLocation, error)
	Delete(ctx context.Context, mechanicID string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// SearchProvider is the external place-search lookup used during verify
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]search.Place, error)
}

// TxRunner runs a function inside one database transaction
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error
}

// ApproveResult is the outcome of an approval: the terminal request plus
// the payload written into the MechanicLocation projection.
type ApproveResult struct {
	Request      *models.LocationRequest
	LocationData map[string]any
}

// LocationService manages the lifecycle of location requests: submission
// by mechanics, admin verification against the search provider, the
// approve/reject decision, and the published-location projection.
type LocationService struct {
	requests      LocationRequestRepository
	locations     MechanicLocationRepository
	notifications NotificationRepository
	users         UserRepository
	provider      SearchProvider
	email         EmailService
	tx            TxRunner
	logger        *slog.Logger
}

func NewLocationService(
	requests LocationRequestRepository,
	locations MechanicLocationRepository,
	notifications NotificationRepository,
	users UserRepository,
	provider SearchProvider,
	email EmailService,
	tx TxRunner,
	logger *slog.Logger,
) *LocationService {
	return &LocationService{
		requests:      requests,
		locations:     locations,
		notifications: notifications,
		users:         users,
		provider:      provider,
		email:         email,
		tx:            tx,
		logger:        logger,
	}
}

// Submit creates a pending location request for a mechanic. A mechanic
// holds at most one pending request at a time.
func (s *LocationService) Submit(ctx context.Context, mechanicID, businessName, address string) (*models.LocationRequest, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, models.ErrValidation
	}

	pending, err := s.requests.HasPending(ctx, mechanicID)
	if err != nil {
		s.logger.Error("failed to check pending requests", slog.String("mechanic_id", mechanicID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if pending {
		return nil, models.ErrConflict
	}

	req, err := s.requests.Create(ctx, &models.LocationRequest{
		MechanicID:   mechanicID,
		BusinessName: strings.TrimSpace(businessName),
		Address:      address,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Concurrent submission; the partial unique index won the race.
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create location request", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("location request submitted",
		slog.String("request_id", req.ID),
		slog.String("mechanic_id", mechanicID),
	)
	return req, nil
}

// Verify previews provider candidates for a request without touching its
// state. The query prefers the business name over the address.
func (s *LocationService) Verify(ctx context.Context, requestID string) (*models.LocationRequest, []search.Place, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, models.ErrNotFound
		}
		s.logger.Error("failed to get location request", slog.String("request_id", requestID), slog.Any("error", err))
		return nil, nil, models.ErrInternalServer
	}

	results, err := s.provider.Search(ctx, req.SearchQuery())
	if err != nil {
		// ErrUpstream and ErrNotConfigured pass through untranslated so
		// the surface can distinguish them.
		return nil, nil, err
	}

	return req, results, nil
}

// Approve transitions a pending request to approved and publishes the
// resolved payload as the mechanic's location. The status transition and
// the projection upsert commit or fail as one transaction.
func (s *LocationService) Approve(ctx context.Context, requestID, adminID string, selectedLocation map[string]any) (*ApproveResult, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get location request", slog.String("request_id", requestID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !req.IsPending() {
		return nil, models.ErrConflict
	}

	locationData := selectedLocation
	if locationData == nil {
		locationData = req.FallbackLocationData()
	}

	businessName := stringField(locationData, "title", req.BusinessName)
	address := stringField(locationData, "address", req.Address)

	var updated *models.LocationRequest
	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		updated, err = s.requests.MarkProcessed(ctx, tx, requestID, models.StatusApproved, locationData, adminID, "")
		if err != nil {
			return err
		}

		_, err = s.locations.Upsert(ctx, tx, &models.MechanicLocation{
			MechanicID:   req.MechanicID,
			BusinessName: businessName,
			Address:      address,
			LocationData: locationData,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to approve location request", slog.String("request_id", requestID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("location request approved",
		slog.String("request_id", requestID),
		slog.String("mechanic_id", req.MechanicID),
		slog.String("admin_id", adminID),
	)

	s.notifyDecision(ctx, req.MechanicID, models.SeverityInfo,
		fmt.Sprintf("Your location request for %q has been approved.", address),
		"Location request approved",
	)

	return &ApproveResult{Request: updated, LocationData: locationData}, nil
}

// Reject transitions a pending request to rejected. No location effect.
func (s *LocationService) Reject(ctx context.Context, requestID, adminID, reason string) (*models.LocationRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get location request", slog.String("request_id", requestID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if !req.IsPending() {
		return nil, models.ErrConflict
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = models.DefaultRejectionReason
	}

	var updated *models.LocationRequest
	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		updated, err = s.requests.MarkProcessed(ctx, tx, requestID, models.StatusRejected, nil, adminID, reason)
		return err
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to reject location request", slog.String("request_id", requestID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("location request rejected",
		slog.String("request_id", requestID),
		slog.String("admin_id", adminID),
	)

	s.notifyDecision(ctx, req.MechanicID, models.SeverityWarning,
		fmt.Sprintf("Your location request has been rejected: %s", reason),
		"Location request rejected",
	)

	return updated, nil
}

// RemoveLocation unpublishes a mechanic's location and warns them. The
// delete and the notification are independent effects: notify failure
// never rolls back the delete.
func (s *LocationService) RemoveLocation(ctx context.Context, mechanicID string) error {
	deleted, err := s.locations.Delete(ctx, mechanicID)
	if err != nil {
		s.logger.Error("failed to delete mechanic location", slog.String("mechanic_id", mechanicID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if _, err := s.notifications.Create(ctx, &models.Notification{
		UserID:   mechanicID,
		Message:  "Your business location and name have been removed by the administrator.",
		Severity: models.SeverityWarning,
	}); err != nil {
		s.logger.Error("failed to notify mechanic of removal",
			slog.String("mechanic_id", mechanicID),
			slog.Any("error", err))
	}

	s.logger.Info("mechanic location removed",
		slog.String("mechanic_id", mechanicID),
		slog.Bool("existed", deleted),
	)
	return nil
}

// GetMechanicLocation returns the published location, or nil when the
// mechanic has none.
func (s *LocationService) GetMechanicLocation(ctx context.Context, mechanicID string) (*models.MechanicLocation, error) {
	loc, err := s.locations.GetByMechanic(ctx, mechanicID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		s.logger.Error("failed to get mechanic location", slog.String("mechanic_id", mechanicID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return loc, nil
}

// ListRequestsByMechanic returns a mechanic's own request history.
func (s *LocationService) ListRequestsByMechanic(ctx context.Context, mechanicID string) ([]*models.LocationRequest, error) {
	requests, err := s.requests.ListByMechanic(ctx, mechanicID)
	if err != nil {
		s.logger.Error("failed to list location requests", slog.String("mechanic_id", mechanicID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return requests, nil
}

// ListRequests returns requests with requester identity for the admin
// views; status filters when non-empty.
func (s *LocationService) ListRequests(ctx context.Context, status string) ([]*models.RequestWithMechanic, error) {
	requests, err := s.requests.ListWithMechanics(ctx, status)
	if err != nil {
		s.logger.Error("failed to list location requests", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return requests, nil
}

// Stats computes the admin dashboard counters.
func (s *LocationService) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	counters := []struct {
		dest  *int
		count func(context.Context) (int, error)
	}{
		{&stats.TotalMechanics, func(ctx context.Context) (int, error) { return s.users.CountByRole(ctx, models.RoleMechanic) }},
		{&stats.TotalUsers, func(ctx context.Context) (int, error) { return s.users.CountByRole(ctx, models.RoleUser) }},
		{&stats.PendingRequests, func(ctx context.Context) (int, error) { return s.requests.CountByStatus(ctx, models.StatusPending) }},
		{&stats.ApprovedRequests, func(ctx context.Context) (int, error) { return s.requests.CountByStatus(ctx, models.StatusApproved) }},
		{&stats.RejectedRequests, func(ctx context.Context) (int, error) { return s.requests.CountByStatus(ctx, models.StatusRejected) }},
		{&stats.MechanicsWithLocation, s.locations.Count},
	}

	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			s.logger.Error("failed to compute stats", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		*c.dest = n
	}

	return stats, nil
}

// notifyDecision appends the inbox notification and sends the best-effort
// decision email. Neither failure surfaces to the caller.
func (s *LocationService) notifyDecision(ctx context.Context, mechanicID, severity, message, subject string) {
	if _, err := s.notifications.Create(ctx, &models.Notification{
		UserID:   mechanicID,
		Message:  message,
		Severity: severity,
	}); err != nil {
		s.logger.Error("failed to create decision notification",
			slog.String("mechanic_id", mechanicID),
			slog.Any("error", err))
	}

	mechanic, err := s.users.GetByID(ctx, mechanicID)
	if err != nil {
		s.logger.Error("failed to load mechanic for decision email",
			slog.String("mechanic_id", mechanicID),
			slog.Any("error", err))
		return
	}

	if err := s.email.SendDecisionEmail(ctx, mechanic.Email, subject, message); err != nil {
		s.logger.Error("failed to send decision email",
			slog.String("mechanic_id", mechanicID),
			slog.Any("error", err))
	}
}

// stringField reads a string value out of an opaque payload, falling back
// when the key is absent or not a string.
func stringField(data map[string]any, key, fallback string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
