package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wrenchbase/wrenchbase/internal/database"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

const requestColumns = `id, mechanic_id, business_name, address, status, location_data, requested_at, processed_at, processed_by, rejection_reason`

type LocationRequestRepository struct {
	db *database.DB
}

func NewLocationRequestRepository(db *database.DB) *LocationRequestRepository {
	return &LocationRequestRepository{db: db}
}

func scanRequestRow(scanner rowScanner) (*models.LocationRequest, error) {
	var req models.LocationRequest
	err := scanner.Scan(
		&req.ID, &req.MechanicID, &req.BusinessName, &req.Address,
		&req.Status, &req.LocationData, &req.RequestedAt,
		&req.ProcessedAt, &req.ProcessedBy, &req.RejectionReason,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &req, nil
}

func scanRequestRows(rows pgx.Rows) ([]*models.LocationRequest, error) {
	defer rows.Close()

	requests := make([]*models.LocationRequest, 0)
	for rows.Next() {
		req, err := scanRequestRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return requests, nil
}

// Create inserts a pending request. The partial unique index on
// (mechanic_id) WHERE status = 'pending' turns a concurrent duplicate into
// models.ErrConflict.
func (r *LocationRequestRepository) Create(ctx context.Context, req *models.LocationRequest) (*models.LocationRequest, error) {
	req.ID = uuid.New().String()
	req.Status = models.StatusPending
	req.RequestedAt = time.Now()

	query := `
		INSERT INTO location_requests (id, mechanic_id, business_name, address, status, requested_at, rejection_reason)
		VALUES ($1, $2, $3, $4, $5, $6, '')
		RETURNING ` + requestColumns

	return scanRequestRow(r.db.Pool.QueryRow(ctx, query,
		req.ID, req.MechanicID, req.BusinessName, req.Address, req.Status, req.RequestedAt,
	))
}

func (r *LocationRequestRepository) GetByID(ctx context.Context, id string) (*models.LocationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM location_requests WHERE id = $1`
	return scanRequestRow(r.db.Pool.QueryRow(ctx, query, id))
}

// HasPending reports whether the mechanic already has a request awaiting a
// decision.
func (r *LocationRequestRepository) HasPending(ctx context.Context, mechanicID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM location_requests WHERE mechanic_id = $1 AND status = $2)`,
		mechanicID, models.StatusPending,
	).Scan(&exists)
	if err != nil {
		return false, database.MapPostgresError(err)
	}
	return exists, nil
}

// ListByMechanic returns a mechanic's request history, newest first.
// Served by the (mechanic_id, requested_at DESC) index.
func (r *LocationRequestRepository) ListByMechanic(ctx context.Context, mechanicID string) ([]*models.LocationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM location_requests WHERE mechanic_id = $1 ORDER BY requested_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, mechanicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query location requests: %w", err)
	}

	return scanRequestRows(rows)
}

// ListWithMechanics returns requests joined with requester identity for the
// admin views. An empty status means every status.
func (r *LocationRequestRepository) ListWithMechanics(ctx context.Context, status string) ([]*models.RequestWithMechanic, error) {
	query := `
		SELECT r.id, r.mechanic_id, r.business_name, r.address, r.status, r.location_data,
		       r.requested_at, r.processed_at, r.processed_by, r.rejection_reason,
		       u.username, u.full_name, u.email
		FROM location_requests r
		JOIN users u ON u.id = r.mechanic_id
		WHERE ($1 = '' OR r.status = $1)
		ORDER BY r.requested_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query location requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.RequestWithMechanic, 0)
	for rows.Next() {
		var req models.RequestWithMechanic
		err := rows.Scan(
			&req.ID, &req.MechanicID, &req.BusinessName, &req.Address,
			&req.Status, &req.LocationData, &req.RequestedAt,
			&req.ProcessedAt, &req.ProcessedBy, &req.RejectionReason,
			&req.MechanicUsername, &req.MechanicFullName, &req.MechanicEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return requests, nil
}

// MarkProcessed moves a pending request to a terminal status, stamping the
// acting admin and decision time. The WHERE status = 'pending' guard makes
// the transition conditional: zero rows affected means the request was
// already terminal, reported as models.ErrConflict.
func (r *LocationRequestRepository) MarkProcessed(ctx context.Context, q database.Querier, id, status string, locationData map[string]any, processedBy, rejectionReason string) (*models.LocationRequest, error) {
	query := `
		UPDATE location_requests
		SET status = $1, location_data = $2, processed_at = $3, processed_by = $4, rejection_reason = $5
		WHERE id = $6 AND status = $7
		RETURNING ` + requestColumns

	req, err := scanRequestRow(q.QueryRow(ctx, query,
		status, locationData, time.Now(), processedBy, rejectionReason, id, models.StatusPending,
	))
	if errors.Is(err, models.ErrNotFound) {
		// Row exists but is no longer pending, or was never there; the
		// service resolves which by loading the request first.
		return nil, models.ErrConflict
	}
	return req, err
}

func (r *LocationRequestRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM location_requests WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}
