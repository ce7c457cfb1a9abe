package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wrenchbase/wrenchbase/internal/auth"
	"github.com/wrenchbase/wrenchbase/internal/models"
	pkghttp "github.com/wrenchbase/wrenchbase/pkg/http"
)

// MechanicLocationService defines the mechanic-facing slice of the
// location workflow
type MechanicLocationService interface {
	Submit(ctx context.Context, mechanicID, businessName, address string) (*models.LocationRequest, error)
	GetMechanicLocation(ctx context.Context, mechanicID string) (*models.MechanicLocation, error)
	ListRequestsByMechanic(ctx context.Context, mechanicID string) ([]*models.LocationRequest, error)
}

// NotificationServiceInterface defines the interface for inbox operations
type NotificationServiceInterface interface {
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID string) error
}

// MechanicHandler serves the mechanic-facing endpoints: the location
// workflow from the requester's side, the inbox, and received reviews.
type MechanicHandler struct {
	locations     MechanicLocationService
	notifications NotificationServiceInterface
	reviews       ReviewServiceInterface
}

func NewMechanicHandler(locations MechanicLocationService, notifications NotificationServiceInterface, reviews ReviewServiceInterface) *MechanicHandler {
	return &MechanicHandler{
		locations:     locations,
		notifications: notifications,
		reviews:       reviews,
	}
}

// SubmitLocationRequest represents the request body for a location request
type SubmitLocationRequest struct {
	BusinessName string `json:"business_name" validate:"omitempty,max=200"`
	Address      string `json:"address" validate:"required,min=1,max=500"`
}

// GetLocation returns the caller's published location, or null if none
func (h *MechanicHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	loc, err := h.locations.GetMechanicLocation(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if loc == nil {
		pkghttp.WriteJSON(w, http.StatusOK, nil)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, locationModelToResponse(loc))
}

// SubmitRequest files a new location request for the caller
func (h *MechanicHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req SubmitLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	created, err := h.locations.Submit(r.Context(), session.UserID, req.BusinessName, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			pkghttp.WriteBadRequest(w, "Address is required")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A pending location request already exists")
		default:
			writeServiceError(w, err)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, requestModelToResponse(created))
}

// ListRequests returns the caller's request history, newest first
func (h *MechanicHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	requests, err := h.locations.ListRequestsByMechanic(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]*LocationRequestResponse, len(requests))
	for i, req := range requests {
		out[i] = requestModelToResponse(req)
	}
	pkghttp.WriteJSON(w, http.StatusOK, out)
}

// ListNotifications returns the caller's inbox, newest first
func (h *MechanicHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	notifications, err := h.notifications.ListNotifications(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		out[i] = notificationModelToResponse(n)
	}
	pkghttp.WriteJSON(w, http.StatusOK, out)
}

// MarkNotificationsRead flags the caller's whole inbox as read
func (h *MechanicHandler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.notifications.MarkNotificationsRead(r.Context(), session.UserID); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Notifications marked read"})
}

// ListReceivedReviews returns the reviews written about the caller with
// the computed average
func (h *MechanicHandler) ListReceivedReviews(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	summary, err := h.reviews.GetMechanicReviews(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, reviewSummaryToResponse(summary))
}
