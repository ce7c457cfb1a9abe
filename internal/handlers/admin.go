package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wrenchbase/wrenchbase/internal/auth"
	"github.com/wrenchbase/wrenchbase/internal/models"
	"github.com/wrenchbase/wrenchbase/internal/search"
	"github.com/wrenchbase/wrenchbase/internal/services"
	pkghttp "github.com/wrenchbase/wrenchbase/pkg/http"
)

// AdminLocationService defines the admin-facing slice of the location
// workflow
type AdminLocationService interface {
	Verify(ctx context.Context, requestID string) (*models.LocationRequest, []search.Place, error)
	Approve(ctx context.Context, requestID, adminID string, selectedLocation map[string]any) (*services.ApproveResult, error)
	Reject(ctx context.Context, requestID, adminID, reason string) (*models.LocationRequest, error)
	RemoveLocation(ctx context.Context, mechanicID string) error
	ListRequests(ctx context.Context, status string) ([]*models.RequestWithMechanic, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// AdminHandler serves the admin endpoints: request triage, the decision
// operations, and the dashboard.
type AdminHandler struct {
	locations AdminLocationService
	directory MechanicDirectoryService
}

func NewAdminHandler(locations AdminLocationService, directory MechanicDirectoryService) *AdminHandler {
	return &AdminHandler{
		locations: locations,
		directory: directory,
	}
}

// Request/Response DTOs

// ApproveRequest represents the request body for an approval. The
// selected location is one of the candidates from the verify step; absent
// means approve without a provider match.
type ApproveRequest struct {
	SelectedLocation map[string]any `json:"selected_location"`
}

// RejectRequest represents the request body for a rejection
type RejectRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

// VerifyResponse pairs the request under review with provider candidates
type VerifyResponse struct {
	Request    *LocationRequestResponse `json:"request"`
	Candidates []search.Place           `json:"candidates"`
}

// ApproveResponse carries the terminal request and the published payload
type ApproveResponse struct {
	Request      *LocationRequestResponse `json:"request"`
	LocationData map[string]any           `json:"location_data"`
}

// ListPendingRequests returns requests awaiting a decision
func (h *AdminHandler) ListPendingRequests(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, models.StatusPending)
}

// ListAllRequests returns the full request history across mechanics
func (h *AdminHandler) ListAllRequests(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, r.URL.Query().Get("status"))
}

func (h *AdminHandler) listRequests(w http.ResponseWriter, r *http.Request, status string) {
	requests, err := h.locations.ListRequests(r.Context(), status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]*AdminRequestResponse, len(requests))
	for i, req := range requests {
		out[i] = adminRequestToResponse(req)
	}
	pkghttp.WriteJSON(w, http.StatusOK, out)
}

// VerifyRequest previews provider candidates for a request without
// changing its state
func (h *AdminHandler) VerifyRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")
	if requestID == "" {
		pkghttp.WriteBadRequest(w, "Request ID is required")
		return
	}

	req, candidates, err := h.locations.Verify(r.Context(), requestID)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrNotConfigured):
			pkghttp.WriteInternalError(w, "Place search is not configured")
		case errors.Is(err, models.ErrUpstream):
			pkghttp.WriteBadGateway(w, "Place search provider unavailable")
		default:
			writeServiceError(w, err)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &VerifyResponse{
		Request:    requestModelToResponse(req),
		Candidates: candidates,
	})
}

// ApproveRequest approves a pending request and publishes the location
func (h *AdminHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if requestID == "" {
		pkghttp.WriteBadRequest(w, "Request ID is required")
		return
	}

	// The body is optional: no selected location means approve with the
	// fallback payload.
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := h.locations.Approve(r.Context(), requestID, session.UserID, req.SelectedLocation)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Location request not found")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Request has already been processed")
		default:
			writeServiceError(w, err)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &ApproveResponse{
		Request:      requestModelToResponse(result.Request),
		LocationData: result.LocationData,
	})
}

// RejectRequest rejects a pending request
func (h *AdminHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if requestID == "" {
		pkghttp.WriteBadRequest(w, "Request ID is required")
		return
	}

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.locations.Reject(r.Context(), requestID, session.UserID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Location request not found")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Request has already been processed")
		default:
			writeServiceError(w, err)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, requestModelToResponse(updated))
}

// RemoveMechanicLocation unpublishes a mechanic's location
func (h *AdminHandler) RemoveMechanicLocation(w http.ResponseWriter, r *http.Request) {
	mechanicID := chi.URLParam(r, "mechanicID")
	if mechanicID == "" {
		pkghttp.WriteBadRequest(w, "Mechanic ID is required")
		return
	}

	if err := h.locations.RemoveLocation(r.Context(), mechanicID); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Location removed"})
}

// ListMechanics returns the directory with per-mechanic pending counts
func (h *AdminHandler) ListMechanics(w http.ResponseWriter, r *http.Request) {
	mechanics, err := h.directory.ListMechanics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, mechanicsToResponse(mechanics, true))
}

// GetStats returns the dashboard counters
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.locations.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, stats)
}
