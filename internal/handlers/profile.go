package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wrenchbase/wrenchbase/internal/auth"
	"github.com/wrenchbase/wrenchbase/internal/models"
	"github.com/wrenchbase/wrenchbase/internal/services"
	pkghttp "github.com/wrenchbase/wrenchbase/pkg/http"
)

// ProfileServiceInterface defines the interface for profile business logic
type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, session *models.Session, update services.ProfileUpdate) (*models.User, error)
}

// ProfileHandler serves the profile endpoints shared by every role
type ProfileHandler struct {
	service ProfileServiceInterface
}

func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// UpdateProfileRequest represents the request body for a profile update.
// All fields are optional; empty fields are left unchanged.
type UpdateProfileRequest struct {
	Username    string         `json:"username" validate:"omitempty,min=3,max=30"`
	FullName    string         `json:"full_name" validate:"omitempty,min=1,max=100"`
	Email       string         `json:"email" validate:"omitempty,email"`
	ProfileData map[string]any `json:"profile_data"`
}

// GetProfile returns the authenticated user's account
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.service.GetProfile(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}

// UpdateProfile applies a partial update to the authenticated account
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), session, services.ProfileUpdate{
		Username:    req.Username,
		FullName:    req.FullName,
		Email:       req.Email,
		ProfileData: req.ProfileData,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(user))
}
