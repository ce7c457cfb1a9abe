package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/wrenchbase/wrenchbase/internal/models"
	pkghttp "github.com/wrenchbase/wrenchbase/pkg/http"
)

// writeServiceError translates a service-layer sentinel into the JSON
// error response for its status code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Authentication failed")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Insufficient permissions")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource conflict")
	case errors.Is(err, models.ErrUpstream):
		pkghttp.WriteBadGateway(w, "Upstream provider unavailable")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// Response DTOs shared across handlers

const timestampFormat = time.RFC3339

// UserResponse represents an account in HTTP responses. The password hash
// never leaves the service layer.
type UserResponse struct {
	ID          string         `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	Role        string         `json:"role"`
	FullName    string         `json:"full_name"`
	ProfileData map[string]any `json:"profile_data,omitempty"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
		FullName:    user.FullName,
		ProfileData: user.ProfileData,
		CreatedAt:   user.CreatedAt.Format(timestampFormat),
		UpdatedAt:   user.UpdatedAt.Format(timestampFormat),
	}
}

// LocationRequestResponse represents a location request in HTTP responses
type LocationRequestResponse struct {
	ID              string         `json:"id"`
	MechanicID      string         `json:"mechanic_id"`
	BusinessName    string         `json:"business_name"`
	Address         string         `json:"address"`
	Status          string         `json:"status"`
	LocationData    map[string]any `json:"location_data,omitempty"`
	RequestedAt     string         `json:"requested_at"`
	ProcessedAt     *string        `json:"processed_at,omitempty"`
	ProcessedBy     *string        `json:"processed_by,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
}

func requestModelToResponse(req *models.LocationRequest) *LocationRequestResponse {
	resp := &LocationRequestResponse{
		ID:              req.ID,
		MechanicID:      req.MechanicID,
		BusinessName:    req.BusinessName,
		Address:         req.Address,
		Status:          req.Status,
		LocationData:    req.LocationData,
		RequestedAt:     req.RequestedAt.Format(timestampFormat),
		ProcessedBy:     req.ProcessedBy,
		RejectionReason: req.RejectionReason,
	}
	if req.ProcessedAt != nil {
		s := req.ProcessedAt.Format(timestampFormat)
		resp.ProcessedAt = &s
	}
	return resp
}

// AdminRequestResponse adds the requester's identity for admin listings
type AdminRequestResponse struct {
	LocationRequestResponse
	MechanicUsername string `json:"mechanic_username"`
	MechanicFullName string `json:"mechanic_full_name"`
	MechanicEmail    string `json:"mechanic_email"`
}

func adminRequestToResponse(req *models.RequestWithMechanic) *AdminRequestResponse {
	return &AdminRequestResponse{
		LocationRequestResponse: *requestModelToResponse(&req.LocationRequest),
		MechanicUsername:        req.MechanicUsername,
		MechanicFullName:        req.MechanicFullName,
		MechanicEmail:           req.MechanicEmail,
	}
}

// LocationResponse represents a published mechanic location
type LocationResponse struct {
	MechanicID   string         `json:"mechanic_id"`
	BusinessName string         `json:"business_name"`
	Address      string         `json:"address"`
	LocationData map[string]any `json:"location_data,omitempty"`
	UpdatedAt    string         `json:"updated_at"`
}

func locationModelToResponse(loc *models.MechanicLocation) *LocationResponse {
	return &LocationResponse{
		MechanicID:   loc.MechanicID,
		BusinessName: loc.BusinessName,
		Address:      loc.Address,
		LocationData: loc.LocationData,
		UpdatedAt:    loc.UpdatedAt.Format(timestampFormat),
	}
}

// NotificationResponse represents an inbox entry
type NotificationResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

func notificationModelToResponse(n *models.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Severity:  n.Severity,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.Format(timestampFormat),
	}
}

// ReviewResponse represents a review with the reviewer's display identity
type ReviewResponse struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	MechanicID     string `json:"mechanic_id"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment,omitempty"`
	AuthorUsername string `json:"author_username,omitempty"`
	AuthorFullName string `json:"author_full_name,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func reviewWithAuthorToResponse(review *models.ReviewWithAuthor) *ReviewResponse {
	return &ReviewResponse{
		ID:             review.ID,
		UserID:         review.UserID,
		MechanicID:     review.MechanicID,
		Rating:         review.Rating,
		Comment:        review.Comment,
		AuthorUsername: review.AuthorUsername,
		AuthorFullName: review.AuthorFullName,
		CreatedAt:      review.CreatedAt.Format(timestampFormat),
	}
}

// ReviewSummaryResponse is a review listing with its computed average
type ReviewSummaryResponse struct {
	Reviews       []*ReviewResponse `json:"reviews"`
	TotalReviews  int               `json:"total_reviews"`
	AverageRating float64           `json:"average_rating"`
}

func reviewSummaryToResponse(summary *models.ReviewSummary) *ReviewSummaryResponse {
	reviews := make([]*ReviewResponse, len(summary.Reviews))
	for i, review := range summary.Reviews {
		reviews[i] = reviewWithAuthorToResponse(review)
	}
	return &ReviewSummaryResponse{
		Reviews:       reviews,
		TotalReviews:  summary.TotalReviews,
		AverageRating: summary.AverageRating,
	}
}

// MechanicResponse is the directory view of a mechanic. PendingRequests is
// populated only on the admin listing.
type MechanicResponse struct {
	ID              string            `json:"id"`
	Username        string            `json:"username"`
	FullName        string            `json:"full_name"`
	ProfileData     map[string]any    `json:"profile_data,omitempty"`
	Location        *LocationResponse `json:"location"`
	PendingRequests *int              `json:"pending_requests,omitempty"`
}

func mechanicToResponse(m *models.MechanicWithLocation, includePending bool) *MechanicResponse {
	resp := &MechanicResponse{
		ID:          m.ID,
		Username:    m.Username,
		FullName:    m.FullName,
		ProfileData: m.ProfileData,
	}
	if m.Location != nil {
		resp.Location = locationModelToResponse(m.Location)
	}
	if includePending {
		pending := m.PendingRequests
		resp.PendingRequests = &pending
	}
	return resp
}

func mechanicsToResponse(mechanics []*models.MechanicWithLocation, includePending bool) []*MechanicResponse {
	out := make([]*MechanicResponse, len(mechanics))
	for i, m := range mechanics {
		out[i] = mechanicToResponse(m, includePending)
	}
	return out
}
