package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wrenchbase/wrenchbase/internal/auth"
	"github.com/wrenchbase/wrenchbase/internal/models"
	pkghttp "github.com/wrenchbase/wrenchbase/pkg/http"
)

// MechanicDirectoryService defines the interface for the public mechanic
// directory
type MechanicDirectoryService interface {
	ListMechanics(ctx context.Context) ([]*models.MechanicWithLocation, error)
}

// ReviewServiceInterface defines the interface for review business logic
type ReviewServiceInterface interface {
	SubmitReview(ctx context.Context, userID, mechanicID string, rating int, comment string) (*models.Review, error)
	GetMechanicReviews(ctx context.Context, mechanicID string) (*models.ReviewSummary, error)
	GetUserReviews(ctx context.Context, userID string) ([]*models.ReviewWithAuthor, error)
}

// UserHandler serves the customer-facing endpoints: browsing mechanics and
// writing reviews.
type UserHandler struct {
	directory MechanicDirectoryService
	reviews   ReviewServiceInterface
}

func NewUserHandler(directory MechanicDirectoryService, reviews ReviewServiceInterface) *UserHandler {
	return &UserHandler{
		directory: directory,
		reviews:   reviews,
	}
}

// SubmitReviewRequest represents the request body for posting a review
type SubmitReviewRequest struct {
	MechanicID string `json:"mechanic_id" validate:"required"`
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment    string `json:"comment" validate:"omitempty,max=2000"`
}

// ListMechanics returns every mechanic with their published location
func (h *UserHandler) ListMechanics(w http.ResponseWriter, r *http.Request) {
	mechanics, err := h.directory.ListMechanics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, mechanicsToResponse(mechanics, false))
}

// GetMechanicReviews returns a mechanic's reviews with the average rating
func (h *UserHandler) GetMechanicReviews(w http.ResponseWriter, r *http.Request) {
	mechanicID := chi.URLParam(r, "mechanicID")
	if mechanicID == "" {
		pkghttp.WriteBadRequest(w, "Mechanic ID is required")
		return
	}

	summary, err := h.reviews.GetMechanicReviews(r.Context(), mechanicID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, reviewSummaryToResponse(summary))
}

// SubmitReview creates or replaces the caller's review of a mechanic
func (h *UserHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	review, err := h.reviews.SubmitReview(r.Context(), session.UserID, req.MechanicID, req.Rating, req.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, &ReviewResponse{
		ID:         review.ID,
		UserID:     review.UserID,
		MechanicID: review.MechanicID,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt.Format(timestampFormat),
	})
}

// ListOwnReviews returns the reviews the caller has written
func (h *UserHandler) ListOwnReviews(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	reviews, err := h.reviews.GetUserReviews(r.Context(), session.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]*ReviewResponse, len(reviews))
	for i, review := range reviews {
		out[i] = reviewWithAuthorToResponse(review)
	}
	pkghttp.WriteJSON(w, http.StatusOK, out)
}
