package handlers

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrenchbase/wrenchbase/internal/models"
	"github.com/wrenchbase/wrenchbase/internal/services"
)

// ============================================================================
// Directory Tests
// ============================================================================

func TestUserHandler_ListMechanics_OmitsPendingCounts(t *testing.T) {
	mockDirectory := &MockDirectoryService{
		ListMechanicsFunc: func(ctx context.Context) ([]*models.MechanicWithLocation, error) {
			return []*models.MechanicWithLocation{
				{
					User: models.User{ID: "mech123", Username: "joewrench", FullName: "Joe Wrench"},
					Location: &models.MechanicLocation{
						MechanicID:   "mech123",
						BusinessName: "Joe's Garage",
						Address:      "42 Main St",
						UpdatedAt:    time.Now(),
					},
					PendingRequests: 3,
				},
				{User: models.User{ID: "mech456", Username: "ada"}},
			}, nil
		},
	}
	handler := NewUserHandler(mockDirectory, &MockReviewService{})

	req := NewTestRequest(t, "GET", "/api/user/mechanics", nil)
	w := httptest.NewRecorder()

	handler.ListMechanics(w, req)

	var resp []*MechanicResponse
	AssertJSONResponse(t, w, 200, &resp)
	require.Len(t, resp, 2)
	assert.Equal(t, "Joe's Garage", resp[0].Location.BusinessName)
	// Pending counts are an admin detail.
	assert.Nil(t, resp[0].PendingRequests)
	assert.Nil(t, resp[1].Location)
}

// ============================================================================
// Review Tests
// ============================================================================

func TestUserHandler_SubmitReview_Success(t *testing.T) {
	session := NewTestSession(models.RoleUser)

	mockReviews := &MockReviewService{
		SubmitReviewFunc: func(ctx context.Context, userID, mechanicID string, rating int, comment string) (*models.Review, error) {
			assert.Equal(t, session.UserID, userID)
			assert.Equal(t, "mech123", mechanicID)
			return &models.Review{
				ID:         "rev1",
				UserID:     userID,
				MechanicID: mechanicID,
				Rating:     rating,
				Comment:    comment,
				CreatedAt:  time.Now(),
			}, nil
		},
	}
	handler := NewUserHandler(&MockDirectoryService{}, mockReviews)

	req := WithSessionContext(NewTestRequest(t, "POST", "/api/user/reviews", SubmitReviewRequest{
		MechanicID: "mech123",
		Rating:     5,
		Comment:    "Fixed it same day",
	}), session)
	w := httptest.NewRecorder()

	handler.SubmitReview(w, req)

	var resp ReviewResponse
	AssertJSONResponse(t, w, 201, &resp)
	assert.Equal(t, 5, resp.Rating)
}

func TestUserHandler_SubmitReview_RatingBounds(t *testing.T) {
	handler := NewUserHandler(&MockDirectoryService{}, &MockReviewService{})

	for _, rating := range []int{0, 6} {
		req := WithSessionContext(NewTestRequest(t, "POST", "/api/user/reviews", SubmitReviewRequest{
			MechanicID: "mech123",
			Rating:     rating,
		}), NewTestSession(models.RoleUser))
		w := httptest.NewRecorder()

		handler.SubmitReview(w, req)

		AssertErrorResponse(t, w, 400, "bad_request")
	}
}

func TestUserHandler_SubmitReview_MechanicNotFound(t *testing.T) {
	mockReviews := &MockReviewService{
		SubmitReviewFunc: func(ctx context.Context, userID, mechanicID string, rating int, comment string) (*models.Review, error) {
			return nil, models.ErrNotFound
		},
	}
	handler := NewUserHandler(&MockDirectoryService{}, mockReviews)

	req := WithSessionContext(NewTestRequest(t, "POST", "/api/user/reviews", SubmitReviewRequest{
		MechanicID: "ghost",
		Rating:     4,
	}), NewTestSession(models.RoleUser))
	w := httptest.NewRecorder()

	handler.SubmitReview(w, req)

	AssertErrorResponse(t, w, 404, "not_found")
}

func TestUserHandler_GetMechanicReviews(t *testing.T) {
	mockReviews := &MockReviewService{
		GetMechanicReviewsFunc: func(ctx context.Context, mechanicID string) (*models.ReviewSummary, error) {
			assert.Equal(t, "mech123", mechanicID)
			return &models.ReviewSummary{
				Reviews:       []*models.ReviewWithAuthor{{Review: models.Review{Rating: 4}}},
				TotalReviews:  1,
				AverageRating: 4.0,
			}, nil
		},
	}
	handler := NewUserHandler(&MockDirectoryService{}, mockReviews)

	req := WithChiRouteContext(
		NewTestRequest(t, "GET", "/api/user/mechanics/mech123/reviews", nil),
		map[string]string{"mechanicID": "mech123"},
	)
	w := httptest.NewRecorder()

	handler.GetMechanicReviews(w, req)

	var resp ReviewSummaryResponse
	AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, 4.0, resp.AverageRating)
}

func TestUserHandler_ListOwnReviews(t *testing.T) {
	session := NewTestSession(models.RoleUser)
	mockReviews := &MockReviewService{
		GetUserReviewsFunc: func(ctx context.Context, userID string) ([]*models.ReviewWithAuthor, error) {
			assert.Equal(t, session.UserID, userID)
			return []*models.ReviewWithAuthor{
				{Review: models.Review{ID: "rev1", Rating: 3}, AuthorUsername: "joewrench"},
			}, nil
		},
	}
	handler := NewUserHandler(&MockDirectoryService{}, mockReviews)

	req := WithSessionContext(NewTestRequest(t, "GET", "/api/user/reviews", nil), session)
	w := httptest.NewRecorder()

	handler.ListOwnReviews(w, req)

	var resp []*ReviewResponse
	AssertJSONResponse(t, w, 200, &resp)
	require.Len(t, resp, 1)
}

// ============================================================================
// Profile Tests
// ============================================================================

func TestProfileHandler_GetProfile(t *testing.T) {
	session := NewTestSession(models.RoleUser)
	mockService := &MockProfileService{
		GetProfileFunc: func(ctx context.Context, userID string) (*models.User, error) {
			assert.Equal(t, session.UserID, userID)
			return testUser(models.RoleUser), nil
		},
	}
	handler := NewProfileHandler(mockService)

	req := WithSessionContext(NewTestRequest(t, "GET", "/api/user/profile", nil), session)
	w := httptest.NewRecorder()

	handler.GetProfile(w, req)

	var resp UserResponse
	AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "testuser", resp.Username)
}

func TestProfileHandler_UpdateProfile_UsernameConflict(t *testing.T) {
	mockService := &MockProfileService{
		UpdateProfileFunc: func(ctx context.Context, session *models.Session, update services.ProfileUpdate) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}
	handler := NewProfileHandler(mockService)

	req := WithSessionContext(NewTestRequest(t, "PUT", "/api/user/profile", UpdateProfileRequest{
		Username: "taken",
	}), NewTestSession(models.RoleUser))
	w := httptest.NewRecorder()

	handler.UpdateProfile(w, req)

	AssertErrorResponse(t, w, 409, "conflict")
}

func TestProfileHandler_UpdateProfile_InvalidEmail(t *testing.T) {
	handler := NewProfileHandler(&MockProfileService{})

	req := WithSessionContext(NewTestRequest(t, "PUT", "/api/user/profile", UpdateProfileRequest{
		Email: "not-an-email",
	}), NewTestSession(models.RoleUser))
	w := httptest.NewRecorder()

	handler.UpdateProfile(w, req)

	AssertErrorResponse(t, w, 400, "bad_request")
}
