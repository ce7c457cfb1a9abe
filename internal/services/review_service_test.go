package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

// ============================================================================
// SubmitReview Tests
// ============================================================================

func TestReviewService_SubmitReview_Success(t *testing.T) {
	mechanic := NewTestUser(models.RoleMechanic)
	user := NewTestUser(models.RoleUser)

	mockUserRepo := &MockUserRepository{
		GetMechanicFunc: func(ctx context.Context, id string) (*models.User, error) {
			assert.Equal(t, mechanic.ID, id)
			return mechanic, nil
		},
	}

	var upserted *models.Review
	mockReviews := &MockReviewRepository{
		UpsertFunc: func(ctx context.Context, review *models.Review) (*models.Review, error) {
			upserted = review
			review.ID = "review123"
			return review, nil
		},
	}

	reviewService := NewReviewService(mockReviews, mockUserRepo, testLogger())

	review, err := reviewService.SubmitReview(context.Background(), user.ID, mechanic.ID, 4, "Solid work")

	require.NoError(t, err)
	assert.Equal(t, "review123", review.ID)
	assert.Equal(t, user.ID, upserted.UserID)
	assert.Equal(t, 4, upserted.Rating)
}

func TestReviewService_SubmitReview_RatingOutOfRange(t *testing.T) {
	reviewService := NewReviewService(&MockReviewRepository{}, &MockUserRepository{}, testLogger())

	for _, rating := range []int{0, -1, 6, 100} {
		review, err := reviewService.SubmitReview(context.Background(), "u1", "m1", rating, "")

		assert.ErrorIs(t, err, models.ErrValidation, "rating %d", rating)
		assert.Nil(t, review)
	}
}

func TestReviewService_SubmitReview_TargetNotMechanic(t *testing.T) {
	// GetMechanic misses for both unknown IDs and non-mechanic users.
	reviewService := NewReviewService(&MockReviewRepository{}, &MockUserRepository{}, testLogger())

	review, err := reviewService.SubmitReview(context.Background(), "u1", "not-a-mechanic", 3, "")

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, review)
}

// ============================================================================
// Review Listing Tests
// ============================================================================

func TestReviewService_GetMechanicReviews_ComputesAverage(t *testing.T) {
	mockReviews := &MockReviewRepository{
		ListForMechanicFunc: func(ctx context.Context, mechanicID string) ([]*models.ReviewWithAuthor, error) {
			return []*models.ReviewWithAuthor{
				{Review: models.Review{Rating: 5}},
				{Review: models.Review{Rating: 4}},
				{Review: models.Review{Rating: 4}},
			}, nil
		},
	}

	reviewService := NewReviewService(mockReviews, &MockUserRepository{}, testLogger())

	summary, err := reviewService.GetMechanicReviews(context.Background(), "m1")

	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalReviews)
	assert.Equal(t, 4.3, summary.AverageRating)
}

func TestReviewService_GetMechanicReviews_Empty(t *testing.T) {
	reviewService := NewReviewService(&MockReviewRepository{}, &MockUserRepository{}, testLogger())

	summary, err := reviewService.GetMechanicReviews(context.Background(), "m1")

	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalReviews)
	assert.Equal(t, 0.0, summary.AverageRating)
}

func TestAverageRating_Rounding(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"empty", nil, 0.0},
		{"single", []int{3}, 3.0},
		{"exact half rounds up", []int{4, 5}, 4.5},
		{"repeating decimal", []int{5, 4, 4}, 4.3},
		{"rounds down", []int{1, 1, 2}, 1.3},
		{"all fives", []int{5, 5, 5, 5}, 5.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reviews := make([]*models.ReviewWithAuthor, len(tc.ratings))
			for i, r := range tc.ratings {
				reviews[i] = &models.ReviewWithAuthor{Review: models.Review{Rating: r}}
			}
			assert.Equal(t, tc.want, AverageRating(reviews))
		})
	}
}
