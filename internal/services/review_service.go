package services

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/wrenchbase/wrenchbase/internal/models"
)

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	Upsert(ctx context.Context, review *models.Review) (*models.Review, error)
	ListForMechanic(ctx context.Context, mechanicID string) ([]*models.ReviewWithAuthor, error)
	ListByUser(ctx context.Context, userID string) ([]*models.ReviewWithAuthor, error)
}

// ReviewService handles review submission and aggregation
type ReviewService struct {
	reviews ReviewRepository
	users   UserRepository
	logger  *slog.Logger
}

func NewReviewService(reviews ReviewRepository, users UserRepository, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		users:   users,
		logger:  logger,
	}
}

// SubmitReview records a user's rating of a mechanic. A second submission
// for the same pair updates the existing review in place.
func (s *ReviewService) SubmitReview(ctx context.Context, userID, mechanicID string, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, models.ErrValidation
	}

	if _, err := s.users.GetMechanic(ctx, mechanicID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to look up mechanic", slog.String("mechanic_id", mechanicID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	review, err := s.reviews.Upsert(ctx, &models.Review{
		UserID:     userID,
		MechanicID: mechanicID,
		Rating:     rating,
		Comment:    comment,
	})
	if err != nil {
		s.logger.Error("failed to save review", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("review saved",
		slog.String("user_id", userID),
		slog.String("mechanic_id", mechanicID),
		slog.Int("rating", rating),
	)
	return review, nil
}

// GetMechanicReviews returns a mechanic's reviews with the computed
// average rating.
func (s *ReviewService) GetMechanicReviews(ctx context.Context, mechanicID string) (*models.ReviewSummary, error) {
	reviews, err := s.reviews.ListForMechanic(ctx, mechanicID)
	if err != nil {
		s.logger.Error("failed to list reviews", slog.String("mechanic_id", mechanicID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &models.ReviewSummary{
		Reviews:       reviews,
		TotalReviews:  len(reviews),
		AverageRating: AverageRating(reviews),
	}, nil
}

// GetUserReviews returns the reviews a user has written.
func (s *ReviewService) GetUserReviews(ctx context.Context, userID string) ([]*models.ReviewWithAuthor, error) {
	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list reviews", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return reviews, nil
}

// AverageRating is the arithmetic mean rounded to one decimal place. An
// empty list is defined as 0.0, not a division fault.
func AverageRating(reviews []*models.ReviewWithAuthor) float64 {
	if len(reviews) == 0 {
		return 0.0
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}

	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10
}
