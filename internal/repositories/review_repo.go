package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wrenchbase/wrenchbase/internal/database"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

type ReviewRepository struct {
	db *database.DB
}

func NewReviewRepository(db *database.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert inserts a review or, when the (user, mechanic) pair already has
// one, updates it in place with a refreshed timestamp.
func (r *ReviewRepository) Upsert(ctx context.Context, review *models.Review) (*models.Review, error) {
	query := `
		INSERT INTO reviews (id, user_id, mechanic_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, mechanic_id) DO UPDATE
		SET rating = EXCLUDED.rating,
		    comment = EXCLUDED.comment,
		    created_at = EXCLUDED.created_at
		RETURNING id, user_id, mechanic_id, rating, comment, created_at
	`

	var saved models.Review
	err := r.db.Pool.QueryRow(ctx, query,
		uuid.New().String(), review.UserID, review.MechanicID,
		review.Rating, review.Comment, time.Now(),
	).Scan(&saved.ID, &saved.UserID, &saved.MechanicID, &saved.Rating, &saved.Comment, &saved.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &saved, nil
}

func scanReviewWithAuthorRows(rows pgx.Rows) ([]*models.ReviewWithAuthor, error) {
	defer rows.Close()

	reviews := make([]*models.ReviewWithAuthor, 0)
	for rows.Next() {
		var rev models.ReviewWithAuthor
		err := rows.Scan(
			&rev.ID, &rev.UserID, &rev.MechanicID, &rev.Rating, &rev.Comment, &rev.CreatedAt,
			&rev.AuthorUsername, &rev.AuthorFullName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, &rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reviews, nil
}

// ListForMechanic returns a mechanic's reviews with reviewer identity,
// newest first.
func (r *ReviewRepository) ListForMechanic(ctx context.Context, mechanicID string) ([]*models.ReviewWithAuthor, error) {
	query := `
		SELECT rv.id, rv.user_id, rv.mechanic_id, rv.rating, rv.comment, rv.created_at,
		       u.username, u.full_name
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.mechanic_id = $1
		ORDER BY rv.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, mechanicID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}

	return scanReviewWithAuthorRows(rows)
}

// ListByUser returns the reviews a user has written, with the reviewed
// mechanic's identity in the author fields, newest first.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID string) ([]*models.ReviewWithAuthor, error) {
	query := `
		SELECT rv.id, rv.user_id, rv.mechanic_id, rv.rating, rv.comment, rv.created_at,
		       u.username, u.full_name
		FROM reviews rv
		JOIN users u ON u.id = rv.mechanic_id
		WHERE rv.user_id = $1
		ORDER BY rv.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}

	return scanReviewWithAuthorRows(rows)
}
