package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wrenchbase/wrenchbase/internal/database"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

type NotificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()

	query := `
		INSERT INTO notifications (id, user_id, message, severity, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, message, severity, read, created_at
	`

	var created models.Notification
	err := r.db.Pool.QueryRow(ctx, query,
		n.ID, n.UserID, n.Message, n.Severity, n.Read, n.CreatedAt,
	).Scan(&created.ID, &created.UserID, &created.Message, &created.Severity, &created.Read, &created.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &created, nil
}

// ListByUser returns a user's inbox, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, message, severity, read, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Severity, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notifications, nil
}

// MarkAllRead flags every notification in a user's inbox as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE notifications SET read = true WHERE user_id = $1`, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

// DeleteReadBefore prunes read notifications older than the cutoff and
// returns the number removed. Used by the background cleanup task.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Pool.Exec(ctx,
		`DELETE FROM notifications WHERE read = true AND created_at < $1`, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return result.RowsAffected(), nil
}
