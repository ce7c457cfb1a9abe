package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/wrenchbase/wrenchbase/internal/models"
)

// NotificationRepository defines the interface for inbox access
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}

// ProfileUpdate carries the mutable profile fields. Nil/empty fields are
// left unchanged, matching form semantics.
type ProfileUpdate struct {
	Username    string
	FullName    string
	Email       string
	ProfileData map[string]any
}

// UserService handles profile and inbox operations shared by every role
type UserService struct {
	users         UserRepository
	notifications NotificationRepository
	sessions      SessionStore
	logger        *slog.Logger
}

func NewUserService(users UserRepository, notifications NotificationRepository, sessions SessionStore, logger *slog.Logger) *UserService {
	return &UserService{
		users:         users,
		notifications: notifications,
		sessions:      sessions,
		logger:        logger,
	}
}

// GetProfile returns the account behind a session.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}

// UpdateProfile applies a partial profile update. A username change is
// checked for uniqueness and written back into the live session record so
// later requests see the new name.
func (s *UserService) UpdateProfile(ctx context.Context, session *models.Session, update ProfileUpdate) (*models.User, error) {
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", session.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	usernameChanged := false
	if update.Username != "" {
		username := strings.ToLower(strings.TrimSpace(update.Username))
		if username != user.Username {
			if _, err := s.users.GetByUsername(ctx, username); err == nil {
				return nil, models.ErrConflict
			} else if !errors.Is(err, models.ErrNotFound) {
				s.logger.Error("failed to check username", slog.Any("error", err))
				return nil, models.ErrInternalServer
			}
			user.Username = username
			usernameChanged = true
		}
	}
	if update.FullName != "" {
		user.FullName = strings.TrimSpace(update.FullName)
	}
	if update.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(update.Email))
	}
	if update.ProfileData != nil {
		user.ProfileData = update.ProfileData
	}

	updated, err := s.users.UpdateProfile(ctx, user.ID, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update profile", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if usernameChanged {
		session.Username = updated.Username
		if err := s.sessions.Update(ctx, session); err != nil {
			// The session still resolves; it just shows the old name
			// until the next login.
			s.logger.Error("failed to refresh session after username change",
				slog.String("session_id", session.ID),
				slog.Any("error", err))
		}
	}

	s.logger.Info("profile updated", slog.String("user_id", user.ID))
	return updated, nil
}

// ListNotifications returns a user's inbox, newest first.
func (s *UserService) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list notifications", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return notifications, nil
}

// MarkNotificationsRead flags the whole inbox as read.
func (s *UserService) MarkNotificationsRead(ctx context.Context, userID string) error {
	if err := s.notifications.MarkAllRead(ctx, userID); err != nil {
		s.logger.Error("failed to mark notifications read", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// ListMechanics returns the mechanic directory with published locations.
func (s *UserService) ListMechanics(ctx context.Context) ([]*models.MechanicWithLocation, error) {
	mechanics, err := s.users.ListMechanicsWithLocations(ctx)
	if err != nil {
		s.logger.Error("failed to list mechanics", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return mechanics, nil
}
