package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/wrenchbase/wrenchbase/internal/models"
	pkgauth "github.com/wrenchbase/wrenchbase/pkg/auth"
	pkglogger "github.com/wrenchbase/wrenchbase/pkg/logger"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, user *models.User) (*models.User, error)
	GetMechanic(ctx context.Context, id string) (*models.User, error)
	ListMechanicsWithLocations(ctx context.Context) ([]*models.MechanicWithLocation, error)
	CountByRole(ctx context.Context, role string) (int, error)
}

// SessionStore is the server-held session capability injected into the
// auth flows.
type SessionStore interface {
	Create(ctx context.Context, user *models.User, ipAddress, userAgent string) (string, *models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	Destroy(ctx context.Context, sessionID string) error
}

// RegisterInput carries a registration submission.
type RegisterInput struct {
	Username    string
	Password    string
	Role        string
	FullName    string
	Email       string
	ProfileData map[string]any
}

// LoginResult is a successful login: the opened session plus the token the
// client presents from now on.
type LoginResult struct {
	Token   string
	Session *models.Session
	User    *models.User
}

// AuthService handles registration, login and logout
type AuthService struct {
	users    UserRepository
	sessions SessionStore
	logger   *slog.Logger
}

func NewAuthService(users UserRepository, sessions SessionStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// Register creates an account with role user or mechanic. Username and
// email are normalized to lower case; either colliding is ErrConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !models.IsValidRegistrationRole(in.Role) {
		s.logger.Info("registration with invalid role", slog.String("role", in.Role))
		return nil, models.ErrValidation
	}

	if err := pkgauth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		s.logger.Info("username already taken", slog.String("username", username))
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.logger.Info("email already registered", slog.String("email", pkglogger.SanitizedEmail(email)))
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash, err := pkgauth.HashPassword(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		FullName:     strings.TrimSpace(in.FullName),
		ProfileData:  in.ProfileData,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost a race with a concurrent registration; the unique
			// constraint is the authority.
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered",
		slog.String("user_id", created.ID),
		slog.String("role", created.Role),
	)
	return created, nil
}

// Login verifies credentials and opens a session. Unknown username and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password, ipAddress, userAgent string) (*LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to look up user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("failed login attempt", slog.String("username", username))
		return nil, models.ErrUnauthorized
	}

	token, session, err := s.sessions.Create(ctx, user, ipAddress, userAgent)
	if err != nil {
		s.logger.Error("failed to create session", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return &LoginResult{Token: token, Session: session, User: user}, nil
}

// Logout ends the presented session.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) error {
	if err := s.sessions.Destroy(ctx, session.ID); err != nil {
		s.logger.Error("failed to destroy session",
			slog.String("session_id", session.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("user logged out", slog.String("user_id", session.UserID))
	return nil
}
