package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrenchbase/wrenchbase/internal/models"
	pkgauth "github.com/wrenchbase/wrenchbase/pkg/auth"
)

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username: "NewMechanic",
		Password: "workshop99",
		Role:     models.RoleMechanic,
		FullName: "New Mechanic",
		Email:    "New.Mechanic@Example.com",
	}
}

// ============================================================================
// Register Tests
// ============================================================================

func TestAuthService_Register_Success(t *testing.T) {
	var created *models.User
	mockUserRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			created = user
			user.ID = "user123"
			return user, nil
		},
	}

	authService := NewAuthService(mockUserRepo, &MockSessionStore{}, testLogger())

	user, err := authService.Register(context.Background(), validRegisterInput())

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user123", user.ID)
	assert.Equal(t, models.RoleMechanic, user.Role)

	// Identifiers are normalized to lowercase before storage.
	assert.Equal(t, "newmechanic", created.Username)
	assert.Equal(t, "new.mechanic@example.com", created.Email)

	// The stored hash must verify against the submitted password.
	assert.NoError(t, pkgauth.ComparePassword(created.PasswordHash, "workshop99"))
}

func TestAuthService_Register_AdminRoleRejected(t *testing.T) {
	authService := NewAuthService(&MockUserRepository{}, &MockSessionStore{}, testLogger())

	in := validRegisterInput()
	in.Role = models.RoleAdmin

	user, err := authService.Register(context.Background(), in)

	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Nil(t, user)
}

func TestAuthService_Register_UnknownRoleRejected(t *testing.T) {
	authService := NewAuthService(&MockUserRepository{}, &MockSessionStore{}, testLogger())

	in := validRegisterInput()
	in.Role = "superuser"

	user, err := authService.Register(context.Background(), in)

	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Nil(t, user)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	existing := NewTestUser(models.RoleUser)
	mockUserRepo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return existing, nil
		},
	}

	authService := NewAuthService(mockUserRepo, &MockSessionStore{}, testLogger())

	user, err := authService.Register(context.Background(), validRegisterInput())

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Nil(t, user)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	existing := NewTestUser(models.RoleUser)
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return existing, nil
		},
	}

	authService := NewAuthService(mockUserRepo, &MockSessionStore{}, testLogger())

	user, err := authService.Register(context.Background(), validRegisterInput())

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Nil(t, user)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	authService := NewAuthService(&MockUserRepository{}, &MockSessionStore{}, testLogger())

	weakPasswords := []string{
		"short1",       // too short
		"onlyletters",  // no digit
		"12345678",     // no letter
		"password123",  // common password
	}

	for _, password := range weakPasswords {
		in := validRegisterInput()
		in.Password = password

		user, err := authService.Register(context.Background(), in)

		assert.Error(t, err, "password %q should be rejected", password)
		assert.Nil(t, user)
	}
}

// ============================================================================
// Login Tests
// ============================================================================

func TestAuthService_Login_Success(t *testing.T) {
	hash, err := pkgauth.HashPassword("workshop99")
	require.NoError(t, err)

	user := NewTestUser(models.RoleMechanic)
	user.PasswordHash = hash

	mockUserRepo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			assert.Equal(t, "testuser", username)
			return user, nil
		},
	}

	var sessionIP, sessionUA string
	mockSessions := &MockSessionStore{
		CreateFunc: func(ctx context.Context, u *models.User, ip, userAgent string) (string, *models.Session, error) {
			sessionIP = ip
			sessionUA = userAgent
			return "signed-token", NewTestSession(u), nil
		},
	}

	authService := NewAuthService(mockUserRepo, mockSessions, testLogger())

	result, err := authService.Login(context.Background(), "TestUser", "workshop99", "203.0.113.9", "curl/8.0")

	require.NoError(t, err)
	assert.Equal(t, "signed-token", result.Token)
	assert.Equal(t, user.ID, result.Session.UserID)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, "203.0.113.9", sessionIP)
	assert.Equal(t, "curl/8.0", sessionUA)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	authService := NewAuthService(&MockUserRepository{}, &MockSessionStore{}, testLogger())

	result, err := authService.Login(context.Background(), "nobody", "workshop99", "", "")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Nil(t, result)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash, err := pkgauth.HashPassword("workshop99")
	require.NoError(t, err)

	user := NewTestUser(models.RoleMechanic)
	user.PasswordHash = hash

	mockUserRepo := &MockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return user, nil
		},
	}

	authService := NewAuthService(mockUserRepo, &MockSessionStore{}, testLogger())

	result, err := authService.Login(context.Background(), "testuser", "wrongpassword1", "", "")

	// Indistinguishable from an unknown username.
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Nil(t, result)
}

// ============================================================================
// Logout Tests
// ============================================================================

func TestAuthService_Logout_DestroysSession(t *testing.T) {
	user := NewTestUser(models.RoleUser)
	session := NewTestSession(user)

	var destroyedID string
	mockSessions := &MockSessionStore{
		DestroyFunc: func(ctx context.Context, sessionID string) error {
			destroyedID = sessionID
			return nil
		},
	}

	authService := NewAuthService(&MockUserRepository{}, mockSessions, testLogger())

	err := authService.Logout(context.Background(), session)

	require.NoError(t, err)
	assert.Equal(t, session.ID, destroyedID)
}
