package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/wrenchbase/wrenchbase/internal/database"
	"github.com/wrenchbase/wrenchbase/internal/models"
	"github.com/wrenchbase/wrenchbase/internal/search"
)

// Test helpers shared by the service tests. Mocks expose func fields so
// each test overrides only the calls it cares about; unset funcs return
// zero values.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func NewTestUser(role string) *models.User {
	now := time.Now()
	return &models.User{
		ID:           uuid.New().String(),
		Username:     "testuser",
		Email:        "testuser@example.com",
		PasswordHash: "$2a$12$abcdefghijklmnopqrstuv",
		Role:         role,
		FullName:     "Test User",
		ProfileData:  map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func NewTestRequest(mechanicID string) *models.LocationRequest {
	return &models.LocationRequest{
		ID:           uuid.New().String(),
		MechanicID:   mechanicID,
		BusinessName: "Joe's Garage",
		Address:      "42 Main St, Springfield",
		Status:       models.StatusPending,
		RequestedAt:  time.Now(),
	}
}

func NewTestSession(user *models.User) *models.Session {
	now := time.Now()
	return &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

type MockUserRepository struct {
	CreateFunc                     func(ctx context.Context, user *models.User) (*models.User, error)
	GetByIDFunc                    func(ctx context.Context, id string) (*models.User, error)
	GetByUsernameFunc              func(ctx context.Context, username string) (*models.User, error)
	GetByEmailFunc                 func(ctx context.Context, email string) (*models.User, error)
	UpdateProfileFunc              func(ctx context.Context, id string, user *models.User) (*models.User, error)
	GetMechanicFunc                func(ctx context.Context, id string) (*models.User, error)
	ListMechanicsWithLocationsFunc func(ctx context.Context) ([]*models.MechanicWithLocation, error)
	CountByRoleFunc                func(ctx context.Context, role string) (int, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return user, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, user)
	}
	return user, nil
}

func (m *MockUserRepository) GetMechanic(ctx context.Context, id string) (*models.User, error) {
	if m.GetMechanicFunc != nil {
		return m.GetMechanicFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) ListMechanicsWithLocations(ctx context.Context) ([]*models.MechanicWithLocation, error) {
	if m.ListMechanicsWithLocationsFunc != nil {
		return m.ListMechanicsWithLocationsFunc(ctx)
	}
	return nil, nil
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role string) (int, error) {
	if m.CountByRoleFunc != nil {
		return m.CountByRoleFunc(ctx, role)
	}
	return 0, nil
}

type MockNotificationRepository struct {
	CreateFunc      func(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListByUserFunc  func(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkAllReadFunc func(ctx context.Context, userID string) error
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, n)
	}
	return n, nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*models.Notification, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return nil
}

type MockLocationRequestRepository struct {
	CreateFunc            func(ctx context.Context, req *models.LocationRequest) (*models.LocationRequest, error)
	GetByIDFunc           func(ctx context.Context, id string) (*models.LocationRequest, error)
	HasPendingFunc        func(ctx context.Context, mechanicID string) (bool, error)
	ListByMechanicFunc    func(ctx context.Context, mechanicID string) ([]*models.LocationRequest, error)
	ListWithMechanicsFunc func(ctx context.Context, status string) ([]*models.RequestWithMechanic, error)
	MarkProcessedFunc     func(ctx context.Context, q database.Querier, id, status string, locationData map[string]any, processedBy, rejectionReason string) (*models.LocationRequest, error)
	CountByStatusFunc     func(ctx context.Context, status string) (int, error)
}

func (m *MockLocationRequestRepository) Create(ctx context.Context, req *models.LocationRequest) (*models.LocationRequest, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	req.ID = uuid.New().String()
	req.Status = models.StatusPending
	req.RequestedAt = time.Now()
	return req, nil
}

func (m *MockLocationRequestRepository) GetByID(ctx context.Context, id string) (*models.LocationRequest, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockLocationRequestRepository) HasPending(ctx context.Context, mechanicID string) (bool, error) {
	if m.HasPendingFunc != nil {
		return m.HasPendingFunc(ctx, mechanicID)
	}
	return false, nil
}

func (m *MockLocationRequestRepository) ListByMechanic(ctx context.Context, mechanicID string) ([]*models.LocationRequest, error) {
	if m.ListByMechanicFunc != nil {
		return m.ListByMechanicFunc(ctx, mechanicID)
	}
	return nil, nil
}

func (m *MockLocationRequestRepository) ListWithMechanics(ctx context.Context, status string) ([]*models.RequestWithMechanic, error) {
	if m.ListWithMechanicsFunc != nil {
		return m.ListWithMechanicsFunc(ctx, status)
	}
	return nil, nil
}

func (m *MockLocationRequestRepository) MarkProcessed(ctx context.Context, q database.Querier, id, status string, locationData map[string]any, processedBy, rejectionReason string) (*models.LocationRequest, error) {
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(ctx, q, id, status, locationData, processedBy, rejectionReason)
	}
	return nil, models.ErrConflict
}

func (m *MockLocationRequestRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, status)
	}
	return 0, nil
}

type MockMechanicLocationRepository struct {
	GetByMechanicFunc func(ctx context.Context, mechanicID string) (*models.MechanicLocation, error)
	UpsertFunc        func(ctx context.Context, q database.Querier, loc *models.MechanicLocation) (*models.MechanicLocation, error)
	DeleteFunc        func(ctx context.Context, mechanicID string) (bool, error)
	CountFunc         func(ctx context.Context) (int, error)
}

func (m *MockMechanicLocationRepository) GetByMechanic(ctx context.Context, mechanicID string) (*models.MechanicLocation, error) {
	if m.GetByMechanicFunc != nil {
		return m.GetByMechanicFunc(ctx, mechanicID)
	}
	return nil, models.ErrNotFound
}

func (m *MockMechanicLocationRepository) Upsert(ctx context.Context, q database.Querier, loc *models.MechanicLocation) (*models.MechanicLocation, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, q, loc)
	}
	return loc, nil
}

func (m *MockMechanicLocationRepository) Delete(ctx context.Context, mechanicID string) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, mechanicID)
	}
	return false, nil
}

func (m *MockMechanicLocationRepository) Count(ctx context.Context) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

type MockReviewRepository struct {
	UpsertFunc          func(ctx context.Context, review *models.Review) (*models.Review, error)
	ListForMechanicFunc func(ctx context.Context, mechanicID string) ([]*models.ReviewWithAuthor, error)
	ListByUserFunc      func(ctx context.Context, userID string) ([]*models.ReviewWithAuthor, error)
}

func (m *MockReviewRepository) Upsert(ctx context.Context, review *models.Review) (*models.Review, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, review)
	}
	return review, nil
}

func (m *MockReviewRepository) ListForMechanic(ctx context.Context, mechanicID string) ([]*models.ReviewWithAuthor, error) {
	if m.ListForMechanicFunc != nil {
		return m.ListForMechanicFunc(ctx, mechanicID)
	}
	return nil, nil
}

func (m *MockReviewRepository) ListByUser(ctx context.Context, userID string) ([]*models.ReviewWithAuthor, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

type MockSessionStore struct {
	CreateFunc  func(ctx context.Context, user *models.User, ip, userAgent string) (string, *models.Session, error)
	UpdateFunc  func(ctx context.Context, session *models.Session) error
	DestroyFunc func(ctx context.Context, sessionID string) error
}

func (m *MockSessionStore) Create(ctx context.Context, user *models.User, ip, userAgent string) (string, *models.Session, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user, ip, userAgent)
	}
	return "test-token", NewTestSession(user), nil
}

func (m *MockSessionStore) Update(ctx context.Context, session *models.Session) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, session)
	}
	return nil
}

func (m *MockSessionStore) Destroy(ctx context.Context, sessionID string) error {
	if m.DestroyFunc != nil {
		return m.DestroyFunc(ctx, sessionID)
	}
	return nil
}

type MockSearchProvider struct {
	SearchFunc func(ctx context.Context, query string) ([]search.Place, error)
}

func (m *MockSearchProvider) Search(ctx context.Context, query string) ([]search.Place, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return []search.Place{}, nil
}

type MockEmailService struct {
	SendDecisionEmailFunc func(ctx context.Context, email, subject, body string) error
}

func (m *MockEmailService) SendDecisionEmail(ctx context.Context, email, subject, body string) error {
	if m.SendDecisionEmailFunc != nil {
		return m.SendDecisionEmailFunc(ctx, email, subject, body)
	}
	return nil
}

// MockTxRunner runs the transaction body directly with a nil transaction.
// Repo mocks ignore the Querier argument.
type MockTxRunner struct {
	WithTransactionFunc func(ctx context.Context, fn func(tx pgx.Tx) error) error
}

func (m *MockTxRunner) WithTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(nil)
}
