package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wrenchbase/wrenchbase/internal/auth"
	"github.com/wrenchbase/wrenchbase/internal/models"
	"github.com/wrenchbase/wrenchbase/internal/search"
	"github.com/wrenchbase/wrenchbase/internal/services"
	pkghttp "github.com/wrenchbase/wrenchbase/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext attaches a resolved session to the request, standing
// in for the auth middleware.
func WithSessionContext(r *http.Request, session *models.Session) *http.Request {
	ctx := context.WithValue(r.Context(), auth.SessionContextKey, session)
	return r.WithContext(ctx)
}

// NewTestSession builds a session for the given role
func NewTestSession(role string) *models.Session {
	now := time.Now()
	return &models.Session{
		ID:        uuid.New().String(),
		UserID:    uuid.New().String(),
		Username:  "testuser",
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

// WithChiRouteContext adds chi URL parameters to the request context so
// handlers can be tested without mounting a router.
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc func(ctx context.Context, in services.RegisterInput) (*models.User, error)
	LoginFunc    func(ctx context.Context, username, password, ipAddress, userAgent string) (*services.LoginResult, error)
	LogoutFunc   func(ctx context.Context, session *models.Session) error
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, in)
}

func (m *MockAuthService) Login(ctx context.Context, username, password, ipAddress, userAgent string) (*services.LoginResult, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, username, password, ipAddress, userAgent)
}

func (m *MockAuthService) Logout(ctx context.Context, session *models.Session) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, session)
}

// MockProfileService implements ProfileServiceInterface for testing
type MockProfileService struct {
	GetProfileFunc    func(ctx context.Context, userID string) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, session *models.Session, update services.ProfileUpdate) (*models.User, error)
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	if m.GetProfileFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetProfileFunc(ctx, userID)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, session *models.Session, update services.ProfileUpdate) (*models.User, error) {
	if m.UpdateProfileFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateProfileFunc(ctx, session, update)
}

// MockDirectoryService implements MechanicDirectoryService for testing
type MockDirectoryService struct {
	ListMechanicsFunc func(ctx context.Context) ([]*models.MechanicWithLocation, error)
}

func (m *MockDirectoryService) ListMechanics(ctx context.Context) ([]*models.MechanicWithLocation, error) {
	if m.ListMechanicsFunc == nil {
		return []*models.MechanicWithLocation{}, nil
	}
	return m.ListMechanicsFunc(ctx)
}

// MockReviewService implements ReviewServiceInterface for testing
type MockReviewService struct {
	SubmitReviewFunc       func(ctx context.Context, userID, mechanicID string, rating int, comment string) (*models.Review, error)
	GetMechanicReviewsFunc func(ctx context.Context, mechanicID string) (*models.ReviewSummary, error)
	GetUserReviewsFunc     func(ctx context.Context, userID string) ([]*models.ReviewWithAuthor, error)
}

func (m *MockReviewService) SubmitReview(ctx context.Context, userID, mechanicID string, rating int, comment string) (*models.Review, error) {
	if m.SubmitReviewFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.SubmitReviewFunc(ctx, userID, mechanicID, rating, comment)
}

func (m *MockReviewService) GetMechanicReviews(ctx context.Context, mechanicID string) (*models.ReviewSummary, error) {
	if m.GetMechanicReviewsFunc == nil {
		return &models.ReviewSummary{Reviews: []*models.ReviewWithAuthor{}}, nil
	}
	return m.GetMechanicReviewsFunc(ctx, mechanicID)
}

func (m *MockReviewService) GetUserReviews(ctx context.Context, userID string) ([]*models.ReviewWithAuthor, error) {
	if m.GetUserReviewsFunc == nil {
		return []*models.ReviewWithAuthor{}, nil
	}
	return m.GetUserReviewsFunc(ctx, userID)
}

// MockMechanicLocationService implements MechanicLocationService for testing
type MockMechanicLocationService struct {
	SubmitFunc                 func(ctx context.Context, mechanicID, businessName, address string) (*models.LocationRequest, error)
	GetMechanicLocationFunc    func(ctx context.Context, mechanicID string) (*models.MechanicLocation, error)
	ListRequestsByMechanicFunc func(ctx context.Context, mechanicID string) ([]*models.LocationRequest, error)
}

func (m *MockMechanicLocationService) Submit(ctx context.Context, mechanicID, businessName, address string) (*models.LocationRequest, error) {
	if m.SubmitFunc == nil {
		return nil, models.ErrConflict
	}
	return m.SubmitFunc(ctx, mechanicID, businessName, address)
}

func (m *MockMechanicLocationService) GetMechanicLocation(ctx context.Context, mechanicID string) (*models.MechanicLocation, error) {
	if m.GetMechanicLocationFunc == nil {
		return nil, nil
	}
	return m.GetMechanicLocationFunc(ctx, mechanicID)
}

func (m *MockMechanicLocationService) ListRequestsByMechanic(ctx context.Context, mechanicID string) ([]*models.LocationRequest, error) {
	if m.ListRequestsByMechanicFunc == nil {
		return []*models.LocationRequest{}, nil
	}
	return m.ListRequestsByMechanicFunc(ctx, mechanicID)
}

// MockNotificationService implements NotificationServiceInterface for testing
type MockNotificationService struct {
	ListNotificationsFunc     func(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkNotificationsReadFunc func(ctx context.Context, userID string) error
}

func (m *MockNotificationService) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	if m.ListNotificationsFunc == nil {
		return []*models.Notification{}, nil
	}
	return m.ListNotificationsFunc(ctx, userID)
}

func (m *MockNotificationService) MarkNotificationsRead(ctx context.Context, userID string) error {
	if m.MarkNotificationsReadFunc == nil {
		return nil
	}
	return m.MarkNotificationsReadFunc(ctx, userID)
}

// MockAdminLocationService implements AdminLocationService for testing
type MockAdminLocationService struct {
	VerifyFunc         func(ctx context.Context, requestID string) (*models.LocationRequest, []search.Place, error)
	ApproveFunc        func(ctx context.Context, requestID, adminID string, selectedLocation map[string]any) (*services.ApproveResult, error)
	RejectFunc         func(ctx context.Context, requestID, adminID, reason string) (*models.LocationRequest, error)
	RemoveLocationFunc func(ctx context.Context, mechanicID string) error
	ListRequestsFunc   func(ctx context.Context, status string) ([]*models.RequestWithMechanic, error)
	StatsFunc          func(ctx context.Context) (*models.Stats, error)
}

func (m *MockAdminLocationService) Verify(ctx context.Context, requestID string) (*models.LocationRequest, []search.Place, error) {
	if m.VerifyFunc == nil {
		return nil, nil, models.ErrNotFound
	}
	return m.VerifyFunc(ctx, requestID)
}

func (m *MockAdminLocationService) Approve(ctx context.Context, requestID, adminID string, selectedLocation map[string]any) (*services.ApproveResult, error) {
	if m.ApproveFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.ApproveFunc(ctx, requestID, adminID, selectedLocation)
}

func (m *MockAdminLocationService) Reject(ctx context.Context, requestID, adminID, reason string) (*models.LocationRequest, error) {
	if m.RejectFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.RejectFunc(ctx, requestID, adminID, reason)
}

func (m *MockAdminLocationService) RemoveLocation(ctx context.Context, mechanicID string) error {
	if m.RemoveLocationFunc == nil {
		return nil
	}
	return m.RemoveLocationFunc(ctx, mechanicID)
}

func (m *MockAdminLocationService) ListRequests(ctx context.Context, status string) ([]*models.RequestWithMechanic, error) {
	if m.ListRequestsFunc == nil {
		return []*models.RequestWithMechanic{}, nil
	}
	return m.ListRequestsFunc(ctx, status)
}

func (m *MockAdminLocationService) Stats(ctx context.Context) (*models.Stats, error) {
	if m.StatsFunc == nil {
		return &models.Stats{}, nil
	}
	return m.StatsFunc(ctx)
}
