package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

type stubResolver struct {
	session *models.Session
	err     error
}

func (s *stubResolver) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func testSession(role string) *models.Session {
	now := time.Now()
	return &models.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		Username:  "wrench",
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_MissingToken(t *testing.T) {
	called := false
	mw := RequireAuth(&stubResolver{session: testSession(models.RoleUser)})

	req := httptest.NewRequest("GET", "/api/user/profile", nil)
	w := httptest.NewRecorder()
	mw(okHandler(&called)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestRequireAuth_InvalidSession(t *testing.T) {
	called := false
	mw := RequireAuth(&stubResolver{err: models.ErrUnauthorized})

	req := httptest.NewRequest("GET", "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	mw(okHandler(&called)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestRequireAuth_BearerToken(t *testing.T) {
	called := false
	mw := RequireAuth(&stubResolver{session: testSession(models.RoleUser)})

	var got *models.Session
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		got = SessionFromContext(r)
	})

	req := httptest.NewRequest("GET", "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	w := httptest.NewRecorder()
	mw(handler).ServeHTTP(w, req)

	assert.True(t, called)
	assert.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, models.RoleUser, got.Role)
}

func TestRequireAuth_CookieToken(t *testing.T) {
	called := false
	mw := RequireAuth(&stubResolver{session: testSession(models.RoleMechanic)})

	req := httptest.NewRequest("GET", "/api/mechanic/location", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	w := httptest.NewRecorder()
	mw(okHandler(&called)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	called := false
	mw := RequireAuth(&stubResolver{session: testSession(models.RoleUser)})

	req := httptest.NewRequest("GET", "/api/user/profile", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	mw(okHandler(&called)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestRequireRole_NoSession(t *testing.T) {
	called := false
	mw := RequireRole(models.RoleAdmin)

	req := httptest.NewRequest("GET", "/api/admin/stats", nil)
	w := httptest.NewRecorder()
	mw(okHandler(&called)).ServeHTTP(w, req)

	// Identity check fires before the role check
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestRequireRole_WrongRole(t *testing.T) {
	called := false
	mw := RequireRole(models.RoleAdmin)

	req := httptest.NewRequest("GET", "/api/admin/stats", nil)
	ctx := context.WithValue(req.Context(), SessionContextKey, testSession(models.RoleMechanic))
	w := httptest.NewRecorder()
	mw(okHandler(&called)).ServeHTTP(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)
}

func TestRequireRole_Allowed(t *testing.T) {
	called := false
	mw := RequireRole(models.RoleAdmin)

	req := httptest.NewRequest("GET", "/api/admin/stats", nil)
	ctx := context.WithValue(req.Context(), SessionContextKey, testSession(models.RoleAdmin))
	w := httptest.NewRecorder()
	mw(okHandler(&called)).ServeHTTP(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	called := false
	mw := RequireRole(models.RoleUser, models.RoleMechanic)

	req := httptest.NewRequest("GET", "/api/shared", nil)
	ctx := context.WithValue(req.Context(), SessionContextKey, testSession(models.RoleMechanic))
	w := httptest.NewRecorder()
	mw(okHandler(&called)).ServeHTTP(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}
