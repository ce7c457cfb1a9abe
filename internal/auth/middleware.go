package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/wrenchbase/wrenchbase/internal/models"
	pkghttp "github.com/wrenchbase/wrenchbase/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for the resolved session in context
	SessionContextKey contextKey = "session"

	// SessionCookieName carries the session token for browser clients;
	// API clients use the Authorization header instead.
	SessionCookieName = "wb_session"
)

// SessionResolver resolves a client-presented token to a server-held
// session record.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// RequireAuth validates the session token and injects the resolved session
// into the request context. Requests without a valid, live session fail
// with 401.
func RequireAuth(resolver SessionResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				pkghttp.WriteUnauthorized(w, "please log in")
				return
			}

			session, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole enforces that the session's recorded role is in the allowed
// set. Must be mounted after RequireAuth; a missing session fails with 401
// so the role check always implies the identity check.
func RequireRole(roles ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := SessionFromContext(r)
			if session == nil {
				pkghttp.WriteUnauthorized(w, "please log in")
				return
			}

			if !allowed[session.Role] {
				pkghttp.WriteForbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext extracts the resolved session from request context
func SessionFromContext(r *http.Request) *models.Session {
	session, ok := r.Context().Value(SessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// extractToken reads the session token from the Authorization header or,
// failing that, the session cookie.
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}

	return ""
}
