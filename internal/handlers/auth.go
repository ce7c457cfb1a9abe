package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wrenchbase/wrenchbase/internal/auth"
	"github.com/wrenchbase/wrenchbase/internal/models"
	"github.com/wrenchbase/wrenchbase/internal/services"
	pkgauth "github.com/wrenchbase/wrenchbase/pkg/auth"
	pkghttp "github.com/wrenchbase/wrenchbase/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, password, ipAddress, userAgent string) (*services.LoginResult, error)
	Logout(ctx context.Context, session *models.Session) error
}

// AuthHandler handles registration, login and logout
type AuthHandler struct {
	service       AuthServiceInterface
	secureCookies bool
}

func NewAuthHandler(service AuthServiceInterface, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		service:       service,
		secureCookies: secureCookies,
	}
}

// Request/Response DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username    string         `json:"username" validate:"required,min=3,max=30"`
	Password    string         `json:"password" validate:"required"`
	Email       string         `json:"email" validate:"required,email"`
	Role        string         `json:"role" validate:"required,oneof=user mechanic"`
	FullName    string         `json:"full_name" validate:"required,min=1,max=100"`
	ProfileData map[string]any `json:"profile_data"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token alongside the account. Browser
// clients can rely on the cookie instead of the token field.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt string        `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// SessionResponse describes the authenticated session for GET /session
type SessionResponse struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
}

// Register handles account creation for the user and mechanic roles
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), services.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		Role:        req.Role,
		FullName:    req.FullName,
		ProfileData: req.ProfileData,
	})
	if err != nil {
		var pwErr *pkgauth.PasswordValidationError
		switch {
		case errors.As(err, &pwErr):
			pkghttp.WriteBadRequest(w, pwErr.Error())
		case errors.Is(err, models.ErrValidation):
			pkghttp.WriteBadRequest(w, "Role must be user or mechanic")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Username or email already registered")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, userModelToResponse(user))
}

// Login authenticates a user and opens a session. The token is returned
// in the body and also set as an HttpOnly cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ipAddress := pkghttp.ExtractClientIP(r)
	userAgent := r.Header.Get("User-Agent")

	result, err := h.service.Login(r.Context(), req.Username, req.Password, ipAddress, userAgent)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Invalid username or password")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	h.setSessionCookie(w, result.Token, result.Session.ExpiresAt)

	pkghttp.WriteJSON(w, http.StatusOK, &LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.Session.ExpiresAt.Format(timestampFormat),
		User:      userModelToResponse(result.User),
	})
}

// Logout destroys the presented session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), session); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	h.clearSessionCookie(w)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Session reports who the presented token belongs to
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r)
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, &SessionResponse{
		UserID:    session.UserID,
		Username:  session.Username,
		Role:      session.Role,
		ExpiresAt: session.ExpiresAt.Format(timestampFormat),
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
