package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wrenchbase/wrenchbase/internal/models"
)

const sessionKeyPrefix = "session:"

// SessionClaims is the payload of the client-presented token. The token
// carries only the session ID (jti); everything else lives server-side.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionManager owns the server-held session records in Redis and the
// signed tokens that reference them. A token is only as good as its
// record: deleting the record (logout) invalidates the token immediately.
type SessionManager struct {
	redis    *redis.Client
	secret   string
	lifetime time.Duration
}

func NewSessionManager(client *redis.Client, secret string, lifetime time.Duration) *SessionManager {
	return &SessionManager{
		redis:    client,
		secret:   secret,
		lifetime: lifetime,
	}
}

// Create opens a session for an authenticated user and returns the signed
// token the client presents on subsequent requests.
func (sm *SessionManager) Create(ctx context.Context, user *models.User, ipAddress, userAgent string) (string, *models.Session, error) {
	now := time.Now()
	session := &models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.lifetime),
	}

	if err := sm.store(ctx, session, sm.lifetime); err != nil {
		return "", nil, err
	}

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(sm.secret))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, session, nil
}

// Resolve validates a token and loads its session record. Any failure —
// bad signature, expired token, missing or expired record — is
// models.ErrUnauthorized; callers never learn which.
func (sm *SessionManager) Resolve(ctx context.Context, tokenString string) (*models.Session, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(sm.secret), nil
	})
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, models.ErrUnauthorized
	}

	data, err := sm.redis.Get(ctx, sessionKeyPrefix+claims.ID).Bytes()
	if err == redis.Nil {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}

	if session.Expired(time.Now()) {
		_ = sm.Destroy(ctx, session.ID)
		return nil, models.ErrUnauthorized
	}

	return &session, nil
}

// Update rewrites a session record in place, preserving its remaining
// lifetime. Used when a profile update changes the recorded username.
func (sm *SessionManager) Update(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return models.ErrUnauthorized
	}
	return sm.store(ctx, session, ttl)
}

// Destroy ends a session. Destroying an absent session is not an error.
func (sm *SessionManager) Destroy(ctx context.Context, sessionID string) error {
	if err := sm.redis.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (sm *SessionManager) store(ctx context.Context, session *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := sm.redis.Set(ctx, sessionKeyPrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
