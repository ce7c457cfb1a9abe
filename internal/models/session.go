package models

import "time"

// Session is the server-held record behind a client-presented token. The
// auth middleware resolves the token to one of these and passes it into
// every operation; role checks read Role from here, not from the store.
type Session struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session lifetime has passed. The Redis TTL
// normally removes the record first; this guards the window between the
// two clocks.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
