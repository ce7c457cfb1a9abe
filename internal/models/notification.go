package models

import "time"

// Notification severity tags
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notification is one entry in a user's inbox.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Severity  string // "info", "warning", "error"
	Read      bool
	CreatedAt time.Time
}
