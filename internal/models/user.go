package models

import (
	"time"
)

// Role values a user account can hold
const (
	RoleUser     = "user"
	RoleMechanic = "mechanic"
	RoleAdmin    = "admin"
)

type User struct {
	ID           string
	Username     string // stored lower case, unique
	Email        string // stored lower case, unique
	PasswordHash string
	Role         string // "user", "mechanic", "admin"
	FullName     string
	ProfileData  map[string]any // free-form profile fields
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidRegistrationRole reports whether a role may be chosen at
// registration. Admin accounts are bootstrapped, never self-registered.
func IsValidRegistrationRole(role string) bool {
	return role == RoleUser || role == RoleMechanic
}
