package models

import "time"

// LocationRequest status values. Pending transitions exactly once to
// approved or rejected; terminal requests are never re-processed.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// DefaultRejectionReason is stored when an admin rejects without one.
const DefaultRejectionReason = "No reason provided"

// LocationRequest is a mechanic's request to publish or update a business
// location. It is the source of truth for what was approved; the
// MechanicLocation row is a projection derived from it.
type LocationRequest struct {
	ID              string
	MechanicID      string
	BusinessName    string
	Address         string
	Status          string
	LocationData    map[string]any // resolved payload, set on approval
	RequestedAt     time.Time
	ProcessedAt     *time.Time
	ProcessedBy     *string // admin who decided
	RejectionReason string
}

// IsPending reports whether the request still awaits an admin decision.
func (r *LocationRequest) IsPending() bool {
	return r.Status == StatusPending
}

// SearchQuery builds the provider query, preferring the business name over
// the raw address.
func (r *LocationRequest) SearchQuery() string {
	if r.BusinessName != "" {
		return r.BusinessName
	}
	return r.Address
}

// FallbackLocationData synthesizes the payload used when a request is
// approved without a provider match.
func (r *LocationRequest) FallbackLocationData() map[string]any {
	title := r.BusinessName
	if title == "" {
		title = "Mechanic Shop"
	}
	return map[string]any{
		"title":   title,
		"address": r.Address,
		"note":    "approved without provider match",
	}
}

// RequestWithMechanic pairs a request with its requester's identity for
// admin listings.
type RequestWithMechanic struct {
	LocationRequest
	MechanicUsername string
	MechanicFullName string
	MechanicEmail    string
}
