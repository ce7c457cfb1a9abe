package models

import "time"

// MechanicLocation is the single published location per mechanic. It is a
// denormalized projection of the latest approved LocationRequest.
type MechanicLocation struct {
	ID           string
	MechanicID   string // unique
	BusinessName string
	Address      string
	LocationData map[string]any
	UpdatedAt    time.Time
}

// MechanicWithLocation is the directory view of a mechanic: account fields
// plus the published location, if any, and the admin-only pending request
// count.
type MechanicWithLocation struct {
	User
	Location        *MechanicLocation
	PendingRequests int
}

// Stats holds the admin dashboard counters.
type Stats struct {
	TotalMechanics        int `json:"totalMechanics"`
	TotalUsers            int `json:"totalUsers"`
	PendingRequests       int `json:"pendingRequests"`
	ApprovedRequests      int `json:"approvedRequests"`
	RejectedRequests      int `json:"rejectedRequests"`
	MechanicsWithLocation int `json:"mechanicsWithLocation"`
}
