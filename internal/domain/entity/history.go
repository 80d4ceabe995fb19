package entity

import "time"

// Actor is the caller on whose behalf an operation runs
type Actor struct {
	ID          string `json:"id"`
	Role        Role   `json:"role"`
	DisplayName string `json:"displayName"`
}

// ClaimHistory represents the audit trail of a claim's status changes
type ClaimHistory struct {
	ID             int64     `json:"id"`
	ClaimID        string    `json:"claimId"`
	ActorID        string    `json:"actorId"`
	ActorRole      Role      `json:"actorRole"`
	PreviousStatus Status    `json:"previousStatus,omitempty"`
	NewStatus      Status    `json:"newStatus"`
	Reason         string    `json:"reason,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Staff is a member of staff who may own claims
type Staff struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Project is a project claims are booked against
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}
