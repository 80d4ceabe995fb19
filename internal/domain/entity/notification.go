package entity

import "time"

// Notification is an inbox entry telling a claim owner about a status change
type Notification struct {
	ID          int64      `json:"id"`
	RecipientID string     `json:"recipientId"`
	ClaimID     string     `json:"claimId"`
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
