package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

// Payload keys
const (
	KeyStaffID        = "staff_id"
	KeyPreviousStatus = "previous_status"
	KeyNewStatus      = "new_status"
	KeyReason         = "reason"
	KeyActorRole      = "actor_role"
)

// Event represents a domain event
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	ClaimID       string                 `json:"claim_id"`
	ActorID       string                 `json:"actor_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a new domain event with generated ID and timestamp.
// An empty correlationID starts a new chain.
func NewEvent(eventType Type, claimID, actorID string, payload map[string]interface{}, correlationID string) *Event {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ClaimID:       claimID,
		ActorID:       actorID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: correlationID,
	}
}

// NewStatusChanged describes one claim leaving previous for its current status
func NewStatusChanged(claim *entity.Claim, previous entity.Status, actor entity.Actor, correlationID string) *Event {
	return NewEvent(TypeClaimStatusChanged, claim.ID, actor.ID, map[string]interface{}{
		KeyStaffID:        claim.StaffID,
		KeyPreviousStatus: string(previous),
		KeyNewStatus:      string(claim.Status),
		KeyReason:         claim.ReasonApprover,
		KeyActorRole:      string(actor.Role),
	}, correlationID)
}

// NewClaimCreated describes a freshly created claim
func NewClaimCreated(claim *entity.Claim, actor entity.Actor) *Event {
	return NewEvent(TypeClaimCreated, claim.ID, actor.ID, map[string]interface{}{
		KeyStaffID:   claim.StaffID,
		KeyNewStatus: string(claim.Status),
	}, "")
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// Status reads a status-valued payload key
func (e *Event) Status(key string) entity.Status {
	return entity.Status(e.GetPayloadString(key))
}
