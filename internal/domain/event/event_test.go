package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

func TestNewStatusChanged(t *testing.T) {
	claim := &entity.Claim{ID: "c1", StaffID: "s1", Status: entity.StatusApproved, ReasonApprover: "ok"}
	actor := entity.Actor{ID: "a1", Role: entity.RoleApprover}

	evt := NewStatusChanged(claim, entity.StatusPending, actor, "corr-1")

	assert.Equal(t, TypeClaimStatusChanged, evt.Type)
	assert.Equal(t, "c1", evt.ClaimID)
	assert.Equal(t, "a1", evt.ActorID)
	assert.Equal(t, "corr-1", evt.CorrelationID)
	assert.Equal(t, entity.StatusPending, evt.Status(KeyPreviousStatus))
	assert.Equal(t, entity.StatusApproved, evt.Status(KeyNewStatus))
	assert.Equal(t, "ok", evt.GetPayloadString(KeyReason))
	assert.Equal(t, "s1", evt.GetPayloadString(KeyStaffID))
	assert.NotEmpty(t, evt.ID)
}

func TestNewEvent_GeneratesIDs(t *testing.T) {
	a := NewEvent(TypeClaimCreated, "c1", "u1", nil, "")
	b := NewEvent(TypeClaimCreated, "c1", "u1", nil, "")

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.CorrelationID, b.CorrelationID)
	assert.NotNil(t, a.Payload)
	assert.Empty(t, a.GetPayloadString("missing"))
}

func TestType_IsValid(t *testing.T) {
	assert.True(t, TypeClaimStatusChanged.IsValid())
	assert.False(t, Type("instance.created").IsValid())
	assert.Equal(t, "claim.created", TypeClaimCreated.String())
}
