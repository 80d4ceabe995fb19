package workflow

import "github.com/garyjia/claimflow/internal/domain/entity"

// Trigger represents an action that causes a status transition
type Trigger string

const (
	TriggerSubmit  Trigger = "SUBMIT"
	TriggerCancel  Trigger = "CANCEL"
	TriggerApprove Trigger = "APPROVE"
	TriggerReject  Trigger = "REJECT"
	TriggerPay     Trigger = "PAY"
)

var triggerTargets = map[entity.Status]Trigger{
	entity.StatusPending:   TriggerSubmit,
	entity.StatusCancelled: TriggerCancel,
	entity.StatusApproved:  TriggerApprove,
	entity.StatusRejected:  TriggerReject,
	entity.StatusPaid:      TriggerPay,
}

// TriggerFor returns the trigger that moves a claim into target.
// Draft has no trigger: claims are only ever created in it.
func TriggerFor(target entity.Status) (Trigger, bool) {
	t, ok := triggerTargets[target]
	return t, ok
}

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
