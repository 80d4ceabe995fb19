package workflow

import (
	"github.com/garyjia/claimflow/internal/domain/entity"
	domainwf "github.com/garyjia/claimflow/internal/domain/workflow"
)

// lifecycle is configured once and only read afterwards
var lifecycle = newClaimLifecycle()

func newClaimLifecycle() domainwf.StateMachineBuilder {
	builder := domainwf.NewBuilder()

	// Draft: the owner submits or withdraws
	builder.Configure(entity.StatusDraft).
		Permit(domainwf.TriggerSubmit, entity.StatusPending, entity.RoleClaimer).
		Permit(domainwf.TriggerCancel, entity.StatusCancelled, entity.RoleClaimer)

	// Pending: decisions must be justified
	builder.Configure(entity.StatusPending).
		PermitWithReason(domainwf.TriggerApprove, entity.StatusApproved, entity.RoleApprover).
		PermitWithReason(domainwf.TriggerReject, entity.StatusRejected, entity.RoleApprover)

	builder.Configure(entity.StatusApproved).
		Permit(domainwf.TriggerPay, entity.StatusPaid, entity.RoleFinance)

	// Rejected, Paid and Cancelled are terminal states - no outgoing transitions

	return builder
}

// BuildClaimStateMachine creates a state machine configured for the claim lifecycle
func BuildClaimStateMachine(initialState domainwf.State) domainwf.StateMachine {
	return lifecycle.Build(initialState)
}

// ReasonRequired reports whether moving into target needs a non-blank reason
func ReasonRequired(target entity.Status) bool {
	return lifecycle.RequiresReason(target)
}
