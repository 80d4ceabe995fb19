package workflow

import (
	"errors"
	"fmt"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

var (
	// ErrInvalidTransition is returned when a status change violates the transition table
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not valid
	ErrInvalidState = errors.New("invalid state")

	// ErrReasonRequired is returned when an approve/reject decision carries no reason
	ErrReasonRequired = errors.New("reason is required")
)

// TransitionError names the claim, both statuses and the acting role of a rejected transition
type TransitionError struct {
	ClaimID string
	From    entity.Status
	To      entity.Status
	Role    entity.Role
}

func (e *TransitionError) Error() string {
	if e.ClaimID == "" {
		return fmt.Sprintf("%s: cannot move from %s to %s as %s", ErrInvalidTransition, e.From, e.To, e.Role)
	}
	return fmt.Sprintf("%s: claim %s cannot move from %s to %s as %s", ErrInvalidTransition, e.ClaimID, e.From, e.To, e.Role)
}

// Unwrap lets errors.Is match ErrInvalidTransition
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
