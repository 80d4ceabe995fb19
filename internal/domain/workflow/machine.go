package workflow

import (
	"context"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

// StateMachine tracks one claim's status and validates transitions against the configured table
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the role may fire the trigger in the current state
	CanFire(trigger Trigger, role entity.Role) bool

	// Fire executes the trigger for the role, transitioning to the new state if allowed
	Fire(ctx context.Context, trigger Trigger, role entity.Role, reason string) error

	// PermittedTriggers returns the triggers the role may fire in the current state
	PermittedTriggers(role entity.Role) []Trigger
}
