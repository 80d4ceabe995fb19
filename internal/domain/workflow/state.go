package workflow

import "github.com/garyjia/claimflow/internal/domain/entity"

// State is a claim status as seen by the state machine
type State = entity.Status

// IsKnownState returns true if the state can be configured on a machine
func IsKnownState(s State) bool {
	return s.IsValid()
}
