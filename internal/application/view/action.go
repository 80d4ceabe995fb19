package view

import (
	"strings"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

// Action is a button a view may expose
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionCancel   Action = "cancel"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionPay      Action = "pay"
	ActionDownload Action = "download"
)

var actionTargets = map[Action]entity.Status{
	ActionSubmit:  entity.StatusPending,
	ActionCancel:  entity.StatusCancelled,
	ActionApprove: entity.StatusApproved,
	ActionReject:  entity.StatusRejected,
	ActionPay:     entity.StatusPaid,
}

// ParseAction matches an action name case-insensitively
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := actionTargets[a]; ok || a == ActionDownload {
		return a, true
	}
	return "", false
}

// Target returns the status the action moves claims into. Download has none.
func (a Action) Target() (entity.Status, bool) {
	s, ok := actionTargets[a]
	return s, ok
}

// ChangesStatus reports whether the action goes through the transition engine
func (a Action) ChangesStatus() bool {
	_, ok := actionTargets[a]
	return ok
}

func (a Action) String() string {
	return string(a)
}
