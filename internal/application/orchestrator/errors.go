package orchestrator

import "errors"

var (
	// ErrActionInFlight is returned when the action slot is already busy
	ErrActionInFlight = errors.New("an action is already in flight")

	// ErrNoSelection is returned when an action is requested without claims
	ErrNoSelection = errors.New("no claims selected")

	// ErrNoPendingAction is returned by Confirm when nothing awaits confirmation
	ErrNoPendingAction = errors.New("no action awaiting confirmation")

	// ErrViewClosed is returned once the view has been torn down
	ErrViewClosed = errors.New("view closed")

	// ErrActionNotAllowed is returned for actions the view does not expose
	ErrActionNotAllowed = errors.New("action not available in this view")
)

// ErrNotified matches errors the orchestrator has already shown through its
// Notifier. Callers should not report them again.
var ErrNotified = errors.New("already reported to the user")

// notifiedError keeps the cause reachable through errors.Is and errors.As
type notifiedError struct {
	err error
}

func (e *notifiedError) Error() string { return e.err.Error() }

func (e *notifiedError) Unwrap() error { return e.err }

func (e *notifiedError) Is(target error) bool { return target == ErrNotified }

func notified(err error) error {
	if err == nil || errors.Is(err, ErrNotified) {
		return err
	}
	return &notifiedError{err: err}
}
