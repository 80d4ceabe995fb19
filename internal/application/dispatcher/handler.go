package dispatcher

import (
	"context"

	"github.com/garyjia/claimflow/internal/domain/event"
)

// Handler reacts to one claim event
type Handler func(ctx context.Context, evt *event.Event) error

// subscription is a named handler; the name only appears in logs and errors
type subscription struct {
	name    string
	handler Handler
}

// queued is an event waiting for the async worker
type queued struct {
	ctx context.Context
	evt *event.Event
}
