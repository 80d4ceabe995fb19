package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/garyjia/claimflow/internal/domain/event"
)

// ErrClosed is returned once the dispatcher stopped accepting events
var ErrClosed = errors.New("dispatcher closed")

const defaultQueueSize = 256

// Dispatcher fans claim events out to subscribers
type Dispatcher interface {
	// Subscribe registers a named handler for an event type
	Subscribe(eventType event.Type, name string, handler Handler)

	// Dispatch runs handlers in registration order and stops at the first error
	Dispatch(ctx context.Context, evt *event.Event) error

	// DispatchAsync queues the event for a single background worker, so
	// events are handled in the order they were dispatched. Handlers keep the
	// caller's context values but not its cancellation.
	DispatchAsync(ctx context.Context, evt *event.Event)

	// Close refuses new events and drains the queue
	Close() error
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type eventDispatcher struct {
	subMu sync.RWMutex
	subs  map[event.Type][]subscription

	// sendMu guards closed and the queue channel; the worker never takes it
	sendMu sync.RWMutex
	closed bool

	queue     chan queued
	queueSize int
	done      chan struct{}
	logger    Logger
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *eventDispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithQueueSize bounds how many async events may wait before DispatchAsync blocks
func WithQueueSize(n int) Option {
	return func(d *eventDispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// NewDispatcher creates a dispatcher and starts its async worker
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{
		subs:      make(map[event.Type][]subscription),
		queueSize: defaultQueueSize,
		done:      make(chan struct{}),
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.queue = make(chan queued, d.queueSize)
	go d.drain()
	return d
}

func (d *eventDispatcher) Subscribe(eventType event.Type, name string, handler Handler) {
	d.subMu.Lock()
	defer d.subMu.Unlock()

	if name == "" {
		name = fmt.Sprintf("%s#%d", eventType, len(d.subs[eventType]))
	}
	// clip so a concurrent reader's slice is never written to
	d.subs[eventType] = append(slices.Clip(d.subs[eventType]), subscription{name: name, handler: handler})
	d.logger.Info("Subscribed to claim events", "event_type", eventType, "subscriber", name)
}

func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	d.sendMu.RLock()
	closed := d.closed
	d.sendMu.RUnlock()
	if closed {
		return ErrClosed
	}
	return d.deliver(ctx, evt, d.subscribers(evt.Type))
}

func (d *eventDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	d.sendMu.RLock()
	defer d.sendMu.RUnlock()
	if d.closed {
		d.logger.Error("Dropped claim event, dispatcher closed",
			"event_type", evt.Type,
			"event_id", evt.ID,
			"claim_id", evt.ClaimID)
		return
	}
	// holding the read lock keeps Close from closing the queue mid-send
	d.queue <- queued{ctx: context.WithoutCancel(ctx), evt: evt}
}

func (d *eventDispatcher) drain() {
	defer close(d.done)
	for q := range d.queue {
		// failures are logged by deliver; later events still run
		_ = d.deliver(q.ctx, q.evt, d.subscribers(q.evt.Type))
	}
}

func (d *eventDispatcher) subscribers(t event.Type) []subscription {
	d.subMu.RLock()
	defer d.subMu.RUnlock()
	return d.subs[t]
}

// deliver runs subs in order and stops at the first failure
func (d *eventDispatcher) deliver(ctx context.Context, evt *event.Event, subs []subscription) error {
	for _, s := range subs {
		if err := run(ctx, evt, s.handler); err != nil {
			d.logger.Error("Claim event handler failed",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"claim_id", evt.ClaimID,
				"subscriber", s.name,
				"error", err)
			return fmt.Errorf("subscriber %s: %w", s.name, err)
		}
	}
	return nil
}

func (d *eventDispatcher) Close() error {
	d.sendMu.Lock()
	if d.closed {
		d.sendMu.Unlock()
		return ErrClosed
	}
	d.closed = true
	pending := len(d.queue)
	close(d.queue)
	d.sendMu.Unlock()

	d.logger.Info("Draining claim events", "pending", pending)
	<-d.done
	return nil
}

// run converts a handler panic into an error
func run(ctx context.Context, evt *event.Event, h Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, evt)
}
