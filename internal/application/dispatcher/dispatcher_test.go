package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/claimflow/internal/domain/event"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func statusChanged(claimID string) *event.Event {
	return event.NewEvent(event.TypeClaimStatusChanged, claimID, "u1", nil, "")
}

func TestDispatch_RunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.Subscribe(event.TypeClaimStatusChanged, "first", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "first:"+evt.ClaimID)
		return nil
	})
	d.Subscribe(event.TypeClaimStatusChanged, "second", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "second:"+evt.ClaimID)
		return nil
	})
	d.Subscribe(event.TypeClaimCreated, "other", func(ctx context.Context, evt *event.Event) error {
		order = append(order, "other")
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), statusChanged("c1")))
	assert.Equal(t, []string{"first:c1", "second:c1"}, order)
}

func TestDispatch_StopsAtFirstError(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	boom := errors.New("boom")
	var secondCalled bool

	d.Subscribe(event.TypeClaimStatusChanged, "failing", func(ctx context.Context, evt *event.Event) error {
		return boom
	})
	d.Subscribe(event.TypeClaimStatusChanged, "after", func(ctx context.Context, evt *event.Event) error {
		secondCalled = true
		return nil
	})

	err := d.Dispatch(context.Background(), statusChanged("c1"))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
	assert.False(t, secondCalled)
	assert.Equal(t, 1, logger.ErrorCount())
}

func TestDispatch_RecoversPanics(t *testing.T) {
	d := NewDispatcher()
	d.Subscribe(event.TypeClaimStatusChanged, "", func(ctx context.Context, evt *event.Event) error {
		panic("handler exploded")
	})

	err := d.Dispatch(context.Background(), statusChanged("c1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler exploded")
}

func TestDispatchAsync_SurvivesCallerCancellation(t *testing.T) {
	d := NewDispatcher()
	var handled atomic.Int32
	var sawCancel atomic.Bool

	d.Subscribe(event.TypeClaimStatusChanged, "slow", func(ctx context.Context, evt *event.Event) error {
		time.Sleep(20 * time.Millisecond)
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
		handled.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 3; i++ {
		d.DispatchAsync(ctx, statusChanged(fmt.Sprintf("c%d", i)))
	}
	cancel()

	require.NoError(t, d.Close())
	assert.Equal(t, int32(3), handled.Load())
	assert.False(t, sawCancel.Load())
}

func TestClose(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))

	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Close(), ErrClosed)
	assert.ErrorIs(t, d.Dispatch(context.Background(), statusChanged("c1")), ErrClosed)

	d.DispatchAsync(context.Background(), statusChanged("c1"))
	assert.Equal(t, 1, logger.ErrorCount())
}

func TestDispatchAsync_PreservesOrder(t *testing.T) {
	d := NewDispatcher(WithQueueSize(2))
	var (
		mu   sync.Mutex
		seen []string
	)
	d.Subscribe(event.TypeClaimStatusChanged, "record", func(ctx context.Context, evt *event.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, evt.ClaimID)
		return nil
	})
	d.Subscribe(event.TypeClaimStatusChanged, "flaky", func(ctx context.Context, evt *event.Event) error {
		return errors.New("inbox unavailable")
	})

	var want []string
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("c%d", i)
		want = append(want, id)
		d.DispatchAsync(context.Background(), statusChanged(id))
	}
	require.NoError(t, d.Close())

	assert.Equal(t, want, seen, "a failing subscriber does not stop later events")
}
