package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoller_RunsImmediatelyAndOnTick(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller("refresh", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil)

	require.NoError(t, p.Start(context.Background()))
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Stop())

	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no runs after Stop")
}

func TestPoller_StartTwice(t *testing.T) {
	p := NewPoller("refresh", time.Hour, func(ctx context.Context) error { return nil }, nil)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	assert.Error(t, p.Start(context.Background()))
}

func TestPoller_StopWaitsForRun(t *testing.T) {
	started := make(chan struct{})
	var finished atomic.Bool
	p := NewPoller("slow", time.Hour, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		finished.Store(true)
		return ctx.Err()
	}, nil)

	require.NoError(t, p.Start(context.Background()))
	<-started
	require.NoError(t, p.Stop())
	assert.True(t, finished.Load())
	assert.NoError(t, p.Stop(), "stopping twice is a no-op")
}

type fakeWorker struct {
	name     string
	startErr error
	log      *[]string
}

func (w *fakeWorker) Start(ctx context.Context) error {
	if w.startErr != nil {
		return w.startErr
	}
	*w.log = append(*w.log, "start "+w.name)
	return nil
}

func (w *fakeWorker) Stop() error {
	*w.log = append(*w.log, "stop "+w.name)
	return nil
}

func (w *fakeWorker) Name() string { return w.name }

func TestManager_Lifecycle(t *testing.T) {
	var log []string
	m := NewManager(nil)
	m.Register(&fakeWorker{name: "a", log: &log})
	m.Register(&fakeWorker{name: "broken", startErr: errors.New("boom"), log: &log})
	m.Register(&fakeWorker{name: "b", log: &log})

	require.NoError(t, m.StartAll(context.Background()))
	assert.True(t, m.IsRunning())
	assert.Error(t, m.StartAll(context.Background()))

	require.NoError(t, m.StopAll())
	assert.False(t, m.IsRunning())
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, log)
	assert.Equal(t, 3, m.Count())
}
