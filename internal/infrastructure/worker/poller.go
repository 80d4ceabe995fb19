package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval is the refresh period for notification-style data
const DefaultPollInterval = 5 * time.Minute

// PollFunc performs one refresh
type PollFunc func(ctx context.Context) error

// Poller runs a PollFunc immediately and then on every tick until stopped.
// A tick that arrives while the previous run is still going is dropped.
type Poller struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	fn       PollFunc
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller. A non-positive interval uses DefaultPollInterval.
func NewPoller(name string, interval time.Duration, fn PollFunc, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		name:     name,
		interval: interval,
		timeout:  interval,
		fn:       fn,
		logger:   logger,
	}
}

// Name returns the worker name
func (p *Poller) Name() string {
	return p.name
}

// Start launches the poll loop
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return fmt.Errorf("%s is already running", p.name)
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	p.logger.Info("Poller started", zap.String("worker_name", p.name), zap.Duration("poll_interval", p.interval))
	go p.loop(ctx, p.done)
	return nil
}

// Stop cancels the loop and waits for the current run to return
func (p *Poller) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *Poller) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.fn(runCtx); err != nil && ctx.Err() == nil {
		p.logger.Warn("Poll failed", zap.String("worker_name", p.name), zap.Error(err))
	}
}
