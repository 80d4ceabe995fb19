package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/view"
	"github.com/garyjia/claimflow/internal/application/workflow"
	"github.com/garyjia/claimflow/internal/domain/entity"
	domainwf "github.com/garyjia/claimflow/internal/domain/workflow"
)

// PendingAction is an action held until the user confirms it
type PendingAction struct {
	Action view.Action
	IDs    []string
	// Prompt is the localized confirmation question
	Prompt string
}

// Outcome is delivered once a confirmed action and its reconciliation finish
type Outcome struct {
	Action  view.Action
	IDs     []string
	Updated []*entity.Claim
	Err     error
	// ReconcileErr is set when the follow-up fetch failed
	ReconcileErr error
}

// Orchestrator drives the actions of one view: confirmation, the single
// in-flight slot, optimistic removal, rollback and reconciliation
type Orchestrator struct {
	session   *Session
	engine    *workflow.Engine
	repo      port.ClaimRepository
	notifier  port.Notifier
	navigator port.Navigator
	logger    *zap.Logger

	mu      sync.Mutex
	pending *PendingAction

	inFlight atomic.Bool
	wg       sync.WaitGroup
}

// New creates an orchestrator for the session's view
func New(
	session *Session,
	engine *workflow.Engine,
	repo port.ClaimRepository,
	notifier port.Notifier,
	navigator port.Navigator,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		session:   session,
		engine:    engine,
		repo:      repo,
		notifier:  notifier,
		navigator: navigator,
		logger:    logger.With(zap.String("view", string(session.proj.Name))),
	}
}

// Session returns the view session
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Enabled reports whether the action button can be pressed for the selection
func (o *Orchestrator) Enabled(a view.Action, selected []string) bool {
	if !o.session.proj.Allows(a) || o.InFlight() {
		return false
	}
	return a == view.ActionDownload || len(selected) > 0
}

// InFlight reports whether a confirmed action is still running
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// Request holds a status-changing action until Confirm or Cancel
func (o *Orchestrator) Request(a view.Action, ids ...string) (*PendingAction, error) {
	if o.session.Closed() {
		return nil, ErrViewClosed
	}
	if !a.ChangesStatus() || !o.session.proj.Allows(a) {
		return nil, fmt.Errorf("%w: %s", ErrActionNotAllowed, a)
	}
	ids = compact(ids)
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}

	p := &PendingAction{
		Action: a,
		IDs:    ids,
		Prompt: o.session.proj.T("action.confirm", map[string]any{
			"Action": o.session.proj.Labels[a],
			"Count":  len(ids),
		}),
	}

	o.mu.Lock()
	o.pending = p
	o.mu.Unlock()
	return p, nil
}

// Pending returns the action awaiting confirmation
func (o *Orchestrator) Pending() (PendingAction, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return PendingAction{}, false
	}
	return *o.pending, true
}

// Cancel discards the pending action
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	o.pending = nil
	o.mu.Unlock()
}

// clearPending discards p unless a newer Request has replaced it
func (o *Orchestrator) clearPending(p *PendingAction) {
	o.mu.Lock()
	if o.pending == p {
		o.pending = nil
	}
	o.mu.Unlock()
}

// Confirm validates the pending action against the local list and dispatches
// it. A missing reason keeps the action pending. Every other outcome clears
// it. The returned channel yields exactly one Outcome. Errors already shown
// through the Notifier match ErrNotified, as does Outcome.Err.
func (o *Orchestrator) Confirm(ctx context.Context, reason string) (<-chan Outcome, error) {
	o.mu.Lock()
	p := o.pending
	o.mu.Unlock()
	if p == nil {
		return nil, ErrNoPendingAction
	}
	if o.session.Closed() {
		o.clearPending(p)
		return nil, ErrViewClosed
	}

	target, _ := p.Action.Target()
	label := o.session.proj.Labels[p.Action]
	reason = strings.TrimSpace(reason)
	if workflow.ReasonRequired(target) && reason == "" {
		o.notify(port.LevelError, o.session.proj.T("action.reason_required", map[string]any{"Action": label}))
		return nil, notified(fmt.Errorf("%w: %s", domainwf.ErrReasonRequired, p.Action))
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrActionInFlight
	}
	o.clearPending(p)

	req, err := o.engine.ApplyTransition(ctx, o.session, p.IDs, target, o.session.proj.Actor, reason)
	if err != nil {
		o.inFlight.Store(false)
		o.notifyFailure(label, err)
		return nil, notified(err)
	}

	out := make(chan Outcome, 1)
	if req.Empty() {
		o.inFlight.Store(false)
		out <- Outcome{Action: p.Action}
		close(out)
		return out, nil
	}

	removed := o.session.remove(req.IDs)
	o.logger.Info("Action dispatched",
		zap.String("action", string(p.Action)),
		zap.Strings("claim_ids", req.IDs))

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer close(out)
		out <- o.dispatch(context.WithoutCancel(ctx), p.Action, label, req, removed)
	}()
	return out, nil
}

func (o *Orchestrator) dispatch(
	ctx context.Context,
	action view.Action,
	label string,
	req *workflow.TransitionRequest,
	removed []removal,
) Outcome {
	defer o.inFlight.Store(false)

	result := Outcome{Action: action, IDs: req.IDs}
	updated, err := o.repo.UpdateStatus(ctx, req.IDs, req.Target, req.Reason)
	if err != nil {
		o.session.restore(removed)
		o.logger.Error("Action failed, local list restored",
			zap.String("action", string(action)),
			zap.Strings("claim_ids", req.IDs),
			zap.Error(err))
		o.notifyFailure(label, err)
		result.Err = notified(err)
		return result
	}
	result.Updated = updated

	o.notify(port.LevelSuccess, o.session.proj.T("action.success", map[string]any{
		"Action": label,
		"Count":  len(updated),
	}))

	if o.session.Closed() {
		o.session.settle(req.IDs)
		return result
	}

	if next, ok := o.session.proj.NavigateAfter(action); ok && o.navigator != nil {
		o.navigator.Navigate(string(next))
	}

	// the server's answer replaces the optimistic removal, so the ids must
	// be visible to the reconciling fetch
	o.session.settle(req.IDs)
	result.ReconcileErr = o.session.Reconcile(ctx)
	if result.ReconcileErr != nil && !errors.Is(result.ReconcileErr, ErrViewClosed) {
		o.logger.Warn("Reconciliation fetch failed", zap.Error(result.ReconcileErr))
	}
	return result
}

// Download exports the selected claims, or the whole filtered view when none
// are selected. It needs no confirmation and never touches the local list.
func (o *Orchestrator) Download(ctx context.Context, exporter port.Exporter, w io.Writer, ids ...string) (int, error) {
	if !o.session.proj.Allows(view.ActionDownload) {
		return 0, fmt.Errorf("%w: %s", ErrActionNotAllowed, view.ActionDownload)
	}
	if o.session.Closed() {
		return 0, ErrViewClosed
	}

	claims := o.session.Visible()
	if ids = compact(ids); len(ids) > 0 {
		claims = claims[:0:0]
		for _, id := range ids {
			if c, ok := o.session.Lookup(id); ok {
				claims = append(claims, c)
			}
		}
	}
	if len(claims) == 0 {
		return 0, ErrNoSelection
	}

	label := o.session.proj.Labels[view.ActionDownload]
	if err := exporter.Export(ctx, claims, w); err != nil {
		o.notifyFailure(label, err)
		return 0, notified(fmt.Errorf("export %s: %w", exporter.Format(), err))
	}

	o.notify(port.LevelSuccess, o.session.proj.T("action.download.success", map[string]any{"Count": len(claims)}))
	return len(claims), nil
}

// Wait blocks until every dispatched action has finished
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close tears down the view. Running actions finish without touching it.
func (o *Orchestrator) Close() {
	o.Cancel()
	o.session.Close()
}

func (o *Orchestrator) notifyFailure(label string, err error) {
	o.notify(port.LevelError, o.session.proj.T("action.failed", map[string]any{
		"Action": label,
		"Error":  err.Error(),
	}))
}

func (o *Orchestrator) notify(level port.NotificationLevel, msg string) {
	if o.notifier == nil {
		return
	}
	o.notifier.Notify(port.UserNotification{Level: level, Message: msg})
}

func compact(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
