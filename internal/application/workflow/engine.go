package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/garyjia/claimflow/internal/domain/entity"
	domainwf "github.com/garyjia/claimflow/internal/domain/workflow"
)

var (
	// ErrUnknownClaim is returned when a batch names a claim the source does not hold
	ErrUnknownClaim = errors.New("unknown claim")

	// ErrClaimerReasonRequired is returned when a claim without a claimer reason is submitted
	ErrClaimerReasonRequired = errors.New("reasonClaimer is required to submit")
)

// ClaimSource resolves claims by id against whatever list the caller validates with
type ClaimSource interface {
	Lookup(id string) (*entity.Claim, bool)
}

// ClaimIndex is an in-memory ClaimSource
type ClaimIndex map[string]*entity.Claim

// NewClaimIndex indexes claims by id
func NewClaimIndex(claims []*entity.Claim) ClaimIndex {
	idx := make(ClaimIndex, len(claims))
	for _, c := range claims {
		if c != nil {
			idx[c.ID] = c
		}
	}
	return idx
}

// Lookup implements ClaimSource
func (idx ClaimIndex) Lookup(id string) (*entity.Claim, bool) {
	c, ok := idx[id]
	return c, ok
}

// TransitionRequest is a validated batch ready for the repository's bulk update
type TransitionRequest struct {
	IDs      []string
	Target   entity.Status
	Reason   string
	Actor    entity.Actor
	Previous map[string]entity.Status
}

// Empty reports whether the request carries no claims
func (r *TransitionRequest) Empty() bool {
	return r == nil || len(r.IDs) == 0
}

// ApplyTo writes the transition onto a claim. It is the only place a claim's
// status is assigned after creation.
func (r *TransitionRequest) ApplyTo(claim *entity.Claim, now time.Time) {
	claim.Status = r.Target
	if r.Target == entity.StatusApproved || r.Target == entity.StatusRejected {
		claim.ReasonApprover = r.Reason
	}
	claim.UpdatedAt = now
}

// Engine is the authority on which status changes are legal for which role
type Engine struct{}

// NewEngine creates a transition engine
func NewEngine() *Engine {
	return &Engine{}
}

// CanTransition reports whether role may move claim into target. It has no side effects.
func (e *Engine) CanTransition(claim *entity.Claim, target entity.Status, role entity.Role) bool {
	if claim == nil || !claim.Status.IsValid() {
		return false
	}
	trigger, ok := domainwf.TriggerFor(target)
	if !ok {
		return false
	}
	return BuildClaimStateMachine(claim.Status).CanFire(trigger, role)
}

// AllowedTargets lists the statuses role may move claim into
func (e *Engine) AllowedTargets(claim *entity.Claim, role entity.Role) []entity.Status {
	var targets []entity.Status
	for _, s := range entity.AllStatuses {
		if e.CanTransition(claim, s, role) {
			targets = append(targets, s)
		}
	}
	return targets
}

// ApplyTransition validates a batch against the current statuses held by src.
// The batch is all-or-nothing: the first offending id fails the whole request.
// An empty batch succeeds with an empty request.
func (e *Engine) ApplyTransition(
	ctx context.Context,
	src ClaimSource,
	ids []string,
	target entity.Status,
	actor entity.Actor,
	reason string,
) (*TransitionRequest, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: %q", domainwf.ErrInvalidState, target)
	}

	req := &TransitionRequest{
		IDs:      dedupe(ids),
		Target:   target,
		Reason:   strings.TrimSpace(reason),
		Actor:    actor,
		Previous: make(map[string]entity.Status),
	}
	if req.Empty() {
		return req, nil
	}

	if ReasonRequired(target) && req.Reason == "" {
		return nil, fmt.Errorf("%w: moving to %s", domainwf.ErrReasonRequired, target)
	}

	trigger, hasTrigger := domainwf.TriggerFor(target)

	for _, id := range req.IDs {
		claim, ok := src.Lookup(id)
		if !ok || claim == nil {
			return nil, fmt.Errorf("claim %s: %w", id, ErrUnknownClaim)
		}

		if !hasTrigger || !claim.Status.IsValid() {
			return nil, &domainwf.TransitionError{ClaimID: id, From: claim.Status, To: target, Role: actor.Role}
		}

		sm := BuildClaimStateMachine(claim.Status)
		if err := sm.Fire(ctx, trigger, actor.Role, req.Reason); err != nil {
			var te *domainwf.TransitionError
			if errors.As(err, &te) {
				te.ClaimID = id
				te.To = target
				return nil, te
			}
			return nil, fmt.Errorf("claim %s: %w", id, err)
		}
		if target == entity.StatusPending && strings.TrimSpace(claim.ReasonClaimer) == "" {
			return nil, fmt.Errorf("claim %s: %w", id, ErrClaimerReasonRequired)
		}

		req.Previous[id] = claim.Status
	}

	return req, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
