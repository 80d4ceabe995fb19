package workflow

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

// StateMachineBuilder collects the permitted edges of the claim lifecycle
type StateMachineBuilder interface {
	// Configure returns the edge registrar for transitions leaving state
	Configure(state State) StateConfiguration

	// Build returns a machine positioned at initialState over a snapshot of the edges
	Build(initialState State) StateMachine

	// RequiresReason reports whether any edge into target demands a reason
	RequiresReason(target State) bool
}

// StateConfiguration registers edges leaving one state
type StateConfiguration interface {
	Permit(trigger Trigger, toState State, actor entity.Role) StateConfiguration

	// PermitWithReason registers an edge that is refused without a non-blank reason
	PermitWithReason(trigger Trigger, toState State, actor entity.Role) StateConfiguration
}

// edge is one (from, trigger, role) -> to rule
type edge struct {
	from        State
	trigger     Trigger
	to          State
	role        entity.Role
	needsReason bool
}

type builder struct {
	origins map[State]*origin
	edges   []edge
}

type origin struct {
	b    *builder
	from State
}

type machine struct {
	state State
	edges []edge
}

// NewBuilder returns an empty builder
func NewBuilder() StateMachineBuilder {
	return &builder{origins: make(map[State]*origin)}
}

func (b *builder) Configure(state State) StateConfiguration {
	if !IsKnownState(state) {
		panic(fmt.Sprintf("workflow: unknown state %q", state))
	}
	o, ok := b.origins[state]
	if !ok {
		o = &origin{b: b, from: state}
		b.origins[state] = o
	}
	return o
}

func (b *builder) Build(initialState State) StateMachine {
	if !IsKnownState(initialState) {
		panic(fmt.Sprintf("workflow: unknown initial state %q", initialState))
	}
	return &machine{state: initialState, edges: slices.Clone(b.edges)}
}

func (b *builder) RequiresReason(target State) bool {
	return slices.ContainsFunc(b.edges, func(e edge) bool {
		return e.to == target && e.needsReason
	})
}

func (o *origin) Permit(trigger Trigger, toState State, actor entity.Role) StateConfiguration {
	return o.add(trigger, toState, actor, false)
}

func (o *origin) PermitWithReason(trigger Trigger, toState State, actor entity.Role) StateConfiguration {
	return o.add(trigger, toState, actor, true)
}

func (o *origin) add(trigger Trigger, to State, role entity.Role, needsReason bool) StateConfiguration {
	switch {
	case !IsKnownState(to):
		panic(fmt.Sprintf("workflow: unknown target state %q", to))
	case !role.IsValid():
		panic(fmt.Sprintf("workflow: unknown role %q", role))
	}
	o.b.edges = append(o.b.edges, edge{
		from:        o.from,
		trigger:     trigger,
		to:          to,
		role:        role,
		needsReason: needsReason,
	})
	return o
}

func (m *machine) State() State {
	return m.state
}

func (m *machine) CanFire(trigger Trigger, role entity.Role) bool {
	_, ok := m.lookup(trigger, role)
	return ok
}

// Fire moves the machine along the matching edge. An illegal edge is
// reported before a missing reason.
func (m *machine) Fire(_ context.Context, trigger Trigger, role entity.Role, reason string) error {
	e, ok := m.lookup(trigger, role)
	if !ok {
		return &TransitionError{From: m.state, To: targetOf(trigger), Role: role}
	}
	if e.needsReason && strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: %s to %s", ErrReasonRequired, m.state, e.to)
	}
	m.state = e.to
	return nil
}

// PermittedTriggers lists triggers in registration order
func (m *machine) PermittedTriggers(role entity.Role) []Trigger {
	var out []Trigger
	for _, e := range m.edges {
		if e.from == m.state && e.role == role && !slices.Contains(out, e.trigger) {
			out = append(out, e.trigger)
		}
	}
	return out
}

func (m *machine) lookup(trigger Trigger, role entity.Role) (edge, bool) {
	i := slices.IndexFunc(m.edges, func(e edge) bool {
		return e.from == m.state && e.trigger == trigger && e.role == role
	})
	if i < 0 {
		return edge{}, false
	}
	return m.edges[i], true
}

func targetOf(trigger Trigger) State {
	for status, t := range triggerTargets {
		if t == trigger {
			return status
		}
	}
	return ""
}
