package view

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

var (
	// ErrUnknownView is returned when a role has no view by that name
	ErrUnknownView = errors.New("unknown view")
)

// Name identifies a view within a role's navigation
type Name string

const (
	NameDraft     Name = "draft"
	NamePending   Name = "pending"
	NameApproved  Name = "approved"
	NamePaid      Name = "paid"
	NameRejected  Name = "rejected"
	NameCancelled Name = "cancelled"
	NameVetting   Name = "vetting"
	NameHistory   Name = "history"
	NameAll       Name = "all"
)

// Definition is the fixed configuration of one claims view
type Definition struct {
	Name    Name
	Scope   query.Predicate
	Actions []Action
	// Navigate maps a successful action to the view the user is sent to
	Navigate map[Action]Name
	// OwnOnly restricts the view to the actor's own claims
	OwnOnly bool
}

// TitleID is the catalog message id of the view title
func (d Definition) TitleID() string {
	return "view." + string(d.Name) + ".title"
}

func statusView(name Name, status entity.Status, own bool, actions ...Action) Definition {
	return Definition{
		Name:    name,
		Scope:   query.StatusIn(status),
		Actions: actions,
		OwnOnly: own,
	}
}

// definitions is the per-role lookup table
var definitions = map[entity.Role][]Definition{
	entity.RoleClaimer: {
		{
			Name:     NameDraft,
			Scope:    query.StatusIn(entity.StatusDraft),
			Actions:  []Action{ActionSubmit, ActionCancel, ActionDownload},
			Navigate: map[Action]Name{ActionSubmit: NamePending},
			OwnOnly:  true,
		},
		statusView(NamePending, entity.StatusPending, true, ActionDownload),
		statusView(NameApproved, entity.StatusApproved, true, ActionDownload),
		statusView(NamePaid, entity.StatusPaid, true, ActionDownload),
		statusView(NameRejected, entity.StatusRejected, true, ActionDownload),
		statusView(NameCancelled, entity.StatusCancelled, true, ActionDownload),
	},
	entity.RoleApprover: {
		{
			Name:     NameVetting,
			Scope:    query.StatusIn(entity.StatusPending),
			Actions:  []Action{ActionApprove, ActionReject, ActionDownload},
			Navigate: map[Action]Name{ActionApprove: NameHistory},
		},
		{
			Name:    NameHistory,
			Scope:   query.StatusIn(entity.StatusApproved, entity.StatusPaid),
			Actions: []Action{ActionDownload},
		},
	},
	entity.RoleFinance: {
		{
			Name:     NameApproved,
			Scope:    query.StatusIn(entity.StatusApproved),
			Actions:  []Action{ActionPay, ActionDownload},
			Navigate: map[Action]Name{ActionPay: NamePaid},
		},
		statusView(NamePaid, entity.StatusPaid, false, ActionDownload),
	},
	entity.RoleAdministrator: {
		{
			Name:    NameAll,
			Scope:   query.All,
			Actions: []Action{ActionDownload},
		},
	},
}

// Projection is a view definition resolved for one actor
type Projection struct {
	Definition
	Actor  entity.Actor
	Title  string
	Labels map[Action]string

	locale  string
	catalog *Catalog
}

// Predicate is the view scope narrowed to the actor where the view requires it
func (p *Projection) Predicate() query.Predicate {
	if p.OwnOnly {
		return query.And(p.Scope, query.OwnedBy(p.Actor.ID))
	}
	return p.Scope
}

// Allows reports whether the view exposes the action
func (p *Projection) Allows(a Action) bool {
	return slices.Contains(p.Actions, a)
}

// NavigateAfter returns the view a successful action leads to, if any
func (p *Projection) NavigateAfter(a Action) (Name, bool) {
	n, ok := p.Navigate[a]
	return n, ok
}

// T translates a message in the projection's locale
func (p *Projection) T(messageID string, data map[string]any) string {
	if p.catalog == nil {
		return messageID
	}
	return p.catalog.T(p.locale, messageID, data)
}

// Registry resolves the lookup table into projections for an actor
type Registry struct {
	catalog *Catalog
	locale  string
}

// NewRegistry creates a registry rendering labels in locale
func NewRegistry(catalog *Catalog, locale string) *Registry {
	return &Registry{catalog: catalog, locale: locale}
}

// For returns every view the actor's role can open, in navigation order
func (r *Registry) For(actor entity.Actor) []*Projection {
	defs := definitions[actor.Role]
	out := make([]*Projection, 0, len(defs))
	for _, d := range defs {
		out = append(out, r.project(d, actor))
	}
	return out
}

// Resolve returns the named view for the actor
func (r *Registry) Resolve(actor entity.Actor, name string) (*Projection, error) {
	for _, d := range definitions[actor.Role] {
		if strings.EqualFold(string(d.Name), strings.TrimSpace(name)) {
			return r.project(d, actor), nil
		}
	}
	return nil, fmt.Errorf("%w: %q for role %s", ErrUnknownView, name, actor.Role)
}

// Default returns the first view of the actor's role
func (r *Registry) Default(actor entity.Actor) (*Projection, error) {
	defs := definitions[actor.Role]
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: role %s has no views", ErrUnknownView, actor.Role)
	}
	return r.project(defs[0], actor), nil
}

func (r *Registry) project(d Definition, actor entity.Actor) *Projection {
	p := &Projection{
		Definition: d,
		Actor:      actor,
		Labels:     make(map[Action]string, len(d.Actions)),
		locale:     r.locale,
		catalog:    r.catalog,
	}
	p.Title = p.T(d.TitleID(), nil)
	for _, a := range d.Actions {
		p.Labels[a] = p.T("action."+string(a)+".label", nil)
	}
	return p
}
