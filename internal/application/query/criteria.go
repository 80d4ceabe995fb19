package query

import (
	"strings"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

// StatusAll disables the status filter
const StatusAll = "All"

// SearchField names the claim field a search term is matched against
type SearchField string

const (
	FieldAll     SearchField = "all"
	FieldID      SearchField = "id"
	FieldStaff   SearchField = "staff"
	FieldProject SearchField = "project"
	FieldStatus  SearchField = "status"
)

var fieldAliases = map[string]SearchField{
	"":            FieldAll,
	"all":         FieldAll,
	"id":          FieldID,
	"staff":       FieldStaff,
	"staffname":   FieldStaff,
	"project":     FieldProject,
	"projectname": FieldProject,
	"status":      FieldStatus,
}

// ParseSearchField resolves a field name. Unknown names fall back to FieldAll.
func ParseSearchField(s string) SearchField {
	if f, ok := fieldAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f
	}
	return FieldAll
}

// Criteria is the user-editable filter state of a view. Every field is
// optional; empty means no filter.
type Criteria struct {
	Status      string `json:"status,omitempty"`
	SearchTerm  string `json:"searchTerm,omitempty"`
	SearchField string `json:"searchField,omitempty"`
	DateFrom    string `json:"dateFrom,omitempty"`
	DateTo      string `json:"dateTo,omitempty"`
}

// IsZero reports whether no filter is set
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}

// Predicate decides whether a claim belongs to a view
type Predicate func(claim *entity.Claim) bool

// All accepts every claim
func All(*entity.Claim) bool { return true }

// StatusIn accepts claims in any of the given statuses
func StatusIn(statuses ...entity.Status) Predicate {
	set := make(map[entity.Status]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return func(c *entity.Claim) bool {
		return set[c.Status]
	}
}

// OwnedBy accepts claims belonging to staffID
func OwnedBy(staffID string) Predicate {
	return func(c *entity.Claim) bool {
		return c.StaffID == staffID
	}
}

// And accepts claims every predicate accepts. Nil predicates are skipped.
func And(preds ...Predicate) Predicate {
	return func(c *entity.Claim) bool {
		for _, p := range preds {
			if p != nil && !p(c) {
				return false
			}
		}
		return true
	}
}
