package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

// SortKey names a sortable claim field
type SortKey string

const (
	SortNone          SortKey = ""
	SortID            SortKey = "id"
	SortStaffName     SortKey = "staffName"
	SortProjectName   SortKey = "projectName"
	SortPeriod        SortKey = "period"
	SortHours         SortKey = "hours"
	SortStatus        SortKey = "status"
	SortUpdatedAt     SortKey = "updatedAt"
	SortReasonClaimer SortKey = "reasonClaimer"
)

var sortKeys = []SortKey{
	SortID, SortStaffName, SortProjectName, SortPeriod,
	SortHours, SortStatus, SortUpdatedAt, SortReasonClaimer,
}

// ParseSortKey matches a key case-insensitively. Unknown keys mean no sort.
func ParseSortKey(s string) SortKey {
	s = strings.TrimSpace(s)
	for _, k := range sortKeys {
		if strings.EqualFold(s, string(k)) {
			return k
		}
	}
	return SortNone
}

// Direction is the sort order
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection returns Desc for "desc" and Asc otherwise
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// SortConfig selects the sort key and direction
type SortConfig struct {
	Key       SortKey   `json:"key,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Sort returns the claims stably ordered by cfg. With no key the input is
// returned unchanged; otherwise a new slice is returned.
func (e *Engine) Sort(claims []*entity.Claim, cfg SortConfig) []*entity.Claim {
	if cfg.Key == SortNone {
		return claims
	}

	col := collate.New(e.tag)
	sign := 1
	if cfg.Direction == Desc {
		sign = -1
	}

	out := slices.Clone(claims)
	slices.SortStableFunc(out, func(a, b *entity.Claim) int {
		return sign * compareBy(col, cfg.Key, a, b)
	})
	return out
}

func compareBy(col *collate.Collator, key SortKey, a, b *entity.Claim) int {
	switch key {
	case SortID:
		return col.CompareString(a.ID, b.ID)
	case SortStaffName:
		return col.CompareString(a.StaffName, b.StaffName)
	case SortProjectName:
		return col.CompareString(a.ProjectName, b.ProjectName)
	case SortStatus:
		return col.CompareString(string(a.Status), string(b.Status))
	case SortReasonClaimer:
		return col.CompareString(a.ReasonClaimer, b.ReasonClaimer)
	case SortHours:
		return cmp.Compare(a.Hours, b.Hours)
	case SortPeriod:
		// zero dates sort first
		return a.Period.From.Compare(b.Period.From.Time)
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return 0
	}
}
