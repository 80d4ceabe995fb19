package query

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

// Engine filters, sorts and paginates claim lists. It holds no claim state and
// is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
	tag    language.Tag
}

// NewEngine creates a query engine that compares strings under the given locale
func NewEngine(logger *zap.Logger, tag language.Tag) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, tag: tag}
}

// Language returns the collation locale
func (e *Engine) Language() language.Tag {
	return e.tag
}

// Filter keeps the claims accepted by scope and then by criteria, in input order.
// A claim whose period is unusable is dropped only while a date range is active.
func (e *Engine) Filter(claims []*entity.Claim, criteria Criteria, scope Predicate) []*entity.Claim {
	// a known status typed in any case is matched by its canonical name
	status := strings.TrimSpace(criteria.Status)
	if canonical, ok := entity.ParseStatus(status); ok {
		status = string(canonical)
	}
	if status == StatusAll {
		status = ""
	}
	rng := e.dateRange(criteria.DateFrom, criteria.DateTo)
	search := newMatcher(criteria.SearchTerm, criteria.SearchField)

	out := make([]*entity.Claim, 0, len(claims))
	for _, c := range claims {
		if c == nil {
			continue
		}
		if scope != nil && !scope(c) {
			continue
		}
		if status != "" && string(c.Status) != status {
			continue
		}
		if rng.active() {
			if !c.Period.Valid() {
				e.logger.Warn("DataQualityWarning: claim period is not a valid date, excluded from date filter",
					zap.String("claim_id", c.ID),
					zap.String("period_from", c.Period.From.String()),
					zap.String("period_to", c.Period.To.String()))
				continue
			}
			if !rng.contains(c.Period.From.Time) {
				continue
			}
		}
		if !search.match(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

type dateRange struct {
	from time.Time
	to   time.Time
}

func (r dateRange) active() bool {
	return !r.from.IsZero() || !r.to.IsZero()
}

// contains checks the claim's start date only; the end of the period is not consulted
func (r dateRange) contains(t time.Time) bool {
	if !r.from.IsZero() && t.Before(r.from) {
		return false
	}
	if !r.to.IsZero() && t.After(r.to) {
		return false
	}
	return true
}

func (e *Engine) dateRange(fromStr, toStr string) dateRange {
	from := e.parseBound("dateFrom", fromStr)
	to := e.parseBound("dateTo", toStr)

	if !from.IsZero() && !to.IsZero() && from.After(to.Time) {
		from, to = to, from
	}

	var r dateRange
	if !from.IsZero() {
		r.from = from.Time
	}
	if !to.IsZero() {
		r.to = to.Time.Add(24*time.Hour - time.Nanosecond)
	}
	return r
}

func (e *Engine) parseBound(name, raw string) entity.Date {
	if strings.TrimSpace(raw) == "" {
		return entity.Date{}
	}
	d, err := entity.ParseDate(raw)
	if err != nil {
		e.logger.Warn("Ignoring invalid date bound", zap.String("bound", name), zap.String("value", raw))
		return entity.Date{}
	}
	return d
}

type matcher struct {
	term  string
	field SearchField
	fold  cases.Caser
}

func newMatcher(term, field string) *matcher {
	m := &matcher{field: ParseSearchField(field), fold: cases.Fold()}
	m.term = m.fold.String(strings.TrimSpace(term))
	return m
}

func (m *matcher) match(c *entity.Claim) bool {
	if m.term == "" {
		return true
	}
	switch m.field {
	case FieldID:
		return m.contains(c.ID)
	case FieldStaff:
		return m.contains(c.StaffName)
	case FieldProject:
		return m.contains(c.ProjectName)
	case FieldStatus:
		return m.contains(string(c.Status))
	default:
		return m.contains(c.ID) || m.contains(c.StaffName) || m.contains(c.ProjectName) || m.contains(string(c.Status))
	}
}

func (m *matcher) contains(s string) bool {
	return strings.Contains(m.fold.String(s), m.term)
}
