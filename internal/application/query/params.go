package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

// Query-string parameter names
const (
	ParamStatus      = "status"
	ParamSearchTerm  = "searchTerm"
	ParamSearchField = "searchField"
	ParamDateFrom    = "dateFrom"
	ParamDateTo      = "dateTo"
	ParamSort        = "sort"
	ParamDirection   = "dir"
	ParamPage        = "page"
)

// Params is the complete shareable state of a view
type Params struct {
	Criteria Criteria
	Sort     SortConfig
	Page     int
}

// FromValues decodes query-string parameters. Absent and empty values are
// treated identically.
func FromValues(v url.Values) Params {
	p := Params{
		Criteria: Criteria{
			Status:      strings.TrimSpace(v.Get(ParamStatus)),
			SearchTerm:  v.Get(ParamSearchTerm),
			SearchField: strings.TrimSpace(v.Get(ParamSearchField)),
			DateFrom:    strings.TrimSpace(v.Get(ParamDateFrom)),
			DateTo:      strings.TrimSpace(v.Get(ParamDateTo)),
		},
		Sort: SortConfig{
			Key:       ParseSortKey(v.Get(ParamSort)),
			Direction: ParseDirection(v.Get(ParamDirection)),
		},
		Page: 1,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(v.Get(ParamPage))); err == nil {
		p.Page = n
	}
	return p
}

// Values encodes the params, omitting defaults
func (p Params) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set(ParamStatus, p.Criteria.Status)
	set(ParamSearchTerm, p.Criteria.SearchTerm)
	set(ParamSearchField, p.Criteria.SearchField)
	set(ParamDateFrom, p.Criteria.DateFrom)
	set(ParamDateTo, p.Criteria.DateTo)
	if p.Sort.Key != SortNone {
		v.Set(ParamSort, string(p.Sort.Key))
		if p.Sort.Direction == Desc {
			v.Set(ParamDirection, string(Desc))
		}
	}
	if p.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(p.Page))
	}
	return v
}

// Run filters, sorts and returns the requested page, clamping the page number
// to the available range.
func (e *Engine) Run(claims []*entity.Claim, scope Predicate, p Params) Page {
	filtered := e.Sort(e.Filter(claims, p.Criteria, scope), p.Sort)
	number := ClampPage(p.Page, TotalPages(len(filtered), DefaultPageSize))
	return Paginate(filtered, DefaultPageSize, number)
}
