// Package export renders claims for the Download action.
package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

// ErrUnknownFormat is returned for a format no exporter renders
var ErrUnknownFormat = errors.New("unknown export format")

// columns shared by every exporter
var columns = []string{"ID", "Staff", "Project", "Period", "Hours", "Status", "Claimer reason", "Approver reason"}

func row(c *entity.Claim) []string {
	return []string{
		c.ID,
		c.StaffName,
		c.ProjectName,
		c.Period.String(),
		strconv.FormatFloat(c.Hours, 'f', -1, 64),
		string(c.Status),
		c.ReasonClaimer,
		c.ReasonApprover,
	}
}

func totalHours(claims []*entity.Claim) float64 {
	var sum float64
	for _, c := range claims {
		sum += c.Hours
	}
	return sum
}

// Registry looks exporters up by format
type Registry struct {
	exporters map[string]port.Exporter
}

// NewRegistry indexes the exporters by their format
func NewRegistry(exporters ...port.Exporter) *Registry {
	r := &Registry{exporters: make(map[string]port.Exporter, len(exporters))}
	for _, e := range exporters {
		r.exporters[e.Format()] = e
	}
	return r
}

// Get returns the exporter for format, matched case-insensitively
func (r *Registry) Get(format string) (port.Exporter, error) {
	e, ok := r.exporters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return e, nil
}

// Filename builds the download name for a view
func Filename(viewName string, e port.Exporter) string {
	if viewName == "" {
		viewName = "claims"
	}
	return fmt.Sprintf("%s.%s", viewName, e.Format())
}
