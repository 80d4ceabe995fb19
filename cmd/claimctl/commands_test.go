package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/garyjia/claimflow/internal/application/orchestrator"
	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/application/view"
	"github.com/garyjia/claimflow/internal/application/workflow"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

func TestViewFlags_Params(t *testing.T) {
	tests := []struct {
		name  string
		flags viewFlags
		want  query.Params
	}{
		{
			name:  "defaults",
			flags: viewFlags{},
			want:  query.Params{Sort: query.SortConfig{Direction: query.Asc}, Page: 1},
		},
		{
			name:  "raw query",
			flags: viewFlags{raw: "?status=Pending&sort=hours&dir=desc&page=3"},
			want: query.Params{
				Criteria: query.Criteria{Status: "Pending"},
				Sort:     query.SortConfig{Key: query.SortHours, Direction: query.Desc},
				Page:     3,
			},
		},
		{
			name:  "flags override raw query",
			flags: viewFlags{raw: "status=Pending&page=3", status: "Approved", search: "apollo", field: "project", page: 2},
			want: query.Params{
				Criteria: query.Criteria{Status: "Approved", SearchTerm: "apollo", SearchField: "project"},
				Sort:     query.SortConfig{Direction: query.Asc},
				Page:     2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.params()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestViewFlags_InvalidQuery(t *testing.T) {
	f := viewFlags{raw: "status=%zz"}
	_, err := f.params()
	assert.Error(t, err)
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := newConsole(&buf)

	c.Notify(port.UserNotification{Level: port.LevelSuccess, Message: "Approve: 1 claim(s) updated"})
	c.Navigate("history")
	assert.Equal(t, "history", c.NextView())

	proj := &view.Projection{
		Definition: view.Definition{Name: "vetting", Actions: []view.Action{view.ActionApprove}},
		Title:      "Claims for Vetting",
		Labels:     map[view.Action]string{view.ActionApprove: "Approve"},
	}
	claim := &entity.Claim{
		ID: "c1", StaffName: "Ann", ProjectName: "Apollo", Hours: 7.5,
		Status: entity.StatusPending, ReasonClaimer: "overtime",
		Period: entity.Period{From: entity.NewDate(2024, 1, 1), To: entity.NewDate(2024, 1, 31)},
	}
	c.renderPage(proj, query.Page{Items: []*entity.Claim{claim}, Number: 1, TotalPages: 1, Total: 1},
		query.Params{Criteria: query.Criteria{Status: "Pending"}, Page: 1})

	out := buf.String()
	assert.Contains(t, out, "[success] Approve: 1 claim(s) updated")
	assert.Contains(t, out, "next view: history")
	assert.Contains(t, out, "Claims for Vetting")
	assert.Contains(t, out, "From 2024-01-01 To 2024-01-31")
	assert.Contains(t, out, "7.5")
	assert.Contains(t, out, "page 1/1, 1 claim(s)  ?status=Pending")
	assert.Contains(t, out, "actions: approve (Approve)")
}

// brokenRepo lists its claims but rejects every status update
type brokenRepo struct {
	claims []*entity.Claim
}

func (r *brokenRepo) List(context.Context, port.ListFilter) ([]*entity.Claim, error) {
	out := make([]*entity.Claim, len(r.claims))
	for i, c := range r.claims {
		out[i] = c.Clone()
	}
	return out, nil
}

func (r *brokenRepo) Get(context.Context, string) (*entity.Claim, error) {
	return nil, errors.New("not found")
}

func (r *brokenRepo) Create(_ context.Context, c *entity.Claim) (*entity.Claim, error) {
	return c, nil
}

func (r *brokenRepo) UpdateStatus(context.Context, []string, entity.Status, string) ([]*entity.Claim, error) {
	return nil, &port.RepositoryError{Op: "update status", StatusCode: 502, Message: "bad gateway"}
}

func TestActReportsFailureOnce(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "server rejects update", args: []string{"approve", "c1", "--yes", "--reason", "ok"}, wantMsg: "bad gateway"},
		{name: "missing reason", args: []string{"approve", "c1", "--yes"}, wantMsg: "reason"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := view.NewCatalog("en")
			require.NoError(t, err)

			var out, stderr bytes.Buffer
			pending := &entity.Claim{
				ID: "c1", StaffID: "s-1", StaffName: "Ann", ProjectName: "Apollo", Hours: 4,
				Status: entity.StatusPending, ReasonClaimer: "overtime",
				Period: entity.Period{From: entity.NewDate(2024, time.May, 2), To: entity.NewDate(2024, time.May, 3)},
			}
			a := &app{
				logger:  zap.NewNop(),
				actor:   entity.Actor{ID: "a-1", Role: entity.RoleApprover, DisplayName: "Vera"},
				repo:    &brokenRepo{claims: []*entity.Claim{pending}},
				views:   view.NewRegistry(catalog, "en"),
				query:   query.NewEngine(zap.NewNop(), language.English),
				engine:  workflow.NewEngine(),
				console: newConsole(&out),
			}

			cmd := newActCommand(func() *app { return a })
			cmd.SilenceErrors, cmd.SilenceUsage = true, true
			cmd.SetOut(&out)
			cmd.SetErr(&stderr)
			cmd.SetArgs(tt.args)

			err = cmd.ExecuteContext(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, orchestrator.ErrNotified)
			reportError(&stderr, err)

			assert.Equal(t, 1, strings.Count(out.String(), "[error]"), out.String())
			assert.Contains(t, out.String(), tt.wantMsg)
			assert.Empty(t, stderr.String())
		})
	}
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, errors.New("no token"))
	assert.Equal(t, "error: no token\n", buf.String())
}
