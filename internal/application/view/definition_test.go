package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

func newRegistry(t *testing.T, locale string) *Registry {
	t.Helper()
	catalog, err := NewCatalog("en")
	require.NoError(t, err)
	return NewRegistry(catalog, locale)
}

func TestRegistry_ViewsPerRole(t *testing.T) {
	r := newRegistry(t, "en")

	tests := []struct {
		role  entity.Role
		views []Name
	}{
		{entity.RoleClaimer, []Name{NameDraft, NamePending, NameApproved, NamePaid, NameRejected, NameCancelled}},
		{entity.RoleApprover, []Name{NameVetting, NameHistory}},
		{entity.RoleFinance, []Name{NameApproved, NamePaid}},
		{entity.RoleAdministrator, []Name{NameAll}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			var got []Name
			for _, p := range r.For(entity.Actor{ID: "u1", Role: tt.role}) {
				got = append(got, p.Name)
			}
			assert.Equal(t, tt.views, got)
		})
	}
}

func TestRegistry_ActionsOnlyWhereTransitionsExist(t *testing.T) {
	r := newRegistry(t, "en")

	vetting, err := r.Resolve(entity.Actor{Role: entity.RoleApprover}, "vetting")
	require.NoError(t, err)
	assert.True(t, vetting.Allows(ActionApprove))
	assert.True(t, vetting.Allows(ActionReject))
	assert.False(t, vetting.Allows(ActionPay))

	next, ok := vetting.NavigateAfter(ActionApprove)
	assert.True(t, ok)
	assert.Equal(t, NameHistory, next)
	_, ok = vetting.NavigateAfter(ActionReject)
	assert.False(t, ok)

	admin, err := r.Default(entity.Actor{Role: entity.RoleAdministrator})
	require.NoError(t, err)
	assert.Equal(t, []Action{ActionDownload}, admin.Actions)
}

func TestProjection_PredicateScopesOwnClaims(t *testing.T) {
	r := newRegistry(t, "en")
	mine := &entity.Claim{ID: "c1", StaffID: "u1", Status: entity.StatusDraft}
	theirs := &entity.Claim{ID: "c2", StaffID: "u2", Status: entity.StatusDraft}
	pending := &entity.Claim{ID: "c3", StaffID: "u1", Status: entity.StatusPending}

	draft, err := r.Resolve(entity.Actor{ID: "u1", Role: entity.RoleClaimer}, "Draft")
	require.NoError(t, err)
	pred := draft.Predicate()
	assert.True(t, pred(mine))
	assert.False(t, pred(theirs))
	assert.False(t, pred(pending))

	history, err := r.Resolve(entity.Actor{ID: "a1", Role: entity.RoleApprover}, "history")
	require.NoError(t, err)
	assert.True(t, history.Predicate()(&entity.Claim{StaffID: "u9", Status: entity.StatusPaid}))
	assert.False(t, history.Predicate()(&entity.Claim{StaffID: "u9", Status: entity.StatusRejected}))
}

func TestRegistry_UnknownView(t *testing.T) {
	r := newRegistry(t, "en")

	_, err := r.Resolve(entity.Actor{Role: entity.RoleClaimer}, "vetting")
	assert.ErrorIs(t, err, ErrUnknownView)

	_, err = r.Default(entity.Actor{Role: entity.Role("Guest")})
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestProjection_LocalizedLabels(t *testing.T) {
	en := newRegistry(t, "en")
	vi := newRegistry(t, "vi")
	approver := entity.Actor{Role: entity.RoleApprover}

	pEN, err := en.Resolve(approver, "vetting")
	require.NoError(t, err)
	pVI, err := vi.Resolve(approver, "vetting")
	require.NoError(t, err)

	assert.Equal(t, "Claims for Vetting", pEN.Title)
	assert.Equal(t, "Approve", pEN.Labels[ActionApprove])
	assert.Equal(t, "Duyệt", pVI.Labels[ActionApprove])
	assert.Equal(t, "Approve: 2 claim(s) updated", pEN.T("action.success", map[string]any{"Action": "Approve", "Count": 2}))
	assert.Equal(t, "no.such.message", pEN.T("no.such.message", nil))
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction(" Approve ")
	assert.True(t, ok)
	assert.Equal(t, ActionApprove, a)

	target, ok := a.Target()
	assert.True(t, ok)
	assert.Equal(t, entity.StatusApproved, target)

	d, ok := ParseAction("download")
	assert.True(t, ok)
	assert.False(t, d.ChangesStatus())

	_, ok = ParseAction("archive")
	assert.False(t, ok)
}
