package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService("s3cret", "claimflow", time.Hour)
	require.NoError(t, err)

	actor := entity.Actor{ID: "a-1", Role: entity.RoleApprover, DisplayName: "Vera"}
	token, err := svc.Issue(actor)
	require.NoError(t, err)

	got, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestTokenService_Rejects(t *testing.T) {
	svc, err := NewTokenService("s3cret", "claimflow", time.Hour)
	require.NoError(t, err)
	actor := entity.Actor{ID: "a-1", Role: entity.RoleFinance}

	other, err := NewTokenService("other", "claimflow", time.Hour)
	require.NoError(t, err)
	forged, err := other.Issue(actor)
	require.NoError(t, err)

	expired, err := NewTokenService("s3cret", "claimflow", time.Hour)
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue(actor)
	require.NoError(t, err)

	foreign, err := NewTokenService("s3cret", "someone-else", time.Hour)
	require.NoError(t, err)
	wrongIssuer, err := foreign.Issue(actor)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": forged,
		"expired":      stale,
		"wrong issuer": wrongIssuer,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Parse(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_Validation(t *testing.T) {
	_, err := NewTokenService("", "", 0)
	assert.ErrorIs(t, err, ErrMissingSecret)

	svc, err := NewTokenService("s3cret", "", 0)
	require.NoError(t, err)
	_, err = svc.Issue(entity.Actor{ID: "x", Role: "Auditor"})
	assert.Error(t, err)
}

func TestPeek(t *testing.T) {
	svc, err := NewTokenService("s3cret", "claimflow", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(entity.Actor{ID: "s-9", Role: entity.RoleFinance, DisplayName: "Fin"})
	require.NoError(t, err)

	actor, err := Peek(token)
	require.NoError(t, err)
	assert.Equal(t, entity.Actor{ID: "s-9", Role: entity.RoleFinance, DisplayName: "Fin"}, actor)

	_, err = Peek("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
