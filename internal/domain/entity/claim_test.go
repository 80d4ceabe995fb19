package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{"date only", "2024-01-03", NewDate(2024, time.January, 3), false},
		{"rfc3339 keeps calendar day", "2024-01-03T17:30:00+07:00", NewDate(2024, time.January, 3), false},
		{"padded", "  2024-02-29 ", NewDate(2024, time.February, 29), false},
		{"empty", "", Date{}, true},
		{"garbage", "next tuesday", Date{}, true},
		{"impossible day", "2023-02-30", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s want %s", got, tt.want)
		})
	}
}

func TestDate_UnmarshalMalformedYieldsZero(t *testing.T) {
	var p Period
	err := json.Unmarshal([]byte(`{"from":"not-a-date","to":42}`), &p)

	require.NoError(t, err)
	assert.True(t, p.From.IsZero())
	assert.True(t, p.To.IsZero())
	assert.False(t, p.Valid())
}

func TestDate_JSONShape(t *testing.T) {
	b, err := json.Marshal(Period{From: NewDate(2024, time.January, 3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"2024-01-03","to":null}`, string(b))
}

func TestPeriod_Validate(t *testing.T) {
	jan3 := NewDate(2024, time.January, 3)
	jan8 := NewDate(2024, time.January, 8)

	assert.NoError(t, Period{From: jan3, To: jan8}.Validate())
	assert.NoError(t, Period{From: jan3, To: jan3}.Validate())
	assert.Error(t, Period{From: jan8, To: jan3}.Validate())
	assert.Error(t, Period{From: jan3}.Validate())
}

func TestPeriod_String(t *testing.T) {
	p := Period{From: NewDate(2024, time.January, 3), To: NewDate(2024, time.January, 8)}
	assert.Equal(t, "From 2024-01-03 To 2024-01-08", p.String())
}

func TestStatus(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Status("Archived").IsValid())

	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())

	got, ok := ParseStatus(" pending ")
	assert.True(t, ok)
	assert.Equal(t, StatusPending, got)

	_, ok = ParseStatus("All")
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	got, ok := ParseRole("FINANCE")
	assert.True(t, ok)
	assert.Equal(t, RoleFinance, got)

	_, ok = ParseRole("guest")
	assert.False(t, ok)
}
