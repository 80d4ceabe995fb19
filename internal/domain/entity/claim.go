package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage layout of claim period dates
const DateLayout = "2006-01-02"

// Claim represents a staff member's time/expense claim
type Claim struct {
	ID             string    `json:"id"`
	StaffID        string    `json:"staffId"`
	StaffName      string    `json:"staffName"`
	ProjectID      string    `json:"projectId"`
	ProjectName    string    `json:"projectName"`
	Period         Period    `json:"period"`
	Hours          float64   `json:"hours"`
	Status         Status    `json:"status"`
	ReasonClaimer  string    `json:"reasonClaimer"`
	ReasonApprover string    `json:"reasonApprover,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Clone returns a shallow copy of the claim. Claims hold no reference fields.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Period is the inclusive date range a claim covers
type Period struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// Valid reports whether both bounds were parsed successfully
func (p Period) Valid() bool {
	return !p.From.IsZero() && !p.To.IsZero()
}

// Validate enforces the from <= to invariant at creation/update time
func (p Period) Validate() error {
	if !p.Valid() {
		return fmt.Errorf("period requires valid from and to dates")
	}
	if p.From.After(p.To.Time) {
		return fmt.Errorf("period from %s is after to %s", p.From, p.To)
	}
	return nil
}

// String renders the period as "From X To Y"
func (p Period) String() string {
	return fmt.Sprintf("From %s To %s", p.From, p.To)
}

// Date is a calendar day. The zero value marks a missing or unparsable date.
type Date struct {
	time.Time
}

// NewDate returns the date at midnight UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts "2006-01-02" and RFC3339 timestamps
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	y, m, d := t.Date()
	return NewDate(y, m, d), nil
}

// String returns the date in DateLayout, or "" when zero
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "2006-01-02", or null when zero
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON never fails on malformed upstream data: an unparsable value
// yields the zero Date so downstream filtering can exclude it.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}
