package entity

import "strings"

// Status is the lifecycle status of a claim (closed enumeration)
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusPaid      Status = "Paid"
	StatusCancelled Status = "Cancelled"
)

// AllStatuses lists every claim status in lifecycle order
var AllStatuses = []Status{
	StatusDraft,
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusPaid,
	StatusCancelled,
}

var terminalStatuses = map[Status]bool{
	StatusRejected:  true,
	StatusPaid:      true,
	StatusCancelled: true,
}

// IsValid returns true if the status belongs to the enumeration
func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no transition leaves the status
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// ParseStatus matches a status name case-insensitively
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, v := range AllStatuses {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	return "", false
}

// Role identifies what an actor may do
type Role string

const (
	RoleClaimer       Role = "Claimer"
	RoleApprover      Role = "Approver"
	RoleFinance       Role = "Finance"
	RoleAdministrator Role = "Administrator"
)

// AllRoles lists every role
var AllRoles = []Role{RoleClaimer, RoleApprover, RoleFinance, RoleAdministrator}

// IsValid returns true if the role belongs to the enumeration
func (r Role) IsValid() bool {
	switch r {
	case RoleClaimer, RoleApprover, RoleFinance, RoleAdministrator:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole matches a role name case-insensitively
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range AllRoles {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// Notification status constants
const (
	NotificationStatusUnread = "UNREAD"
	NotificationStatusRead   = "READ"
)
