package event

// Type names a claim event as aggregate.happening
type Type string

const (
	TypeClaimCreated       Type = "claim.created"
	TypeClaimUpdated       Type = "claim.updated"
	TypeClaimStatusChanged Type = "claim.status_changed"
)

var knownTypes = map[Type]struct{}{
	TypeClaimCreated:       {},
	TypeClaimUpdated:       {},
	TypeClaimStatusChanged: {},
}

func (t Type) String() string {
	return string(t)
}

// IsValid reports whether t is one of the claim events above
func (t Type) IsValid() bool {
	_, ok := knownTypes[t]
	return ok
}
