package domain

// ResolutionStatus is the outcome of a recipient lookup.
type ResolutionStatus int

const (
	// ResolutionAbsent means no input yet.
	ResolutionAbsent ResolutionStatus = iota
	// ResolutionIndeterminate means the input failed the syntax check and no lookup ran.
	ResolutionIndeterminate
	// ResolutionPending means a lookup is scheduled or in flight.
	ResolutionPending
	// ResolutionResolved means the address belongs to Recipient.
	ResolutionResolved
	// ResolutionNotFound means the lookup ran and found nobody.
	ResolutionNotFound
)

func (s ResolutionStatus) String() string {
	switch s {
	case ResolutionIndeterminate:
		return "indeterminate"
	case ResolutionPending:
		return "pending"
	case ResolutionResolved:
		return "resolved"
	case ResolutionNotFound:
		return "not found"
	}

	return "absent"
}

// Resolution is the latest answer for the address being typed.
type Resolution struct {
	Address    string
	Status     ResolutionStatus
	Recipient  User
	Generation uint64
}

// Resolved reports whether the address maps to a recipient.
func (r Resolution) Resolved() bool {
	return r.Status == ResolutionResolved
}
