package rental

import "fmt"

// Status is the lifecycle state of a reservation.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusPaid      Status = "PAID"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusPaid, StatusActive,
		StatusCompleted, StatusCancelled, StatusNoShow:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// TransitionTable maps a status to the statuses it may move to, in the
// order their actions are presented. The backend remains the final
// authority on legality; this table only drives what the UI offers.
type TransitionTable map[Status][]Status

// DefaultTransitions returns the transition table agreed with the backend
// team. Kept as a value so deployments tracking a different backend
// revision can swap it without code changes elsewhere.
func DefaultTransitions() TransitionTable {
	return TransitionTable{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusActive, StatusCancelled},
		StatusPaid:      {StatusActive, StatusNoShow},
		StatusActive:    {StatusCompleted},
		StatusCompleted: {},
		StatusCancelled: {},
		StatusNoShow:    {},
	}
}

// Next returns the legal destination statuses from the given status.
func (t TransitionTable) Next(from Status) []Status {
	return t[from]
}

// Allowed reports whether from -> to is a legal transition.
func (t TransitionTable) Allowed(from, to Status) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (t TransitionTable) Terminal(s Status) bool {
	return len(t[s]) == 0
}
