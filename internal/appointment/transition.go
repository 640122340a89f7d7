package appointment

import (
	"fmt"
	"slices"
)

// transitions is the directed table of legal status changes.
//
//	Scheduled → Confirmed | Cancelled
//	Confirmed → Scheduled | Cancelled
//	Upcoming  → Confirmed | Cancelled
//	Cancelled → Scheduled | Confirmed
//
// Completed and No Show are terminal.
var transitions = map[Status][]Status{
	StatusScheduled: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusScheduled, StatusCancelled},
	StatusUpcoming:  {StatusConfirmed, StatusCancelled},
	StatusCancelled: {StatusScheduled, StatusConfirmed},
	StatusCompleted: {},
	StatusNoShow:    {},
}

// CanTransition reports whether an appointment in status from may move to status to.
// It never mutates anything; callers consult it before issuing a status update.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// CheckTransition returns ErrInvalidTransition, annotated with both statuses,
// if the change from → to is not in the table.
func CheckTransition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// AllowedTransitions returns the legal targets from a status in table order.
// The returned slice is a copy.
func AllowedTransitions(from Status) []Status {
	return slices.Clone(transitions[from])
}

// IsTerminal returns true if no transition leaves the status.
func (s Status) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}
