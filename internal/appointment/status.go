package appointment

import "strings"

// Status represents the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusConfirmed Status = "Confirmed"
	StatusUpcoming  Status = "Upcoming"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusNoShow    Status = "No Show"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusScheduled,
	StatusConfirmed,
	StatusUpcoming,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// Valid returns true if the status is a member of the enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusUpcoming, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// ParseStatus matches s case-insensitively against the known statuses.
// "noshow", "no-show" and "no_show" are accepted for No Show.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	for _, st := range Statuses {
		if strings.ReplaceAll(strings.ToLower(string(st)), " ", "") == key {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Mode is how the consultation takes place.
type Mode string

const (
	ModeOnline   Mode = "Online"
	ModeInPerson Mode = "In-Person"
)

// Valid returns true if the mode is a member of the enumeration.
func (m Mode) Valid() bool {
	return m == ModeOnline || m == ModeInPerson
}

// ParseMode matches s case-insensitively; "inperson" and "in_person" are accepted.
func ParseMode(s string) (Mode, error) {
	switch strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s))) {
	case "online":
		return ModeOnline, nil
	case "inperson":
		return ModeInPerson, nil
	default:
		return "", ErrInvalidMode
	}
}
