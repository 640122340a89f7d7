package appointment

import "fmt"

// Hours is the daily window in which appointments may start.
// Open is inclusive, Close is exclusive, both "HH:MM".
type Hours struct {
	Open  string
	Close string
}

// DefaultHours matches the clinic's 08:00 to 21:00 booking window.
var DefaultHours = Hours{Open: "08:00", Close: "21:00"}

// Contains reports whether an appointment starting at t is bookable.
func (h Hours) Contains(t string) bool {
	m := TimeToMinutes(t)
	return m >= TimeToMinutes(h.Open) && m < TimeToMinutes(h.Close)
}

// CheckHours returns ErrOutsideClinicHours if t falls outside the window.
func (h Hours) CheckHours(t string) error {
	if h.Contains(t) {
		return nil
	}
	return fmt.Errorf("%w: appointments are only available between %s and %s", ErrOutsideClinicHours, h.Open, h.Close)
}

// FindConflict returns the first existing appointment that blocks candidate.
// A conflict is a non-cancelled appointment of the same doctor on the same day
// whose interval overlaps. The candidate itself (same non-empty ID) is skipped
// so that edits do not conflict with their own stored version.
func FindConflict(existing []*Appointment, candidate *Appointment) *Appointment {
	for _, a := range existing {
		if a == nil || a.IsCancelled() {
			continue
		}
		if candidate.ID != "" && a.ID == candidate.ID {
			continue
		}
		if a.DoctorName != candidate.DoctorName {
			continue
		}
		if candidate.OverlapsWith(a) {
			return a
		}
	}
	return nil
}

// CheckConflict wraps FindConflict into an ErrSlotConflict error naming the
// patient that already holds the slot.
func CheckConflict(existing []*Appointment, candidate *Appointment) error {
	if candidate.IsCancelled() {
		return nil
	}
	c := FindConflict(existing, candidate)
	if c == nil {
		return nil
	}
	return fmt.Errorf("%w: %s has an appointment with %s from %s to %s",
		ErrSlotConflict, c.PatientName, c.DoctorName, c.Time, c.EndTime())
}
