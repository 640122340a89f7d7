// Package scheduler finds bookable slots within clinic hours.
package scheduler

import (
	"strings"
	"time"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// Scheduler provides time-aware booking operations.
type Scheduler struct {
	workdays map[string]bool
	hours    appointment.Hours
	step     int // minutes between candidate starts
}

// New creates a new Scheduler with the given configuration.
// A non-positive step defaults to 15 minutes.
func New(workdays []string, hours appointment.Hours, step int) *Scheduler {
	wd := make(map[string]bool)
	for _, d := range workdays {
		wd[strings.ToLower(strings.TrimSpace(d))] = true
	}
	if step <= 0 {
		step = 15
	}
	return &Scheduler{
		workdays: wd,
		hours:    hours,
		step:     step,
	}
}

// Slot is a free start time on a given day.
type Slot struct {
	Date  time.Time
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// Hours returns the configured booking window.
func (s *Scheduler) Hours() appointment.Hours {
	return s.hours
}

// IsWorkday returns true if the given time falls on a configured workday.
func (s *Scheduler) IsWorkday(t time.Time) bool {
	weekday := strings.ToLower(t.Weekday().String())
	return s.workdays[weekday]
}

// FreeSlots returns every start time on date at which doctor can see a
// patient for duration minutes without overlapping existing bookings.
// Starts step through the booking window and the appointment must end by
// closing time. On the current day, starts before now are skipped; past days
// and non-workdays have no slots.
func (s *Scheduler) FreeSlots(date time.Time, doctor string, duration int, existing []*appointment.Appointment, now time.Time) []Slot {
	if duration <= 0 || !s.IsWorkday(date) {
		return nil
	}
	cmp := dateutil.CompareDays(date, now)
	if cmp < 0 {
		return nil
	}

	open := appointment.TimeToMinutes(s.hours.Open)
	closing := appointment.TimeToMinutes(s.hours.Close)
	earliest := open
	if cmp == 0 {
		earliest = max(open, roundUp(now.Hour()*60+now.Minute(), open, s.step))
	}

	var slots []Slot
	for start := earliest; start+duration <= closing; start += s.step {
		candidate := &appointment.Appointment{
			DoctorName:      doctor,
			Date:            date,
			Time:            appointment.MinutesToTime(start),
			DurationMinutes: duration,
		}
		if appointment.FindConflict(existing, candidate) != nil {
			continue
		}
		slots = append(slots, Slot{
			Date:  dateutil.Day(date),
			Start: candidate.Time,
			End:   candidate.EndTime(),
		})
	}
	return slots
}

// NextFree returns the first free slot for doctor within the next days,
// starting from now. ok is false if nothing is free.
func (s *Scheduler) NextFree(doctor string, duration int, existing []*appointment.Appointment, now time.Time, days int) (Slot, bool) {
	day := dateutil.Day(now)
	for range days {
		if slots := s.FreeSlots(day, doctor, duration, existing, now); len(slots) > 0 {
			return slots[0], true
		}
		day = day.AddDate(0, 0, 1)
	}
	return Slot{}, false
}

// roundUp returns the first minute >= m on the grid open + k*step.
func roundUp(m, open, step int) int {
	if m <= open {
		return open
	}
	offset := (m - open) % step
	if offset == 0 {
		return m
	}
	return m + step - offset
}
