// Package summary aggregates appointment counts for footers and reports.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// Stats holds aggregate counts over a set of appointments.
type Stats struct {
	Total         int
	ByStatus      map[appointment.Status]int
	Online        int
	InPerson      int
	BookedMinutes int // excludes cancelled appointments
	Doctors       int
}

// Count returns the number of appointments with status s.
func (s Stats) Count(st appointment.Status) int {
	return s.ByStatus[st]
}

// Active returns the number of appointments that still occupy a slot.
func (s Stats) Active() int {
	return s.Total - s.ByStatus[appointment.StatusCancelled]
}

// String renders a compact one-line summary, e.g. "5 appointments, 1 cancelled, 2h30m booked".
func (s Stats) String() string {
	noun := "appointments"
	if s.Total == 1 {
		noun = "appointment"
	}
	booked := time.Duration(s.BookedMinutes) * time.Minute
	return fmt.Sprintf("%d %s, %d cancelled, %s booked",
		s.Total, noun, s.Count(appointment.StatusCancelled), formatDuration(booked))
}

// Compute aggregates appts. Nil entries are skipped.
func Compute(appts []*appointment.Appointment) Stats {
	stats := Stats{ByStatus: make(map[appointment.Status]int)}
	doctors := make(map[string]bool)
	for _, a := range appts {
		if a == nil {
			continue
		}
		stats.Total++
		stats.ByStatus[a.Status]++
		if a.IsOnline() {
			stats.Online++
		} else {
			stats.InPerson++
		}
		if !a.IsCancelled() {
			stats.BookedMinutes += a.DurationMinutes
		}
		doctors[a.DoctorName] = true
	}
	stats.Doctors = len(doctors)
	return stats
}

// Range is a summary of the appointments between two civil days.
type Range struct {
	Start        time.Time
	End          time.Time
	Appointments []*appointment.Appointment
	Stats        Stats
	PerDay       map[string]Stats
}

func summarize(r dateutil.DateRange, appts []*appointment.Appointment) *Range {
	var in []*appointment.Appointment
	byDay := make(map[string][]*appointment.Appointment)
	for _, a := range appts {
		if a == nil || !r.Contains(a.Date) {
			continue
		}
		in = append(in, a)
		byDay[a.DateKey()] = append(byDay[a.DateKey()], a)
	}

	perDay := make(map[string]Stats, len(byDay))
	for key, list := range byDay {
		perDay[key] = Compute(list)
	}

	return &Range{
		Start:        r.Start,
		End:          r.End,
		Appointments: in,
		Stats:        Compute(in),
		PerDay:       perDay,
	}
}

// Build loads the appointments in r from repo and summarizes them.
func Build(ctx context.Context, repo appointment.Repository, r dateutil.DateRange) (*Range, error) {
	from, to := r.Start, r.End
	appts, err := repo.List(ctx, appointment.Query{From: &from, To: &to})
	if err != nil {
		return nil, fmt.Errorf("fetching appointments: %w", err)
	}
	return summarize(r, appts), nil
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, m)
	}
}
