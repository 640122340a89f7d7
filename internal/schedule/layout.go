// Package schedule holds the scheduling presentation core: day layout,
// calendar density, and the filter pipeline. Every function is a pure
// transform over an appointment snapshot and keeps no state between calls.
package schedule

import (
	"slices"
	"time"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// Placement is an appointment annotated with its lane in the day view.
type Placement struct {
	Appointment  *appointment.Appointment
	Column       int // 0-based lane index
	TotalColumns int // lanes needed by this appointment's overlap neighborhood
}

// Cell is the presentation view model of a placement.
type Cell struct {
	ID           string
	Column       int
	TotalColumns int
}

// DayLayout is the laid-out view of a single calendar day.
// It is derived data and is rebuilt whenever the inputs change.
type DayLayout struct {
	Date       time.Time
	Placements []Placement // sorted by start minute, stable
}

// Cells returns the {id, column, totalColumns} view model in placement order.
func (d DayLayout) Cells() []Cell {
	cells := make([]Cell, len(d.Placements))
	for i, p := range d.Placements {
		cells[i] = Cell{ID: p.Appointment.ID, Column: p.Column, TotalColumns: p.TotalColumns}
	}
	return cells
}

// Width returns the widest TotalColumns in the day, 0 for an empty day.
func (d DayLayout) Width() int {
	width := 0
	for _, p := range d.Placements {
		width = max(width, p.TotalColumns)
	}
	return width
}

// Len returns the number of placed appointments.
func (d DayLayout) Len() int {
	return len(d.Placements)
}

// Index returns the position of an appointment ID in Placements, or -1.
func (d DayLayout) Index(id string) int {
	for i, p := range d.Placements {
		if p.Appointment.ID == id {
			return i
		}
	}
	return -1
}

// LayoutDay keeps the appointments that fall on date and lays them out.
func LayoutDay(date time.Time, appts []*appointment.Appointment) DayLayout {
	var sameDay []*appointment.Appointment
	for _, a := range appts {
		if a != nil && dateutil.SameDay(a.Date, date) {
			sameDay = append(sameDay, a)
		}
	}
	return DayLayout{
		Date:       dateutil.Day(date),
		Placements: Layout(sameDay),
	}
}

// Layout assigns lanes to same-day appointments so that overlapping ones
// never share a column.
//
// Appointments are stable-sorted by start minute, then placed greedily in the
// lowest column not used by an already placed, overlapping appointment.
// TotalColumns is then computed per appointment from its direct overlaps only:
// for a chain A–B–C where A and C do not touch, A and C each see just B.
func Layout(appts []*appointment.Appointment) []Placement {
	if len(appts) == 0 {
		return nil
	}

	sorted := slices.Clone(appts)
	slices.SortStableFunc(sorted, func(a, b *appointment.Appointment) int {
		return a.StartMinute() - b.StartMinute()
	})

	placements := make([]Placement, len(sorted))
	intervals := make([]appointment.Interval, len(sorted))
	for i, a := range sorted {
		intervals[i] = a.Interval()
		placements[i] = Placement{Appointment: a}
	}

	// First fit.
	for i := range placements {
		taken := make(map[int]bool)
		for j := 0; j < i; j++ {
			if intervals[i].Overlaps(intervals[j]) {
				taken[placements[j].Column] = true
			}
		}
		col := 0
		for taken[col] {
			col++
		}
		placements[i].Column = col
	}

	// Width from direct overlaps.
	for i := range placements {
		widest := placements[i].Column
		for j := range placements {
			if i != j && intervals[i].Overlaps(intervals[j]) {
				widest = max(widest, placements[j].Column)
			}
		}
		placements[i].TotalColumns = widest + 1
	}

	return placements
}
