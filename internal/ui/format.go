package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/summary"
	"github.com/javiermolinar/clinicdesk/internal/tui/view"
)

// PrintOpts configures appointment printing behavior.
type PrintOpts struct {
	Verbose      bool // Show notes and full names
	ShowIDs      bool // Show the short appointment ID
	MaxNameWidth int  // Maximum patient/doctor width (0 = auto)
}

// CalcMaxNameWidth calculates the patient and doctor column width.
func (o PrintOpts) CalcMaxNameWidth(defaultWidth int) int {
	if o.MaxNameWidth > 0 {
		return o.MaxNameWidth
	}
	if !o.Verbose {
		return defaultWidth
	}
	// Base: "  ○ HH:MM-HH:MM  " + mode + status + id = ~50 chars
	available := (termWidth() - 50) / 2
	if available > defaultWidth {
		return available
	}
	return defaultWidth
}

func statusSymbol(s appointment.Status) string {
	switch s {
	case appointment.StatusScheduled:
		return "○"
	case appointment.StatusConfirmed:
		return "●"
	case appointment.StatusUpcoming:
		return "◔"
	case appointment.StatusCompleted:
		return "✓"
	case appointment.StatusCancelled:
		return "✗"
	case appointment.StatusNoShow:
		return "!"
	default:
		return "?"
	}
}

// shortID returns the first block of a UUID, enough to address it in a clinic.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// truncate cuts s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// PrintAppointmentRow prints a single appointment row with consistent formatting.
func PrintAppointmentRow(w io.Writer, a *appointment.Appointment, opts PrintOpts, nameWidth int) {
	row := fmt.Sprintf("  %s %s-%s  %s  %s  %s  %s",
		statusSymbol(a.Status),
		a.Time,
		a.EndTime(),
		pad(truncate(a.PatientName, nameWidth), nameWidth),
		pad(truncate(a.DoctorName, nameWidth), nameWidth),
		pad(string(a.Mode), len(appointment.ModeInPerson)),
		formatStatus(a.Status),
	)
	if opts.ShowIDs {
		row += "  " + formatMuted("#"+shortID(a.ID))
	}
	fmt.Fprintln(w, row)
	if opts.Verbose && a.Notes != "" {
		fmt.Fprintf(w, "      %s\n", formatMuted(a.Notes))
	}
}

// PrintGrouped prints appointments under one header per day.
func PrintGrouped(w io.Writer, appts []*appointment.Appointment, opts PrintOpts) {
	nameWidth := opts.CalcMaxNameWidth(20)
	var currentDate string
	for _, a := range appts {
		if key := a.DateKey(); key != currentDate {
			if currentDate != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "=== %s ===\n", formatHeader(a.Date.Format("Mon Jan 2, 2006")))
			currentDate = key
		}
		PrintAppointmentRow(w, a, opts, nameWidth)
	}
}

// PrintStats prints the totals line shown under every listing.
func PrintStats(w io.Writer, s summary.Stats) {
	fmt.Fprintf(w, "%s  %s  %s  %s\n",
		formatStats(fmt.Sprintf("Total: %d", s.Total)),
		fmt.Sprintf("Active: %d", s.Active()),
		fmt.Sprintf("Cancelled: %d", s.Count(appointment.StatusCancelled)),
		fmt.Sprintf("Booked: %s", view.FormatDuration(s.BookedMinutes)),
	)
	fmt.Fprintf(w, "%s\n", formatMuted(fmt.Sprintf("In-Person: %d  Online: %d  Doctors: %d", s.InPerson, s.Online, s.Doctors)))
}

// LoadBar renders how much of capacity is booked, e.g. "[████░░░░] 50%".
func LoadBar(booked, capacity, width int) string {
	if capacity <= 0 || width <= 0 {
		return ""
	}
	ratio := min(float64(booked)/float64(capacity), 1)
	filled := int(ratio*float64(width) + 0.5)
	return fmt.Sprintf("[%s%s] %d%%",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		int(ratio*100+0.5))
}
