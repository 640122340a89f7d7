package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/board"
	"github.com/javiermolinar/clinicdesk/internal/tui/view"
)

// ErrAmbiguousID is returned when an ID prefix matches several appointments.
var ErrAmbiguousID = errors.New("id prefix matches more than one appointment")

func (a *App) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one appointment",
		Long: `Display every field of an appointment and the statuses it may
move to. The id may be shortened to any unique prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.loadBoard(context.Background())
			if err != nil {
				return err
			}
			appt, err := resolveID(b, args[0])
			if err != nil {
				return err
			}
			printDetail(cmd.OutOrStdout(), appt)
			return nil
		},
	}
}

// resolveID finds the appointment whose ID is or starts with prefix.
func resolveID(b *board.Board, prefix string) (*appointment.Appointment, error) {
	prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "#")
	if appt, ok := b.Get(prefix); ok {
		return appt, nil
	}
	var found *appointment.Appointment
	for _, appt := range b.Snapshot() {
		if prefix != "" && strings.HasPrefix(appt.ID, prefix) {
			if found != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
			}
			found = appt
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", appointment.ErrNotFound, prefix)
	}
	return found, nil
}

func printDetail(w io.Writer, a *appointment.Appointment) {
	row := func(label, value string) {
		fmt.Fprintf(w, "  %-10s %s\n", formatMuted(label), value)
	}
	fmt.Fprintf(w, "%s\n", formatHeader(a.PatientName))
	row("ID", a.ID)
	row("Doctor", a.DoctorName)
	row("Date", a.Date.Format("Monday, January 2, 2006"))
	row("Time", fmt.Sprintf("%s-%s (%s)", a.Time, a.EndTime(), view.FormatDuration(a.DurationMinutes)))
	row("Mode", string(a.Mode))
	row("Status", formatStatus(a.Status))
	if a.Notes != "" {
		row("Notes", a.Notes)
	}

	if a.Status.IsTerminal() {
		row("Next", formatMuted("final"))
		return
	}
	next := appointment.AllowedTransitions(a.Status)
	names := make([]string, len(next))
	for i, s := range next {
		names[i] = string(s)
	}
	row("Next", strings.Join(names, ", "))
}
