package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
	"github.com/javiermolinar/clinicdesk/internal/summary"
)

func (a *App) weekCmd() *cobra.Command {
	var opts PrintOpts

	cmd := &cobra.Command{
		Use:   "week [date]",
		Short: "Show the week's appointments with per-day totals",
		Long: `Display Monday through Sunday of the ISO week containing date
(default today), grouped by day, with how full each day is.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			ref, err := dateutil.ParseDateOr(arg, a.now())
			if err != nil {
				return err
			}

			ctx := context.Background()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}
			start, end := dateutil.WeekRange(ref)
			week, err := summary.Build(ctx, a.store, dateutil.DateRange{Start: start, End: end})
			if err != nil {
				return fmt.Errorf("building week summary: %w", err)
			}

			w := cmd.OutOrStdout()
			header := fmt.Sprintf("WEEK: %s - %s", week.Start.Format("Mon Jan 2"), week.End.Format("Mon Jan 2, 2006"))
			fmt.Fprintf(w, "\n  %s\n", formatHeader(header))
			fmt.Fprintln(w, strings.Repeat("─", 74))

			if len(week.Appointments) == 0 {
				fmt.Fprintln(w, "No appointments this week.")
				return nil
			}
			printWeekTable(w, week, opts)

			fmt.Fprintln(w, strings.Repeat("─", 74))
			PrintStats(w, week.Stats)
			fmt.Fprintln(w)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show notes and full names")
	cmd.Flags().BoolVar(&opts.ShowIDs, "ids", false, "Show appointment IDs")
	return cmd
}

func printWeekTable(w io.Writer, week *summary.Range, opts PrintOpts) {
	nameWidth := opts.CalcMaxNameWidth(18)
	var currentDate string
	for _, a := range week.Appointments {
		key := a.DateKey()
		if key != currentDate {
			if currentDate != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "  %s  %s\n", formatHeader(a.Date.Format("Mon Jan 2")), formatMuted(dayLine(week.PerDay[key])))
			currentDate = key
		}
		PrintAppointmentRow(w, a, opts, nameWidth)
	}
}

// dayLine summarizes a day, e.g. "4 booked, 1 cancelled, 2h".
func dayLine(s summary.Stats) string {
	line := fmt.Sprintf("%d booked", s.Active())
	if c := s.Count(appointment.StatusCancelled); c > 0 {
		line += fmt.Sprintf(", %d cancelled", c)
	}
	if s.BookedMinutes > 0 {
		line += ", " + formatMinutes(s.BookedMinutes)
	}
	return line
}

func formatMinutes(m int) string {
	h, rest := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, rest)
	}
}
