package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/board"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
	"github.com/javiermolinar/clinicdesk/internal/summary"
)

func (a *App) dayCmd() *cobra.Command {
	var (
		doctor string
		opts   PrintOpts
	)

	cmd := &cobra.Command{
		Use:   "day [date]",
		Short: "Show one day with overlapping appointments in lanes",
		Long: `Show the appointments of a day in start order. Appointments that
overlap in time are placed in separate lanes; the lane column reads
"lane/lanes" for each row.`,
		Example: `  clinicdesk day
  clinicdesk day tomorrow
  clinicdesk day 2025-06-10 --doctor="Dr. Sana Iyer"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			date, err := dateutil.ParseDateOr(arg, a.now())
			if err != nil {
				return err
			}

			filter := schedule.DefaultFilter()
			if doctor != "" {
				filter.Doctor = doctor
			}
			b, err := a.loadBoard(context.Background(), board.WithFilter(filter))
			if err != nil {
				return err
			}
			b.SetDay(date)
			layout := b.View().Day

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "=== %s ===\n\n", formatHeader(date.Format("Monday, January 2, 2006")))
			if layout.Len() == 0 {
				fmt.Fprintln(w, "Nothing booked this day.")
				return nil
			}
			printLanes(w, layout, opts)

			appts := make([]*appointment.Appointment, layout.Len())
			for i, p := range layout.Placements {
				appts[i] = p.Appointment
			}
			stats := summary.Compute(appts)
			fmt.Fprintln(w)
			PrintStats(w, stats)

			hours := a.config.Hours()
			capacity := appointment.TimeToMinutes(hours.Close) - appointment.TimeToMinutes(hours.Open)
			if doctors := max(stats.Doctors, 1); capacity > 0 {
				fmt.Fprintf(w, "Load: %s\n", LoadBar(stats.BookedMinutes, capacity*doctors, 20))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&doctor, "doctor", "", "Only this doctor")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show notes and full names")
	cmd.Flags().BoolVar(&opts.ShowIDs, "ids", false, "Show appointment IDs")
	return cmd
}

// printLanes prints each placement with a lane gauge, e.g. "[·█·] 2/3".
func printLanes(w io.Writer, layout schedule.DayLayout, opts PrintOpts) {
	width := layout.Width()
	nameWidth := opts.CalcMaxNameWidth(18)
	for _, p := range layout.Placements {
		gauge := make([]string, width)
		for i := range gauge {
			gauge[i] = "·"
		}
		gauge[p.Column] = "█"
		fmt.Fprintf(w, "%s %s ",
			formatMuted("["+strings.Join(gauge, "")+"]"),
			formatMuted(fmt.Sprintf("%d/%d", p.Column+1, p.TotalColumns)))
		PrintAppointmentRow(w, p.Appointment, opts, nameWidth)
	}
}
