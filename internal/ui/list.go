package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/board"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
	"github.com/javiermolinar/clinicdesk/internal/summary"
)

func (a *App) listCmd() *cobra.Command {
	var (
		scope     string
		date      string
		status    string
		doctor    string
		search    string
		startDate string
		endDate   string
		opts      PrintOpts
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments",
		Long: `List appointments through the same filters as the dashboard.

--scope picks the tab (today, upcoming, past, all) and --date replaces it
with a single day. --start and --end narrow the result to a date range.`,
		Example: `  clinicdesk list
  clinicdesk list --scope=upcoming --doctor="Dr. Amit Gupta"
  clinicdesk list --scope=all --search=nair --status=Confirmed
  clinicdesk list --start=2025-06-01 --end=2025-06-30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			now := a.now()

			filter := schedule.DefaultFilter()
			sc, err := schedule.ParseScope(scope)
			if err != nil {
				return err
			}
			filter.Scope = sc
			if date != "" {
				d, err := dateutil.ParseDateOr(date, now)
				if err != nil {
					return err
				}
				filter.ExplicitDate = &d
			}
			if status != "" {
				st, err := appointment.ParseStatus(status)
				if err != nil {
					return err
				}
				filter.Status = string(st)
			}
			if doctor != "" {
				filter.Doctor = doctor
			}
			filter.SearchText = search

			var dateRange *dateutil.DateRange
			if startDate != "" || endDate != "" {
				dateRange, err = dateutil.NewDateRange(startDate, endDate, now)
				if err != nil {
					return err
				}
				if scope == "" && date == "" {
					filter.Scope = schedule.ScopeAll
				}
			}

			b, err := a.loadBoard(ctx, board.WithFilter(filter))
			if err != nil {
				return err
			}
			appts := b.View().Filtered
			if dateRange != nil {
				appts = inRange(appts, *dateRange)
			}

			w := cmd.OutOrStdout()
			if len(appts) == 0 {
				fmt.Fprintf(w, "No appointments match %s.\n", filter.Describe())
				return nil
			}
			PrintGrouped(w, appts, opts)
			fmt.Fprintln(w)
			PrintStats(w, summary.Compute(appts))
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "Tab: today, upcoming, past or all (default from config)")
	cmd.Flags().StringVar(&date, "date", "", "Single day (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().StringVar(&status, "status", "", "Only this status")
	cmd.Flags().StringVar(&doctor, "doctor", "", "Only this doctor")
	cmd.Flags().StringVar(&search, "search", "", "Patient or doctor name contains")
	cmd.Flags().StringVar(&startDate, "start", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "Range end (YYYY-MM-DD, defaults to start date)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show notes and full names")
	cmd.Flags().BoolVar(&opts.ShowIDs, "ids", true, "Show appointment IDs")

	cmd.PreRun = func(_ *cobra.Command, _ []string) {
		if scope == "" && date == "" && startDate == "" && endDate == "" {
			scope = string(a.config.Scope())
		}
	}
	return cmd
}

func inRange(appts []*appointment.Appointment, r dateutil.DateRange) []*appointment.Appointment {
	var out []*appointment.Appointment
	for _, a := range appts {
		if r.Contains(a.Date) {
			out = append(out, a)
		}
	}
	return out
}
