package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// nextFreeDays is how far ahead --next looks for a free slot.
const nextFreeDays = 14

func (a *App) addCmd() *cobra.Command {
	var (
		in   appointment.Input
		date string
		mode string
		next bool
	)

	cmd := &cobra.Command{
		Use:   "add [patient]",
		Short: "Book a new appointment",
		Long: `Book an appointment. The doctor must be free for the whole visit
and the visit must start within clinic hours.

With --next the first free slot of the doctor from now on is used and
--date/--time are ignored.`,
		Example: `  clinicdesk add "Ravi Kumar" --doctor="Dr. Amit Gupta" --date=2025-06-10 --time=09:30
  clinicdesk add "Meera Nair" --doctor="Dr. Sana Iyer" --next --mode=Online`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			now := a.now()

			in.PatientName = args[0]
			if in.DurationMinutes == 0 {
				in.DurationMinutes = a.config.Clinic.DefaultDuration
			}
			m, err := appointment.ParseMode(mode)
			if err != nil {
				return err
			}
			in.Mode = m

			b, err := a.loadBoard(ctx)
			if err != nil {
				return err
			}

			if next {
				slot, ok := a.scheduler().NextFree(in.DoctorName, in.DurationMinutes, b.Snapshot(), now, nextFreeDays)
				if !ok {
					return fmt.Errorf("no free %d minute slot for %s in the next %d days", in.DurationMinutes, in.DoctorName, nextFreeDays)
				}
				in.Date = dateutil.Key(slot.Date)
				in.Time = slot.Start
			} else {
				d, err := dateutil.ParseDateOr(date, now)
				if err != nil {
					return err
				}
				in.Date = dateutil.Key(d)
			}

			created, err := b.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booked #%s: %s\n", shortID(created.ID), created)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.DoctorName, "doctor", "", "Doctor name (required)")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, default: today)")
	cmd.Flags().StringVar(&in.Time, "time", "", "Start time (HH:MM)")
	cmd.Flags().IntVar(&in.DurationMinutes, "duration", 0, "Length in minutes (default from config)")
	cmd.Flags().StringVar(&mode, "mode", string(appointment.ModeInPerson), "Online or In-Person")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Free-text notes")
	cmd.Flags().BoolVar(&next, "next", false, "Use the doctor's next free slot")

	_ = cmd.MarkFlagRequired("doctor")
	cmd.MarkFlagsMutuallyExclusive("next", "time")
	cmd.PreRunE = func(_ *cobra.Command, _ []string) error {
		if !next && in.Time == "" {
			return fmt.Errorf("either --time or --next is required")
		}
		return nil
	}
	return cmd
}

func (a *App) slotsCmd() *cobra.Command {
	var (
		doctor   string
		date     string
		duration int
	)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List free start times for a doctor",
		Long: `List the start times on a day where an appointment of the given
length fits without overlapping the doctor's bookings. Times already
past are skipped for today.`,
		Example: `  clinicdesk slots --doctor="Dr. Amit Gupta"
  clinicdesk slots --doctor="Dr. Amit Gupta" --date=tomorrow --duration=45`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := a.now()
			day, err := dateutil.ParseDateOr(date, now)
			if err != nil {
				return err
			}
			if duration <= 0 {
				duration = a.config.Clinic.DefaultDuration
			}

			b, err := a.loadBoard(context.Background())
			if err != nil {
				return err
			}
			sched := a.scheduler()
			w := cmd.OutOrStdout()
			if !sched.IsWorkday(day) {
				fmt.Fprintf(w, "The clinic is closed on %s.\n", day.Format("Monday"))
				return nil
			}

			slots := sched.FreeSlots(day, doctor, duration, b.Snapshot(), now)
			if len(slots) == 0 {
				fmt.Fprintf(w, "No free %d minute slots for %s on %s.\n", duration, doctor, day.Format("Mon Jan 2"))
				return nil
			}
			fmt.Fprintf(w, "%s\n", formatHeader(fmt.Sprintf("%s, %s (%d min)", doctor, day.Format("Mon Jan 2"), duration)))
			starts := make([]string, 0, len(slots))
			for _, s := range slots {
				starts = append(starts, s.Start)
			}
			for chunk := range slices.Chunk(starts, 8) {
				fmt.Fprintf(w, "  %s\n", strings.Join(chunk, "  "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&doctor, "doctor", "", "Doctor name (required)")
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Length in minutes (default from config)")
	_ = cmd.MarkFlagRequired("doctor")
	return cmd
}
