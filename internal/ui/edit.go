package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

func (a *App) editCmd() *cobra.Command {
	var (
		patient  string
		doctor   string
		date     string
		start    string
		duration int
		mode     string
		status   string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change the fields of an appointment",
		Long: `Change any field of an appointment. Only the flags given are
changed. A new time is checked against the doctor's other bookings and a
new status must be a permitted change from the current one.`,
		Example: `  clinicdesk edit 3f2a9c1e --time=11:00
  clinicdesk edit 3f2a9c1e --doctor="Dr. Paul Mathew" --mode=Online`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			b, err := a.loadBoard(ctx)
			if err != nil {
				return err
			}
			current, err := resolveID(b, args[0])
			if err != nil {
				return err
			}

			in := current.ToInput()
			flags := cmd.Flags()
			if flags.Changed("patient") {
				in.PatientName = patient
			}
			if flags.Changed("doctor") {
				in.DoctorName = doctor
			}
			if flags.Changed("date") {
				d, err := dateutil.ParseDateOr(date, a.now())
				if err != nil {
					return err
				}
				in.Date = dateutil.Key(d)
			}
			if flags.Changed("time") {
				in.Time = start
			}
			if flags.Changed("duration") {
				in.DurationMinutes = duration
			}
			if flags.Changed("mode") {
				m, err := appointment.ParseMode(mode)
				if err != nil {
					return err
				}
				in.Mode = m
			}
			if flags.Changed("status") {
				st, err := appointment.ParseStatus(status)
				if err != nil {
					return err
				}
				in.Status = st
			}
			if flags.Changed("notes") {
				in.Notes = notes
			}
			if in == current.ToInput() {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to change.")
				return nil
			}

			updated, err := b.Update(ctx, current.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated #%s: %s\n", shortID(updated.ID), updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&patient, "patient", "", "Patient name")
	cmd.Flags().StringVar(&doctor, "doctor", "", "Doctor name")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "time", "", "Start time (HH:MM)")
	cmd.Flags().IntVar(&duration, "duration", 0, "Length in minutes")
	cmd.Flags().StringVar(&mode, "mode", "", "Online or In-Person")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")
	return cmd
}
