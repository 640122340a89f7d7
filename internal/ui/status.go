package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
)

func (a *App) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [id] [status]",
		Short: "Change the status of an appointment",
		Long: `Move an appointment to a new status. Permitted changes:

  Scheduled → Confirmed, Cancelled
  Confirmed → Scheduled, Cancelled
  Upcoming  → Confirmed, Cancelled
  Cancelled → Scheduled, Confirmed

Completed and No Show are final. Without a status the permitted targets
are listed.`,
		Example: `  clinicdesk status 3f2a9c1e Confirmed
  clinicdesk status 3f2a9c1e cancelled`,
		Args: cobra.RangeArgs(1, 2),
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

			w := cmd.OutOrStdout()
			if len(args) == 1 {
				if current.Status.IsTerminal() {
					fmt.Fprintf(w, "%s is %s, which is final.\n", current.PatientName, formatStatus(current.Status))
					return nil
				}
				next := appointment.AllowedTransitions(current.Status)
				names := make([]string, len(next))
				for i, s := range next {
					names[i] = string(s)
				}
				fmt.Fprintf(w, "%s is %s. It can move to: %s\n", current.PatientName, formatStatus(current.Status), strings.Join(names, ", "))
				return nil
			}

			to, err := appointment.ParseStatus(args[1])
			if err != nil {
				return err
			}
			updated, err := b.ChangeStatus(ctx, current.ID, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s: %s → %s\n", updated.PatientName, current.Status, formatStatus(updated.Status))
			return nil
		},
	}
}
