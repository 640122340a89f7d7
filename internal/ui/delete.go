package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an appointment",
		Long: `Remove an appointment permanently. Prefer 'status <id> Cancelled'
to keep a record of the visit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			b, err := a.loadBoard(ctx)
			if err != nil {
				return err
			}
			appt, err := resolveID(b, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !yes && !promptYesNo(cmd.InOrStdin(), w, fmt.Sprintf("Delete %s?", appt)) {
				fmt.Fprintln(w, "Kept.")
				return nil
			}
			if err := b.Delete(ctx, appt.ID); err != nil {
				return err
			}
			fmt.Fprintf(w, "Deleted #%s\n", shortID(appt.ID))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func promptYesNo(r io.Reader, w io.Writer, question string) bool {
	reader := bufio.NewReader(r)
	fmt.Fprintf(w, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
