package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/dateutil"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
)

func (a *App) heatmapCmd() *cobra.Command {
	var counts bool

	cmd := &cobra.Command{
		Use:   "heatmap [YYYY-MM]",
		Short: "Show how busy each day of a month is",
		Long: `Print a Monday-first month calendar colored by the number of
non-cancelled appointments per day: 0, 1, 2, 3 and 4 or more.`,
		Example: `  clinicdesk heatmap
  clinicdesk heatmap 2025-06 --counts`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			month := dateutil.FirstOfMonth(now)
			if len(args) == 1 {
				m, err := dateutil.ParseMonth(args[0], now)
				if err != nil {
					return err
				}
				month = m
			}

			b, err := a.loadBoard(context.Background())
			if err != nil {
				return err
			}
			density := b.View().Density
			weeks := schedule.MonthGrid(month, density)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n\n", formatHeader(month.Format("January 2006")))
			fmt.Fprintln(w, " Mo   Tu   We   Th   Fr   Sa   Su")
			for _, week := range weeks {
				cells := make([]string, len(week))
				for i, cell := range week {
					cells[i] = heatCell(cell, counts, dateutil.SameDay(cell.Date, now))
				}
				fmt.Fprintln(w, strings.Join(cells, " "))
			}

			legend := []string{"less"}
			for bucket := schedule.Bucket(0); bucket <= schedule.MaxBucket; bucket++ {
				legend = append(legend, formatHeat(bucket, fmt.Sprintf("%3s ", bucket)))
			}
			legend = append(legend, "more")
			fmt.Fprintf(w, "\n%s\n", strings.Join(legend, " "))

			first, last := dateutil.MonthRange(month)
			total := 0
			for d := first; dateutil.CompareDays(d, last) <= 0; d = d.AddDate(0, 0, 1) {
				total += density.Count(d)
			}
			fmt.Fprintf(w, "%s\n", formatStats(fmt.Sprintf("%d appointments this month", total)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&counts, "counts", false, "Show the count instead of the day number")
	return cmd
}

func heatCell(cell schedule.DayCell, counts, today bool) string {
	if !cell.InMonth {
		return formatMuted("  · ")
	}
	label := fmt.Sprintf("%3d", cell.Date.Day())
	if counts {
		label = fmt.Sprintf("%3d", cell.Count)
	}
	if today {
		label = strings.TrimLeft(label, " ")
		label = strings.Repeat(" ", max(2-len(label), 0)) + "[" + label + "]"
		return formatHeat(cell.Bucket, fmt.Sprintf("%-4s", label))
	}
	return formatHeat(cell.Bucket, label+" ")
}
