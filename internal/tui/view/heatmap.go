package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/clinicdesk/internal/dateutil"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
)

var weekdayLabels = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

const heatCellWidth = 5

// HeatmapModel holds the month grid to draw.
type HeatmapModel struct {
	Width    int
	Height   int
	Month    time.Time
	Weeks    [][]schedule.DayCell
	Today    time.Time
	Selected time.Time
	Bg       lipgloss.Color
}

// HeatmapStyles groups the styles of the month view. Bucket returns the cell
// style of a density bucket.
type HeatmapStyles struct {
	Title    lipgloss.Style
	Weekday  lipgloss.Style
	Outside  lipgloss.Style
	Today    lipgloss.Style
	Selected lipgloss.Style
	Legend   lipgloss.Style
	Bucket   func(schedule.Bucket) lipgloss.Style
}

// RenderHeatmap draws the Monday-first month grid colored by density.
func RenderHeatmap(model HeatmapModel, styles HeatmapStyles) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(model.Month.Format("January 2006")) + "\n\n")

	labels := make([]string, len(weekdayLabels))
	for i, l := range weekdayLabels {
		labels[i] = styles.Weekday.Render(Fit(" "+l, heatCellWidth))
	}
	b.WriteString(strings.Join(labels, " ") + "\n")

	for _, week := range model.Weeks {
		cells := make([]string, len(week))
		for i, cell := range week {
			cells[i] = renderDayCell(cell, model, styles)
		}
		b.WriteString(strings.Join(cells, " ") + "\n")
	}

	b.WriteString("\n" + RenderLegend(styles))
	if sel := selectedCell(model); sel != nil {
		b.WriteString("\n" + styles.Legend.Render(fmt.Sprintf("%s: %d booked", sel.Date.Format("Mon Jan 2"), sel.Count)))
	}
	return PlaceBox(model.Width, model.Height, lipgloss.Top, b.String(), model.Bg)
}

func renderDayCell(cell schedule.DayCell, model HeatmapModel, styles HeatmapStyles) string {
	text := fmt.Sprintf("%3d", cell.Date.Day())
	style := styles.Outside
	if cell.InMonth && styles.Bucket != nil {
		style = styles.Bucket(cell.Bucket)
	}
	switch {
	case dateutil.SameDay(cell.Date, model.Selected):
		text = "[" + strings.TrimSpace(text) + "]"
		style = style.Inherit(styles.Selected)
	case dateutil.SameDay(cell.Date, model.Today):
		style = style.Inherit(styles.Today)
	}
	return style.Render(Fit(fmt.Sprintf("%4s", text), heatCellWidth))
}

func selectedCell(model HeatmapModel) *schedule.DayCell {
	for _, week := range model.Weeks {
		for i := range week {
			if week[i].InMonth && dateutil.SameDay(week[i].Date, model.Selected) {
				return &week[i]
			}
		}
	}
	return nil
}

// RenderLegend renders the bucket scale, "0 1 2 3 4+".
func RenderLegend(styles HeatmapStyles) string {
	parts := []string{styles.Legend.Render("less")}
	for b := schedule.Bucket(0); b <= schedule.MaxBucket; b++ {
		style := styles.Legend
		if styles.Bucket != nil {
			style = styles.Bucket(b)
		}
		parts = append(parts, style.Render(Fit(" "+b.String(), 4)))
	}
	parts = append(parts, styles.Legend.Render("more"))
	return strings.Join(parts, " ")
}
