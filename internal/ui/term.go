package ui

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
)

// Color definitions for consistent styling across the UI.
var (
	colorHeader = color.New(color.Bold)
	colorStats  = color.New(color.FgGreen)
	colorMuted  = color.New(color.FgWhite, color.Faint)
	colorWarn   = color.New(color.FgYellow)

	statusColors = map[appointment.Status]*color.Color{
		appointment.StatusScheduled: color.New(color.FgBlue),
		appointment.StatusConfirmed: color.New(color.FgGreen),
		appointment.StatusUpcoming:  color.New(color.FgCyan),
		appointment.StatusCompleted: color.New(color.FgWhite, color.Faint),
		appointment.StatusCancelled: color.New(color.FgRed, color.CrossedOut),
		appointment.StatusNoShow:    color.New(color.FgMagenta),
	}

	// heatColors go from an empty day to a fully booked one.
	heatColors = [schedule.MaxBucket + 1]*color.Color{
		color.New(color.FgWhite, color.Faint),
		color.New(color.FgBlack, color.BgHiGreen),
		color.New(color.FgBlack, color.BgGreen),
		color.New(color.FgBlack, color.BgYellow),
		color.New(color.FgWhite, color.BgRed, color.Bold),
	}
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// DisableColor disables all color output.
func DisableColor() {
	color.NoColor = true
}

// EnableColor enables color output (if terminal supports it).
func EnableColor() {
	color.NoColor = false
}

func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

func formatStats(s string) string {
	return colorStats.Sprint(s)
}

func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}

func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

func formatStatus(s appointment.Status) string {
	if c, ok := statusColors[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}

func formatHeat(b schedule.Bucket, s string) string {
	return heatColors[b.Clamp()].Sprint(s)
}
