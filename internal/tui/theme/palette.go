// Package theme provides color themes for the TUI.
package theme

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Current     lipgloss.Color
	Warning     lipgloss.Color

	// Status is the foreground of a status badge, StatusBg the block
	// background in the day timeline.
	Status   map[appointment.Status]lipgloss.Color
	StatusBg map[appointment.Status]lipgloss.Color

	// Heat is indexed by density bucket, 0 (empty) to schedule.MaxBucket.
	Heat       [schedule.MaxBucket + 1]lipgloss.Color
	TextOnHeat [schedule.MaxBucket + 1]lipgloss.Color

	TextOnAccent  lipgloss.Color
	TextOnWarning lipgloss.Color
	TextOnCurrent lipgloss.Color
	TextOnStatus  map[appointment.Status]lipgloss.Color

	Modal ModalColors
}

// ModalColors holds modal-specific colors derived from a Theme.
type ModalColors struct {
	Bg          lipgloss.Color
	Border      lipgloss.AdaptiveColor
	Text        lipgloss.AdaptiveColor
	Muted       lipgloss.AdaptiveColor
	Highlight   lipgloss.AdaptiveColor
	Panel       lipgloss.AdaptiveColor
	ReverseText lipgloss.AdaptiveColor
	Backdrop    lipgloss.Color
}

// heatRatios is how much of the background is mixed into the heat color
// for buckets 1 through MaxBucket.
var heatRatios = [schedule.MaxBucket]float64{0.80, 0.60, 0.35, 0}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	isLight := isLightTheme(t.Bg)
	p := &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Current:     lipgloss.Color(t.Current),
		Warning:     lipgloss.Color(t.Warning),

		Status:       make(map[appointment.Status]lipgloss.Color, len(appointment.Statuses)),
		StatusBg:     make(map[appointment.Status]lipgloss.Color, len(appointment.Statuses)),
		TextOnStatus: make(map[appointment.Status]lipgloss.Color, len(appointment.Statuses)),

		TextOnAccent:  lipgloss.Color(chooseTextColor(t.Accent, t.Bg, t.Fg)),
		TextOnWarning: lipgloss.Color(chooseTextColor(t.Warning, t.Bg, t.Fg)),
		TextOnCurrent: lipgloss.Color(chooseTextColor(t.Current, t.Bg, t.Fg)),
	}

	for _, s := range appointment.Statuses {
		fg := t.StatusColor(s)
		bg := blockBg(fg, t.Bg, isLight)
		p.Status[s] = lipgloss.Color(fg)
		p.StatusBg[s] = lipgloss.Color(bg)
		p.TextOnStatus[s] = lipgloss.Color(chooseTextColor(bg, t.Fg, t.Bg))
	}

	p.Heat[0] = lipgloss.Color(t.BgHighlight)
	p.TextOnHeat[0] = lipgloss.Color(t.FgMuted)
	for i, ratio := range heatRatios {
		hex := blendColors(t.Heat, t.Bg, ratio)
		p.Heat[i+1] = lipgloss.Color(hex)
		p.TextOnHeat[i+1] = lipgloss.Color(chooseTextColor(hex, t.Fg, t.Bg))
	}

	modalPalette := t.Modal()
	modalBgHex := coalesce(modalPalette.BaseBg, t.BgHighlight, t.Bg)
	modalTextHex := coalesce(modalPalette.TextPrimary, t.Fg)
	modalPanelHex := coalesce(t.BgSelection, t.BgHighlight, t.Bg)
	p.Modal = ModalColors{
		Bg:          lipgloss.Color(modalBgHex),
		Border:      adaptiveColor(coalesce(modalPalette.ModalBorder, t.Accent)),
		Text:        adaptiveColor(modalTextHex),
		Muted:       adaptiveColor(coalesce(modalPalette.TextMuted, t.FgMuted)),
		Highlight:   adaptiveColor(coalesce(modalPalette.Highlight, t.BgSelection, t.Accent)),
		Panel:       adaptiveColor(modalPanelHex),
		ReverseText: reverseTextColor(modalBgHex, modalTextHex),
		Backdrop:    lipgloss.Color(modalPanelHex),
	}
	return p
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

func blockBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.75)
	}
	return darkenColor(accent)
}

// darkenColor halves the brightness of a hex color for block backgrounds,
// keeping every channel above a floor so blocks stay visible on dark themes.
func darkenColor(hex string) string {
	r, g, b, ok := rgb(hex)
	if !ok {
		return hex
	}
	const factor, floor = 0.50, 40
	r = max(int(float64(r)*factor), floor)
	g = max(int(float64(g)*factor), floor)
	b = max(int(float64(b)*factor), floor)
	return formatHexColor(r, g, b)
}

// rgb splits a "#rrggbb" color into its channels.
func rgb(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

func formatHexColor(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func adaptiveColor(hex string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{
		Dark:  hex,
		Light: hex,
	}
}

func reverseTextColor(darkBg, lightText string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{
		Dark:  darkBg,
		Light: lightText,
	}
}

func chooseTextColor(bg, lightText, darkText string) string {
	lightContrast := contrastRatio(bg, lightText)
	darkContrast := contrastRatio(bg, darkText)
	if lightContrast >= darkContrast {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	r, g, b, ok := rgb(hex)
	if !ok {
		return 0
	}
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// blendColors mixes ratio of b into a.
func blendColors(a, b string, ratio float64) string {
	ar, ag, ab, okA := rgb(a)
	br, bg, bb, okB := rgb(b)
	if !okA || !okB {
		return a
	}
	ratio = min(max(ratio, 0), 1)
	mix := func(x, y int) int {
		return int(float64(x)*(1-ratio) + float64(y)*ratio)
	}
	return formatHexColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}
