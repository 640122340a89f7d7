// Package theme provides color themes for the TUI.
package theme

import (
	"embed"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is used when no theme is configured.
const DefaultName = "mocha"

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`           // Base background
	BgHighlight string `toml:"bg_highlight"` // Panels, tab bar
	BgSelection string `toml:"bg_selection"` // Cursor row, selected day
	Fg          string `toml:"fg"`           // Primary foreground
	FgMuted     string `toml:"fg_muted"`     // Past rows, hints
	Accent      string `toml:"accent"`       // Title, active tab, borders
	Current     string `toml:"current"`      // Today marker, now line
	Warning     string `toml:"warning"`      // Errors, pending changes

	// One color per appointment status
	Scheduled string `toml:"scheduled"`
	Confirmed string `toml:"confirmed"`
	Upcoming  string `toml:"upcoming"`
	Completed string `toml:"completed"`
	Cancelled string `toml:"cancelled"`
	NoShow    string `toml:"no_show"`

	// Heat is the hottest color of the month heat map.
	Heat string `toml:"heat"`

	// Modal palette (can override base theme values)
	BaseBg      string `toml:"base_bg"`
	ModalBorder string `toml:"modal_border"`
	TextPrimary string `toml:"text_primary"`
	TextMuted   string `toml:"text_muted"`
	Highlight   string `toml:"highlight"`
}

// Color returns a lipgloss.Color for the given hex string.
func Color(hex string) lipgloss.Color {
	return lipgloss.Color(hex)
}

// Load loads a theme by name from embedded files.
// Unknown names fall back to the default theme.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}
	name = strings.ToLower(name)

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

// StatusColor returns the hex color for an appointment status.
func (t *Theme) StatusColor(s appointment.Status) string {
	switch s {
	case appointment.StatusScheduled:
		return t.Scheduled
	case appointment.StatusConfirmed:
		return t.Confirmed
	case appointment.StatusUpcoming:
		return t.Upcoming
	case appointment.StatusCompleted:
		return t.Completed
	case appointment.StatusCancelled:
		return t.Cancelled
	case appointment.StatusNoShow:
		return t.NoShow
	default:
		return t.Fg
	}
}

// ModalPalette provides the modal-specific colors derived from the theme.
type ModalPalette struct {
	BaseBg      string
	ModalBorder string
	TextPrimary string
	TextMuted   string
	Highlight   string
}

// Modal returns the modal palette, falling back to base theme colors when needed.
func (t *Theme) Modal() ModalPalette {
	return ModalPalette{
		BaseBg:      coalesce(t.BaseBg, t.BgHighlight, t.Bg),
		ModalBorder: coalesce(t.ModalBorder, t.Accent),
		TextPrimary: coalesce(t.TextPrimary, t.Fg),
		TextMuted:   coalesce(t.TextMuted, t.FgMuted),
		Highlight:   coalesce(t.Highlight, t.BgSelection, t.Accent),
	}
}

func (t *Theme) applyDefaults() {
	t.Scheduled = coalesce(t.Scheduled, t.Accent)
	t.Confirmed = coalesce(t.Confirmed, t.Accent)
	t.Upcoming = coalesce(t.Upcoming, t.Scheduled)
	t.Completed = coalesce(t.Completed, t.FgMuted)
	t.Cancelled = coalesce(t.Cancelled, t.Warning)
	t.NoShow = coalesce(t.NoShow, t.Warning)
	t.Heat = coalesce(t.Heat, t.Accent)

	m := t.Modal()
	t.BaseBg = m.BaseBg
	t.ModalBorder = m.ModalBorder
	t.TextPrimary = m.TextPrimary
	t.TextMuted = m.TextMuted
	t.Highlight = m.Highlight
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns a list of available theme names.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte", "light"}
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	return slices.Contains(Available(), strings.ToLower(name))
}
