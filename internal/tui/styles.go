// Package tui provides the terminal user interface for clinicdesk.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
	"github.com/javiermolinar/clinicdesk/internal/tui/theme"
	"github.com/javiermolinar/clinicdesk/internal/tui/view"
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	palette *theme.Palette

	App lipgloss.Style

	// Header
	Title     lipgloss.Style
	Meta      lipgloss.Style
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Filter    lipgloss.Style
	Bar       lipgloss.Style

	// Body
	PaneTitle lipgloss.Style
	Cell      lipgloss.Style
	Past      lipgloss.Style
	Selected  lipgloss.Style
	Pending   lipgloss.Style
	Border    lipgloss.Style
	Empty     lipgloss.Style
	Time      lipgloss.Style
	TimeNow   lipgloss.Style
	Hour      lipgloss.Style

	// Footer
	Stats  lipgloss.Style
	Prompt lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Help   lipgloss.Style

	statusText  map[appointment.Status]lipgloss.Style
	statusBlock map[appointment.Status]lipgloss.Style
	heat        [schedule.MaxBucket + 1]lipgloss.Style

	Modal view.ModalStyles
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	p := theme.NewPalette(t)
	base := lipgloss.NewStyle().Background(p.Bg).Foreground(p.Fg)

	s := &Styles{
		palette: p,
		App:     base,

		Title:     base.Foreground(p.Accent).Bold(true),
		Meta:      base.Foreground(p.FgMuted),
		Tab:       base.Foreground(p.FgMuted).Padding(0, 1),
		TabActive: lipgloss.NewStyle().Background(p.Accent).Foreground(p.TextOnAccent).Bold(true).Padding(0, 1),
		Filter:    base.Foreground(p.Warning),
		Bar:       base,

		PaneTitle: base.Foreground(p.Accent).Bold(true),
		Cell:      base.Padding(0, 1),
		Past:      base.Foreground(p.FgMuted).Padding(0, 1),
		Selected:  lipgloss.NewStyle().Background(p.BgSelection).Foreground(p.Fg).Bold(true).Padding(0, 1),
		Pending:   base.Foreground(p.Warning).Italic(true).Padding(0, 1),
		Border:    base.Foreground(p.BgSelection),
		Empty:     base.Foreground(p.FgMuted),
		Time:      base.Foreground(p.FgMuted),
		TimeNow:   base.Foreground(p.Current).Bold(true),
		Hour:      lipgloss.NewStyle().Background(p.BgHighlight),

		Stats:  base.Foreground(p.Fg),
		Prompt: base.Foreground(p.Accent),
		Status: base.Foreground(p.Current),
		Error:  base.Foreground(p.Warning).Bold(true),
		Help:   base.Foreground(p.FgMuted),

		statusText:  make(map[appointment.Status]lipgloss.Style, len(appointment.Statuses)),
		statusBlock: make(map[appointment.Status]lipgloss.Style, len(appointment.Statuses)),
	}

	for _, st := range appointment.Statuses {
		s.statusText[st] = base.Foreground(p.Status[st]).Padding(0, 1)
		s.statusBlock[st] = lipgloss.NewStyle().Background(p.StatusBg[st]).Foreground(p.TextOnStatus[st])
	}
	for b := range s.heat {
		s.heat[b] = lipgloss.NewStyle().Background(p.Heat[b]).Foreground(p.TextOnHeat[b])
	}

	mp := p.Modal
	modalBase := lipgloss.NewStyle().Background(mp.Bg).Foreground(mp.Text)
	s.Modal = view.ModalStyles{
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mp.Border).
			BorderBackground(mp.Bg).
			Background(mp.Bg).
			Padding(1, 2),
		Header:       modalBase,
		Title:        modalBase.Foreground(p.Accent).Bold(true),
		Footer:       modalBase,
		Body:         modalBase,
		Label:        modalBase.Foreground(mp.Muted),
		Meta:         modalBase.Foreground(mp.Muted),
		Hint:         modalBase.Foreground(mp.Muted).Italic(true),
		Error:        modalBase.Foreground(p.Warning).Bold(true),
		Button:       modalBase.Foreground(mp.Muted).Padding(0, 1),
		ButtonActive: lipgloss.NewStyle().Background(p.Accent).Foreground(p.TextOnAccent).Bold(true).Padding(0, 1),
		Input:        modalBase,
		InputFocused: modalBase.Foreground(mp.Highlight).Underline(true),
		Choice:       modalBase,
		ChoiceActive: lipgloss.NewStyle().Background(p.BgSelection).Foreground(p.Fg).Bold(true),
	}
	return s
}

// StatusText returns the list style of a status column cell.
func (s *Styles) StatusText(st appointment.Status) lipgloss.Style {
	if style, ok := s.statusText[st]; ok {
		return style
	}
	return s.Cell
}

// StatusBlock returns the timeline block style of a status.
func (s *Styles) StatusBlock(st appointment.Status) lipgloss.Style {
	if style, ok := s.statusBlock[st]; ok {
		return style
	}
	return s.Selected
}

// Heat returns the heat map cell style of a density bucket.
func (s *Styles) Heat(b schedule.Bucket) lipgloss.Style {
	return s.heat[b.Clamp()]
}

func (s *Styles) header() view.HeaderStyles {
	return view.HeaderStyles{
		Title:     s.Title,
		Meta:      s.Meta,
		Tab:       s.Tab,
		TabActive: s.TabActive,
		Filter:    s.Filter,
		Bar:       s.Bar,
	}
}

func (s *Styles) list() view.ListStyles {
	return view.ListStyles{
		Header:   s.PaneTitle.Padding(0, 1),
		Cell:     s.Cell,
		Past:     s.Past,
		Selected: s.Selected,
		Pending:  s.Pending,
		Border:   s.Border,
		Empty:    s.Empty,
		Status:   s.StatusText,
	}
}

func (s *Styles) timeline() view.TimelineStyles {
	return view.TimelineStyles{
		Time:     s.Time,
		TimeNow:  s.TimeNow,
		Empty:    s.App,
		Hour:     s.Hour,
		Selected: lipgloss.NewStyle().Background(s.palette.Accent).Foreground(s.palette.TextOnAccent).Bold(true),
		Pending:  lipgloss.NewStyle().Background(s.palette.Warning).Foreground(s.palette.TextOnWarning).Italic(true),
		Block:    s.StatusBlock,
	}
}

func (s *Styles) heatmap() view.HeatmapStyles {
	return view.HeatmapStyles{
		Title:    s.PaneTitle,
		Weekday:  s.Meta,
		Outside:  s.Empty,
		Today:    lipgloss.NewStyle().Underline(true).Bold(true),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(s.palette.Current),
		Legend:   s.Meta,
		Bucket:   s.Heat,
	}
}
