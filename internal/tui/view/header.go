package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one entry of the scope tab bar.
type Tab struct {
	Label  string
	Count  int
	Active bool
}

// HeaderStyles groups the styles of the header rows.
type HeaderStyles struct {
	Title     lipgloss.Style
	Meta      lipgloss.Style
	Tab       lipgloss.Style
	TabActive lipgloss.Style
	Filter    lipgloss.Style
	Bar       lipgloss.Style
}

// HeaderModel holds what the header shows.
type HeaderModel struct {
	Width   int
	Title   string
	Meta    string // right-aligned, e.g. today's date
	Tabs    []Tab
	Filters string // active facets, empty when none
}

// RenderHeader renders the title row and the tab bar.
func RenderHeader(model HeaderModel, styles HeaderStyles) string {
	title := styles.Title.Render(model.Title)
	meta := styles.Meta.Render(model.Meta)
	gap := max(model.Width-lipgloss.Width(title)-lipgloss.Width(meta), 1)
	top := title + styles.Bar.Render(strings.Repeat(" ", gap)) + meta

	parts := make([]string, 0, len(model.Tabs))
	for _, tab := range model.Tabs {
		style := styles.Tab
		if tab.Active {
			style = styles.TabActive
		}
		parts = append(parts, style.Render(TabLabel(tab)))
	}
	bar := strings.Join(parts, styles.Bar.Render(" "))
	if model.Filters != "" {
		bar += styles.Bar.Render("  ") + styles.Filter.Render(model.Filters)
	}
	return Line(model.Width, styles.Bar, top) + "\n" + Line(model.Width, styles.Bar, bar)
}

// TabLabel renders "Today (3)".
func TabLabel(tab Tab) string {
	return tab.Label + " (" + itoa(tab.Count) + ")"
}
