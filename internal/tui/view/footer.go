package view

import "github.com/charmbracelet/lipgloss"

// FooterModel contains content and styles for rendering the footer.
type FooterModel struct {
	Width       int
	StatsText   string
	PromptText  string // shown instead of the stats while typing
	StatusText  string
	StatusError bool
	HelpText    string
	StatsStyle  lipgloss.Style
	PromptStyle lipgloss.Style
	StatusStyle lipgloss.Style
	ErrorStyle  lipgloss.Style
	HelpStyle   lipgloss.Style
}

// FooterHeight is the number of lines RenderFooter produces.
const FooterHeight = 3

// RenderFooter renders the stats or prompt line, the status line and the key help.
func RenderFooter(model FooterModel) string {
	first := Line(model.Width, model.StatsStyle, model.StatsText)
	if model.PromptText != "" {
		first = Line(model.Width, model.PromptStyle, model.PromptText)
	}
	statusStyle := model.StatusStyle
	if model.StatusError {
		statusStyle = model.ErrorStyle
	}
	return first + "\n" +
		Line(model.Width, statusStyle, model.StatusText) + "\n" +
		Line(model.Width, model.HelpStyle, model.HelpText)
}
