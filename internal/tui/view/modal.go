package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ModalStyles groups the styles needed to render modal frames and bodies.
type ModalStyles struct {
	Frame        lipgloss.Style
	Header       lipgloss.Style
	Title        lipgloss.Style
	Footer       lipgloss.Style
	Body         lipgloss.Style
	Label        lipgloss.Style
	Meta         lipgloss.Style
	Hint         lipgloss.Style
	Error        lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	Input        lipgloss.Style
	InputFocused lipgloss.Style
	Choice       lipgloss.Style
	ChoiceActive lipgloss.Style
}

// RenderModalFrame renders a modal with the provided title, body, and footer.
func RenderModalFrame(title, body, footer string, styles ModalStyles) string {
	var b strings.Builder
	b.WriteString(styles.Header.Render(styles.Title.Render(title)))
	if body != "" {
		b.WriteString("\n\n" + body)
	}
	if footer != "" {
		b.WriteString("\n\n" + styles.Footer.Render(footer))
	}
	return styles.Frame.Render(b.String())
}

// RenderButtons renders a row of modal buttons with the first one active.
func RenderButtons(styles ModalStyles, labels ...string) string {
	parts := make([]string, 0, len(labels))
	for i, label := range labels {
		style := styles.Button
		if i == 0 {
			style = styles.ButtonActive
		}
		parts = append(parts, style.Render(label))
	}
	return strings.Join(parts, styles.Body.Render(" "))
}
