package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PlaceBox renders content in a w×h box with the background filled.
func PlaceBox(w, h int, vAlign lipgloss.Position, content string, bg lipgloss.Color) string {
	placed := lipgloss.Place(w, h, lipgloss.Left, vAlign, content, lipgloss.WithWhitespaceBackground(bg))
	return PadLines(placed, w, h, bg)
}

// PadLines pads or cuts content to exactly height lines, each at least
// width cells wide.
func PadLines(content string, width, height int, bg lipgloss.Color) string {
	if width <= 0 || height <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}
	lines = lines[:height]
	pad := lipgloss.NewStyle().Background(bg)
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + pad.Render(strings.Repeat(" ", width-w))
		}
	}
	return strings.Join(lines, "\n")
}

// Overlay splices a centered modal over base content.
type Overlay struct {
	Bg lipgloss.Color
}

// Render implements OverlayRenderer.
func (o Overlay) Render(base string, width, height int, content string) string {
	modal := strings.Split(content, "\n")
	modalW := 0
	for _, line := range modal {
		modalW = max(modalW, lipgloss.Width(line))
	}
	if len(modal) == 0 || modalW == 0 || width <= 0 || height <= 0 {
		return base
	}
	modalW = min(modalW, width)
	top := max((height-len(modal))/2, 0)
	left := max((width-modalW)/2, 0)

	bgSeq := backgroundSeq(o.Bg)
	for i, line := range modal {
		w := lipgloss.Width(line)
		if w > modalW {
			line = ansi.Cut(line, 0, modalW)
		}
		if w < modalW {
			line += lipgloss.NewStyle().Background(o.Bg).Render(strings.Repeat(" ", modalW-w))
		}
		if bgSeq != "" {
			line = strings.ReplaceAll(line, ansi.ResetStyle, ansi.ResetStyle+bgSeq)
		}
		modal[i] = line + ansi.ResetStyle
	}

	lines := strings.Split(PadLines(base, width, height, ""), "\n")
	for row := top; row < top+len(modal) && row < height; row++ {
		baseLine := lines[row]
		lines[row] = ansi.Cut(baseLine, 0, left) + modal[row-top] + ansi.Cut(baseLine, left+modalW, width)
	}
	return strings.Join(lines, "\n")
}

func backgroundSeq(bg lipgloss.Color) string {
	if bg == "" {
		return ""
	}
	return ansi.Style{}.BackgroundColor(ansi.HexColor(string(bg))).String()
}
