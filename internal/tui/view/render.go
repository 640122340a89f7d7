// Package view provides view composition helpers for the TUI.
package view

// OverlayRenderer renders modal overlays on top of base content.
type OverlayRenderer interface {
	Render(base string, width, height int, content string) string
}

// Screen is one frame of the dashboard before composition.
type Screen struct {
	Width     int
	Height    int
	MinHeight int           // below this the base is replaced by TooSmall
	Base      func() string // rendered only when the terminal is large enough
	Modal     string        // empty when no modal is open
	Overlay   OverlayRenderer
}

// Screen placeholders.
const (
	Loading  = "Loading..."
	TooSmall = "Terminal too small"
)

// Render composes the final view output. Before the first resize the
// terminal size is unknown and Loading is shown.
func Render(s Screen) string {
	if s.Width <= 0 || s.Height <= 0 {
		return Loading
	}
	if s.Height < s.MinHeight || s.Base == nil {
		return TooSmall
	}
	base := s.Base()
	if s.Modal != "" && s.Overlay != nil {
		return s.Overlay.Render(base, s.Width, s.Height, s.Modal)
	}
	return base
}
