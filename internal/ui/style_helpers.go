package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// surface paints header, footer and box rows on one theme background.
// Each word is styled separately and joined with a painted space, so the
// terminal's reset after a styled word never leaves an unpainted cell.
type surface struct {
	bg  lipgloss.Color
	gap string
}

func newSurface(color string) surface {
	bg := lipgloss.Color(color)
	return surface{bg: bg, gap: lipgloss.NewStyle().Background(bg).Render(" ")}
}

// text renders s in style on the surface background.
func (s surface) text(str string, style lipgloss.Style) string {
	if str == "" {
		return ""
	}
	style = style.Background(s.bg)
	words := strings.Split(str, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, s.gap)
}

// join places already-rendered segments one painted space apart.
func (s surface) join(segments ...string) string {
	return strings.Join(segments, s.gap)
}

// row pads content to width so the background runs to the terminal edge.
func (s surface) row(content string, width int) string {
	return lipgloss.NewStyle().Background(s.bg).Width(width).Render(content)
}
