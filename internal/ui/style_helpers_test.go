package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestSurfaceText(t *testing.T) {
	s := newSurface("#1f1f28")
	style := lipgloss.NewStyle()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"Products", 8},
		{"12 yrs · 4 projects", 19},
		{"two  spaces", 11},
		{" padded ", 8},
	}
	for _, tt := range tests {
		if got := lipgloss.Width(s.text(tt.in, style)); got != tt.want {
			t.Errorf("width of text(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSurfaceRowFillsWidth(t *testing.T) {
	s := newSurface("#1f1f28")
	style := lipgloss.NewStyle()

	line := s.row(s.join(s.text("◆ backoffice", style), s.text("admin", style)), 60)
	if got := lipgloss.Width(line); got != 60 {
		t.Fatalf("row width = %d, want 60", got)
	}
	if strings.Contains(line, "\n") {
		t.Fatalf("row wrapped: %q", line)
	}
	if got := lipgloss.Width(s.row("", 40)); got != 40 {
		t.Fatalf("empty row width = %d, want 40", got)
	}
}
