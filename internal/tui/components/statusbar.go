package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/runwaydev/runway/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, summary string, refreshing bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " [?]help  [r]efresh  [q]uit"
	if refreshing {
		left += "  refreshing…"
	}
	right := ""
	if summary != "" {
		right = fmt.Sprintf("%s ", summary)
	}

	// Pad middle
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	bar := left
	for i := 0; i < padding; i++ {
		bar += " "
	}
	bar += right

	return style.Render(bar)
}
