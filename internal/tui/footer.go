package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderFooter returns the key hints under a separator.
func (m *Model) renderFooter() string {
	sep := lipgloss.NewStyle().Foreground(m.currentTheme.Border).Render(strings.Repeat("─", m.width))
	return sep + "\n" + m.help.View(m.keys)
}
