package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dhanuzh/dreview/internal/review"
)

// renderHeader returns the title bar with the selected model and status.
func (m *Model) renderHeader(st review.State) string {
	t := m.currentTheme

	left := []string{m.styles.Title.Render("🧠 AI Code Reviewer")}

	if opt, ok := review.LookupModel(st.Model); ok {
		badge := lipgloss.NewStyle().Foreground(t.ButtonText).Background(t.Button).Padding(0, 1)
		left = append(left, " ", badge.Render(opt.Name))
	}
	if st.Loading {
		left = append(left, " ", m.spinner.View()+" "+m.styles.Muted.Render("Reviewing..."))
	}

	line := lipgloss.JoinHorizontal(lipgloss.Center, left...)
	if s := m.getStatus(); s != "" {
		line += "  " + m.styles.Muted.Render(s)
	}

	sep := lipgloss.NewStyle().Foreground(t.Border).Render(strings.Repeat("─", m.width))
	return line + "\n" + sep + "\n"
}
