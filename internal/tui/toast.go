package tui

// Toasts are short notices drawn in the top-right corner. They stand in for
// browser-style alerts and dismiss themselves.

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ToastKind controls the colour of the toast.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastWarning
	ToastError
)

const (
	defaultToastDuration = 4 * time.Second
	maxToasts            = 3
)

// Toast is a single notification entry.
type Toast struct {
	Message string
	Kind    ToastKind
	Expiry  time.Time
}

// ToastDismissMsg is fired by the timer to remove expired toasts.
type ToastDismissMsg struct{}

// showToast queues a notice and returns the command that dismisses it.
// Repeating a visible message only extends its lifetime.
func (m *Model) showToast(msg string, kind ToastKind, dur time.Duration) tea.Cmd {
	if dur == 0 {
		dur = defaultToastDuration
	}
	expiry := time.Now().Add(dur)

	replaced := false
	for i := range m.toasts {
		if m.toasts[i].Message == msg {
			m.toasts[i].Kind = kind
			m.toasts[i].Expiry = expiry
			replaced = true
		}
	}
	if !replaced {
		m.toasts = append(m.toasts, Toast{Message: msg, Kind: kind, Expiry: expiry})
		if len(m.toasts) > maxToasts {
			m.toasts = m.toasts[len(m.toasts)-maxToasts:]
		}
	}

	return tea.Tick(dur+100*time.Millisecond, func(time.Time) tea.Msg {
		return ToastDismissMsg{}
	})
}

// pruneToasts removes all expired toasts.
func (m *Model) pruneToasts() {
	now := time.Now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.Expiry) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m *Model) toastColor(kind ToastKind) lipgloss.Color {
	t := m.currentTheme
	switch kind {
	case ToastSuccess:
		return t.Success
	case ToastWarning:
		return t.Warning
	case ToastError:
		return t.Error
	default:
		return t.Primary
	}
}

// injectToastsIntoView overlays live toasts on the right edge of the first
// lines of screen.
func (m *Model) injectToastsIntoView(screen string) string {
	m.pruneToasts()
	if len(m.toasts) == 0 {
		return screen
	}

	rendered := make([]string, len(m.toasts))
	widest := 0
	for i, toast := range m.toasts {
		rendered[i] = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#111111")).
			Background(m.toastColor(toast.Kind)).
			Padding(0, 2).
			Bold(true).
			Render(toast.Message)
		if w := lipgloss.Width(rendered[i]); w > widest {
			widest = w
		}
	}

	col := m.width - widest - 2
	if col < 0 {
		col = 0
	}

	lines := strings.Split(screen, "\n")
	for i, toast := range rendered {
		if i >= len(lines) {
			lines = append(lines, "")
		}
		if pad := col - lipgloss.Width(lines[i]); pad > 0 {
			lines[i] += strings.Repeat(" ", pad)
		} else {
			lines[i] += " "
		}
		lines[i] += toast
	}
	return strings.Join(lines, "\n")
}
