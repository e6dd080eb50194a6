package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color scheme for the TUI
type Theme struct {
	Name        string
	Description string
	Type        string // "dark" or "light"

	Primary lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Text      lipgloss.Color
	TextMuted lipgloss.Color
	TextDim   lipgloss.Color

	Surface         lipgloss.Color
	Border          lipgloss.Color
	BorderHighlight lipgloss.Color

	// Button colors for the submit and clear actions.
	Button     lipgloss.Color
	ButtonText lipgloss.Color

	// Chroma style used for the code preview
	SyntaxTheme string

	// Glamour style used for the review ("dark", "light", "dracula", ...)
	MarkdownTheme string
}

var builtins = map[string]func() *Theme{
	"dreview":          Reviewer,
	"catppuccin-mocha": CatppuccinMocha,
	"dracula":          Dracula,
	"tokyo-night":      TokyoNight,
	"nord":             Nord,
	"github-light":     GithubLight,
}

// Get returns a fresh copy of the named theme.
func Get(name string) (*Theme, bool) {
	fn, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Names returns all theme names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Next returns the theme name after name, wrapping around.
func Next(name string) string {
	names := Names()
	for i, n := range names {
		if n == name {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// Default returns the default theme
func Default() *Theme {
	return Reviewer()
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Title        lipgloss.Style
	Label        lipgloss.Style
	Muted        lipgloss.Style
	Error        lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Box          lipgloss.Style
	FocusedBox   lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	ButtonBusy   lipgloss.Style
	Selected     lipgloss.Style
	StatusBar    lipgloss.Style
}

// Styles builds the styles for t.
func (t *Theme) Styles() Styles {
	button := lipgloss.NewStyle().
		Padding(0, 2).
		Foreground(t.ButtonText).
		Background(t.Button)

	return Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:        lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		Muted:        lipgloss.NewStyle().Foreground(t.TextMuted),
		Error:        lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		Success:      lipgloss.NewStyle().Foreground(t.Success),
		Warning:      lipgloss.NewStyle().Foreground(t.Warning),
		Box:          lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1),
		FocusedBox:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderHighlight).Padding(0, 1),
		Button:       button,
		ButtonActive: button.Bold(true).Underline(true),
		ButtonBusy:   button.Background(t.TextDim).Foreground(t.TextMuted),
		Selected:     lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		StatusBar:    lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Padding(0, 1),
	}
}
