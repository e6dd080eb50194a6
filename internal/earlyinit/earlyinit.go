// Package earlyinit must be imported before github.com/charmbracelet/bubbletea.
// Its init presets lipgloss's dark-background flag so bubbletea's own init
// finds the value cached and never sends the OSC 11 background query, whose
// reply can otherwise arrive late and be read as keyboard input.
//
// The answer comes from DREVIEW_BACKGROUND ("light" or "dark", default dark).
package earlyinit

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// EnvBackground names the variable that overrides the assumed background.
const EnvBackground = "DREVIEW_BACKGROUND"

func init() {
	lipgloss.SetHasDarkBackground(IsDark(os.Getenv(EnvBackground)))
}

// IsDark reports whether value selects a dark background.
func IsDark(value string) bool {
	return !strings.EqualFold(strings.TrimSpace(value), "light")
}
