package tui

import (
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var oscColorReply = regexp.MustCompile(`\d{1,4}/\d{4}/\d{4}`)

// FilterTerminalReplies drops key messages that are fragments of terminal
// color-query replies (OSC 11) rather than typed input. Use it with
// tea.WithFilter.
func FilterTerminalReplies(_ tea.Model, msg tea.Msg) tea.Msg {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return msg
	}
	str := k.String()
	if oscColorReply.MatchString(str) {
		return nil
	}
	if strings.HasPrefix(str, "]11;") || strings.Contains(str, ";rgb:") || strings.HasPrefix(str, "rgb:") {
		return nil
	}
	return msg
}
