package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit    key.Binding
	Clear     key.Binding
	Next      key.Binding
	Prev      key.Binding
	ModelNext key.Binding
	ModelPrev key.Binding
	Copy      key.Binding
	Editor    key.Binding
	Theme     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "review")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		ModelNext: key.NewBinding(key.WithKeys("right", "down", "l", "j"), key.WithHelp("→", "next model")),
		ModelPrev: key.NewBinding(key.WithKeys("left", "up", "h", "k"), key.WithHelp("←", "prev model")),
		Copy:      key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy review")),
		Editor:    key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "$EDITOR")),
		Theme:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "theme")),
		Help:      key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Clear, k.Next, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Clear, k.Copy},
		{k.Next, k.Prev, k.ModelNext, k.ModelPrev},
		{k.Editor, k.Theme, k.Help, k.Quit},
	}
}
