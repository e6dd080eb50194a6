package tui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Dhanuzh/dreview/internal/tui/components"
)

// ExternalEditorDoneMsg is sent after the external editor process exits.
type ExternalEditorDoneMsg struct {
	Content string
	Err     error
}

// editorCommand splits $EDITOR (or $VISUAL) into a program and its
// arguments, so values like "code --wait" work. It falls back to the first
// common terminal editor on PATH.
func editorCommand() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	for _, e := range []string{"nano", "vim", "vi"} {
		if _, err := exec.LookPath(e); err == nil {
			return []string{e}
		}
	}
	return nil
}

// scratchFile writes code to a temp file whose extension matches the
// source language, so the editor picks the right syntax mode.
func scratchFile(code, filename, language string) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = components.LanguageExtension(language)
	}
	f, err := os.CreateTemp("", "dreview-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	_, err = f.WriteString(code)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	return f.Name(), nil
}

// openExternalEditor suspends the TUI and edits the code field in an
// external editor. The edited text comes back as ExternalEditorDoneMsg.
func (m Model) openExternalEditor() (tea.Model, tea.Cmd) {
	argv := editorCommand()
	if argv == nil {
		m.setStatus("$EDITOR is not set")
		return m, m.showToast("No editor found; set $EDITOR", ToastWarning, 0)
	}

	path, err := scratchFile(m.code.Value(), m.filename, m.language)
	if err != nil {
		m.setStatus(err.Error())
		return m, m.showToast("Editor failed", ToastError, 0)
	}
	m.log.WithField("editor", argv[0]).Debug("opening external editor")

	cmd := exec.Command(argv[0], append(argv[1:], path)...) //nolint:gosec
	return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
		defer os.Remove(path)
		if err != nil {
			return ExternalEditorDoneMsg{Err: err}
		}
		data, err := os.ReadFile(path)
		return ExternalEditorDoneMsg{Content: string(data), Err: err}
	})
}
