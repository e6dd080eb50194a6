package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/Dhanuzh/dreview/internal/log"
	"github.com/Dhanuzh/dreview/internal/review"
	"github.com/Dhanuzh/dreview/internal/theme"
	"github.com/Dhanuzh/dreview/internal/tui/components"
)

// Button labels for the submit action.
const (
	LabelSubmit  = "Review Code"
	LabelLoading = "Reviewing..."
	LabelClear   = "Clear"
)

const reviewPlaceholder = "The review will appear here."

type focusArea int

const (
	focusCode focusArea = iota
	focusKey
	focusModel
	focusReview
	focusCount
)

func (f focusArea) String() string {
	switch f {
	case focusCode:
		return "code"
	case focusKey:
		return "api key"
	case focusModel:
		return "model"
	case focusReview:
		return "review"
	default:
		return ""
	}
}

// reviewDoneMsg carries the settled outcome of a submission.
type reviewDoneMsg struct {
	id      string
	outcome review.Outcome
}

// Options configure the TUI.
type Options struct {
	Theme      string
	MaskAPIKey bool
	Filename   string // source of prefilled code, used for language detection
	Logger     logrus.FieldLogger
}

// Model is the bubbletea model for the review form.
type Model struct {
	form *review.Form
	log  logrus.FieldLogger

	code    textarea.Model
	apiKey  textinput.Model
	output  viewport.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	focus        focusArea
	currentTheme *theme.Theme
	styles       theme.Styles
	markdown     *components.MarkdownRenderer
	syntax       *components.SyntaxHighlighter

	filename string
	language string

	renderedFor string // review text currently in the viewport
	pendingID   string

	toasts       []Toast
	statusMsg    string
	statusExpiry time.Time

	ctx    context.Context
	cancel context.CancelFunc

	width, height int
	quitting      bool
}

// New creates the TUI model around form.
func New(form *review.Form, opts Options) Model {
	th, ok := theme.Get(opts.Theme)
	if !ok {
		th = theme.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	st := form.Snapshot()

	ta := textarea.New()
	ta.Placeholder = "Paste your code here..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.SetHeight(10)
	ta.SetValue(st.Code)
	ta.Focus()

	ti := textinput.New()
	ti.Placeholder = "Enter your OpenRouter API key"
	ti.Prompt = ""
	ti.SetValue(st.APIKey)
	if opts.MaskAPIKey {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		form:     form,
		log:      logger,
		code:     ta,
		apiKey:   ti,
		output:   viewport.New(80, 10),
		spinner:  sp,
		help:     help.New(),
		keys:     defaultKeyMap(),
		filename: opts.Filename,
		ctx:      ctx,
		cancel:   cancel,
		width:    80,
		height:   30,
	}
	m.applyTheme(th)
	m.detectLanguage()
	m.refreshReview()
	return m
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// applyTheme rebuilds every theme-dependent piece.
func (m *Model) applyTheme(th *theme.Theme) {
	m.currentTheme = th
	m.styles = th.Styles()
	m.spinner.Style = lipgloss.NewStyle().Foreground(th.Primary)
	m.markdown = components.NewMarkdownRenderer(m.reviewWidth(), th)
	m.syntax = components.NewSyntaxHighlighter(th.SyntaxTheme)
	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(th.Primary).Bold(true)
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(th.TextMuted)
	m.help.Styles.FullKey = m.help.Styles.ShortKey
	m.help.Styles.FullDesc = m.help.Styles.ShortDesc
	m.renderedFor = "\x00" // force a re-render
}

func (m *Model) reviewWidth() int {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case reviewDoneMsg:
		return m, m.handleReviewDone(msg)

	case spinner.TickMsg:
		if !m.form.Snapshot().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ToastDismissMsg:
		m.pruneToasts()
		return m, nil

	case ExternalEditorDoneMsg:
		if msg.Err != nil {
			m.setStatus("Editor failed: " + msg.Err.Error())
			return m, m.showToast("Editor failed", ToastError, 0)
		}
		m.code.SetValue(strings.TrimRight(msg.Content, "\n"))
		m.syncInputs()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keys.Clear):
		return m, m.clear()

	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyReview()

	case key.Matches(msg, m.keys.Editor):
		return m.openExternalEditor()

	case key.Matches(msg, m.keys.Theme):
		if th, ok := theme.Get(theme.Next(m.currentTheme.Name)); ok {
			m.applyTheme(th)
		}
		m.refreshReview()
		return m, m.showToast("Theme: "+m.currentTheme.Name, ToastInfo, 2*time.Second)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	}

	if m.focus == focusModel {
		st := m.form.Snapshot()
		switch {
		case key.Matches(msg, m.keys.ModelNext):
			m.selectModel(review.NextModel(st.Model))
			return m, nil
		case key.Matches(msg, m.keys.ModelPrev):
			m.selectModel(review.PrevModel(st.Model))
			return m, nil
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused control and mirrors edits
// into the form.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusCode:
		m.code, cmd = m.code.Update(msg)
	case focusKey:
		m.apiKey, cmd = m.apiKey.Update(msg)
	case focusReview:
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
	m.syncInputs()
	return m, cmd
}

// syncInputs copies the text controls into the form.
func (m *Model) syncInputs() {
	before := m.form.Snapshot().Code
	m.form.SetCode(m.code.Value())
	m.form.SetAPIKey(m.apiKey.Value())
	if m.code.Value() != before {
		m.detectLanguage()
	}
}

func (m *Model) detectLanguage() {
	if lang := components.DetectLanguage(m.filename); lang != "" {
		m.language = lang
		return
	}
	m.language = components.AnalyseLanguage(m.code.Value())
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.code.Blur()
	m.apiKey.Blur()
	switch f {
	case focusCode:
		m.code.Focus()
	case focusKey:
		m.apiKey.Focus()
	}
}

func (m *Model) selectModel(id string) {
	if err := m.form.SelectModel(id); err != nil {
		m.setStatus(err.Error())
		return
	}
	if opt, ok := review.LookupModel(id); ok {
		m.setStatus("Model: " + opt.Name)
	}
}

// submit validates on the event loop so loading is visible immediately,
// then runs the request in a command.
func (m *Model) submit() tea.Cmd {
	m.syncInputs()
	if m.form.Snapshot().Loading {
		return nil
	}

	sub, outcome := m.form.Begin()
	if sub == nil {
		m.log.WithField("outcome", outcome.String()).Debug("review blocked")
		if notice := outcome.Notice(); notice != "" {
			return m.showToast(notice, ToastWarning, 0)
		}
		return nil
	}

	m.pendingID = sub.ID()
	m.refreshReview()
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return reviewDoneMsg{id: sub.ID(), outcome: sub.Run(ctx)}
	})
}

func (m *Model) handleReviewDone(msg reviewDoneMsg) tea.Cmd {
	if msg.id == m.pendingID {
		m.pendingID = ""
	}
	m.refreshReview()

	switch msg.outcome {
	case review.OutcomeReviewed:
		m.output.GotoTop()
		return m.showToast("Review ready", ToastSuccess, 0)
	case review.OutcomeKeyRejected:
		m.setFocus(focusKey)
		return nil
	case review.OutcomeFailed:
		return m.showToast("Review failed", ToastError, 0)
	case review.OutcomeDiscarded:
		return m.showToast("Discarded a review started before clear", ToastInfo, 0)
	}
	return nil
}

func (m *Model) clear() tea.Cmd {
	m.form.Clear()
	st := m.form.Snapshot()
	m.code.SetValue(st.Code)
	m.language = ""
	m.refreshReview()
	m.setFocus(focusCode)
	return m.showToast("Cleared", ToastInfo, 2*time.Second)
}

func (m *Model) copyReview() tea.Cmd {
	text := m.form.Snapshot().Review
	if text == "" {
		return m.showToast("Nothing to copy", ToastWarning, 2*time.Second)
	}
	if err := clipboard.WriteAll(text); err != nil {
		m.log.WithError(err).Warn("clipboard write failed")
		return m.showToast("Copy failed: "+err.Error(), ToastError, 0)
	}
	return m.showToast("Review copied", ToastSuccess, 2*time.Second)
}

// refreshReview re-renders the review viewport when the text changed.
func (m *Model) refreshReview() {
	text := m.form.Snapshot().Review
	if text == m.renderedFor {
		return
	}
	m.renderedFor = text

	if text == "" {
		m.output.SetContent(m.styles.Muted.Render(reviewPlaceholder))
		return
	}
	m.markdown.SetWidth(m.reviewWidth())
	rendered, err := m.markdown.Render(text)
	if err != nil {
		m.log.WithError(err).Debug("markdown render failed")
	}
	m.output.SetContent(strings.TrimRight(rendered, "\n"))
}

// layout sizes the controls for the current window.
func (m *Model) layout() {
	inner := m.width - 4
	if inner < 20 {
		inner = 20
	}
	m.code.SetWidth(inner)
	m.apiKey.Width = inner - 2
	m.help.Width = m.width

	// header 2, code label 1, key block 4, model row 1, buttons 2,
	// review label 1, borders 4, footer 3
	fixed := 18
	if m.help.ShowAll {
		fixed += 3
	}
	avail := m.height - fixed
	if avail < 6 {
		avail = 6
	}
	codeH := avail * 2 / 5
	if codeH < 3 {
		codeH = 3
	}
	m.code.SetHeight(codeH)
	m.output.Width = inner
	m.output.Height = avail - codeH

	m.renderedFor = "\x00"
	m.refreshReview()
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusExpiry = time.Now().Add(5 * time.Second)
}

func (m *Model) getStatus() string {
	if m.statusMsg != "" && time.Now().Before(m.statusExpiry) {
		return m.statusMsg
	}
	m.statusMsg = ""
	return ""
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.form.Snapshot()
	s := m.styles

	var b strings.Builder
	b.WriteString(m.renderHeader(st))

	// Code
	codeLabel := s.Label.Render("Code")
	if m.language != "" {
		codeLabel += " " + s.Muted.Render("("+m.language+")")
	}
	b.WriteString(codeLabel + "\n")
	b.WriteString(m.box(focusCode).Render(m.renderCode(st.Code)) + "\n")

	// API key
	b.WriteString(s.Label.Render("API Key:") + "\n")
	b.WriteString(m.box(focusKey).Render(m.apiKey.View()) + "\n")
	if st.KeyError != "" {
		b.WriteString(s.Error.Render(st.KeyError) + "\n")
	}

	// Model selector and actions
	b.WriteString(m.renderModelSelector(st.Model) + "\n")
	b.WriteString(m.renderButtons(st.Loading) + "\n\n")

	// Review
	b.WriteString(s.Label.Render("Review:") + "\n")
	b.WriteString(m.box(focusReview).Render(m.output.View()) + "\n")

	b.WriteString(m.renderFooter())
	return m.injectToastsIntoView(b.String())
}

func (m *Model) box(area focusArea) lipgloss.Style {
	if m.focus == area {
		return m.styles.FocusedBox
	}
	return m.styles.Box
}

// renderCode shows the editable textarea when focused and a highlighted
// preview otherwise.
func (m *Model) renderCode(code string) string {
	if m.focus == focusCode || code == "" {
		return m.code.View()
	}
	preview := components.TruncateLines(code, m.code.Width(), m.code.Height())
	lines := m.syntax.HighlightLines(preview, m.language)
	for len(lines) < m.code.Height() {
		lines = append(lines, "")
	}
	return strings.Join(lines[:m.code.Height()], "\n")
}

func (m *Model) renderModelSelector(selected string) string {
	s := m.styles
	parts := []string{s.Label.Render("Model:")}
	for _, opt := range review.Models() {
		if opt.ID == selected {
			parts = append(parts, s.Selected.Render("● "+opt.Name))
		} else {
			parts = append(parts, s.Muted.Render("○ "+opt.Name))
		}
	}
	line := strings.Join(parts, "  ")
	if m.focus == focusModel {
		line += "  " + s.Muted.Render("←/→ to change")
	}
	return line
}

func (m *Model) renderButtons(loading bool) string {
	s := m.styles
	var submit string
	if loading {
		submit = s.ButtonBusy.Render(LabelLoading) + " " + m.spinner.View()
	} else {
		submit = s.Button.Render(LabelSubmit)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		submit, "  ", s.Button.Render(LabelClear),
		"  ", s.Muted.Render(fmt.Sprintf("focus: %s", m.focus)),
	)
}

// Close cancels any outstanding request.
func (m Model) Close() {
	m.cancel()
}
