package components

import (
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"

	"github.com/Dhanuzh/dreview/internal/theme"
)

// MarkdownRenderer renders review text as terminal markdown.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	theme    *theme.Theme
}

func boolPtr(b bool) *bool    { return &b }
func uintPtr(u uint) *uint    { return &u }
func strPtr(s string) *string { return &s }

func baseStyle(name string) ansi.StyleConfig {
	switch name {
	case "light":
		return styles.LightStyleConfig
	case "dracula":
		return styles.DraculaStyleConfig
	case "tokyo-night":
		return styles.TokyoNightStyleConfig
	case "notty":
		return styles.NoTTYStyleConfig
	default:
		return styles.DarkStyleConfig
	}
}

// reviewStyle tints the glamour base style with the theme colors and drops
// the document margin so output lines up with the review box.
func reviewStyle(t *theme.Theme) ansi.StyleConfig {
	s := baseStyle(t.MarkdownTheme)

	s.Document.Margin = uintPtr(0)
	s.Document.Indent = uintPtr(0)
	s.Paragraph.Margin = uintPtr(0)

	s.H1.Bold = boolPtr(true)
	s.H1.Color = strPtr(string(t.Primary))
	s.H1.BackgroundColor = nil
	s.H1.Prefix = ""
	s.H1.Suffix = ""
	s.H2.Color = strPtr(string(t.Primary))
	s.H3.Color = strPtr(string(t.Accent))

	s.Item.Prefix = "• "
	s.Code.Color = strPtr(string(t.Accent))
	s.Link.Color = strPtr(string(t.Primary))
	s.Link.Underline = boolPtr(true)

	s.BlockQuote.IndentToken = strPtr("┃ ")
	s.BlockQuote.Color = strPtr(string(t.TextMuted))
	s.HorizontalRule.Color = strPtr(string(t.Border))

	s.CodeBlock.Margin = uintPtr(0)
	if t.SyntaxTheme != "" {
		s.CodeBlock.Theme = t.SyntaxTheme
		s.CodeBlock.Chroma = nil
	}
	return s
}

// NewMarkdownRenderer creates a renderer wrapping at width.
func NewMarkdownRenderer(width int, t *theme.Theme) *MarkdownRenderer {
	if t == nil {
		t = theme.Default()
	}
	if width < 20 {
		width = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(reviewStyle(t)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Fallback: plain word-wrap only
		renderer, _ = glamour.NewTermRenderer(glamour.WithWordWrap(width))
	}
	return &MarkdownRenderer{renderer: renderer, width: width, theme: t}
}

// Render renders markdown to terminal output. On error the input is
// returned unchanged along with the error.
func (mr *MarkdownRenderer) Render(markdown string) (string, error) {
	rendered, err := mr.renderer.Render(markdown)
	if err != nil {
		return markdown, err
	}
	return rendered, nil
}

// Width returns the wrap width.
func (mr *MarkdownRenderer) Width() int { return mr.width }

// SetWidth rebuilds the renderer for a new wrap width.
func (mr *MarkdownRenderer) SetWidth(width int) {
	if width == mr.width {
		return
	}
	*mr = *NewMarkdownRenderer(width, mr.theme)
}
