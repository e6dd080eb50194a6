package components

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// SyntaxHighlighter provides code syntax highlighting using Chroma
type SyntaxHighlighter struct {
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewSyntaxHighlighter creates a highlighter for a chroma style name.
// Unknown names fall back to chroma's default style.
func NewSyntaxHighlighter(styleName string) *SyntaxHighlighter {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return &SyntaxHighlighter{
		style:     style,
		formatter: formatters.Get("terminal256"),
	}
}

// StyleName returns the chroma style in use.
func (sh *SyntaxHighlighter) StyleName() string {
	return sh.style.Name
}

func lexerFor(code, language string) chroma.Lexer {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Highlight applies syntax highlighting to code and returns ANSI-escaped text.
// The visible width of every line is unchanged, so callers may cut lines to
// width before highlighting.
func (sh *SyntaxHighlighter) Highlight(code, language string) string {
	iterator, err := lexerFor(code, language).Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := sh.formatter.Format(&buf, sh.style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// HighlightLines highlights code and returns individual lines.
func (sh *SyntaxHighlighter) HighlightLines(code, language string) []string {
	return strings.Split(strings.TrimSuffix(sh.Highlight(code, language), "\n"), "\n")
}

// AnalyseLanguage guesses the language of code from its content.
// It returns "" when nothing matches.
func AnalyseLanguage(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}

// DetectLanguage returns the language for a file name, or "".
func DetectLanguage(filename string) string {
	if filename == "" {
		return ""
	}
	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}

// LanguageExtension returns a file extension for language, used when
// handing code to an external editor. It falls back to ".txt".
func LanguageExtension(language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		return ".txt"
	}
	for _, pattern := range lexer.Config().Filenames {
		if strings.HasPrefix(pattern, "*.") && !strings.ContainsAny(pattern[2:], "*?[") {
			return pattern[1:]
		}
	}
	return ".txt"
}

// TruncateLines cuts code to at most height lines of at most width runes.
func TruncateLines(code string, width, height int) string {
	lines := strings.Split(strings.ReplaceAll(code, "\t", "    "), "\n")
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}
	for i, line := range lines {
		if r := []rune(line); width > 0 && len(r) > width {
			lines[i] = string(r[:width-1]) + "…"
		}
	}
	return strings.Join(lines, "\n")
}
