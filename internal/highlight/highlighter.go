// Package highlight colors the text shown in popups: tool detail JSON,
// manifest previews and editor diffs.
package highlight

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"misetui/internal/manifest"
)

// Highlighter provides syntax highlighting for code and diffs.
type Highlighter struct {
	style     string
	formatter chroma.Formatter
}

// New creates a new Highlighter with the specified chroma style.
func New(style string) *Highlighter {
	if style == "" {
		style = "monokai"
	}
	return &Highlighter{
		style:     style,
		formatter: formatters.Get("terminal256"),
	}
}

// Highlight applies syntax highlighting to code based on language. On any
// failure the code is returned unchanged.
func (h *Highlighter) Highlight(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(h.style)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// Detail renders the body of a detail popup. JSON is colored; anything else
// passes through. The line count never changes.
func (h *Highlighter) Detail(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return text
	}
	if !json.Valid([]byte(trimmed)) {
		return text
	}
	lines := strings.Split(h.Highlight(text, "json"), "\n")
	n := strings.Count(text, "\n") + 1
	if len(lines) > n {
		// Fold the lexer's trailing newline and reset codes into the last line.
		lines[n-1] += strings.Join(lines[n:], "")
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

// TOML colors a manifest.
func (h *Highlighter) TOML(doc string) string {
	return h.Highlight(doc, "toml")
}

var (
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// Diff renders an editor diff, one styled line per entry.
func (h *Highlighter) Diff(lines []manifest.DiffLine) string {
	var result strings.Builder
	for i, l := range lines {
		switch l.Kind {
		case manifest.DiffAdded:
			result.WriteString(addedStyle.Render(l.String()))
		case manifest.DiffRemoved:
			result.WriteString(removedStyle.Render(l.String()))
		default:
			result.WriteString(contextStyle.Render(l.String()))
		}
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
