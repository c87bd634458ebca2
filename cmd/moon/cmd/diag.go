package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/metaphox/moon-lang/ast"
	"github.com/metaphox/moon-lang/config"
	"github.com/metaphox/moon-lang/parser"
)

// sourceError attaches the input it came from to a lexer or parser error.
type sourceError struct {
	name string
	src  string
	err  error
}

func (e *sourceError) Error() string { return e.name + ":" + e.err.Error() }
func (e *sourceError) Unwrap() error { return e.err }

// Diagnostic styles, rebuilt by setColor.
var (
	errorLabelStyle = lipgloss.NewStyle()
	gutterStyle     = lipgloss.NewStyle()
	caretStyle      = lipgloss.NewStyle()
)

// setColor selects how diagnostics written to w are styled.
func setColor(mode string, w io.Writer) {
	if mode == config.ColorNever {
		errorLabelStyle = lipgloss.NewStyle()
		gutterStyle = lipgloss.NewStyle()
		caretStyle = lipgloss.NewStyle()
		return
	}
	r := lipgloss.NewRenderer(w)
	if mode == config.ColorAlways {
		r.SetColorProfile(termenv.ANSI256)
	}
	errorLabelStyle = r.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	gutterStyle = r.NewStyle().Foreground(lipgloss.Color("#64748B"))
	caretStyle = r.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
}

// printError writes err to w. Errors located in source also show the
// offending line with a caret under the reported span.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errorLabelStyle.Render("error:"), err)

	var se *sourceError
	if !errors.As(err, &se) {
		return
	}
	var span ast.Span
	var lexErr *parser.LexError
	var synErr *parser.SyntaxError
	switch {
	case errors.As(err, &lexErr):
		span = lexErr.Span
	case errors.As(err, &synErr):
		span = synErr.Span
	default:
		return
	}
	fmt.Fprint(w, excerpt(se.src, span))
}

// excerpt renders the source line of span.Start with a caret line below it.
// Columns are byte offsets, so the caret is placed by the display width of
// the text before it; tabs are copied to keep the alignment.
func excerpt(src string, span ast.Span) string {
	lines := strings.Split(src, "\n")
	if span.Start.Line < 1 || span.Start.Line > len(lines) {
		return ""
	}
	line := strings.TrimRight(lines[span.Start.Line-1], "\r")

	start := min(max(span.Start.Col-1, 0), len(line))
	end := start
	if span.End.Line == span.Start.Line && span.End.Col > span.Start.Col {
		end = min(span.End.Col-1, len(line))
	}
	width := max(lipgloss.Width(line[start:end]), 1)

	var pad strings.Builder
	for _, r := range line[:start] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", lipgloss.Width(string(r))))
	}

	num := fmt.Sprintf("%d", span.Start.Line)
	gutter := strings.Repeat(" ", len(num))

	var b strings.Builder
	b.WriteString(gutterStyle.Render(" "+num+" | ") + line + "\n")
	b.WriteString(gutterStyle.Render(" "+gutter+" | ") + pad.String() +
		caretStyle.Render(strings.Repeat("^", width)) + "\n")
	return b.String()
}
