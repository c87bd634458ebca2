package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/metaphox/moon-lang/ast"
)

// LexError reports the first error token the token source produced.
type LexError struct {
	Span ast.Span
	Text string // the offending source text
}

// Unterminated reports whether the error is an unclosed string literal.
func (e *LexError) Unterminated() bool {
	return strings.HasPrefix(e.Text, `"`) || strings.HasPrefix(e.Text, `'`)
}

func (e *LexError) Error() string {
	if e.Unterminated() {
		return fmt.Sprintf("%s: unterminated string literal", e.Span.Start)
	}
	return fmt.Sprintf("%s: unexpected character %q", e.Span.Start, e.Text)
}

// SyntaxError reports a position where no grammar alternative matched.
type SyntaxError struct {
	Span     ast.Span
	Found    ast.Token
	Expected []string // alternatives that were legal at Span
	Msg      string   // overrides the "unexpected X" wording when set
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: syntax error: ", e.Span.Start)
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString("unexpected ")
		b.WriteString(describe(e.Found))
	}
	if len(e.Expected) > 0 {
		b.WriteString(", expected ")
		b.WriteString(alternatives(e.Expected))
	}
	return b.String()
}

// IsIncomplete reports whether err was caused by input ending too early, the
// signal an interactive caller uses to ask for another line.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Found.Type == ast.EOF
	}
	var le *LexError
	if errors.As(err, &le) {
		return le.Unterminated()
	}
	return false
}

// describe names a token for diagnostics: literal-carrying tokens show their
// text, everything else its type name.
func describe(tok ast.Token) string {
	switch tok.Type {
	case ast.IDENT, ast.DIGIT, ast.STRING:
		return fmt.Sprintf("%s %s", tok.Type, quoteLiteral(tok.Literal))
	}
	return tok.Type.String()
}

func quoteLiteral(s string) string {
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, `'`) {
		return s
	}
	return fmt.Sprintf("%q", s)
}

// alternatives joins names as "a", "a or b", "a, b or c".
func alternatives(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
