// Package lexer implements the moon language lexer (tokeniser).
//
// The lexer converts a moon source string into a flat stream of [ast.Token]
// values. Call [New] to create a lexer and then call [Lexer.NextToken]
// repeatedly until you receive a token with Type == [ast.EOF].
//
// Design notes:
//   - Single-pass, character-by-character scanning using a read position cursor.
//   - Indentation is significant. An explicit stack of open indentation levels
//     drives the synthetic INDENT, DEDENT, SOFT_DEDENT and NEWLINE tokens.
//   - Comments (-- …) are returned as COMMENT tokens; blank and comment-only
//     lines never produce layout tokens.
//   - `-` and `*` in prefix position are resolved here into UNARY_MINUS and
//     UNARY_ITER, so the parser never looks at whitespace.
//   - No global state; every [Lexer] is independent.
package lexer

import (
	"github.com/metaphox/moon-lang/ast"
)

// DefaultTabWidth is the number of columns a tab advances the indentation.
const DefaultTabWidth = 4

// Options tune the lexer. The zero value selects the defaults.
type Options struct {
	// TabWidth is the indentation width of a tab character.
	TabWidth int
}

// Lexer holds all state required to tokenise a single moon source string.
// Create one with [New]; never copy a Lexer after first use.
type Lexer struct {
	input   string // the full source text
	pos     int    // current read position (index of ch)
	readPos int    // next read position (pos + 1)
	ch      byte   // current character under examination

	line int // 1-based line of ch
	col  int // 1-based column of ch

	tabWidth int

	indents     []int       // open indentation levels, bottom is always 0
	pending     []ast.Token // layout tokens queued ahead of the next real token
	peeked      *ast.Token
	atLineStart bool
	firstOnLine bool // no significant token yet on the current line
	emitted     bool // a significant token has been produced
	prev        ast.TokenType
	done        bool
}

// New creates a [Lexer] that tokenises the given input string with default
// options.
func New(input string) *Lexer {
	return NewWithOptions(input, Options{})
}

// NewWithOptions creates a [Lexer] using opts.
func NewWithOptions(input string, opts Options) *Lexer {
	tw := opts.TabWidth
	if tw <= 0 {
		tw = DefaultTabWidth
	}
	l := &Lexer{
		input:       input,
		line:        1,
		tabWidth:    tw,
		indents:     []int{0},
		atLineStart: true,
		firstOnLine: true,
		prev:        ast.ILLEGAL,
	}
	l.readChar() // prime: set l.ch = input[0]
	return l
}

// Tokenize scans input completely and returns every token up to and including
// EOF.
func Tokenize(input string) []ast.Token {
	return TokenizeWithOptions(input, Options{})
}

// TokenizeWithOptions is [Tokenize] with explicit options.
func TokenizeWithOptions(input string, opts Options) []ast.Token {
	l := NewWithOptions(input, opts)
	var toks []ast.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == ast.EOF {
			return toks
		}
	}
}

// PeekToken returns the next token without consuming it.
func (l *Lexer) PeekToken() ast.Token {
	if l.peeked == nil {
		tok := l.scan()
		l.peeked = &tok
	}
	return *l.peeked
}

// NextToken returns the next token from the input.
//
// Layout tokens are produced at the start of each line that holds code.
// When the input is exhausted, every still-open indentation level is closed
// with a DEDENT and NextToken then returns EOF on every subsequent call.
func (l *Lexer) NextToken() ast.Token {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok
	}
	return l.scan()
}

func (l *Lexer) scan() ast.Token {
	if tok, ok := l.popPending(); ok {
		return tok
	}
	if l.done {
		return ast.Token{Type: ast.EOF, Span: l.here()}
	}
	if l.atLineStart {
		l.scanIndentation()
		if tok, ok := l.popPending(); ok {
			return tok
		}
	}

	spaced := l.skipSpaces()
	if l.ch == '\n' {
		l.readChar()
		l.atLineStart = true
		l.firstOnLine = true
		return l.scan()
	}
	if l.ch == 0 && l.pos >= len(l.input) {
		return l.finish()
	}

	first := l.firstOnLine
	tok := l.scanToken(spaced || first)
	tok.Adjacent = !spaced && !first
	if tok.Type != ast.COMMENT {
		l.firstOnLine = false
		l.emitted = true
		l.prev = tok.Type
	}
	return tok
}

// finish closes all open levels and marks the lexer exhausted.
func (l *Lexer) finish() ast.Token {
	sp := l.here()
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.pending = append(l.pending, ast.Token{Type: ast.DEDENT, Span: sp})
	}
	l.pending = append(l.pending, ast.Token{Type: ast.EOF, Span: sp})
	l.done = true
	tok, _ := l.popPending()
	return tok
}

func (l *Lexer) popPending() (ast.Token, bool) {
	if len(l.pending) == 0 {
		return ast.Token{}, false
	}
	tok := l.pending[0]
	l.pending = l.pending[1:]
	return tok, true
}

// ── Layout ────────────────────────────────────────────────────────────────────

// scanIndentation measures the leading whitespace of the lines starting at the
// cursor, skipping blank and comment-only lines, and queues the layout tokens
// for the first line that holds code.
func (l *Lexer) scanIndentation() {
	for {
		indent := 0
	measure:
		for {
			switch l.ch {
			case ' ':
				indent++
			case '\t':
				indent += l.tabWidth
			case '\r':
				indent = 0
			default:
				break measure
			}
			l.readChar()
		}

		switch {
		case l.ch == '\n':
			l.readChar()
			continue
		case l.ch == 0 && l.pos >= len(l.input):
			l.atLineStart = false
			return
		case l.ch == '-' && l.peekChar() == '-':
			// Comment-only line: the comment token is emitted but the
			// indentation of the next code line decides the layout.
			l.atLineStart = false
			return
		}

		l.atLineStart = false
		l.layout(indent)
		return
	}
}

// layout compares indent against the indentation stack.
//
//	deeper    → INDENT
//	equal     → NEWLINE (never before the first token)
//	shallower → DEDENT per closed level. A line that stops between two open
//	            levels right after a block opener (-> => then) gets a
//	            SOFT_DEDENT instead of the last DEDENT and its column is pushed
//	            as a new level; anywhere else it closes that level with a
//	            plain DEDENT.
func (l *Lexer) layout(indent int) {
	sp := l.here()
	top := l.indents[len(l.indents)-1]
	switch {
	case indent > top:
		l.indents = append(l.indents, indent)
		l.pending = append(l.pending, ast.Token{Type: ast.INDENT, Span: sp})
	case indent == top:
		if l.emitted {
			l.pending = append(l.pending, ast.Token{Type: ast.NEWLINE, Span: sp})
		}
	default:
		for indent < l.indents[len(l.indents)-1] {
			l.indents = l.indents[:len(l.indents)-1]
			if indent > l.indents[len(l.indents)-1] {
				if opensBlock(l.prev) {
					l.indents = append(l.indents, indent)
					l.pending = append(l.pending, ast.Token{Type: ast.SOFT_DEDENT, Span: sp})
				} else {
					l.pending = append(l.pending, ast.Token{Type: ast.DEDENT, Span: sp})
				}
				return
			}
			l.pending = append(l.pending, ast.Token{Type: ast.DEDENT, Span: sp})
		}
	}
}

// opensBlock reports whether a block may start after a token of type tt.
func opensBlock(tt ast.TokenType) bool {
	switch tt {
	case ast.ARROW, ast.FAT_ARROW, ast.THEN:
		return true
	}
	return false
}

// ── Tokens ────────────────────────────────────────────────────────────────────

// scanToken scans one significant token or comment starting at ch.
// prefix reports whether the token is preceded by whitespace or starts its
// line, which is what decides unary `-` and `*`.
func (l *Lexer) scanToken(prefix bool) ast.Token {
	start := l.here().Start

	switch l.ch {
	// ── String literal ──────────────────────────────────────────────────────
	case '"', '\'':
		return l.readString(start)

	// ── Single-character delimiters ─────────────────────────────────────────
	case '(':
		return l.single(start, ast.LPAREN)
	case ')':
		return l.single(start, ast.RPAREN)
	case '{':
		return l.single(start, ast.LBRACE)
	case '}':
		return l.single(start, ast.RBRACE)
	case ',':
		return l.single(start, ast.COMMA)
	case '^':
		return l.single(start, ast.CARET)

	// ── Operators that may be one or more characters ────────────────────────
	case '-':
		switch l.peekChar() {
		case '-':
			return l.readComment(start)
		case '=':
			return l.double(start, ast.MINUS_ASSIGN)
		case '>':
			return l.double(start, ast.ARROW)
		}
		if l.unaryPosition(prefix) {
			return l.single(start, ast.UNARY_MINUS)
		}
		return l.single(start, ast.MINUS)
	case '*':
		if l.peekChar() == '=' {
			return l.double(start, ast.STAR_ASSIGN)
		}
		if l.unaryPosition(prefix) {
			return l.single(start, ast.UNARY_ITER)
		}
		return l.single(start, ast.ASTERISK)
	case '+':
		if l.peekChar() == '=' {
			return l.double(start, ast.PLUS_ASSIGN)
		}
		return l.single(start, ast.PLUS)
	case '/':
		if l.peekChar() == '=' {
			return l.double(start, ast.SLASH_ASSIGN)
		}
		return l.single(start, ast.SLASH)
	case '%':
		if l.peekChar() == '=' {
			return l.double(start, ast.PERCENT_ASSIGN)
		}
		return l.single(start, ast.ILLEGAL)
	case '=':
		switch l.peekChar() {
		case '=':
			return l.double(start, ast.EQ)
		case '>':
			return l.double(start, ast.FAT_ARROW)
		}
		return l.single(start, ast.ASSIGN)
	case '!':
		if l.peekChar() == '=' {
			return l.double(start, ast.NEQ)
		}
		return l.single(start, ast.BANG)
	case '~':
		if l.peekChar() == '=' {
			return l.double(start, ast.TILDE_NEQ)
		}
		return l.single(start, ast.ILLEGAL)
	case '<':
		if l.peekChar() == '=' {
			return l.double(start, ast.LTE)
		}
		return l.single(start, ast.LT)
	case '>':
		if l.peekChar() == '=' {
			return l.double(start, ast.GTE)
		}
		return l.single(start, ast.GT)
	case '.':
		if l.peekChar() != '.' {
			return l.single(start, ast.ILLEGAL)
		}
		l.readChar()
		if l.peekChar() == '=' {
			l.readChar()
			return l.single(start, ast.CONCAT_ASSIGN)
		}
		return l.single(start, ast.CONCAT)
	}

	// ── Identifiers, keywords and numbers ───────────────────────────────────
	switch {
	case l.ch == '@' || isLetter(l.ch):
		return l.readIdentifier(start)
	case isDigit(l.ch):
		return l.readNumber(start)
	}
	return l.single(start, ast.ILLEGAL)
}

// unaryPosition reports whether the operator under the cursor is a prefix
// operator: something follows it directly, and it either starts an operand
// after whitespace or follows a token that cannot end an operand. After a
// literal or a list on the same line there is no callee to take an argument,
// so the operator is binary even when spaced.
func (l *Lexer) unaryPosition(prefix bool) bool {
	switch l.peekChar() {
	case 0, ' ', '\t', '\r', '\n':
		return false
	}
	if !l.firstOnLine {
		switch l.prev {
		case ast.DIGIT, ast.STRING, ast.RBRACE:
			return false
		}
	}
	if prefix {
		return true
	}
	switch l.prev {
	case ast.IDENT, ast.DIGIT, ast.STRING, ast.RPAREN, ast.RBRACE, ast.BANG:
		return false
	}
	return true
}

// single consumes the character under the cursor and returns a token of type
// tt whose literal spans from start to the cursor.
func (l *Lexer) single(start ast.Pos, tt ast.TokenType) ast.Token {
	l.readChar()
	return l.tokenFrom(start, tt)
}

// double consumes two characters.
func (l *Lexer) double(start ast.Pos, tt ast.TokenType) ast.Token {
	l.readChar()
	return l.single(start, tt)
}

func (l *Lexer) tokenFrom(start ast.Pos, tt ast.TokenType) ast.Token {
	end := l.here().Start
	return ast.Token{
		Type:    tt,
		Literal: l.input[start.Offset:end.Offset],
		Span:    ast.Span{Start: start, End: end},
	}
}

// readComment scans `--` up to, but not including, the line terminator.
// A comment on the last line needs no terminator.
func (l *Lexer) readComment(start ast.Pos) ast.Token {
	for l.ch != '\n' && !(l.ch == 0 && l.pos >= len(l.input)) {
		l.readChar()
	}
	tok := l.tokenFrom(start, ast.COMMENT)
	// A trailing \r belongs to the line terminator.
	if n := len(tok.Literal); n > 0 && tok.Literal[n-1] == '\r' {
		tok.Literal = tok.Literal[:n-1]
	}
	return tok
}

// readIdentifier scans an identifier or keyword: an optional @ or @@ prefix
// followed by [A-Za-z_][A-Za-z0-9_]*. A bare @ or @@ is an identifier too.
// `or` and `and` directly followed by a single `=` become OR_ASSIGN and
// AND_ASSIGN.
func (l *Lexer) readIdentifier(start ast.Pos) ast.Token {
	for i := 0; i < 2 && l.ch == '@'; i++ {
		l.readChar()
	}
	if isLetter(l.ch) {
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
	}

	tok := l.tokenFrom(start, ast.IDENT)
	tok.Type = ast.LookupIdent(tok.Literal)

	if (tok.Type == ast.OR || tok.Type == ast.AND) && l.ch == '=' && l.peekChar() != '=' && l.peekChar() != '>' {
		tt := ast.OR_ASSIGN
		if tok.Type == ast.AND {
			tt = ast.AND_ASSIGN
		}
		return l.single(start, tt)
	}
	return tok
}

// readNumber scans a decimal literal: \d+(\.\d+)?
// A '.' that is not followed by a digit is left for the next token.
func (l *Lexer) readNumber(start ast.Pos) ast.Token {
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // consume '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.tokenFrom(start, ast.DIGIT)
}

// readString scans a single- or double-quoted string literal. Strings may span
// lines; a backslash skips the character after it. The literal keeps the
// quotes and the escapes exactly as written.
//
// If the closing quote is never found, an ILLEGAL token is returned holding
// everything from the opening quote to the end of input.
func (l *Lexer) readString(start ast.Pos) ast.Token {
	quote := l.ch
	l.readChar() // skip opening quote
	for {
		switch {
		case l.ch == 0 && l.pos >= len(l.input):
			return l.tokenFrom(start, ast.ILLEGAL)
		case l.ch == '\\':
			l.readChar()
			if l.ch != 0 || l.pos < len(l.input) {
				l.readChar()
			}
		case l.ch == quote:
			return l.single(start, ast.STRING)
		default:
			l.readChar()
		}
	}
}

// ── Internal helpers ──────────────────────────────────────────────────────────

// readChar advances the lexer by one character.
// When the input is exhausted l.ch is set to 0 (the null byte sentinel for EOF).
// Line and column track the character now under the cursor.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	if l.pos > len(l.input) {
		l.pos = len(l.input)
	}
	l.readPos++
}

// peekChar returns the next character without consuming it.
// Returns 0 when the end of input has been reached.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// skipSpaces advances past spaces, tabs and carriage returns inside a line and
// reports whether any were skipped.
func (l *Lexer) skipSpaces() bool {
	skipped := false
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
		skipped = true
	}
	return skipped
}

// here returns a zero-width span at the cursor.
func (l *Lexer) here() ast.Span {
	p := ast.Pos{Offset: l.pos, Line: l.line, Col: l.col}
	return ast.Span{Start: p, End: p}
}

// isLetter reports whether b may start an identifier.
func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		b == '_'
}

// isDigit reports whether b is an ASCII decimal digit (0–9).
func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
