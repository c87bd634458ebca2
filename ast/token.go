// Package ast defines the token model and the syntax tree produced by the
// moon parser.
//
// Tokens are the smallest meaningful units of a moon source file. Every token
// carries its type, the exact literal text it was scanned from, its source
// span and whether it was written directly against the previous token.
// Positions are 1-based for line and column, 0-based for the byte offset.
package ast

import "fmt"

// TokenType identifies the category of a scanned token.
type TokenType int

const (
	// ── Special ────────────────────────────────────────────────────────────────

	// ILLEGAL is the error token: a character or sequence the lexer could not
	// recognise, such as an unterminated string literal.
	ILLEGAL TokenType = iota
	// EOF marks the end of the input stream.
	EOF
	// COMMENT is a `-- …` line comment. The parser treats it as non-significant.
	COMMENT

	// ── Layout (synthetic) ─────────────────────────────────────────────────────

	// INDENT opens an indented block (block-enter).
	INDENT
	// DEDENT closes an indented block (block-exit).
	DEDENT
	// SOFT_DEDENT is emitted when a line dedents to a column that lies between
	// two open levels. It opens a block that has no INDENT of its own.
	SOFT_DEDENT
	// NEWLINE separates two statements written at the same indentation.
	NEWLINE
	// UNARY_MINUS is a `-` in prefix position: `f -x`, `(-x)`.
	UNARY_MINUS
	// UNARY_ITER is a `*` in prefix position: `f *list`.
	UNARY_ITER

	// ── Literals ───────────────────────────────────────────────────────────────

	// IDENT is an identifier, optionally prefixed with @ or @@.
	IDENT
	// DIGIT is a decimal literal: 42, 3.14
	DIGIT
	// STRING is a single- or double-quoted string literal. Literal keeps the quotes.
	STRING

	// ── Keywords ───────────────────────────────────────────────────────────────

	EXPORT
	RETURN
	IF
	UNLESS
	THEN
	OR
	AND
	NOT
	// ELSE and ELSEIF are reserved. No grammar rule accepts them.
	ELSE
	ELSEIF

	// ── Assignment operators ───────────────────────────────────────────────────

	ASSIGN         // =
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=
	CONCAT_ASSIGN  // ..=
	OR_ASSIGN      // or=
	AND_ASSIGN     // and=

	// ── Binary operators ───────────────────────────────────────────────────────

	EQ        // ==
	NEQ       // !=
	TILDE_NEQ // ~=
	LTE       // <=
	GTE       // >=
	LT        // <
	GT        // >
	CONCAT    // ..
	PLUS      // +
	MINUS     // -
	ASTERISK  // *
	SLASH     // /
	CARET     // ^

	// ── Delimiters ─────────────────────────────────────────────────────────────

	ARROW     // ->
	FAT_ARROW // =>
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	BANG      // !
)

var tokenNames = map[TokenType]string{
	ILLEGAL:        "error",
	EOF:            "end of input",
	COMMENT:        "comment",
	INDENT:         "block-enter",
	DEDENT:         "block-exit",
	SOFT_DEDENT:    "soft-block-exit",
	NEWLINE:        "newline",
	UNARY_MINUS:    "unary -",
	UNARY_ITER:     "unary *",
	IDENT:          "identifier",
	DIGIT:          "digit literal",
	STRING:         "string literal",
	EXPORT:         "export",
	RETURN:         "return",
	IF:             "if",
	UNLESS:         "unless",
	THEN:           "then",
	OR:             "or",
	AND:            "and",
	NOT:            "not",
	ELSE:           "else",
	ELSEIF:         "elseif",
	ASSIGN:         "=",
	PLUS_ASSIGN:    "+=",
	MINUS_ASSIGN:   "-=",
	STAR_ASSIGN:    "*=",
	SLASH_ASSIGN:   "/=",
	PERCENT_ASSIGN: "%=",
	CONCAT_ASSIGN:  "..=",
	OR_ASSIGN:      "or=",
	AND_ASSIGN:     "and=",
	EQ:             "==",
	NEQ:            "!=",
	TILDE_NEQ:      "~=",
	LTE:            "<=",
	GTE:            ">=",
	LT:             "<",
	GT:             ">",
	CONCAT:         "..",
	PLUS:           "+",
	MINUS:          "-",
	ASTERISK:       "*",
	SLASH:          "/",
	CARET:          "^",
	ARROW:          "->",
	FAT_ARROW:      "=>",
	LPAREN:         "(",
	RPAREN:         ")",
	LBRACE:         "{",
	RBRACE:         "}",
	COMMA:          ",",
	BANG:           "!",
}

// String returns the name used for tt in diagnostics, e.g. "identifier" or "->".
func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// IsLayout reports whether tt is one of the synthetic layout tokens.
func (tt TokenType) IsLayout() bool {
	switch tt {
	case INDENT, DEDENT, SOFT_DEDENT, NEWLINE:
		return true
	}
	return false
}

// keywords maps the literal text of every reserved word to its TokenType.
// The lexer consults this map when it finishes scanning an identifier.
var keywords = map[string]TokenType{
	"export": EXPORT,
	"return": RETURN,
	"if":     IF,
	"unless": UNLESS,
	"then":   THEN,
	"or":     OR,
	"and":    AND,
	"not":    NOT,
	"else":   ELSE,
	"elseif": ELSEIF,
}

// LookupIdent checks whether ident is a reserved word and returns the
// corresponding TokenType. If ident is not a keyword, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}

// Pos is a location in source text.
type Pos struct {
	Offset int // 0-based byte offset
	Line   int // 1-based line
	Col    int // 1-based column (bytes)
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Span is the half-open source range [Start, End).
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string { return fmt.Sprintf("%s-%s", s.Start, s.End) }

// Join returns the smallest span covering both s and o.
func (s Span) Join(o Span) Span {
	out := s
	if o.Start.Offset < out.Start.Offset {
		out.Start = o.Start
	}
	if o.End.Offset > out.End.Offset {
		out.End = o.End
	}
	return out
}

// Token is a single lexical unit produced by the lexer.
//
// Fields:
//   - Type     — the category of this token (see TokenType constants)
//   - Literal  — the exact source text that was scanned ("" for layout tokens)
//   - Span     — source range of the literal
//   - Adjacent — true when no whitespace separates this token from the
//     previous significant token on the same line
type Token struct {
	Type     TokenType
	Literal  string
	Span     Span
	Adjacent bool
}

// String returns a human-readable representation of the token, useful for
// debugging and error messages.
func (t Token) String() string {
	if t.Literal == "" {
		return t.Type.String()
	}
	return t.Literal
}
