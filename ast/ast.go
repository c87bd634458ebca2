// Package ast defines the token and syntax tree node types for moon.
//
// Every source construct has a corresponding node type. The hierarchy is:
//
//	Node (interface)
//	  Block, ParameterList, Parameter, ArgumentList, Program
//	  Statement (interface)
//	    Assignment, ReturnStatement
//	    Expression (interface) — every expression is also a statement
//	      Identifier, DigitLiteral, StringLiteral, ListExpr, ParenExpr
//	      UnaryExpr, BinaryExpr, CallExpr, FunctionExpr, ConditionalExpr
//
// Each node exposes its variant tag (Kind), its ordered named fields (Fields)
// and the source span it was parsed from (Span). Nodes are built once by the
// parser and never mutated afterwards.
package ast

import (
	"fmt"
	"strings"
)

// Kind is the variant tag of a node. The values use tree-sitter style
// snake_case node names.
type Kind string

const (
	KindProgram         Kind = "program"
	KindAssignment      Kind = "assignment"
	KindCallExpr        Kind = "call_expr"
	KindBinaryExpr      Kind = "binary_expr"
	KindUnaryExpr       Kind = "unary_expr"
	KindFunctionExpr    Kind = "function_expr"
	KindParameterList   Kind = "parameter_list"
	KindParameter       Kind = "parameter"
	KindConditionalExpr Kind = "conditional_expr"
	KindBlock           Kind = "block"
	KindReturnStatement Kind = "return_statement"
	KindIdentifier      Kind = "identifier"
	KindDigitLiteral    Kind = "digit_literal"
	KindStringLiteral   Kind = "string_literal"
	KindArgumentList    Kind = "argument_list"
	KindListExpr        Kind = "list_expr"
	KindParenExpr       Kind = "parenthesized_expr"
)

// ── Interfaces ────────────────────────────────────────────────────────────────

// Node is the root interface for every element in the tree.
type Node interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Span returns the source range covered by the node's tokens.
	Span() Span
	// Fields returns the node's named child slots in source order.
	// Optional slots that are empty are omitted.
	Fields() []Field
	// String returns a compact, human-readable representation of the node.
	// It is intended for debugging and test output, not pretty-printing.
	String() string
}

// Statement is a Node that may appear in a program or block.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that evaluates to a value. An expression in statement
// position is evaluated and its value discarded, so every Expression is also a
// Statement.
type Expression interface {
	Statement
	expressionNode()
}

// Arguments is what a CallExpr carries: a string literal for the immediate
// string form (f"x") or an ArgumentList.
type Arguments interface {
	Node
	argumentsNode()
}

// ── Fields ────────────────────────────────────────────────────────────────────

// Field is one named child slot of a node. Exactly one of Node, List (when
// IsList) or Text is meaningful.
type Field struct {
	Name   string
	Node   Node
	List   []Node
	Text   string
	IsList bool
}

// IsText reports whether the field holds leaf token text.
func (f Field) IsText() bool { return f.Node == nil && !f.IsList }

func nodeField(name string, n Node) Field  { return Field{Name: name, Node: n} }
func textField(name, text string) Field    { return Field{Name: name, Text: text} }
func listField(name string, l []Node) Field { return Field{Name: name, List: l, IsList: true} }

func toNodes[T Node](xs []T) []Node {
	out := make([]Node, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func joinStrings[T Node](xs []T, sep string) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return strings.Join(parts, sep)
}

// ── Top-level program ─────────────────────────────────────────────────────────

// Program is the root node produced by the parser.
type Program struct {
	Statements []Statement
}

func (p *Program) Kind() Kind { return KindProgram }
func (p *Program) Span() Span {
	if len(p.Statements) == 0 {
		return Span{}
	}
	return p.Statements[0].Span().Join(p.Statements[len(p.Statements)-1].Span())
}
func (p *Program) Fields() []Field {
	return []Field{listField("statements", toNodes(p.Statements))}
}

// String returns all statements one per line, useful for snapshot testing.
func (p *Program) String() string {
	var out strings.Builder
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

// ── Statements ────────────────────────────────────────────────────────────────

// Assignment binds one or more values to one or more names.
//
//	x = 1
//	export a, b = f!
//	count += 1
//
// The number of targets and values is whatever was written; the parser does
// not require them to match.
type Assignment struct {
	Export   *Token // the 'export' token, nil when absent
	Targets  []*Identifier
	Operator Token // =, +=, -=, *=, /=, %=, ..=, or=, and=
	Values   []Expression
}

func (s *Assignment) statementNode() {}
func (s *Assignment) Kind() Kind      { return KindAssignment }
func (s *Assignment) Span() Span {
	start := s.Targets[0].Span()
	if s.Export != nil {
		start = s.Export.Span
	}
	return start.Join(s.Values[len(s.Values)-1].Span())
}
func (s *Assignment) Fields() []Field {
	var fs []Field
	if s.Export != nil {
		fs = append(fs, textField("export", s.Export.Literal))
	}
	return append(fs,
		listField("variable", toNodes(s.Targets)),
		textField("assignment", s.Operator.Literal),
		listField("value", toNodes(s.Values)),
	)
}
func (s *Assignment) String() string {
	prefix := ""
	if s.Export != nil {
		prefix = "export "
	}
	return fmt.Sprintf("%s%s %s %s", prefix, joinStrings(s.Targets, ", "),
		s.Operator.Literal, joinStrings(s.Values, ", "))
}

// ReturnStatement returns one or more values: return a, b
type ReturnStatement struct {
	Token     Token // the 'return' token
	Arguments *ArgumentList
}

func (s *ReturnStatement) statementNode() {}
func (s *ReturnStatement) Kind() Kind      { return KindReturnStatement }
func (s *ReturnStatement) Span() Span      { return s.Token.Span.Join(s.Arguments.Span()) }
func (s *ReturnStatement) Fields() []Field {
	return []Field{nodeField("arguments", s.Arguments)}
}
func (s *ReturnStatement) String() string { return "return " + s.Arguments.String() }

// ── Blocks and lists ──────────────────────────────────────────────────────────

// Block is an indented, non-empty sequence of statements.
type Block struct {
	Open       Token // INDENT or SOFT_DEDENT
	Statements []Statement
	Close      Token // DEDENT
}

func (b *Block) Kind() Kind { return KindBlock }
func (b *Block) Span() Span {
	return b.Open.Span.Join(b.Statements[len(b.Statements)-1].Span())
}
func (b *Block) Fields() []Field {
	return []Field{listField("statements", toNodes(b.Statements))}
}
func (b *Block) String() string { return "{ " + joinStrings(b.Statements, "; ") + " }" }

// ArgumentList is the argument list of a call or return statement, either
// parenthesised as in f(a, b) or bare as in f a, b.
type ArgumentList struct {
	LParen *Token // nil for the bare form
	RParen *Token
	Args   []Expression
}

func (a *ArgumentList) argumentsNode() {}

// Parenthesized reports whether the list was written as (a, b).
func (a *ArgumentList) Parenthesized() bool { return a.LParen != nil }

func (a *ArgumentList) Kind() Kind { return KindArgumentList }
func (a *ArgumentList) Span() Span {
	if a.LParen != nil {
		return a.LParen.Span.Join(a.RParen.Span)
	}
	return a.Args[0].Span().Join(a.Args[len(a.Args)-1].Span())
}
func (a *ArgumentList) Fields() []Field {
	var fs []Field
	if a.LParen != nil {
		fs = append(fs, textField("open", a.LParen.Literal))
	}
	return append(fs, listField("arguments", toNodes(a.Args)))
}
func (a *ArgumentList) String() string { return "[" + joinStrings(a.Args, ", ") + "]" }

// ParameterList is the parenthesised parameter list of a function literal.
type ParameterList struct {
	LParen Token
	Params []*Parameter
	RParen Token
}

func (l *ParameterList) Kind() Kind { return KindParameterList }
func (l *ParameterList) Span() Span { return l.LParen.Span.Join(l.RParen.Span) }
func (l *ParameterList) Fields() []Field {
	return []Field{listField("parameter", toNodes(l.Params))}
}
func (l *ParameterList) String() string { return "(" + joinStrings(l.Params, ", ") + ")" }

// Parameter is one function parameter with an optional default: name = expr
type Parameter struct {
	Name    *Identifier
	Default Expression // nil when absent
}

func (p *Parameter) Kind() Kind { return KindParameter }
func (p *Parameter) Span() Span {
	if p.Default != nil {
		return p.Name.Span().Join(p.Default.Span())
	}
	return p.Name.Span()
}
func (p *Parameter) Fields() []Field {
	fs := []Field{nodeField("name", p.Name)}
	if p.Default != nil {
		fs = append(fs, nodeField("default", p.Default))
	}
	return fs
}
func (p *Parameter) String() string {
	if p.Default != nil {
		return p.Name.Name + "=" + p.Default.String()
	}
	return p.Name.Name
}

// ── Expressions ───────────────────────────────────────────────────────────────

// Identifier is a reference to a name, including @field and @@class forms.
type Identifier struct {
	Token Token
	Name  string
}

func (e *Identifier) statementNode()  {}
func (e *Identifier) expressionNode() {}
func (e *Identifier) Kind() Kind      { return KindIdentifier }
func (e *Identifier) Span() Span      { return e.Token.Span }
func (e *Identifier) Fields() []Field { return []Field{textField("name", e.Name)} }
func (e *Identifier) String() string  { return e.Name }

// DigitLiteral is a decimal number literal. Only the source text is kept;
// the grammar puts no bound on the number of digits.
type DigitLiteral struct {
	Token Token
}

func (e *DigitLiteral) statementNode()  {}
func (e *DigitLiteral) expressionNode() {}
func (e *DigitLiteral) Kind() Kind      { return KindDigitLiteral }
func (e *DigitLiteral) Span() Span      { return e.Token.Span }
func (e *DigitLiteral) Fields() []Field { return []Field{textField("value", e.Token.Literal)} }
func (e *DigitLiteral) String() string  { return e.Token.Literal }

// StringLiteral is a quoted string. Value is the text between the quotes with
// escape sequences left untouched; Token.Literal is the raw source.
type StringLiteral struct {
	Token Token
	Value string
}

func (e *StringLiteral) statementNode()  {}
func (e *StringLiteral) expressionNode() {}
func (e *StringLiteral) argumentsNode()  {}
func (e *StringLiteral) Kind() Kind      { return KindStringLiteral }
func (e *StringLiteral) Span() Span      { return e.Token.Span }
func (e *StringLiteral) Fields() []Field { return []Field{textField("value", e.Token.Literal)} }
func (e *StringLiteral) String() string  { return e.Token.Literal }

// ListExpr is a brace-delimited list: {1, 2, 3}
type ListExpr struct {
	LBrace   Token
	Elements []Expression
	RBrace   Token
}

func (e *ListExpr) statementNode()  {}
func (e *ListExpr) expressionNode() {}
func (e *ListExpr) Kind() Kind      { return KindListExpr }
func (e *ListExpr) Span() Span      { return e.LBrace.Span.Join(e.RBrace.Span) }
func (e *ListExpr) Fields() []Field {
	return []Field{listField("elements", toNodes(e.Elements))}
}
func (e *ListExpr) String() string { return "{" + joinStrings(e.Elements, ", ") + "}" }

// ParenExpr is an explicitly parenthesised expression: (a + b)
type ParenExpr struct {
	LParen     Token
	Expression Expression
	RParen     Token
}

func (e *ParenExpr) statementNode()  {}
func (e *ParenExpr) expressionNode() {}
func (e *ParenExpr) Kind() Kind      { return KindParenExpr }
func (e *ParenExpr) Span() Span      { return e.LParen.Span.Join(e.RParen.Span) }
func (e *ParenExpr) Fields() []Field {
	return []Field{nodeField("expression", e.Expression)}
}
func (e *ParenExpr) String() string { return "(" + e.Expression.String() + ")" }

// UnaryExpr is a prefix expression: -x, *list, not done
type UnaryExpr struct {
	Operator Token // UNARY_MINUS, UNARY_ITER or NOT
	Operand  Expression
}

func (e *UnaryExpr) statementNode()  {}
func (e *UnaryExpr) expressionNode() {}
func (e *UnaryExpr) Kind() Kind      { return KindUnaryExpr }
func (e *UnaryExpr) Span() Span      { return e.Operator.Span.Join(e.Operand.Span()) }
func (e *UnaryExpr) Fields() []Field {
	return []Field{textField("operator", e.Operator.Literal), nodeField("operand", e.Operand)}
}
func (e *UnaryExpr) String() string {
	return fmt.Sprintf("(%s %s)", e.Operator.Literal, e.Operand.String())
}

// BinaryExpr is an infix expression: lhs op rhs.
type BinaryExpr struct {
	Lhs      Expression
	Operator Token
	Rhs      Expression
}

func (e *BinaryExpr) statementNode()  {}
func (e *BinaryExpr) expressionNode() {}
func (e *BinaryExpr) Kind() Kind      { return KindBinaryExpr }
func (e *BinaryExpr) Span() Span      { return e.Lhs.Span().Join(e.Rhs.Span()) }
func (e *BinaryExpr) Fields() []Field {
	return []Field{
		nodeField("lhs", e.Lhs),
		textField("operator", e.Operator.Literal),
		nodeField("rhs", e.Rhs),
	}
}
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Lhs.String(), e.Operator.Literal, e.Rhs.String())
}

// CallExpr is a function call in one of its surface forms:
//
//	f!          → Bang set, Arguments nil
//	f"text"     → Arguments is a *StringLiteral
//	f(a, b)     → Arguments is a parenthesised *ArgumentList
//	f a, b      → Arguments is a bare *ArgumentList
type CallExpr struct {
	Function  Expression
	Arguments Arguments // nil for f!
	Bang      *Token
}

func (e *CallExpr) statementNode()  {}
func (e *CallExpr) expressionNode() {}
func (e *CallExpr) Kind() Kind      { return KindCallExpr }
func (e *CallExpr) Span() Span {
	if e.Bang != nil {
		return e.Function.Span().Join(e.Bang.Span)
	}
	return e.Function.Span().Join(e.Arguments.Span())
}
func (e *CallExpr) Fields() []Field {
	fs := []Field{nodeField("function", e.Function)}
	if e.Arguments != nil {
		fs = append(fs, nodeField("arguments", e.Arguments))
	}
	if e.Bang != nil {
		fs = append(fs, textField("bang", e.Bang.Literal))
	}
	return fs
}
func (e *CallExpr) String() string {
	switch args := e.Arguments.(type) {
	case *ArgumentList:
		return fmt.Sprintf("%s(%s)", e.Function.String(), joinStrings(args.Args, ", "))
	case *StringLiteral:
		return fmt.Sprintf("%s(%s)", e.Function.String(), args.String())
	}
	return e.Function.String() + "()"
}

// FunctionExpr is a function literal.
//
//	(a, b = 1) -> a + b
//	=>
//	    @count += 1
//
// Body is either a *Block or an Expression.
type FunctionExpr struct {
	Params *ParameterList // nil when the literal has no parameter list
	Arrow  Token          // -> or =>
	Body   Node
}

func (e *FunctionExpr) statementNode()  {}
func (e *FunctionExpr) expressionNode() {}
func (e *FunctionExpr) Kind() Kind      { return KindFunctionExpr }
func (e *FunctionExpr) Span() Span {
	start := e.Arrow.Span
	if e.Params != nil {
		start = e.Params.Span()
	}
	return start.Join(e.Body.Span())
}
func (e *FunctionExpr) Fields() []Field {
	var fs []Field
	if e.Params != nil {
		fs = append(fs, nodeField("parameters", e.Params))
	}
	return append(fs, textField("arrow", e.Arrow.Literal), nodeField("body", e.Body))
}
func (e *FunctionExpr) String() string {
	params := ""
	if e.Params != nil {
		params = e.Params.String() + " "
	}
	return fmt.Sprintf("%s%s %s", params, e.Arrow.Literal, e.Body.String())
}

// ConditionalExpr is an if/unless with a single consequence and no else.
//
//	if x then y
//	unless done
//	    retry!
//
// Consequence is either a Statement (the `then` form) or a *Block. The node is
// an expression wherever it appears, including statement position.
type ConditionalExpr struct {
	Keyword     Token // if or unless
	Condition   Expression
	Then        *Token // the 'then' token, nil when absent
	Consequence Node
}

func (e *ConditionalExpr) statementNode()  {}
func (e *ConditionalExpr) expressionNode() {}
func (e *ConditionalExpr) Kind() Kind      { return KindConditionalExpr }
func (e *ConditionalExpr) Span() Span      { return e.Keyword.Span.Join(e.Consequence.Span()) }
func (e *ConditionalExpr) Fields() []Field {
	return []Field{
		textField("keyword", e.Keyword.Literal),
		nodeField("condition", e.Condition),
		nodeField("consequence", e.Consequence),
	}
}
func (e *ConditionalExpr) String() string {
	if _, ok := e.Consequence.(*Block); ok {
		return fmt.Sprintf("%s %s %s", e.Keyword.Literal, e.Condition.String(), e.Consequence.String())
	}
	return fmt.Sprintf("%s %s then %s", e.Keyword.Literal, e.Condition.String(), e.Consequence.String())
}
