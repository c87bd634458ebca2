// Package printer re-serialises a moon syntax tree as source text.
//
// The output is canonical rather than faithful: statements go one per line,
// blocks are indented by a fixed unit, binary operators are surrounded by
// single spaces and comments are gone. Every call form, parenthesised group
// and block is kept, so parsing the output yields a tree that is structurally
// equal (see ast.SExpr) to the one printed.
package printer

import (
	"io"
	"strings"

	"github.com/metaphox/moon-lang/ast"
	"github.com/metaphox/moon-lang/parser"
)

// DefaultIndent is one level of block indentation.
const DefaultIndent = "    "

// Options control the output layout.
type Options struct {
	// Indent is written once per block level. Empty selects DefaultIndent.
	Indent string
}

// Format renders node and returns the text. A Program always ends with a
// single newline.
func Format(node ast.Node, opts Options) string {
	indent := opts.Indent
	if indent == "" {
		indent = DefaultIndent
	}
	p := &printer{indent: indent}
	p.node(node)
	if _, ok := node.(*ast.Program); ok && p.b.Len() > 0 {
		p.b.WriteByte('\n')
	}
	return p.b.String()
}

// Fprint writes the rendering of node to w.
func Fprint(w io.Writer, node ast.Node, opts Options) error {
	_, err := io.WriteString(w, Format(node, opts))
	return err
}

// Pretty parses src and returns it formatted.
func Pretty(src string, opts Options) (string, error) {
	prog, err := parser.ParseString(src)
	if err != nil {
		return "", err
	}
	return Format(prog, opts), nil
}

/* ---------- small writer with deferred line breaks ---------- */

// printer buffers output. A line break is never written directly: newline
// records that the next text starts on a fresh line at the given depth, so a
// block can end its last line without knowing what follows it.
type printer struct {
	b      strings.Builder
	indent string
	depth  int

	breakPending bool
	breakDepth   int
}

func (p *printer) write(s string) {
	if p.breakPending {
		p.b.WriteByte('\n')
		for i := 0; i < p.breakDepth; i++ {
			p.b.WriteString(p.indent)
		}
		p.breakPending = false
	}
	p.b.WriteString(s)
}

func (p *printer) newline(depth int) {
	p.breakPending = true
	p.breakDepth = depth
}

/* ---------- nodes ---------- */

func (p *printer) node(n ast.Node) {
	switch n := n.(type) {
	case *ast.Program:
		for i, s := range n.Statements {
			if i > 0 {
				p.newline(0)
			}
			p.node(s)
		}

	case *ast.Block:
		p.depth++
		for _, s := range n.Statements {
			p.newline(p.depth)
			p.node(s)
		}
		p.depth--
		p.newline(p.depth)

	case *ast.Assignment:
		if n.Export != nil {
			p.write("export ")
		}
		for i, t := range n.Targets {
			if i > 0 {
				p.write(", ")
			}
			p.node(t)
		}
		p.write(" " + n.Operator.Literal + " ")
		p.list(n.Values)

	case *ast.ReturnStatement:
		p.write("return")
		if !n.Arguments.Parenthesized() {
			p.write(" ")
		}
		p.node(n.Arguments)

	case *ast.Identifier:
		p.write(n.Name)
	case *ast.DigitLiteral:
		p.write(n.Token.Literal)
	case *ast.StringLiteral:
		p.write(n.Token.Literal)

	case *ast.ListExpr:
		p.write("{")
		p.list(n.Elements)
		p.write("}")

	case *ast.ParenExpr:
		p.write("(")
		p.node(n.Expression)
		p.write(")")

	case *ast.UnaryExpr:
		switch n.Operator.Type {
		case ast.UNARY_MINUS:
			p.write("-")
		case ast.UNARY_ITER:
			p.write("*")
		default:
			p.write("not ")
		}
		p.node(n.Operand)

	case *ast.BinaryExpr:
		p.node(n.Lhs)
		p.write(" " + n.Operator.Literal + " ")
		p.node(n.Rhs)

	case *ast.CallExpr:
		p.node(n.Function)
		switch args := n.Arguments.(type) {
		case nil:
			p.write("!")
		case *ast.StringLiteral:
			p.node(args)
		case *ast.ArgumentList:
			if !args.Parenthesized() {
				p.write(" ")
			}
			p.node(args)
		}

	case *ast.ArgumentList:
		if n.Parenthesized() {
			p.write("(")
			p.list(n.Args)
			p.write(")")
		} else {
			p.list(n.Args)
		}

	case *ast.FunctionExpr:
		if n.Params != nil {
			p.node(n.Params)
			p.write(" ")
		}
		p.write(n.Arrow.Literal)
		if _, ok := n.Body.(*ast.Block); !ok {
			p.write(" ")
		}
		p.node(n.Body)

	case *ast.ParameterList:
		p.write("(")
		for i, param := range n.Params {
			if i > 0 {
				p.write(", ")
			}
			p.node(param)
		}
		p.write(")")

	case *ast.Parameter:
		p.node(n.Name)
		if n.Default != nil {
			p.write(" = ")
			p.node(n.Default)
		}

	case *ast.ConditionalExpr:
		p.write(n.Keyword.Literal + " ")
		p.node(n.Condition)
		_, isBlock := n.Consequence.(*ast.Block)
		if n.Then != nil || !isBlock {
			p.write(" then")
		}
		if !isBlock {
			p.write(" ")
		}
		p.node(n.Consequence)
	}
}

func (p *printer) list(exprs []ast.Expression) {
	for i, e := range exprs {
		if i > 0 {
			p.write(", ")
		}
		p.node(e)
	}
}
