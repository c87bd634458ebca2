package ast

import (
	"strconv"
	"strings"
)

// SExpr renders node as a tree-sitter style S-expression without spans:
//
//	(binary_expr lhs: (identifier name: "a") operator: "+" rhs: (digit_literal value: "1"))
//
// Two trees are structurally equal exactly when their SExpr strings are equal,
// which makes it the comparison used by round-trip tests.
func SExpr(node Node) string {
	var b strings.Builder
	writeSExpr(&b, node)
	return b.String()
}

func writeSExpr(b *strings.Builder, node Node) {
	if node == nil {
		b.WriteString("nil")
		return
	}
	b.WriteByte('(')
	b.WriteString(string(node.Kind()))
	for _, f := range node.Fields() {
		b.WriteByte(' ')
		b.WriteString(f.Name)
		b.WriteString(": ")
		switch {
		case f.IsList:
			b.WriteByte('[')
			for i, child := range f.List {
				if i > 0 {
					b.WriteByte(' ')
				}
				writeSExpr(b, child)
			}
			b.WriteByte(']')
		case f.Node != nil:
			writeSExpr(b, f.Node)
		default:
			b.WriteString(strconv.Quote(f.Text))
		}
	}
	b.WriteByte(')')
}
