package ast

// Inspect traverses the tree rooted at node in pre-order, calling fn for each
// node. If fn returns false, Inspect does not descend into that node's
// children. Children are visited in field order.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, f := range node.Fields() {
		switch {
		case f.IsList:
			for _, child := range f.List {
				Inspect(child, fn)
			}
		case f.Node != nil:
			Inspect(f.Node, fn)
		}
	}
}

// Children returns the direct child nodes of node in field order.
func Children(node Node) []Node {
	var out []Node
	for _, f := range node.Fields() {
		switch {
		case f.IsList:
			out = append(out, f.List...)
		case f.Node != nil:
			out = append(out, f.Node)
		}
	}
	return out
}
