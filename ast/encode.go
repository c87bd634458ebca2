package ast

// ToMap converts node into nested maps and slices suitable for handing to a
// generic encoder such as encoding/json or gopkg.in/yaml.v3. Each node becomes
//
//	{"kind": ..., "span": {"start": "l:c", "end": "l:c"}, "fields": {...}}
//
// Field values are nested node maps, slices of node maps or leaf strings.
func ToMap(node Node) map[string]any {
	if node == nil {
		return nil
	}
	sp := node.Span()
	fields := make(map[string]any)
	for _, f := range node.Fields() {
		switch {
		case f.IsList:
			list := make([]any, len(f.List))
			for i, child := range f.List {
				list[i] = ToMap(child)
			}
			fields[f.Name] = list
		case f.Node != nil:
			fields[f.Name] = ToMap(f.Node)
		default:
			fields[f.Name] = f.Text
		}
	}
	return map[string]any{
		"kind": string(node.Kind()),
		"span": map[string]any{
			"start": sp.Start.String(),
			"end":   sp.End.String(),
		},
		"fields": fields,
	}
}
