package css

import (
	"strconv"

	"atmerge/utils/debug"
)

// Dump returns readable tree of attached nodes. It exists solely for manual
// inspection during debugging and for debug reports.
func (s *Stylesheet) Dump() string {
	tw := debug.NewTreeWriter()
	s.Walk(func(id NodeID, depth int) bool {
		n := &s.nodes[id]
		switch n.typ {
		case NodeRoot:
			tw.Node(depth, "root", "", "children", strconv.Itoa(len(n.children)))
		case NodeAtRule:
			kind := "@" + n.name
			if !n.hasBlock {
				tw.Node(depth, kind, n.params, "id", strconv.Itoa(int(id)), "statement", "true")
				break
			}
			tw.Node(depth, kind, n.params, "id", strconv.Itoa(int(id)), "children", strconv.Itoa(len(n.children)))
		case NodeRule:
			tw.Node(depth, "rule", n.params, "id", strconv.Itoa(int(id)))
		case NodeDeclaration:
			tw.Node(depth, "decl", n.name+": "+n.params)
		case NodeComment:
			tw.Node(depth, "comment", n.params)
		}
		return true
	})
	return tw.String()
}
