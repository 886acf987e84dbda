package atrules

import (
	"strings"

	"atmerge/css"
)

// merge coalesces sibling blocks of the same kind with equal normalized
// conditions into the first of them. Children keep document order. Every
// surviving block is merged recursively afterwards, including blocks which
// received children from their duplicates.
func (p *pass) merge(scope css.NodeID) {
	first := make(map[string]css.NodeID)
	var kept []css.NodeID

	for m := range Matches(p.sheet, scope, p.match) {
		kind := p.sheet.Name(m)
		query, err := p.algebra.Normalize(kind, p.sheet.Params(m))
		if err != nil {
			p.report(m, err, "invalid %q", p.sheet.Params(m))
			p.sheet.Remove(m)
			continue
		}

		key := strings.ToLower(kind) + " " + query
		if target, ok := first[key]; ok {
			p.sheet.Append(target, p.sheet.Children(m)...)
			p.sheet.Remove(m)
			continue
		}
		first[key] = m
		p.sheet.SetParams(m, query)
		kept = append(kept, m)
	}

	for _, m := range kept {
		p.merge(m)
	}
}
