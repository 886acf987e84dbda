package atrules

import (
	"slices"
	"strings"

	"atmerge/css"
	"atmerge/css/condition"
)

// flatten hoists conditional blocks nested in scope towards the root.
// Innermost blocks are handled first so each subtree is drained before its
// container is examined.
func (p *pass) flatten(scope css.NodeID) {
	root := p.sheet.Root()

	for m := range Matches(p.sheet, scope, p.match) {
		if p.hasAtRuleChild(m) {
			p.flatten(m)
		}

		// everything was hoisted out of m
		if p.sheet.ChildCount(m) == 0 {
			p.sheet.Remove(m)
			continue
		}

		if scope == root {
			continue
		}

		kind, scopeKind := p.sheet.Name(m), p.sheet.Name(scope)
		switch {
		case isMedia(kind) && !isMedia(scopeKind):
			p.invert(scope, m)

		case strings.EqualFold(kind, scopeKind):
			query, err := p.algebra.Join(kind, p.sheet.Params(scope), p.sheet.Params(m))
			if err == nil {
				query, err = p.algebra.Normalize(kind, query)
			}
			if err != nil {
				p.report(m, err, "invalid %q, child of %q", p.sheet.Params(m), p.sheet.Params(scope))
				break
			}
			hoisted := p.sheet.NewAtRule(kind, query, true)
			p.sheet.Append(hoisted, p.sheet.Children(m)...)
			p.sheet.Append(p.sheet.Parent(scope), hoisted)

		default:
			// unrelated kinds stay nested
			continue
		}
		p.sheet.Remove(m)
	}
}

// invert moves media block m out of non-media scope: a new media block at
// the root wraps copies of all conditional blocks enclosing m (outermost
// first) which in turn hold m's content.
func (p *pass) invert(scope, m css.NodeID) {
	media := p.sheet.NewAtRule(p.sheet.Name(m), p.sheet.Params(m), true)

	holder := media
	for _, a := range p.ancestors(scope) {
		c := p.sheet.Clone(a, css.WithoutChildren())
		p.sheet.Append(holder, c)
		holder = c
	}
	p.sheet.Append(holder, p.sheet.Children(m)...)
	p.sheet.Append(p.sheet.Root(), media)
}

// ancestors returns id and its ancestors below the root, outermost first.
func (p *pass) ancestors(id css.NodeID) []css.NodeID {
	var chain []css.NodeID
	for cur := id; cur != css.NoNode && cur != p.sheet.Root(); cur = p.sheet.Parent(cur) {
		chain = append(chain, cur)
	}
	slices.Reverse(chain)
	return chain
}

func (p *pass) hasAtRuleChild(id css.NodeID) bool {
	for i := range p.sheet.ChildCount(id) {
		if p.sheet.Type(p.sheet.Child(id, i)) == css.NodeAtRule {
			return true
		}
	}
	return false
}

func isMedia(kind string) bool {
	return strings.EqualFold(kind, condition.KindMedia)
}
