package atrules

import (
	"errors"
	"strings"

	"atmerge/css"
	"atmerge/css/condition"
)

// nest groups sibling blocks sharing the first atom of their normalized
// condition under a single block carrying that atom. Remaining atoms go to
// nested blocks of the same kind.
func (p *pass) nest(scope css.NodeID) {
	for m := range Matches(p.sheet, scope, p.match) {
		kind := p.sheet.Name(m)
		atoms, err := p.algebra.NormalizedAtoms(kind, p.sheet.Params(m))
		if err != nil {
			p.report(m, err, "invalid %q", p.sheet.Params(m))
			p.sheet.Remove(m)
			continue
		}

		head := atoms[0]
		if len(atoms) > 1 {
			rest, err := p.algebra.JoinAtoms(kind, atoms[1:])
			if err != nil {
				p.report(m, err, "invalid %q", p.sheet.Params(m))
				p.sheet.Remove(m)
				continue
			}
			inner := p.sheet.NewAtRule(kind, rest, true)
			p.sheet.Append(inner, p.sheet.Children(m)...)
			p.sheet.Append(m, inner)
		}
		p.sheet.SetParams(m, head)

		p.absorb(scope, m, kind, head)
		p.nest(m)
		p.collapse(m)
	}
}

// absorb moves siblings of m whose condition starts with head into m.
// Siblings with exactly head as condition give away their children, others
// are moved as a whole carrying the rest of their condition.
func (p *pass) absorb(scope, m css.NodeID, kind, head string) {
	for n := range Matches(p.sheet, scope, p.match) {
		if n == m || !strings.EqualFold(p.sheet.Name(n), kind) {
			continue
		}
		atoms, err := p.algebra.NormalizedAtoms(kind, p.sheet.Params(n))
		if err != nil {
			p.report(n, err, "invalid %q", p.sheet.Params(n))
			p.sheet.Remove(n)
			continue
		}
		if atoms[0] != head {
			continue
		}

		if len(atoms) == 1 {
			p.sheet.Append(m, p.sheet.Children(n)...)
			p.sheet.Remove(n)
			continue
		}
		rest, err := p.algebra.JoinAtoms(kind, atoms[1:])
		if err != nil {
			p.report(n, err, "invalid %q", p.sheet.Params(n))
			p.sheet.Remove(n)
			continue
		}
		p.sheet.SetParams(n, rest)
		p.sheet.Append(m, n)
	}
}

// collapse folds single media child of media block m into m.
func (p *pass) collapse(m css.NodeID) {
	if p.sheet.ChildCount(m) != 1 || !isMedia(p.sheet.Name(m)) {
		return
	}
	child := p.sheet.Child(m, 0)
	if !IsActive(p.sheet, child, p.match) || !isMedia(p.sheet.Name(child)) {
		return
	}

	query, err := p.algebra.Join(p.sheet.Name(m), p.sheet.Params(m), p.sheet.Params(child))
	if errors.Is(err, condition.ErrMalformed) {
		// query lists and negations cannot be and-ed, child stays nested
		return
	}
	if err != nil {
		p.report(child, err, "invalid %q", p.sheet.Params(child))
		p.sheet.Remove(child)
		return
	}
	p.sheet.SetParams(m, query)
	p.sheet.Append(m, p.sheet.Children(child)...)
	p.sheet.Remove(child)
}
