package condition

import (
	"fmt"
	"strings"

	"atmerge/common"
)

// Algebra joins and normalizes conditions. Policy decides when a lower bound
// and an upper bound of the same feature are considered contradictory.
type Algebra struct {
	Policy common.RangePolicy
}

// Default uses strict range policy.
var Default = Algebra{Policy: common.RangePolicyStrict}

// Join splits every query into atoms and joins them into a single condition.
func Join(kind string, queries ...string) (string, error) {
	return Default.Join(kind, queries...)
}

// JoinAtoms joins atom lists into a single condition.
func JoinAtoms(kind string, lists ...[]string) (string, error) {
	return Default.JoinAtoms(kind, lists...)
}

// Normalize returns canonical form of query.
func Normalize(kind, query string) (string, error) {
	return Default.Normalize(kind, query)
}

// Join splits every query into atoms and joins them into a single condition.
func (a Algebra) Join(kind string, queries ...string) (string, error) {
	lists := make([][]string, 0, len(queries))
	for _, q := range queries {
		atoms, err := Atoms(kind, q)
		if err != nil {
			return "", err
		}
		lists = append(lists, atoms)
	}
	return a.JoinAtoms(kind, lists...)
}

// JoinAtoms flattens atom lists, removes duplicates, reduces range bounds and
// serializes result using kind's connective.
func (a Algebra) JoinAtoms(kind string, lists ...[]string) (string, error) {
	atoms, err := a.Reduce(kind, lists...)
	if err != nil {
		return "", err
	}
	return strings.Join(atoms, Connective(kind)), nil
}

// Normalize returns join of sorted atoms of query. Two queries with the same
// set of atoms have the same normalized form.
func (a Algebra) Normalize(kind, query string) (string, error) {
	atoms, err := Atoms(kind, query)
	if err != nil {
		return "", err
	}
	return a.JoinAtoms(kind, SortAtoms(kind, atoms))
}

// NormalizedAtoms returns atoms of the normalized form of query.
func (a Algebra) NormalizedAtoms(kind, query string) ([]string, error) {
	atoms, err := Atoms(kind, query)
	if err != nil {
		return nil, err
	}
	return a.Reduce(kind, SortAtoms(kind, atoms))
}

// Reduce flattens atom lists into a single list. Layer segments are simply
// concatenated. For other kinds duplicates are dropped, "or" and "not"
// conditions are parenthesized for feature queries and refused by other
// kinds, and bound atoms referring to the same feature are folded left to
// right: weaker bound of the same side is dropped, closed ranges are
// intersected, contradicting bounds produce an error.
func (a Algebra) Reduce(kind string, lists ...[]string) ([]string, error) {
	var flat []string
	for _, l := range lists {
		flat = append(flat, l...)
	}
	if IsLayer(kind) {
		return flat, nil
	}

	flat = dedup(flat)
	if len(flat) > 1 {
		for i, atom := range flat {
			if !compound(atom) {
				continue
			}
			// only feature queries allow grouping a condition in parentheses,
			// media types and query lists cannot be grouped
			if !strings.EqualFold(kind, KindSupports) || topLevelComma(atom) {
				return nil, fmt.Errorf("%w: %q cannot be combined with other conditions", ErrMalformed, atom)
			}
			flat[i] = "(" + atom + ")"
		}
		flat = dedup(flat)
	}

	f := folder{policy: a.Policy}
	for _, atom := range flat {
		if err := f.add(atom); err != nil {
			return nil, err
		}
	}
	return f.atoms(), nil
}

// entry is accumulated atom, b is nil for atoms which are not reducible.
type entry struct {
	text    string
	b       *bound
	removed bool
}

type folder struct {
	policy  common.RangePolicy
	entries []*entry
}

func (f *folder) atoms() []string {
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		if !e.removed {
			out = append(out, e.text)
		}
	}
	return dedup(out)
}

// candidates returns live reducible entries sharing feature and unit with b.
// Bounds without recognizable feature are only compared with the last
// accumulated atom.
func (f *folder) candidates(b *bound) []*entry {
	var live []*entry
	for _, e := range f.entries {
		if !e.removed {
			live = append(live, e)
		}
	}
	if b.feature == "" {
		if n := len(live); n > 0 && live[n-1].b != nil && live[n-1].b.key() == b.key() {
			return live[n-1:]
		}
		return nil
	}
	var out []*entry
	for _, e := range live {
		if e.b != nil && e.b.key() == b.key() {
			out = append(out, e)
		}
	}
	return out
}

func (f *folder) add(atom string) error {
	b := parseBound(atom)
	if b == nil {
		f.entries = append(f.entries, &entry{text: atom})
		return nil
	}

	cands := f.candidates(b)

	// interval of the feature was already closed before this atom
	var hasLo, hasHi bool
	for _, e := range cands {
		hasLo = hasLo || e.b.lo != nil
		hasHi = hasHi || e.b.hi != nil
	}
	closed := hasLo && hasHi

	var (
		target *entry // entry holding b after it was folded in
		cur    = b
	)
	for _, e := range cands {
		switch {
		case e.b.covers(cur) || cur.covers(e.b):
			merged, err := combine(e.b, cur)
			if err != nil {
				return err
			}
			if target == nil {
				e.text, e.b = merged.text, merged
				target = e
			} else {
				// b already lives in target, e becomes redundant
				target.text, target.b = merged.text, merged
				e.removed = true
			}
			cur = merged
		default:
			// opposite single sided bounds stay separate atoms
			lo, hi := e.b.lo, cur.hi
			if lo == nil {
				lo, hi = cur.lo, e.b.hi
			}
			if f.conflict(lo, hi) {
				err := ErrInvalidRange
				if closed {
					err = ErrEmptyIntersection
				}
				return &RangeError{Err: err, Left: e.text, Right: cur.text}
			}
		}
	}
	if target == nil {
		f.entries = append(f.entries, &entry{text: cur.text, b: cur})
	}
	return nil
}

// conflict reports whether lower bound lo and upper bound hi of single sided
// atoms cannot hold together according to the policy.
func (f *folder) conflict(lo, hi *end) bool {
	if f.policy == common.RangePolicyDisjoint {
		return empty(lo, hi)
	}
	return lo.num.value >= hi.num.value
}

// empty reports whether interval between lo and hi contains no values.
func empty(lo, hi *end) bool {
	if lo.num.value == hi.num.value {
		return lo.excl || hi.excl
	}
	return lo.num.value > hi.num.value
}

// combine folds x into e when one of them covers all sides of the other.
// Single sided bounds of the same side keep the tighter atom as written,
// otherwise text of the wider bound is kept with tighter literals substituted.
func combine(e, x *bound) (*bound, error) {
	if !e.closed() && !x.closed() {
		if e.lo != nil && x.lo.tighter(e.lo, true) || e.hi != nil && x.hi.tighter(e.hi, false) {
			return x, nil
		}
		return e, nil
	}

	base, other := e, x
	if !e.covers(x) {
		base, other = x, e
	}
	lo, hi := base.lo, base.hi
	if other.lo != nil && other.lo.tighter(lo, true) {
		lo = other.lo
	}
	if other.hi != nil && other.hi.tighter(hi, false) {
		hi = other.hi
	}
	if empty(lo, hi) {
		return nil, &RangeError{Err: ErrEmptyIntersection, Left: e.text, Right: x.text}
	}
	return base.substitute(lo, hi), nil
}
