// Package condition implements algebra over conditional at-rule preludes:
// splitting queries into atoms, canonical ordering, joining with
// deduplication and reduction of numeric range bounds.
package condition

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Recognized at-rule kinds. Any other kind is treated like media: atoms are
// joined with "and".
const (
	KindMedia    = "media"
	KindLayer    = "layer"
	KindSupports = "supports"
)

var (
	// ErrEmptyIntersection is returned when two closed ranges over the same
	// feature do not overlap.
	ErrEmptyIntersection = errors.New("empty range intersection")
	// ErrInvalidRange is returned when lower and upper bounds of the same
	// feature cannot be satisfied together.
	ErrInvalidRange = errors.New("invalid range")
	// ErrMalformed is returned for conditions which could not be split into atoms.
	ErrMalformed = errors.New("malformed condition")
)

// RangeError describes conflicting bound atoms.
type RangeError struct {
	Err   error // ErrEmptyIntersection or ErrInvalidRange
	Left  string
	Right string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: %q and %q", e.Err, e.Left, e.Right)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// IsLayer reports whether kind composes atoms as a dotted path.
func IsLayer(kind string) bool {
	return strings.EqualFold(kind, KindLayer)
}

// Connective returns separator used to serialize atoms of the kind.
func Connective(kind string) string {
	if IsLayer(kind) {
		return "."
	}
	return " and "
}

// Atoms splits query into trimmed atoms. For layers atoms are path segments
// and kept as is, for every other kind atoms are separated by "and" outside of
// parentheses and duplicates are collapsed keeping first occurrence. Query
// lists, "or" conditions and negations form a single atom. Empty query has no
// atoms.
func Atoms(kind, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if err := checkBalanced(query); err != nil {
		return nil, err
	}

	var parts []string
	switch {
	case IsLayer(kind):
		parts = strings.Split(query, ".")
	case compound(query):
		// disjunction or negation applies to the whole query, it is kept whole
		return []string{query}, nil
	default:
		parts = splitAnd(query)
	}

	atoms := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("%w: empty clause in %q", ErrMalformed, query)
		}
		atoms = append(atoms, p)
	}
	if IsLayer(kind) {
		return atoms, nil
	}
	return dedup(atoms), nil
}

// SortAtoms returns atoms ordered so that atoms with digits follow atoms
// without them, relative order within each group is kept. Layer paths are
// returned unchanged since segment order is meaningful.
func SortAtoms(kind string, atoms []string) []string {
	sorted := slices.Clone(atoms)
	if IsLayer(kind) {
		return sorted
	}
	slices.SortStableFunc(sorted, func(a, b string) int {
		da, db := hasDigit(a), hasDigit(b)
		switch {
		case da == db:
			return 0
		case da:
			return 1
		default:
			return -1
		}
	})
	return sorted
}

func hasDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

func dedup(atoms []string) []string {
	out := atoms[:0:0]
	for _, a := range atoms {
		if !slices.Contains(out, a) {
			out = append(out, a)
		}
	}
	return out
}

func checkBalanced(query string) error {
	depth := 0
	for _, r := range query {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("%w: unbalanced parentheses in %q", ErrMalformed, query)
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("%w: unbalanced parentheses in %q", ErrMalformed, query)
	}
	return nil
}

// splitAnd splits query on the "and" keyword found at parenthesis depth 0.
func splitAnd(query string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(query); i++ {
		switch query[i] {
		case '(':
			depth++
		case ')':
			depth--
		default:
			if depth == 0 && keywordAt(query, i, "and") {
				parts = append(parts, query[start:i])
				start = i + 3
				i += 2
			}
		}
	}
	return append(parts, query[start:])
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// keywordAt reports whether standalone keyword kw starts at position i.
func keywordAt(s string, i int, kw string) bool {
	n := len(kw)
	if i+n > len(s) || !strings.EqualFold(s[i:i+n], kw) {
		return false
	}
	before := i == 0 || isSpace(s[i-1]) || s[i-1] == ')' || s[i-1] == '('
	after := i+n == len(s) || isSpace(s[i+n]) || s[i+n] == '('
	return before && after
}

// topLevelKeyword reports whether keyword kw occurs outside of parentheses.
func topLevelKeyword(s, kw string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		default:
			if depth == 0 && keywordAt(s, i, kw) {
				return true
			}
		}
	}
	return false
}

// containsKeyword reports whether keyword kw occurs at any depth.
func containsKeyword(s, kw string) bool {
	for i := range len(s) {
		if keywordAt(s, i, kw) {
			return true
		}
	}
	return false
}

// compound reports whether query cannot be split into and-ed atoms: a comma
// separated query list, a top level "or" condition or a negated query.
func compound(query string) bool {
	return topLevelComma(query) || topLevelKeyword(query, "or") || keywordAt(strings.TrimSpace(query), 0, "not")
}

// topLevelComma reports whether atom is a comma separated query list.
func topLevelComma(atom string) bool {
	depth := 0
	for i := 0; i < len(atom); i++ {
		switch atom[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}
