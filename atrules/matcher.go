package atrules

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strings"

	"atmerge/css"
)

// DefaultPattern selects media queries, cascade layers and feature queries.
const DefaultPattern = "/(media|layer|supports)/im"

// ErrNoPattern is returned when at-rule pattern is empty or absent.
var ErrNoPattern = errors.New("a valid matching at-rule pattern is required")

// Matcher decides whether at-rule with the given name (without '@')
// participates in transformations.
type Matcher func(name string) bool

// MatchName matches at-rule names equal to name ignoring ASCII case, the way
// CSS compares at-rule names: "@MEDIA" and "@media" are the same rule. This
// is looser than exact string comparison, use MatchPattern with an anchored
// case sensitive expression when exact match is needed.
func MatchName(name string) Matcher {
	return func(n string) bool {
		return strings.EqualFold(n, name)
	}
}

// MatchPattern matches at-rule names against regular expression.
func MatchPattern(re *regexp.Regexp) Matcher {
	if re == nil {
		return nil
	}
	return re.MatchString
}

// ParseMatcher creates matcher from its textual form. "/expr/flags" is
// compiled as regular expression, flags i, m and s are honored, g, u and y
// have no meaning for single name matching and are ignored. Anything else is
// matched as an at-rule name.
func ParseMatcher(pattern string) (Matcher, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, ErrNoPattern
	}

	last := strings.LastIndexByte(pattern, '/')
	if pattern[0] != '/' || last == 0 {
		return MatchName(strings.TrimPrefix(pattern, "@")), nil
	}

	expr, flags := pattern[1:last], pattern[last+1:]
	if expr == "" {
		return nil, ErrNoPattern
	}

	var goFlags strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			if !strings.ContainsRune(goFlags.String(), f) {
				goFlags.WriteRune(f)
			}
		case 'g', 'u', 'y':
		default:
			return nil, fmt.Errorf("unsupported flag %q in at-rule pattern %q", f, pattern)
		}
	}
	if goFlags.Len() > 0 {
		expr = "(?" + goFlags.String() + ")" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("unable to compile at-rule pattern %q: %w", pattern, err)
	}
	return MatchPattern(re), nil
}

// IsActive reports whether id is conditional block which takes part in
// transformations: at-rule with non-empty prelude and non-empty block whose
// name is accepted by match.
func IsActive(sheet *css.Stylesheet, id css.NodeID, match Matcher) bool {
	return sheet.Type(id) == css.NodeAtRule &&
		sheet.HasBlock(id) &&
		strings.TrimSpace(sheet.Params(id)) != "" &&
		sheet.ChildCount(id) > 0 &&
		match(sheet.Name(id))
}

// Matches enumerates active conditional blocks among direct children of
// scope together with their current index. Enumeration follows the live
// child list: children removed before being reached are skipped, children
// appended while enumerating are visited, no child is visited twice.
func Matches(sheet *css.Stylesheet, scope css.NodeID, match Matcher) iter.Seq2[css.NodeID, int] {
	return func(yield func(css.NodeID, int) bool) {
		visited := make(map[css.NodeID]struct{})
		seen := func(id css.NodeID) bool {
			_, ok := visited[id]
			return ok
		}

		pos := 0
		for {
			count := sheet.ChildCount(scope)
			pos = min(pos, count)
			// removals before pos shift unvisited children left
			for pos > 0 && !seen(sheet.Child(scope, pos-1)) {
				pos--
			}
			for pos < count && seen(sheet.Child(scope, pos)) {
				pos++
			}
			if pos >= count {
				return
			}

			id := sheet.Child(scope, pos)
			visited[id] = struct{}{}
			if !IsActive(sheet, id, match) {
				continue
			}
			if !yield(id, pos) {
				return
			}
		}
	}
}
