package condition

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe  = regexp.MustCompile(`[-+]?(?:\d*\.\d+|\d+)(?:[eE][-+]?\d+)?([a-zA-Z%]*)`)
	featureRe = regexp.MustCompile(`^(?:-?[a-z_][a-z0-9_-]*)?$`)
)

// number is numeric literal found in an atom, start and end are byte offsets
// into the atom text.
type number struct {
	text       string
	value      float64
	unit       string
	start, end int
}

// end is one side of an interval.
type end struct {
	num  number
	excl bool
}

// tighter reports whether a restricts more than b. Lower ends grow, upper
// ends shrink, exclusive end wins a tie.
func (a *end) tighter(b *end, lower bool) bool {
	switch {
	case a.num.value == b.num.value:
		return a.excl && !b.excl
	case lower:
		return a.num.value > b.num.value
	default:
		return a.num.value < b.num.value
	}
}

// bound is reducible view of a range atom: "min-width: 10px",
// "(width > 10px)", "(10px <= width < 50px)". Single sided bounds have
// only one of lo and hi set.
type bound struct {
	text    string
	feature string
	unit    string
	lo, hi  *end
}

func (b *bound) key() string {
	return b.feature + "|" + b.unit
}

func (b *bound) closed() bool {
	return b.lo != nil && b.hi != nil
}

// covers reports whether every side of o is present in b.
func (b *bound) covers(o *bound) bool {
	return (o.lo == nil || b.lo != nil) && (o.hi == nil || b.hi != nil)
}

// isBoundAtom reports whether atom is a comparison or min-/max- atom.
func isBoundAtom(atom string) bool {
	if containsKeyword(atom, "or") || containsKeyword(atom, "not") || strings.Contains(atom, ",") {
		return false
	}
	if strings.ContainsAny(atom, "<>") {
		return true
	}
	name := strings.ToLower(strings.TrimLeft(atom, "( \t"))
	return strings.HasPrefix(name, "min-") || strings.HasPrefix(name, "max-")
}

// parseBound returns reducible view of atom or nil when atom is not a bound
// or its numbers could not be extracted.
func parseBound(atom string) *bound {
	if !isBoundAtom(atom) {
		return nil
	}
	inner, off := unwrap(atom)
	if !strings.ContainsAny(inner, "<>") {
		return parseColonBound(atom, inner, off)
	}
	return parseOperatorBound(atom, inner, off)
}

// unwrap strips enclosing parentheses returning inner text and its offset in s.
func unwrap(s string) (string, int) {
	off := 0
	for {
		trimmed := strings.TrimSpace(s)
		off += strings.Index(s, trimmed)
		s = trimmed
		if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' || !enclosed(s) {
			return s, off
		}
		s = s[1 : len(s)-1]
		off++
	}
}

// enclosed reports whether the first parenthesis of s closes at its last byte.
func enclosed(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i == len(s)-1
			}
		}
	}
	return false
}

func parseColonBound(atom, inner string, off int) *bound {
	colon := strings.IndexByte(inner, ':')
	if colon < 0 {
		return nil
	}
	name := strings.ToLower(strings.TrimSpace(inner[:colon]))
	nums := numbers(inner[colon+1:], off+colon+1)
	if len(nums) != 1 {
		return nil
	}
	b := &bound{text: atom, unit: nums[0].unit}
	e := &end{num: nums[0]}
	switch {
	case strings.HasPrefix(name, "min-"):
		b.feature, b.lo = name[4:], e
	case strings.HasPrefix(name, "max-"):
		b.feature, b.hi = name[4:], e
	default:
		return nil
	}
	if b.feature == "" || !featureRe.MatchString(b.feature) {
		return nil
	}
	return b
}

type operator struct {
	less       bool
	inclusive  bool
	start, end int
}

func parseOperatorBound(atom, inner string, off int) *bound {
	var ops []operator
	for i := 0; i < len(inner); i++ {
		if inner[i] != '<' && inner[i] != '>' {
			continue
		}
		op := operator{less: inner[i] == '<', start: i, end: i + 1}
		if i+1 < len(inner) && inner[i+1] == '=' {
			op.inclusive = true
			op.end++
			i++
		}
		ops = append(ops, op)
	}

	// operands between operators
	var (
		texts   []string
		offsets []int
		prev    int
	)
	for _, op := range ops {
		texts = append(texts, inner[prev:op.start])
		offsets = append(offsets, off+prev)
		prev = op.end
	}
	texts = append(texts, inner[prev:])
	offsets = append(offsets, off+prev)

	operands := make([][]number, len(texts))
	for i, t := range texts {
		operands[i] = numbers(t, offsets[i])
	}

	switch len(ops) {
	case 1:
		return singleOperatorBound(atom, ops[0], texts, operands)
	case 2:
		return rangeOperatorBound(atom, ops, texts, operands)
	}
	return nil
}

// singleOperatorBound handles "feature op value" and "value op feature".
func singleOperatorBound(atom string, op operator, texts []string, operands [][]number) *bound {
	var (
		feature string
		num     number
		lower   bool
	)
	switch {
	case len(operands[0]) == 0 && len(operands[1]) == 1:
		feature, num, lower = texts[0], operands[1][0], !op.less
	case len(operands[0]) == 1 && len(operands[1]) == 0:
		// value on the left flips orientation: "10px < width" is a lower bound
		feature, num, lower = texts[1], operands[0][0], op.less
	default:
		return nil
	}
	b := &bound{text: atom, feature: strings.ToLower(strings.TrimSpace(feature)), unit: num.unit}
	if !featureRe.MatchString(b.feature) {
		return nil
	}
	e := &end{num: num, excl: !op.inclusive}
	if lower {
		b.lo = e
	} else {
		b.hi = e
	}
	return b
}

// rangeOperatorBound handles "value op feature op value" where both
// operators point the same way.
func rangeOperatorBound(atom string, ops []operator, texts []string, operands [][]number) *bound {
	if ops[0].less != ops[1].less || len(operands[0]) != 1 || len(operands[1]) != 0 || len(operands[2]) != 1 {
		return nil
	}
	first, last := operands[0][0], operands[2][0]
	if first.unit != last.unit {
		return nil
	}
	b := &bound{text: atom, feature: strings.ToLower(strings.TrimSpace(texts[1])), unit: first.unit}
	if b.feature == "" || !featureRe.MatchString(b.feature) {
		return nil
	}
	firstEnd := &end{num: first, excl: !ops[0].inclusive}
	lastEnd := &end{num: last, excl: !ops[1].inclusive}
	if ops[0].less {
		b.lo, b.hi = firstEnd, lastEnd
	} else {
		b.lo, b.hi = lastEnd, firstEnd
	}
	return b
}

// numbers extracts numeric literals from s, offsets are shifted by base.
func numbers(s string, base int) []number {
	var nums []number
	for _, m := range numberRe.FindAllStringSubmatchIndex(s, -1) {
		unitStart := m[2]
		v, err := strconv.ParseFloat(s[m[0]:unitStart], 64)
		if err != nil {
			continue
		}
		nums = append(nums, number{
			text:  s[m[0]:m[1]],
			value: v,
			unit:  strings.ToLower(s[unitStart:m[3]]),
			start: base + m[0],
			end:   base + m[1],
		})
	}
	return nums
}

// substitute returns b's text with literals of its ends replaced by the
// literals of lo and hi, operators and the rest of the text are preserved.
func (b *bound) substitute(lo, hi *end) *bound {
	type edit struct {
		at   number
		with string
	}
	var edits []edit
	if lo != nil && b.lo != nil && lo.num.text != b.lo.num.text {
		edits = append(edits, edit{b.lo.num, lo.num.text})
	}
	if hi != nil && b.hi != nil && hi.num.text != b.hi.num.text {
		edits = append(edits, edit{b.hi.num, hi.num.text})
	}
	if len(edits) == 0 {
		return b
	}
	// apply right to left so offsets stay valid
	if len(edits) == 2 && edits[0].at.start < edits[1].at.start {
		edits[0], edits[1] = edits[1], edits[0]
	}
	text := b.text
	for _, e := range edits {
		text = text[:e.at.start] + e.with + text[e.at.end:]
	}
	if nb := parseBound(text); nb != nil {
		return nb
	}
	return b
}
