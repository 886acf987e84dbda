package atrules_test

import (
	"errors"
	"slices"
	"testing"

	"go.uber.org/zap"

	"atmerge/atrules"
	"atmerge/common"
	"atmerge/css"
)

const sample = `@media screen { a { color: red } }
@media print { b { color: blue } }
@media screen { c { color: green } }
@layer base { @media print { d { color: black } } }
`

func parse(t *testing.T, input string) *css.Stylesheet {
	t.Helper()
	sheet, err := css.NewParser(zap.NewNop()).Parse([]byte(input))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return sheet
}

func TestNewProcessor_NoPattern(t *testing.T) {
	opts := atrules.DefaultOptions()
	opts.Matcher = nil

	p, err := atrules.NewProcessor(nil, opts)
	if !errors.Is(err, atrules.ErrNoPattern) {
		t.Fatalf("expected ErrNoPattern, got %v", err)
	}
	if p != nil {
		t.Error("expected no processor")
	}
}

func TestNewProcessor_InvalidPolicy(t *testing.T) {
	opts := atrules.DefaultOptions()
	opts.Policy = common.RangePolicy(42)

	if _, err := atrules.NewProcessor(nil, opts); !errors.Is(err, common.ErrInvalidRangePolicy) {
		t.Fatalf("expected ErrInvalidRangePolicy, got %v", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := atrules.DefaultOptions()
	if !opts.Flatten || !opts.Merge || opts.Nest {
		t.Errorf("unexpected pass selection %+v", opts)
	}
	if opts.Policy != common.RangePolicyStrict {
		t.Errorf("expected strict policy, got %s", opts.Policy)
	}
}

func TestRun_Default(t *testing.T) {
	sheet := parse(t, sample)

	diags := defaultProcessor(t).Run(sheet)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", messages(diags))
	}

	want := `@media screen {
  a {
    color: red;
  }
  c {
    color: green;
  }
}

@media print {
  b {
    color: blue;
  }
  @layer base {
    d {
      color: black;
    }
  }
}
`
	if got := sheet.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRun_NothingEnabled(t *testing.T) {
	sheet := parse(t, sample)
	before := sheet.String()

	p := newProcessor(t, atrules.Options{Matcher: atrules.MatchName("media")})
	if diags := p.Run(sheet); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", messages(diags))
	}
	if sheet.String() != before {
		t.Error("expected stylesheet to stay untouched")
	}
}

func TestRun_PassOrder(t *testing.T) {
	b := newBuilder()
	s := b.root(
		b.at("media", "screen", b.at("media", "(min-width: 10px)", b.rule("a"))),
		b.at("media", "screen and (min-width: 10px)", b.rule("b")),
		b.at("media", "screen and (max-width: 50px)", b.rule("c")),
	)

	opts := atrules.DefaultOptions()
	opts.Nest = true
	diags := newProcessor(t, opts).Run(s)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", messages(diags))
	}

	// flatten hoists, merge joins equal conditions, nest regroups by prefix
	want := "@media(screen)[@media((min-width: 10px))[b a] @media((max-width: 50px))[c]]"
	if got := outline(s); got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestRun_LayerPattern(t *testing.T) {
	sheet := parse(t, sample)

	m, err := atrules.ParseMatcher("layer")
	if err != nil {
		t.Fatal(err)
	}
	p := newProcessor(t, atrules.Options{Matcher: m, Flatten: true, Merge: true})
	p.Run(sheet)

	// media blocks are not matched so nothing moves
	if got := sheet.Count(css.NodeAtRule); got != 5 {
		t.Errorf("expected 5 at-rules, got %d", got)
	}
	if got := sheet.ChildCount(sheet.Root()); got != 4 {
		t.Errorf("expected 4 top level items, got %d", got)
	}
}

func TestRun_DisjointPolicy(t *testing.T) {
	b := newBuilder()
	s := b.root(b.at("media", "(min-width: 10px)", b.at("media", "(max-width: 10px)", b.rule("a"))))

	opts := atrules.DefaultOptions()
	if diags := newProcessor(t, opts).Run(s); len(diags) != 1 {
		t.Fatalf("strict: expected single diagnostic, got %v", messages(diags))
	}

	b = newBuilder()
	s = b.root(b.at("media", "(min-width: 10px)", b.at("media", "(max-width: 10px)", b.rule("a"))))
	opts.Policy = common.RangePolicyDisjoint
	if diags := newProcessor(t, opts).Run(s); len(diags) != 0 {
		t.Fatalf("disjoint: unexpected diagnostics %v", messages(diags))
	}
	if got, want := outline(s), "@media((min-width: 10px) and (max-width: 10px))[a]"; got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := atrules.Diagnostic{Pass: common.PassMerge, Message: `[Merge]: invalid "x"`}
	if d.String() != `[Merge]: invalid "x"` {
		t.Errorf("unexpected %q", d.String())
	}
	d.Err = errors.New("boom")
	if d.String() != `[Merge]: invalid "x": boom` {
		t.Errorf("unexpected %q", d.String())
	}
}

func TestDumpDiagnostics(t *testing.T) {
	diags := []atrules.Diagnostic{
		{Pass: common.PassFlatten, Message: `[Flatten]: invalid "a", child of "b"`, Err: errors.New("empty")},
		{Pass: common.PassFlatten, Message: `[Flatten]: invalid "c", child of "d"`},
		{Pass: common.PassNest, Message: `[Nest]: invalid "e"`},
	}

	want := `source "x.css" diagnostics=3
  pass "Flatten"
    [Flatten]: invalid "a", child of "b": empty
    [Flatten]: invalid "c", child of "d"
  pass "Nest"
    [Nest]: invalid "e"
`
	if got := atrules.DumpDiagnostics("x.css", diags); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRun_CompoundConditions(t *testing.T) {
	sheet := parse(t, `@supports (display: grid) or (display: flex) { @supports (gap: 1px) { a { color: red } } }
@media (min-width: 10px) or print { @media (color) { b { color: blue } } }
`)

	diags := defaultProcessor(t).Run(sheet)

	want := []string{`[Flatten]: invalid "(color)", child of "(min-width: 10px) or print"`}
	if got := messages(diags); !slices.Equal(got, want) {
		t.Fatalf("diagnostics %q, want %q", got, want)
	}
	got := outline(sheet)
	if got != "@supports(((display: grid) or (display: flex)) and (gap: 1px))[a]" {
		t.Errorf("unexpected result %s", got)
	}
}
