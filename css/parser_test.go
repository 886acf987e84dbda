package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"atmerge/css"
)

// topLevel returns direct children of the root.
func topLevel(sheet *css.Stylesheet) []css.NodeID {
	return sheet.Children(sheet.Root())
}

func mustParse(t *testing.T, input string) *css.Stylesheet {
	t.Helper()
	p := css.NewParser(zaptest.NewLogger(t))
	sheet, err := p.Parse([]byte(input), "test")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return sheet
}

func TestParser_SimpleRule(t *testing.T) {
	sheet := mustParse(t, `p { text-indent: 1em; color: red }`)

	items := topLevel(sheet)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	rule := items[0]
	if sheet.Type(rule) != css.NodeRule {
		t.Fatalf("expected rule, got %s", sheet.Type(rule))
	}
	if sheet.Params(rule) != "p" {
		t.Errorf("expected selector 'p', got '%s'", sheet.Params(rule))
	}

	decls := sheet.Children(rule)
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	if sheet.Name(decls[0]) != "text-indent" || sheet.Params(decls[0]) != "1em" {
		t.Errorf("unexpected first declaration %s: %s", sheet.Name(decls[0]), sheet.Params(decls[0]))
	}
	if sheet.Name(decls[1]) != "color" || sheet.Params(decls[1]) != "red" {
		t.Errorf("unexpected second declaration %s: %s", sheet.Name(decls[1]), sheet.Params(decls[1]))
	}
}

func TestParser_GroupedSelectors(t *testing.T) {
	sheet := mustParse(t, `h1,h2 , h3 { margin: 0 }`)

	items := topLevel(sheet)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if got := sheet.Params(items[0]); got != "h1, h2, h3" {
		t.Errorf("expected 'h1, h2, h3', got '%s'", got)
	}
}

func TestParser_MediaBlockPreserved(t *testing.T) {
	sheet := mustParse(t, `
		p { margin: 0; }
		@media screen and (min-width:100px) {
			p { margin: 1em; }
		}
		.test { color: red; }
	`)

	items := topLevel(sheet)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	media := items[1]
	if sheet.Type(media) != css.NodeAtRule || sheet.Name(media) != "media" {
		t.Fatalf("expected @media at-rule, got %s %q", sheet.Type(media), sheet.Name(media))
	}
	if !sheet.HasBlock(media) {
		t.Error("expected @media to have a block")
	}
	if got := sheet.Params(media); got != "screen and (min-width: 100px)" {
		t.Errorf("unexpected media params '%s'", got)
	}
	if sheet.ChildCount(media) != 1 {
		t.Fatalf("expected 1 rule inside @media, got %d", sheet.ChildCount(media))
	}
	inner := sheet.Child(media, 0)
	if sheet.Params(inner) != "p" || sheet.Parent(inner) != media {
		t.Errorf("unexpected inner rule '%s'", sheet.Params(inner))
	}
	if sheet.Params(items[2]) != ".test" {
		t.Errorf("expected third item '.test', got '%s'", sheet.Params(items[2]))
	}
}

func TestParser_NestedConditionalRules(t *testing.T) {
	sheet := mustParse(t, `
		@layer base {
			@supports (display: grid) {
				@media print {
					a { color: black }
				}
			}
		}
	`)

	layer := topLevel(sheet)[0]
	if sheet.Name(layer) != "layer" || sheet.Params(layer) != "base" {
		t.Fatalf("unexpected outer at-rule @%s %s", sheet.Name(layer), sheet.Params(layer))
	}
	supports := sheet.Child(layer, 0)
	if sheet.Name(supports) != "supports" || sheet.Params(supports) != "(display: grid)" {
		t.Fatalf("unexpected second level at-rule @%s %s", sheet.Name(supports), sheet.Params(supports))
	}
	media := sheet.Child(supports, 0)
	if sheet.Name(media) != "media" || sheet.Params(media) != "print" {
		t.Fatalf("unexpected third level at-rule @%s %s", sheet.Name(media), sheet.Params(media))
	}
	if got := sheet.Depth(sheet.Child(media, 0)); got != 4 {
		t.Errorf("expected rule at depth 4, got %d", got)
	}
	if got := sheet.Count(css.NodeAtRule); got != 3 {
		t.Errorf("expected 3 at-rules, got %d", got)
	}
}

func TestParser_StatementAtRules(t *testing.T) {
	sheet := mustParse(t, `@import url(base.css);
@layer reset, theme;
p { color: red }`)

	items := topLevel(sheet)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if sheet.Name(items[0]) != "import" || sheet.HasBlock(items[0]) {
		t.Errorf("expected statement @import, got @%s block=%v", sheet.Name(items[0]), sheet.HasBlock(items[0]))
	}
	if sheet.Name(items[1]) != "layer" || sheet.HasBlock(items[1]) {
		t.Errorf("expected statement @layer, got @%s block=%v", sheet.Name(items[1]), sheet.HasBlock(items[1]))
	}
	if got := sheet.Params(items[1]); got != "reset, theme" {
		t.Errorf("expected 'reset, theme', got '%s'", got)
	}
}

func TestParser_AtRuleNameLowercased(t *testing.T) {
	sheet := mustParse(t, `@MEDIA print { a { color: red } }`)
	if got := sheet.Name(topLevel(sheet)[0]); got != "media" {
		t.Errorf("expected 'media', got '%s'", got)
	}
}

func TestParser_TopLevelComment(t *testing.T) {
	sheet := mustParse(t, `/* header */
p { color: red }`)

	items := topLevel(sheet)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if sheet.Type(items[0]) != css.NodeComment || sheet.Params(items[0]) != "/* header */" {
		t.Errorf("expected comment first, got %s %q", sheet.Type(items[0]), sheet.Params(items[0]))
	}
}

func TestParser_NilLogger(t *testing.T) {
	p := css.NewParser(nil)
	sheet, err := p.Parse([]byte(`a { color: red }`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sheet.Count(css.NodeRule) != 1 {
		t.Errorf("expected 1 rule, got %d", sheet.Count(css.NodeRule))
	}
}

func TestParser_EmptyInput(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet, err := p.Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sheet.ChildCount(sheet.Root()) != 0 {
		t.Errorf("expected empty stylesheet, got %d items", sheet.ChildCount(sheet.Root()))
	}
	if strings.TrimSpace(sheet.String()) != "" {
		t.Errorf("expected empty output, got %q", sheet.String())
	}
}

func TestParser_RoundTrip(t *testing.T) {
	input := `@media screen {
  a {
    color: red;
  }
}

p {
  margin: 0 auto;
}
`
	sheet := mustParse(t, input)
	if got := sheet.String(); got != input {
		t.Errorf("round trip mismatch:\n got: %q\nwant: %q", got, input)
	}
}
