package atrules_test

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"atmerge/atrules"
	"atmerge/css"
)

// builder creates stylesheet trees in tests.
type builder struct {
	s *css.Stylesheet
}

func newBuilder() *builder {
	return &builder{s: css.NewStylesheet()}
}

// at creates at-rule with block and appends children.
func (b *builder) at(name, params string, children ...css.NodeID) css.NodeID {
	id := b.s.NewAtRule(name, params, true)
	b.s.Append(id, children...)
	return id
}

// rule creates rule with single declaration so it is easy to track.
func (b *builder) rule(selector string) css.NodeID {
	id := b.s.NewRule(selector)
	b.s.Append(id, b.s.NewDeclaration("color", "red"))
	return id
}

func (b *builder) root(children ...css.NodeID) *css.Stylesheet {
	b.s.Append(b.s.Root(), children...)
	return b.s
}

// outline renders compact form of attached tree: at-rules as
// "@name(params)[children]", rules as their selector.
func outline(s *css.Stylesheet) string {
	var sb strings.Builder
	var write func(id css.NodeID)
	write = func(id css.NodeID) {
		switch s.Type(id) {
		case css.NodeAtRule:
			sb.WriteString("@" + s.Name(id) + "(" + s.Params(id) + ")[")
			for i, c := range s.Children(id) {
				if i > 0 {
					sb.WriteByte(' ')
				}
				write(c)
			}
			sb.WriteByte(']')
		case css.NodeRule:
			sb.WriteString(s.Params(id))
		case css.NodeComment:
			sb.WriteString("/**/")
		}
	}
	for i, c := range s.Children(s.Root()) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		write(c)
	}
	return sb.String()
}

func newProcessor(t *testing.T, opts atrules.Options) *atrules.Processor {
	t.Helper()
	p, err := atrules.NewProcessor(zaptest.NewLogger(t), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func defaultProcessor(t *testing.T) *atrules.Processor {
	t.Helper()
	return newProcessor(t, atrules.DefaultOptions())
}

func messages(diags []atrules.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}
