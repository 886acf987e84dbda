package atrules_test

import (
	"errors"
	"regexp"
	"slices"
	"testing"

	"atmerge/atrules"
	"atmerge/css"
)

func TestParseMatcher(t *testing.T) {
	tests := []struct {
		pattern string
		match   []string
		skip    []string
	}{
		{atrules.DefaultPattern, []string{"media", "MEDIA", "layer", "supports"}, []string{"font-face", "import", "page"}},
		{"media", []string{"media", "Media"}, []string{"layer", "mediaquery"}},
		{"@layer", []string{"layer"}, []string{"media"}},
		{"/^(media|supports)$/", []string{"media", "supports"}, []string{"MEDIA", "layer", "supportsx"}},
		{"/lay/gi", []string{"LAYER", "layer"}, []string{"media"}},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			m, err := atrules.ParseMatcher(tt.pattern)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, name := range tt.match {
				if !m(name) {
					t.Errorf("expected %q to match", name)
				}
			}
			for _, name := range tt.skip {
				if m(name) {
					t.Errorf("expected %q not to match", name)
				}
			}
		})
	}
}

func TestParseMatcher_Errors(t *testing.T) {
	for _, pattern := range []string{"", "   ", "//i"} {
		if _, err := atrules.ParseMatcher(pattern); !errors.Is(err, atrules.ErrNoPattern) {
			t.Errorf("ParseMatcher(%q): expected ErrNoPattern, got %v", pattern, err)
		}
	}
	if _, err := atrules.ParseMatcher("/media/x"); err == nil {
		t.Error("expected error for unknown flag")
	}
	if _, err := atrules.ParseMatcher("/(media/"); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestMatchPattern(t *testing.T) {
	if atrules.MatchPattern(nil) != nil {
		t.Error("expected nil matcher for nil expression")
	}
	m := atrules.MatchPattern(regexp.MustCompile("^layer$"))
	if !m("layer") || m("media") {
		t.Error("unexpected match result")
	}
}

func TestIsActive(t *testing.T) {
	b := newBuilder()
	active := b.at("media", "screen", b.rule("a"))
	emptyParams := b.at("media", "  ", b.rule("b"))
	noChildren := b.at("media", "print")
	statement := b.s.NewAtRule("layer", "a, b", false)
	other := b.at("font-face", "x", b.rule("c"))
	s := b.root(active, emptyParams, noChildren, statement, other)

	m := atrules.MatchName("media")
	m2, _ := atrules.ParseMatcher(atrules.DefaultPattern)

	if !atrules.IsActive(s, active, m) {
		t.Error("expected block to be active")
	}
	for _, id := range []css.NodeID{emptyParams, noChildren, statement, other} {
		if atrules.IsActive(s, id, m2) {
			t.Errorf("expected %s to be inert", s.Name(id))
		}
	}
	if atrules.IsActive(s, s.Child(active, 0), m) {
		t.Error("expected rule to be inert")
	}
}

func TestMatches_LiveEnumeration(t *testing.T) {
	b := newBuilder()
	a := b.at("media", "a", b.rule("x"))
	r := b.rule("r")
	c := b.at("media", "c", b.rule("x"))
	d := b.at("media", "d", b.rule("x"))
	s := b.root(a, r, c, d)
	e := b.at("media", "e", b.rule("x"))

	type visit struct {
		id  css.NodeID
		pos int
	}
	var got []visit
	for id, pos := range atrules.Matches(s, s.Root(), atrules.MatchName("media")) {
		got = append(got, visit{id, pos})
		switch id {
		case a:
			// removed before being reached, appended while enumerating
			s.Remove(c)
			s.Append(s.Root(), e)
		case d:
			// removal of already visited sibling must not cause skips
			s.Remove(a)
		}
	}

	want := []visit{{a, 0}, {d, 2}, {e, 2}}
	if !slices.Equal(got, want) {
		t.Errorf("visited %v, want %v", got, want)
	}
}

func TestMatches_VisitsEachChildOnce(t *testing.T) {
	b := newBuilder()
	a := b.at("media", "a", b.rule("x"))
	c := b.at("media", "c", b.rule("x"))
	s := b.root(a, c)

	count := 0
	for id := range atrules.Matches(s, s.Root(), atrules.MatchName("media")) {
		count++
		// moving visited node to the end must not revisit it
		s.Append(s.Root(), id)
	}
	if count != 2 {
		t.Errorf("expected 2 visits, got %d", count)
	}
}

func TestMatches_Break(t *testing.T) {
	b := newBuilder()
	s := b.root(b.at("media", "a", b.rule("x")), b.at("media", "b", b.rule("y")))

	count := 0
	for range atrules.Matches(s, s.Root(), atrules.MatchName("media")) {
		count++
		break
	}
	if count != 1 {
		t.Errorf("expected single visit, got %d", count)
	}
}

func TestMatchName_IgnoresCase(t *testing.T) {
	m := atrules.MatchName("media")
	for _, name := range []string{"media", "MEDIA", "Media"} {
		if !m(name) {
			t.Errorf("expected %q to match", name)
		}
	}
	if m("medias") || m("layer") {
		t.Error("unexpected match")
	}

	exact := atrules.MatchPattern(regexp.MustCompile("^media$"))
	if exact("MEDIA") {
		t.Error("anchored expression must match exactly")
	}
}
