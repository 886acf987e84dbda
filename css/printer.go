package css

import (
	"fmt"
	"io"
	"strings"
)

// SetIndent sets number of spaces used for each nesting level when printing.
func (s *Stylesheet) SetIndent(n int) {
	s.indent = strings.Repeat(" ", max(n, 0))
}

// printer keeps track of written bytes and the first error.
type printer struct {
	w      io.Writer
	indent string
	total  int64
	err    error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	n, err := fmt.Fprintf(p.w, "%s"+format+"\n", append([]any{strings.Repeat(p.indent, depth)}, args...)...)
	p.total += int64(n)
	p.err = err
}

// WriteTo writes the stylesheet to w in document order, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	p := &printer{w: w, indent: s.indent}
	children := s.nodes[s.Root()].children
	for i, id := range children {
		s.print(p, id, 0)
		// blank line between top level items
		if i < len(children)-1 {
			p.line(0, "")
		}
	}
	return p.total, p.err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func (s *Stylesheet) print(p *printer, id NodeID, depth int) {
	n := &s.nodes[id]
	switch n.typ {
	case NodeComment:
		p.line(depth, "%s", n.params)
	case NodeDeclaration:
		p.line(depth, "%s: %s;", n.name, n.params)
	case NodeAtRule:
		head := "@" + n.name
		if n.params != "" {
			head += " " + n.params
		}
		if !n.hasBlock {
			p.line(depth, "%s;", head)
			return
		}
		s.printBlock(p, head, n.children, depth)
	case NodeRule:
		s.printBlock(p, n.params, n.children, depth)
	}
}

func (s *Stylesheet) printBlock(p *printer, head string, children []NodeID, depth int) {
	if len(children) == 0 {
		p.line(depth, "%s {}", head)
		return
	}
	p.line(depth, "%s {", head)
	for _, child := range children {
		s.print(p, child, depth+1)
	}
	p.line(depth, "}")
}
