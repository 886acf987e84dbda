package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines describing hierarchical structures
// for manual inspection.
type TreeWriter struct {
	w      *strings.Builder
	indent string
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w:      &strings.Builder{},
		indent: "  ",
	}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(tw.indent)
	}
}

// Line writes formatted line at the requested depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Node writes "kind label" where label is quoted when not empty, followed by
// optional key=value attributes.
func (tw *TreeWriter) Node(depth int, kind, label string, attrs ...string) {
	tw.pad(depth)
	tw.w.WriteString(kind)
	if label != "" {
		tw.w.WriteByte(' ')
		tw.w.WriteString(strconv.Quote(label))
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		tw.w.WriteByte(' ')
		tw.w.WriteString(attrs[i])
		tw.w.WriteByte('=')
		tw.w.WriteString(attrs[i+1])
	}
	tw.w.WriteByte('\n')
}
