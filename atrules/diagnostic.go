package atrules

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"atmerge/common"
	"atmerge/css"
	"atmerge/css/condition"
	"atmerge/utils/debug"
)

// Diagnostic describes conditional block dropped because its condition
// could not be computed.
type Diagnostic struct {
	Pass    common.Pass
	Message string     // [Pass]: invalid "query"...
	Node    css.NodeID // offending block, detached from the tree
	Err     error
}

func (d Diagnostic) String() string {
	if d.Err == nil {
		return d.Message
	}
	return d.Message + ": " + d.Err.Error()
}

// pass holds state of a single traversal.
type pass struct {
	kind    common.Pass
	sheet   *css.Stylesheet
	match   Matcher
	algebra condition.Algebra
	log     *zap.Logger
	diags   []Diagnostic
}

func (p *pass) report(id css.NodeID, err error, format string, args ...any) {
	d := Diagnostic{
		Pass:    p.kind,
		Message: fmt.Sprintf("[%s]: ", p.kind.Label()) + fmt.Sprintf(format, args...),
		Node:    id,
		Err:     err,
	}
	p.diags = append(p.diags, d)
	p.log.Warn("Dropping conditional block",
		zap.String("diagnostic", d.Message),
		zap.String("at-rule", p.sheet.Name(id)),
		zap.Error(err))
}

// DumpDiagnostics renders diagnostics grouped by pass for debug reports.
func DumpDiagnostics(source string, diags []Diagnostic) string {
	tw := debug.NewTreeWriter()
	tw.Node(0, "source", source, "diagnostics", strconv.Itoa(len(diags)))
	last := common.Pass(-1)
	for _, d := range diags {
		if d.Pass != last {
			tw.Node(1, "pass", d.Pass.Label())
			last = d.Pass
		}
		tw.Line(2, "%s", d)
	}
	return tw.String()
}
