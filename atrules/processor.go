// Package atrules restructures conditional at-rules (media queries, cascade
// layers, feature queries) of a parsed stylesheet. Three passes are
// available: Flatten hoists nested blocks towards the root joining their
// conditions, Merge coalesces sibling blocks with equal conditions and Nest
// regroups siblings sharing a condition prefix.
package atrules

import (
	"go.uber.org/zap"

	"atmerge/common"
	"atmerge/css"
	"atmerge/css/condition"
)

// Options selects passes and at-rules they operate on.
type Options struct {
	Matcher Matcher
	Flatten bool
	Merge   bool
	Nest    bool
	Policy  common.RangePolicy
}

// DefaultOptions returns options matching media, layer and supports blocks
// with Flatten and Merge enabled.
func DefaultOptions() Options {
	m, err := ParseMatcher(DefaultPattern)
	if err != nil {
		panic(err)
	}
	return Options{
		Matcher: m,
		Flatten: true,
		Merge:   true,
		Policy:  common.RangePolicyStrict,
	}
}

// Processor applies configured passes to stylesheets. It keeps no state
// between runs and may be reused.
type Processor struct {
	log     *zap.Logger
	opts    Options
	algebra condition.Algebra
}

// NewProcessor validates options. Missing matcher is a configuration error
// reported before any stylesheet is touched.
func NewProcessor(log *zap.Logger, opts Options) (*Processor, error) {
	if opts.Matcher == nil {
		return nil, ErrNoPattern
	}
	if !opts.Policy.IsValid() {
		return nil, common.ErrInvalidRangePolicy
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		log:     log.Named("atrules"),
		opts:    opts,
		algebra: condition.Algebra{Policy: opts.Policy},
	}, nil
}

// Run applies enabled passes in order Flatten, Merge, Nest mutating sheet in
// place. Returned diagnostics describe blocks dropped on the way, in the
// order they were encountered.
func (p *Processor) Run(sheet *css.Stylesheet) []Diagnostic {
	var diags []Diagnostic
	if p.opts.Flatten {
		diags = append(diags, p.Flatten(sheet)...)
	}
	if p.opts.Merge {
		diags = append(diags, p.Merge(sheet)...)
	}
	if p.opts.Nest {
		diags = append(diags, p.Nest(sheet)...)
	}
	return diags
}

// Flatten runs flatten pass regardless of options.
func (p *Processor) Flatten(sheet *css.Stylesheet) []Diagnostic {
	return p.run(sheet, common.PassFlatten, (*pass).flatten)
}

// Merge runs merge pass regardless of options.
func (p *Processor) Merge(sheet *css.Stylesheet) []Diagnostic {
	return p.run(sheet, common.PassMerge, (*pass).merge)
}

// Nest runs nest pass regardless of options.
func (p *Processor) Nest(sheet *css.Stylesheet) []Diagnostic {
	return p.run(sheet, common.PassNest, (*pass).nest)
}

func (p *Processor) run(sheet *css.Stylesheet, kind common.Pass, fn func(*pass, css.NodeID)) []Diagnostic {
	ps := &pass{
		kind:    kind,
		sheet:   sheet,
		match:   p.opts.Matcher,
		algebra: p.algebra,
		log:     p.log.With(zap.Stringer("pass", kind)),
	}

	before := sheet.Count(css.NodeAtRule)
	fn(ps, sheet.Root())

	p.log.Debug("Pass completed",
		zap.Stringer("pass", kind),
		zap.Int("at-rules before", before),
		zap.Int("at-rules after", sheet.Count(css.NodeAtRule)),
		zap.Int("diagnostics", len(ps.diags)))
	return ps.diags
}
