// Package analysis implements the inter-procedural taint propagation engine
// (spec.md §4): the analysis context, the fixed-point driver, and the
// flow-specific visitors that compute and propagate label backtraces.
package analysis

import (
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/symbols"
)

// GlobalKey identifies a top-level const, var, or function by the package
// it was declared in and its name.
type GlobalKey struct {
	Package string
	Name    string
}

// FunctionOutcome is the memoized per-function summary used at call sites
// (spec.md §3 FunctionOutcome): one post-mutation backtrace per formal
// parameter (with that parameter's own synthetic tag removed) and the list
// of backtraces collected from every return statement in the body.
type FunctionOutcome struct {
	Arguments   []*label.LabelBacktrace
	ReturnValue []*label.LabelBacktrace
}

func backtraceKeyEqual(a, b *label.LabelBacktrace) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key() == b.Key()
}

func outcomeEqual(a, b *FunctionOutcome) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Arguments) != len(b.Arguments) || len(a.ReturnValue) != len(b.ReturnValue) {
		return false
	}
	for i := range a.Arguments {
		if !backtraceKeyEqual(a.Arguments[i], b.Arguments[i]) {
			return false
		}
	}
	for i := range a.ReturnValue {
		if !backtraceKeyEqual(a.ReturnValue[i], b.ReturnValue[i]) {
			return false
		}
	}
	return true
}

type dedupKey struct {
	File  int
	Start int
	End   int
	Kind  diagnostic.Kind
}

// Context is the process-wide analysis state (spec.md §3 AnalysisContext):
// the symbol table, the work queue of globals left to revisit, memoized
// function outcomes, the reverse-dependency graph, the error-emission gate,
// and the collected diagnostics.
type Context struct {
	Symbols      *symbols.Table
	Queue        map[GlobalKey]struct{}
	Functions    map[GlobalKey]*FunctionOutcome
	ReverseDeps  map[GlobalKey]map[GlobalKey]struct{}
	AcceptErrors bool
	Errors       []diagnostic.Diagnostic

	// ResolveTags expands the raw tag list carried by a sink annotation
	// before it becomes a clearance label, letting a CLI-level config
	// substitute named presets for literal tags (config.Config's
	// SinkPresets). Defaults to the identity function.
	ResolveTags func([]string) []string

	seen map[dedupKey]struct{}
}

// NewContext builds an empty context with a fresh, predeclared-populated
// symbol table.
func NewContext() *Context {
	return &Context{
		Symbols:     symbols.New(),
		Queue:       make(map[GlobalKey]struct{}),
		Functions:   make(map[GlobalKey]*FunctionOutcome),
		ReverseDeps: make(map[GlobalKey]map[GlobalKey]struct{}),
		ResolveTags: func(tags []string) []string { return tags },
		seen:        make(map[dedupKey]struct{}),
	}
}

// Enqueue marks k for revisiting in the next fixed-point iteration.
// Re-enqueueing an already-queued key is a no-op, since Queue is a set.
func (c *Context) Enqueue(k GlobalKey) {
	c.Queue[k] = struct{}{}
}

// QueueLen reports how many globals are pending revisit.
func (c *Context) QueueLen() int { return len(c.Queue) }

// ResetQueue empties the queue, used by the driver at the start of each
// fixed-point iteration: entries carry over only if this iteration's
// visitation re-adds them via RequeueDependents or Enqueue.
func (c *Context) ResetQueue() {
	c.Queue = make(map[GlobalKey]struct{})
}

// AddReverseDependency records that enclosing's body reads, writes, or
// calls accessed, so that whenever accessed's backtrace or outcome changes,
// enclosing is revisited.
func (c *Context) AddReverseDependency(accessed, enclosing GlobalKey) {
	if accessed == enclosing {
		return
	}
	set, ok := c.ReverseDeps[accessed]
	if !ok {
		set = make(map[GlobalKey]struct{})
		c.ReverseDeps[accessed] = set
	}
	set[enclosing] = struct{}{}
}

// RequeueDependents enqueues every global that depends on of.
func (c *Context) RequeueDependents(of GlobalKey) {
	for dep := range c.ReverseDeps[of] {
		c.Enqueue(dep)
	}
}

// SetOutcome records outcome as the memoized summary for k and reports
// whether it differs from the previous summary.
func (c *Context) SetOutcome(k GlobalKey, outcome *FunctionOutcome) bool {
	prev := c.Functions[k]
	c.Functions[k] = outcome
	return !outcomeEqual(prev, outcome)
}

// Report records d, subject to the accept_errors gate and per-site
// deduplication: a diagnostic is emitted at most once per (file, location,
// kind), since the fixed-point driver's final reporting pass can otherwise
// observe the same sink violation once per file traversal order artifact.
func (c *Context) Report(d diagnostic.Diagnostic) {
	if !c.AcceptErrors {
		return
	}
	key := dedupKey{File: d.File, Start: d.Location.Start, End: d.Location.End, Kind: d.Kind}
	if _, ok := c.seen[key]; ok {
		return
	}
	c.seen[key] = struct{}{}
	c.Errors = append(c.Errors, d)
}

func labelOf(b *label.LabelBacktrace) label.Label {
	if b == nil {
		return label.Bottom
	}
	return b.Label
}

func globalKeyOf(sym *symbols.Symbol) (GlobalKey, bool) {
	if sym == nil || sym.Package == "" {
		return GlobalKey{}, false
	}
	return GlobalKey{Package: sym.Package, Name: sym.Name.Lexeme}, true
}
