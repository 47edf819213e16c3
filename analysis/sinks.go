package analysis

import (
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/span"
)

// checkSink implements the single sink-check rule (spec.md §4.11) shared by
// assignment, call-argument, and send sinks: a value whose label is
// incomparable with or greater than the sink's declared clearance is an
// insecure flow.
func checkSink(fc *FileContext, kind diagnostic.FlowKind, loc span.Span, sinkLabel label.Label, bt *label.LabelBacktrace) {
	if labelOf(bt).ExceedsClearance(sinkLabel) {
		fc.Ctx.Report(diagnostic.NewInsecureFlow(kind, fc.File, loc, sinkLabel, bt))
	}
}
