// Package diagnostic defines the analyzer's output diagnostics (spec.md
// §6), flattening of label backtraces into reportable secondary labels, and
// the text/YAML renderers consumed by cmd/ifcanalyze.
package diagnostic

import (
	"fmt"

	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/span"
)

// Kind identifies which rule produced a diagnostic.
type Kind int

const (
	Parsing Kind = iota
	UnknownSymbol
	Redeclaration
	MultiComplexAssignment
	UnevenAssignment
	InvalidLeftValue
	ImmutableLeftValue
	UnevenShortVarDecl
	GoNotCall
	UnsupportedChannelExpr
	InsecureFlow
)

func (k Kind) String() string {
	switch k {
	case Parsing:
		return "Parsing"
	case UnknownSymbol:
		return "UnknownSymbol"
	case Redeclaration:
		return "Redeclaration"
	case MultiComplexAssignment:
		return "MultiComplexAssignment"
	case UnevenAssignment:
		return "UnevenAssignment"
	case InvalidLeftValue:
		return "InvalidLeftValue"
	case ImmutableLeftValue:
		return "ImmutableLeftValue"
	case UnevenShortVarDecl:
		return "UnevenShortVarDecl"
	case GoNotCall:
		return "GoNotCall"
	case UnsupportedChannelExpr:
		return "UnsupportedChannelExpr"
	case InsecureFlow:
		return "InsecureFlow"
	default:
		return "Unknown"
	}
}

// FlowKind distinguishes the three sites the single sink-check rule serves
// (spec.md §4.11).
type FlowKind int

const (
	FlowAssignment FlowKind = iota
	FlowCall
	FlowSend
)

func (k FlowKind) String() string {
	switch k {
	case FlowAssignment:
		return "Assignment"
	case FlowCall:
		return "Call"
	case FlowSend:
		return "Send"
	default:
		return "Unknown"
	}
}

// Diagnostic is one reported finding. Message is populated for the
// structural kinds; SinkLabel and Backtrace are populated only for
// InsecureFlow.
type Diagnostic struct {
	Kind      Kind
	File      int
	Location  span.Span
	Message   string
	FlowKind  FlowKind
	SinkLabel label.Label
	Backtrace *label.LabelBacktrace
}

// New builds a structural diagnostic (every kind except InsecureFlow).
func New(kind Kind, file int, loc span.Span, message string) Diagnostic {
	return Diagnostic{Kind: kind, File: file, Location: loc, Message: message}
}

// NewInsecureFlow builds the sink-check diagnostic: a value carrying
// backtrace's label reached a sink declaring sinkLabel, and their relation
// in the lattice order is incomparable or greater.
func NewInsecureFlow(flowKind FlowKind, file int, loc span.Span, sinkLabel label.Label, backtrace *label.LabelBacktrace) Diagnostic {
	return Diagnostic{
		Kind:      InsecureFlow,
		File:      file,
		Location:  loc,
		FlowKind:  flowKind,
		SinkLabel: sinkLabel,
		Backtrace: backtrace,
	}
}

// SecondaryLabel is one line of a flattened backtrace: a location plus the
// human-readable reason that location contributed to the overall label.
type SecondaryLabel struct {
	File     int
	Location span.Span
	Message  string
}

// Flatten renders b and every descendant as one SecondaryLabel each, in
// pre-order: root first, then each child (spec.md §6 "root plus each child
// yields one secondary label").
func Flatten(b *label.LabelBacktrace) []SecondaryLabel {
	if b == nil {
		return nil
	}
	out := []SecondaryLabel{{File: b.File, Location: b.Location, Message: backtraceKindMessage(b.Kind, b.Label)}}
	for _, c := range b.Children {
		out = append(out, Flatten(c)...)
	}
	return out
}

func backtraceKindMessage(kind label.Kind, lbl label.Label) string {
	switch kind {
	case label.ExplicitAnnotation:
		return fmt.Sprintf("has been explicitly annotated with label %s", lbl)
	case label.Assignment:
		return fmt.Sprintf("has been assigned a value that has label %s", lbl)
	case label.Expression:
		return fmt.Sprintf("evaluates to a value with label %s", lbl)
	case label.Branch:
		return fmt.Sprintf("is reachable only under a branch condition with label %s", lbl)
	case label.FunctionArgument:
		return fmt.Sprintf("receives an argument with label %s", lbl)
	case label.FunctionArgumentMutation:
		return fmt.Sprintf("is mutated by a call with label %s", lbl)
	case label.FunctionCall:
		return fmt.Sprintf("calls a function returning a value with label %s", lbl)
	case label.Return:
		return fmt.Sprintf("returns a value with label %s", lbl)
	case label.Send:
		return fmt.Sprintf("is sent a value with label %s", lbl)
	case label.Receive:
		return fmt.Sprintf("receives from a channel with label %s", lbl)
	default:
		return fmt.Sprintf("has label %s", lbl)
	}
}

// Summary renders the one-line human-readable message for d, independent of
// any backtrace flattening.
func (d Diagnostic) Summary() string {
	switch d.Kind {
	case InsecureFlow:
		return fmt.Sprintf("insecure flow (%s): value with label %s exceeds sink clearance %s", d.FlowKind, d.backtraceLabel(), d.SinkLabel)
	default:
		return d.Message
	}
}

func (d Diagnostic) backtraceLabel() label.Label {
	if d.Backtrace == nil {
		return label.Bottom
	}
	return d.Backtrace.Label
}

// ExitCode implements the rule: 0 if diags is empty, non-zero otherwise.
func ExitCode(diags []Diagnostic) int {
	if len(diags) == 0 {
		return 0
	}
	return 1
}
