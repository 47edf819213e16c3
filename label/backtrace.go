package label

import (
	"encoding/binary"

	"github.com/minio/highwayhash"

	"github.com/taintflow/ifc/span"
)

// Kind discriminates why a backtrace node exists (spec.md §3
// LabelBacktraceKind).
type Kind int

const (
	ExplicitAnnotation Kind = iota
	Assignment
	Expression
	Branch
	FunctionArgument
	FunctionArgumentMutation
	FunctionCall
	Return
	Send
	Receive
)

// backtraceHashKey is a fixed 32-byte key for highwayhash, matching the
// teacher's graph-node hashing convention of a static project-wide key
// rather than a per-call nonce.
var backtraceHashKey = [32]byte{
	0x74, 0x61, 0x69, 0x6e, 0x74, 0x66, 0x6c, 0x6f,
	0x77, 0x2d, 0x62, 0x61, 0x63, 0x6b, 0x74, 0x72,
	0x61, 0x63, 0x65, 0x2d, 0x68, 0x61, 0x73, 0x68,
	0x2d, 0x6b, 0x65, 0x79, 0x2d, 0x76, 0x31, 0x00,
}

// BacktraceKey is a stable identity hash of a backtrace node, built from its
// kind, file, location, optional symbol and label (children are not
// hashed). The analysis package compares keys to decide whether a symbol's
// backtrace or a function's outcome changed between visits.
type BacktraceKey uint64

// LabelBacktrace is a provenance tree explaining how a Label was derived:
// each node names the site that contributed some portion of the label, and
// its children partition that contribution further (spec.md §3, §4.2).
//
// Invariants, all maintained by the constructors in this file and never by
// direct struct literals: children have pairwise-disjoint labels, each
// child's label is a subset of its parent's, no node has label ⊥, and a
// node with exactly one child sharing its label/location/symbol collapses
// to that child.
type LabelBacktrace struct {
	Kind     Kind
	File     int
	Location span.Span
	Symbol   *span.Span
	Label    Label
	Children []*LabelBacktrace
}

func symbolEqual(a, b *span.Span) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Key hashes the node's identity for change detection between visits.
func (b *LabelBacktrace) Key() BacktraceKey {
	if b == nil {
		return 0
	}
	h, err := highwayhash.New64(backtraceHashKey[:])
	if err != nil {
		// backtraceHashKey is a fixed 32-byte constant; New64 only ever
		// fails on a wrong-length key.
		panic(err)
	}
	var buf [8]byte
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	write(uint64(b.Kind))
	write(uint64(b.File))
	write(uint64(b.Location.Start))
	write(uint64(b.Location.End))
	if b.Symbol != nil {
		write(1)
		write(uint64(b.Symbol.Start))
		write(uint64(b.Symbol.End))
	} else {
		write(0)
	}
	for _, t := range b.Label.Tags() {
		h.Write([]byte(t.String()))
	}
	return BacktraceKey(h.Sum64())
}

// restrictToLabel returns b's contribution restricted to target: its own
// label intersected with target, and (recursively) its children restricted
// to that narrowed label. Returns nil if nothing survives.
//
// When the restriction leaves the label unchanged, b itself is returned
// unmodified: this is what gives New its structural-sharing collapse, and
// it is the round-trip property restrict_to_label(b, b.Label) == b that
// the backtrace lattice laws rely on.
func restrictToLabel(b *LabelBacktrace, target Label) *LabelBacktrace {
	if b == nil {
		return nil
	}
	narrowed := b.Label.Intersect(target)
	if narrowed.IsBottom() {
		return nil
	}
	if narrowed.Equal(b.Label) {
		return b
	}
	var children []*LabelBacktrace
	for _, c := range b.Children {
		if rc := restrictToLabel(c, narrowed); rc != nil {
			children = append(children, rc)
		}
	}
	if len(children) == 1 && children[0].Label.Equal(narrowed) &&
		children[0].Location == b.Location && symbolEqual(children[0].Symbol, b.Symbol) {
		return children[0]
	}
	return &LabelBacktrace{Kind: b.Kind, File: b.File, Location: b.Location, Symbol: b.Symbol, Label: narrowed, Children: children}
}

// New builds a backtrace node for lbl at (file, location, symbol), greedily
// partitioning children against the parent label: each child in order is
// restricted to whatever portion of lbl remains uncovered, then that
// portion is subtracted from what's left for later children. Children that
// restrict to ⊥ are dropped entirely (spec.md §4.2).
//
// Returns nil if lbl is ⊥: a backtrace never carries the bottom label, by
// construction rather than by caller discipline.
func New(kind Kind, file int, location span.Span, symbol *span.Span, lbl Label, children []*LabelBacktrace) *LabelBacktrace {
	if lbl.IsBottom() {
		return nil
	}
	remaining := lbl
	var kept []*LabelBacktrace
	for _, child := range children {
		contribution := restrictToLabel(child, remaining)
		if contribution == nil {
			continue
		}
		kept = append(kept, contribution)
		remaining = remaining.Difference(contribution.Label)
	}
	if len(kept) == 1 && kept[0].Label.Equal(lbl) &&
		kept[0].Location == location && symbolEqual(kept[0].Symbol, symbol) {
		return kept[0]
	}
	return &LabelBacktrace{Kind: kind, File: file, Location: location, Symbol: symbol, Label: lbl, Children: kept}
}

// NewExplicitAnnotation builds a childless leaf for a source-level
// `label::{...}` annotation attached to symbol.
func NewExplicitAnnotation(file int, symbol span.Span, lbl Label) *LabelBacktrace {
	return New(ExplicitAnnotation, file, symbol, &symbol, lbl, nil)
}

// FromChildren unions every child's label and builds the parent node from
// that union, so the parent always exactly covers what its children
// contribute.
func FromChildren(kind Kind, file int, location span.Span, symbol *span.Span, children []*LabelBacktrace) *LabelBacktrace {
	union := Bottom
	for _, c := range children {
		if c == nil {
			continue
		}
		union = union.Union(c.Label)
	}
	return New(kind, file, location, symbol, union, children)
}

// WithChild re-roots b with one additional child, widening b's label to
// cover the child's contribution.
func WithChild(b *LabelBacktrace, child *LabelBacktrace) *LabelBacktrace {
	if child == nil {
		return b
	}
	if b == nil {
		return New(child.Kind, child.File, child.Location, child.Symbol, child.Label, []*LabelBacktrace{child})
	}
	widened := b.Label.Union(child.Label)
	children := append(append([]*LabelBacktrace{}, b.Children...), child)
	return New(b.Kind, b.File, b.Location, b.Symbol, widened, children)
}

// Union merges a and b into a new node at (location, symbol), covering both
// contributions. Either argument may be nil.
func Union(a, b *LabelBacktrace, kind Kind, file int, location span.Span, symbol *span.Span) *LabelBacktrace {
	lbl := Bottom
	var children []*LabelBacktrace
	if a != nil {
		lbl = lbl.Union(a.Label)
		children = append(children, a)
	}
	if b != nil {
		lbl = lbl.Union(b.Label)
		children = append(children, b)
	}
	return New(kind, file, location, symbol, lbl, children)
}

// ReplaceSyntheticTags rebuilds b with every Synthetic(i) tag substituted
// per replacements, recursively. A branch whose label collapses entirely to
// ⊥ after substitution (e.g. a child that only ever carried a synthetic tag
// with no matching replacement contribution) is pruned rather than kept
// with a bottom label.
func (b *LabelBacktrace) ReplaceSyntheticTags(replacements []Label) *LabelBacktrace {
	if b == nil {
		return nil
	}
	newLabel := b.Label.ReplaceSyntheticTags(replacements)
	if newLabel.IsBottom() {
		return nil
	}
	var children []*LabelBacktrace
	for _, c := range b.Children {
		if rc := c.ReplaceSyntheticTags(replacements); rc != nil {
			children = append(children, rc)
		}
	}
	return New(b.Kind, b.File, b.Location, b.Symbol, newLabel, children)
}

// RemoveTag strips tag from b's label (and recursively from its children),
// used to turn a function-argument backtrace carrying the parameter's own
// synthetic self-tag into one describing only what the body derives from
// it.
func (b *LabelBacktrace) RemoveTag(tag Tag) *LabelBacktrace {
	if b == nil {
		return nil
	}
	newLabel := b.Label.RemoveTag(tag)
	if newLabel.IsBottom() {
		return nil
	}
	var children []*LabelBacktrace
	for _, c := range b.Children {
		if rc := c.RemoveTag(tag); rc != nil {
			children = append(children, rc)
		}
	}
	return New(b.Kind, b.File, b.Location, b.Symbol, newLabel, children)
}
