// Package label implements the confidentiality lattice (spec.md §3, §4.1):
// tags, label values (⊤ / a finite set of tags / ⊥), and label backtraces
// (provenance trees), plus the pure set algebra used everywhere else in the
// analyzer.
package label

import (
	"sort"
	"strings"
)

// Order is the result of comparing two labels in the lattice's partial
// order.
type Order int

const (
	Incomparable Order = iota
	Less
	Equal
	Greater
)

// kind discriminates the three lattice elements.
type kind int

const (
	kindBottom kind = iota
	kindParts
	kindTop
)

// Label is an element of the confidentiality lattice: ⊤, a non-empty set of
// tags, or ⊥. The zero value is ⊥.
//
// Parts(∅) must never be constructible: every constructor that would
// produce an empty tag set collapses to ⊥ instead (spec.md §4.1).
type Label struct {
	kind kind
	tags map[Tag]struct{}
}

// Bottom is the lattice's least element, the zero Label.
var Bottom = Label{kind: kindBottom}

// Top is the lattice's greatest element.
var Top = Label{kind: kindTop}

// FromTags builds a label from a list of concrete tag strings. An empty
// list yields ⊥.
func FromTags(tags []string) Label {
	if len(tags) == 0 {
		return Bottom
	}
	set := make(map[Tag]struct{}, len(tags))
	for _, t := range tags {
		set[Concrete(t)] = struct{}{}
	}
	return Label{kind: kindParts, tags: set}
}

// FromSynthetic builds Parts({Synthetic(i)}), the label of a function's
// i-th formal parameter before any call-site substitution.
func FromSynthetic(i int) Label {
	return Label{kind: kindParts, tags: map[Tag]struct{}{Synthetic(i): {}}}
}

// fromTagSet builds a Label from an already-built tag set, collapsing an
// empty set to Bottom. Internal helper used by union/intersect/difference.
func fromTagSet(set map[Tag]struct{}) Label {
	if len(set) == 0 {
		return Bottom
	}
	return Label{kind: kindParts, tags: set}
}

// IsBottom reports whether l is ⊥.
func (l Label) IsBottom() bool { return l.kind == kindBottom }

// IsTop reports whether l is ⊤.
func (l Label) IsTop() bool { return l.kind == kindTop }

// Tags returns the label's tag set in deterministic sorted order. Returns
// nil for ⊤ and ⊥.
func (l Label) Tags() []Tag {
	if l.kind != kindParts {
		return nil
	}
	out := make([]Tag, 0, len(l.tags))
	for t := range l.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Equal reports whether two labels denote the same lattice element.
func (l Label) Equal(other Label) bool {
	if l.kind != other.kind {
		return false
	}
	if l.kind != kindParts {
		return true
	}
	if len(l.tags) != len(other.tags) {
		return false
	}
	for t := range l.tags {
		if _, ok := other.tags[t]; !ok {
			return false
		}
	}
	return true
}

// Union is the lattice's least-upper-bound: ⊤ absorbs, ⊥ is the identity.
func (l Label) Union(other Label) Label {
	if l.kind == kindTop || other.kind == kindTop {
		return Top
	}
	if l.kind == kindBottom {
		return other
	}
	if other.kind == kindBottom {
		return l
	}
	merged := make(map[Tag]struct{}, len(l.tags)+len(other.tags))
	for t := range l.tags {
		merged[t] = struct{}{}
	}
	for t := range other.tags {
		merged[t] = struct{}{}
	}
	return fromTagSet(merged)
}

// Intersect is the lattice's greatest-lower-bound: ⊥ absorbs, ⊤ is the
// identity.
func (l Label) Intersect(other Label) Label {
	if l.kind == kindBottom || other.kind == kindBottom {
		return Bottom
	}
	if l.kind == kindTop {
		return other
	}
	if other.kind == kindTop {
		return l
	}
	result := make(map[Tag]struct{})
	for t := range l.tags {
		if _, ok := other.tags[t]; ok {
			result[t] = struct{}{}
		}
	}
	return fromTagSet(result)
}

// Difference returns the tags in l that are not in other. It returns ⊥ when
// l is entirely contained in other, when l is ⊥, or when other is ⊤
// (spec.md §4.1).
func (l Label) Difference(other Label) Label {
	if l.kind == kindBottom || other.kind == kindTop {
		return Bottom
	}
	if l.kind == kindTop {
		// ⊤ minus anything short of ⊤ is still ⊤: there is no finite tag
		// set whose removal could exhaust an unbounded label.
		return Top
	}
	if other.kind == kindBottom {
		return l
	}
	result := make(map[Tag]struct{}, len(l.tags))
	for t := range l.tags {
		if _, ok := other.tags[t]; !ok {
			result[t] = struct{}{}
		}
	}
	return fromTagSet(result)
}

// Compare returns the partial-order relationship of l to other: ⊥ ≤
// everything ≤ ⊤; between two Parts sets, order is subset-based, and
// Incomparable when neither is a subset of the other (spec.md §4.1 — this
// is the core source of flow errors).
func (l Label) Compare(other Label) Order {
	if l.Equal(other) {
		return Equal
	}
	switch {
	case l.kind == kindBottom:
		return Less
	case other.kind == kindBottom:
		return Greater
	case l.kind == kindTop:
		return Greater
	case other.kind == kindTop:
		return Less
	}
	lSubOther := isSubset(l.tags, other.tags)
	otherSubL := isSubset(other.tags, l.tags)
	switch {
	case lSubOther:
		return Less
	case otherSubL:
		return Greater
	default:
		return Incomparable
	}
}

func isSubset(a, b map[Tag]struct{}) bool {
	for t := range a {
		if _, ok := b[t]; !ok {
			return false
		}
	}
	return true
}

// ExceedsClearance reports whether l exceeds the clearance sink, i.e.
// whether a flow check against sink must fail: true when the comparison is
// Incomparable or Greater (spec.md §4.1, §4.11).
func (l Label) ExceedsClearance(sink Label) bool {
	switch l.Compare(sink) {
	case Incomparable, Greater:
		return true
	default:
		return false
	}
}

// ReplaceSyntheticTags substitutes each Synthetic(i) tag with
// replacements[i] (unioning results together), leaving a synthetic tag with
// no matching replacement untouched and keeping concrete tags verbatim
// (spec.md §4.1).
func (l Label) ReplaceSyntheticTags(replacements []Label) Label {
	if l.kind != kindParts {
		return l
	}
	result := Bottom
	for t := range l.tags {
		if idx, ok := t.IsSynthetic(); ok {
			if idx < len(replacements) {
				result = result.Union(replacements[idx])
				continue
			}
			result = result.Union(Label{kind: kindParts, tags: map[Tag]struct{}{t: {}}})
			continue
		}
		result = result.Union(Label{kind: kindParts, tags: map[Tag]struct{}{t: {}}})
	}
	return result
}

// RemoveTag returns l with tag removed, collapsing to ⊥ if that was the
// only tag. Used when summarizing function parameters: the synthetic
// self-tag is stripped so the outcome describes only the mutation the body
// performs (spec.md §4.2 remove_tag).
func (l Label) RemoveTag(tag Tag) Label {
	if l.kind != kindParts {
		return l
	}
	return l.Difference(Label{kind: kindParts, tags: map[Tag]struct{}{tag: {}}})
}

// String renders the label for diagnostics: "⊤", "⊥", or "{a, b, c}".
func (l Label) String() string {
	switch l.kind {
	case kindTop:
		return "⊤"
	case kindBottom:
		return "⊥"
	default:
		tags := l.Tags()
		parts := make([]string, len(tags))
		for i, t := range tags {
			parts[i] = t.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
}
