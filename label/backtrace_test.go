package label_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/span"
)

func sp(start, end int) span.Span {
	return span.Span{File: 1, Start: start, End: end, Line: 1, Lexeme: "x"}
}

func TestNewCollapsesBottomLabel(t *testing.T) {
	b := label.New(label.Assignment, 1, sp(0, 1), nil, label.Bottom, nil)
	assert.Nil(t, b)
}

func TestNewPartitionsDisjointChildren(t *testing.T) {
	secret := label.NewExplicitAnnotation(1, sp(0, 1), label.FromTags([]string{"secret"}))
	public := label.NewExplicitAnnotation(1, sp(1, 2), label.FromTags([]string{"public"}))

	parent := label.New(label.Assignment, 1, sp(2, 3), nil,
		label.FromTags([]string{"secret", "public"}), []*label.LabelBacktrace{secret, public})

	assert.NotNil(t, parent)
	assert.True(t, parent.Label.Equal(label.FromTags([]string{"secret", "public"})))
	assert.Len(t, parent.Children, 2)
	assert.True(t, parent.Children[0].Label.Intersect(parent.Children[1].Label).IsBottom(), "children must be pairwise disjoint")
	for _, c := range parent.Children {
		assert.False(t, c.Label.IsBottom())
	}
}

func TestNewDropsOverlappingContribution(t *testing.T) {
	secret := label.NewExplicitAnnotation(1, sp(0, 1), label.FromTags([]string{"secret"}))
	// second child contributes nothing new once "secret" is already covered.
	dup := label.NewExplicitAnnotation(1, sp(1, 2), label.FromTags([]string{"secret"}))

	parent := label.New(label.Assignment, 1, sp(2, 3), nil,
		label.FromTags([]string{"secret"}), []*label.LabelBacktrace{secret, dup})

	assert.NotNil(t, parent)
	// secret alone already equals the parent's label and location would
	// differ, so no collapse happens, but dup contributes nothing and is
	// dropped, leaving a single child.
	assert.Len(t, parent.Children, 1)
}

func TestNewSingleChildCollapse(t *testing.T) {
	loc := sp(5, 6)
	sym := loc
	child := label.New(label.ExplicitAnnotation, 1, loc, &sym, label.FromTags([]string{"secret"}), nil)

	parent := label.New(label.Assignment, 1, loc, &sym, label.FromTags([]string{"secret"}), []*label.LabelBacktrace{child})

	assert.Same(t, child, parent, "single child matching label/location/symbol must collapse to that child")
}

func TestFromChildrenUnionsLabels(t *testing.T) {
	secret := label.NewExplicitAnnotation(1, sp(0, 1), label.FromTags([]string{"secret"}))
	public := label.NewExplicitAnnotation(1, sp(1, 2), label.FromTags([]string{"public"}))

	b := label.FromChildren(label.Expression, 1, sp(2, 3), nil, []*label.LabelBacktrace{secret, public})
	assert.True(t, b.Label.Equal(label.FromTags([]string{"secret", "public"})))
}

func TestWithChildWidensLabel(t *testing.T) {
	base := label.NewExplicitAnnotation(1, sp(0, 1), label.FromTags([]string{"secret"}))
	extra := label.NewExplicitAnnotation(1, sp(1, 2), label.FromTags([]string{"public"}))

	widened := label.WithChild(base, extra)
	assert.True(t, widened.Label.Equal(label.FromTags([]string{"secret", "public"})))
}

func TestUnionBacktraces(t *testing.T) {
	a := label.NewExplicitAnnotation(1, sp(0, 1), label.FromTags([]string{"a"}))
	b := label.NewExplicitAnnotation(1, sp(1, 2), label.FromTags([]string{"b"}))

	u := label.Union(a, b, label.Expression, 1, sp(2, 3), nil)
	assert.True(t, u.Label.Equal(label.FromTags([]string{"a", "b"})))

	ub := label.Union(nil, b, label.Expression, 1, sp(2, 3), nil)
	assert.Same(t, b, ub.Children[0])
}

func TestReplaceSyntheticTagsPrunesBottomBranches(t *testing.T) {
	self := label.NewExplicitAnnotation(1, sp(0, 1), label.FromSynthetic(0))
	extra := label.NewExplicitAnnotation(1, sp(1, 2), label.FromTags([]string{"extra"}))

	parent := label.FromChildren(label.FunctionArgument, 1, sp(2, 3), nil, []*label.LabelBacktrace{self, extra})

	// no replacement supplied for Synthetic(0): it is kept as-is, not pruned.
	kept := parent.ReplaceSyntheticTags(nil)
	assert.NotNil(t, kept)
	assert.True(t, kept.Label.Equal(label.FromSynthetic(0).Union(label.FromTags([]string{"extra"}))))

	replaced := parent.ReplaceSyntheticTags([]label.Label{label.FromTags([]string{"secret"})})
	assert.True(t, replaced.Label.Equal(label.FromTags([]string{"secret", "extra"})))

	// a ⊥ replacement empties the self branch, which is pruned.
	pruned := parent.ReplaceSyntheticTags([]label.Label{label.Bottom})
	assert.True(t, pruned.Label.Equal(label.FromTags([]string{"extra"})))
	assert.Len(t, pruned.Children, 1)
}

func TestBacktraceRemoveTag(t *testing.T) {
	self := label.Synthetic(0)
	arg := label.FromChildren(label.FunctionArgument, 1, sp(0, 1), nil, []*label.LabelBacktrace{
		label.NewExplicitAnnotation(1, sp(0, 1), label.FromSynthetic(0)),
		label.NewExplicitAnnotation(1, sp(1, 2), label.FromTags([]string{"mutated"})),
	})

	stripped := arg.RemoveTag(self)
	assert.True(t, stripped.Label.Equal(label.FromTags([]string{"mutated"})))
}

func TestBacktraceKeyStableAndDistinct(t *testing.T) {
	a := label.NewExplicitAnnotation(1, sp(0, 1), label.FromTags([]string{"secret"}))
	b := label.NewExplicitAnnotation(1, sp(0, 1), label.FromTags([]string{"secret"}))
	c := label.NewExplicitAnnotation(1, sp(1, 2), label.FromTags([]string{"secret"}))

	assert.Equal(t, a.Key(), b.Key(), "structurally identical nodes hash the same")
	assert.NotEqual(t, a.Key(), c.Key(), "different locations hash differently")
	assert.Equal(t, label.BacktraceKey(0), (*label.LabelBacktrace)(nil).Key())
}
