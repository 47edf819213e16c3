package label

import "fmt"

// Tag is one element contributing to a Label: either a concrete,
// source-declared name, or a synthetic placeholder standing for a
// function's i-th parameter label (spec.md §3 LabelTag).
type Tag struct {
	concrete  string
	synthetic int
	isSynth   bool
}

// Concrete builds a source-declared tag.
func Concrete(name string) Tag { return Tag{concrete: name} }

// Synthetic builds a placeholder tag for a function's i-th parameter.
func Synthetic(index int) Tag { return Tag{synthetic: index, isSynth: true} }

// IsSynthetic reports whether this tag is a parameter placeholder, and if
// so its index.
func (t Tag) IsSynthetic() (int, bool) { return t.synthetic, t.isSynth }

// Key is a value usable as a map key (Tag already is comparable, Key exists
// for readability at call sites).
func (t Tag) Key() Tag { return t }

func (t Tag) String() string {
	if t.isSynth {
		return fmt.Sprintf("#%d", t.synthetic)
	}
	return t.concrete
}

// Less provides a total order over tags so Label's internal set has a
// deterministic iteration/printing order: concrete tags sort
// lexicographically before synthetic ones, which sort by index.
func (t Tag) Less(other Tag) bool {
	if t.isSynth != other.isSynth {
		return !t.isSynth
	}
	if t.isSynth {
		return t.synthetic < other.synthetic
	}
	return t.concrete < other.concrete
}
