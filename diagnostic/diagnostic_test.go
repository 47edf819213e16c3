package diagnostic_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/span"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, diagnostic.ExitCode(nil))
	assert.Equal(t, 1, diagnostic.ExitCode([]diagnostic.Diagnostic{
		diagnostic.New(diagnostic.UnknownSymbol, 1, span.Span{}, "x"),
	}))
}

func TestFlattenPreOrder(t *testing.T) {
	loc := span.Span{File: 1, Line: 3}
	b := label.NewExplicitAnnotation(1, loc, label.FromTags([]string{"secret"}))
	flat := diagnostic.Flatten(b)
	assert.Len(t, flat, 1)
	assert.Contains(t, flat[0].Message, "explicitly annotated")

	other := label.NewExplicitAnnotation(1, span.Span{File: 1, Line: 4}, label.FromTags([]string{"key"}))
	parent := label.FromChildren(label.Expression, 1, span.Span{File: 1, Line: 5}, nil, []*label.LabelBacktrace{b, other})
	flat = diagnostic.Flatten(parent)
	assert.Len(t, flat, 3)
	assert.Contains(t, flat[0].Message, "evaluates to")
	assert.Contains(t, flat[1].Message, "explicitly annotated")
	assert.Equal(t, 3, flat[1].Location.Line)
}

func TestWriteTextIncludesBacktrace(t *testing.T) {
	loc := span.Span{File: 1, Line: 3}
	bt := label.NewExplicitAnnotation(1, loc, label.FromTags([]string{"secret"}))
	d := diagnostic.NewInsecureFlow(diagnostic.FlowCall, 1, loc, label.Bottom, bt)

	var buf bytes.Buffer
	assert.NoError(t, diagnostic.WriteText(&buf, []diagnostic.Diagnostic{d}))
	out := buf.String()
	assert.Contains(t, out, "InsecureFlow")
	assert.Contains(t, out, "secret")
}

func TestWriteTextColorWrapsPrimaryLineInEscapes(t *testing.T) {
	loc := span.Span{File: 1, Line: 3}
	bt := label.NewExplicitAnnotation(1, loc, label.FromTags([]string{"secret"}))
	d := diagnostic.NewInsecureFlow(diagnostic.FlowCall, 1, loc, label.Bottom, bt)

	var plain, colored bytes.Buffer
	assert.NoError(t, diagnostic.WriteTextColor(&plain, []diagnostic.Diagnostic{d}, false))
	assert.NoError(t, diagnostic.WriteTextColor(&colored, []diagnostic.Diagnostic{d}, true))

	assert.Greater(t, len(colored.String()), len(plain.String()))
	assert.Contains(t, colored.String(), "\x1b[")
	assert.NotContains(t, plain.String(), "\x1b[")
}

func TestWriteYAMLIncludesKindAndMessage(t *testing.T) {
	d := diagnostic.New(diagnostic.Redeclaration, 2, span.Span{Line: 5}, "x redeclared")
	var buf bytes.Buffer
	assert.NoError(t, diagnostic.WriteYAML(&buf, []diagnostic.Diagnostic{d}))
	assert.Contains(t, buf.String(), "Redeclaration")
	assert.Contains(t, buf.String(), "x redeclared")
}
