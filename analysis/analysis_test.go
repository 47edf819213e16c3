package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taintflow/ifc/analysis"
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/parser"
)

func parseFile(t *testing.T, id int, src string) analysis.File {
	t.Helper()
	tree, err := parser.Parse(id, []byte(src))
	require.NoError(t, err)
	return analysis.File{ID: id, Tree: tree}
}

func kinds(diags []diagnostic.Diagnostic) []diagnostic.Kind {
	out := make([]diagnostic.Kind, len(diags))
	for i, d := range diags {
		out[i] = d.Kind
	}
	return out
}

// A secret assigned straight into a sink with insufficient clearance must be
// flagged. Annotation comments attach to the next admitting token, so a
// var group's annotation is written on the line above it.
func TestDirectFlowIntoSink(t *testing.T) {
	src := `package main

// label::{secret}
var secret string

func main() {
	// sink::{public}
	var out string
	out = secret
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InsecureFlow, diags[0].Kind)
}

// A sink whose clearance already covers the source tag sees no violation.
func TestCoveredSinkIsClean(t *testing.T) {
	src := `package main

// label::{secret}
var secret string

func main() {
	// sink::{secret,public}
	var out string
	out = secret
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	assert.Empty(t, diags)
}

// declassify replaces the computed label rather than joining it, so a
// declassified copy is clean even though the source was tainted.
func TestDeclassifyClearsSink(t *testing.T) {
	src := `package main

// label::{secret}
var secret string

func main() {
	// declassify::{public}
	var cleaned string
	cleaned = secret
	// sink::{public}
	var out string
	out = cleaned
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	assert.Empty(t, diags)
}

// A branch taken on a tainted condition propagates the condition's label
// into every write inside the branch, even though the write's own
// right-hand side is untainted.
func TestImplicitFlowThroughBranch(t *testing.T) {
	src := `package main

// label::{secret}
var secret bool

func main() {
	// sink::{public}
	var out string
	if secret {
		out = "x"
	}
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InsecureFlow, diags[0].Kind)
}

// A function's return value is tainted by whatever label its formal
// parameter carried at the call site (synthetic tag substitution).
func TestFunctionReturnPropagatesArgumentLabel(t *testing.T) {
	src := `package main

// label::{secret}
var secret string

func identity(x string) string {
	return x
}

func main() {
	// sink::{public}
	var out string
	out = identity(secret)
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InsecureFlow, diags[0].Kind)
}

// A function that mutates one of its parameters propagates that mutation's
// label back into the caller's argument variable.
func TestFunctionArgumentMutationPropagatesBack(t *testing.T) {
	src := `package main

// label::{secret}
var secret string

func taint(dst string) string {
	dst = secret
	return dst
}

func main() {
	var buf string
	buf = taint(buf)
	// sink::{public}
	var out string
	out = buf
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InsecureFlow, diags[0].Kind)
}

// A value sent over a channel and received elsewhere carries its label
// across the send/receive boundary.
func TestChannelSendReceiveCarriesLabel(t *testing.T) {
	src := `package main

// label::{secret}
var secret string

func main() {
	var ch string
	ch
	// sink::{secret}
	<- secret
	// sink::{public}
	var out string
	out = <-ch
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InsecureFlow, diags[0].Kind)
}

// Referencing an identifier that was never declared is reported once, not
// once per fixed-point pass.
func TestUnknownSymbolReportedOnce(t *testing.T) {
	src := `package main

func main() {
	var out string
	out = missing
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.UnknownSymbol, diags[0].Kind)
}

// Assigning through a plain literal left side, rather than a name, is
// structurally invalid.
func TestInvalidLeftValue(t *testing.T) {
	src := `package main

func main() {
	1 = 2
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InvalidLeftValue, diags[0].Kind)
}

// Redeclaring a name already bound in the same local scope is reported.
func TestRedeclarationInSameScope(t *testing.T) {
	src := `package main

func main() {
	var x string
	var x string
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.Redeclaration, diags[0].Kind)
}

// Redeclaring a top-level name is reported too, whether the second
// declaration is another binding or a function sharing the name.
func TestRedeclarationAtGlobalScope(t *testing.T) {
	src := `package main

var x string
var x string

func main() {
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.Redeclaration, diags[0].Kind)
}

// A function declared under a name already used by a top-level binding in
// another file of the same package is also a redeclaration.
func TestRedeclarationBetweenFunctionAndGlobalVar(t *testing.T) {
	a := parseFile(t, 1, `package main

var helper string
`)
	b := parseFile(t, 2, `package main

func helper() {
}

func main() {
}
`)
	diags := analysis.Analyze([]analysis.File{a, b})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.Redeclaration, diags[0].Kind)
}

// A global referenced from another file in the same analysis run resolves
// across file boundaries.
func TestCrossFileGlobalResolution(t *testing.T) {
	a := parseFile(t, 1, `package main

// label::{secret}
var secret string
`)
	b := parseFile(t, 2, `package main

func main() {
	// sink::{public}
	var out string
	out = secret
}
`)
	diags := analysis.Analyze([]analysis.File{a, b})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.InsecureFlow, diags[0].Kind)
	assert.Equal(t, 2, diags[0].File)
}

// An uneven short variable declaration (mismatched name/value counts) is
// reported instead of silently dropping the extra name.
func TestUnevenShortVarDecl(t *testing.T) {
	src := `package main

func main() {
	x, y := 1
	var z int
	z = x
	z = y
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.NotEmpty(t, diags)
	assert.Contains(t, kinds(diags), diagnostic.UnevenShortVarDecl)
}

// go statements require a call expression; a bare literal is rejected.
func TestGoRequiresCall(t *testing.T) {
	src := `package main

func main() {
	go 1
}
`
	f := parseFile(t, 1, src)
	diags := analysis.Analyze([]analysis.File{f})
	require.NotEmpty(t, diags)
	assert.Contains(t, kinds(diags), diagnostic.GoNotCall)
}
