package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/span"
	"github.com/taintflow/ifc/symbols"
)

func TestPredeclaredFallback(t *testing.T) {
	t1 := symbols.New()
	sym, ok := t1.Get("main", "len")
	assert.True(t, ok)
	assert.False(t, sym.Mutable)
	assert.True(t, sym.Label().IsBottom())

	_, ok = t1.Get("main", "not_a_builtin")
	assert.False(t, ok)
}

func TestGlobalScopeQualifiedByPackage(t *testing.T) {
	tbl := symbols.New()
	sym := &symbols.Symbol{Package: "main", Name: span.Span{Lexeme: "x"}, Mutable: true}
	prev := tbl.CreateSymbol("main", "x", sym)
	assert.Nil(t, prev)

	got, ok := tbl.Get("main", "x")
	assert.True(t, ok)
	assert.Same(t, sym, got)

	_, ok = tbl.Get("other", "x")
	assert.False(t, ok, "a global declared in one package must not resolve under another package's qualifier")
}

func TestRedeclarationReturnsPrevious(t *testing.T) {
	tbl := symbols.New()
	first := &symbols.Symbol{Package: "main", Name: span.Span{Lexeme: "x"}}
	second := &symbols.Symbol{Package: "main", Name: span.Span{Lexeme: "x"}}

	assert.Nil(t, tbl.CreateSymbol("main", "x", first))
	assert.Same(t, first, tbl.CreateSymbol("main", "x", second))
}

func TestNestedScopeShadowsGlobal(t *testing.T) {
	tbl := symbols.New()
	tbl.CreateSymbol("main", "x", &symbols.Symbol{Package: "main", Name: span.Span{Lexeme: "x"}})

	tbl.Push()
	local := &symbols.Symbol{Name: span.Span{Lexeme: "x"}, Mutable: true}
	tbl.CreateSymbol("main", "x", local)

	got, ok := tbl.Get("main", "x")
	assert.True(t, ok)
	assert.Same(t, local, got)
	assert.True(t, tbl.IsLocal("x"))

	tbl.Pop()
	assert.False(t, tbl.IsLocal("x"))
}

func TestCannotPopGlobalScope(t *testing.T) {
	tbl := symbols.New()
	assert.Panics(t, func() { tbl.Pop() })
}

func TestSymbolLabelDefaultsToBottom(t *testing.T) {
	sym := &symbols.Symbol{Name: span.Span{Lexeme: "x"}}
	assert.True(t, sym.Label().IsBottom())

	sym.Backtrace = label.NewExplicitAnnotation(1, span.Span{Lexeme: "x"}, label.FromTags([]string{"secret"}))
	assert.True(t, sym.Label().Equal(label.FromTags([]string{"secret"})))
}
