// Package symbols implements the lexically scoped symbol table (spec.md
// §3, §4.3): a stack of scopes rooted in a global scope, predeclared
// identifiers, and the lookup discipline the taint visitors rely on to
// resolve names to symbols carrying a label.
package symbols

import (
	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/span"
)

// Symbol is a named, possibly-mutable binding carrying a label backtrace.
// Package is empty for predeclared identifiers and for locals, which are
// resolved by name alone within the enclosing function body.
type Symbol struct {
	Package   string
	Name      span.Span
	Backtrace *label.LabelBacktrace
	Mutable   bool
}

// Label returns the symbol's current label: ⊥ when it has no backtrace.
func (s *Symbol) Label() label.Label {
	if s == nil || s.Backtrace == nil {
		return label.Bottom
	}
	return s.Backtrace.Label
}

type key struct {
	Package string
	Name    string
}

// scope is one level of the stack: the global scope (index 0) keys symbols
// by (package, name); every scope pushed above it represents a function
// body or an implicit block and keys its symbols by name alone.
type scope struct {
	symbols map[key]*Symbol
}

func newScope() *scope {
	return &scope{symbols: make(map[key]*Symbol)}
}

// Table is the stack-of-scopes symbol table. The zero value is not usable;
// construct with New.
type Table struct {
	scopes      []*scope
	predeclared map[key]*Symbol
}

// New builds a table with an empty global scope and the predeclared
// identifier set already populated.
func New() *Table {
	t := &Table{scopes: []*scope{newScope()}, predeclared: make(map[key]*Symbol)}
	for _, name := range predeclaredTypeNames {
		t.predeclared[key{Name: name}] = &Symbol{Name: span.Span{Lexeme: name}, Mutable: false}
	}
	for _, name := range predeclaredConstants {
		t.predeclared[key{Name: name}] = &Symbol{Name: span.Span{Lexeme: name}, Mutable: false}
	}
	for _, name := range predeclaredFunctions {
		t.predeclared[key{Name: name}] = &Symbol{Name: span.Span{Lexeme: name}, Mutable: false}
	}
	return t
}

// Push enters a new lexical scope (function body, if/for/switch implicit
// block, or inner block).
func (t *Table) Push() {
	t.scopes = append(t.scopes, newScope())
}

// Pop leaves the innermost scope. Popping the global scope is a
// programming error in the caller and panics, since the global scope must
// always remain for the lifetime of the table.
func (t *Table) Pop() {
	if len(t.scopes) <= 1 {
		panic("symbols: cannot pop the global scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth reports how many scopes are currently pushed, including the global
// scope (so Depth() == 1 means only the global scope is active).
func (t *Table) Depth() int { return len(t.scopes) }

func (t *Table) top() *scope { return t.scopes[len(t.scopes)-1] }

// IsCurrentScopeGlobal reports whether the innermost scope is the global
// scope.
func (t *Table) IsCurrentScopeGlobal() bool { return len(t.scopes) == 1 }

// CreateSymbol inserts sym into the top scope, keyed by (pkg, name) if the
// top scope is the global scope, or by name alone otherwise. It returns any
// symbol previously occupying that key, or nil.
func (t *Table) CreateSymbol(pkg, name string, sym *Symbol) *Symbol {
	k := key{Name: name}
	if t.IsCurrentScopeGlobal() {
		k.Package = pkg
	}
	top := t.top()
	prev := top.symbols[k]
	top.symbols[k] = sym
	return prev
}

// Get resolves name against package pkg (the enclosing file's own package
// for an unqualified reference, or an explicit qualifier for a `pkg.name`
// expression): nested (non-global) scopes are searched innermost-first by
// name alone, then the global scope under (pkg, name), then the
// package-less predeclared set.
func (t *Table) Get(pkg, name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 1; i-- {
		if sym, ok := t.scopes[i].symbols[key{Name: name}]; ok {
			return sym, true
		}
	}
	if sym, ok := t.scopes[0].symbols[key{Package: pkg, Name: name}]; ok {
		return sym, true
	}
	if sym, ok := t.predeclared[key{Name: name}]; ok {
		return sym, true
	}
	return nil, false
}

// IsLocal reports whether name is bound in any non-global scope.
func (t *Table) IsLocal(name string) bool {
	for i := len(t.scopes) - 1; i >= 1; i-- {
		if _, ok := t.scopes[i].symbols[key{Name: name}]; ok {
			return true
		}
	}
	return false
}

var predeclaredTypeNames = []string{
	"bool", "string", "error", "any",
	"int", "int8", "int16", "int32", "int64",
	"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
	"byte", "rune",
	"float32", "float64",
	"complex64", "complex128",
}

var predeclaredConstants = []string{"true", "false", "nil", "iota"}

var predeclaredFunctions = []string{
	"len", "cap", "make", "new", "append", "copy", "delete",
	"close", "panic", "recover", "print", "println",
}
