package analysis

import (
	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/span"
	"github.com/taintflow/ifc/symbols"
)

// FileContext is per-file, per-pass state (spec.md §3 VisitFileContext):
// the shared analysis context, the file being visited, its package, the
// name of the top-level symbol currently under analysis (for
// reverse-dependency edges), and the two stacks that make implicit-flow
// tracking and return collection work.
type FileContext struct {
	Ctx     *Context
	File    int
	Package string

	// CurrentSymbol is the name of the global const/var/function whose
	// body is presently being visited; empty outside of one.
	CurrentSymbol string

	branchStack []*label.LabelBacktrace
	returnStack [][]*label.LabelBacktrace
}

func newFileContext(ctx *Context, file int, pkg string) *FileContext {
	return &FileContext{Ctx: ctx, File: file, Package: pkg}
}

// BranchTop returns the accumulated active branch backtrace, or nil if no
// branch is currently active.
func (fc *FileContext) BranchTop() *label.LabelBacktrace {
	if len(fc.branchStack) == 0 {
		return nil
	}
	return fc.branchStack[len(fc.branchStack)-1]
}

// PushBranch pushes bt onto the branch stack, merging it with whatever was
// already on top so every nested write sees one effective branch label
// (spec.md §4.10, §9 "branch stack composition").
func (fc *FileContext) PushBranch(bt *label.LabelBacktrace) {
	merged := label.Union(fc.BranchTop(), bt, label.Branch, bt.File, bt.Location, bt.Symbol)
	fc.branchStack = append(fc.branchStack, merged)
}

// PopBranch restores the branch stack to its pre-push state.
func (fc *FileContext) PopBranch() {
	fc.branchStack = fc.branchStack[:len(fc.branchStack)-1]
}

// PushReturnCollector starts a fresh return-backtrace collector for a
// function body being entered.
func (fc *FileContext) PushReturnCollector() {
	fc.returnStack = append(fc.returnStack, nil)
}

// AppendReturn records bt against the innermost active return collector.
func (fc *FileContext) AppendReturn(bt *label.LabelBacktrace) {
	top := len(fc.returnStack) - 1
	fc.returnStack[top] = append(fc.returnStack[top], bt)
}

// PopReturnCollector pops and returns the innermost return collector's
// contents, for use as a function's FunctionOutcome.ReturnValue.
func (fc *FileContext) PopReturnCollector() []*label.LabelBacktrace {
	top := len(fc.returnStack) - 1
	collected := fc.returnStack[top]
	fc.returnStack = fc.returnStack[:top]
	return collected
}

// qualifiedPackage resolves the package a Name reference should be looked
// up against: its own explicit qualifier if present, else the file's
// current package.
func (fc *FileContext) qualifiedPackage(pkg *span.Span) string {
	if pkg != nil {
		return pkg.Lexeme
	}
	return fc.Package
}

func (fc *FileContext) enclosingGlobal() (GlobalKey, bool) {
	if fc.CurrentSymbol == "" {
		return GlobalKey{}, false
	}
	return GlobalKey{Package: fc.Package, Name: fc.CurrentSymbol}, true
}

// noteAccess registers a reverse dependency from the enclosing top-level
// symbol to sym, if both are globals (spec.md §4.4 "any access to a
// non-local symbol... adds an edge from the enclosing global").
func (fc *FileContext) noteAccess(sym *symbols.Symbol) {
	accessed, ok := globalKeyOf(sym)
	if !ok {
		return
	}
	enclosing, ok := fc.enclosingGlobal()
	if !ok {
		return
	}
	fc.Ctx.AddReverseDependency(accessed, enclosing)
}
