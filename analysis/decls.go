package analysis

import (
	"github.com/taintflow/ifc/ast"
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/span"
	"github.com/taintflow/ifc/symbols"
	"github.com/taintflow/ifc/token"
)

func visitBindingGroup(fc *FileContext, specs []ast.BindingSpec, mutable bool, ann *token.Annotation) {
	for _, spec := range specs {
		visitBindingDeclSpec(fc, spec.Name, spec.Init, mutable, ann)
	}
}

// visitBindingDeclSpec implements spec.md §4.5: compute the initializer's
// backtrace, apply the declaration's annotation, and install the result
// either by updating the already-registered global symbol or by creating a
// fresh local one.
func visitBindingDeclSpec(fc *FileContext, name span.Span, init ast.Expr, mutable bool, ann *token.Annotation) {
	var initBT *label.LabelBacktrace
	if init != nil {
		initBT = visitExpr(fc, init)
	}

	computed := labelOf(initBT).Union(labelOf(fc.BranchTop()))
	children := []*label.LabelBacktrace{initBT, fc.BranchTop()}

	if ann != nil {
		switch ann.Scope {
		case "label":
			tags := label.FromTags(ann.Tags)
			computed = computed.Union(tags)
			children = append(children, label.NewExplicitAnnotation(fc.File, name, tags))
		case "declassify":
			// declassify replaces, never unions: the only sanctioned way to
			// lower a computed label.
			computed = label.FromTags(ann.Tags)
			children = []*label.LabelBacktrace{label.NewExplicitAnnotation(fc.File, name, computed)}
		case "sink":
			sinkLabel := label.FromTags(fc.Ctx.ResolveTags(ann.Tags))
			provisional := label.New(label.Assignment, fc.File, name, &name, computed, children)
			checkSink(fc, diagnostic.FlowAssignment, name, sinkLabel, provisional)
		}
	}

	bt := label.New(label.Assignment, fc.File, name, &name, computed, children)

	if fc.Ctx.Symbols.IsCurrentScopeGlobal() {
		updateGlobalBinding(fc, name, bt)
		return
	}

	sym := &symbols.Symbol{Name: name, Backtrace: bt, Mutable: mutable}
	if prev := fc.Ctx.Symbols.CreateSymbol("", name.Lexeme, sym); prev != nil {
		fc.Ctx.Report(diagnostic.New(diagnostic.Redeclaration, fc.File, name, name.Lexeme+" redeclared in this scope"))
	}
}

func updateGlobalBinding(fc *FileContext, name span.Span, bt *label.LabelBacktrace) {
	sym, ok := fc.Ctx.Symbols.Get(fc.Package, name.Lexeme)
	if !ok {
		// the declaration pre-pass always registers top-level bindings
		// first; this path is unreachable in practice, but fall back to
		// creating the symbol rather than dropping the write.
		sym = &symbols.Symbol{Package: fc.Package, Name: name, Mutable: true}
		fc.Ctx.Symbols.CreateSymbol(fc.Package, name.Lexeme, sym)
	}
	changed := !backtraceKeyEqual(sym.Backtrace, bt)
	sym.Backtrace = bt
	if !changed {
		return
	}
	if key, ok := globalKeyOf(sym); ok {
		fc.Ctx.RequeueDependents(key)
	}
}
