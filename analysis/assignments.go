package analysis

import (
	"github.com/taintflow/ifc/ast"
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/span"
)

func visitAssignment(fc *FileContext, stmt *ast.Assignment) {
	if stmt.Kind == ast.AssignCompound && len(stmt.LHS) != 1 {
		fc.Ctx.Report(diagnostic.New(diagnostic.MultiComplexAssignment, fc.File, stmt.Location,
			"compound assignment requires exactly one left-hand side"))
		return
	}
	if stmt.Kind == ast.AssignSimple && len(stmt.LHS) != len(stmt.RHS) {
		fc.Ctx.Report(diagnostic.New(diagnostic.UnevenAssignment, fc.File, stmt.Location,
			"assignment has a different number of values on each side"))
		return
	}

	for i, lhs := range stmt.LHS {
		rhsBT := visitExpr(fc, stmt.RHS[i])
		assignOne(fc, stmt.Kind, lhs, rhsBT)
	}
}

func assignOne(fc *FileContext, kind ast.AssignmentKind, lhs ast.Expr, rhsBT *label.LabelBacktrace) {
	name, ok := lhs.(*ast.Name)
	if !ok {
		fc.Ctx.Report(diagnostic.New(diagnostic.InvalidLeftValue, fc.File, exprLocation(lhs), "left side of assignment must be a plain name"))
		return
	}
	sym, ok := fc.Ctx.Symbols.Get(fc.qualifiedPackage(name.Package), name.ID.Lexeme)
	if !ok {
		fc.Ctx.Report(diagnostic.New(diagnostic.UnknownSymbol, fc.File, name.ID, "unknown symbol "+name.ID.Lexeme))
		return
	}
	if !sym.Mutable {
		fc.Ctx.Report(diagnostic.New(diagnostic.ImmutableLeftValue, fc.File, name.ID, name.ID.Lexeme+" is not assignable"))
		return
	}

	var newLabel label.Label
	if kind == ast.AssignSimple {
		newLabel = labelOf(rhsBT)
	} else {
		newLabel = sym.Label().Union(labelOf(rhsBT))
	}
	newLabel = newLabel.Union(labelOf(fc.BranchTop()))

	if newLabel.IsBottom() {
		sym.Backtrace = nil
		return
	}

	bt := label.New(label.Assignment, fc.File, name.ID, &name.ID, newLabel,
		[]*label.LabelBacktrace{rhsBT, fc.BranchTop(), sym.Backtrace})

	changed := !backtraceKeyEqual(sym.Backtrace, bt)
	sym.Backtrace = bt
	if changed {
		if key, ok := globalKeyOf(sym); ok {
			fc.Ctx.RequeueDependents(key)
		}
	}
}

func exprLocation(e ast.Expr) span.Span {
	switch n := e.(type) {
	case *ast.Name:
		return n.ID
	case *ast.Literal:
		return n.Span
	case *ast.UnaryOp:
		return n.Location
	case *ast.BinaryOp:
		return n.Location
	case *ast.Call:
		return n.Location
	case *ast.Indexing:
		return n.Location
	default:
		return span.Span{}
	}
}

// visitIncDec desugars `x++`/`x--` to `x = x (op) 1` (spec.md §4.6).
func visitIncDec(fc *FileContext, stmt *ast.IncDec) {
	name, ok := stmt.Operand.(*ast.Name)
	if !ok {
		fc.Ctx.Report(diagnostic.New(diagnostic.InvalidLeftValue, fc.File, exprLocation(stmt.Operand), "operand of ++/-- must be a plain name"))
		return
	}
	sym, ok := fc.Ctx.Symbols.Get(fc.qualifiedPackage(name.Package), name.ID.Lexeme)
	if !ok {
		fc.Ctx.Report(diagnostic.New(diagnostic.UnknownSymbol, fc.File, name.ID, "unknown symbol "+name.ID.Lexeme))
		return
	}
	if !sym.Mutable {
		fc.Ctx.Report(diagnostic.New(diagnostic.ImmutableLeftValue, fc.File, name.ID, name.ID.Lexeme+" is not assignable"))
		return
	}
	// x (op) 1 carries the literal's bottom label; the assignment, like any
	// compound form, is current ∪ branch.
	newLabel := sym.Label().Union(labelOf(fc.BranchTop()))
	if newLabel.IsBottom() {
		sym.Backtrace = nil
		return
	}
	bt := label.New(label.Assignment, fc.File, name.ID, &name.ID, newLabel,
		[]*label.LabelBacktrace{fc.BranchTop(), sym.Backtrace})
	changed := !backtraceKeyEqual(sym.Backtrace, bt)
	sym.Backtrace = bt
	if changed {
		if key, ok := globalKeyOf(sym); ok {
			fc.Ctx.RequeueDependents(key)
		}
	}
}

// visitShortVarDecl desugars `ids := exprs` into a sequence of fresh,
// mutable binding-decl-specs (spec.md §4.6).
func visitShortVarDecl(fc *FileContext, stmt *ast.ShortVarDecl) {
	if len(stmt.IDs) != len(stmt.Exprs) {
		fc.Ctx.Report(diagnostic.New(diagnostic.UnevenShortVarDecl, fc.File, stmt.Location,
			"short variable declaration has a different number of names and values"))
		return
	}
	for i, id := range stmt.IDs {
		visitBindingDeclSpec(fc, id, stmt.Exprs[i], true, stmt.Annotation)
	}
}
