package analysis

import (
	"github.com/taintflow/ifc/ast"
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/label"
)

func visitBlock(fc *FileContext, stmts []ast.Stmt) {
	for _, s := range stmts {
		visitStmt(fc, s)
	}
}

func visitStmt(fc *FileContext, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		visitExpr(fc, n.Expr)
	case *ast.Send:
		visitSend(fc, n)
	case *ast.IncDec:
		visitIncDec(fc, n)
	case *ast.Assignment:
		visitAssignment(fc, n)
	case *ast.ShortVarDecl:
		visitShortVarDecl(fc, n)
	case *ast.DeclStmt:
		visitLocalDecl(fc, n.Decl)
	case *ast.If:
		visitIf(fc, n)
	case *ast.Block:
		fc.Ctx.Symbols.Push()
		visitBlock(fc, n.Stmts)
		fc.Ctx.Symbols.Pop()
	case *ast.For:
		visitFor(fc, n)
	case *ast.Return:
		visitReturn(fc, n)
	case *ast.Go:
		visitGo(fc, n)
	}
}

func visitLocalDecl(fc *FileContext, d ast.Decl) {
	switch n := d.(type) {
	case *ast.ConstDecl:
		visitBindingGroup(fc, n.Specs, false, n.Annotation)
	case *ast.VarDecl:
		visitBindingGroup(fc, n.Specs, true, n.Annotation)
	}
}

// visitIf implements spec.md §4.10: the condition's backtrace, if any,
// becomes a Branch label pushed for the duration of the then/else chain.
func visitIf(fc *FileContext, stmt *ast.If) {
	condBT := visitExpr(fc, stmt.Cond)
	pushed := pushBranchIfAny(fc, condBT, stmt.Cond)

	fc.Ctx.Symbols.Push()
	fc.Ctx.Symbols.Push()
	visitBlock(fc, stmt.Then)
	fc.Ctx.Symbols.Pop()

	switch stmt.ElseKind {
	case ast.ElseIf:
		visitIf(fc, stmt.ElseIf)
	case ast.ElseBlock:
		fc.Ctx.Symbols.Push()
		visitBlock(fc, stmt.ElseBlock)
		fc.Ctx.Symbols.Pop()
	}
	fc.Ctx.Symbols.Pop()

	if pushed {
		fc.PopBranch()
	}
}

// visitFor follows the same branch push/pop discipline as visitIf: a bare
// `for {}` has no condition and pushes no branch label (SPEC_FULL.md §3).
func visitFor(fc *FileContext, stmt *ast.For) {
	var condBT *label.LabelBacktrace
	if stmt.Cond != nil {
		condBT = visitExpr(fc, stmt.Cond)
	}
	pushed := pushBranchIfAny(fc, condBT, stmt.Cond)

	fc.Ctx.Symbols.Push()
	fc.Ctx.Symbols.Push()
	visitBlock(fc, stmt.Body)
	fc.Ctx.Symbols.Pop()
	fc.Ctx.Symbols.Pop()

	if pushed {
		fc.PopBranch()
	}
}

func pushBranchIfAny(fc *FileContext, condBT *label.LabelBacktrace, cond ast.Expr) bool {
	if condBT == nil {
		return false
	}
	loc := exprLocation(cond)
	branch := label.New(label.Branch, fc.File, loc, nil, condBT.Label, []*label.LabelBacktrace{condBT})
	if branch == nil {
		return false
	}
	fc.PushBranch(branch)
	return true
}

func visitGo(fc *FileContext, stmt *ast.Go) {
	call, ok := stmt.Expr.(*ast.Call)
	if !ok {
		fc.Ctx.Report(diagnostic.New(diagnostic.GoNotCall, fc.File, stmt.Location, "go statement requires a function call"))
		return
	}
	visitCall(fc, call)
}

// visitReturn implements spec.md §4.10's last clause: collect the result
// expressions' backtraces plus the active branch backtrace into one Return
// backtrace, appended to the enclosing function's outcome-in-progress.
func visitReturn(fc *FileContext, stmt *ast.Return) {
	children := make([]*label.LabelBacktrace, 0, len(stmt.Exprs)+1)
	for _, e := range stmt.Exprs {
		children = append(children, visitExpr(fc, e))
	}
	children = append(children, fc.BranchTop())
	bt := label.FromChildren(label.Return, fc.File, stmt.Location, nil, children)
	fc.AppendReturn(bt)
}
