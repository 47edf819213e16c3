package analysis

import (
	"github.com/taintflow/ifc/ast"
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/label"
)

// Channels are modeled as single mutable cells carrying the monotone join
// of everything ever sent, not as FIFOs (spec.md §4.9): a sound
// over-approximation that keeps the fixed point trivially terminating.

func visitSend(fc *FileContext, stmt *ast.Send) {
	exprBT := visitExpr(fc, stmt.Expr)
	if exprBT == nil {
		return
	}
	name, ok := stmt.Channel.(*ast.Name)
	if !ok {
		fc.Ctx.Report(diagnostic.New(diagnostic.UnsupportedChannelExpr, fc.File, exprLocation(stmt.Channel), "channel expression must be a plain name"))
		return
	}
	sym, ok := fc.Ctx.Symbols.Get(fc.qualifiedPackage(name.Package), name.ID.Lexeme)
	if !ok {
		fc.Ctx.Report(diagnostic.New(diagnostic.UnknownSymbol, fc.File, name.ID, "unknown symbol "+name.ID.Lexeme))
		return
	}
	fc.noteAccess(sym)

	newBT := label.FromChildren(label.Send, fc.File, stmt.Location, &name.ID,
		[]*label.LabelBacktrace{sym.Backtrace, fc.BranchTop(), exprBT})
	changed := !backtraceKeyEqual(sym.Backtrace, newBT)
	sym.Backtrace = newBT
	if changed {
		if key, ok := globalKeyOf(sym); ok {
			fc.Ctx.RequeueDependents(key)
		}
	}

	if stmt.Annotation != nil && stmt.Annotation.Scope == "sink" {
		checkSink(fc, diagnostic.FlowSend, stmt.Location, label.FromTags(fc.Ctx.ResolveTags(stmt.Annotation.Tags)), newBT)
	}
}

func visitReceive(fc *FileContext, op *ast.UnaryOp) *label.LabelBacktrace {
	name, ok := op.Operand.(*ast.Name)
	if !ok {
		fc.Ctx.Report(diagnostic.New(diagnostic.UnsupportedChannelExpr, fc.File, exprLocation(op.Operand), "channel expression must be a plain name"))
		return nil
	}
	sym, ok := fc.Ctx.Symbols.Get(fc.qualifiedPackage(name.Package), name.ID.Lexeme)
	if !ok {
		fc.Ctx.Report(diagnostic.New(diagnostic.UnknownSymbol, fc.File, name.ID, "unknown symbol "+name.ID.Lexeme))
		return nil
	}
	fc.noteAccess(sym)
	if sym.Backtrace == nil {
		return nil
	}
	return label.New(label.Receive, fc.File, op.Location, &name.ID, sym.Label(), []*label.LabelBacktrace{sym.Backtrace})
}
