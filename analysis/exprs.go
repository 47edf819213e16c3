package analysis

import (
	"github.com/taintflow/ifc/ast"
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/label"
)

// visitExpr implements spec.md §4.7: evaluates e, returning the backtrace
// explaining the label of its value (nil for ⊥).
func visitExpr(fc *FileContext, e ast.Expr) *label.LabelBacktrace {
	switch n := e.(type) {
	case *ast.Name:
		return visitName(fc, n)
	case *ast.Literal:
		return nil
	case *ast.UnaryOp:
		if n.Kind == ast.UnaryReceive {
			return visitReceive(fc, n)
		}
		return visitExpr(fc, n.Operand)
	case *ast.BinaryOp:
		left := visitExpr(fc, n.Left)
		right := visitExpr(fc, n.Right)
		return label.Union(left, right, label.Expression, fc.File, n.Location, nil)
	case *ast.Indexing:
		base := visitExpr(fc, n.Expr)
		idx := visitExpr(fc, n.Index)
		return label.Union(base, idx, label.Expression, fc.File, n.Location, nil)
	case *ast.Call:
		return visitCall(fc, n)
	default:
		return nil
	}
}

func visitName(fc *FileContext, n *ast.Name) *label.LabelBacktrace {
	sym, ok := fc.Ctx.Symbols.Get(fc.qualifiedPackage(n.Package), n.ID.Lexeme)
	if !ok {
		fc.Ctx.Report(diagnostic.New(diagnostic.UnknownSymbol, fc.File, n.ID, "unknown symbol "+n.ID.Lexeme))
		return nil
	}
	fc.noteAccess(sym)
	if sym.Backtrace == nil {
		return nil
	}
	return label.New(label.Expression, fc.File, n.ID, &n.ID, sym.Label(), []*label.LabelBacktrace{sym.Backtrace})
}
