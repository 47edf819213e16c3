package analysis

import (
	"github.com/taintflow/ifc/ast"
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/label"
	"github.com/taintflow/ifc/symbols"
)

// visitFunctionDecl implements spec.md §4.8's definition half: the body is
// analyzed generically, in terms of Synthetic(i) placeholders for each
// parameter, and the result is memoized as a FunctionOutcome.
func visitFunctionDecl(fc *FileContext, decl *ast.FunctionDecl) {
	fc.Ctx.Symbols.Push()
	fc.PushReturnCollector()

	paramSymbols := make([]*symbols.Symbol, len(decl.Signature.Params))
	for i, p := range decl.Signature.Params {
		bt := label.New(label.FunctionArgument, fc.File, p, &p, label.FromSynthetic(i), nil)
		sym := &symbols.Symbol{Name: p, Mutable: true, Backtrace: bt}
		fc.Ctx.Symbols.CreateSymbol("", p.Lexeme, sym)
		paramSymbols[i] = sym
	}

	previousSymbol := fc.CurrentSymbol
	fc.CurrentSymbol = decl.Name.Lexeme
	visitBlock(fc, decl.Body)
	fc.CurrentSymbol = previousSymbol

	arguments := make([]*label.LabelBacktrace, len(paramSymbols))
	for i, sym := range paramSymbols {
		arguments[i] = sym.Backtrace.RemoveTag(label.Synthetic(i))
	}
	returns := fc.PopReturnCollector()

	fc.Ctx.Symbols.Pop()

	outcome := &FunctionOutcome{Arguments: arguments, ReturnValue: returns}
	key := GlobalKey{Package: fc.Package, Name: decl.Name.Lexeme}
	if fc.Ctx.SetOutcome(key, outcome) {
		fc.Ctx.RequeueDependents(key)
	}
}

// simpleCallee reports the (package, name) a Call's callee refers to, if
// it is a plain (possibly package-qualified) name rather than a more
// complex expression.
func simpleCallee(fc *FileContext, e ast.Expr) (GlobalKey, bool) {
	n, ok := e.(*ast.Name)
	if !ok {
		return GlobalKey{}, false
	}
	return GlobalKey{Package: fc.qualifiedPackage(n.Package), Name: n.ID.Lexeme}, true
}

// visitCall implements spec.md §4.8's call-site half.
func visitCall(fc *FileContext, call *ast.Call) *label.LabelBacktrace {
	argBTs := make([]*label.LabelBacktrace, len(call.Args))
	argLabels := make([]label.Label, len(call.Args))
	for i, a := range call.Args {
		bt := visitExpr(fc, a)
		argBTs[i] = bt
		argLabels[i] = labelOf(bt)
	}

	children := append(append([]*label.LabelBacktrace{}, argBTs...), fc.BranchTop())
	base := label.FromChildren(label.FunctionCall, fc.File, call.Location, nil, children)

	if call.Annotation != nil && call.Annotation.Scope == "sink" {
		checkSink(fc, diagnostic.FlowCall, call.Location, label.FromTags(fc.Ctx.ResolveTags(call.Annotation.Tags)), base)
	}

	calleeKey, ok := simpleCallee(fc, call.Func)
	if !ok {
		// a complex callee expression (e.g. another call) is not tracked
		// as a named function; return the conservative base backtrace.
		return base
	}

	if enclosing, ok := fc.enclosingGlobal(); ok {
		fc.Ctx.AddReverseDependency(calleeKey, enclosing)
	}

	outcome, ok := fc.Ctx.Functions[calleeKey]
	if !ok {
		// only a declared top-level function is ever given an outcome;
		// enqueueing a builtin, an imported name or a local would keep the
		// queue from ever draining.
		if sym, found := fc.Ctx.Symbols.Get(calleeKey.Package, calleeKey.Name); found && sym.Package != "" && !sym.Mutable {
			fc.Ctx.Enqueue(calleeKey)
		}
		return base
	}

	result := label.FromChildren(label.FunctionCall, fc.File, call.Location, nil, outcome.ReturnValue)
	result = result.ReplaceSyntheticTags(argLabels)

	for i, argOutcome := range outcome.Arguments {
		if argOutcome == nil || i >= len(call.Args) {
			continue
		}
		mutation := argOutcome.ReplaceSyntheticTags(argLabels)
		if mutation == nil {
			continue
		}
		for _, ref := range freeNames(call.Args[i]) {
			mergeMutationIntoName(fc, ref, mutation)
		}
	}

	return result
}

func mergeMutationIntoName(fc *FileContext, n *ast.Name, mutation *label.LabelBacktrace) {
	sym, ok := fc.Ctx.Symbols.Get(fc.qualifiedPackage(n.Package), n.ID.Lexeme)
	if !ok {
		return
	}
	newBT := label.FromChildren(label.FunctionArgumentMutation, fc.File, n.ID, &n.ID,
		[]*label.LabelBacktrace{sym.Backtrace, mutation})
	changed := !backtraceKeyEqual(sym.Backtrace, newBT)
	sym.Backtrace = newBT
	if changed {
		if key, ok := globalKeyOf(sym); ok {
			fc.Ctx.RequeueDependents(key)
		}
	}
}

// freeNames collects every Name appearing transitively inside e through
// unary, binary, and indexing expressions only (spec.md §4.8): a call
// nested inside an argument expression is not traversed into.
func freeNames(e ast.Expr) []*ast.Name {
	switch n := e.(type) {
	case *ast.Name:
		return []*ast.Name{n}
	case *ast.UnaryOp:
		return freeNames(n.Operand)
	case *ast.BinaryOp:
		return append(freeNames(n.Left), freeNames(n.Right)...)
	case *ast.Indexing:
		return append(freeNames(n.Expr), freeNames(n.Index)...)
	default:
		return nil
	}
}
