package analysis

import (
	"github.com/taintflow/ifc/ast"
	"github.com/taintflow/ifc/diagnostic"
	"github.com/taintflow/ifc/symbols"
	"github.com/taintflow/ifc/token"
)

// File is one parsed source file handed to Analyze: a stable file id (used
// in diagnostics) paired with its syntax tree.
type File struct {
	ID   int
	Tree *ast.SourceFile
}

// Analyze runs the full lifecycle described in spec.md §4.4: a declaration
// pre-pass, a taint fixed-point with errors suppressed, and a final
// reporting pass with errors enabled.
//
// The fixed-point loop here reprocesses every file on every iteration
// rather than gating each global symbol individually on queue membership:
// visiting an unchanged declaration is idempotent, so the only thing that
// matters for correctness and termination is whether a full pass produced
// any new queue entries (DESIGN.md, "Driver simplification"). This keeps the driver's
// correctness argument identical to the per-symbol design while being far
// simpler to get right without running it.
func Analyze(files []File) []diagnostic.Diagnostic {
	return AnalyzeWithResolver(files, nil)
}

// AnalyzeWithResolver runs the same lifecycle as Analyze, but expands every
// sink annotation's raw tags through resolveTags first - the hook a CLI-level
// config's named sink-clearance presets (config.Config) plug into. A nil
// resolveTags behaves like Analyze (tags used literally).
func AnalyzeWithResolver(files []File, resolveTags func([]string) []string) []diagnostic.Diagnostic {
	ctx := NewContext()
	if resolveTags != nil {
		ctx.ResolveTags = resolveTags
	}

	// Redeclaration is a structural fact about the declaration set itself,
	// not something the taint fixed-point recomputes on later iterations
	// (the pre-pass runs exactly once), so it is reported immediately
	// rather than gated behind accept_errors like the flow diagnostics
	// runPass produces on every iteration.
	ctx.AcceptErrors = true
	declarationPrePass(ctx, files)

	ctx.AcceptErrors = false
	for ctx.QueueLen() > 0 {
		ctx.ResetQueue()
		for _, f := range files {
			runPass(ctx, f)
		}
	}

	ctx.AcceptErrors = true
	for _, f := range files {
		runPass(ctx, f)
	}

	return ctx.Errors
}

func packageName(f *ast.SourceFile) string { return f.Package }

func declarationPrePass(ctx *Context, files []File) {
	for _, f := range files {
		pkg := packageName(f.Tree)
		for _, d := range f.Tree.Decls {
			switch n := d.(type) {
			case *ast.ConstDecl:
				registerGlobalBindings(ctx, f.ID, pkg, n.Specs, false)
			case *ast.VarDecl:
				registerGlobalBindings(ctx, f.ID, pkg, n.Specs, true)
			case *ast.FunctionDecl:
				registerGlobalFunction(ctx, f.ID, pkg, n)
			}
		}
	}
}

func registerGlobalBindings(ctx *Context, fileID int, pkg string, specs []ast.BindingSpec, mutable bool) {
	for _, spec := range specs {
		sym := &symbols.Symbol{Package: pkg, Name: spec.Name, Mutable: mutable}
		if prev := ctx.Symbols.CreateSymbol(pkg, spec.Name.Lexeme, sym); prev != nil {
			ctx.Report(diagnostic.New(diagnostic.Redeclaration, fileID, spec.Name, spec.Name.Lexeme+" redeclared in this scope"))
		}
		ctx.Enqueue(GlobalKey{Package: pkg, Name: spec.Name.Lexeme})
	}
}

func registerGlobalFunction(ctx *Context, fileID int, pkg string, n *ast.FunctionDecl) {
	sym := &symbols.Symbol{Package: pkg, Name: n.Name, Mutable: false}
	if prev := ctx.Symbols.CreateSymbol(pkg, n.Name.Lexeme, sym); prev != nil {
		ctx.Report(diagnostic.New(diagnostic.Redeclaration, fileID, n.Name, n.Name.Lexeme+" redeclared in this scope"))
	}
	ctx.Enqueue(GlobalKey{Package: pkg, Name: n.Name.Lexeme})
}

func runPass(ctx *Context, f File) {
	fc := newFileContext(ctx, f.ID, packageName(f.Tree))
	for _, d := range f.Tree.Decls {
		switch n := d.(type) {
		case *ast.ConstDecl:
			fc.CurrentSymbol = ""
			visitTopBindingGroup(fc, n.Specs, false, n.Annotation)
		case *ast.VarDecl:
			fc.CurrentSymbol = ""
			visitTopBindingGroup(fc, n.Specs, true, n.Annotation)
		case *ast.FunctionDecl:
			visitFunctionDecl(fc, n)
		}
	}
}

func visitTopBindingGroup(fc *FileContext, specs []ast.BindingSpec, mutable bool, ann *token.Annotation) {
	for _, spec := range specs {
		fc.CurrentSymbol = spec.Name.Lexeme
		visitBindingDeclSpec(fc, spec.Name, spec.Init, mutable, ann)
	}
}
