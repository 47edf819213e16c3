// Package ast defines the syntax tree node kinds that the taint engine
// consumes (spec.md §3). Only the node shapes the analysis actually
// inspects are modeled; the grammar of the analyzed language is otherwise
// treated as an external concern.
package ast

import (
	"github.com/taintflow/ifc/span"
	"github.com/taintflow/ifc/token"
)

// SourceFile is the root of one parsed file.
type SourceFile struct {
	Package string
	Imports []Import
	Decls   []Decl
}

// Import is a single import clause; the analyzer only needs the path to
// resolve package-qualified names.
type Import struct {
	Alias string
	Path  string
	Span  span.Span
}

// Decl is a top-level declaration: Const, Var, or Function.
type Decl interface{ declNode() }

// ConstDecl declares one or more constants, optionally sharing an
// annotation applied to every binding spec.
type ConstDecl struct {
	Specs      []BindingSpec
	Annotation *token.Annotation
}

func (*ConstDecl) declNode() {}

// VarDecl declares one or more variables.
type VarDecl struct {
	Specs      []BindingSpec
	Annotation *token.Annotation
}

func (*VarDecl) declNode() {}

// FunctionDecl declares a function: its name, formal parameters (flattened
// in declaration order, matching the synthetic-tag numbering in spec.md
// §4.8/SPEC_FULL.md §3), and body.
type FunctionDecl struct {
	Name      span.Span
	Signature FunctionSignature
	Body      []Stmt
}

func (*FunctionDecl) declNode() {}

// FunctionSignature lists formal parameter identifiers in declaration
// order. Parameter *groups* (e.g. "a, b int") are flattened: Params holds
// one entry per identifier, in the exact order synthetic tag indices are
// assigned.
type FunctionSignature struct {
	Params []span.Span
}

// BindingSpec is one (identifier, initializer) pair within a const/var
// declaration or a desugared short variable declaration.
type BindingSpec struct {
	Name Span
	Init Expr // nil if no initializer
}

// Span is an identifier occurrence: its textual span plus an optional
// explicit package qualifier (for Name expressions; BindingSpec names are
// always unqualified).
type Span = span.Span

// Expr is any expression node.
type Expr interface{ exprNode() }

// Name is an identifier reference, optionally package-qualified
// (`pkg.Name`).
type Name struct {
	Package *span.Span
	ID      span.Span
}

func (*Name) exprNode() {}

// Literal is any literal expression (int, rune, string); literals never
// carry a label.
type Literal struct {
	Span span.Span
}

func (*Literal) exprNode() {}

// UnaryOpKind enumerates unary operators the engine distinguishes.
type UnaryOpKind int

const (
	UnaryOther UnaryOpKind = iota
	UnaryReceive
)

// UnaryOp is a prefix unary expression, including channel receive (`<-ch`).
type UnaryOp struct {
	Kind     UnaryOpKind
	Operand  Expr
	Location span.Span
}

func (*UnaryOp) exprNode() {}

// BinaryOp is an infix binary expression.
type BinaryOp struct {
	Left, Right Expr
	Location    span.Span
}

func (*BinaryOp) exprNode() {}

// Call is a function call expression.
type Call struct {
	Func       Expr
	Args       []Expr
	Variadic   bool
	Location   span.Span
	Annotation *token.Annotation
}

func (*Call) exprNode() {}

// Indexing is `expr[index]`.
type Indexing struct {
	Expr, Index Expr
	Location    span.Span
}

func (*Indexing) exprNode() {}

// Stmt is any statement node.
type Stmt interface{ stmtNode() }

// ExprStmt is a bare expression used as a statement.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

// Send is a channel send statement: `channel <- expr`.
type Send struct {
	Channel    Expr
	Expr       Expr
	Annotation *token.Annotation
	Location   span.Span
}

func (*Send) stmtNode() {}

// IncDecKind distinguishes `++` from `--`.
type IncDecKind int

const (
	IncOp IncDecKind = iota
	DecOp
)

// IncDec is `x++` or `x--`, desugared by the visitor into an Assignment
// (spec.md §4.6).
type IncDec struct {
	Kind     IncDecKind
	Operand  Expr
	Location span.Span
}

func (*IncDec) stmtNode() {}

// AssignmentKind distinguishes simple (`=`) from compound (`+=`, ...)
// assignment.
type AssignmentKind int

const (
	AssignSimple AssignmentKind = iota
	AssignCompound
)

// Assignment is `lhs = rhs` or a compound form.
type Assignment struct {
	Kind     AssignmentKind
	LHS      []Expr
	RHS      []Expr
	Location span.Span
}

func (*Assignment) stmtNode() {}

// ShortVarDecl is `ids := exprs`.
type ShortVarDecl struct {
	IDs        []span.Span
	Exprs      []Expr
	Location   span.Span
	Annotation *token.Annotation
}

func (*ShortVarDecl) stmtNode() {}

// DeclStmt wraps a local const/var declaration nested inside a function body.
type DeclStmt struct {
	Decl Decl
}

func (*DeclStmt) stmtNode() {}

// ElseKind distinguishes an `else if` chain from a terminal `else` block.
type ElseKind int

const (
	ElseNone ElseKind = iota
	ElseIf
	ElseBlock
)

// If is a conditional statement, including any `else`/`else if` chain.
type If struct {
	Cond      Expr
	Then      []Stmt
	ElseKind  ElseKind
	ElseIf    *If
	ElseBlock []Stmt
}

func (*If) stmtNode() {}

// Block is an explicit nested `{ ... }` block.
type Block struct {
	Stmts []Stmt
}

func (*Block) stmtNode() {}

// For models both a conditional for-loop (`for cond { }`) and a bare
// infinite loop (`for { }`); Cond is nil for the latter (spec.md §4.10,
// SPEC_FULL.md §3: a for with a condition behaves like an if, a bare for
// pushes no branch label).
type For struct {
	Cond Expr // nil for a bare `for { }`
	Body []Stmt
}

func (*For) stmtNode() {}

// Return is a return statement, zero or more result expressions.
type Return struct {
	Exprs    []Expr
	Location span.Span
}

func (*Return) stmtNode() {}

// Go is a `go expr` statement. The operand must be a Call; anything else is
// a GoNotCall diagnostic (spec.md §4.10).
type Go struct {
	Expr     Expr
	Location span.Span
}

func (*Go) stmtNode() {}
