// Package token defines the lexical token kinds produced by the lexer and
// the annotation payload that can be attached to a subset of them.
package token

import "github.com/taintflow/ifc/span"

// Kind enumerates the token kinds the parser consumes. Only the kinds the
// taint engine actually inspects are named individually; the remaining
// operators the lexer recognizes are tokenized under the generic Operator
// kind with the literal lexeme as payload. A character the lexer does not
// recognize is a lexical error.
type Kind int

const (
	Invalid Kind = iota
	EOF

	Ident
	Keyword

	IntLiteral
	RuneLiteral
	StringLiteral

	// Punctuation
	LParen // (
	RParen // )
	LBrace // {
	RBrace // }
	LBracket
	RBracket
	Comma
	Semicolon
	Dot

	// Operators
	Assign     // =
	Define     // :=
	Arrow      // <- (channel receive/send)
	Inc        // ++
	Dec        // --
	PlusAssign // +=, -=, *=, /=, %=, &=, |=, ^=, <<=, >>= all collapse to CompoundAssign
	CompoundAssign

	// Binary/unary operator tokens, kept generic: the parser reads Lexeme to
	// know which concrete operator this is (+, -, *, /, %, ==, !=, <, <=, >,
	// >=, &&, ||, !, &, |, ^, <<, >>).
	Operator
)

// admitsAnnotation is the fixed set of token kinds that an annotation may
// attach to (spec.md §3, §6): the short-var-decl operator, the opening
// parenthesis of a call, the receive operator, and the const/var keywords
// (keywords are matched by lexeme, see Token.AdmitsAnnotation).
func (k Kind) admitsAnnotationByKind() bool {
	switch k {
	case Define, LParen, Arrow:
		return true
	}
	return false
}

// Token is a single lexical token: its kind, source span, and an optional
// annotation picked up from a preceding comment.
type Token struct {
	Kind       Kind
	Span       span.Span
	Annotation *Annotation
}

// AdmitsAnnotation reports whether this token is one of the annotatable
// positions named in spec.md §6: const, var, the opening parenthesis of a
// call, <-, and short-var :=. Keyword admissibility is resolved by lexeme
// since Keyword is a single Kind covering every reserved word.
func (t Token) AdmitsAnnotation() bool {
	if t.Kind.admitsAnnotationByKind() {
		return true
	}
	if t.Kind == Keyword && (t.Span.Lexeme == "const" || t.Span.Lexeme == "var") {
		return true
	}
	return false
}

// Annotation is the parsed payload of a comment matching the fixed pattern
// `scope::{tag, tag, ...}` (spec.md §3, §6).
//
// Recognized Scope values: "label", "sink", "declassify". Unrecognized
// scopes are still produced by the lexer but carry no special semantics:
// the visitors ignore them and no diagnostic is emitted for them.
type Annotation struct {
	Scope string
	Tags  []string
}
