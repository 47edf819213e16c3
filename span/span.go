// Package span holds source-location primitives shared by the lexer, parser
// and diagnostic renderer.
package span

import "fmt"

// Position is a line/column pair within a single file; lines are 1-indexed.
type Position struct {
	Line   int
	Column int
}

// String renders the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a contiguous byte range of a source file, together with the line
// the range starts on and the lexeme it covers.
//
// Lexeme is a copy of the covered bytes, so a Span stays valid after the
// source buffer it was carved from is released or modified.
type Span struct {
	File   int
	Start  int
	End    int
	Line   int
	Lexeme string
}

// New builds a Span over src[start:end].
func New(file, start, end, line int, src []byte) Span {
	return Span{File: file, Start: start, End: end, Line: line, Lexeme: string(src[start:end])}
}

// Len returns the byte length of the span.
func (s Span) Len() int { return s.End - s.Start }

// Position returns the span's starting position for diagnostics. Columns
// are not tracked: Column is always 0.
func (s Span) Position() Position {
	return Position{Line: s.Line, Column: 0}
}

// String renders "file:line".
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.File, s.Line)
}
