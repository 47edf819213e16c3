// Package lexer turns a source file's byte stream into a token sequence,
// extracting IFC annotations from comments and attaching them to the
// annotatable token that immediately follows (spec.md §2 step 1, §6).
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/taintflow/ifc/span"
	"github.com/taintflow/ifc/token"
)

// Error reports a lexical error at a given byte offset.
type Error struct {
	File    int
	Offset  int
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.File, e.Line, e.Message)
}

var keywords = map[string]bool{
	"package": true, "import": true, "const": true, "var": true, "func": true,
	"return": true, "if": true, "else": true, "for": true, "go": true,
	"range": true, "break": true, "continue": true, "struct": true,
	"interface": true, "chan": true, "map": true, "type": true, "switch": true,
	"case": true, "default": true, "select": true, "true": true, "false": true,
	"nil": true,
}

// Lexer is a single-pass, single-file scanner. It is not safe for concurrent
// use, matching the single-threaded cooperative design of the rest of the
// analyzer (spec.md §5).
type Lexer struct {
	file int
	src  []byte
	pos  int
	line int

	pending *token.Annotation
}

// New creates a Lexer over src, identified by the stable file id.
func New(file int, src []byte) *Lexer {
	return &Lexer{file: file, src: src, pos: 0, line: 1}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
	}
	return c
}

func (l *Lexer) makeSpan(start, startLine int) span.Span {
	return span.New(l.file, start, l.pos, startLine, l.src)
}

// Next scans and returns the next token. At end of input it returns a token
// of kind token.EOF forever after.
func (l *Lexer) Next() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}
	if l.eof() {
		return token.Token{Kind: token.EOF, Span: span.New(l.file, l.pos, l.pos, l.line, l.src)}, nil
	}

	start := l.pos
	startLine := l.line
	c := l.peek()

	var tok token.Token
	var err error
	switch {
	case isIdentStart(c):
		tok = l.scanIdent(start, startLine)
	case isDigit(c):
		tok, err = l.scanNumber(start, startLine)
	case c == '"':
		tok, err = l.scanString(start, startLine)
	case c == '\'':
		tok, err = l.scanRune(start, startLine)
	default:
		tok, err = l.scanSymbol(start, startLine)
	}
	if err != nil {
		return token.Token{}, err
	}

	if tok.AdmitsAnnotation() && l.pending != nil {
		tok.Annotation = l.pending
		l.pending = nil
	}
	if tok.Kind == token.Semicolon {
		l.pending = nil
	}
	return tok, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentCont(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (l *Lexer) scanIdent(start, startLine int) token.Token {
	for !l.eof() && isIdentCont(l.peek()) {
		l.advance()
	}
	sp := l.makeSpan(start, startLine)
	kind := token.Ident
	if keywords[sp.Lexeme] {
		kind = token.Keyword
	}
	return token.Token{Kind: kind, Span: sp}
}

func (l *Lexer) scanNumber(start, startLine int) (token.Token, error) {
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}
	return token.Token{Kind: token.IntLiteral, Span: l.makeSpan(start, startLine)}, nil
}

func (l *Lexer) scanString(start, startLine int) (token.Token, error) {
	l.advance() // opening quote
	for {
		if l.eof() {
			return token.Token{}, &Error{File: l.file, Offset: start, Line: startLine, Message: "unterminated string literal"}
		}
		c := l.advance()
		if c == '\\' && !l.eof() {
			l.advance()
			continue
		}
		if c == '"' {
			break
		}
	}
	return token.Token{Kind: token.StringLiteral, Span: l.makeSpan(start, startLine)}, nil
}

func (l *Lexer) scanRune(start, startLine int) (token.Token, error) {
	l.advance() // opening quote
	for {
		if l.eof() {
			return token.Token{}, &Error{File: l.file, Offset: start, Line: startLine, Message: "unterminated rune literal"}
		}
		c := l.advance()
		if c == '\\' && !l.eof() {
			l.advance()
			continue
		}
		if c == '\'' {
			break
		}
	}
	return token.Token{Kind: token.RuneLiteral, Span: l.makeSpan(start, startLine)}, nil
}

var compoundAssignOps = []string{"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>="}

func (l *Lexer) scanSymbol(start, startLine int) (token.Token, error) {
	c := l.advance()
	switch c {
	case '(':
		return token.Token{Kind: token.LParen, Span: l.makeSpan(start, startLine)}, nil
	case ')':
		return token.Token{Kind: token.RParen, Span: l.makeSpan(start, startLine)}, nil
	case '{':
		return token.Token{Kind: token.LBrace, Span: l.makeSpan(start, startLine)}, nil
	case '}':
		return token.Token{Kind: token.RBrace, Span: l.makeSpan(start, startLine)}, nil
	case '[':
		return token.Token{Kind: token.LBracket, Span: l.makeSpan(start, startLine)}, nil
	case ']':
		return token.Token{Kind: token.RBracket, Span: l.makeSpan(start, startLine)}, nil
	case ',':
		return token.Token{Kind: token.Comma, Span: l.makeSpan(start, startLine)}, nil
	case ';':
		return token.Token{Kind: token.Semicolon, Span: l.makeSpan(start, startLine)}, nil
	case '.':
		return token.Token{Kind: token.Dot, Span: l.makeSpan(start, startLine)}, nil
	case '+':
		if l.peek() == '+' {
			l.advance()
			return token.Token{Kind: token.Inc, Span: l.makeSpan(start, startLine)}, nil
		}
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.CompoundAssign, Span: l.makeSpan(start, startLine)}, nil
		}
		return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
	case '-':
		if l.peek() == '-' {
			l.advance()
			return token.Token{Kind: token.Dec, Span: l.makeSpan(start, startLine)}, nil
		}
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.CompoundAssign, Span: l.makeSpan(start, startLine)}, nil
		}
		return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
	case '<':
		if l.peek() == '-' {
			l.advance()
			return token.Token{Kind: token.Arrow, Span: l.makeSpan(start, startLine)}, nil
		}
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
		}
		if l.peek() == '<' {
			l.advance()
			if l.peek() == '=' {
				l.advance()
				return token.Token{Kind: token.CompoundAssign, Span: l.makeSpan(start, startLine)}, nil
			}
			return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
		}
		return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
		}
		if l.peek() == '>' {
			l.advance()
			if l.peek() == '=' {
				l.advance()
				return token.Token{Kind: token.CompoundAssign, Span: l.makeSpan(start, startLine)}, nil
			}
			return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
		}
		return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
	case '=':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
		}
		return token.Token{Kind: token.Assign, Span: l.makeSpan(start, startLine)}, nil
	case ':':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.Define, Span: l.makeSpan(start, startLine)}, nil
		}
		return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
	case '!':
		if l.peek() == '=' {
			l.advance()
		}
		return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
	case '&':
		if l.peek() == '&' {
			l.advance()
			return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
		}
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.CompoundAssign, Span: l.makeSpan(start, startLine)}, nil
		}
		return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
	case '|':
		if l.peek() == '|' {
			l.advance()
			return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
		}
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.CompoundAssign, Span: l.makeSpan(start, startLine)}, nil
		}
		return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
	case '^':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.CompoundAssign, Span: l.makeSpan(start, startLine)}, nil
		}
		return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
	case '*', '/', '%':
		if l.peek() == '=' {
			l.advance()
			return token.Token{Kind: token.CompoundAssign, Span: l.makeSpan(start, startLine)}, nil
		}
		return token.Token{Kind: token.Operator, Span: l.makeSpan(start, startLine)}, nil
	}
	return token.Token{}, &Error{File: l.file, Offset: start, Line: startLine, Message: fmt.Sprintf("unexpected character %q", c)}
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for !l.eof() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			l.scanLineComment()
		case c == '/' && l.peekAt(1) == '*':
			if err := l.scanBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Lexer) scanLineComment() {
	start := l.pos
	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	if ann := parseAnnotation(text); ann != nil {
		l.pending = ann
	}
}

func (l *Lexer) scanBlockComment() error {
	start := l.pos
	startLine := l.line
	l.advance()
	l.advance()
	for {
		if l.eof() {
			return &Error{File: l.file, Offset: start, Line: startLine, Message: "unterminated block comment"}
		}
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			break
		}
		l.advance()
	}
	text := string(l.src[start:l.pos])
	if ann := parseAnnotation(text); ann != nil {
		l.pending = ann
	}
	return nil
}

// parseAnnotation matches the fixed annotation grammar (spec.md §6): a scope
// identifier, "::", a brace-enclosed comma-separated tag list. Whitespace
// around tags is stripped, empty tags skipped. Returns nil if the comment
// text doesn't match the shape.
func parseAnnotation(comment string) *token.Annotation {
	body := strings.TrimPrefix(comment, "//")
	body = strings.TrimPrefix(body, "/*")
	body = strings.TrimSuffix(body, "*/")
	body = strings.TrimSpace(body)

	sepIdx := strings.Index(body, "::")
	if sepIdx < 0 {
		return nil
	}
	scope := strings.TrimSpace(body[:sepIdx])
	if scope == "" || !isIdentifier(scope) {
		return nil
	}
	rest := strings.TrimSpace(body[sepIdx+2:])
	if !strings.HasPrefix(rest, "{") || !strings.HasSuffix(rest, "}") {
		return nil
	}
	inner := rest[1 : len(rest)-1]
	var tags []string
	for _, part := range strings.Split(inner, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return &token.Annotation{Scope: scope, Tags: tags}
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 && !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
		if i > 0 && !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return len(s) > 0
}
