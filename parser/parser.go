// Package parser turns a lexer's token sequence into an ast.SourceFile,
// preserving source locations on every node and carrying annotations on the
// node kinds that admit them (spec.md §2 step 2).
package parser

import (
	"fmt"

	"github.com/taintflow/ifc/ast"
	"github.com/taintflow/ifc/lexer"
	"github.com/taintflow/ifc/span"
	"github.com/taintflow/ifc/token"
)

// Error reports a syntax error encountered while parsing one file. A parse
// error is the single fatal condition in the pipeline (spec.md §7): the
// caller collects these across all files and aborts analysis if any file
// fails to parse.
type Error struct {
	File    int
	Span    span.Span
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.File, e.Span.Line, e.Message)
}

// Parser is a recursive-descent parser with one token of lookahead.
type Parser struct {
	file int
	lex  *lexer.Lexer
	tok  token.Token
}

// Parse lexes and parses a whole source file.
func Parse(file int, src []byte) (*ast.SourceFile, error) {
	p := &Parser{file: file, lex: lexer.New(file, src)}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p.parseSourceFile()
}

func (p *Parser) next() error {
	t, err := p.lex.Next()
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			return &Error{File: p.file, Span: span.Span{File: p.file, Line: le.Line}, Message: le.Message}
		}
		return err
	}
	p.tok = t
	return nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return &Error{File: p.file, Span: p.tok.Span, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(k token.Kind, what string) (token.Token, error) {
	if p.tok.Kind != k {
		return token.Token{}, p.errorf("expected %s, got %q", what, p.tok.Span.Lexeme)
	}
	t := p.tok
	if err := p.next(); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

func (p *Parser) isKeyword(kw string) bool {
	return p.tok.Kind == token.Keyword && p.tok.Span.Lexeme == kw
}

func (p *Parser) expectKeyword(kw string) (token.Token, error) {
	if !p.isKeyword(kw) {
		return token.Token{}, p.errorf("expected %q, got %q", kw, p.tok.Span.Lexeme)
	}
	t := p.tok
	if err := p.next(); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

// skipSemicolons consumes zero or more statement separators.
func (p *Parser) skipSemicolons() error {
	for p.tok.Kind == token.Semicolon {
		if err := p.next(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseSourceFile() (*ast.SourceFile, error) {
	if _, err := p.expectKeyword("package"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Ident, "package name")
	if err != nil {
		return nil, err
	}
	if err := p.skipSemicolons(); err != nil {
		return nil, err
	}

	file := &ast.SourceFile{Package: nameTok.Span.Lexeme}

	for p.isKeyword("import") {
		imp, err := p.parseImport()
		if err != nil {
			return nil, err
		}
		file.Imports = append(file.Imports, imp...)
		if err := p.skipSemicolons(); err != nil {
			return nil, err
		}
	}

	for p.tok.Kind != token.EOF {
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		if decl != nil {
			file.Decls = append(file.Decls, decl)
		}
		if err := p.skipSemicolons(); err != nil {
			return nil, err
		}
	}
	return file, nil
}

func (p *Parser) parseImport() ([]ast.Import, error) {
	if _, err := p.expectKeyword("import"); err != nil {
		return nil, err
	}
	if p.tok.Kind == token.LParen {
		if err := p.next(); err != nil {
			return nil, err
		}
		var imports []ast.Import
		for p.tok.Kind != token.RParen {
			imp, err := p.parseOneImport()
			if err != nil {
				return nil, err
			}
			imports = append(imports, imp)
			if err := p.skipSemicolons(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RParen, ")"); err != nil {
			return nil, err
		}
		return imports, nil
	}
	imp, err := p.parseOneImport()
	if err != nil {
		return nil, err
	}
	return []ast.Import{imp}, nil
}

func (p *Parser) parseOneImport() (ast.Import, error) {
	var alias string
	if p.tok.Kind == token.Ident {
		alias = p.tok.Span.Lexeme
		if err := p.next(); err != nil {
			return ast.Import{}, err
		}
	}
	pathTok, err := p.expect(token.StringLiteral, "import path")
	if err != nil {
		return ast.Import{}, err
	}
	return ast.Import{Alias: alias, Path: pathTok.Span.Lexeme, Span: pathTok.Span}, nil
}

func (p *Parser) parseDecl() (ast.Decl, error) {
	switch {
	case p.isKeyword("const"):
		return p.parseBindingDecl(true)
	case p.isKeyword("var"):
		return p.parseBindingDecl(false)
	case p.isKeyword("func"):
		return p.parseFunctionDecl()
	case p.isKeyword("type"):
		return nil, p.skipTypeDecl()
	default:
		return nil, p.errorf("expected declaration, got %q", p.tok.Span.Lexeme)
	}
}

// skipTypeDecl consumes a type declaration without modeling it: type
// declarations carry no labels and are out of the taint engine's scope
// (spec.md §3 enumerates only Const/Var/Function as inspected Decl kinds).
func (p *Parser) skipTypeDecl() error {
	if _, err := p.expectKeyword("type"); err != nil {
		return err
	}
	depth := 0
	for {
		switch p.tok.Kind {
		case token.LBrace, token.LParen:
			depth++
		case token.RBrace, token.RParen:
			depth--
		case token.Semicolon, token.EOF:
			if depth <= 0 {
				return nil
			}
		}
		if err := p.next(); err != nil {
			return err
		}
	}
}

func (p *Parser) parseBindingDecl(isConst bool) (ast.Decl, error) {
	kwTok, err := p.expectAny()
	if err != nil {
		return nil, err
	}
	annotation := kwTok.Annotation

	var specs []ast.BindingSpec
	if p.tok.Kind == token.LParen {
		if err := p.next(); err != nil {
			return nil, err
		}
		for p.tok.Kind != token.RParen {
			s, err := p.parseBindingSpec()
			if err != nil {
				return nil, err
			}
			specs = append(specs, s...)
			if err := p.skipSemicolons(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RParen, ")"); err != nil {
			return nil, err
		}
	} else {
		s, err := p.parseBindingSpec()
		if err != nil {
			return nil, err
		}
		specs = s
	}

	if isConst {
		return &ast.ConstDecl{Specs: specs, Annotation: annotation}, nil
	}
	return &ast.VarDecl{Specs: specs, Annotation: annotation}, nil
}

// expectAny consumes the current const/var keyword token, returning it (its
// Annotation field carries any comment-attached annotation).
func (p *Parser) expectAny() (token.Token, error) {
	t := p.tok
	if err := p.next(); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

func (p *Parser) parseBindingSpec() ([]ast.BindingSpec, error) {
	var names []span.Span
	for {
		nameTok, err := p.expect(token.Ident, "identifier")
		if err != nil {
			return nil, err
		}
		names = append(names, nameTok.Span)
		if p.tok.Kind != token.Comma {
			break
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}

	// optional type: skip a single type-looking token run until '=' or ';'
	if p.tok.Kind != token.Assign && p.tok.Kind != token.Semicolon && p.tok.Kind != token.RParen {
		if err := p.skipType(); err != nil {
			return nil, err
		}
	}

	var exprs []ast.Expr
	if p.tok.Kind == token.Assign {
		if err := p.next(); err != nil {
			return nil, err
		}
		es, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		exprs = es
	}

	specs := make([]ast.BindingSpec, len(names))
	for i, n := range names {
		var init ast.Expr
		if i < len(exprs) {
			init = exprs[i]
		}
		specs[i] = ast.BindingSpec{Name: n, Init: init}
	}
	return specs, nil
}

// skipType consumes a (possibly qualified, possibly pointer/slice/map)
// type expression; types carry no labels so the engine never inspects
// their shape beyond recognizing their extent.
func (p *Parser) skipType() error {
	for p.tok.Kind == token.Operator && (p.tok.Span.Lexeme == "*" || p.tok.Span.Lexeme == "[]") {
		if err := p.next(); err != nil {
			return err
		}
	}
	if p.tok.Kind == token.LBracket {
		depth := 0
		for {
			if p.tok.Kind == token.LBracket {
				depth++
			}
			if p.tok.Kind == token.RBracket {
				depth--
			}
			if err := p.next(); err != nil {
				return err
			}
			if depth == 0 {
				break
			}
		}
	}
	if p.tok.Kind != token.Ident && !(p.tok.Kind == token.Keyword) {
		return nil
	}
	isMap := p.tok.Kind == token.Keyword && p.tok.Span.Lexeme == "map"
	if err := p.next(); err != nil {
		return err
	}
	if isMap {
		// map[K]V: the bracketed key type, then the value type.
		return p.skipType()
	}
	if p.tok.Kind == token.Dot {
		if err := p.next(); err != nil {
			return err
		}
		if _, err := p.expect(token.Ident, "identifier"); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseFunctionDecl() (*ast.FunctionDecl, error) {
	if _, err := p.expectKeyword("func"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Ident, "function name")
	if err != nil {
		return nil, err
	}
	sig, err := p.parseSignature()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDecl{Name: nameTok.Span, Signature: sig, Body: body}, nil
}

func (p *Parser) parseSignature() (ast.FunctionSignature, error) {
	if _, err := p.expect(token.LParen, "("); err != nil {
		return ast.FunctionSignature{}, err
	}
	var params []span.Span
	for p.tok.Kind != token.RParen {
		var group []span.Span
		for {
			idTok, err := p.expect(token.Ident, "parameter name")
			if err != nil {
				return ast.FunctionSignature{}, err
			}
			group = append(group, idTok.Span)
			if p.tok.Kind != token.Comma {
				break
			}
			if err := p.next(); err != nil {
				return ast.FunctionSignature{}, err
			}
		}
		if err := p.skipType(); err != nil {
			return ast.FunctionSignature{}, err
		}
		params = append(params, group...)
		if p.tok.Kind == token.Comma {
			if err := p.next(); err != nil {
				return ast.FunctionSignature{}, err
			}
		}
	}
	if _, err := p.expect(token.RParen, ")"); err != nil {
		return ast.FunctionSignature{}, err
	}
	// optional result type(s); skip entirely, results carry no named
	// identifiers the engine models (no named-return support).
	if p.tok.Kind == token.LParen {
		depth := 0
		for {
			if p.tok.Kind == token.LParen {
				depth++
			}
			if p.tok.Kind == token.RParen {
				depth--
			}
			if err := p.next(); err != nil {
				return ast.FunctionSignature{}, err
			}
			if depth == 0 {
				break
			}
		}
	} else if p.tok.Kind != token.LBrace {
		if err := p.skipType(); err != nil {
			return ast.FunctionSignature{}, err
		}
	}
	return ast.FunctionSignature{Params: params}, nil
}

func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.expect(token.LBrace, "{"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for p.tok.Kind != token.RBrace {
		if p.tok.Kind == token.Semicolon {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		if s != nil {
			stmts = append(stmts, s)
		}
		if err := p.skipSemicolons(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RBrace, "}"); err != nil {
		return nil, err
	}
	return stmts, nil
}
