package parser

import (
	"github.com/taintflow/ifc/ast"
	"github.com/taintflow/ifc/token"
)

func (p *Parser) parseExprList() ([]ast.Expr, error) {
	var exprs []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.tok.Kind != token.Comma {
			break
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	return exprs, nil
}

// precedence returns the binary-operator precedence of the current token,
// or 0 if it isn't a binary operator in this position.
func (p *Parser) precedence() int {
	if p.tok.Kind != token.Operator {
		return 0
	}
	switch p.tok.Span.Lexeme {
	case "||":
		return 1
	case "&&":
		return 2
	case "==", "!=", "<", "<=", ">", ">=":
		return 3
	case "+", "-", "|", "^":
		return 4
	case "*", "/", "%", "&", "<<", ">>":
		return 5
	default:
		return 0
	}
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec := p.precedence()
		if prec < minPrec || prec == 0 {
			return left, nil
		}
		loc := p.tok.Span
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Right: right, Location: loc}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch {
	case p.tok.Kind == token.Arrow:
		loc := p.tok.Span
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Kind: ast.UnaryReceive, Operand: operand, Location: loc}, nil
	case p.tok.Kind == token.Operator && isUnaryPrefix(p.tok.Span.Lexeme):
		loc := p.tok.Span
		if err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Kind: ast.UnaryOther, Operand: operand, Location: loc}, nil
	default:
		return p.parsePostfix()
	}
}

func isUnaryPrefix(lexeme string) bool {
	switch lexeme {
	case "+", "-", "!", "^", "*", "&":
		return true
	}
	return false
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.Kind {
		case token.LParen:
			annTok := p.tok
			if err := p.next(); err != nil {
				return nil, err
			}
			var args []ast.Expr
			variadic := false
			for p.tok.Kind != token.RParen {
				arg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if p.tok.Kind == token.Operator && p.tok.Span.Lexeme == "..." {
					variadic = true
					if err := p.next(); err != nil {
						return nil, err
					}
				}
				if p.tok.Kind == token.Comma {
					if err := p.next(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
			if _, err := p.expect(token.RParen, ")"); err != nil {
				return nil, err
			}
			e = &ast.Call{Func: e, Args: args, Variadic: variadic, Location: annTok.Span, Annotation: annTok.Annotation}
		case token.LBracket:
			loc := p.tok.Span
			if err := p.next(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBracket, "]"); err != nil {
				return nil, err
			}
			e = &ast.Indexing{Expr: e, Index: idx, Location: loc}
		case token.Dot:
			if err := p.next(); err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Ident, "identifier"); err != nil {
				return nil, err
			}
			// field/method selectors are not tracked as distinct symbols
			// (spec.md §1 non-goal: no field sensitivity); the selector
			// collapses to the base expression's label.
		default:
			return e, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.tok.Kind {
	case token.IntLiteral, token.RuneLiteral, token.StringLiteral:
		sp := p.tok.Span
		if err := p.next(); err != nil {
			return nil, err
		}
		return &ast.Literal{Span: sp}, nil
	case token.Keyword:
		if p.tok.Span.Lexeme == "true" || p.tok.Span.Lexeme == "false" || p.tok.Span.Lexeme == "nil" {
			sp := p.tok.Span
			if err := p.next(); err != nil {
				return nil, err
			}
			return &ast.Literal{Span: sp}, nil
		}
		return nil, p.errorf("unexpected keyword %q in expression", p.tok.Span.Lexeme)
	case token.Ident:
		idTok := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.tok.Kind == token.Dot {
			save := idTok.Span
			if err := p.next(); err != nil {
				return nil, err
			}
			if p.tok.Kind == token.Ident {
				idTok2 := p.tok
				if err := p.next(); err != nil {
					return nil, err
				}
				return &ast.Name{Package: &save, ID: idTok2.Span}, nil
			}
			return nil, p.errorf("expected identifier after '.'")
		}
		return &ast.Name{ID: idTok.Span}, nil
	case token.LParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen, ")"); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, p.errorf("unexpected token %q in expression", p.tok.Span.Lexeme)
	}
}
