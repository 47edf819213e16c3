package parser

import (
	"github.com/taintflow/ifc/ast"
	"github.com/taintflow/ifc/token"
)

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.isKeyword("const"), p.isKeyword("var"):
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		return &ast.DeclStmt{Decl: decl}, nil
	case p.isKeyword("type"):
		if err := p.skipTypeDecl(); err != nil {
			return nil, err
		}
		return nil, nil
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.isKeyword("go"):
		return p.parseGo()
	case p.tok.Kind == token.LBrace:
		stmts, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.Block{Stmts: stmts}, nil
	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) parseIf() (*ast.If, error) {
	if _, err := p.expectKeyword("if"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	node := &ast.If{Cond: cond, Then: then}
	if p.isKeyword("else") {
		if err := p.next(); err != nil {
			return nil, err
		}
		if p.isKeyword("if") {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			node.ElseKind = ast.ElseIf
			node.ElseIf = elseIf
		} else {
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			node.ElseKind = ast.ElseBlock
			node.ElseBlock = block
		}
	}
	return node, nil
}

func (p *Parser) parseFor() (*ast.For, error) {
	if _, err := p.expectKeyword("for"); err != nil {
		return nil, err
	}
	var cond ast.Expr
	if p.tok.Kind != token.LBrace {
		c, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cond = c
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (*ast.Return, error) {
	kwTok, err := p.expectKeyword("return")
	if err != nil {
		return nil, err
	}
	var exprs []ast.Expr
	if p.tok.Kind != token.Semicolon && p.tok.Kind != token.RBrace {
		es, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		exprs = es
	}
	return &ast.Return{Exprs: exprs, Location: kwTok.Span}, nil
}

func (p *Parser) parseGo() (*ast.Go, error) {
	kwTok, err := p.expectKeyword("go")
	if err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Go{Expr: e, Location: kwTok.Span}, nil
}

func (p *Parser) parseSimpleStmt() (ast.Stmt, error) {
	lhs, err := p.parseExprList()
	if err != nil {
		return nil, err
	}

	switch p.tok.Kind {
	case token.Define:
		annTok := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		ids := make([]ast.Span, len(lhs))
		for i, e := range lhs {
			name, ok := e.(*ast.Name)
			if !ok {
				return nil, p.errorf("left side of := must be an identifier")
			}
			ids[i] = name.ID
		}
		rhs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return &ast.ShortVarDecl{IDs: ids, Exprs: rhs, Location: annTok.Span, Annotation: annTok.Annotation}, nil
	case token.Assign:
		loc := p.tok.Span
		if err := p.next(); err != nil {
			return nil, err
		}
		rhs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Kind: ast.AssignSimple, LHS: lhs, RHS: rhs, Location: loc}, nil
	case token.CompoundAssign:
		loc := p.tok.Span
		if err := p.next(); err != nil {
			return nil, err
		}
		rhs, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Kind: ast.AssignCompound, LHS: lhs, RHS: rhs, Location: loc}, nil
	case token.Inc, token.Dec:
		kind := ast.IncOp
		if p.tok.Kind == token.Dec {
			kind = ast.DecOp
		}
		loc := p.tok.Span
		if err := p.next(); err != nil {
			return nil, err
		}
		if len(lhs) != 1 {
			return nil, p.errorf("inc/dec requires exactly one operand")
		}
		return &ast.IncDec{Kind: kind, Operand: lhs[0], Location: loc}, nil
	case token.Arrow:
		// send statement: channel <- expr
		annTok := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		if len(lhs) != 1 {
			return nil, p.errorf("send statement requires a single channel expression")
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.Send{Channel: lhs[0], Expr: val, Annotation: annTok.Annotation, Location: annTok.Span}, nil
	default:
		if len(lhs) != 1 {
			return nil, p.errorf("unexpected expression list in statement position")
		}
		return &ast.ExprStmt{Expr: lhs[0]}, nil
	}
}
