package parser

import (
	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/token"
)

// parseBlockBody parses the statement list of a brace group, with cur on
// the opening '{'; it leaves cur on the matching '}' (or EOF on a
// truncated stream).
func (p *Parser) parseBlockBody() []ast.Statement {
	p.advance()
	var stmts []ast.Statement
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.peekIs(token.SEMI) {
			p.advance()
		}
		p.advance()
	}
	return stmts
}

// afterPeekIs reports whether the token following p.peek is k.
func (p *Parser) afterPeekIs(k token.Kind) bool {
	after := p.stream.Peek(1)
	return len(after) > 0 && after[0].Kind == k
}

// peekIsStatementEnd reports whether peek closes the enclosing block or
// ends the stream, used to decide whether "return" carries a value.
func (p *Parser) peekIsStatementEnd() bool {
	return p.peekIs(token.SEMI) || p.peekIs(token.RBRACE) || p.peekIs(token.EOF)
}

// parseStatement dispatches on cur per spec §4.1's statement
// disambiguation rules, leaving cur on the last token it consumed.
func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.curIs(token.KW_MUT) && p.peekIs(token.IDENT) && p.afterPeekIs(token.WALRUS):
		return p.parseVariableDeclaration(true)
	case p.curIs(token.IDENT) && p.peekIs(token.WALRUS):
		return p.parseVariableDeclaration(false)
	case p.curIs(token.KW_RETURN):
		return p.parseReturnStatement()
	case p.curIs(token.KW_IF):
		return p.parseIfStatement()
	case p.curIs(token.LBRACE):
		return p.parseBlockStatement()
	case p.curIs(token.KW_FOR):
		return p.parseForStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// parseVariableDeclaration parses "[mut] Identifier ':=' Expr", cur on
// the leading "mut" (if mut) or directly on the identifier.
func (p *Parser) parseVariableDeclaration(mut bool) *ast.VariableDeclaration {
	pos := p.cur.Pos
	if mut {
		p.advance()
	}
	name := p.cur.Literal
	if !p.expect(token.WALRUS) {
		return &ast.VariableDeclaration{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{P: pos}}, Mut: mut, Name: name, Index: -1}
	}
	p.advance()
	expr := p.parseExpression(LOWEST)
	return &ast.VariableDeclaration{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{P: pos}}, Mut: mut, Name: name, Expr: expr, Index: -1}
}

// parseReturnStatement parses "return [Expr]", cur on KW_RETURN.
func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	pos := p.cur.Pos
	var expr ast.Expression
	if !p.peekIsStatementEnd() {
		p.advance()
		expr = p.parseExpression(LOWEST)
	}
	return &ast.ReturnStatement{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{P: pos}}, Expr: expr}
}

// parseIfStatement parses "if Expr Stmt [else Stmt]", cur on KW_IF.
func (p *Parser) parseIfStatement() *ast.IfStatement {
	pos := p.cur.Pos
	p.advance()
	cond := p.parseExpression(LOWEST)
	p.advance()
	then := p.parseStatement()

	var elseStmt ast.Statement
	if p.peekIs(token.KW_ELSE) {
		p.advance()
		p.advance()
		elseStmt = p.parseStatement()
	}
	return &ast.IfStatement{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{P: pos}}, Cond: cond, Then: then, Else: elseStmt}
}

// parseForStatement parses "for Stmt ';' Expr? ';' Stmt Stmt", cur on
// KW_FOR — the classic C-style header of spec §4.1/§4.3.
func (p *Parser) parseForStatement() *ast.JForStatement {
	pos := p.cur.Pos
	p.advance()
	init := p.parseStatement()
	p.expect(token.SEMI)

	var cond ast.Expression
	if !p.peekIs(token.SEMI) {
		p.advance()
		cond = p.parseExpression(LOWEST)
	}
	p.expect(token.SEMI)

	p.advance()
	post := p.parseStatement()

	p.advance()
	body := p.parseStatement()

	return &ast.JForStatement{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{P: pos}}, Init: init, Cond: cond, Post: post, Body: body}
}

// parseBlockStatement parses "{ Stmt* }", cur on the opening '{'.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	pos := p.cur.Pos
	stmts := p.parseBlockBody()
	return &ast.BlockStatement{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{P: pos}}, Statements: stmts}
}

// parseExpressionStatement wraps a bare expression, the fallback of
// spec §4.1's statement dispatch.
func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	pos := p.cur.Pos
	expr := p.parseExpression(LOWEST)
	return &ast.ExpressionStatement{StmtBase: ast.StmtBase{NodeBase: ast.NodeBase{P: pos}}, Expr: expr}
}
