package parser

import (
	"strconv"

	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/diagnostics"
	"github.com/ChAoSUnItY/Yakou/internal/token"
)

// parseExpression is the Pratt-parsing core: parse a prefix expression,
// then repeatedly fold in infix/postfix operators whose precedence
// exceeds the caller's floor, building a left-leaning tree.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixFns[p.cur.Kind]
	if !ok {
		p.noPrefixParseFnError()
		return nil
	}
	left := prefix()

	for !p.peekIs(token.SEMI) && precedence < p.peekPrecedence() {
		infix, ok := p.infixFns[p.peek.Kind]
		if !ok {
			return left
		}
		p.advance()
		left = infix(left)
	}
	return left
}

// parseArgumentList parses "(" [Expr {"," Expr}] ")", cur on the
// opening "(".
func (p *Parser) parseArgumentList() []ast.Expression {
	var args []ast.Expression
	if p.peekIs(token.RPAREN) {
		p.advance()
		return args
	}
	p.advance()
	args = append(args, p.parseExpression(LOWEST))
	for p.peekIs(token.COMMA) {
		p.advance()
		p.advance()
		args = append(args, p.parseExpression(LOWEST))
	}
	p.expect(token.RPAREN)
	return args
}

// parseExprList parses "{" [Expr {"," Expr}] "}" (close is RBRACE) or an
// analogous bracketed list, cur on the opening brace.
func (p *Parser) parseExprList(closeKind token.Kind) []ast.Expression {
	var elems []ast.Expression
	if p.peekIs(closeKind) {
		p.advance()
		return elems
	}
	p.advance()
	elems = append(elems, p.parseExpression(LOWEST))
	for p.peekIs(token.COMMA) {
		p.advance()
		p.advance()
		elems = append(elems, p.parseExpression(LOWEST))
	}
	p.expect(closeKind)
	return elems
}

// ---------------------------------------------------------------------
// Prefix (primary) parsers
// ---------------------------------------------------------------------

func (p *Parser) parseIntegerLiteral() ast.Expression {
	pos := p.cur.Pos
	val, err := strconv.ParseInt(p.cur.Literal, 0, 64)
	if err != nil {
		p.sink.Add(diagnostics.NewWarning(diagnostics.PhaseParser, diagnostics.IInternal, pos, "malformed integer literal "+p.cur.Literal))
	}
	return &ast.IntegerLiteral{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Value: val}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	pos := p.cur.Pos
	lit := p.cur.Literal
	forced64 := false
	if n := len(lit); n > 0 && (lit[n-1] == 'D' || lit[n-1] == 'd') {
		forced64 = true
		lit = lit[:n-1]
	}
	val, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.sink.Add(diagnostics.NewWarning(diagnostics.PhaseParser, diagnostics.IInternal, pos, "malformed float literal "+lit))
	}
	return &ast.FloatLiteral{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Value: val, Forced64: forced64}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	pos := p.cur.Pos
	var v rune
	if runes := []rune(p.cur.Literal); len(runes) > 0 {
		v = runes[0]
	}
	return &ast.CharLiteral{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: p.cur.Pos}}, Value: p.cur.Literal}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return &ast.BoolLiteral{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: p.cur.Pos}}, Value: p.curIs(token.KW_TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: p.cur.Pos}}}
}

func (p *Parser) parseSelfPrimary() ast.Expression {
	return &ast.IdentifierCall{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: p.cur.Pos}}, Name: "self", Index: -1}
}

// parseIdentifierPrimary parses a bare name, an owner-qualified
// "Owner::name"/"Owner::name(args)" path, or (when followed by ':')
// hands off to the typed array syntax of spec §4.1.
func (p *Parser) parseIdentifierPrimary() ast.Expression {
	pos := p.cur.Pos
	path := []string{p.cur.Literal}
	for p.peekIs(token.COLONCOLON) {
		p.advance()
		if !p.expect(token.IDENT) {
			break
		}
		path = append(path, p.cur.Literal)
	}

	if p.peekIs(token.COLON) {
		return p.parseTypedArraySyntax(path, pos)
	}

	name := path[len(path)-1]
	var ownerRef *ast.Reference
	if len(path) > 1 {
		owner := ast.Reference{Path: path[:len(path)-1], Name: path[len(path)-2], P: pos}
		ownerRef = &owner
	}

	if p.peekIs(token.LPAREN) {
		p.advance()
		args := p.parseArgumentList()
		return &ast.FunctionCall{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, OwnerRef: ownerRef, Name: name, Args: args}
	}
	return &ast.IdentifierCall{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, OwnerRef: ownerRef, Name: name, Index: -1}
}

// parseConstructorCall parses "new" QualifiedName "(" args ")", cur on
// KW_NEW.
func (p *Parser) parseConstructorCall() ast.Expression {
	pos := p.cur.Pos
	p.advance()
	path := p.parseColonColonName()
	ref := ast.Reference{Path: path, Name: path[len(path)-1], P: pos}
	if !p.expect(token.LPAREN) {
		return &ast.ConstructorCall{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, OwnerRef: ref}
	}
	args := p.parseArgumentList()
	return &ast.ConstructorCall{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, OwnerRef: ref, Args: args}
}

func (p *Parser) parseParenthesizedExpression() ast.Expression {
	pos := p.cur.Pos
	p.advance()
	inner := p.parseExpression(LOWEST)
	p.expect(token.RPAREN)
	return &ast.ParenthesizedExpression{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Inner: inner}
}

// parseInferredArrayInitialization parses the bare ":{Exprs}" form with
// no leading type reference, cur on ':'.
func (p *Parser) parseInferredArrayInitialization() ast.Expression {
	pos := p.cur.Pos
	if !p.expect(token.LBRACE) {
		return &ast.ArrayInitialization{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}}
	}
	elems := p.parseExprList(token.RBRACE)
	return &ast.ArrayInitialization{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Elements: elems}
}

// parseTypedArraySyntax parses the remainder of
// "TypeRef ':' '[' Expr? ']' {...} '{' Exprs? '}'" after the leading
// type path has already been consumed into path; cur is on the last
// identifier of that path and peek is ':'.
func (p *Parser) parseTypedArraySyntax(path []string, pos token.Position) ast.Expression {
	p.advance() // cur = ':'
	ref := ast.Reference{Path: path, Name: path[len(path)-1], P: pos}
	baseTypeRef := ast.TypeRef{Ref: ref}

	var dims []ast.Expression
	sawDimExpr := false
	for p.peekIs(token.LBRACKET) {
		p.advance() // cur = '['
		var dim ast.Expression
		if !p.peekIs(token.RBRACKET) {
			p.advance()
			dim = p.parseExpression(LOWEST)
			sawDimExpr = true
		}
		p.expect(token.RBRACKET)
		dims = append(dims, dim)
	}

	if sawDimExpr {
		return &ast.ArrayDeclaration{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, BaseTypeRef: baseTypeRef, Dimensions: dims}
	}

	if !p.expect(token.LBRACE) {
		return &ast.ArrayInitialization{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, InferTypeRef: &baseTypeRef}
	}
	elems := p.parseExprList(token.RBRACE)
	return &ast.ArrayInitialization{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, InferTypeRef: &baseTypeRef, Elements: elems}
}

func unaryOpFromKind(k token.Kind) ast.UnaryOp {
	switch k {
	case token.PLUS:
		return ast.UnaryPlus
	case token.MINUS:
		return ast.UnaryMinus
	case token.BANG:
		return ast.UnaryNot
	case token.TILDE:
		return ast.UnaryBNot
	default:
		return ast.UnaryPlus
	}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	op := unaryOpFromKind(p.cur.Kind)
	pos := p.cur.Pos
	p.advance()
	operand := p.parseExpression(PREFIX)
	return &ast.UnaryExpression{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Op: op, Operand: operand}
}

// ---------------------------------------------------------------------
// Infix / postfix parsers
// ---------------------------------------------------------------------

func binaryOpFromKind(k token.Kind) ast.BinaryOp {
	switch k {
	case token.PLUS:
		return ast.OpAdd
	case token.MINUS:
		return ast.OpSub
	case token.STAR:
		return ast.OpMul
	case token.SLASH:
		return ast.OpDiv
	case token.PERCENT:
		return ast.OpMod
	case token.LT:
		return ast.OpLt
	case token.LTE:
		return ast.OpLte
	case token.GT:
		return ast.OpGt
	case token.GTE:
		return ast.OpGte
	case token.EQ:
		return ast.OpEq
	case token.NEQ:
		return ast.OpNeq
	case token.ANDAND:
		return ast.OpAnd
	case token.OROR:
		return ast.OpOr
	case token.PIPE:
		return ast.OpBOr
	case token.CARET:
		return ast.OpBXor
	case token.AMP:
		return ast.OpBAnd
	case token.SHL:
		return ast.OpShl
	case token.SHR:
		return ast.OpShr
	case token.USHR:
		return ast.OpUShr
	default:
		return ast.OpAdd
	}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	pos := left.Pos()
	op := binaryOpFromKind(p.cur.Kind)
	precedence := p.curPrecedence()
	p.advance()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpression{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Left: left, Op: op, Right: right}
}

// parseAssignmentExpression parses "left = right", right-associative:
// the recursive call uses LOWEST so a chained "a = b = c" nests as
// a = (b = c).
func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	pos := left.Pos()
	p.advance()
	right := p.parseExpression(LOWEST)
	return &ast.AssignmentExpression{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Left: left, Op: ast.AssignPlain, Right: right, RetainValue: true}
}

func (p *Parser) parseIndexSuffix(left ast.Expression) ast.Expression {
	pos := left.Pos()
	p.advance()
	idx := p.parseExpression(LOWEST)
	p.expect(token.RBRACKET)
	return &ast.IndexExpression{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Previous: left, IndexExpr: idx}
}

// parseChainSuffix parses ".name" or ".name(args)" following left, cur
// on the '.'.
func (p *Parser) parseChainSuffix(left ast.Expression) ast.Expression {
	pos := left.Pos()
	if !p.expect(token.IDENT) {
		return left
	}
	name := p.cur.Literal
	if p.peekIs(token.LPAREN) {
		p.advance()
		args := p.parseArgumentList()
		return &ast.FunctionCall{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Previous: left, Name: name, Args: args}
	}
	return &ast.IdentifierCall{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Previous: left, Name: name, Index: -1}
}

// parsePostfixExpression parses the trailing "++"/"--" of spec §4.1
// level 11, valid only after an identifier-call.
func (p *Parser) parsePostfixExpression(left ast.Expression) ast.Expression {
	pos := left.Pos()
	op := ast.UnaryIncr
	if p.curIs(token.DECR) {
		op = ast.UnaryDecr
	}
	if _, ok := left.(*ast.IdentifierCall); !ok {
		p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SUnexpectedToken, pos, "an identifier", "expression"))
	}
	return &ast.UnaryExpression{ExprBase: ast.ExprBase{NodeBase: ast.NodeBase{P: pos}}, Op: op, Operand: left, IsPostfix: true, RetainValue: true}
}
