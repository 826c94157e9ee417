// Package parser implements a hand-written recursive-descent, Pratt-style
// parser that turns a token stream into an unchecked AST, recovering
// from local errors rather than aborting (spec §4.1).
package parser

import (
	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/diagnostics"
	"github.com/ChAoSUnItY/Yakou/internal/pipeline"
	"github.com/ChAoSUnItY/Yakou/internal/token"
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Operator precedence, lowest to highest binding — mirrors the twelve
// levels of spec §4.1's table. Postfix "++"/"--", chain "." and index
// "[" share the CALL level and are folded in through infixFns like the
// binary operators; primary expressions are the prefixFns.
const (
	LOWEST = iota
	ASSIGN
	LOGIC_OR
	LOGIC_AND
	EQUALITY
	RELATIONAL
	BIT_OR
	BIT_XOR
	BIT_AND
	SHIFT
	SUM
	PRODUCT
	PREFIX
	CALL
)

var precedences = map[token.Kind]int{
	token.ASSIGN:     ASSIGN,
	token.OROR:       LOGIC_OR,
	token.ANDAND:     LOGIC_AND,
	token.EQ:         EQUALITY,
	token.NEQ:        EQUALITY,
	token.LT:         RELATIONAL,
	token.LTE:        RELATIONAL,
	token.GT:         RELATIONAL,
	token.GTE:        RELATIONAL,
	token.PIPE:       BIT_OR,
	token.CARET:      BIT_XOR,
	token.AMP:        BIT_AND,
	token.SHL:        SHIFT,
	token.SHR:        SHIFT,
	token.USHR:       SHIFT,
	token.PLUS:       SUM,
	token.MINUS:      SUM,
	token.STAR:       PRODUCT,
	token.SLASH:      PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LBRACKET: CALL,
	token.DOT:      CALL,
	token.INCR:     CALL,
	token.DECR:     CALL,
}

// Parser holds the mutable state of one parse over a TokenStream.
type Parser struct {
	stream pipeline.TokenStream
	sink   *diagnostics.Sink

	cur  token.Token
	peek token.Token

	prefixFns map[token.Kind]prefixParseFn
	infixFns  map[token.Kind]infixParseFn
}

// New builds a Parser reading from stream, appending diagnostics to sink.
func New(stream pipeline.TokenStream, sink *diagnostics.Sink) *Parser {
	p := &Parser{stream: stream, sink: sink}

	p.prefixFns = map[token.Kind]prefixParseFn{
		token.IDENT:      p.parseIdentifierPrimary,
		token.INT_LIT:    p.parseIntegerLiteral,
		token.FLOAT_LIT:  p.parseFloatLiteral,
		token.CHAR_LIT:   p.parseCharLiteral,
		token.STRING_LIT: p.parseStringLiteral,
		token.KW_TRUE:    p.parseBoolLiteral,
		token.KW_FALSE:   p.parseBoolLiteral,
		token.KW_NULL:    p.parseNullLiteral,
		token.KW_SELF:    p.parseSelfPrimary,
		token.KW_NEW:     p.parseConstructorCall,
		token.LPAREN:     p.parseParenthesizedExpression,
		token.COLON:      p.parseInferredArrayInitialization,
		token.PLUS:       p.parseUnaryExpression,
		token.MINUS:      p.parseUnaryExpression,
		token.BANG:       p.parseUnaryExpression,
		token.TILDE:      p.parseUnaryExpression,
	}

	p.infixFns = map[token.Kind]infixParseFn{
		token.PLUS:    p.parseBinaryExpression,
		token.MINUS:   p.parseBinaryExpression,
		token.STAR:    p.parseBinaryExpression,
		token.SLASH:   p.parseBinaryExpression,
		token.PERCENT: p.parseBinaryExpression,
		token.LT:      p.parseBinaryExpression,
		token.LTE:     p.parseBinaryExpression,
		token.GT:      p.parseBinaryExpression,
		token.GTE:     p.parseBinaryExpression,
		token.EQ:      p.parseBinaryExpression,
		token.NEQ:     p.parseBinaryExpression,
		token.ANDAND:  p.parseBinaryExpression,
		token.OROR:    p.parseBinaryExpression,
		token.PIPE:    p.parseBinaryExpression,
		token.CARET:   p.parseBinaryExpression,
		token.AMP:     p.parseBinaryExpression,
		token.SHL:     p.parseBinaryExpression,
		token.SHR:     p.parseBinaryExpression,
		token.USHR:    p.parseBinaryExpression,
		token.ASSIGN:   p.parseAssignmentExpression,
		token.LBRACKET: p.parseIndexSuffix,
		token.DOT:      p.parseChainSuffix,
		token.INCR:     p.parsePostfixExpression,
		token.DECR:     p.parsePostfixExpression,
	}

	p.cur = p.stream.Next()
	p.peek = p.stream.Next()
	return p
}

// Parse runs a full File parse over stream, appending diagnostics to sink.
func Parse(path string, stream pipeline.TokenStream, sink *diagnostics.Sink) *ast.File {
	p := New(stream, sink)
	return p.ParseFile(path)
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.stream.Next()
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

// expect reports and returns false if the next token is not k; on
// success it advances past it. This is the "assert" helper of spec
// §4.1/§9: expect, report on miss, advance past the offending token so
// the caller's loop always makes progress.
func (p *Parser) expect(k token.Kind) bool {
	if p.peekIs(k) {
		p.advance()
		return true
	}
	p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SUnexpectedToken, p.peek.Pos, string(k), string(p.peek.Kind)))
	p.advance()
	return false
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.cur.Kind]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peek.Kind]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) noPrefixParseFnError() {
	p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SUnexpectedToken, p.cur.Pos, "an expression", string(p.cur.Kind)))
}
