package parser

import (
	"testing"

	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/diagnostics"
	"github.com/ChAoSUnItY/Yakou/internal/token"
)

// sliceStream is a pipeline.TokenStream fed from a literal []token.Token,
// used throughout these tests instead of running a real lexer.
type sliceStream struct {
	toks []token.Token
	pos  int
}

func (s *sliceStream) Next() token.Token {
	if s.pos >= len(s.toks) {
		return token.Token{Kind: token.EOF}
	}
	t := s.toks[s.pos]
	s.pos++
	return t
}

func (s *sliceStream) Peek(n int) []token.Token {
	out := make([]token.Token, 0, n)
	for i := 0; i < n && s.pos+i < len(s.toks); i++ {
		out = append(out, s.toks[s.pos+i])
	}
	return out
}

// tb builds a []token.Token one kind/literal pair at a time, assigning
// each token its own line so Position.Before gives a stable order.
type tb struct {
	line int
	toks []token.Token
}

func (b *tb) t(k token.Kind, lit string) *tb {
	b.line++
	b.toks = append(b.toks, token.Token{
		Kind: k, Literal: lit,
		Pos: token.Position{StartLine: b.line, StartCol: 1, EndLine: b.line, EndCol: 1 + len(lit)},
	})
	return b
}

func (b *tb) done() []token.Token {
	b.line++
	return append(b.toks, token.Token{Kind: token.EOF, Pos: token.Position{StartLine: b.line, StartCol: 1}})
}

func newParser(toks []token.Token, sink *diagnostics.Sink) *Parser {
	return New(&sliceStream{toks: toks}, sink)
}

func TestParseMinimalClassHasNoDiagnostics(t *testing.T) {
	toks := (&tb{}).t(token.KW_CLASS, "class").t(token.IDENT, "G").done()
	sink := diagnostics.NewSink()

	file := Parse("t.yk", &sliceStream{toks: toks}, sink)

	if file == nil || file.Class == nil {
		t.Fatal("Parse returned a nil File or Class")
	}
	if file.Class.Name != "G" {
		t.Errorf("Class.Name = %q, want %q", file.Class.Name, "G")
	}
	if sink.Len() != 0 {
		t.Errorf("expected no diagnostics, got %d: %v", sink.Len(), sink.Reports())
	}
}

func TestParseNeverReturnsNilFile(t *testing.T) {
	// A badly truncated stream should still recover rather than loop
	// forever or hand back a nil File (spec §8 property 1).
	toks := (&tb{}).t(token.KW_CLASS, "class").done()
	sink := diagnostics.NewSink()

	file := Parse("t.yk", &sliceStream{toks: toks}, sink)
	if file == nil {
		t.Fatal("Parse returned nil File on a truncated stream")
	}
}

func TestOperatorPrecedenceProductBindsTighterThanSum(t *testing.T) {
	// "1 + 2 * 3" must parse as 1 + (2 * 3), not (1 + 2) * 3.
	toks := (&tb{}).
		t(token.INT_LIT, "1").t(token.PLUS, "+").
		t(token.INT_LIT, "2").t(token.STAR, "*").t(token.INT_LIT, "3").
		done()
	sink := diagnostics.NewSink()
	p := newParser(toks, sink)

	expr := p.parseExpression(LOWEST)

	bin, ok := expr.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("top-level expression is %T, want *ast.BinaryExpression", expr)
	}
	if bin.Op != ast.OpAdd {
		t.Errorf("top-level op = %s, want +", bin.Op)
	}
	left, ok := bin.Left.(*ast.IntegerLiteral)
	if !ok || left.Value != 1 {
		t.Errorf("left operand = %#v, want IntegerLiteral(1)", bin.Left)
	}
	right, ok := bin.Right.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("right operand is %T, want *ast.BinaryExpression", bin.Right)
	}
	if right.Op != ast.OpMul {
		t.Errorf("right op = %s, want *", right.Op)
	}
	if sink.Len() != 0 {
		t.Errorf("expected no diagnostics, got %v", sink.Reports())
	}
}

func TestArraySyntaxDisambiguation(t *testing.T) {
	t.Run("sized declaration", func(t *testing.T) {
		toks := (&tb{}).
			t(token.IDENT, "Int").t(token.COLON, ":").
			t(token.LBRACKET, "[").t(token.INT_LIT, "3").t(token.RBRACKET, "]").
			done()
		p := newParser(toks, diagnostics.NewSink())

		expr := p.parseExpression(LOWEST)
		decl, ok := expr.(*ast.ArrayDeclaration)
		if !ok {
			t.Fatalf("expression is %T, want *ast.ArrayDeclaration", expr)
		}
		if decl.BaseTypeRef.Ref.Name != "Int" {
			t.Errorf("base type = %q, want Int", decl.BaseTypeRef.Ref.Name)
		}
		if len(decl.Dimensions) != 1 {
			t.Fatalf("len(Dimensions) = %d, want 1", len(decl.Dimensions))
		}
		dim, ok := decl.Dimensions[0].(*ast.IntegerLiteral)
		if !ok || dim.Value != 3 {
			t.Errorf("dimension = %#v, want IntegerLiteral(3)", decl.Dimensions[0])
		}
	})

	t.Run("inferred initialization", func(t *testing.T) {
		toks := (&tb{}).
			t(token.COLON, ":").t(token.LBRACE, "{").
			t(token.INT_LIT, "1").t(token.COMMA, ",").
			t(token.INT_LIT, "2").t(token.COMMA, ",").
			t(token.INT_LIT, "3").t(token.RBRACE, "}").
			done()
		p := newParser(toks, diagnostics.NewSink())

		expr := p.parseExpression(LOWEST)
		init, ok := expr.(*ast.ArrayInitialization)
		if !ok {
			t.Fatalf("expression is %T, want *ast.ArrayInitialization", expr)
		}
		if init.InferTypeRef != nil {
			t.Errorf("InferTypeRef = %v, want nil (no declared element type)", init.InferTypeRef)
		}
		if len(init.Elements) != 3 {
			t.Fatalf("len(Elements) = %d, want 3", len(init.Elements))
		}
	})

	t.Run("typed initialization", func(t *testing.T) {
		toks := (&tb{}).
			t(token.IDENT, "Int").t(token.COLON, ":").t(token.LBRACE, "{").
			t(token.INT_LIT, "1").t(token.COMMA, ",").t(token.INT_LIT, "2").
			t(token.RBRACE, "}").
			done()
		p := newParser(toks, diagnostics.NewSink())

		expr := p.parseExpression(LOWEST)
		init, ok := expr.(*ast.ArrayInitialization)
		if !ok {
			t.Fatalf("expression is %T, want *ast.ArrayInitialization", expr)
		}
		if init.InferTypeRef == nil || init.InferTypeRef.Ref.Name != "Int" {
			t.Errorf("InferTypeRef = %v, want a TypeRef naming Int", init.InferTypeRef)
		}
		if len(init.Elements) != 2 {
			t.Fatalf("len(Elements) = %d, want 2", len(init.Elements))
		}
	})
}

func TestDuplicateAccessBlockDiagnostic(t *testing.T) {
	// class G { pub: x: Int  pub: y: Int }
	toks := (&tb{}).
		t(token.KW_CLASS, "class").t(token.IDENT, "G").t(token.LBRACE, "{").
		t(token.KW_PUB, "pub").t(token.COLON, ":").
		t(token.IDENT, "x").t(token.COLON, ":").t(token.IDENT, "Int").
		t(token.KW_PUB, "pub").t(token.COLON, ":").
		t(token.IDENT, "y").t(token.COLON, ":").t(token.IDENT, "Int").
		t(token.RBRACE, "}").
		done()
	sink := diagnostics.NewSink()

	file := Parse("t.yk", &sliceStream{toks: toks}, sink)

	if len(file.Class.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2", len(file.Class.Fields))
	}
	found := false
	for _, r := range sink.Reports() {
		if r.Code == diagnostics.DDuplicateAccessBlock {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s diagnostic, got %v", diagnostics.DDuplicateAccessBlock, sink.Reports())
	}
}

func TestFieldBlockAccessorAndMutabilityPersistAcrossFields(t *testing.T) {
	// class X { pub: a: I32  priv mut: b: I64 }
	// "a" takes the pub/final header; "b" takes the later priv/mut
	// header (grammar order is [Accessor] [mut], per spec §4.1) — each
	// header must govern every field that follows it, not just the
	// field declaration it happens to share a loop iteration with.
	toks := (&tb{}).
		t(token.KW_CLASS, "class").t(token.IDENT, "X").t(token.LBRACE, "{").
		t(token.KW_PUB, "pub").t(token.COLON, ":").
		t(token.IDENT, "a").t(token.COLON, ":").t(token.IDENT, "I32").
		t(token.KW_PRIV, "priv").t(token.KW_MUT, "mut").t(token.COLON, ":").
		t(token.IDENT, "b").t(token.COLON, ":").t(token.IDENT, "I64").
		t(token.RBRACE, "}").
		done()
	sink := diagnostics.NewSink()

	file := Parse("t.yk", &sliceStream{toks: toks}, sink)

	if len(file.Class.Fields) != 2 {
		t.Fatalf("len(Fields) = %d, want 2 (diagnostics: %v)", len(file.Class.Fields), sink.Reports())
	}
	a, b := file.Class.Fields[0], file.Class.Fields[1]

	if a.Name != "a" || a.Accessor != ast.AccPub || a.Mut || a.Comp {
		t.Errorf("field a = %+v, want {Name:a Accessor:AccPub Mut:false Comp:false}", a)
	}
	if b.Name != "b" || b.Accessor != ast.AccPriv || !b.Mut || b.Comp {
		t.Errorf("field b = %+v, want {Name:b Accessor:AccPriv Mut:true Comp:false}", b)
	}
	for _, r := range sink.Reports() {
		if r.Severity == diagnostics.Error {
			t.Errorf("unexpected error diagnostic: %v", r)
		}
	}
}

func TestCompanionFieldBlockMarksFieldsComp(t *testing.T) {
	// class X { comp { pub: a: I32 } }
	toks := (&tb{}).
		t(token.KW_CLASS, "class").t(token.IDENT, "X").t(token.LBRACE, "{").
		t(token.KW_COMP, "comp").t(token.LBRACE, "{").
		t(token.KW_PUB, "pub").t(token.COLON, ":").
		t(token.IDENT, "a").t(token.COLON, ":").t(token.IDENT, "I32").
		t(token.RBRACE, "}").
		t(token.RBRACE, "}").
		done()
	sink := diagnostics.NewSink()

	file := Parse("t.yk", &sliceStream{toks: toks}, sink)

	if len(file.Class.Fields) != 1 {
		t.Fatalf("len(Fields) = %d, want 1 (diagnostics: %v)", len(file.Class.Fields), sink.Reports())
	}
	a := file.Class.Fields[0]
	if !a.Comp {
		t.Errorf("field a.Comp = false, want true (declared inside comp block)")
	}
	if a.Accessor != ast.AccPub || a.Mut {
		t.Errorf("field a = %+v, want {Accessor:AccPub Mut:false}", a)
	}
}

func TestParseImplFunctionBody(t *testing.T) {
	// class Box { pub: value: I32 }
	// impl Box { fn sum(a: I32, b: I64): I64 { c := a + b  return c } }
	toks := (&tb{}).
		t(token.KW_CLASS, "class").t(token.IDENT, "Box").t(token.LBRACE, "{").
		t(token.KW_PUB, "pub").t(token.COLON, ":").
		t(token.IDENT, "value").t(token.COLON, ":").t(token.IDENT, "I32").
		t(token.RBRACE, "}").
		t(token.KW_IMPL, "impl").t(token.IDENT, "Box").t(token.LBRACE, "{").
		t(token.KW_FN, "fn").t(token.IDENT, "sum").t(token.LPAREN, "(").
		t(token.IDENT, "a").t(token.COLON, ":").t(token.IDENT, "I32").t(token.COMMA, ",").
		t(token.IDENT, "b").t(token.COLON, ":").t(token.IDENT, "I64").t(token.RPAREN, ")").
		t(token.COLON, ":").t(token.IDENT, "I64").t(token.LBRACE, "{").
		t(token.IDENT, "c").t(token.WALRUS, ":=").
		t(token.IDENT, "a").t(token.PLUS, "+").t(token.IDENT, "b").
		t(token.KW_RETURN, "return").t(token.IDENT, "c").
		t(token.RBRACE, "}").
		t(token.RBRACE, "}").
		done()
	sink := diagnostics.NewSink()

	file := Parse("t.yk", &sliceStream{toks: toks}, sink)

	if len(file.Class.Functions) != 1 {
		t.Fatalf("len(Functions) = %d, want 1 (diagnostics: %v)", len(file.Class.Functions), sink.Reports())
	}
	fn := file.Class.Functions[0]
	if fn.Name != "sum" {
		t.Errorf("Function.Name = %q, want sum", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("len(Params) = %d, want 2", len(fn.Params))
	}
	if fn.ReturnTypeRef == nil || fn.ReturnTypeRef.Ref.Name != "I64" {
		t.Errorf("ReturnTypeRef = %v, want I64", fn.ReturnTypeRef)
	}
	if len(fn.Statements) != 2 {
		t.Fatalf("len(Statements) = %d, want 2", len(fn.Statements))
	}
	if _, ok := fn.Statements[0].(*ast.VariableDeclaration); !ok {
		t.Errorf("Statements[0] is %T, want *ast.VariableDeclaration", fn.Statements[0])
	}
	if _, ok := fn.Statements[1].(*ast.ReturnStatement); !ok {
		t.Errorf("Statements[1] is %T, want *ast.ReturnStatement", fn.Statements[1])
	}
	for _, r := range sink.Reports() {
		if r.Severity == diagnostics.Error {
			t.Errorf("unexpected error diagnostic: %v", r)
		}
	}
}

func TestPostfixOperatorRequiresIdentifierTarget(t *testing.T) {
	// "1++" is not a valid postfix target.
	toks := (&tb{}).t(token.INT_LIT, "1").t(token.INCR, "++").done()
	sink := diagnostics.NewSink()
	p := newParser(toks, sink)

	p.parseExpression(LOWEST)

	found := false
	for _, r := range sink.Reports() {
		if r.Code == diagnostics.SUnexpectedToken {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s diagnostic for postfix on a non-identifier, got %v", diagnostics.SUnexpectedToken, sink.Reports())
	}
}
