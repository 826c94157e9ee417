package checker

import (
	"testing"

	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/diagnostics"
	"github.com/ChAoSUnItY/Yakou/internal/parser"
	"github.com/ChAoSUnItY/Yakou/internal/registry"
	"github.com/ChAoSUnItY/Yakou/internal/token"
	"github.com/ChAoSUnItY/Yakou/internal/typesystem"
)

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

// TestCheckImplFunctionPromotesAndResolves parses and checks:
//
//	class Box { pub: value: I32 }
//	impl Box { fn sum(a: I32, b: I64): I64 { c := a + b  return c } }
//
// verifying the field resolves to I32, the local "c" promotes to I64
// (I32+I64 -> I64 per typesystem.Promote), the return expression is
// castable to the declared I64 return type, and no Error-severity
// diagnostic is produced.
func TestCheckImplFunctionPromotesAndResolves(t *testing.T) {
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

	file := parser.Parse("box.yk", &sliceStream{toks: toks}, sink)
	// The explicit "pub:" header is the only thing the parser reports.
	if sink.Len() != 1 || sink.Reports()[0].Code != diagnostics.WRedundantPub {
		t.Fatalf("parser diagnostics before checking = %v, want only the redundant-pub warning", sink.Reports())
	}
	if len(file.Class.Functions) != 1 {
		t.Fatalf("parsed %d functions, want 1", len(file.Class.Functions))
	}

	reg := registry.New()
	class := Check(file, reg, sink)

	if class == nil {
		t.Fatal("Check returned a nil ClassType")
	}
	field, ok := class.FindField("value")
	if !ok {
		t.Fatal("class has no field named value")
	}
	if !field.Type.Equal(typesystem.PrimitiveType{Kind: typesystem.I32}) {
		t.Errorf("field value type = %s, want I32", field.Type.String())
	}

	fn := file.Class.Functions[0]
	varDecl, ok := fn.Statements[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("Statements[0] is %T, want *ast.VariableDeclaration", fn.Statements[0])
	}
	gotType := varDecl.Expr.Type()
	if gotType == nil || !gotType.Equal(typesystem.PrimitiveType{Kind: typesystem.I64}) {
		t.Errorf("c's initializer type = %v, want I64 (I32 promoted with I64)", gotType)
	}
	if varDecl.Index < 0 {
		t.Errorf("variable c was not assigned a stack slot (Index = %d)", varDecl.Index)
	}

	ret, ok := fn.Statements[1].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("Statements[1] is %T, want *ast.ReturnStatement", fn.Statements[1])
	}
	if ret.ReturnType == nil || !ret.ReturnType.Equal(typesystem.PrimitiveType{Kind: typesystem.I64}) {
		t.Errorf("return type = %v, want I64", ret.ReturnType)
	}

	if !sink.OK() {
		t.Errorf("expected no error-severity diagnostics, got %v", sink.Reports())
	}
}

// TestCheckReturnTypeMismatchReported verifies a function whose return
// expression cannot cast to the declared return type is flagged.
func TestCheckReturnTypeMismatchReported(t *testing.T) {
	// class G {}  impl G { fn f(): I32 { return true } }
	toks := (&tb{}).
		t(token.KW_CLASS, "class").t(token.IDENT, "G").t(token.LBRACE, "{").t(token.RBRACE, "}").
		t(token.KW_IMPL, "impl").t(token.IDENT, "G").t(token.LBRACE, "{").
		t(token.KW_FN, "fn").t(token.IDENT, "f").t(token.LPAREN, "(").t(token.RPAREN, ")").
		t(token.COLON, ":").t(token.IDENT, "I32").t(token.LBRACE, "{").
		t(token.KW_RETURN, "return").t(token.KW_TRUE, "true").
		t(token.RBRACE, "}").
		t(token.RBRACE, "}").
		done()
	sink := diagnostics.NewSink()

	file := parser.Parse("g.yk", &sliceStream{toks: toks}, sink)
	if sink.Len() != 0 {
		t.Fatalf("parser reported diagnostics before checking: %v", sink.Reports())
	}

	reg := registry.New()
	Check(file, reg, sink)

	if sink.OK() {
		t.Error("expected an error-severity diagnostic for bool-to-I32 return, got none")
	}
	found := false
	for _, r := range sink.Reports() {
		if r.Code == diagnostics.TMismatch {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s diagnostic, got %v", diagnostics.TMismatch, sink.Reports())
	}
}

// TestCheckCompanionCallingInstanceMemberReported verifies that a bare
// call to a non-companion function from inside a companion function
// body is rejected:
//
//	class X {}  impl X { comp { fn g() { h() } } fn h() {} }
func TestCheckCompanionCallingInstanceMemberReported(t *testing.T) {
	toks := (&tb{}).
		t(token.KW_CLASS, "class").t(token.IDENT, "X").t(token.LBRACE, "{").t(token.RBRACE, "}").
		t(token.KW_IMPL, "impl").t(token.IDENT, "X").t(token.LBRACE, "{").
		t(token.KW_COMP, "comp").t(token.LBRACE, "{").
		t(token.KW_FN, "fn").t(token.IDENT, "g").t(token.LPAREN, "(").t(token.RPAREN, ")").t(token.LBRACE, "{").
		t(token.IDENT, "h").t(token.LPAREN, "(").t(token.RPAREN, ")").
		t(token.RBRACE, "}").
		t(token.RBRACE, "}").
		t(token.KW_FN, "fn").t(token.IDENT, "h").t(token.LPAREN, "(").t(token.RPAREN, ")").t(token.LBRACE, "{").
		t(token.RBRACE, "}").
		t(token.RBRACE, "}").
		done()
	sink := diagnostics.NewSink()

	file := parser.Parse("x.yk", &sliceStream{toks: toks}, sink)
	if sink.Len() != 0 {
		t.Fatalf("parser reported diagnostics before checking: %v", sink.Reports())
	}
	if len(file.Class.Functions) != 2 {
		t.Fatalf("parsed %d functions, want 2", len(file.Class.Functions))
	}

	reg := registry.New()
	Check(file, reg, sink)

	if sink.OK() {
		t.Error("expected an error-severity diagnostic for a companion calling an instance member, got none")
	}
	found := false
	for _, r := range sink.Reports() {
		if r.Code == diagnostics.MCompanionAccess {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a %s diagnostic, got %v", diagnostics.MCompanionAccess, sink.Reports())
	}
}
