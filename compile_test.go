package yakou

import (
	"testing"

	"github.com/ChAoSUnItY/Yakou/internal/pipeline"
	"github.com/ChAoSUnItY/Yakou/internal/registry"
	"github.com/ChAoSUnItY/Yakou/internal/token"
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

func minimalClassTokens() []token.Token {
	line := func(n int) func(token.Kind, string) token.Token {
		return func(k token.Kind, lit string) token.Token {
			n++
			return token.Token{Kind: k, Literal: lit, Pos: token.Position{StartLine: n, StartCol: 1}}
		}
	}
	mk := line(0)
	return []token.Token{
		mk(token.KW_CLASS, "class"),
		mk(token.IDENT, "G"),
		mk(token.EOF, ""),
	}
}

// TestCompileMinimalClassSucceeds exercises the full Compile facade
// (parser then checker, through the pipeline.Pipeline) end-to-end over a
// single-token-short-of-trivial class, with no registry entries needed.
func TestCompileMinimalClassSucceeds(t *testing.T) {
	reg := registry.New()
	unit := pipeline.NewCompilationUnit("g.yk", &sliceStream{toks: minimalClassTokens()}, reg)

	file, sink := Compile(unit)

	if file == nil || file.Class == nil || file.Class.Name != "G" {
		t.Fatalf("unexpected parsed file: %#v", file)
	}
	if !sink.OK() {
		t.Errorf("expected no error-severity diagnostics, got %v", sink.Reports())
	}
}

// TestCompileAndRegisterPopulatesRegistry verifies that a clean compile
// registers the class under its reference path, ready for a later unit
// to resolve against.
func TestCompileAndRegisterPopulatesRegistry(t *testing.T) {
	reg := registry.New()
	unit := pipeline.NewCompilationUnit("g.yk", &sliceStream{toks: minimalClassTokens()}, reg)

	_, sink := CompileAndRegister(unit, reg)
	if !sink.OK() {
		t.Fatalf("expected a clean compile, got %v", sink.Reports())
	}

	if _, ok := reg.Find("G"); !ok {
		t.Error("expected class G to be registered after CompileAndRegister")
	}
}

// TestCompileReportsParserDiagnosticsWithoutPanicking exercises the
// failure path: an empty token stream should never panic the pipeline,
// and any diagnostics raised should surface through the returned sink.
func TestCompileReportsParserDiagnosticsWithoutPanicking(t *testing.T) {
	reg := registry.New()
	unit := pipeline.NewCompilationUnit("empty.yk", &sliceStream{toks: []token.Token{{Kind: token.EOF}}}, reg)

	file, sink := Compile(unit)

	if file == nil {
		t.Fatal("Compile returned a nil File for an empty stream")
	}
	if sink.OK() {
		t.Error("expected at least one error-severity diagnostic for a class-less file")
	}
}
