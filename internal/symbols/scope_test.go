package symbols

import (
	"testing"

	"github.com/ChAoSUnItY/Yakou/internal/typesystem"
)

func TestVariableIndexingAcrossSlotWidths(t *testing.T) {
	s := NewScope("a/G", false)
	a := s.RegisterVariable("a", false, typesystem.PrimitiveType{Kind: typesystem.I32})
	b := s.RegisterVariable("b", false, typesystem.PrimitiveType{Kind: typesystem.I64})
	c := s.RegisterVariable("c", false, typesystem.PrimitiveType{Kind: typesystem.Bool})

	if a.Index != 0 {
		t.Errorf("a.Index = %d, want 0", a.Index)
	}
	if b.Index != 1 {
		t.Errorf("b.Index = %d, want 1 (I32 occupies one slot)", b.Index)
	}
	if c.Index != 3 {
		t.Errorf("c.Index = %d, want 3 (I64 occupies two slots)", c.Index)
	}
}

func TestNestedScopeSharesCounterAndHygiene(t *testing.T) {
	outer := NewScope("a/G", false)
	outer.RegisterVariable("x", false, typesystem.PrimitiveType{Kind: typesystem.I32})

	inner := NewEnclosedScope(outer)
	y := inner.RegisterVariable("y", true, typesystem.PrimitiveType{Kind: typesystem.I32})
	if y.Index != 1 {
		t.Errorf("y.Index = %d, want 1 (shares outer's counter)", y.Index)
	}

	if _, ok := inner.FindVariable("x"); !ok {
		t.Errorf("inner scope should see outer's x")
	}
	if _, ok := outer.FindVariable("y"); ok {
		t.Errorf("outer scope must not see inner's y")
	}
}

func TestSignatureTableResolveExactThenCast(t *testing.T) {
	table := NewSignatureTable()
	i32 := typesystem.PrimitiveType{Kind: typesystem.I32}
	i64 := typesystem.PrimitiveType{Kind: typesystem.I64}

	if !table.Register(typesystem.Signature{Owner: "a/G", Name: "f", ParamTypes: []typesystem.Type{i32}}) {
		t.Fatal("first registration should succeed")
	}
	if table.Register(typesystem.Signature{Owner: "a/G", Name: "f", ParamTypes: []typesystem.Type{i32}}) {
		t.Error("duplicate (owner,name,params) registration should fail")
	}

	sig, err := table.Resolve("a/G", "f", []typesystem.Type{i32})
	if err != nil || sig == nil {
		t.Fatalf("exact match should resolve, got err=%v", err)
	}

	sig, err = table.Resolve("a/G", "f", []typesystem.Type{i64})
	if err == nil {
		t.Fatalf("I64 arg should not cast down to an I32 parameter, got sig=%v", sig)
	}
}

func TestSignatureTableAmbiguousOverloads(t *testing.T) {
	table := NewSignatureTable()
	i32 := typesystem.PrimitiveType{Kind: typesystem.I32}
	i64 := typesystem.PrimitiveType{Kind: typesystem.I64}
	f32 := typesystem.PrimitiveType{Kind: typesystem.F32}

	table.Register(typesystem.Signature{Owner: "a/G", Name: "f", ParamTypes: []typesystem.Type{i64}})
	table.Register(typesystem.Signature{Owner: "a/G", Name: "f", ParamTypes: []typesystem.Type{f32}})

	if _, err := table.Resolve("a/G", "f", []typesystem.Type{i32}); err == nil {
		t.Error("I32 casts to both I64 and F32 with no exact match: should be ambiguous")
	}
}
