package typesystem

import "testing"

func TestPromotionMonotonicity(t *testing.T) {
	numerics := []Primitive{I8, I16, I32, I64, F32, F64}
	for _, a := range numerics {
		for _, b := range numerics {
			wide := Promote(a, b)
			at := PrimitiveType{Kind: a}
			bt := PrimitiveType{Kind: b}
			wt := PrimitiveType{Kind: wide}
			if !CanCast(at, wt) {
				t.Errorf("CanCast(%s, promote(%s,%s)=%s) should hold", a, a, b, wide)
			}
			if !CanCast(bt, wt) {
				t.Errorf("CanCast(%s, promote(%s,%s)=%s) should hold", b, a, b, wide)
			}
		}
	}
}

func TestFitInteger(t *testing.T) {
	cases := []struct {
		v    int64
		want Primitive
	}{
		{0, I8}, {127, I8}, {128, I16}, {-128, I8}, {-129, I16},
		{32767, I16}, {32768, I32}, {2147483647, I32}, {2147483648, I64},
	}
	for _, c := range cases {
		if got := FitInteger(c.v); got != c.want {
			t.Errorf("FitInteger(%d) = %s, want %s", c.v, got, c.want)
		}
	}
}

func TestSlotWidth(t *testing.T) {
	if I64.SlotWidth() != 2 || F64.SlotWidth() != 2 {
		t.Errorf("64-bit primitives should occupy 2 slots")
	}
	if I32.SlotWidth() != 1 || Bool.SlotWidth() != 1 {
		t.Errorf("non-64-bit primitives should occupy 1 slot")
	}
}

func TestCanCastNullToReference(t *testing.T) {
	arr := ArrayType{Base: PrimitiveType{Kind: I32}}
	nullT := PrimitiveType{Kind: Null}
	if !CanCast(nullT, arr) {
		t.Errorf("Null should cast to an array (reference) type")
	}
	if CanCast(nullT, PrimitiveType{Kind: I32}) {
		t.Errorf("Null should not cast to a primitive numeric type")
	}
}
