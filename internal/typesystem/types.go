// Package typesystem models the language's semantic types: primitives,
// arrays, and classes, plus numeric promotion and cast-compatibility.
// There are no type variables or unification here — the language has no
// generics, so promotion is a total order rather than an HM-style solve
// (see spec §9 "Design Notes").
package typesystem

import "fmt"

// Type is implemented by every semantic type the checker produces.
type Type interface {
	String() string
	// Equal reports structural equality.
	Equal(Type) bool
}

// Primitive enumerates the built-in scalar kinds, per spec §3.
type Primitive int

const (
	Bool Primitive = iota
	Char
	I8
	I16
	I32
	I64
	F32
	F64
	Str
	Null
	Unit
)

var primitiveNames = map[Primitive]string{
	Bool: "Bool", Char: "Char", I8: "I8", I16: "I16", I32: "I32", I64: "I64",
	F32: "F32", F64: "F64", Str: "Str", Null: "Null", Unit: "Unit",
}

func (p Primitive) String() string { return primitiveNames[p] }

var primitivesByName = map[string]Primitive{
	"Bool": Bool, "Char": Char, "I8": I8, "I16": I16, "I32": I32, "I64": I64,
	"F32": F32, "F64": F64, "Str": Str, "Null": Null, "Unit": Unit,
}

// PrimitiveByName resolves a type reference's simple name to a
// Primitive, if it names one of the built-ins rather than a class.
func PrimitiveByName(name string) (Primitive, bool) {
	p, ok := primitivesByName[name]
	return p, ok
}

// PrimitiveType wraps a Primitive as a Type.
type PrimitiveType struct {
	Kind Primitive
}

func (t PrimitiveType) String() string { return t.Kind.String() }

func (t PrimitiveType) Equal(other Type) bool {
	o, ok := other.(PrimitiveType)
	return ok && o.Kind == t.Kind
}

// numericRank orders the numeric primitives for promotion; non-numeric
// primitives are not present in this table. Matches spec §4.3: "I8<I16<
// I32<I64<F32<F64".
var numericRank = map[Primitive]int{
	I8: 0, I16: 1, I32: 2, I64: 3, F32: 4, F64: 5,
}

// IsNumeric reports whether p is one of the six numeric primitives.
func (p Primitive) IsNumeric() bool {
	_, ok := numericRank[p]
	return ok
}

// IsInteger reports whether p is one of the four integer primitives.
func (p Primitive) IsInteger() bool {
	switch p {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// Rank returns p's numeric promotion rank; panics if p is non-numeric —
// callers must check IsNumeric first.
func (p Primitive) Rank() int {
	r, ok := numericRank[p]
	if !ok {
		panic(fmt.Sprintf("typesystem: Rank called on non-numeric primitive %s", p))
	}
	return r
}

// Promote returns the wider of two numeric primitives, per spec §4.3 /
// §9: "promote(a,b) = max(rank(a), rank(b))".
func Promote(a, b Primitive) Primitive {
	if a.Rank() >= b.Rank() {
		return a
	}
	return b
}

// SlotWidth returns how many contiguous variable-index slots a value of
// primitive type p occupies: 2 for 64-bit primitives (I64, F64), 1
// otherwise. Per spec §3 invariant 3.
func (p Primitive) SlotWidth() int {
	if p == I64 || p == F64 {
		return 2
	}
	return 1
}

// FitInteger returns the narrowest signed integer primitive that can
// represent v, per spec §4.3 "Integer literals are typed by fit".
func FitInteger(v int64) Primitive {
	switch {
	case v >= -128 && v <= 127:
		return I8
	case v >= -32768 && v <= 32767:
		return I16
	case v >= -2147483648 && v <= 2147483647:
		return I32
	default:
		return I64
	}
}

// ArrayType represents an array of Base, recursively for multiple
// dimensions (an array of arrays).
type ArrayType struct {
	Base Type
}

func (t ArrayType) String() string { return t.Base.String() + "[]" }

func (t ArrayType) Equal(other Type) bool {
	o, ok := other.(ArrayType)
	return ok && t.Base.Equal(o.Base)
}

// Dimensions returns how many array levels wrap the eventual leaf type,
// and that leaf (foundation) type itself.
func (t ArrayType) Dimensions() (int, Type) {
	dims := 1
	cur := t.Base
	for {
		arr, ok := cur.(ArrayType)
		if !ok {
			return dims, cur
		}
		dims++
		cur = arr.Base
	}
}

// Field is a resolved class field.
type Field struct {
	Name string
	Type Type
	Mut  bool
	Comp bool
	Accessor Accessor
}

// Accessor mirrors the four access modifiers of spec §3.
type Accessor int

const (
	AccPub Accessor = iota
	AccProt
	AccIntl
	AccPriv
)

func (a Accessor) String() string {
	switch a {
	case AccPub:
		return "pub"
	case AccProt:
		return "prot"
	case AccIntl:
		return "intl"
	case AccPriv:
		return "priv"
	default:
		return "?"
	}
}

// Signature identifies a function or constructor: its owner class path,
// name ("<init>" for constructors), and ordered parameter types, per
// spec's Glossary "Signature" entry.
type Signature struct {
	Owner      string
	Name       string
	ParamTypes []Type
	ReturnType Type
	Comp       bool
	Accessor   Accessor
}

// ConstructorName is the synthetic signature name used for constructors,
// so they share the function signature table keyed by (name, params).
const ConstructorName = "<init>"

// SameParams reports whether two signatures have identical ordered
// parameter type lists — the dedup key of spec §3 invariant 5.
func SameParams(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// ClassType is the resolved semantic type of a declared or
// externally-registered class.
type ClassType struct {
	Reference  string // fully qualified dotted path, e.g. "a/b/G"
	Fields     []Field
	Signatures []Signature
}

func (t *ClassType) String() string { return t.Reference }

func (t *ClassType) Equal(other Type) bool {
	o, ok := other.(*ClassType)
	return ok && o.Reference == t.Reference
}

// FindField looks up a field by name, returning (field, true) on a hit.
func (t *ClassType) FindField(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// CanCast reports whether a value of type from may be used where to is
// expected, per spec §4.3's scattered "castable to" rules:
//   - identical types always cast
//   - Null casts to any non-primitive (class/array) type, and a variable
//     typed Null may later be refined (handled by the checker, not here)
//   - any numeric primitive casts to any numeric primitive of equal or
//     greater rank (promotion is the assignment-compatible direction)
func CanCast(from, to Type) bool {
	if from == nil || to == nil {
		return false
	}
	if from.Equal(to) {
		return true
	}
	if fp, ok := from.(PrimitiveType); ok {
		if tp, ok := to.(PrimitiveType); ok {
			if fp.Kind.IsNumeric() && tp.Kind.IsNumeric() {
				return fp.Kind.Rank() <= tp.Kind.Rank()
			}
			return false
		}
		if fp.Kind == Null {
			// Null casts to any reference type (class or array).
			switch to.(type) {
			case ArrayType, *ClassType:
				return true
			}
		}
		return false
	}
	return false
}

// IsReference reports whether t is a reference type (class or array),
// as opposed to a value-type primitive — used by the equality-operator
// rule in spec §4.3 ("a primitive vs null is an error").
func IsReference(t Type) bool {
	switch t.(type) {
	case ArrayType, *ClassType:
		return true
	default:
		return false
	}
}
