// Package symbols implements the lexically-nested scope and signature
// tables the checker consults during both analysis passes (spec §4.2).
package symbols

import "github.com/ChAoSUnItY/Yakou/internal/typesystem"

// Variable is a registered local (a parameter or a var-declared name).
type Variable struct {
	Name  string
	Type  typesystem.Type
	Mut   bool
	Index int // stack slot, stable for the lifetime of the enclosing function
}

// Scope is one lexical frame: a function body, a block, or a nested
// block, chained to its parent via Outer. Variable stack indices are
// shared across the whole chain through counter so that nested blocks
// never reuse a slot still live in an enclosing block, per spec §3
// invariant 3 ("each local variable occupies one stack slot, two for
// 64-bit primitives").
type Scope struct {
	Outer     *Scope
	vars      map[string]*Variable
	counter   *int
	ClassPath string
	Companion bool
}

// NewScope creates the outermost scope of a function or constructor
// body: a fresh slot counter, tagged with the owning class's path and
// whether the body executes in companion context.
func NewScope(classPath string, companion bool) *Scope {
	n := 0
	return &Scope{
		vars:      make(map[string]*Variable),
		counter:   &n,
		ClassPath: classPath,
		Companion: companion,
	}
}

// NewEnclosedScope opens a nested block scope under outer, sharing its
// slot counter and companion/class-path context.
func NewEnclosedScope(outer *Scope) *Scope {
	return &Scope{
		Outer:     outer,
		vars:      make(map[string]*Variable),
		counter:   outer.counter,
		ClassPath: outer.ClassPath,
		Companion: outer.Companion,
	}
}

// RegisterVariable binds name to a fresh Variable in this scope and
// advances the shared slot counter by the type's slot width (spec §3
// invariant 3). Shadowing an outer binding is permitted. Redeclaring a
// name already bound in this exact scope replaces the earlier binding
// with a new Variable on a fresh slot; neither this package nor the
// checker reports it.
func (s *Scope) RegisterVariable(name string, mut bool, t typesystem.Type) *Variable {
	v := &Variable{Name: name, Type: t, Mut: mut, Index: *s.counter}
	*s.counter += slotWidth(t)
	s.vars[name] = v
	return v
}

// IsDeclaredInThisScope reports whether name is already bound in s
// itself (not an outer scope), as opposed to shadowing an outer binding.
// The checker does not call it.
func (s *Scope) IsDeclaredInThisScope(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// FindVariable searches s and its outer chain for name.
func (s *Scope) FindVariable(name string) (*Variable, bool) {
	if v, ok := s.vars[name]; ok {
		return v, true
	}
	if s.Outer != nil {
		return s.Outer.FindVariable(name)
	}
	return nil, false
}

func slotWidth(t typesystem.Type) int {
	if p, ok := t.(typesystem.PrimitiveType); ok {
		return p.Kind.SlotWidth()
	}
	return 1
}
