// Package checker implements the semantic analyzer: name resolution,
// signature registration, type inference, mutability/companion-context
// enforcement, and numeric promotion (spec §4.3). It walks the AST built
// by internal/parser using the ast.Visitor contract, mutating each node
// in place with its resolved type, cast target, variable index, and
// resolved signature/owner reference — the checked AST is the module's
// handoff to a downstream code generator (spec §6).
package checker

import (
	"strings"

	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/diagnostics"
	"github.com/ChAoSUnItY/Yakou/internal/registry"
	"github.com/ChAoSUnItY/Yakou/internal/symbols"
	"github.com/ChAoSUnItY/Yakou/internal/token"
	"github.com/ChAoSUnItY/Yakou/internal/typesystem"
)

// Checker holds the state of one class's two-pass analysis: the global
// registry it resolves external symbols against, the report sink, the
// class's own signature table, and (during Pass B) the active scope and
// enclosing-function context.
type Checker struct {
	reg      *registry.Registry
	sink     *diagnostics.Sink
	usages   []*ast.Usage
	classRef string
	class    *typesystem.ClassType
	sigs     *symbols.SignatureTable

	// Pass B per-function state.
	scope      *symbols.Scope
	companion  bool
	returnType typesystem.Type
}

// unitType is the canonical Unit value, used wherever "no declared
// return type" or "statement has no value" needs a concrete Type.
var unitType = typesystem.PrimitiveType{Kind: typesystem.Unit}

// boolType is the canonical Bool value, used for condition casts and
// relational/logical/equality results.
var boolType = typesystem.PrimitiveType{Kind: typesystem.Bool}

// Check runs both analysis passes over file's single class and returns
// its resolved ClassType, suitable for Put-ing into a Registry so later
// compilation units can resolve against it.
func Check(file *ast.File, reg *registry.Registry, sink *diagnostics.Sink) *typesystem.ClassType {
	if file == nil || file.Class == nil {
		sink.Add(diagnostics.NewWarning(diagnostics.PhaseChecker, diagnostics.IInternal, token.Position{}, "missing class on an otherwise-parsed file"))
		return nil
	}
	class := file.Class

	c := &Checker{
		reg:      reg,
		sink:     sink,
		usages:   class.Usages,
		classRef: classReference(class),
		sigs:     symbols.NewSignatureTable(),
	}
	c.class = &typesystem.ClassType{Reference: c.classRef}

	c.checkPassA(class)
	c.checkPassB(class)

	return c.class
}

// classReference builds the dotted-then-slash-joined reference string
// used throughout typesystem/registry, e.g. package "a.b" + class "G"
// becomes "a/b/G" — matching ast.Reference.String()'s "/" join.
func classReference(class *ast.Class) string {
	if class.Pkg != nil && len(class.Pkg.Path) > 0 {
		return strings.Join(class.Pkg.Path, "/") + "/" + class.Name
	}
	return class.Name
}

func convAccessor(a ast.Accessor) typesystem.Accessor { return typesystem.Accessor(a) }

// resolveTypeRef resolves a syntactic TypeRef to a semantic Type,
// wrapping the base reference in Depth levels of ArrayType.
func (c *Checker) resolveTypeRef(tr ast.TypeRef) (typesystem.Type, error) {
	base, err := c.resolveReference(tr.Ref)
	if err != nil {
		return nil, err
	}
	t := base
	for i := 0; i < tr.Depth; i++ {
		t = typesystem.ArrayType{Base: t}
	}
	return t, nil
}

// resolveReference implements find_type (spec §4.2): for a single-name
// reference the primitive table first, then the declaring class itself
// (self-reference); then usage aliases (exact or by simple name), then
// the global registry.
func (c *Checker) resolveReference(ref ast.Reference) (typesystem.Type, error) {
	if len(ref.Path) == 1 {
		if p, ok := typesystem.PrimitiveByName(ref.Name); ok {
			return typesystem.PrimitiveType{Kind: p}, nil
		}
		if ref.Name == simpleName(c.classRef) {
			return c.class, nil
		}
	}

	for _, u := range c.usages {
		if u.Alias != "" && len(ref.Path) == 1 && u.Alias == ref.Name {
			return c.reg.FindType(u.Ref.String())
		}
		if u.Ref.Equal(ref) {
			return c.reg.FindType(u.Ref.String())
		}
	}

	return c.reg.FindType(ref.String())
}

func simpleName(reference string) string {
	if i := strings.LastIndex(reference, "/"); i >= 0 {
		return reference[i+1:]
	}
	return reference
}

// checkExpr runs the visitor over e and returns its resolved type,
// reading it back off the node per the mutable-field Accept pattern
// (spec §9 design note).
func (c *Checker) checkExpr(e ast.Expression) typesystem.Type {
	if e == nil {
		return nil
	}
	e.Accept(c)
	return e.Type()
}

// castExpr checks e then, if its type is castable to want, records
// cast_to on the node and returns true; otherwise reports a type
// mismatch at pos with what, and returns false.
func (c *Checker) castExpr(e ast.Expression, want typesystem.Type, what string) bool {
	got := c.checkExpr(e)
	if got == nil || want == nil {
		return false
	}
	if !typesystem.CanCast(got, want) {
		c.sink.Add(diagnostics.NewError(diagnostics.PhaseChecker, diagnostics.TMismatch, e.Pos(), want.String(), got.String()).WithHint(what))
		return false
	}
	e.SetCastTo(want)
	return true
}
