package checker

import (
	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/diagnostics"
	"github.com/ChAoSUnItY/Yakou/internal/typesystem"
)

// checkPassA resolves every field's declared type and registers every
// function/constructor signature, per spec §4.3 Pass A. It must
// complete for the whole class before Pass B begins, so a function may
// forward-reference a sibling declared later in the source.
func (c *Checker) checkPassA(class *ast.Class) {
	seenFields := make(map[string]bool)
	for _, f := range class.Fields {
		if seenFields[f.Name] {
			c.sink.Add(diagnostics.NewError(diagnostics.PhaseChecker, diagnostics.DDuplicateField, f.Pos(), f.Name))
			continue
		}
		seenFields[f.Name] = true
		t, err := c.resolveTypeRef(f.TypeRef)
		if err != nil {
			c.sink.Add(diagnostics.NewError(diagnostics.PhaseChecker, diagnostics.NUnknownType, f.Pos(), f.TypeRef.Ref.String()))
			continue
		}
		f.Type = t
		c.class.Fields = append(c.class.Fields, typesystem.Field{
			Name: f.Name, Type: t, Mut: f.Mut, Comp: f.Comp, Accessor: convAccessor(f.Accessor),
		})
	}

	for _, fn := range class.Functions {
		c.registerFunctionSignature(fn)
	}

	for _, ctor := range class.Constructors {
		c.registerConstructorSignature(ctor)
	}
}

// resolveParams resolves each parameter's TypeRef, reporting unknown
// types, and returns the resolved type list in declaration order.
func (c *Checker) resolveParams(params []*ast.Parameter) []typesystem.Type {
	seen := make(map[string]bool)
	types := make([]typesystem.Type, len(params))
	for i, p := range params {
		t, err := c.resolveTypeRef(p.TypeRef)
		if err != nil {
			c.sink.Add(diagnostics.NewError(diagnostics.PhaseChecker, diagnostics.NUnknownType, p.Pos(), p.TypeRef.Ref.String()))
			continue
		}
		p.Type = t
		types[i] = t
		if seen[p.Name] {
			c.sink.Add(diagnostics.NewError(diagnostics.PhaseChecker, diagnostics.DDuplicateParam, p.Pos(), p.Name))
		}
		seen[p.Name] = true
	}
	return types
}

func (c *Checker) registerFunctionSignature(fn *ast.Function) {
	paramTypes := c.resolveParams(fn.Params)

	retType := typesystem.Type(unitType)
	if fn.ReturnTypeRef != nil {
		t, err := c.resolveTypeRef(*fn.ReturnTypeRef)
		if err != nil {
			c.sink.Add(diagnostics.NewError(diagnostics.PhaseChecker, diagnostics.NUnknownType, fn.Pos(), fn.ReturnTypeRef.Ref.String()))
		} else {
			retType = t
		}
	}
	fn.ReturnType = retType

	sig := typesystem.Signature{
		Owner: c.classRef, Name: fn.Name, ParamTypes: paramTypes, ReturnType: retType,
		Comp: fn.Comp, Accessor: convAccessor(fn.Accessor),
	}
	if !c.sigs.Register(sig) {
		c.sink.Add(diagnostics.NewError(diagnostics.PhaseChecker, diagnostics.DDuplicateFunction, fn.Pos(), fn.Name))
		return
	}
	c.class.Signatures = append(c.class.Signatures, sig)
}

func (c *Checker) registerConstructorSignature(ctor *ast.Constructor) {
	paramTypes := c.resolveParams(ctor.Params)

	sig := typesystem.Signature{
		Owner: c.classRef, Name: typesystem.ConstructorName, ParamTypes: paramTypes, ReturnType: c.class,
		Comp: false, Accessor: convAccessor(ctor.Accessor),
	}
	if !c.sigs.Register(sig) {
		c.sink.Add(diagnostics.NewError(diagnostics.PhaseChecker, diagnostics.DDuplicateConstructor, ctor.Pos()))
		return
	}
	c.class.Signatures = append(c.class.Signatures, sig)
}
