package checker

import (
	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/diagnostics"
	"github.com/ChAoSUnItY/Yakou/internal/symbols"
)

// checkPassB walks every function and constructor body, per spec §4.3
// Pass B. It runs only after checkPassA has registered every signature
// in the class, so intra-class forward references resolve.
func (c *Checker) checkPassB(class *ast.Class) {
	for _, fn := range class.Functions {
		fn.Accept(c)
	}
	for _, ctor := range class.Constructors {
		ctor.Accept(c)
	}
}

// VisitFile exists to satisfy ast.Visitor; the package's entry point is
// Check, which drives the two passes directly rather than walking from
// the File root.
func (c *Checker) VisitFile(f *ast.File) {
	if f.Class != nil {
		f.Class.Accept(c)
	}
}

// VisitClass runs both passes, for callers that prefer to drive the
// walk through Accept rather than calling Check.
func (c *Checker) VisitClass(class *ast.Class) {
	c.checkPassA(class)
	c.checkPassB(class)
}

func (c *Checker) VisitPackage(*ast.Package) {}
func (c *Checker) VisitUsage(*ast.Usage)     {}

// VisitParameter and VisitField are no-ops when visited directly; their
// type resolution happens in Pass A (resolveParams, checkPassA), since
// that must complete for the whole class before any body is checked.
func (c *Checker) VisitParameter(*ast.Parameter) {}
func (c *Checker) VisitField(*ast.Field)         {}

// VisitFunction opens a fresh top-level scope for the function body,
// registers its parameters as variables, and checks each statement in
// source order (spec §4.3 Pass B).
func (c *Checker) VisitFunction(fn *ast.Function) {
	c.scope = symbols.NewScope(c.classRef, fn.Comp)
	c.companion = fn.Comp
	c.returnType = fn.ReturnType

	for _, p := range fn.Params {
		v := c.scope.RegisterVariable(p.Name, p.Mut, p.Type)
		p.Type = v.Type
	}
	for _, stmt := range fn.Statements {
		stmt.Accept(c)
	}
}

// VisitConstructor mirrors VisitFunction; a constructor has no declared
// return type and never runs in companion context (spec §4.1: "comp
// blocks ... MUST NOT contain constructors").
func (c *Checker) VisitConstructor(ctor *ast.Constructor) {
	c.scope = symbols.NewScope(c.classRef, false)
	c.companion = false
	c.returnType = unitType

	for _, p := range ctor.Params {
		v := c.scope.RegisterVariable(p.Name, p.Mut, p.Type)
		p.Type = v.Type
	}
	for _, stmt := range ctor.Statements {
		stmt.Accept(c)
	}
}

// VisitVariableDeclaration checks the initializer, reports an error if
// it has no value (Unit), and registers the name with the checker-assigned stack
// index, per spec §4.3.
func (c *Checker) VisitVariableDeclaration(s *ast.VariableDeclaration) {
	t := c.checkExpr(s.Expr)
	if t != nil && t.Equal(unitType) {
		c.sink.Add(diagnostics.NewError(diagnostics.PhaseChecker, diagnostics.TUnitValue, s.Pos()))
	}
	v := c.scope.RegisterVariable(s.Name, s.Mut, t)
	s.Index = v.Index
}

// VisitExpressionStatement checks the wrapped expression and warns
// "unused expression" unless it is one of the kinds spec §4.3 exempts:
// assignment, call, constructor call, or prefix/postfix ++/--.
func (c *Checker) VisitExpressionStatement(s *ast.ExpressionStatement) {
	if a, ok := s.Expr.(*ast.AssignmentExpression); ok {
		a.RetainValue = false
	}
	c.checkExpr(s.Expr)
	if !hasSideEffect(s.Expr) {
		c.sink.Add(diagnostics.NewWarning(diagnostics.PhaseChecker, diagnostics.WUnusedExpr, s.Pos()))
	}
}

func hasSideEffect(e ast.Expression) bool {
	switch v := e.(type) {
	case *ast.AssignmentExpression:
		return true
	case *ast.FunctionCall:
		return true
	case *ast.ConstructorCall:
		return true
	case *ast.UnaryExpression:
		return v.Op == ast.UnaryIncr || v.Op == ast.UnaryDecr
	default:
		return false
	}
}

// VisitReturnStatement checks the returned expression (if any) against
// the enclosing function's declared return type and annotates it.
func (c *Checker) VisitReturnStatement(s *ast.ReturnStatement) {
	if s.Expr == nil {
		s.ReturnType = unitType
		if c.returnType != nil && !c.returnType.Equal(unitType) {
			c.sink.Add(diagnostics.NewError(diagnostics.PhaseChecker, diagnostics.TMismatch, s.Pos(), c.returnType.String(), unitType.String()))
		}
		return
	}
	c.castExpr(s.Expr, c.returnType, "return value must match the declared return type")
	s.ReturnType = c.returnType
}

// VisitIfStatement requires a Bool-castable condition and checks both
// branches; each branch opens its own sub-scope if it is itself a
// BlockStatement (VisitBlockStatement handles that).
func (c *Checker) VisitIfStatement(s *ast.IfStatement) {
	c.castExpr(s.Cond, boolType, "if condition must be castable to Bool")
	if s.Then != nil {
		s.Then.Accept(c)
	}
	if s.Else != nil {
		s.Else.Accept(c)
	}
}

// VisitJForStatement opens one fresh sub-scope wrapping init/cond/post/
// body, per spec §4.3 — so a header-declared loop variable is visible
// to all four parts but not beyond the loop.
func (c *Checker) VisitJForStatement(s *ast.JForStatement) {
	outer := c.scope
	c.scope = symbols.NewEnclosedScope(outer)
	defer func() { c.scope = outer }()

	if s.Init != nil {
		s.Init.Accept(c)
	}
	if s.Cond != nil {
		c.castExpr(s.Cond, boolType, "for condition must be castable to Bool")
	}
	if s.Post != nil {
		s.Post.Accept(c)
	}
	if s.Body != nil {
		s.Body.Accept(c)
	}
}

// VisitBlockStatement opens a sub-scope for its statement list, per
// spec §4.3 ("open a sub-scope unless the caller requests reusing the
// current scope") — callers that want reuse (the for-header case)
// simply don't route through a nested BlockStatement node.
func (c *Checker) VisitBlockStatement(s *ast.BlockStatement) {
	outer := c.scope
	c.scope = symbols.NewEnclosedScope(outer)
	defer func() { c.scope = outer }()

	for _, stmt := range s.Statements {
		stmt.Accept(c)
	}
}
