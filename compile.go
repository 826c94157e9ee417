// Package yakou is the module's single public entry point: it wires the
// parser and checker into the one-unit-in, checked-AST-and-reports-out
// contract spec.md §6 describes, so a driver never has to construct a
// Parser or Checker directly.
package yakou

import (
	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/checker"
	"github.com/ChAoSUnItY/Yakou/internal/diagnostics"
	"github.com/ChAoSUnItY/Yakou/internal/parser"
	"github.com/ChAoSUnItY/Yakou/internal/pipeline"
	"github.com/ChAoSUnItY/Yakou/internal/registry"
)

// run drives one CompilationUnit through the two-stage pipeline.Pipeline
// (parse, then check) and logs the outcome, per spec §6.
func run(unit pipeline.CompilationUnit) *pipeline.Context {
	ctx := pipeline.NewContext(unit)

	p := pipeline.New(
		&parser.Processor{},
		&checker.Processor{Registry: unit.Registry},
	)
	ctx = p.Run(ctx)

	if unit.Logger != nil {
		unit.Logger.Info("compiled", "ok", ctx.Sink.OK(), "reports", ctx.Sink.Len())
	}
	return ctx
}

// Compile runs the parser then the checker over one CompilationUnit and
// returns the annotated File plus its report sink. A caller compiling
// many files in parallel runs one Compile per goroutine: each call only
// touches its own unit's state and the shared, already-sealed Registry
// (spec §5).
//
// The returned File is always non-nil for a non-empty TokenStream, even
// when the sink carries Error-severity reports — spec §7's "a failing
// phase still returns its best-effort AST so later phases and tooling
// can proceed".
func Compile(unit pipeline.CompilationUnit) (*ast.File, *diagnostics.Sink) {
	ctx := run(unit)
	return ctx.File, ctx.Sink
}

// CompileAndRegister runs Compile and, if the unit's file checked
// without an Error-severity report, Puts the resulting ClassType into
// reg so later CompilationUnits can resolve against it. Callers doing a
// bulk registry-population pass (spec §5) use this instead of Compile
// directly; per-unit parallel compiles against an already-sealed
// Registry should call Compile.
func CompileAndRegister(unit pipeline.CompilationUnit, reg *registry.Registry) (*ast.File, *diagnostics.Sink) {
	ctx := run(unit)
	if ctx.Sink.OK() && ctx.Class != nil {
		reg.Put(ctx.Class)
	}
	return ctx.File, ctx.Sink
}
