package pipeline

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/diagnostics"
	"github.com/ChAoSUnItY/Yakou/internal/registry"
	"github.com/ChAoSUnItY/Yakou/internal/typesystem"
)

// CompilationUnit is the input to one parse-then-check run: one source
// file's token stream plus the shared, read-only global registry (spec
// §5: "the registry is read-only after population; drivers parallelize
// by running independent CompilationUnits").
type CompilationUnit struct {
	Path     string
	Tokens   TokenStream
	Registry *registry.Registry
	Logger   *slog.Logger
	ID       uuid.UUID
}

// NewCompilationUnit builds a unit with a fresh correlation ID and a
// logger pre-bound to it, so every log line this unit's passes emit can
// be traced back to one compile without the caller threading an ID
// through every call.
func NewCompilationUnit(path string, tokens TokenStream, reg *registry.Registry) CompilationUnit {
	id := uuid.New()
	return CompilationUnit{
		Path:     path,
		Tokens:   tokens,
		Registry: reg,
		Logger:   slog.Default().With("unit", id.String(), "path", path),
		ID:       id,
	}
}

// Context is the value threaded through the pipeline's Processor chain.
// Stages read Unit and earlier results, write their own output, and
// append diagnostics to Sink — they never discard what an earlier stage
// produced on error, per spec §7's "a failing phase still returns its
// best-effort AST/types so later phases and tooling can proceed".
type Context struct {
	Unit  CompilationUnit
	File  *ast.File
	Class *typesystem.ClassType
	Sink  *diagnostics.Sink
}

// NewContext creates the initial Context for unit, with an empty Sink.
func NewContext(unit CompilationUnit) *Context {
	return &Context{Unit: unit, Sink: diagnostics.NewSink()}
}
