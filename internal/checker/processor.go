package checker

import (
	"github.com/ChAoSUnItY/Yakou/internal/pipeline"
	"github.com/ChAoSUnItY/Yakou/internal/registry"
)

// Processor adapts Check into a pipeline.Processor stage. It is a no-op
// if an earlier stage never produced a File, mirroring the teacher's
// own nil-AST guard before running semantic analysis.
type Processor struct {
	Registry *registry.Registry
}

func (cp *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.File == nil {
		return ctx
	}
	ctx.Class = Check(ctx.File, cp.Registry, ctx.Sink)
	return ctx
}
