package parser

import "github.com/ChAoSUnItY/Yakou/internal/pipeline"

// Processor adapts Parse into a pipeline.Processor stage: it reads the
// unit's token stream off ctx and writes the parsed File back, always
// leaving ctx usable for the next stage even when the sink picked up
// parser diagnostics (spec §7).
type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	ctx.File = Parse(ctx.Unit.Path, ctx.Unit.Tokens, ctx.Sink)
	return ctx
}
