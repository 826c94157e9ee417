package pipeline

// Pipeline is an ordered sequence of processing stages run over one
// Context. Stages never abort the chain on a diagnostic — see spec §7.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline from its stages, in run order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes every stage in order and returns the final Context.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
