package pipeline

import "github.com/ChAoSUnItY/Yakou/internal/token"

// Processor is any pipeline stage that consumes and returns a *Context.
// Stages never abort the pipeline on a diagnostic — they record it on
// ctx.Sink and continue, per spec §7.
type Processor interface {
	Process(ctx *Context) *Context
}

// TokenStream is the boundary contract with the lexer, an external
// collaborator not built by this module (spec §6). Any producer that
// satisfies this interface — hand-written, generated, or test-authored —
// may feed the parser.
type TokenStream interface {
	// Next consumes and returns the next token from the stream.
	Next() token.Token

	// Peek returns the next n tokens without consuming them. If the
	// stream has fewer than n tokens remaining, it returns all of them.
	Peek(n int) []token.Token
}
