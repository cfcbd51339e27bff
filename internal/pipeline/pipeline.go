// Package pipeline composes the lex/parse/lower stages into a sequential
// run over a single mutable Context, in the same Processor-chaining shape
// the teacher's own pipeline package uses. Unlike that original — which
// keeps running every processor and accumulates errors — this Pipeline
// stops at the first stage that reports an error, matching §7's explicit
// "there is no local recovery; the first error aborts" policy.
package pipeline

// Processor is one pipeline stage: it receives the context produced by the
// previous stage and returns the context to hand to the next one.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs a fixed ordered list of Processors.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline from its ordered stages.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes each stage in order, stopping as soon as a stage leaves an
// error on the context.
func (p *Pipeline) Run(initial *Context) *Context {
	ctx := initial
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
		if ctx.Err != nil {
			return ctx
		}
	}
	return ctx
}
