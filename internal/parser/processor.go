package parser

import (
	"github.com/funvibe/clc/internal/pipeline"
)

// Processor is the parser's pipeline.Processor stage: token sequence in,
// program AST out.
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	root, err := Parse(ctx.Tokens)
	if err != nil {
		return ctx.Fail(err)
	}
	ctx.Root = root
	return ctx
}
