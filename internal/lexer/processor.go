package lexer

import (
	"github.com/funvibe/clc/internal/diagnostics"
	"github.com/funvibe/clc/internal/pipeline"
	"github.com/funvibe/clc/internal/token"
)

// Processor is the lexer's pipeline.Processor stage: source text in,
// token sequence out.
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	toks, err := Lex(ctx.Source)
	if err != nil {
		offset := 0
		if le, ok := err.(*Error); ok {
			offset = le.Offset
		}
		tok := token.Token{Debug: token.DebugInfo{Start: offset, End: offset + 1}}
		return ctx.Fail(diagnostics.Lexical(tok, err.Error()))
	}
	ctx.Tokens = toks
	return ctx
}
