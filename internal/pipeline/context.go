package pipeline

import (
	"github.com/funvibe/clc/internal/ast"
	"github.com/funvibe/clc/internal/diagnostics"
	"github.com/funvibe/clc/internal/token"
)

// Context is threaded through the lex → parse → lower stages. Each stage
// reads the fields earlier stages populated and writes its own.
type Context struct {
	FilePath string
	Source   string

	Tokens []token.Token
	Root   *ast.Program

	CompiledIR string
	BuiltinIR  string

	Err *diagnostics.Error
}

// NewContext seeds a Context with the file path and its already-read
// source text.
func NewContext(filePath, source string) *Context {
	return &Context{FilePath: filePath, Source: source}
}

// Fail attaches the source buffer to err (for line/column resolution) and
// stores it on the context so Pipeline.Run stops after this stage.
func (c *Context) Fail(err *diagnostics.Error) *Context {
	c.Err = err.WithSource(c.Source)
	return c
}
