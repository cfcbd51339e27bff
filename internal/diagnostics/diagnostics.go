// Package diagnostics implements the error taxonomy of §7: typed error
// codes per pipeline phase, carrying a token's DebugInfo so the line number
// and full line text can be resolved on demand against the retained source
// buffer, never eagerly at lex/parse time.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/clc/internal/token"
)

// Phase names which pipeline stage raised an Error.
type Phase string

const (
	PhaseLexer       Phase = "lexer"
	PhaseParser      Phase = "parser"
	PhaseEnvironment Phase = "environment"
	PhaseLowerer     Phase = "lowerer"
	PhaseCLI         Phase = "cli"
)

// ErrorCode identifies an error kind from §7's table.
type ErrorCode string

const (
	ErrUsage          ErrorCode = "U001" // bad argv
	ErrIO             ErrorCode = "U002" // missing/unreadable file
	ErrLexical        ErrorCode = "L001" // unrecognized character
	ErrParse          ErrorCode = "P001" // unexpected token
	ErrRedefinition   ErrorCode = "E001" // name already bound in this scope
	ErrUndeclaredIdent ErrorCode = "E002" // identifier does not resolve
	ErrUndeclaredFunc ErrorCode = "E003" // call target not declared
	ErrTypeError      ErrorCode = "E004" // lhs/rhs mismatch not representable
	ErrUnsupported    ErrorCode = "E005" // recognized but unhandled construct
)

var templates = map[ErrorCode]string{
	ErrUsage:           "usage: %s",
	ErrIO:              "I/O error: %s",
	ErrLexical:         "unexpected lexical pattern: %s",
	ErrParse:           "unexpected token: %s",
	ErrRedefinition:    "redefinition of %s",
	ErrUndeclaredIdent: "undeclared identifier %s",
	ErrUndeclaredFunc:  "undeclared function %s",
	ErrTypeError:       "type error: %s",
	ErrUnsupported:     "unsupported construct: %s (TODO)",
}

// Error is a fatal diagnostic. The pipeline aborts on the first one raised
// (§7: "there is no local recovery; the first error aborts").
type Error struct {
	Code  ErrorCode
	Phase Phase
	Args  []interface{}
	Tok   token.Token
	// Source, when non-empty, lets Error() resolve Tok's byte offset to a
	// 1-based line/column and the full line text. Left unset by
	// constructors; pipeline.Context.Fail attaches it with WithSource when
	// a stage fails, so lexer/parser/lowerer code does not need to thread the
	// whole buffer through every error path.
	Source string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf(templates[e.Code], e.Args...)
	if e.Source == "" || e.Tok.Debug.End == 0 {
		return fmt.Sprintf("[%s] %s error [%s]: %s", e.Phase, e.Phase, e.Code, msg)
	}
	line, col, text := resolvePosition(e.Source, e.Tok.Debug.Start)
	return fmt.Sprintf("%s error at %d:%d [%s]: %s\n  %s", e.Phase, line, col, e.Code, msg, text)
}

// WithSource returns a copy of e carrying the source buffer for line/column
// resolution; it never mutates the diagnostic that passed through the
// pipeline.
func (e *Error) WithSource(source string) *Error {
	cp := *e
	cp.Source = source
	return &cp
}

func resolvePosition(source string, offset int) (line, col int, text string) {
	line = 1
	lineStart := 0
	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	col = offset - lineStart + 1
	end := strings.IndexByte(source[lineStart:], '\n')
	if end == -1 {
		text = source[lineStart:]
	} else {
		text = source[lineStart : lineStart+end]
	}
	return line, col, text
}

// New builds a phase-tagged diagnostic.
func New(phase Phase, code ErrorCode, tok token.Token, args ...interface{}) *Error {
	return &Error{Code: code, Phase: phase, Args: args, Tok: tok}
}

// Lexical, Parse, Redefinition, UndeclaredIdent, UndeclaredFunc, TypeErr, and
// Unsupported are thin constructors naming the phase for their kind so call
// sites read as the table in §7 rather than repeating phase/code pairs.
func Lexical(tok token.Token, detail string) *Error {
	return New(PhaseLexer, ErrLexical, tok, detail)
}

func Parse(tok token.Token, detail string) *Error {
	return New(PhaseParser, ErrParse, tok, detail)
}

func Redefinition(tok token.Token, name string) *Error {
	return New(PhaseEnvironment, ErrRedefinition, tok, name)
}

func UndeclaredIdent(tok token.Token, name string) *Error {
	return New(PhaseLowerer, ErrUndeclaredIdent, tok, name)
}

func UndeclaredFunc(tok token.Token, name string) *Error {
	return New(PhaseLowerer, ErrUndeclaredFunc, tok, name)
}

func TypeErr(tok token.Token, detail string) *Error {
	return New(PhaseLowerer, ErrTypeError, tok, detail)
}

func Unsupported(tok token.Token, construct string) *Error {
	return New(PhaseLowerer, ErrUnsupported, tok, construct)
}

func Usage(detail string) *Error {
	return &Error{Code: ErrUsage, Phase: PhaseCLI, Args: []interface{}{detail}}
}

func IO(detail string) *Error {
	return &Error{Code: ErrIO, Phase: PhaseCLI, Args: []interface{}{detail}}
}
