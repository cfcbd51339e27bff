// Package ast defines the typed syntax tree the parser builds and the
// lowerer consumes. Nodes carry no source locations beyond those retained
// inside the tokens embedded in leaf expressions; diagnostics during
// lowering re-derive position from those tokens' DebugInfo.
package ast

import "github.com/funvibe/clc/internal/token"

// Node is implemented by every statement and expression variant, purely so
// generic tree-walking helpers (e.g. pretty-printers) have a common type to
// range over; the lowerer type-switches on the concrete variants.
type Node interface {
	node()
}

// Program is the root: an ordered sequence of top-level declarations.
type Program struct {
	Declarations []Declaration
}

// Declaration is either a FunctionDecl or a top-level VariableDecl.
type Declaration interface {
	Node
	declaration()
}

// FunctionDecl is a function definition or (when Body is nil) forward
// declaration, including `extern` declarations.
type FunctionDecl struct {
	Ident      string
	ReturnType string
	Params     []*VariableDecl
	Body       []Statement // nil means forward declaration
	IsExtern   bool
	IsVarArgs  bool
	Tok        token.Token
}

func (*FunctionDecl) node()        {}
func (*FunctionDecl) declaration() {}

// VariableDecl is a typed binding with an optional initializer; the type is
// the canonical type string described in §4.2 ("int", "int*", "int[3][2]",
// a struct/enum tag name, ...).
type VariableDecl struct {
	ValueType string
	Ident     string
	Init      Expression // nil when absent
	Tok       token.Token
}

func (*VariableDecl) node()        {}
func (*VariableDecl) declaration() {}

// Statement is implemented by every statement-level node.
type Statement interface {
	Node
	statement()
}

type ExpressionStatement struct {
	Expr Expression
}

func (*ExpressionStatement) node()      {}
func (*ExpressionStatement) statement() {}

type ReturnStatement struct {
	Value Expression // nil for bare `return;`
	Tok   token.Token
}

func (*ReturnStatement) node()      {}
func (*ReturnStatement) statement() {}

// DeclareStatement is a local variable declaration statement.
type DeclareStatement struct {
	Decl *VariableDecl
}

func (*DeclareStatement) node()      {}
func (*DeclareStatement) statement() {}

// StructStatement is either a struct definition (Fields != nil) or a
// variable declaration of a (previously or concurrently defined) struct
// type (Fields == nil, Decl != nil). It doubles as a Declaration so a
// struct can be defined directly at the top level, not only nested inside
// a function body — the same parsing and lowering logic handles both
// positions.
type StructStatement struct {
	Tag    string
	Fields []*VariableDecl // non-nil: this is the definition
	Decl   *VariableDecl   // non-nil: this also/instead declares a variable
}

func (*StructStatement) node()        {}
func (*StructStatement) statement()   {}
func (*StructStatement) declaration() {}

// Enumerator is one `NAME [= expr]` entry inside an enum definition.
type Enumerator struct {
	Ident string
	Value Expression // nil means "previous + 1" (or 0 for the first)
}

// EnumStatement is either an enum definition (Enumerators != nil) or a
// variable declaration of a (previously defined) enum type. Like
// StructStatement, it doubles as a Declaration so it can appear at the top
// level.
type EnumStatement struct {
	Tag         string
	Enumerators []Enumerator // non-nil: this is the definition
	Decl        *VariableDecl
}

func (*EnumStatement) node()        {}
func (*EnumStatement) statement()   {}
func (*EnumStatement) declaration() {}

type CompoundStatement struct {
	Statements []Statement
}

func (*CompoundStatement) node()      {}
func (*CompoundStatement) statement() {}

type IfStatement struct {
	Cond Expression
	Then Statement
	Else Statement // nil when absent
}

func (*IfStatement) node()      {}
func (*IfStatement) statement() {}

type WhileStatement struct {
	Cond Expression
	Body Statement
}

func (*WhileStatement) node()      {}
func (*WhileStatement) statement() {}

// ForStatement's Init is itself a Statement (a DeclareStatement or an
// ExpressionStatement) per the grammar's "first stmt can be decl".
type ForStatement struct {
	Init Statement // nil when absent
	Cond Expression // nil when absent (treated as always-true)
	Step Expression // nil when absent
	Body Statement
}

func (*ForStatement) node()      {}
func (*ForStatement) statement() {}

type CaseClause struct {
	Value      Expression // nil for default
	IsDefault  bool
	Statements []Statement
}

type SwitchStatement struct {
	Tag   Expression
	Cases []*CaseClause
}

func (*SwitchStatement) node()      {}
func (*SwitchStatement) statement() {}

type BreakStatement struct{ Tok token.Token }

func (*BreakStatement) node()      {}
func (*BreakStatement) statement() {}

type ContinueStatement struct{ Tok token.Token }

func (*ContinueStatement) node()      {}
func (*ContinueStatement) statement() {}

type EmptyStatement struct{}

func (*EmptyStatement) node()      {}
func (*EmptyStatement) statement() {}

// Expression is implemented by every expression-level node.
type Expression interface {
	Node
	expression()
}

type IntLit struct {
	Value int64
	Tok   token.Token
}

func (*IntLit) node()       {}
func (*IntLit) expression() {}

type FloatLit struct {
	Value float64
	Tok   token.Token
}

func (*FloatLit) node()       {}
func (*FloatLit) expression() {}

type StrLit struct {
	Value string
	Tok   token.Token
}

func (*StrLit) node()       {}
func (*StrLit) expression() {}

type Ident struct {
	Name string
	Tok  token.Token
}

func (*Ident) node()       {}
func (*Ident) expression() {}

// Binary covers every infix operator, including `,` (sequencing/argument
// chaining) and the assignment family.
type Binary struct {
	Op  string
	LHS Expression
	RHS Expression
	Tok token.Token
}

func (*Binary) node()       {}
func (*Binary) expression() {}

// Prefix covers `&` (address-of), `*` (deref), unary `+`/`-`, and prefix
// `++`.
type Prefix struct {
	Op    string
	Child Expression
	Tok   token.Token
}

func (*Prefix) node()       {}
func (*Prefix) expression() {}

// Suffix covers postfix `++` only; `[`, `(`, `.` get their own node kinds
// below because each carries different payload shapes.
type Suffix struct {
	Op    string
	Child Expression
	Tok   token.Token
}

func (*Suffix) node()       {}
func (*Suffix) expression() {}

type ArrayIndex struct {
	Array Expression
	Index Expression
	Tok   token.Token
}

func (*ArrayIndex) node()       {}
func (*ArrayIndex) expression() {}

// Call's Args is Empty when the call has no arguments, else a right-leaning
// chain of `,` Binary nodes whose last RHS is the final argument (a single
// argument is stored bare).
type Call struct {
	Callee string
	Args   Expression
	Tok    token.Token
}

func (*Call) node()       {}
func (*Call) expression() {}

type FieldAccess struct {
	Child Expression
	Field string
	Tok   token.Token
}

func (*FieldAccess) node()       {}
func (*FieldAccess) expression() {}

type Ternary struct {
	Cond Expression
	Then Expression
	Else Expression
	Tok  token.Token
}

func (*Ternary) node()       {}
func (*Ternary) expression() {}

// Empty is the Args of a call with no arguments. Absent initializers and
// other optional children are nil, not Empty.
type Empty struct{}

func (*Empty) node()       {}
func (*Empty) expression() {}
