// Package config is the single source of truth for language-level constants
// shared by the environment, lowerer, and CLI: primitive type names,
// builtin helper function names, operator documentation, and the fixed
// output file names and exit codes of the CLI contract.
package config

// PrimitiveTypes are the base type names resolve_type accepts with no
// pointer/array decoration, and the int-bit-width each one lowers to.
var PrimitiveTypes = map[string]int{
	"int":   32,
	"float": 32, // IEEE-754 single; width is meaningless but kept for symmetry
}

// OperatorInfo documents an operator's signature and trait-like category for
// diagnostics and help output; precedence/associativity itself lives in
// token.Precedences; this mirrors it so callers have one descriptive table
// instead of re-deriving prose from the bare numbers.
type OperatorInfo struct {
	Symbol      string
	Signature   string
	Description string
	Category    string
}

// AllOperators is metadata for every operator in token.Precedences (prefix
// and postfix `++`, `&`, and unary `+`/`-`/`*` are not listed), printed in full by the CLI's -ops flag; GetOperator backs -op, its
// single-symbol lookup variant.
var AllOperators = []OperatorInfo{
	{Symbol: ",", Signature: "(T, T) -> T", Description: "Sequencing (discard lhs, yield rhs)", Category: "Sequencing"},
	{Symbol: "=", Signature: "(T&, T) -> T", Description: "Assignment", Category: "Assignment"},
	{Symbol: "+=", Signature: "(T&, T) -> T", Description: "Add and assign", Category: "Assignment"},
	{Symbol: "||", Signature: "(int, int) -> int", Description: "Logical OR", Category: "Logical"},
	{Symbol: "&&", Signature: "(int, int) -> int", Description: "Logical AND", Category: "Logical"},
	{Symbol: "==", Signature: "(T, T) -> int", Description: "Equality", Category: "Comparison"},
	{Symbol: ">", Signature: "(T, T) -> int", Description: "Greater than", Category: "Comparison"},
	{Symbol: "<", Signature: "(T, T) -> int", Description: "Less than", Category: "Comparison"},
	{Symbol: "+", Signature: "(T, T) -> T", Description: "Addition", Category: "Arithmetic"},
	{Symbol: "-", Signature: "(T, T) -> T", Description: "Subtraction", Category: "Arithmetic"},
	{Symbol: "*", Signature: "(T, T) -> T", Description: "Multiplication", Category: "Arithmetic"},
	{Symbol: "[", Signature: "(T[], int) -> T", Description: "Array index", Category: "Access"},
	{Symbol: "(", Signature: "(fn, ...T) -> R", Description: "Function call", Category: "Access"},
	{Symbol: ".", Signature: "(struct, field) -> T", Description: "Field access", Category: "Access"},
}

// GetOperator returns documentation for an operator symbol, or nil.
func GetOperator(symbol string) *OperatorInfo {
	for i := range AllOperators {
		if AllOperators[i].Symbol == symbol {
			return &AllOperators[i]
		}
	}
	return nil
}

// BuiltinHelperNames are the five comparison/logical helpers the lowerer
// declares in the user module and the builtin emitter gives bodies to.
// All share the signature (i32, i32) -> i32.
var BuiltinHelperNames = []string{"eq_int", "sgt_int", "slt_int", "and_int", "or_int"}

// ExternIOName is the single external I/O primitive the spec allows:
// extern int putchar(int).
const ExternIOName = "putchar"

// Output file names of the CLI contract (§6): two IR modules plus the
// verbatim debug sidecar written before lexing.
const (
	CompiledIRFileName = "compiled.ll"
	BuiltinIRFileName  = "builtin.ll"
	SidecarFileName    = "target.c"
)

// Exit codes. 0/1 follow the documented contract verbatim; 2 and 3 refine
// "nonzero fatal otherwise" into something CI scripts can branch on.
const (
	ExitOK          = 0
	ExitUsageError  = 1
	ExitIOError     = 2
	ExitCompileFail = 3
)
