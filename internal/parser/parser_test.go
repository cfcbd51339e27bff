package parser_test

import (
	"testing"

	"github.com/funvibe/clc/internal/ast"
	"github.com/funvibe/clc/internal/lexer"
	"github.com/funvibe/clc/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, perr := parser.Parse(toks)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	return prog
}

func singleExprStmt(t *testing.T, src string) ast.Expression {
	t.Helper()
	prog := mustParse(t, "int f() { "+src+"; }")
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	es := fn.Body[0].(*ast.ExpressionStatement)
	return es.Expr
}

func TestOperatorPrecedence(t *testing.T) {
	// a + b * c must bind as a + (b * c): '*' binds tighter than '+'.
	expr := singleExprStmt(t, "a + b * c")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("top node = %#v, want Binary{+}", expr)
	}
	rhs, ok := bin.RHS.(*ast.Binary)
	if !ok || rhs.Op != "*" {
		t.Fatalf("rhs = %#v, want Binary{*}", bin.RHS)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	// a = b = c must bind as a = (b = c).
	expr := singleExprStmt(t, "a = b = c")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != "=" {
		t.Fatalf("top node = %#v, want Binary{=}", expr)
	}
	if _, ok := bin.LHS.(*ast.Ident); !ok {
		t.Errorf("lhs = %#v, want a bare Ident (a)", bin.LHS)
	}
	rhs, ok := bin.RHS.(*ast.Binary)
	if !ok || rhs.Op != "=" {
		t.Fatalf("rhs = %#v, want nested Binary{=} (b = c)", bin.RHS)
	}
}

func TestAdditionIsLeftAssociative(t *testing.T) {
	// a - b - c must bind as (a - b) - c.
	expr := singleExprStmt(t, "a - b - c")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != "-" {
		t.Fatalf("top node = %#v, want Binary{-}", expr)
	}
	lhs, ok := bin.LHS.(*ast.Binary)
	if !ok || lhs.Op != "-" {
		t.Fatalf("lhs = %#v, want nested Binary{-} ((a - b))", bin.LHS)
	}
}

func TestTernaryAttachesAfterSuffixes(t *testing.T) {
	expr := singleExprStmt(t, "a[0] ? 1 : 2")
	tern, ok := expr.(*ast.Ternary)
	if !ok {
		t.Fatalf("top node = %#v, want Ternary", expr)
	}
	if _, ok := tern.Cond.(*ast.ArrayIndex); !ok {
		t.Errorf("cond = %#v, want the fully-suffixed a[0]", tern.Cond)
	}
}

func TestCallArgsBuildRightLeaningCommaChain(t *testing.T) {
	expr := singleExprStmt(t, "f(1, 2, 3)")
	call, ok := expr.(*ast.Call)
	if !ok || call.Callee != "f" {
		t.Fatalf("top node = %#v, want Call{f}", expr)
	}
	first, ok := call.Args.(*ast.Binary)
	if !ok || first.Op != "," {
		t.Fatalf("args = %#v, want a right-leaning ',' chain", call.Args)
	}
	if lit, ok := first.LHS.(*ast.IntLit); !ok || lit.Value != 1 {
		t.Errorf("first arg = %#v, want IntLit{1}", first.LHS)
	}
	rest, ok := first.RHS.(*ast.Binary)
	if !ok || rest.Op != "," {
		t.Fatalf("rest = %#v, want another ',' Binary", first.RHS)
	}
}

func TestCallWithNoArgsIsEmpty(t *testing.T) {
	expr := singleExprStmt(t, "f()")
	call := expr.(*ast.Call)
	if _, ok := call.Args.(*ast.Empty); !ok {
		t.Errorf("Args = %#v, want *ast.Empty for a no-argument call", call.Args)
	}
}

func TestCommaAtStatementPositionIsLeftAssociativeBinary(t *testing.T) {
	// Outside of a call's argument list, ',' goes through the generic
	// precedence-climbing fold, which is left-associative per the table,
	// unlike parseCallArgs's dedicated right-leaning chain.
	expr := singleExprStmt(t, "a = 1, b = 2")
	top, ok := expr.(*ast.Binary)
	if !ok || top.Op != "," {
		t.Fatalf("top node = %#v, want Binary{,}", expr)
	}
	if _, ok := top.LHS.(*ast.Binary); !ok {
		t.Errorf("lhs = %#v, want Binary{=} (a = 1)", top.LHS)
	}
}

func TestTopLevelStructDefinitionIsADeclaration(t *testing.T) {
	prog := mustParse(t, "struct Point { int x; int y; };")
	st, ok := prog.Declarations[0].(*ast.StructStatement)
	if !ok {
		t.Fatalf("declaration = %#v, want *ast.StructStatement", prog.Declarations[0])
	}
	if st.Tag != "Point" || len(st.Fields) != 2 {
		t.Errorf("struct = %+v, want tag Point with 2 fields", st)
	}
}

func TestStructDeclarationWithVariable(t *testing.T) {
	prog := mustParse(t, "struct Point { int x; int y; } origin;")
	st := prog.Declarations[0].(*ast.StructStatement)
	if st.Decl == nil || st.Decl.Ident != "origin" {
		t.Errorf("Decl = %+v, want a VariableDecl named origin", st.Decl)
	}
}

func TestEnumAutoIncrementsFromPreviousPlusOne(t *testing.T) {
	prog := mustParse(t, "enum Color { RED, GREEN = 5, BLUE };")
	en := prog.Declarations[0].(*ast.EnumStatement)
	if len(en.Enumerators) != 3 {
		t.Fatalf("enumerators = %+v, want 3", en.Enumerators)
	}
	if en.Enumerators[0].Value != nil {
		t.Errorf("RED's Value = %#v, want nil (auto: 0)", en.Enumerators[0].Value)
	}
	if en.Enumerators[2].Value != nil {
		t.Errorf("BLUE's Value = %#v, want nil (auto: previous+1)", en.Enumerators[2].Value)
	}
	glit, ok := en.Enumerators[1].Value.(*ast.IntLit)
	if !ok || glit.Value != 5 {
		t.Errorf("GREEN's Value = %#v, want IntLit{5}", en.Enumerators[1].Value)
	}
}

func TestForStatementAllClausesOptional(t *testing.T) {
	prog := mustParse(t, "int f() { for (;;) { break; } }")
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	forStmt, ok := fn.Body[0].(*ast.ForStatement)
	if !ok {
		t.Fatalf("stmt = %#v, want *ast.ForStatement", fn.Body[0])
	}
	if forStmt.Init != nil || forStmt.Cond != nil || forStmt.Step != nil {
		t.Errorf("for(;;) = %+v, want all three clauses nil", forStmt)
	}
}

func TestForStatementWithLocalDeclarationInit(t *testing.T) {
	prog := mustParse(t, "int f() { for (int i = 0; i < 10; i++) { } }")
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	forStmt := fn.Body[0].(*ast.ForStatement)
	decl, ok := forStmt.Init.(*ast.DeclareStatement)
	if !ok || decl.Decl.Ident != "i" {
		t.Errorf("Init = %#v, want DeclareStatement{i}", forStmt.Init)
	}
}

func TestSwitchWithDefault(t *testing.T) {
	prog := mustParse(t, "int f() { switch (x) { case 1: break; default: break; } }")
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	sw, ok := fn.Body[0].(*ast.SwitchStatement)
	if !ok {
		t.Fatalf("stmt = %#v, want *ast.SwitchStatement", fn.Body[0])
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("cases = %+v, want 2", sw.Cases)
	}
	if sw.Cases[1].IsDefault != true {
		t.Errorf("second case IsDefault = %v, want true", sw.Cases[1].IsDefault)
	}
}

func TestFunctionForwardDeclarationHasNilBody(t *testing.T) {
	prog := mustParse(t, "extern int putchar(int c);")
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	if !fn.IsExtern {
		t.Error("IsExtern = false, want true")
	}
	if fn.Body != nil {
		t.Errorf("Body = %v, want nil for a forward declaration", fn.Body)
	}
}

func TestFunctionVarArgs(t *testing.T) {
	prog := mustParse(t, "extern int printf(int fmt, ...);")
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	if !fn.IsVarArgs {
		t.Error("IsVarArgs = false, want true")
	}
	if len(fn.Params) != 1 {
		t.Errorf("Params = %+v, want exactly the named fmt parameter", fn.Params)
	}
}

func TestParamArrayDecaysToPointer(t *testing.T) {
	prog := mustParse(t, "int f(int a[10]) { return 0; }")
	fn := prog.Declarations[0].(*ast.FunctionDecl)
	if fn.Params[0].ValueType != "int*" {
		t.Errorf("param type = %q, want int* (array-to-pointer decay)", fn.Params[0].ValueType)
	}
}

func TestMultiDimArrayTypeString(t *testing.T) {
	prog := mustParse(t, "int grid[3][2];")
	decl := prog.Declarations[0].(*ast.VariableDecl)
	if decl.ValueType != "int[3][2]" {
		t.Errorf("type = %q, want int[3][2]", decl.ValueType)
	}
}

func TestTrailingGarbageIsFatal(t *testing.T) {
	toks, err := lexer.Lex("int a; )")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	if _, perr := parser.Parse(toks); perr == nil {
		t.Error("expected an error for a trailing unexpected token")
	}
}
