package lowerer_test

import (
	"strings"
	"testing"

	"github.com/funvibe/clc/internal/ast"
	"github.com/funvibe/clc/internal/lexer"
	"github.com/funvibe/clc/internal/lowerer"
	"github.com/funvibe/clc/internal/parser"
)

func compile(t *testing.T, src string) (compiledIR, builtinIR string) {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, perr := parser.Parse(toks)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	compiled, bi, lerr := lowerer.Emit(prog)
	if lerr != nil {
		t.Fatalf("lowering error: %v", lerr)
	}
	return compiled, bi
}

func TestEmitDeclaresBuiltinHelpersAndPutchar(t *testing.T) {
	ir, _ := compile(t, "int main() { return 0; }")
	for _, name := range []string{"eq_int", "sgt_int", "slt_int", "and_int", "or_int", "putchar"} {
		if !strings.Contains(ir, "@"+name) {
			t.Errorf("compiled IR missing a reference to %q:\n%s", name, ir)
		}
	}
}

func TestEmitFunctionWithArithmeticAndCall(t *testing.T) {
	src := `
int add(int a, int b) {
  return a + b;
}

int main() {
  int x = add(1, 2);
  return x;
}
`
	ir, _ := compile(t, src)
	if !strings.Contains(ir, "define i32 @add") {
		t.Errorf("missing definition of add:\n%s", ir)
	}
	if !strings.Contains(ir, "define i32 @main") {
		t.Errorf("missing definition of main:\n%s", ir)
	}
	if !strings.Contains(ir, "call i32 @add") {
		t.Errorf("main does not call add:\n%s", ir)
	}
}

func TestEmitComparisonRoutesThroughBuiltin(t *testing.T) {
	src := `
int main() {
  int a = 1;
  int b = 2;
  int c = a == b;
  return c;
}
`
	ir, _ := compile(t, src)
	if !strings.Contains(ir, "call i32 @eq_int") {
		t.Errorf("int == int must call eq_int, got:\n%s", ir)
	}
}

func TestEmitFloatComparisonUsesNativeFCmpNotBuiltin(t *testing.T) {
	src := `
int main() {
  float a = 1.5;
  float b = 2.5;
  int c = a < b;
  return c;
}
`
	ir, _ := compile(t, src)
	if !strings.Contains(ir, "fcmp") {
		t.Errorf("float comparison must lower to a native fcmp, got:\n%s", ir)
	}
	if strings.Contains(ir, "call i32 @slt_int") {
		t.Errorf("float comparison must not call slt_int, got:\n%s", ir)
	}
}

func TestEmitWhileLoopHasThreeBlocks(t *testing.T) {
	src := `
int main() {
  int i = 0;
  while (i < 10) {
    i = i + 1;
  }
  return i;
}
`
	ir, _ := compile(t, src)
	for _, label := range []string{"while.cond", "while.body", "while.cont"} {
		if !strings.Contains(ir, label) {
			t.Errorf("while loop IR missing block %q:\n%s", label, ir)
		}
	}
}

func TestEmitForLoopBreakAndContinue(t *testing.T) {
	src := `
int main() {
  int sum = 0;
  for (int i = 0; i < 10; i++) {
    if (i == 5) {
      break;
    }
    if (i == 2) {
      continue;
    }
    sum = sum + i;
  }
  return sum;
}
`
	ir, _ := compile(t, src)
	if !strings.Contains(ir, "define i32 @main") {
		t.Errorf("missing main definition:\n%s", ir)
	}
	// break/continue must each produce an unconditional branch somewhere
	// in the function body beyond the loop's own structural branches.
	if strings.Count(ir, "br label") < 3 {
		t.Errorf("expected multiple unconditional branches from break/continue, got IR:\n%s", ir)
	}
}

func TestEmitSwitchStatement(t *testing.T) {
	src := `
int main() {
  int x = 1;
  int y = 0;
  switch (x) {
    case 1:
      y = 10;
      break;
    case 2:
      y = 20;
      break;
    default:
      y = 0;
  }
  return y;
}
`
	ir, _ := compile(t, src)
	if !strings.Contains(ir, "define i32 @main") {
		t.Errorf("missing main definition:\n%s", ir)
	}
}

func TestEmitSwitchCaseAfterDefaultHasNoComparisonBlock(t *testing.T) {
	src := `
int main() {
  int x = 1;
  int y = 0;
  switch (x) {
    case 1:
      y = 1;
      break;
    default:
      y = 2;
    case 2:
      y = 3;
      break;
  }
  return y;
}
`
	ir, _ := compile(t, src)
	if strings.Count(ir, "icmp eq") != 1 {
		t.Errorf("expected exactly 1 case comparison (only case 1 precedes default), got IR:\n%s", ir)
	}
	if strings.Contains(ir, "switch.cmp2") {
		t.Errorf("case 2 (after default) must not get its own comparison block, got IR:\n%s", ir)
	}
}

func TestEmitStructFieldAccess(t *testing.T) {
	src := `
struct Point { int x; int y; };

int main() {
  struct Point p;
  p.x = 3;
  p.y = 4;
  return p.x + p.y;
}
`
	ir, _ := compile(t, src)
	if !strings.Contains(ir, "define i32 @main") {
		t.Errorf("missing main definition:\n%s", ir)
	}
	if !strings.Contains(ir, "getelementptr") {
		t.Errorf("struct field access must lower to a GEP, got:\n%s", ir)
	}
}

func TestEmitTopLevelEnumBindsGlobals(t *testing.T) {
	src := `
enum Color { RED, GREEN, BLUE };

int main() {
  int c = GREEN;
  return c;
}
`
	ir, _ := compile(t, src)
	if !strings.Contains(ir, "@GREEN") {
		t.Errorf("GREEN must be bound as a module global, got:\n%s", ir)
	}
}

func TestEmitArrayIndexing(t *testing.T) {
	src := `
int main() {
  int arr[5];
  arr[0] = 42;
  return arr[0];
}
`
	ir, _ := compile(t, src)
	if !strings.Contains(ir, "getelementptr") {
		t.Errorf("array indexing must lower to a GEP, got:\n%s", ir)
	}
}

func TestEmitUndeclaredIdentFails(t *testing.T) {
	_, _, err := func() (string, string, error) {
		toks, lerr := lexer.Lex("int main() { return undeclared_name; }")
		if lerr != nil {
			t.Fatalf("lex error: %v", lerr)
		}
		prog, perr := parser.Parse(toks)
		if perr != nil {
			t.Fatalf("parse error: %v", perr)
		}
		compiled, bi, err := lowerer.Emit(prog)
		return compiled, bi, err
	}()
	if err == nil {
		t.Error("expected an undeclared-identifier error")
	}
}

func TestEmitRedefinitionInSameScopeFails(t *testing.T) {
	src := `
int main() {
  int a = 1;
  int a = 2;
  return a;
}
`
	toks, lerr := lexer.Lex(src)
	if lerr != nil {
		t.Fatalf("lex error: %v", lerr)
	}
	prog, perr := parser.Parse(toks)
	if perr != nil {
		t.Fatalf("parse error: %v", perr)
	}
	_, _, err := lowerer.Emit(prog)
	if err == nil {
		t.Error("expected a redefinition error for two locals named 'a' in the same scope")
	}
}

// TestEmitEmptyMain is a tiny smoke test: Emit lowers a hand-built AST for
// the simplest possible program without an error.
func TestEmitEmptyMain(t *testing.T) {
	prog := &ast.Program{Declarations: []ast.Declaration{
		&ast.FunctionDecl{Ident: "main", ReturnType: "int", Body: []ast.Statement{
			&ast.ReturnStatement{Value: &ast.IntLit{Value: 0}},
		}},
	}}
	compiled, bi, err := lowerer.Emit(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(compiled, "define i32 @main") || bi == "" {
		t.Errorf("compiled=%q bi=%q", compiled, bi)
	}
}
