package builtin_test

import (
	"strings"
	"testing"

	"tinygo.org/x/go-llvm"

	"github.com/funvibe/clc/internal/builtin"
)

func TestNamesMatchesEmittedDefinitions(t *testing.T) {
	ctx := llvm.NewContext()
	ir := builtin.Emit(ctx)
	for _, name := range builtin.Names() {
		if !strings.Contains(ir, "define i32 @"+name) {
			t.Errorf("emitted IR missing a definition for %q:\n%s", name, ir)
		}
	}
}

func TestNamesAreTheFiveDocumentedHelpers(t *testing.T) {
	want := map[string]bool{"eq_int": true, "sgt_int": true, "slt_int": true, "and_int": true, "or_int": true}
	names := builtin.Names()
	if len(names) != len(want) {
		t.Fatalf("Names() has %d entries, want %d", len(names), len(want))
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected helper name %q", n)
		}
	}
}

func TestEmitProducesThreeBlockShapePerHelper(t *testing.T) {
	ctx := llvm.NewContext()
	ir := builtin.Emit(ctx)
	for _, name := range builtin.Names() {
		if !strings.Contains(ir, "entry:") {
			t.Fatalf("IR for %s missing an entry block:\n%s", name, ir)
		}
		if !strings.Contains(ir, "then:") || !strings.Contains(ir, "cont:") {
			t.Fatalf("IR for %s missing its then/cont blocks:\n%s", name, ir)
		}
	}
	// Every helper computes its result via a phi, not a direct return of
	// the comparison, per §4.5's "compute a {0,1} result via a phi node".
	if count := strings.Count(ir, "= phi i32"); count != len(builtin.Names()) {
		t.Errorf("found %d phi nodes, want exactly %d (one per helper)", count, len(builtin.Names()))
	}
}
