package config_test

import (
	"testing"

	"github.com/funvibe/clc/internal/config"
)

func TestGetOperatorFound(t *testing.T) {
	op := config.GetOperator("+")
	if op == nil {
		t.Fatal("expected '+' to be documented")
	}
	if op.Category != "Arithmetic" {
		t.Errorf("Category = %q, want Arithmetic", op.Category)
	}
}

func TestGetOperatorNotFound(t *testing.T) {
	if op := config.GetOperator("~"); op != nil {
		t.Errorf("expected nil for an undocumented symbol, got %+v", op)
	}
}

func TestAllOperatorsCoversPrecedenceTable(t *testing.T) {
	// Every operator documented here should also be a real precedence-table
	// entry, and vice versa — they are meant to describe the same set.
	want := []string{",", "=", "+=", "||", "&&", "==", ">", "<", "+", "-", "*", "[", "(", "."}
	if len(config.AllOperators) != len(want) {
		t.Fatalf("AllOperators has %d entries, want %d", len(config.AllOperators), len(want))
	}
	for _, sym := range want {
		if config.GetOperator(sym) == nil {
			t.Errorf("missing documentation for operator %q", sym)
		}
	}
}

func TestBuiltinHelperNames(t *testing.T) {
	want := map[string]bool{"eq_int": true, "sgt_int": true, "slt_int": true, "and_int": true, "or_int": true}
	if len(config.BuiltinHelperNames) != len(want) {
		t.Fatalf("BuiltinHelperNames has %d entries, want %d", len(config.BuiltinHelperNames), len(want))
	}
	for _, name := range config.BuiltinHelperNames {
		if !want[name] {
			t.Errorf("unexpected builtin helper name %q", name)
		}
	}
}
