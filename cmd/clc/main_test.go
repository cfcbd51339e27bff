package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/clc/internal/config"
)

func TestRunEndToEndProducesOutputFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.c")
	if err := os.WriteFile(src, []byte("int main() { return 0; }"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	code := run([]string{src})
	if code != config.ExitOK {
		t.Fatalf("run() = %d, want ExitOK", code)
	}

	for _, name := range []string{config.CompiledIRFileName, config.BuiltinIRFileName, config.SidecarFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}
}

func TestRunReportsCompileFailureExitCode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.c")
	if err := os.WriteFile(src, []byte("int main() { return @; }"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	code := run([]string{src})
	if code != config.ExitCompileFail {
		t.Errorf("run() = %d, want ExitCompileFail", code)
	}
}

func TestRunReportsIOErrorForMissingFile(t *testing.T) {
	code := run([]string{filepath.Join(t.TempDir(), "nope.c")})
	if code != config.ExitIOError {
		t.Errorf("run() = %d, want ExitIOError", code)
	}
}

func TestRunReportsUsageErrorForMissingArgs(t *testing.T) {
	code := run([]string{})
	if code != config.ExitUsageError {
		t.Errorf("run() = %d, want ExitUsageError", code)
	}
}

func TestRunListsOperatorsWithoutRequiringASourceFile(t *testing.T) {
	if code := run([]string{"-ops"}); code != config.ExitOK {
		t.Errorf("run([-ops]) = %d, want ExitOK", code)
	}
}

func TestRunLooksUpSingleOperator(t *testing.T) {
	if code := run([]string{"-op", "+"}); code != config.ExitOK {
		t.Errorf("run([-op +]) = %d, want ExitOK", code)
	}
	if code := run([]string{"-op", "~"}); code != config.ExitUsageError {
		t.Errorf("run([-op ~]) = %d, want ExitUsageError for an unknown operator", code)
	}
}
