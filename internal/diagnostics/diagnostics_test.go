package diagnostics_test

import (
	"strings"
	"testing"

	"github.com/funvibe/clc/internal/diagnostics"
	"github.com/funvibe/clc/internal/token"
)

func TestErrorWithoutSource(t *testing.T) {
	err := diagnostics.Redefinition(token.Token{}, "foo")
	msg := err.Error()
	if !strings.Contains(msg, "environment") || !strings.Contains(msg, "foo") {
		t.Errorf("Error() = %q, want phase+name present", msg)
	}
}

func TestErrorWithSourceResolvesPosition(t *testing.T) {
	source := "int a;\nint b = ;\n"
	// 'b' sits on line 2; point the token at it to exercise line/column
	// resolution against the retained source buffer.
	offset := strings.Index(source, "b")
	tok := token.Token{Lexeme: "b", Debug: token.DebugInfo{Start: offset, End: offset + 1}}

	err := diagnostics.Parse(tok, "unexpected token").WithSource(source)
	msg := err.Error()

	if !strings.Contains(msg, "2:") {
		t.Errorf("Error() = %q, want it to mention line 2", msg)
	}
	if !strings.Contains(msg, "int b = ;") {
		t.Errorf("Error() = %q, want the offending line's text included", msg)
	}
}

func TestWithSourceDoesNotMutateOriginal(t *testing.T) {
	orig := diagnostics.Parse(token.Token{}, "x")
	cp := orig.WithSource("some source")
	if orig.Source != "" {
		t.Error("WithSource must not mutate the receiver")
	}
	if cp.Source == "" {
		t.Error("WithSource's result must carry the source")
	}
}

func TestConstructorsTagPhase(t *testing.T) {
	cases := []struct {
		name  string
		err   *diagnostics.Error
		phase diagnostics.Phase
		code  diagnostics.ErrorCode
	}{
		{"Lexical", diagnostics.Lexical(token.Token{}, "x"), diagnostics.PhaseLexer, diagnostics.ErrLexical},
		{"Parse", diagnostics.Parse(token.Token{}, "x"), diagnostics.PhaseParser, diagnostics.ErrParse},
		{"Redefinition", diagnostics.Redefinition(token.Token{}, "x"), diagnostics.PhaseEnvironment, diagnostics.ErrRedefinition},
		{"UndeclaredIdent", diagnostics.UndeclaredIdent(token.Token{}, "x"), diagnostics.PhaseLowerer, diagnostics.ErrUndeclaredIdent},
		{"UndeclaredFunc", diagnostics.UndeclaredFunc(token.Token{}, "x"), diagnostics.PhaseLowerer, diagnostics.ErrUndeclaredFunc},
		{"TypeErr", diagnostics.TypeErr(token.Token{}, "x"), diagnostics.PhaseLowerer, diagnostics.ErrTypeError},
		{"Unsupported", diagnostics.Unsupported(token.Token{}, "x"), diagnostics.PhaseLowerer, diagnostics.ErrUnsupported},
		{"Usage", diagnostics.Usage("x"), diagnostics.PhaseCLI, diagnostics.ErrUsage},
		{"IO", diagnostics.IO("x"), diagnostics.PhaseCLI, diagnostics.ErrIO},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Phase != tc.phase {
				t.Errorf("Phase = %s, want %s", tc.err.Phase, tc.phase)
			}
			if tc.err.Code != tc.code {
				t.Errorf("Code = %s, want %s", tc.err.Code, tc.code)
			}
		})
	}
}
