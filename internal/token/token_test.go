package token_test

import (
	"testing"

	"github.com/funvibe/clc/internal/token"
)

func TestLookupIdent(t *testing.T) {
	cases := []struct {
		ident string
		want  token.Type
	}{
		{"int", token.TYPE_INT},
		{"char", token.TYPE_INT},
		{"float", token.TYPE_FLOAT},
		{"struct", token.STRUCT},
		{"enum", token.ENUM},
		{"switch", token.SWITCH},
		{"const", token.CONST},
		{"extern", token.EXTERN},
		{"case", token.CASE},
		{"default", token.DEFAULT},
		{"return", token.RETURN},
		{"if", token.IF},
		{"else", token.ELSE},
		{"while", token.WHILE},
		{"break", token.BREAK},
		{"continue", token.CONTINUE},
		{"for", token.FOR},
		{"foo", token.IDENT},
		{"", token.IDENT},
	}
	for _, tc := range cases {
		if got := token.LookupIdent(tc.ident); got != tc.want {
			t.Errorf("LookupIdent(%q) = %s, want %s", tc.ident, got, tc.want)
		}
	}
}

func TestLookupOperator(t *testing.T) {
	prop, ok := token.LookupOperator("+")
	if !ok {
		t.Fatal("expected '+' to be a known operator")
	}
	if prop.Precedence != 12 || prop.Assoc != token.AssocLeft {
		t.Errorf("'+' precedence/assoc = %+v, want {12 AssocLeft}", prop)
	}

	if _, ok := token.LookupOperator("not-an-operator"); ok {
		t.Error("expected unknown lexeme to report ok=false")
	}
}

func TestPrecedenceOrdering(t *testing.T) {
	// §4.2's table, spot-checked: assignment binds loosest of the binary
	// operators tested here, access operators bind tightest.
	assign := token.Precedences["="]
	or := token.Precedences["||"]
	and := token.Precedences["&&"]
	eq := token.Precedences["=="]
	add := token.Precedences["+"]
	mul := token.Precedences["*"]
	index := token.Precedences["["]

	if !(assign.Precedence < or.Precedence &&
		or.Precedence < and.Precedence &&
		and.Precedence < eq.Precedence &&
		eq.Precedence < add.Precedence &&
		add.Precedence < mul.Precedence &&
		mul.Precedence < index.Precedence) {
		t.Errorf("operator precedence ordering violated: = %d, || %d, && %d, == %d, + %d, * %d, [ %d",
			assign.Precedence, or.Precedence, and.Precedence, eq.Precedence, add.Precedence, mul.Precedence, index.Precedence)
	}

	if assign.Assoc != token.AssocRight {
		t.Error("assignment must be right-associative")
	}
	if add.Assoc != token.AssocLeft {
		t.Error("addition must be left-associative")
	}
}

func TestTokenString(t *testing.T) {
	withLexeme := token.Token{Type: token.OP_INFIX, Lexeme: "+"}
	if got := withLexeme.String(); got != "+" {
		t.Errorf("String() = %q, want %q", got, "+")
	}

	bare := token.Token{Type: token.EOF}
	if got := bare.String(); got != "EOF" {
		t.Errorf("String() = %q, want %q", got, "EOF")
	}
}
