// Package lexer turns source text into the ordered token sequence the
// parser consumes. Scanning itself — "try each named pattern in a fixed
// order, first match wins" — is delegated to
// github.com/alecthomas/participle/v2/lexer's regex-alternation engine;
// this package owns only what that generic scanner cannot know: which
// coarse match becomes which token.Type, the prefix/suffix disambiguation
// of `++` (with `&` always a prefix), and literal decoding (escapes,
// decimal numbers, code points).
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/funvibe/clc/internal/token"
)

// Error is a lexical failure: an unrecognized character at a lex position.
type Error struct {
	Offset int
	Ch     byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("unexpected lexical pattern at byte %d: %q", e.Offset, e.Ch)
}

// rules encodes spec §4.1's eight ordered pattern groups. Order matters:
// participle's Simple lexer compiles these into one alternation and always
// returns the first (leftmost in this list) rule that matches at the
// current position, so longer/reserved forms are listed ahead of the
// shorter, more general patterns they would otherwise be swallowed by.
var rules = []lexer.SimpleRule{
	// 1. Punctuation and reserved words.
	{Name: "Colon", Pattern: `:`},
	{Name: "Question", Pattern: `\?`},
	{Name: "Semicolon", Pattern: `;`},
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "KwInt", Pattern: `\bint\b`},
	{Name: "KwFloat", Pattern: `\bfloat\b`},
	{Name: "KwChar", Pattern: `\bchar\b`},
	{Name: "KwStruct", Pattern: `\bstruct\b`},
	{Name: "KwEnum", Pattern: `\benum\b`},
	{Name: "KwSwitch", Pattern: `\bswitch\b`},
	{Name: "KwConst", Pattern: `\bconst\b`},
	{Name: "KwExtern", Pattern: `\bextern\b`},
	{Name: "KwCase", Pattern: `\bcase\b`},
	{Name: "KwDefault", Pattern: `\bdefault\b`},
	{Name: "KwReturn", Pattern: `\breturn\b`},
	{Name: "KwIf", Pattern: `\bif\b`},
	{Name: "KwElse", Pattern: `\belse\b`},
	{Name: "KwWhile", Pattern: `\bwhile\b`},
	{Name: "KwBreak", Pattern: `\bbreak\b`},
	{Name: "KwContinue", Pattern: `\bcontinue\b`},
	{Name: "KwFor", Pattern: `\bfor\b`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},

	// 2. &&
	{Name: "AndAnd", Pattern: `&&`},

	// 3/4. `++` (disambiguated prefix/suffix below by whitespace
	// adjacency) and the always-prefix `&`, always-suffix `[`/`(`/`.`.
	{Name: "PlusPlus", Pattern: `\+\+`},
	{Name: "Amp", Pattern: `&`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "Dot", Pattern: `\.`},

	// 5. Infix ops.
	{Name: "OrOr", Pattern: `\|\|`},
	{Name: "PlusEq", Pattern: `\+=`},
	{Name: "EqEq", Pattern: `==`},
	{Name: "Gt", Pattern: `>`},
	{Name: "Lt", Pattern: `<`},
	{Name: "Plus", Pattern: `\+`},
	{Name: "Minus", Pattern: `-`},
	{Name: "Star", Pattern: `\*`},
	{Name: "Eq", Pattern: `=`},
	{Name: "Comma", Pattern: `,`},

	// 6. Character literal.
	{Name: "Char", Pattern: `'(?:\\.|[^'\\])'`},

	// 7. Identifier.
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z_0-9]*`},

	// 8. Integer and float literals (float requires a dot).
	{Name: "Float", Pattern: `[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},

	// Whitespace is consumed by the scanner, never forwarded downstream.
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
}

var definition = lexer.MustSimple(rules)

// Lex scans source into a token sequence, or returns an *Error for the
// first unrecognized character.
func Lex(source string) ([]token.Token, error) {
	symbols := definition.Symbols()
	names := make(map[lexer.TokenType]string, len(symbols))
	for name, id := range symbols {
		names[id] = name
	}

	lx, err := definition.Lex("", strings.NewReader(source))
	if err != nil {
		return nil, err
	}

	var out []token.Token
	prevEnd := -1 // sentinel: "start of input" never equals a real offset
	scanned := 0  // end of the last raw match, whitespace included
	for {
		raw, err := lx.Next()
		if err != nil {
			// No rule matches at the first byte not yet scanned.
			var ch byte
			if scanned < len(source) {
				ch = source[scanned]
			}
			return nil, &Error{Offset: scanned, Ch: ch}
		}
		if raw.EOF() {
			break
		}

		name := names[raw.Type]
		start := raw.Pos.Offset
		end := start + len(raw.Value)
		scanned = end

		if name == "Whitespace" {
			continue // implicit: the scanner skips it, it is never a token
		}
		if name == "" {
			var ch byte
			if start < len(source) {
				ch = source[start]
			}
			return nil, &Error{Offset: start, Ch: ch}
		}

		tok, err := classify(name, raw.Value, start, end, prevEnd)
		if err == errDropped {
			prevEnd = end // const is consumed silently, not emitted
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		prevEnd = end
	}
	return out, nil
}

func classify(name, value string, start, end, prevEnd int) (token.Token, error) {
	debug := token.DebugInfo{Start: start, End: end, Lexeme: value}
	switch name {
	case "Colon":
		return token.Token{Type: token.COLON, Lexeme: value, Debug: debug}, nil
	case "Question":
		return token.Token{Type: token.QUESTION, Lexeme: value, Debug: debug}, nil
	case "Semicolon":
		return token.Token{Type: token.SEMICOLON, Lexeme: value, Debug: debug}, nil
	case "Ellipsis":
		return token.Token{Type: token.ELLIPSIS, Lexeme: value, Debug: debug}, nil
	case "String":
		s, err := decodeString(value)
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Type: token.STR_LIT, Lexeme: value, Literal: s, Debug: debug}, nil
	case "KwInt", "KwChar": // char is aliased to int at the token level
		return token.Token{Type: token.TYPE_INT, Lexeme: value, Debug: debug}, nil
	case "KwFloat":
		return token.Token{Type: token.TYPE_FLOAT, Lexeme: value, Debug: debug}, nil
	case "KwStruct":
		return token.Token{Type: token.STRUCT, Lexeme: value, Debug: debug}, nil
	case "KwEnum":
		return token.Token{Type: token.ENUM, Lexeme: value, Debug: debug}, nil
	case "KwSwitch":
		return token.Token{Type: token.SWITCH, Lexeme: value, Debug: debug}, nil
	case "KwConst":
		return token.Token{}, errDropped // const is recognized and silently dropped
	case "KwExtern":
		return token.Token{Type: token.EXTERN, Lexeme: value, Debug: debug}, nil
	case "KwCase":
		return token.Token{Type: token.CASE, Lexeme: value, Debug: debug}, nil
	case "KwDefault":
		return token.Token{Type: token.DEFAULT, Lexeme: value, Debug: debug}, nil
	case "KwReturn":
		return token.Token{Type: token.RETURN, Lexeme: value, Debug: debug}, nil
	case "KwIf":
		return token.Token{Type: token.IF, Lexeme: value, Debug: debug}, nil
	case "KwElse":
		return token.Token{Type: token.ELSE, Lexeme: value, Debug: debug}, nil
	case "KwWhile":
		return token.Token{Type: token.WHILE, Lexeme: value, Debug: debug}, nil
	case "KwBreak":
		return token.Token{Type: token.BREAK, Lexeme: value, Debug: debug}, nil
	case "KwContinue":
		return token.Token{Type: token.CONTINUE, Lexeme: value, Debug: debug}, nil
	case "KwFor":
		return token.Token{Type: token.FOR, Lexeme: value, Debug: debug}, nil
	case "RBracket":
		return token.Token{Type: token.RBRACKET, Lexeme: value, Debug: debug}, nil
	case "RParen":
		return token.Token{Type: token.RPAREN, Lexeme: value, Debug: debug}, nil
	case "LBrace":
		return token.Token{Type: token.LBRACE, Lexeme: value, Debug: debug}, nil
	case "RBrace":
		return token.Token{Type: token.RBRACE, Lexeme: value, Debug: debug}, nil

	case "AndAnd":
		return token.Token{Type: token.OP_INFIX, Lexeme: "&&", Debug: debug}, nil

	case "PlusPlus":
		if prevEnd != start { // whitespace or start-of-input precedes
			return token.Token{Type: token.OP_PREFIX, Lexeme: "++", Debug: debug}, nil
		}
		return token.Token{Type: token.OP_SUFFIX, Lexeme: "++", Debug: debug}, nil
	case "Amp":
		return token.Token{Type: token.OP_PREFIX, Lexeme: "&", Debug: debug}, nil
	case "LBracket":
		return token.Token{Type: token.OP_SUFFIX, Lexeme: "[", Debug: debug}, nil
	case "LParen":
		return token.Token{Type: token.OP_SUFFIX, Lexeme: "(", Debug: debug}, nil
	case "Dot":
		return token.Token{Type: token.OP_SUFFIX, Lexeme: ".", Debug: debug}, nil

	case "OrOr":
		return token.Token{Type: token.OP_INFIX, Lexeme: "||", Debug: debug}, nil
	case "PlusEq":
		return token.Token{Type: token.OP_INFIX, Lexeme: "+=", Debug: debug}, nil
	case "EqEq":
		return token.Token{Type: token.OP_INFIX, Lexeme: "==", Debug: debug}, nil
	case "Gt":
		return token.Token{Type: token.OP_INFIX, Lexeme: ">", Debug: debug}, nil
	case "Lt":
		return token.Token{Type: token.OP_INFIX, Lexeme: "<", Debug: debug}, nil
	case "Plus":
		return token.Token{Type: token.OP_INFIX, Lexeme: "+", Debug: debug}, nil
	case "Minus":
		return token.Token{Type: token.OP_INFIX, Lexeme: "-", Debug: debug}, nil
	case "Star":
		return token.Token{Type: token.OP_INFIX, Lexeme: "*", Debug: debug}, nil
	case "Eq":
		return token.Token{Type: token.OP_INFIX, Lexeme: "=", Debug: debug}, nil
	case "Comma":
		return token.Token{Type: token.OP_INFIX, Lexeme: ",", Debug: debug}, nil

	case "Char":
		cp, err := decodeChar(value)
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Type: token.INT_LIT, Lexeme: value, Literal: int64(cp), Debug: debug}, nil

	case "Ident":
		typ := token.LookupIdent(value)
		if typ != token.IDENT {
			// Should not happen: all keywords are matched earlier and more
			// specifically, but guard against an identifier rule widened
			// in the future without its keyword counterpart kept in sync.
			return token.Token{Type: typ, Lexeme: value, Debug: debug}, nil
		}
		return token.Token{Type: token.IDENT, Lexeme: value, Literal: value, Debug: debug}, nil

	case "Float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Type: token.FLOAT_LIT, Lexeme: value, Literal: f, Debug: debug}, nil
	case "Int":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Type: token.INT_LIT, Lexeme: value, Literal: n, Debug: debug}, nil
	}
	return token.Token{}, fmt.Errorf("lexer: unhandled pattern %q", name)
}

// errDropped is a sentinel signalling "recognized, but not a token"; Lex
// special-cases it to silently continue instead of surfacing an error.
var errDropped = &droppedToken{}

type droppedToken struct{}

func (*droppedToken) Error() string { return "dropped token (const)" }

func decodeString(raw string) (string, error) {
	inner := raw[1 : len(raw)-1]
	return unescape(inner)
}

func decodeChar(raw string) (rune, error) {
	inner := raw[1 : len(raw)-1]
	decoded, err := unescape(inner)
	if err != nil {
		return 0, err
	}
	r := []rune(decoded)
	if len(r) != 1 {
		return 0, fmt.Errorf("lexer: invalid character literal %q", raw)
	}
	return r[0], nil
}

func unescape(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("lexer: dangling escape in %q", s)
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		default:
			return "", fmt.Errorf("lexer: unknown escape '\\%c'", s[i])
		}
	}
	return b.String(), nil
}
