// Package parser implements §4.2: a Pratt expression parser plus
// recursive-descent statement/declaration/type parsers. The Pratt loop
// mirrors the teacher's internal/parser.Parser in shape — a precedence
// table (here token.Precedences, not the teacher's user-operator tables),
// double lookahead, and a main fold loop — adapted to this spec's exact
// algorithm (parse_expr(min_prec, stop_op) and its suffix-application
// step) rather than funxy's own grammar.
package parser

import (
	"fmt"

	"github.com/funvibe/clc/internal/ast"
	"github.com/funvibe/clc/internal/diagnostics"
	"github.com/funvibe/clc/internal/token"
)

type parser struct {
	toks []token.Token
	pos  int
}

// Parse consumes the full token sequence and returns the program AST.
// Any trailing unexpected token is fatal, per §4.2's contract.
func Parse(toks []token.Token) (*ast.Program, *diagnostics.Error) {
	p := &parser{toks: toks}
	prog := &ast.Program{}
	for !p.atEnd() {
		decl, err := p.parseTopLevelDeclaration()
		if err != nil {
			return nil, err
		}
		prog.Declarations = append(prog.Declarations, decl)
	}
	return prog, nil
}

// --- token stream primitives ---

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) cur() token.Token {
	if p.atEnd() {
		return token.Token{Type: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peek(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[i]
}

func (p *parser) advance() token.Token {
	t := p.cur()
	p.pos++
	return t
}

func (p *parser) curIs(tt token.Type) bool { return p.cur().Type == tt }

func (p *parser) curIsLexeme(lexeme string) bool {
	t := p.cur()
	return (t.Type == token.OP_INFIX || t.Type == token.OP_PREFIX || t.Type == token.OP_SUFFIX) && t.Lexeme == lexeme
}

func (p *parser) expect(tt token.Type) (token.Token, *diagnostics.Error) {
	if !p.curIs(tt) {
		return token.Token{}, diagnostics.Parse(p.cur(), fmt.Sprintf("expected %s, got %q", tt, p.cur().Lexeme))
	}
	return p.advance(), nil
}

func (p *parser) expectLexeme(lexeme string) (token.Token, *diagnostics.Error) {
	if !p.curIsLexeme(lexeme) {
		return token.Token{}, diagnostics.Parse(p.cur(), fmt.Sprintf("expected %q, got %q", lexeme, p.cur().Lexeme))
	}
	return p.advance(), nil
}

// peekInfixLexeme returns the lexeme of the current token if it is usable
// as an infix operator (found in token.Precedences), and whether one was
// found at all.
func (p *parser) peekInfixLexeme() (string, bool) {
	t := p.cur()
	if t.Type != token.OP_INFIX {
		return "", false
	}
	if _, ok := token.Precedences[t.Lexeme]; !ok {
		return "", false
	}
	return t.Lexeme, true
}

// --- expression grammar ---

// parseExpr implements parse_expr(min_prec, stop_op) from §4.2: parse a
// primary (with its suffix chain), then fold in trailing infix operators
// at or above min_prec, stopping early at stopOp (used only when parsing
// an enum initializer, to halt before the comma that separates
// enumerators — everywhere else stopOp is "").
func (p *parser) parseExpr(minPrec int, stopOp string) (ast.Expression, *diagnostics.Error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	lhs, err = p.applySuffixes(lhs)
	if err != nil {
		return nil, err
	}
	return p.foldFrom(lhs, minPrec, stopOp)
}

// foldFrom continues parse_expr's loop body starting from an already-built
// lhs; the spec pseudocode's recursive "rhs = parse_expr(rhs, prec(op2),
// stop_op)" step is this function called on the running rhs.
func (p *parser) foldFrom(lhs ast.Expression, minPrec int, stopOp string) (ast.Expression, *diagnostics.Error) {
	for {
		lexeme, ok := p.peekInfixLexeme()
		if !ok || lexeme == stopOp {
			break
		}
		prop := token.Precedences[lexeme]
		if prop.Precedence < minPrec {
			break
		}
		opTok := p.advance()

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		rhs, err = p.applySuffixes(rhs)
		if err != nil {
			return nil, err
		}

		for {
			lexeme2, ok2 := p.peekInfixLexeme()
			if !ok2 || lexeme2 == stopOp {
				break
			}
			prop2 := token.Precedences[lexeme2]
			var shouldFold bool
			if prop.Assoc == token.AssocLeft {
				shouldFold = prop2.Precedence > prop.Precedence
			} else {
				shouldFold = prop2.Precedence >= prop.Precedence
			}
			if !shouldFold {
				break
			}
			rhs, err = p.foldFrom(rhs, prop2.Precedence, stopOp)
			if err != nil {
				return nil, err
			}
		}

		lhs = &ast.Binary{Op: lexeme, LHS: lhs, RHS: rhs, Tok: opTok}
	}
	return lhs, nil
}

// parsePrimary handles leaves, parenthesized sub-expressions, and prefix
// operators. `+`, `-`, `*` arrive from the lexer tagged OP_INFIX (they are
// ordinary infix lexemes everywhere else); at primary position they are
// re-tagged here as prefix unary plus/minus/dereference, per §4.2.
func (p *parser) parsePrimary() (ast.Expression, *diagnostics.Error) {
	t := p.cur()
	switch t.Type {
	case token.INT_LIT:
		p.advance()
		return &ast.IntLit{Value: t.Literal.(int64), Tok: t}, nil
	case token.FLOAT_LIT:
		p.advance()
		return &ast.FloatLit{Value: t.Literal.(float64), Tok: t}, nil
	case token.STR_LIT:
		p.advance()
		return &ast.StrLit{Value: t.Literal.(string), Tok: t}, nil
	case token.IDENT:
		p.advance()
		return &ast.Ident{Name: t.Lexeme, Tok: t}, nil
	case token.OP_PREFIX: // `&`, prefix `++`
		p.advance()
		child, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		child, err = p.applySuffixes(child)
		if err != nil {
			return nil, err
		}
		return &ast.Prefix{Op: t.Lexeme, Child: child, Tok: t}, nil
	case token.OP_INFIX:
		switch t.Lexeme {
		case "+", "-", "*":
			p.advance()
			child, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			child, err = p.applySuffixes(child)
			if err != nil {
				return nil, err
			}
			return &ast.Prefix{Op: t.Lexeme, Child: child, Tok: t}, nil
		}
	case token.OP_SUFFIX:
		if t.Lexeme == "(" {
			p.advance()
			inner, err := p.parseExpr(1, "")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, diagnostics.Parse(t, fmt.Sprintf("unexpected token %q", t.Lexeme))
}

// applySuffixes handles the `[`, `(`, `.`, postfix-`++` chain, and the
// ternary `cond ? then : else` that attaches to a fully-suffixed primary.
func (p *parser) applySuffixes(expr ast.Expression) (ast.Expression, *diagnostics.Error) {
	for {
		t := p.cur()
		if t.Type != token.OP_SUFFIX {
			break
		}
		switch t.Lexeme {
		case "++":
			p.advance()
			expr = &ast.Suffix{Op: "++", Child: expr, Tok: t}
		case "[":
			p.advance()
			idx, err := p.parseExpr(1, "")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.ArrayIndex{Array: expr, Index: idx, Tok: t}
		case "(":
			ident, ok := expr.(*ast.Ident)
			if !ok {
				return nil, diagnostics.Parse(t, "call target must be a plain identifier")
			}
			p.advance()
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			expr = &ast.Call{Callee: ident.Name, Args: args, Tok: t}
		case ".":
			p.advance()
			field, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			expr = &ast.FieldAccess{Child: expr, Field: field.Lexeme, Tok: t}
		default:
			return expr, nil
		}
	}
	if p.curIs(token.QUESTION) {
		qTok := p.advance()
		thenExpr, err := p.parseExpr(1, "")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		elseExpr, err := p.parseExpr(1, "")
		if err != nil {
			return nil, err
		}
		expr = &ast.Ternary{Cond: expr, Then: thenExpr, Else: elseExpr, Tok: qTok}
	}
	return expr, nil
}

// parseCallArgs builds the right-leaning comma chain of §3's AST note:
// Empty when there are no arguments, otherwise each argument parsed with
// comma excluded (minPrec above the comma's precedence) and recursively
// chained as Binary{",", arg, rest}.
func (p *parser) parseCallArgs() (ast.Expression, *diagnostics.Error) {
	if p.curIs(token.RPAREN) {
		return &ast.Empty{}, nil
	}
	first, err := p.parseExpr(2, "")
	if err != nil {
		return nil, err
	}
	if p.curIsLexeme(",") {
		commaTok := p.advance()
		rest, err := p.parseCallArgs()
		if err != nil {
			return nil, err
		}
		return &ast.Binary{Op: ",", LHS: first, RHS: rest, Tok: commaTok}, nil
	}
	return first, nil
}

// --- type grammar (§4.2) ---

// parseTypeBase parses the base of a type string: a primitive keyword, a
// `struct IDENT` or `enum IDENT` tag reference, or a bare user-type
// identifier.
func (p *parser) parseTypeBase() (string, *diagnostics.Error) {
	t := p.cur()
	switch t.Type {
	case token.TYPE_INT:
		p.advance()
		return "int", nil
	case token.TYPE_FLOAT:
		p.advance()
		return "float", nil
	case token.STRUCT:
		p.advance()
		tag, err := p.expect(token.IDENT)
		if err != nil {
			return "", err
		}
		return tag.Lexeme, nil
	case token.ENUM:
		p.advance()
		if p.curIs(token.IDENT) {
			tag := p.advance()
			return tag.Lexeme, nil
		}
		return "", diagnostics.Parse(t, "anonymous enum used as a type reference needs a tag")
	case token.IDENT:
		p.advance()
		return t.Lexeme, nil
	}
	return "", diagnostics.Parse(t, fmt.Sprintf("expected a type, got %q", t.Lexeme))
}

// parseDeclarator parses a full declarator: type base, pointer stars,
// identifier, trailing array dimensions — applying the function-parameter
// array-to-pointer decay described in §4.2 when isParam is true.
func (p *parser) parseDeclarator(isParam bool) (typeString, ident string, tok token.Token, err *diagnostics.Error) {
	base, err := p.parseTypeBase()
	if err != nil {
		return "", "", token.Token{}, err
	}
	stars := 0
	for p.curIsLexeme("*") {
		p.advance()
		stars++
	}
	identTok, err := p.expect(token.IDENT)
	if err != nil {
		return "", "", token.Token{}, err
	}

	var dims []int
	for p.curIs(token.OP_SUFFIX) && p.cur().Lexeme == "[" {
		p.advance()
		size := -1 // unsized: `extern int a[];`
		if p.curIs(token.INT_LIT) {
			n := p.advance()
			size = int(n.Literal.(int64))
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return "", "", token.Token{}, err
		}
		dims = append(dims, size)
	}

	typeString = base
	for i := 0; i < stars; i++ {
		typeString += "*"
	}
	if isParam && len(dims) > 0 {
		dims = dims[1:] // strip the outermost dimension
		typeString += "*"
	}
	for _, d := range dims {
		if d < 0 {
			typeString += "[]"
		} else {
			typeString += fmt.Sprintf("[%d]", d)
		}
	}
	return typeString, identTok.Lexeme, identTok, nil
}

// --- top level ---

func (p *parser) parseTopLevelDeclaration() (ast.Declaration, *diagnostics.Error) {
	if p.curIs(token.STRUCT) {
		return p.parseStructStatement()
	}
	if p.curIs(token.ENUM) {
		return p.parseEnumStatement()
	}

	isExtern := false
	if p.curIs(token.EXTERN) {
		p.advance()
		isExtern = true
	}

	typeString, ident, tok, err := p.parseDeclaratorBase()
	if err != nil {
		return nil, err
	}

	if p.curIs(token.OP_SUFFIX) && p.cur().Lexeme == "(" {
		return p.parseFunctionDecl(typeString, ident, tok, isExtern)
	}

	// A global keeps its array dimensions in source order (no decay).
	for p.curIs(token.OP_SUFFIX) && p.cur().Lexeme == "[" {
		p.advance()
		if p.curIs(token.INT_LIT) {
			typeString += fmt.Sprintf("[%d]", p.advance().Literal.(int64))
		} else {
			typeString += "[]"
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
	}

	decl := &ast.VariableDecl{ValueType: typeString, Ident: ident, Tok: tok}
	if p.curIsLexeme("=") {
		p.advance()
		init, err := p.parseExpr(1, "")
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return decl, nil
}

// parseDeclaratorBase parses type-base + stars + identifier only (no
// trailing array dims yet): top-level and function-param dispatch need the
// identifier before deciding whether array suffixes, if any, decay.
func (p *parser) parseDeclaratorBase() (typeString, ident string, tok token.Token, err *diagnostics.Error) {
	base, err := p.parseTypeBase()
	if err != nil {
		return "", "", token.Token{}, err
	}
	stars := 0
	for p.curIsLexeme("*") {
		p.advance()
		stars++
	}
	identTok, err := p.expect(token.IDENT)
	if err != nil {
		return "", "", token.Token{}, err
	}
	typeString = base
	for i := 0; i < stars; i++ {
		typeString += "*"
	}
	return typeString, identTok.Lexeme, identTok, nil
}

func (p *parser) parseFunctionDecl(returnType, ident string, tok token.Token, isExtern bool) (*ast.FunctionDecl, *diagnostics.Error) {
	if _, err := p.expectLexeme("("); err != nil {
		return nil, err
	}
	var params []*ast.VariableDecl
	isVarArgs := false
	if !p.curIs(token.RPAREN) {
		for {
			if p.curIs(token.ELLIPSIS) {
				p.advance()
				isVarArgs = true
				break
			}
			pType, pIdent, pTok, err := p.finishParamDims()
			if err != nil {
				return nil, err
			}
			params = append(params, &ast.VariableDecl{ValueType: pType, Ident: pIdent, Tok: pTok})
			if p.curIsLexeme(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	fn := &ast.FunctionDecl{Ident: ident, ReturnType: returnType, Params: params, IsExtern: isExtern, IsVarArgs: isVarArgs, Tok: tok}

	if p.curIs(token.SEMICOLON) {
		p.advance()
		return fn, nil // forward declaration: Body stays nil
	}
	body, err := p.parseCompoundBody()
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

// finishParamDims parses one parameter's base+stars+ident (via
// parseDeclaratorBase) and its trailing array suffixes, applying the
// decay-to-pointer rule.
func (p *parser) finishParamDims() (string, string, token.Token, *diagnostics.Error) {
	typeString, ident, tok, err := p.parseDeclaratorBase()
	if err != nil {
		return "", "", token.Token{}, err
	}
	var dims []int
	for p.curIs(token.OP_SUFFIX) && p.cur().Lexeme == "[" {
		p.advance()
		size := -1
		if p.curIs(token.INT_LIT) {
			n := p.advance()
			size = int(n.Literal.(int64))
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return "", "", token.Token{}, err
		}
		dims = append(dims, size)
	}
	if len(dims) > 0 {
		dims = dims[1:]
		typeString += "*"
	}
	for _, d := range dims {
		if d < 0 {
			typeString += "[]"
		} else {
			typeString += fmt.Sprintf("[%d]", d)
		}
	}
	return typeString, ident, tok, nil
}

// --- statements ---

func (p *parser) parseStatement() (ast.Statement, *diagnostics.Error) {
	switch p.cur().Type {
	case token.TYPE_INT, token.TYPE_FLOAT:
		return p.parseLocalDeclaration()
	case token.STRUCT:
		return p.parseStructStatement()
	case token.ENUM:
		return p.parseEnumStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.LBRACE:
		body, err := p.parseCompoundBody()
		if err != nil {
			return nil, err
		}
		return &ast.CompoundStatement{Statements: body}, nil
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.SWITCH:
		return p.parseSwitchStatement()
	case token.BREAK:
		tok := p.advance()
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.BreakStatement{Tok: tok}, nil
	case token.CONTINUE:
		tok := p.advance()
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.ContinueStatement{Tok: tok}, nil
	case token.SEMICOLON:
		p.advance()
		return &ast.EmptyStatement{}, nil
	default:
		expr, err := p.parseExpr(1, "")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Expr: expr}, nil
	}
}

func (p *parser) parseCompoundBody() ([]ast.Statement, *diagnostics.Error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for !p.curIs(token.RBRACE) {
		if p.atEnd() {
			return nil, diagnostics.Parse(p.cur(), "unexpected end of input inside block")
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance() // consume '}'
	return stmts, nil
}

func (p *parser) parseLocalDeclaration() (ast.Statement, *diagnostics.Error) {
	typeString, ident, tok, err := p.parseDeclarator(false)
	if err != nil {
		return nil, err
	}
	decl := &ast.VariableDecl{ValueType: typeString, Ident: ident, Tok: tok}
	if p.curIsLexeme("=") {
		p.advance()
		init, err := p.parseExpr(1, "")
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.DeclareStatement{Decl: decl}, nil
}

func (p *parser) parseReturnStatement() (ast.Statement, *diagnostics.Error) {
	tok := p.advance()
	if p.curIs(token.SEMICOLON) {
		p.advance()
		return &ast.ReturnStatement{Tok: tok}, nil
	}
	value, err := p.parseExpr(1, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Value: value, Tok: tok}, nil
}

func (p *parser) parseIfStatement() (ast.Statement, *diagnostics.Error) {
	p.advance() // 'if'
	if _, err := p.expectLexeme("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(1, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStatement{Cond: cond, Then: then}
	if p.curIs(token.ELSE) {
		p.advance()
		elseStmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseStmt
	}
	return stmt, nil
}

func (p *parser) parseWhileStatement() (ast.Statement, *diagnostics.Error) {
	p.advance() // 'while'
	if _, err := p.expectLexeme("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(1, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Cond: cond, Body: body}, nil
}

func (p *parser) parseForStatement() (ast.Statement, *diagnostics.Error) {
	p.advance() // 'for'
	if _, err := p.expectLexeme("("); err != nil {
		return nil, err
	}
	stmt := &ast.ForStatement{}
	if !p.curIs(token.SEMICOLON) {
		init, err := p.parseForInit()
		if err != nil {
			return nil, err
		}
		stmt.Init = init
	} else {
		p.advance()
	}
	if !p.curIs(token.SEMICOLON) {
		cond, err := p.parseExpr(1, "")
		if err != nil {
			return nil, err
		}
		stmt.Cond = cond
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	if !p.curIs(token.RPAREN) {
		step, err := p.parseExpr(1, "")
		if err != nil {
			return nil, err
		}
		stmt.Step = step
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmt.Body = body
	return stmt, nil
}

// parseForInit parses the for-header's first statement, which consumes
// its own trailing ';' like any other declaration/expression statement.
func (p *parser) parseForInit() (ast.Statement, *diagnostics.Error) {
	if p.curIs(token.TYPE_INT) || p.curIs(token.TYPE_FLOAT) {
		return p.parseLocalDeclaration()
	}
	expr, err := p.parseExpr(1, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Expr: expr}, nil
}

func (p *parser) parseSwitchStatement() (ast.Statement, *diagnostics.Error) {
	p.advance() // 'switch'
	if _, err := p.expectLexeme("("); err != nil {
		return nil, err
	}
	tag, err := p.parseExpr(1, "")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	stmt := &ast.SwitchStatement{Tag: tag}
	for !p.curIs(token.RBRACE) {
		clause, err := p.parseCaseClause()
		if err != nil {
			return nil, err
		}
		stmt.Cases = append(stmt.Cases, clause)
	}
	p.advance() // consume '}'
	return stmt, nil
}

func (p *parser) parseCaseClause() (*ast.CaseClause, *diagnostics.Error) {
	clause := &ast.CaseClause{}
	if p.curIs(token.CASE) {
		p.advance()
		val, err := p.parseExpr(1, "")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		clause.Value = val
	} else if p.curIs(token.DEFAULT) {
		p.advance()
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		clause.IsDefault = true
	} else {
		return nil, diagnostics.Parse(p.cur(), fmt.Sprintf("expected case or default, got %q", p.cur().Lexeme))
	}
	for !p.curIs(token.CASE) && !p.curIs(token.DEFAULT) && !p.curIs(token.RBRACE) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		clause.Statements = append(clause.Statements, s)
	}
	return clause, nil
}

// --- struct / enum statements (shared by top level and statement position) ---

func (p *parser) parseStructStatement() (*ast.StructStatement, *diagnostics.Error) {
	p.advance() // 'struct'
	tagTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	tag := tagTok.Lexeme
	stmt := &ast.StructStatement{Tag: tag}
	if p.curIs(token.LBRACE) {
		p.advance()
		for !p.curIs(token.RBRACE) {
			fType, fIdent, fTok, err := p.parseDeclarator(false)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.SEMICOLON); err != nil {
				return nil, err
			}
			stmt.Fields = append(stmt.Fields, &ast.VariableDecl{ValueType: fType, Ident: fIdent, Tok: fTok})
		}
		p.advance() // consume '}'
	}
	// Optionally followed by a variable of this struct type:
	// `struct P { ... } p;` or bare `struct P p;` referencing an existing tag.
	if p.curIs(token.IDENT) {
		identTok := p.advance()
		stmt.Decl = &ast.VariableDecl{ValueType: tag, Ident: identTok.Lexeme, Tok: identTok}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseEnumStatement() (*ast.EnumStatement, *diagnostics.Error) {
	p.advance() // 'enum'
	tag := ""
	if p.curIs(token.IDENT) {
		tag = p.advance().Lexeme
	}
	stmt := &ast.EnumStatement{Tag: tag}
	if p.curIs(token.LBRACE) {
		p.advance()
		for {
			nameTok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			enumerator := ast.Enumerator{Ident: nameTok.Lexeme}
			if p.curIsLexeme("=") {
				p.advance()
				val, err := p.parseExpr(1, ",")
				if err != nil {
					return nil, err
				}
				enumerator.Value = val
			}
			stmt.Enumerators = append(stmt.Enumerators, enumerator)
			if p.curIsLexeme(",") {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(token.RBRACE); err != nil {
			return nil, err
		}
	}
	if p.curIs(token.IDENT) {
		identTok := p.advance()
		stmt.Decl = &ast.VariableDecl{ValueType: tag, Ident: identTok.Lexeme, Tok: identTok}
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}
