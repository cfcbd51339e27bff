// Package lowerer implements §4.4: walking the AST to produce SSA IR.
// The block-diagram shapes for if/while/for/switch, the "every expression
// is a pointer" emit_expression/load/store convention, and the
// compare-with-zero branching protocol all come directly from §4.4's
// prose; the concrete IR-builder calls (Alloca/Store/Load/Add/ICmp/
// CondBr/GEP/PHI/GlobalStringPtr) are grounded in
// other_examples/730544c1_hhramberg-go-vslc's direct use of
// tinygo.org/x/go-llvm, the only corpus file that builds real LLVM IR.
// Scope management reuses internal/environment (itself adapted from the
// teacher's internal/symbols.SymbolTable).
package lowerer

import (
	"fmt"

	"github.com/google/uuid"
	"tinygo.org/x/go-llvm"

	"github.com/funvibe/clc/internal/ast"
	"github.com/funvibe/clc/internal/builtin"
	"github.com/funvibe/clc/internal/config"
	"github.com/funvibe/clc/internal/diagnostics"
	"github.com/funvibe/clc/internal/environment"
	"github.com/funvibe/clc/internal/pipeline"
	"github.com/funvibe/clc/internal/token"
)

// Control tells a statement's caller whether control falls through
// normally (Continue) or the block already terminated — return, break, or
// continue (Break). Compound statements and if/else short-circuit on it.
type Control int

const (
	CtrlContinue Control = iota
	CtrlBreak
)

// funcInfo records a declared function's IR handle and signature so call
// sites can look it up by plain name.
type funcInfo struct {
	Fn         llvm.Value
	RetType    llvm.Type
	ParamTypes []llvm.Type
	IsVarArgs  bool
}

type lowerer struct {
	ctx     llvm.Context
	mod     llvm.Module
	builder llvm.Builder
	env     *environment.Environment

	functions map[string]*funcInfo
	structSeq int // not read; defineStruct names an anonymous struct tag with a uuid

	currentRetType llvm.Type
	currentFn       llvm.Value
	breakTargets    []llvm.BasicBlock
	continueTargets []llvm.BasicBlock
}

// Emit runs the full lowering pass over prog, returning the compiled
// user module's textual IR and the builtin helper module's textual IR.
// Lowering errors are raised internally via panic(*diagnostics.Error) and
// recovered here — the alternative of threading (value, error) pairs
// through every expression/statement helper would bury the §4.4 algorithm
// under plumbing; environment.go already establishes the same
// panic-for-fatal-internal-condition idiom for redefinition.
func Emit(prog *ast.Program) (compiledIR, builtinIR string, errOut *diagnostics.Error) {
	defer func() {
		if r := recover(); r != nil {
			if de, ok := r.(*diagnostics.Error); ok {
				errOut = de
				return
			}
			panic(r)
		}
	}()

	ctx := llvm.NewContext()
	l := &lowerer{
		ctx:       ctx,
		mod:       ctx.NewModule("compiled"),
		builder:   ctx.NewBuilder(),
		env:       environment.New(ctx),
		functions: map[string]*funcInfo{},
	}
	l.declareBuiltins()
	l.lowerProgram(prog)

	return l.mod.String(), builtin.Emit(ctx), nil
}

// Processor is the lowerer's pipeline.Processor stage.
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	compiled, builtinIR, err := Emit(ctx.Root)
	if err != nil {
		return ctx.Fail(err)
	}
	ctx.CompiledIR = compiled
	ctx.BuiltinIR = builtinIR
	return ctx
}

func (l *lowerer) fail(err *diagnostics.Error) {
	panic(err)
}

// declareBuiltins inserts the five helper declarations and the external
// putchar, before any user declaration is lowered, per §4.4.
func (l *lowerer) declareBuiltins() {
	i32 := l.ctx.Int32Type()
	helperType := llvm.FunctionType(i32, []llvm.Type{i32, i32}, false)
	for _, name := range config.BuiltinHelperNames {
		fn := llvm.AddFunction(l.mod, name, helperType)
		l.functions[name] = &funcInfo{Fn: fn, RetType: i32, ParamTypes: []llvm.Type{i32, i32}}
	}
	putcharType := llvm.FunctionType(i32, []llvm.Type{i32}, false)
	putchar := llvm.AddFunction(l.mod, config.ExternIOName, putcharType)
	l.functions[config.ExternIOName] = &funcInfo{Fn: putchar, RetType: i32, ParamTypes: []llvm.Type{i32}}
}

// lowerProgram performs the two-pass walk: first every declaration's
// signature/type/global storage, then every function body — so mutually
// recursive or out-of-order-declared functions resolve regardless of
// source order.
func (l *lowerer) lowerProgram(prog *ast.Program) {
	var bodies []*ast.FunctionDecl

	for _, decl := range prog.Declarations {
		switch d := decl.(type) {
		case *ast.StructStatement:
			l.lowerStructStatementTopLevel(d)
		case *ast.EnumStatement:
			l.lowerEnumStatementTopLevel(d)
		case *ast.FunctionDecl:
			l.declareFunction(d)
			if d.Body != nil {
				bodies = append(bodies, d)
			}
		case *ast.VariableDecl:
			l.lowerGlobalVariable(d)
		default:
			l.fail(diagnostics.Unsupported(token.Token{}, fmt.Sprintf("top-level %T", decl)))
		}
	}

	for _, fn := range bodies {
		l.lowerFunctionBody(fn)
	}
}

// --- type declarations ---

func (l *lowerer) lowerStructStatementTopLevel(d *ast.StructStatement) {
	if d.Fields != nil {
		l.defineStruct(d.Tag, d.Fields)
	}
	if d.Decl != nil {
		l.lowerGlobalVariable(d.Decl)
	}
}

func (l *lowerer) defineStruct(tag string, fields []*ast.VariableDecl) environment.StructTag {
	if tag == "" {
		tag = "anon." + uuid.New().String()
	}
	names := make([]string, len(fields))
	types := make([]llvm.Type, len(fields))
	for i, f := range fields {
		t, err := l.env.ResolveType(f.ValueType)
		if err != nil {
			l.fail(diagnostics.TypeErr(f.Tok, err.Error()))
		}
		names[i] = f.Ident
		types[i] = t
	}
	irTy := l.ctx.StructType(types, false)
	st := environment.StructTag{FieldNames: names, FieldTypes: types, IRType: irTy}
	if err := l.env.InsertTag(fields[0].Tok, tag, st); err != nil {
		l.fail(err)
	}
	l.env.InsertOther(tag, environment.Binding{Kind: environment.TypeBinding, Type: irTy})
	return st
}

// lowerEnumStatementTopLevel binds each enumerator as a module-level
// global int, since there is no enclosing function to allocate a stack
// slot into at this position — an extension of §4.4's "enum definition"
// rule (written for function-local scope) to the top level, documented as
// an Open Question resolution in DESIGN.md.
func (l *lowerer) lowerEnumStatementTopLevel(d *ast.EnumStatement) {
	if d.Enumerators != nil {
		next := int64(0)
		for _, enumerator := range d.Enumerators {
			val := next
			if enumerator.Value != nil {
				val = l.constantInt(enumerator.Value)
			}
			next = val + 1
			g := llvm.AddGlobal(l.mod, l.ctx.Int32Type(), enumerator.Ident)
			g.SetInitializer(llvm.ConstInt(l.ctx.Int32Type(), uint64(val), true))
			l.env.InsertOther(enumerator.Ident, environment.Binding{Kind: environment.GlobalBinding, Slot: g, Type: l.ctx.Int32Type()})
		}
	}
	if d.Decl != nil {
		l.lowerGlobalVariable(d.Decl)
	}
}

// --- globals ---

func (l *lowerer) lowerGlobalVariable(d *ast.VariableDecl) {
	t, err := l.env.ResolveType(d.ValueType)
	if err != nil {
		l.fail(diagnostics.TypeErr(d.Tok, err.Error()))
	}
	g := llvm.AddGlobal(l.mod, t, d.Ident)
	if d.Init != nil {
		g.SetInitializer(l.constantOfType(d.Init, t))
	} else {
		g.SetInitializer(llvm.ConstNull(t))
	}
	if err := l.env.InsertOtherAt(d.Tok, d.Ident, environment.Binding{Kind: environment.GlobalBinding, Slot: g, Type: t}); err != nil {
		l.fail(err)
	}
	if tag, ok := l.env.LookupTag(d.ValueType); ok {
		l.bindStructFieldSlots(d.Ident, g, tag)
	}
}

// constantInt evaluates a compile-time-constant integer literal, as
// required for enum initializers.
func (l *lowerer) constantInt(expr ast.Expression) int64 {
	lit, ok := expr.(*ast.IntLit)
	if !ok {
		l.fail(diagnostics.TypeErr(token.Token{}, "enum initializer must be a constant integer literal"))
	}
	return lit.Value
}

// constantOfType evaluates a compile-time-constant literal for a global
// initializer, per §4.4: "require the initializer to be a compile-time
// constant expression (literal integer or float)".
func (l *lowerer) constantOfType(expr ast.Expression, t llvm.Type) llvm.Value {
	switch e := expr.(type) {
	case *ast.IntLit:
		if l.isFloatType(t) {
			return llvm.ConstFloat(t, float64(e.Value))
		}
		return llvm.ConstInt(t, uint64(e.Value), true)
	case *ast.FloatLit:
		if l.isFloatType(t) {
			return llvm.ConstFloat(t, e.Value)
		}
		return llvm.ConstInt(t, uint64(int64(e.Value)), true)
	}
	l.fail(diagnostics.TypeErr(token.Token{}, "global initializer must be a constant literal"))
	return llvm.Value{}
}

// --- functions ---

func (l *lowerer) declareFunction(d *ast.FunctionDecl) {
	retType, err := l.env.ResolveType(d.ReturnType)
	if err != nil {
		l.fail(diagnostics.TypeErr(d.Tok, err.Error()))
	}
	paramTypes := make([]llvm.Type, len(d.Params))
	for i, p := range d.Params {
		pt, err := l.env.ResolveType(p.ValueType)
		if err != nil {
			l.fail(diagnostics.TypeErr(p.Tok, err.Error()))
		}
		paramTypes[i] = pt
	}
	fnType := llvm.FunctionType(retType, paramTypes, d.IsVarArgs)
	fn := llvm.AddFunction(l.mod, d.Ident, fnType)
	l.functions[d.Ident] = &funcInfo{Fn: fn, RetType: retType, ParamTypes: paramTypes, IsVarArgs: d.IsVarArgs}
}

func (l *lowerer) lowerFunctionBody(d *ast.FunctionDecl) {
	info := l.functions[d.Ident]
	l.currentRetType = info.RetType
	l.currentFn = info.Fn

	l.env.PushScope()
	entry := llvm.AddBasicBlock(info.Fn, "entry")
	l.builder.SetInsertPointAtEnd(entry)

	for i, p := range d.Params {
		slot := l.builder.CreateAlloca(info.ParamTypes[i], p.Ident)
		l.builder.CreateStore(info.Fn.Param(i), slot)
		if err := l.env.InsertOtherAt(p.Tok, p.Ident, environment.Binding{Kind: environment.LocalVariable, Slot: slot, Type: info.ParamTypes[i]}); err != nil {
			l.fail(err)
		}
		if tag, ok := l.env.LookupTag(p.ValueType); ok {
			l.bindStructFieldSlots(p.Ident, slot, tag)
		}
	}

	ctrl := l.lowerStatements(d.Body)
	if ctrl == CtrlContinue {
		l.builder.CreateRet(l.zeroValue(info.RetType))
	}
	l.env.PopScope()
}

func (l *lowerer) zeroValue(t llvm.Type) llvm.Value {
	if l.isFloatType(t) {
		return llvm.ConstFloat(t, 0)
	}
	return llvm.ConstNull(t)
}

// bindStructFieldSlots binds the synthetic "var.field" names §4.4
// describes: each field of a struct-typed variable gets its own
// environment entry pointing at the GEP'd field slot, so FieldAccess
// lowering is a plain name lookup instead of a generic struct-tag walk.
func (l *lowerer) bindStructFieldSlots(varName string, slot llvm.Value, tag environment.StructTag) {
	zero := llvm.ConstInt(l.ctx.Int32Type(), 0, false)
	for i, fieldName := range tag.FieldNames {
		idx := llvm.ConstInt(l.ctx.Int32Type(), uint64(i), false)
		fieldPtr := l.builder.CreateGEP(slot, []llvm.Value{zero, idx}, varName+"."+fieldName)
		l.env.InsertOther(varName+"."+fieldName, environment.Binding{Kind: environment.LocalVariable, Slot: fieldPtr, Type: tag.FieldTypes[i]})
	}
}

// --- type predicates / numeric conversions ---

func (l *lowerer) isFloatType(t llvm.Type) bool {
	return t.TypeKind() == llvm.FloatTypeKind
}

func (l *lowerer) isIntType(t llvm.Type) bool {
	return t.TypeKind() == llvm.IntegerTypeKind
}

// widen converts the integer side of a mixed int/float operand pair to
// float, per §4.4's "widen mixed int/float operands by converting the int
// side to float (signed-to-float)".
func (l *lowerer) widen(lhsVal, rhsVal llvm.Value, lhsTy, rhsTy llvm.Type) (llvm.Value, llvm.Value) {
	if l.isFloatType(lhsTy) && l.isIntType(rhsTy) {
		rhsVal = l.builder.CreateSIToFP(rhsVal, lhsTy, "conv")
	} else if l.isFloatType(rhsTy) && l.isIntType(lhsTy) {
		lhsVal = l.builder.CreateSIToFP(lhsVal, rhsTy, "conv")
	}
	return lhsVal, rhsVal
}

// coerce converts val (of type fromTy) to toTy for assignment/return,
// covering the int<->float conversions §4.4 names.
func (l *lowerer) coerce(val llvm.Value, fromTy, toTy llvm.Type) llvm.Value {
	if fromTy == toTy {
		return val
	}
	if l.isFloatType(toTy) && l.isIntType(fromTy) {
		return l.builder.CreateSIToFP(val, toTy, "conv")
	}
	if l.isIntType(toTy) && l.isFloatType(fromTy) {
		return l.builder.CreateFPToSI(val, toTy, "conv")
	}
	return val
}

// normalizeToInt coerces a value into a truthy i32 ({0,1} not required,
// just nonzero-preserving) so it can be fed to and_int/or_int, which
// operate on plain i32 operands.
func (l *lowerer) normalizeToInt(val llvm.Value, ty llvm.Type) llvm.Value {
	if l.isFloatType(ty) {
		cmp := l.builder.CreateFCmp(llvm.FloatONE, val, llvm.ConstFloat(ty, 0), "truthy")
		return l.builder.CreateZExt(cmp, l.ctx.Int32Type(), "asint")
	}
	return val
}

func (l *lowerer) callBuiltin(name string, a, b llvm.Value) llvm.Value {
	info := l.functions[name]
	return l.builder.CreateCall(info.Fn, []llvm.Value{a, b}, "call")
}

// load dereferences a stack_pointer per §4.4's load(stack_pointer) helper,
// returning both the value and its element type for callers that need to
// branch on float-vs-int.
func (l *lowerer) load(ptr llvm.Value) (llvm.Value, llvm.Type) {
	elemTy := ptr.Type().ElementType()
	return l.builder.CreateLoad(ptr, "load"), elemTy
}

func (l *lowerer) elemType(ptr llvm.Value) llvm.Type {
	return ptr.Type().ElementType()
}

// token0 is used where a diagnostic needs a token but the node at hand
// (an unsupported statement kind) carries none.
var token0 = token.Token{}

// binding builds a LocalVariable Binding, the common case for every
// alloca'd name (locals, params, loop/case-scoped enumerators).
func binding(slot llvm.Value, t llvm.Type) environment.Binding {
	return environment.Binding{Kind: environment.LocalVariable, Slot: slot, Type: t}
}
