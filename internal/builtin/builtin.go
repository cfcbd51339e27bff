// Package builtin implements §4.5: the five integer comparison/logical
// helper bodies (`eq_int`, `sgt_int`, `slt_int`, `and_int`, `or_int`),
// emitted into their own IR module so the downstream linker joins them
// against the external declarations the lowerer inserts into the user
// module (§4.4). Each body follows the same three-block
// entry/then/cont shape the lowerer uses for every comparison-driven
// branch in user code, grounded in the CFG-construction style of
// other_examples/730544c1_hhramberg-go-vslc's direct use of
// tinygo.org/x/go-llvm's Builder/BasicBlock/PHI API.
package builtin

import "tinygo.org/x/go-llvm"

// helperSpec describes one helper's boolean condition in terms of its two
// i32 parameters; cond must produce an i1.
type helperSpec struct {
	name string
	cond func(b llvm.Builder, a, c llvm.Value) llvm.Value
}

// specs is the fixed set of helpers §4.4 requires the lowerer to be able
// to call. or_int intentionally computes (a|b) != 0, not the reference
// implementation's buggy a+b == 0 (see DESIGN.md's Open Question entry) —
// a+b==0 misclassifies inputs like (1,-1) as "both false".
var specs = []helperSpec{
	{"eq_int", func(b llvm.Builder, a, c llvm.Value) llvm.Value {
		return b.CreateICmp(llvm.IntEQ, a, c, "cmp")
	}},
	{"sgt_int", func(b llvm.Builder, a, c llvm.Value) llvm.Value {
		return b.CreateICmp(llvm.IntSGT, a, c, "cmp")
	}},
	{"slt_int", func(b llvm.Builder, a, c llvm.Value) llvm.Value {
		return b.CreateICmp(llvm.IntSLT, a, c, "cmp")
	}},
	{"and_int", func(b llvm.Builder, a, c llvm.Value) llvm.Value {
		mul := b.CreateMul(a, c, "mul")
		zero := llvm.ConstInt(a.Type(), 0, false)
		return b.CreateICmp(llvm.IntNE, mul, zero, "cmp")
	}},
	{"or_int", func(b llvm.Builder, a, c llvm.Value) llvm.Value {
		or := b.CreateOr(a, c, "or")
		zero := llvm.ConstInt(a.Type(), 0, false)
		return b.CreateICmp(llvm.IntNE, or, zero, "cmp")
	}},
}

// Emit builds the "builtin" module and returns its textual IR.
func Emit(ctx llvm.Context) string {
	mod := ctx.NewModule("builtin")
	i32 := ctx.Int32Type()
	fnType := llvm.FunctionType(i32, []llvm.Type{i32, i32}, false)

	for _, spec := range specs {
		fn := llvm.AddFunction(mod, spec.name, fnType)
		a := fn.Param(0)
		c := fn.Param(1)

		entry := llvm.AddBasicBlock(fn, "entry")
		then := llvm.AddBasicBlock(fn, "then")
		cont := llvm.AddBasicBlock(fn, "cont")

		b := ctx.NewBuilder()
		b.SetInsertPointAtEnd(entry)
		cond := spec.cond(b, a, c)
		b.CreateCondBr(cond, then, cont)

		b.SetInsertPointAtEnd(then)
		b.CreateBr(cont)

		b.SetInsertPointAtEnd(cont)
		phi := b.CreatePHI(i32, "result")
		one := llvm.ConstInt(i32, 1, false)
		zero := llvm.ConstInt(i32, 0, false)
		phi.AddIncoming([]llvm.Value{one, zero}, []llvm.BasicBlock{then, entry})
		b.CreateRet(phi)

		b.Dispose()
	}

	return mod.String()
}

// Names lists the helper symbols the lowerer must declare before lowering
// any user function, so calls resolve unconditionally (§4.4).
func Names() []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.name
	}
	return names
}
