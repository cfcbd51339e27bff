package lowerer

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/funvibe/clc/internal/ast"
	"github.com/funvibe/clc/internal/diagnostics"
	"github.com/funvibe/clc/internal/token"
)

// emitExpression is §4.4's emit_expression: every expression, not only
// lvalues, yields a pointer to a stack slot (or the lvalue's own slot),
// so callers never special-case lvalue vs rvalue.
func (l *lowerer) emitExpression(expr ast.Expression) llvm.Value {
	switch e := expr.(type) {
	case *ast.IntLit:
		slot := l.builder.CreateAlloca(l.ctx.Int32Type(), "lit")
		l.builder.CreateStore(llvm.ConstInt(l.ctx.Int32Type(), uint64(e.Value), true), slot)
		return slot
	case *ast.FloatLit:
		slot := l.builder.CreateAlloca(l.ctx.FloatType(), "lit")
		l.builder.CreateStore(llvm.ConstFloat(l.ctx.FloatType(), e.Value), slot)
		return slot
	case *ast.StrLit:
		g := l.builder.CreateGlobalStringPtr(e.Value, "str")
		slot := l.builder.CreateAlloca(g.Type(), "litptr")
		l.builder.CreateStore(g, slot)
		return slot
	case *ast.Ident:
		b, ok := l.env.LookupOther(e.Name)
		if !ok {
			l.fail(diagnostics.UndeclaredIdent(e.Tok, e.Name))
		}
		return b.Slot
	case *ast.Binary:
		return l.emitBinary(e)
	case *ast.Prefix:
		return l.emitPrefix(e)
	case *ast.Suffix:
		return l.emitSuffix(e)
	case *ast.ArrayIndex:
		return l.emitArrayIndex(e)
	case *ast.Call:
		return l.emitCall(e)
	case *ast.FieldAccess:
		return l.emitFieldAccess(e)
	case *ast.Ternary:
		return l.emitTernary(e)
	}
	l.fail(diagnostics.Unsupported(tokenOf(expr), fmt.Sprintf("%T", expr)))
	return llvm.Value{}
}

// emitLValue is emit_expression restricted to producing an address without
// loading through it — for assignment/address-of/prefix-deref targets it
// is identical to emitExpression since that already returns a pointer.
func (l *lowerer) emitLValue(expr ast.Expression) llvm.Value {
	return l.emitExpression(expr)
}

func (l *lowerer) emitBinary(e *ast.Binary) llvm.Value {
	switch e.Op {
	case "=":
		lhsPtr := l.emitLValue(e.LHS)
		lhsTy := l.elemType(lhsPtr)
		rhsPtr := l.emitExpression(e.RHS)
		rhsVal, rhsTy := l.load(rhsPtr)
		l.builder.CreateStore(l.coerce(rhsVal, rhsTy, lhsTy), lhsPtr)
		return lhsPtr
	case "+=":
		lhsPtr := l.emitLValue(e.LHS)
		lhsVal, lhsTy := l.load(lhsPtr)
		rhsPtr := l.emitExpression(e.RHS)
		rhsVal, rhsTy := l.load(rhsPtr)
		wl, wr := l.widen(lhsVal, rhsVal, lhsTy, rhsTy)
		var sum llvm.Value
		if l.isFloatType(lhsTy) || l.isFloatType(rhsTy) {
			sum = l.builder.CreateFAdd(wl, wr, "add")
		} else {
			sum = l.builder.CreateAdd(wl, wr, "add")
		}
		resultTy := l.ctx.Int32Type()
		if l.isFloatType(lhsTy) || l.isFloatType(rhsTy) {
			resultTy = l.ctx.FloatType()
		}
		l.builder.CreateStore(l.coerce(sum, resultTy, lhsTy), lhsPtr)
		return lhsPtr
	case ",":
		l.emitExpression(e.LHS)
		return l.emitExpression(e.RHS)
	case "&&", "||":
		lhsPtr := l.emitExpression(e.LHS)
		lhsVal, lhsTy := l.load(lhsPtr)
		rhsPtr := l.emitExpression(e.RHS)
		rhsVal, rhsTy := l.load(rhsPtr)
		li := l.normalizeToInt(lhsVal, lhsTy)
		ri := l.normalizeToInt(rhsVal, rhsTy)
		fnName := "and_int"
		if e.Op == "||" {
			fnName = "or_int"
		}
		result := l.callBuiltin(fnName, li, ri)
		slot := l.builder.CreateAlloca(l.ctx.Int32Type(), "tmp")
		l.builder.CreateStore(result, slot)
		return slot
	case "==", ">", "<":
		lhsPtr := l.emitExpression(e.LHS)
		lhsVal, lhsTy := l.load(lhsPtr)
		rhsPtr := l.emitExpression(e.RHS)
		rhsVal, rhsTy := l.load(rhsPtr)
		wl, wr := l.widen(lhsVal, rhsVal, lhsTy, rhsTy)
		var result llvm.Value
		if l.isFloatType(lhsTy) || l.isFloatType(rhsTy) {
			var pred llvm.FloatPredicate
			switch e.Op {
			case "==":
				pred = llvm.FloatOEQ
			case ">":
				pred = llvm.FloatOGT
			case "<":
				pred = llvm.FloatOLT
			}
			cmp := l.builder.CreateFCmp(pred, wl, wr, "cmp")
			result = l.builder.CreateZExt(cmp, l.ctx.Int32Type(), "zext")
		} else {
			var fnName string
			switch e.Op {
			case "==":
				fnName = "eq_int"
			case ">":
				fnName = "sgt_int"
			case "<":
				fnName = "slt_int"
			}
			result = l.callBuiltin(fnName, wl, wr)
		}
		slot := l.builder.CreateAlloca(l.ctx.Int32Type(), "tmp")
		l.builder.CreateStore(result, slot)
		return slot
	case "+", "-", "*":
		lhsPtr := l.emitExpression(e.LHS)
		lhsElemTy := l.elemType(lhsPtr)
		if e.Op == "+" && lhsElemTy.TypeKind() == llvm.ArrayTypeKind {
			rhsPtr := l.emitExpression(e.RHS)
			idxVal, _ := l.load(rhsPtr)
			zero := llvm.ConstInt(l.ctx.Int32Type(), 0, false)
			return l.builder.CreateGEP(lhsPtr, []llvm.Value{zero, idxVal}, "arridx")
		}
		lhsVal, lhsTy := l.load(lhsPtr)
		rhsPtr := l.emitExpression(e.RHS)
		rhsVal, rhsTy := l.load(rhsPtr)
		wl, wr := l.widen(lhsVal, rhsVal, lhsTy, rhsTy)
		isFloat := l.isFloatType(lhsTy) || l.isFloatType(rhsTy)
		var result llvm.Value
		switch e.Op {
		case "+":
			if isFloat {
				result = l.builder.CreateFAdd(wl, wr, "add")
			} else {
				result = l.builder.CreateAdd(wl, wr, "add")
			}
		case "-":
			if isFloat {
				result = l.builder.CreateFSub(wl, wr, "sub")
			} else {
				result = l.builder.CreateSub(wl, wr, "sub")
			}
		case "*":
			if isFloat {
				result = l.builder.CreateFMul(wl, wr, "mul")
			} else {
				result = l.builder.CreateMul(wl, wr, "mul")
			}
		}
		resultTy := l.ctx.Int32Type()
		if isFloat {
			resultTy = l.ctx.FloatType()
		}
		slot := l.builder.CreateAlloca(resultTy, "tmp")
		l.builder.CreateStore(result, slot)
		return slot
	}
	l.fail(diagnostics.Unsupported(e.Tok, "binary operator "+e.Op))
	return llvm.Value{}
}

// emitPrefix handles `&` (address-of), `*` (deref), unary `+`/`-`, and
// prefix `++`.
func (l *lowerer) emitPrefix(e *ast.Prefix) llvm.Value {
	switch e.Op {
	case "&":
		return l.emitLValue(e.Child)
	case "*":
		ptrPtr := l.emitExpression(e.Child)
		ptrVal, _ := l.load(ptrPtr)
		return ptrVal
	case "+":
		return l.emitExpression(e.Child)
	case "-":
		childPtr := l.emitExpression(e.Child)
		val, ty := l.load(childPtr)
		var neg llvm.Value
		if l.isFloatType(ty) {
			neg = l.builder.CreateFSub(llvm.ConstFloat(ty, 0), val, "neg")
		} else {
			neg = l.builder.CreateSub(llvm.ConstInt(ty, 0, true), val, "neg")
		}
		slot := l.builder.CreateAlloca(ty, "tmp")
		l.builder.CreateStore(neg, slot)
		return slot
	case "++":
		slot := l.emitLValue(e.Child)
		val, ty := l.load(slot)
		var next llvm.Value
		if l.isFloatType(ty) {
			next = l.builder.CreateFAdd(val, llvm.ConstFloat(ty, 1), "inc")
		} else {
			next = l.builder.CreateAdd(val, llvm.ConstInt(ty, 1, false), "inc")
		}
		l.builder.CreateStore(next, slot)
		return slot
	}
	l.fail(diagnostics.Unsupported(e.Tok, "prefix operator "+e.Op))
	return llvm.Value{}
}

// emitSuffix handles postfix `++`, returning a fresh slot holding the
// pre-increment value (§4.4: "return slot holding the pre-increment
// value").
func (l *lowerer) emitSuffix(e *ast.Suffix) llvm.Value {
	slot := l.emitLValue(e.Child)
	val, ty := l.load(slot)
	preSlot := l.builder.CreateAlloca(ty, "pre")
	l.builder.CreateStore(val, preSlot)
	var next llvm.Value
	if l.isFloatType(ty) {
		next = l.builder.CreateFAdd(val, llvm.ConstFloat(ty, 1), "inc")
	} else {
		next = l.builder.CreateAdd(val, llvm.ConstInt(ty, 1, false), "inc")
	}
	l.builder.CreateStore(next, slot)
	return preSlot
}

// emitArrayIndex lowers `arr[idx]` via element-address GEP: `[0, idx]` for
// a pointer-to-array value, `[idx]` for a plain pointer after one load.
func (l *lowerer) emitArrayIndex(e *ast.ArrayIndex) llvm.Value {
	arrPtr := l.emitExpression(e.Array)
	idxPtr := l.emitExpression(e.Index)
	idxVal, _ := l.load(idxPtr)
	elemTy := l.elemType(arrPtr)
	if elemTy.TypeKind() == llvm.ArrayTypeKind {
		zero := llvm.ConstInt(l.ctx.Int32Type(), 0, false)
		return l.builder.CreateGEP(arrPtr, []llvm.Value{zero, idxVal}, "idx")
	}
	ptrVal, _ := l.load(arrPtr)
	return l.builder.CreateGEP(ptrVal, []llvm.Value{idxVal}, "idx")
}

// emitCall flattens the right-leaning comma chain of Args into an ordered
// value list, decaying array arguments to element pointers via GEP
// `[0, 0]` before the call.
func (l *lowerer) emitCall(e *ast.Call) llvm.Value {
	info, ok := l.functions[e.Callee]
	if !ok {
		l.fail(diagnostics.UndeclaredFunc(e.Tok, e.Callee))
	}
	var argExprs []ast.Expression
	flattenArgs(e.Args, &argExprs)

	args := make([]llvm.Value, 0, len(argExprs))
	for i, argExpr := range argExprs {
		argPtr := l.emitExpression(argExpr)
		elemTy := l.elemType(argPtr)
		if elemTy.TypeKind() == llvm.ArrayTypeKind {
			zero := llvm.ConstInt(l.ctx.Int32Type(), 0, false)
			args = append(args, l.builder.CreateGEP(argPtr, []llvm.Value{zero, zero}, "decay"))
			continue
		}
		val, valTy := l.load(argPtr)
		if i < len(info.ParamTypes) {
			val = l.coerce(val, valTy, info.ParamTypes[i])
		}
		args = append(args, val)
	}

	result := l.builder.CreateCall(info.Fn, args, "call")
	slot := l.builder.CreateAlloca(info.RetType, "tmp")
	l.builder.CreateStore(result, slot)
	return slot
}

// flattenArgs walks the right-leaning `,` chain (or Empty, for a no-arg
// call) into source order.
func flattenArgs(expr ast.Expression, out *[]ast.Expression) {
	switch e := expr.(type) {
	case *ast.Empty:
		return
	case *ast.Binary:
		if e.Op == "," {
			*out = append(*out, e.LHS)
			flattenArgs(e.RHS, out)
			return
		}
		*out = append(*out, expr)
	default:
		*out = append(*out, expr)
	}
}

// emitFieldAccess only supports a plain-identifier child, consulting the
// synthetic "var.field" table §4.4 describes rather than a generic
// struct-tag GEP — the spec names this table as THE mechanism, with no
// fallback for chained/nested accesses, so `(*p).field` or `a[i].field`
// are unsupported constructs here rather than invented generalizations.
func (l *lowerer) emitFieldAccess(e *ast.FieldAccess) llvm.Value {
	ident, ok := e.Child.(*ast.Ident)
	if !ok {
		l.fail(diagnostics.Unsupported(e.Tok, "field access on a non-identifier expression"))
	}
	b, ok := l.env.LookupOther(ident.Name + "." + e.Field)
	if !ok {
		l.fail(diagnostics.UndeclaredIdent(e.Tok, ident.Name+"."+e.Field))
	}
	return b.Slot
}

// emitTernary implements §4.4's inverted compare-with-zero branch: the
// condition is tested for equality to zero, branching to `else` on true
// and `then` on false, then a φ merges the two arms' result slots.
func (l *lowerer) emitTernary(e *ast.Ternary) llvm.Value {
	fn := l.currentFn
	thenBB := llvm.AddBasicBlock(fn, "ternary.then")
	elseBB := llvm.AddBasicBlock(fn, "ternary.else")
	contBB := llvm.AddBasicBlock(fn, "ternary.cont")

	l.emitCondBranch(e.Cond, thenBB, elseBB)

	l.builder.SetInsertPointAtEnd(thenBB)
	thenPtr := l.emitExpression(e.Then)
	thenVal, resultTy := l.load(thenPtr)
	thenEndBB := l.builder.GetInsertBlock()
	l.builder.CreateBr(contBB)

	l.builder.SetInsertPointAtEnd(elseBB)
	elsePtr := l.emitExpression(e.Else)
	elseVal, _ := l.load(elsePtr)
	elseVal = l.coerce(elseVal, l.elemType(elsePtr), resultTy)
	elseEndBB := l.builder.GetInsertBlock()
	l.builder.CreateBr(contBB)

	l.builder.SetInsertPointAtEnd(contBB)
	phi := l.builder.CreatePHI(resultTy, "ternary")
	phi.AddIncoming([]llvm.Value{thenVal, elseVal}, []llvm.BasicBlock{thenEndBB, elseEndBB})
	slot := l.builder.CreateAlloca(resultTy, "tmp")
	l.builder.CreateStore(phi, slot)
	return slot
}

// emitCondBranch implements the shared compare-with-zero protocol: the
// expression is zero-tested, branching to zeroBB on equality and
// nonzeroBB otherwise.
func (l *lowerer) emitCondBranch(cond ast.Expression, nonzeroBB, zeroBB llvm.BasicBlock) {
	condPtr := l.emitExpression(cond)
	condVal, condTy := l.load(condPtr)
	var isZero llvm.Value
	if l.isFloatType(condTy) {
		isZero = l.builder.CreateFCmp(llvm.FloatOEQ, condVal, llvm.ConstFloat(condTy, 0), "iszero")
	} else {
		isZero = l.builder.CreateICmp(llvm.IntEQ, condVal, llvm.ConstInt(condTy, 0, false), "iszero")
	}
	l.builder.CreateCondBr(isZero, zeroBB, nonzeroBB)
}

// tokenOf extracts the token carried by an expression node for error
// reporting; Empty carries none and yields the zero Token.
func tokenOf(expr ast.Expression) token.Token {
	switch e := expr.(type) {
	case *ast.IntLit:
		return e.Tok
	case *ast.FloatLit:
		return e.Tok
	case *ast.StrLit:
		return e.Tok
	case *ast.Ident:
		return e.Tok
	case *ast.Binary:
		return e.Tok
	case *ast.Prefix:
		return e.Tok
	case *ast.Suffix:
		return e.Tok
	case *ast.ArrayIndex:
		return e.Tok
	case *ast.Call:
		return e.Tok
	case *ast.FieldAccess:
		return e.Tok
	case *ast.Ternary:
		return e.Tok
	}
	return token.Token{}
}
