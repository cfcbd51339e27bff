package lowerer

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/funvibe/clc/internal/ast"
	"github.com/funvibe/clc/internal/diagnostics"
)

// lowerStatements lowers a statement sequence, short-circuiting as soon as
// one statement reports CtrlBreak (its block already terminated) — later
// statements in the same sequence would be unreachable IR.
func (l *lowerer) lowerStatements(stmts []ast.Statement) Control {
	for _, s := range stmts {
		if l.lowerStatement(s) == CtrlBreak {
			return CtrlBreak
		}
	}
	return CtrlContinue
}

func (l *lowerer) lowerStatement(stmt ast.Statement) Control {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		l.emitExpression(s.Expr)
		return CtrlContinue
	case *ast.ReturnStatement:
		return l.lowerReturn(s)
	case *ast.DeclareStatement:
		l.lowerDeclare(s.Decl)
		return CtrlContinue
	case *ast.StructStatement:
		l.lowerStructStatementLocal(s)
		return CtrlContinue
	case *ast.EnumStatement:
		l.lowerEnumStatementLocal(s)
		return CtrlContinue
	case *ast.CompoundStatement:
		return l.lowerCompound(s)
	case *ast.IfStatement:
		return l.lowerIf(s)
	case *ast.WhileStatement:
		return l.lowerWhile(s)
	case *ast.ForStatement:
		return l.lowerFor(s)
	case *ast.SwitchStatement:
		return l.lowerSwitch(s)
	case *ast.BreakStatement:
		return l.lowerBreak(s)
	case *ast.ContinueStatement:
		return l.lowerContinue(s)
	case *ast.EmptyStatement:
		return CtrlContinue
	}
	l.fail(diagnostics.Unsupported(token0, fmt.Sprintf("statement %T", stmt)))
	return CtrlContinue
}

func (l *lowerer) lowerReturn(s *ast.ReturnStatement) Control {
	if s.Value == nil {
		l.builder.CreateRet(l.zeroValue(l.currentRetType))
		return CtrlBreak
	}
	ptr := l.emitExpression(s.Value)
	val, ty := l.load(ptr)
	l.builder.CreateRet(l.coerce(val, ty, l.currentRetType))
	return CtrlBreak
}

// lowerDeclare allocates a local stack slot for a new variable, binding the
// synthetic "var.field" table for struct-typed locals exactly as function
// parameters and globals do.
func (l *lowerer) lowerDeclare(d *ast.VariableDecl) {
	t, err := l.env.ResolveType(d.ValueType)
	if err != nil {
		l.fail(diagnostics.TypeErr(d.Tok, err.Error()))
	}
	slot := l.builder.CreateAlloca(t, d.Ident)
	if d.Init != nil {
		initPtr := l.emitExpression(d.Init)
		initVal, initTy := l.load(initPtr)
		l.builder.CreateStore(l.coerce(initVal, initTy, t), slot)
	} else {
		l.builder.CreateStore(l.zeroValue(t), slot)
	}
	if err := l.env.InsertOtherAt(d.Tok, d.Ident, binding(slot, t)); err != nil {
		l.fail(err)
	}
	if tag, ok := l.env.LookupTag(d.ValueType); ok {
		l.bindStructFieldSlots(d.Ident, slot, tag)
	}
}

// lowerStructStatementLocal defines a struct tag visible in the current
// scope and/or declares a local variable of it — the local-scope
// counterpart to lowerStructStatementTopLevel, sharing defineStruct.
func (l *lowerer) lowerStructStatementLocal(s *ast.StructStatement) {
	if s.Fields != nil {
		l.defineStruct(s.Tag, s.Fields)
	}
	if s.Decl != nil {
		l.lowerDeclare(s.Decl)
	}
}

// lowerEnumStatementLocal binds each enumerator as a local int variable,
// per §4.4's literal wording — unlike the top-level case, a genuine
// enclosing function exists here so the slot is a plain alloca.
func (l *lowerer) lowerEnumStatementLocal(s *ast.EnumStatement) {
	if s.Enumerators != nil {
		next := int64(0)
		for _, enumerator := range s.Enumerators {
			val := next
			if enumerator.Value != nil {
				val = l.constantInt(enumerator.Value)
			}
			next = val + 1
			slot := l.builder.CreateAlloca(l.ctx.Int32Type(), enumerator.Ident)
			l.builder.CreateStore(llvm.ConstInt(l.ctx.Int32Type(), uint64(val), true), slot)
			l.env.InsertOther(enumerator.Ident, binding(slot, l.ctx.Int32Type()))
		}
	}
	if s.Decl != nil {
		l.lowerDeclare(s.Decl)
	}
}

func (l *lowerer) lowerCompound(s *ast.CompoundStatement) Control {
	l.env.PushScope()
	ctrl := l.lowerStatements(s.Statements)
	l.env.PopScope()
	return ctrl
}

// lowerIf follows §4.4's block diagram: entry -> [cmp] -> {then -> cont,
// cont} when Else is absent; when both arms are present, both are lowered
// first (remembering the block each arm ends in, which differs from its
// entry block when the arm contains nested control flow), and a cont block
// is created lazily — only if at least one arm falls through. The whole statement reports CtrlBreak
// only when both arms terminated.
func (l *lowerer) lowerIf(s *ast.IfStatement) Control {
	fn := l.currentFn
	thenBB := llvm.AddBasicBlock(fn, "if.then")

	if s.Else == nil {
		contBB := llvm.AddBasicBlock(fn, "if.cont")
		l.emitCondBranch(s.Cond, thenBB, contBB)

		l.builder.SetInsertPointAtEnd(thenBB)
		l.env.PushScope()
		thenCtrl := l.lowerStatement(s.Then)
		l.env.PopScope()
		if thenCtrl == CtrlContinue {
			l.builder.CreateBr(contBB)
		}
		l.builder.SetInsertPointAtEnd(contBB)
		return CtrlContinue
	}

	elseBB := llvm.AddBasicBlock(fn, "if.else")
	l.emitCondBranch(s.Cond, thenBB, elseBB)

	l.builder.SetInsertPointAtEnd(thenBB)
	l.env.PushScope()
	thenCtrl := l.lowerStatement(s.Then)
	l.env.PopScope()
	thenEndBB := l.builder.GetInsertBlock()

	l.builder.SetInsertPointAtEnd(elseBB)
	l.env.PushScope()
	elseCtrl := l.lowerStatement(s.Else)
	l.env.PopScope()
	elseEndBB := l.builder.GetInsertBlock()

	if thenCtrl == CtrlBreak && elseCtrl == CtrlBreak {
		return CtrlBreak
	}

	contBB := llvm.AddBasicBlock(fn, "if.cont")
	if thenCtrl == CtrlContinue {
		l.builder.SetInsertPointAtEnd(thenEndBB)
		l.builder.CreateBr(contBB)
	}
	if elseCtrl == CtrlContinue {
		l.builder.SetInsertPointAtEnd(elseEndBB)
		l.builder.CreateBr(contBB)
	}
	l.builder.SetInsertPointAtEnd(contBB)
	return CtrlContinue
}

// lowerWhile: entry -> comp -> [cmp] -> {then -> comp, cont}. break targets
// cont, continue targets comp (the condition-check block).
func (l *lowerer) lowerWhile(s *ast.WhileStatement) Control {
	fn := l.currentFn
	compBB := llvm.AddBasicBlock(fn, "while.cond")
	thenBB := llvm.AddBasicBlock(fn, "while.body")
	contBB := llvm.AddBasicBlock(fn, "while.cont")

	l.builder.CreateBr(compBB)

	l.builder.SetInsertPointAtEnd(compBB)
	l.emitCondBranch(s.Cond, thenBB, contBB)

	l.builder.SetInsertPointAtEnd(thenBB)
	l.breakTargets = append(l.breakTargets, contBB)
	l.continueTargets = append(l.continueTargets, compBB)
	l.env.PushScope()
	bodyCtrl := l.lowerStatement(s.Body)
	l.env.PopScope()
	l.breakTargets = l.breakTargets[:len(l.breakTargets)-1]
	l.continueTargets = l.continueTargets[:len(l.continueTargets)-1]

	if bodyCtrl == CtrlContinue {
		l.builder.CreateBr(compBB)
	}

	l.builder.SetInsertPointAtEnd(contBB)
	return CtrlContinue
}

// lowerFor: entry -> (init) -> comp -> [cmp] -> {body -> step -> comp,
// cont}. break targets cont, continue targets step (not comp — step must
// still run before the condition is re-checked). Init's scope wraps the
// whole loop.
func (l *lowerer) lowerFor(s *ast.ForStatement) Control {
	fn := l.currentFn
	compBB := llvm.AddBasicBlock(fn, "for.cond")
	bodyBB := llvm.AddBasicBlock(fn, "for.body")
	stepBB := llvm.AddBasicBlock(fn, "for.step")
	contBB := llvm.AddBasicBlock(fn, "for.cont")

	l.env.PushScope()
	if s.Init != nil {
		l.lowerStatement(s.Init)
	}
	l.builder.CreateBr(compBB)

	l.builder.SetInsertPointAtEnd(compBB)
	if s.Cond != nil {
		l.emitCondBranch(s.Cond, bodyBB, contBB)
	} else {
		l.builder.CreateBr(bodyBB)
	}

	l.builder.SetInsertPointAtEnd(bodyBB)
	l.breakTargets = append(l.breakTargets, contBB)
	l.continueTargets = append(l.continueTargets, stepBB)
	bodyCtrl := l.lowerStatement(s.Body)
	l.breakTargets = l.breakTargets[:len(l.breakTargets)-1]
	l.continueTargets = l.continueTargets[:len(l.continueTargets)-1]
	if bodyCtrl == CtrlContinue {
		l.builder.CreateBr(stepBB)
	}

	l.builder.SetInsertPointAtEnd(stepBB)
	if s.Step != nil {
		l.emitExpression(s.Step)
	}
	l.builder.CreateBr(compBB)

	l.builder.SetInsertPointAtEnd(contBB)
	l.env.PopScope()
	return CtrlContinue
}

// lowerSwitch builds one cmp/case block pair per case up through default:
// default gets a case block plus a trailing cmp block (an unconditional
// branch rather than a comparison) so fallthrough from the previous
// comparison still has a target. A case positioned after default in source
// order gets only a case block — it is reachable exclusively by fallthrough
// from the case before it, never by its own comparison — mirroring the
// original emitter's need_cmp_bb flag, which is cleared the moment a
// default clause is scanned. Only break applies inside a switch — continue
// inside a switch nested in an enclosing loop still resolves to that loop's
// target because switch never touches continueTargets.
func (l *lowerer) lowerSwitch(s *ast.SwitchStatement) Control {
	fn := l.currentFn
	tagPtr := l.emitExpression(s.Tag)
	tagVal, _ := l.load(tagPtr)

	n := len(s.Cases)
	cmpBBs := make([]llvm.BasicBlock, n)
	hasCmp := make([]bool, n)
	caseBBs := make([]llvm.BasicBlock, n)
	needCmp := true
	for i, c := range s.Cases {
		if needCmp {
			cmpBBs[i] = llvm.AddBasicBlock(fn, fmt.Sprintf("switch.cmp%d", i))
			hasCmp[i] = true
			if c.IsDefault {
				needCmp = false
			}
		}
		caseBBs[i] = llvm.AddBasicBlock(fn, fmt.Sprintf("switch.case%d", i))
	}
	contBB := llvm.AddBasicBlock(fn, "switch.cont")

	l.builder.CreateBr(cmpBBs[0])

	for i, c := range s.Cases {
		if !hasCmp[i] {
			continue
		}
		l.builder.SetInsertPointAtEnd(cmpBBs[i])
		next := contBB
		if i+1 < n && hasCmp[i+1] {
			next = cmpBBs[i+1]
		}
		if c.IsDefault {
			l.builder.CreateBr(caseBBs[i])
			continue
		}
		valPtr := l.emitExpression(c.Value)
		val, _ := l.load(valPtr)
		eq := l.builder.CreateICmp(llvm.IntEQ, tagVal, val, "caseeq")
		l.builder.CreateCondBr(eq, caseBBs[i], next)
	}

	l.breakTargets = append(l.breakTargets, contBB)
	for i, c := range s.Cases {
		l.builder.SetInsertPointAtEnd(caseBBs[i])
		l.env.PushScope()
		ctrl := l.lowerStatements(c.Statements)
		l.env.PopScope()
		if ctrl == CtrlContinue {
			next := contBB
			if i+1 < n {
				next = caseBBs[i+1]
			}
			l.builder.CreateBr(next)
		}
	}
	l.breakTargets = l.breakTargets[:len(l.breakTargets)-1]

	l.builder.SetInsertPointAtEnd(contBB)
	return CtrlContinue
}

func (l *lowerer) lowerBreak(s *ast.BreakStatement) Control {
	if len(l.breakTargets) == 0 {
		l.fail(diagnostics.Unsupported(s.Tok, "break outside loop/switch"))
	}
	l.builder.CreateBr(l.breakTargets[len(l.breakTargets)-1])
	return CtrlBreak
}

func (l *lowerer) lowerContinue(s *ast.ContinueStatement) Control {
	if len(l.continueTargets) == 0 {
		l.fail(diagnostics.Unsupported(s.Tok, "continue outside loop"))
	}
	l.builder.CreateBr(l.continueTargets[len(l.continueTargets)-1])
	return CtrlBreak
}
