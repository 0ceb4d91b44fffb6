package sema

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"sysc/internal/ast"
	"sysc/internal/diagnostics"
	"sysc/internal/irgen"
	"sysc/internal/types"
)

// analyzeFunctionBody opens a function scope over fd's parameters
// (including the hidden `this` for non-static members), materializes the
// entry block, resolves any constructor-initializer list, walks the
// body, and emits an implicit return if control reaches the end without
// one (reporting "control reaches end of non-void function" first when
// the return type is not void).
func (a *Analyzer) analyzeFunctionBody(scope *types.Scope, fd *types.FunctionDescriptor, sym *types.Symbol, body *ast.CompoundStmt, ctorInit []ast.CtorMemInit, class *types.ClassDescriptor) {
	fnVal, ok := sym.Backend.(*ir.Func)
	if !ok {
		a.errf(body.Pos, diagnostics.Misc, "function '%s' has no backend definition", sym.ID)
		return
	}

	fnScope := types.NewScope(scope, class, fd)
	outerScope := a.scope
	a.scope = fnScope
	defer func() { a.scope = outerScope }()

	var paramSyms []*types.Symbol
	for _, p := range fd.Params {
		if _, err := fnScope.AddSymbol(p.Symbol); err != nil {
			a.errf(body.Pos, diagnostics.Redefinition, "%s", err)
		}
		paramSyms = append(paramSyms, p.Symbol)
	}
	a.Builder.StartFunction(fnVal, paramSyms)

	if class != nil && len(ctorInit) > 0 {
		a.analyzeCtorInit(fd, ctorInit, class)
	}

	a.analyzeStmt(body)

	if !a.Builder.Terminated() {
		if !fd.ReturnType.IsVoid() {
			a.errf(body.Pos, diagnostics.Misc, "control reaches end of non-void function")
			a.Builder.Ret(a.Builder.ZeroValue(fd.ReturnType))
		} else {
			a.Builder.Ret(nil)
		}
	}
}

// analyzeCtorInit resolves a constructor-initializer list against the
// hidden `this` parameter: each member initializer is type-checked like
// an assignment and stored through a GEP into the aggregate. A
// base-class initializer defers to constructor resolution, left
// unimplemented per the same Open Question decision recorded for
// parenthesized class-type initializers.
func (a *Analyzer) analyzeCtorInit(fd *types.FunctionDescriptor, inits []ast.CtorMemInit, class *types.ClassDescriptor) {
	thisSym := fd.Params[0].Symbol
	thisSlot, ok := thisSym.Backend.(value.Value)
	if !ok {
		return
	}
	thisVal := a.Builder.Load(thisSym.Type, thisSlot)

	for _, init := range inits {
		if class.Base != nil && init.Target == class.Base.Class.Name {
			a.errf(init.Pos, diagnostics.Misc, "unimplemented: base-class constructor initialization for '%s'", init.Target)
			continue
		}
		member := class.MemberScope.QuerySymbol(init.Target, true).One()
		if member == nil {
			a.errf(init.Pos, diagnostics.NameResolution, "no member named '%s' in '%s'", init.Target, class.Name)
			continue
		}
		if len(init.Args) != 1 {
			a.errf(init.Pos, diagnostics.Misc, "member initializer for '%s' must have exactly one expression", init.Target)
			continue
		}
		res, ok := a.analyzeExpr(init.Args[0])
		if !ok {
			continue
		}
		if _, ok := types.IsConvertibleTo(res.Type, member.Type, res.Constant); !ok {
			a.errf(init.Pos, diagnostics.TypeError, "cannot initialize member '%s' of type %s", init.Target, describeType(member.Type))
			continue
		}
		idx, err := irgen.FieldIndex(class, member)
		if err != nil {
			a.errf(init.Pos, diagnostics.Misc, "%s", err)
			continue
		}
		addr := a.Builder.GEPField(thisVal, idx)
		if v := a.materialize(res, member.Type); v != nil {
			a.Builder.Store(v, addr)
		}
	}
}

// condValue materializes cond as an i1 for a branch or switch
// instruction: a folded constant is lowered directly, a runtime
// condition goes through the same Convert sequence every other
// implicit bool conversion uses. Returns nil when cond could not be
// materialized at all (an already-reported type error, or an unresolved
// operand upstream), in which case the caller falls back to an
// unconditional branch rather than passing nil to CondBr.
func (a *Analyzer) condValue(cond ExprResult) value.Value {
	return a.materialize(cond, types.Fundamental(types.Bool))
}

// analyzeStmt dispatches s to the matching Visit method, implementing
// ast.StmtVisitor on *Analyzer.
func (a *Analyzer) analyzeStmt(s ast.Stmt) {
	if s == nil {
		return
	}
	s.Accept(a)
}

func (a *Analyzer) VisitCompound(s *ast.CompoundStmt) any {
	outer := a.scope
	a.scope = types.NewScope(outer, outer.EnclosingClass, outer.EnclosingFunc)
	for _, st := range s.Stmts {
		a.analyzeStmt(st)
	}
	a.scope = outer
	return nil
}

func (a *Analyzer) VisitExprStmt(s *ast.ExprStmt) any {
	a.analyzeExpr(s.Expr)
	return nil
}

func (a *Analyzer) VisitDeclStmt(s *ast.DeclStmt) any {
	a.AnalyzeDeclaration(&s.Decl, DeclState{Phase: PhaseLocal, Access: types.AccessPublic})
	return nil
}

func (a *Analyzer) VisitIf(s *ast.IfStmt) any {
	cond, ok := a.analyzeExpr(s.Cond)
	thenBlk := a.Builder.NewBlock("if.then")
	endBlk := a.Builder.NewBlock("if.end")
	elseBlk := endBlk
	if s.Else != nil {
		elseBlk = a.Builder.NewBlock("if.else")
	}
	if ok {
		if cv := a.condValue(cond); cv != nil {
			a.Builder.CondBr(cv, thenBlk, elseBlk)
		} else {
			a.Builder.Br(endBlk)
		}
	} else {
		a.Builder.Br(endBlk)
	}

	a.Builder.SetInsertPoint(thenBlk)
	a.analyzeStmt(s.Then)
	a.Builder.Br(endBlk)

	if s.Else != nil {
		a.Builder.SetInsertPoint(elseBlk)
		a.analyzeStmt(s.Else)
		a.Builder.Br(endBlk)
	}

	a.Builder.SetInsertPoint(endBlk)
	return nil
}

// VisitSwitch implements a flat switch body: top-level case/default
// markers each get their own block (fed to a single llvm switch
// instruction), and the statements between markers fall through to the
// next marker's block exactly as source order dictates. Case labels
// nested inside a deeper statement (Duff's-device style) are not
// supported.
func (a *Analyzer) VisitSwitch(s *ast.SwitchStmt) any {
	cond, ok := a.analyzeExpr(s.Cond)
	if ok {
		decayed := types.Decay(cond.Type)
		if _, convOk := types.IsConvertibleTo(decayed, types.Fundamental(types.Int), cond.Constant); !convOk {
			a.errf(s.Pos, diagnostics.TypeError, "switch condition not convertible to int")
			ok = false
		}
	}
	merge := a.Builder.NewBlock("switch.end")
	a.loops = append(a.loops, loopCtx{isSwitch: true, breakBlock: merge})
	defer func() { a.loops = a.loops[:len(a.loops)-1] }()

	body, _ := s.Body.(*ast.CompoundStmt)
	if !ok || body == nil {
		a.Builder.Br(merge)
		a.Builder.SetInsertPoint(merge)
		return nil
	}

	blockFor := make(map[ast.Stmt]*ir.Block)
	caseMap := make(map[int64]*ir.Block)
	var defaultBlock *ir.Block
	for _, st := range body.Stmts {
		switch cs := st.(type) {
		case *ast.CaseStmt:
			v, _, ok := a.foldConstInt(cs.Value)
			if !ok {
				a.errf(cs.Pos, diagnostics.Misc, "case value is not a constant expression")
				continue
			}
			blk := a.Builder.NewBlock("switch.case")
			caseMap[v] = blk
			blockFor[st] = blk
		case *ast.DefaultStmt:
			blk := a.Builder.NewBlock("switch.default")
			defaultBlock = blk
			blockFor[st] = blk
		}
	}
	def := defaultBlock
	if def == nil {
		def = merge
	}
	switchVal := a.materialize(cond, types.Fundamental(types.Int))
	a.Builder.Switch(switchVal, def, caseMap)

	for _, st := range body.Stmts {
		if blk, marker := blockFor[st]; marker {
			a.Builder.Br(blk)
			a.Builder.SetInsertPoint(blk)
			continue
		}
		a.analyzeStmt(st)
	}
	a.Builder.Br(merge)
	a.Builder.SetInsertPoint(merge)
	return nil
}

// VisitCase and VisitDefault do nothing: Switch consumes its body's
// top-level statements directly so it can assign each marker its own
// block before emitting any code. A marker that reaches these methods
// (outside any switch, or nested below a switch body's top level) is
// ignored and reports no diagnostic.
func (a *Analyzer) VisitCase(s *ast.CaseStmt) any       { return nil }
func (a *Analyzer) VisitDefault(s *ast.DefaultStmt) any { return nil }

func (a *Analyzer) VisitWhile(s *ast.WhileStmt) any {
	condBlk := a.Builder.NewBlock("while.cond")
	bodyBlk := a.Builder.NewBlock("while.body")
	endBlk := a.Builder.NewBlock("while.end")

	a.Builder.Br(condBlk)
	a.Builder.SetInsertPoint(condBlk)
	cond, ok := a.analyzeExpr(s.Cond)
	if ok {
		if cv := a.condValue(cond); cv != nil {
			a.Builder.CondBr(cv, bodyBlk, endBlk)
		} else {
			a.Builder.Br(endBlk)
		}
	} else {
		a.Builder.Br(endBlk)
	}

	a.Builder.SetInsertPoint(bodyBlk)
	a.loops = append(a.loops, loopCtx{breakBlock: endBlk, continueBlk: condBlk})
	a.analyzeStmt(s.Body)
	a.loops = a.loops[:len(a.loops)-1]
	a.Builder.Br(condBlk)

	a.Builder.SetInsertPoint(endBlk)
	return nil
}

func (a *Analyzer) VisitDo(s *ast.DoStmt) any {
	bodyBlk := a.Builder.NewBlock("do.body")
	condBlk := a.Builder.NewBlock("do.cond")
	endBlk := a.Builder.NewBlock("do.end")

	a.Builder.Br(bodyBlk)
	a.Builder.SetInsertPoint(bodyBlk)
	a.loops = append(a.loops, loopCtx{breakBlock: endBlk, continueBlk: condBlk})
	a.analyzeStmt(s.Body)
	a.loops = a.loops[:len(a.loops)-1]
	a.Builder.Br(condBlk)

	a.Builder.SetInsertPoint(condBlk)
	cond, ok := a.analyzeExpr(s.Cond)
	if ok {
		if cv := a.condValue(cond); cv != nil {
			a.Builder.CondBr(cv, bodyBlk, endBlk)
		} else {
			a.Builder.Br(endBlk)
		}
	} else {
		a.Builder.Br(endBlk)
	}

	a.Builder.SetInsertPoint(endBlk)
	return nil
}

func (a *Analyzer) VisitFor(s *ast.ForStmt) any {
	outer := a.scope
	a.scope = types.NewScope(outer, outer.EnclosingClass, outer.EnclosingFunc)
	defer func() { a.scope = outer }()

	a.analyzeStmt(s.Init)

	condBlk := a.Builder.NewBlock("for.cond")
	bodyBlk := a.Builder.NewBlock("for.body")
	postBlk := a.Builder.NewBlock("for.post")
	endBlk := a.Builder.NewBlock("for.end")

	a.Builder.Br(condBlk)
	a.Builder.SetInsertPoint(condBlk)
	if s.Cond != nil {
		cond, ok := a.analyzeExpr(s.Cond)
		if ok {
			if cv := a.condValue(cond); cv != nil {
				a.Builder.CondBr(cv, bodyBlk, endBlk)
			} else {
				a.Builder.Br(endBlk)
			}
		} else {
			a.Builder.Br(endBlk)
		}
	} else {
		a.Builder.Br(bodyBlk)
	}

	a.Builder.SetInsertPoint(bodyBlk)
	a.loops = append(a.loops, loopCtx{breakBlock: endBlk, continueBlk: postBlk})
	a.analyzeStmt(s.Body)
	a.loops = a.loops[:len(a.loops)-1]
	a.Builder.Br(postBlk)

	a.Builder.SetInsertPoint(postBlk)
	if s.Post != nil {
		a.analyzeExpr(s.Post)
	}
	a.Builder.Br(condBlk)

	a.Builder.SetInsertPoint(endBlk)
	return nil
}

func (a *Analyzer) VisitBreak(s *ast.BreakStmt) any {
	if len(a.loops) == 0 {
		a.errf(s.Pos, diagnostics.Context, "'break' statement not in loop or switch statement")
		return nil
	}
	a.Builder.Br(a.loops[len(a.loops)-1].breakBlock)
	return nil
}

func (a *Analyzer) VisitContinue(s *ast.ContinueStmt) any {
	for i := len(a.loops) - 1; i >= 0; i-- {
		if !a.loops[i].isSwitch {
			a.Builder.Br(a.loops[i].continueBlk)
			return nil
		}
	}
	a.errf(s.Pos, diagnostics.Context, "'continue' statement not in loop statement")
	return nil
}

func (a *Analyzer) VisitReturn(s *ast.ReturnStmt) any {
	if s.Value == nil {
		a.Builder.Ret(nil)
		return nil
	}
	res, ok := a.analyzeExpr(s.Value)
	if !ok {
		return nil
	}
	fn := a.scope.EnclosingFunc
	if fn == nil {
		a.Builder.Ret(res.Value)
		return nil
	}
	if _, convOk := types.IsConvertibleTo(res.Type, fn.ReturnType, res.Constant); !convOk {
		a.errf(s.Pos, diagnostics.TypeError, "return value type %s does not match function return type %s",
			describeType(res.Type), describeType(fn.ReturnType))
		return nil
	}
	a.Builder.Ret(a.materialize(res, fn.ReturnType))
	return nil
}
