package sema

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sysc/internal/ast"
	"sysc/internal/diagnostics"
	"sysc/internal/irgen"
	"sysc/internal/types"
)

// ExprResult is what every expression node resolves to: a
// type, a backend value (nil for a pure constant not yet materialized),
// an optional folded constant, and the symbol set an id-expression
// resolved against (nil otherwise).
type ExprResult struct {
	Type     types.Type
	Value    value.Value
	Constant *types.Constant
	Symbols  types.SymbolSet
	Ok       bool
}

// analyzeExpr dispatches e to the matching Visit method and type-asserts
// the result back to ExprResult, implementing ast.ExprVisitor on
// *Analyzer.
func (a *Analyzer) analyzeExpr(e ast.Expr) (ExprResult, bool) {
	res, _ := e.Accept(a).(ExprResult)
	return res, res.Ok
}

// foldConstInt evaluates e and requires it to fold to an integral
// constant, used for array sizes and enumerator values.
func (a *Analyzer) foldConstInt(e ast.Expr) (int64, types.Type, bool) {
	res, ok := a.analyzeExpr(e)
	if !ok || res.Constant == nil {
		return 0, types.Type{}, false
	}
	switch res.Constant.Kind {
	case types.ConstInt:
		return res.Constant.IntVal, res.Type, true
	case types.ConstChar:
		return int64(res.Constant.CharVal), res.Type, true
	case types.ConstBool:
		if res.Constant.BoolVal {
			return 1, res.Type, true
		}
		return 0, res.Type, true
	default:
		return 0, types.Type{}, false
	}
}

// materialize produces target-typed IR value for r: a folded constant is
// converted and lowered directly, a runtime value is routed through the
// IR Builder's implicit-conversion sequence. This is this package's
// counterpart to CodeGenHelper::CreateValue, the single entry point the
// reference generator uses everywhere a typed value is needed regardless
// of whether the source expression was constant.
func (a *Analyzer) materialize(r ExprResult, target types.Type) value.Value {
	if r.Constant != nil {
		sf := r.Type.Fund
		if r.Type.Kind == types.KindEnum {
			sf = types.Int
		}
		tf := target.Fund
		if target.Kind == types.KindEnum {
			tf = types.Int
		}
		if target.Kind != types.KindFundamental && target.Kind != types.KindEnum {
			return nil
		}
		c := r.Constant.Convert(sf, tf)
		return a.Builder.Constant(c, tf)
	}
	if r.Value == nil {
		return nil
	}
	return a.Builder.Convert(r.Type, target, r.Value)
}

func (a *Analyzer) VisitLiteral(l *ast.Literal) any {
	switch l.Kind {
	case ast.LitInt:
		c := types.IntConstant(l.IntVal)
		return ExprResult{Type: types.Fundamental(types.Int), Constant: &c, Ok: true}
	case ast.LitFloat:
		c := types.FloatConstant(l.FloatVal)
		return ExprResult{Type: types.Fundamental(types.Double), Constant: &c, Ok: true}
	case ast.LitChar:
		c := types.CharConstant(l.CharVal)
		return ExprResult{Type: types.Fundamental(types.Char), Constant: &c, Ok: true}
	case ast.LitBool:
		c := types.BoolConstant(l.BoolVal)
		return ExprResult{Type: types.Fundamental(types.Bool), Constant: &c, Ok: true}
	case ast.LitString:
		elem := types.Fundamental(types.Char).AsConst()
		t := elem.WithArray(types.ArrayDescriptor{Size: len(l.StrVal) + 1})
		return ExprResult{Type: t, Ok: true}
	default:
		return ExprResult{}
	}
}

func (a *Analyzer) VisitId(e *ast.IdExpr) any {
	set := a.scope.QuerySymbol(e.Name, e.Qualified)
	if set.Empty() {
		a.errf(e.Pos, diagnostics.NameResolution, "use of undeclared identifier '%s'", e.Name)
		return ExprResult{}
	}
	sym := set.One()
	if sym == nil {
		// An overload set used as a value resolves at the call site;
		// hand the whole set back for CallExpr to pick from.
		return ExprResult{Symbols: set, Ok: true}
	}
	t := sym.Type
	if !sym.IsFunction() && sym.Attr != types.AttrConstant {
		t = t.WithPointer(types.PointerDescriptor{Kind: types.PtrReference})
	}
	return ExprResult{Type: t, Value: backendValue(sym), Constant: sym.ConstValue, Symbols: set, Ok: true}
}

func backendValue(sym *types.Symbol) value.Value {
	v, _ := sym.Backend.(value.Value)
	return v
}

func (a *Analyzer) VisitUnary(e *ast.UnaryExpr) any {
	operand, ok := a.analyzeExpr(e.Operand)
	if !ok {
		return ExprResult{}
	}
	switch e.Op {
	case ast.UnaryAddrOf:
		if !operand.Type.IsReference() {
			a.errf(e.Pos, diagnostics.ConstLvalue, "address of rvalue requested")
			return ExprResult{}
		}
		pointee := operand.Type
		pointee.Pointers = pointee.Pointers[:len(pointee.Pointers)-1]
		return ExprResult{Type: pointee.WithPointer(types.PointerDescriptor{Kind: types.PtrPlain}), Value: operand.Value, Ok: true}
	case ast.UnaryDeref:
		base := types.Decay(operand.Type)
		if base.IsArray() {
			base = types.Decay(base)
		}
		if !base.IsPointer() {
			a.errf(e.Pos, diagnostics.TypeError, "indirection requires pointer operand")
			return ExprResult{}
		}
		v := a.materialize(operand, base)
		pointee := base
		pointee.Pointers = pointee.Pointers[:len(pointee.Pointers)-1]
		return ExprResult{Type: pointee.WithPointer(types.PointerDescriptor{Kind: types.PtrReference}), Value: v, Ok: true}
	case ast.UnaryPreIncr, ast.UnaryPreDecr, ast.UnaryPostIncr, ast.UnaryPostDecr:
		if !operand.Type.IsReference() {
			a.errf(e.Pos, diagnostics.ConstLvalue, "expression is not assignable")
			return ExprResult{}
		}
		if operand.Type.CV == types.CVConst {
			a.errf(e.Pos, diagnostics.ConstLvalue, "increment of read-only value")
			return ExprResult{}
		}
		rvalue := types.Decay(operand.Type)
		if operand.Value == nil || !isNumericKind(rvalue) {
			return ExprResult{Type: rvalue, Ok: true}
		}
		fund := rvalue.Fund
		if rvalue.Kind == types.KindEnum {
			fund = types.Int
		}
		cur := a.Builder.Load(rvalue, operand.Value)
		one := a.Builder.Constant(types.IntConstant(1), fund)
		var updated value.Value
		if e.Op == ast.UnaryPreIncr || e.Op == ast.UnaryPostIncr {
			updated = a.Builder.BinaryOp(types.BinAdd, fund, cur, one)
		} else {
			updated = a.Builder.BinaryOp(types.BinSub, fund, cur, one)
		}
		a.Builder.Store(updated, operand.Value)
		if e.Op == ast.UnaryPreIncr || e.Op == ast.UnaryPreDecr {
			return ExprResult{Type: rvalue, Value: updated, Ok: true}
		}
		return ExprResult{Type: rvalue, Value: cur, Ok: true}
	default:
		rvalue := types.Decay(operand.Type)
		if !isNumericKind(rvalue) {
			a.errf(e.Pos, diagnostics.TypeError, "invalid argument type to unary operator")
			return ExprResult{}
		}
		resultType := rvalue
		if e.Op == ast.UnaryNot {
			resultType = types.Fundamental(types.Bool)
		}
		if operand.Constant != nil {
			op := unaryConstOp(e.Op)
			folded := operand.Constant.UnaryOp(op, resultType.Fund)
			return ExprResult{Type: resultType, Constant: &folded, Ok: true}
		}
		v := a.materialize(operand, rvalue)
		if v == nil {
			return ExprResult{Type: resultType, Ok: true}
		}
		fund := rvalue.Fund
		if rvalue.Kind == types.KindEnum {
			fund = types.Int
		}
		var result value.Value
		switch e.Op {
		case ast.UnaryMinus:
			result = a.Builder.Neg(fund, v)
		case ast.UnaryBitNot:
			result = a.Builder.Not(v)
		case ast.UnaryNot:
			result = a.Builder.LogicalNot(fund, v)
		default:
			result = v
		}
		return ExprResult{Type: resultType, Value: result, Ok: true}
	}
}

func unaryConstOp(op ast.UnaryOpKind) types.UnaryOp {
	switch op {
	case ast.UnaryMinus:
		return types.UnaryNeg
	case ast.UnaryBitNot:
		return types.UnaryBitNot
	case ast.UnaryNot:
		return types.UnaryLogicalNot
	default:
		return types.UnaryPos
	}
}

// VisitBinary implements the binary-expression rule, with && and ||
// evaluated specially (short-circuit) rather than through
// ArithmeticConvert/constant folding like every other operator.
func (a *Analyzer) VisitBinary(e *ast.BinaryExpr) any {
	if e.Op == ast.BinLogicalAnd || e.Op == ast.BinLogicalOr {
		return a.visitShortCircuit(e)
	}

	left, lok := a.analyzeExpr(e.Left)
	right, rok := a.analyzeExpr(e.Right)
	if !lok || !rok {
		return ExprResult{}
	}
	lt, rt := types.Decay(left.Type), types.Decay(right.Type)
	if !isNumericKind(lt) || !isNumericKind(rt) {
		a.errf(e.Pos, diagnostics.TypeError, "invalid operands to binary operator")
		return ExprResult{}
	}
	common := types.ArithmeticConvert(lt, rt)
	result := common
	if isComparison(e.Op) {
		result = types.Fundamental(types.Bool)
	}

	if left.Constant != nil && right.Constant != nil {
		lc := left.Constant.Convert(lt.Fund, foldKind(lt, rt))
		rc := right.Constant.Convert(rt.Fund, foldKind(lt, rt))
		folded := lc.BinaryOp(constBinOp(e.Op), foldKind(lt, rt), rc)
		return ExprResult{Type: result, Constant: &folded, Ok: true}
	}

	lv := a.materialize(left, common)
	rv := a.materialize(right, common)
	if lv == nil || rv == nil {
		return ExprResult{Type: result, Ok: true}
	}
	v := a.Builder.BinaryOp(constBinOp(e.Op), common.Fund, lv, rv)
	return ExprResult{Type: result, Value: v, Ok: true}
}

func isNumericKind(t types.Type) bool {
	return len(t.Pointers) == 0 && len(t.Arrays) == 0 &&
		(t.Kind == types.KindFundamental || t.Kind == types.KindEnum)
}

func foldKind(a, b types.Type) types.FundamentalType {
	return types.ArithmeticConvert(a, b).Fund
}

func isComparison(op ast.BinaryOpKind) bool {
	switch op {
	case ast.BinLt, ast.BinLe, ast.BinGt, ast.BinGe, ast.BinEq, ast.BinNe:
		return true
	default:
		return false
	}
}

func constBinOp(op ast.BinaryOpKind) types.BinaryOp {
	switch op {
	case ast.BinAdd:
		return types.BinAdd
	case ast.BinSub:
		return types.BinSub
	case ast.BinMul:
		return types.BinMul
	case ast.BinDiv:
		return types.BinDiv
	case ast.BinMod:
		return types.BinMod
	case ast.BinShl:
		return types.BinShl
	case ast.BinShr:
		return types.BinShr
	case ast.BinBitAnd:
		return types.BinAnd
	case ast.BinBitXor:
		return types.BinXor
	case ast.BinBitOr:
		return types.BinOr
	case ast.BinLt:
		return types.BinLt
	case ast.BinLe:
		return types.BinLe
	case ast.BinGt:
		return types.BinGt
	case ast.BinGe:
		return types.BinGe
	case ast.BinEq:
		return types.BinEq
	default:
		return types.BinNe
	}
}

func shortCircuitLabel(op ast.BinaryOpKind, suffix string) string {
	if op == ast.BinLogicalAnd {
		return "and." + suffix
	}
	return "or." + suffix
}

// visitShortCircuit implements && and ||: a constant left operand that
// already determines the result folds at compile time without touching
// the right operand at all (matching BinaryExpression::Codegen's
// compile-time short circuit); otherwise it emits the rhs/end blocks and
// the CondBr/φ-node pair the reference generator uses, branching true
// into the rhs block for && and around it for ||.
func (a *Analyzer) visitShortCircuit(e *ast.BinaryExpr) any {
	left, lok := a.analyzeExpr(e.Left)
	if !lok {
		return ExprResult{}
	}
	if !isNumericKind(types.Decay(left.Type)) {
		a.errf(e.Pos, diagnostics.TypeError, "invalid operand to logical operator")
		return ExprResult{}
	}

	if left.Constant != nil {
		lb := left.Constant.Convert(types.Decay(left.Type).Fund, types.Bool).BoolVal
		if (e.Op == ast.BinLogicalAnd && !lb) || (e.Op == ast.BinLogicalOr && lb) {
			c := types.BoolConstant(lb)
			return ExprResult{Type: types.Fundamental(types.Bool), Constant: &c, Ok: true}
		}
		right, rok := a.analyzeExpr(e.Right)
		if !rok {
			return ExprResult{}
		}
		if !isNumericKind(types.Decay(right.Type)) {
			a.errf(e.Pos, diagnostics.TypeError, "invalid operand to logical operator")
			return ExprResult{}
		}
		if right.Constant != nil {
			rb := right.Constant.Convert(types.Decay(right.Type).Fund, types.Bool).BoolVal
			var result bool
			if e.Op == ast.BinLogicalAnd {
				result = lb && rb
			} else {
				result = lb || rb
			}
			c := types.BoolConstant(result)
			return ExprResult{Type: types.Fundamental(types.Bool), Constant: &c, Ok: true}
		}
		rv := a.materialize(right, types.Fundamental(types.Bool))
		return ExprResult{Type: types.Fundamental(types.Bool), Value: rv, Ok: true}
	}

	lv := a.materialize(left, types.Fundamental(types.Bool))
	if lv == nil {
		return ExprResult{Type: types.Fundamental(types.Bool), Ok: true}
	}
	leftBlk := a.Builder.CurrentBlock()

	rhsBlk := a.Builder.NewBlock(shortCircuitLabel(e.Op, "rhs"))
	endBlk := a.Builder.NewBlock(shortCircuitLabel(e.Op, "end"))
	if e.Op == ast.BinLogicalAnd {
		a.Builder.CondBr(lv, rhsBlk, endBlk)
	} else {
		a.Builder.CondBr(lv, endBlk, rhsBlk)
	}

	a.Builder.SetInsertPoint(rhsBlk)
	right, rok := a.analyzeExpr(e.Right)
	if !rok {
		a.Builder.Br(endBlk)
		a.Builder.SetInsertPoint(endBlk)
		return ExprResult{}
	}
	if !isNumericKind(types.Decay(right.Type)) {
		a.errf(e.Pos, diagnostics.TypeError, "invalid operand to logical operator")
	}
	rv := a.materialize(right, types.Fundamental(types.Bool))
	rhsEndBlk := a.Builder.CurrentBlock()
	a.Builder.Br(endBlk)

	a.Builder.SetInsertPoint(endBlk)
	if rv == nil {
		return ExprResult{Type: types.Fundamental(types.Bool), Ok: true}
	}
	phi := a.Builder.Phi(types.Fundamental(types.Bool), map[*ir.Block]value.Value{
		leftBlk:   lv,
		rhsEndBlk: rv,
	})
	return ExprResult{Type: types.Fundamental(types.Bool), Value: phi, Ok: true}
}

// VisitConditional implements ?:: a constant condition picks its branch
// at compile time without emitting the other one's control flow; a
// runtime condition gets its own then/else blocks, each converting its
// arm to the common result type, joined by a φ-node at the merge block.
func (a *Analyzer) VisitConditional(e *ast.ConditionalExpr) any {
	cond, ok := a.analyzeExpr(e.Cond)
	if !ok {
		return ExprResult{}
	}
	if !isNumericKind(types.Decay(cond.Type)) {
		a.errf(e.Pos, diagnostics.TypeError, "used type where arithmetic or pointer type is required")
		return ExprResult{}
	}

	if cond.Constant != nil {
		condBool := cond.Constant.Convert(types.Decay(cond.Type).Fund, types.Bool).BoolVal
		then, tok := a.analyzeExpr(e.Then)
		els, eok := a.analyzeExpr(e.Else)
		if !tok || !eok {
			return ExprResult{}
		}
		result := types.ArithmeticConvert(types.Decay(then.Type), types.Decay(els.Type))
		chosen := then
		if !condBool {
			chosen = els
		}
		if chosen.Constant != nil {
			cf := types.Decay(chosen.Type).Fund
			c := chosen.Constant.Convert(cf, result.Fund)
			return ExprResult{Type: result, Constant: &c, Ok: true}
		}
		v := a.materialize(chosen, result)
		return ExprResult{Type: result, Value: v, Ok: true}
	}

	condVal := a.materialize(cond, types.Fundamental(types.Bool))
	thenBlk := a.Builder.NewBlock("cond.true")
	elseBlk := a.Builder.NewBlock("cond.false")
	endBlk := a.Builder.NewBlock("cond.end")
	if condVal != nil {
		a.Builder.CondBr(condVal, thenBlk, elseBlk)
	} else {
		a.Builder.Br(thenBlk)
	}

	a.Builder.SetInsertPoint(thenBlk)
	then, tok := a.analyzeExpr(e.Then)

	a.Builder.SetInsertPoint(elseBlk)
	els, eok := a.analyzeExpr(e.Else)

	if !tok || !eok {
		a.Builder.SetInsertPoint(endBlk)
		return ExprResult{}
	}
	result := types.ArithmeticConvert(types.Decay(then.Type), types.Decay(els.Type))

	a.Builder.SetInsertPoint(thenBlk)
	thenVal := a.materialize(then, result)
	a.Builder.Br(endBlk)
	thenEndBlk := a.Builder.CurrentBlock()

	a.Builder.SetInsertPoint(elseBlk)
	elseVal := a.materialize(els, result)
	a.Builder.Br(endBlk)
	elseEndBlk := a.Builder.CurrentBlock()

	a.Builder.SetInsertPoint(endBlk)
	if thenVal == nil || elseVal == nil {
		return ExprResult{Type: result, Ok: true}
	}
	phi := a.Builder.Phi(result, map[*ir.Block]value.Value{thenEndBlk: thenVal, elseEndBlk: elseVal})
	return ExprResult{Type: result, Value: phi, Ok: true}
}

func (a *Analyzer) VisitAssign(e *ast.AssignExpr) any {
	lhs, lok := a.analyzeExpr(e.Lhs)
	rhs, rok := a.analyzeExpr(e.Rhs)
	if !lok || !rok {
		return ExprResult{}
	}
	if !lhs.Type.IsReference() {
		a.errf(e.Pos, diagnostics.ConstLvalue, "expression is not assignable")
		return ExprResult{}
	}
	if lhs.Type.CV == types.CVConst {
		a.errf(e.Pos, diagnostics.ConstLvalue, "assignment to const-qualified object")
		return ExprResult{}
	}
	target := types.Decay(lhs.Type)

	effType := rhs.Type
	effConst := rhs.Constant
	var effValue value.Value
	if effConst == nil {
		effValue = rhs.Value
	}

	if e.Compound {
		rt := types.Decay(rhs.Type)
		if !isNumericKind(target) || !isNumericKind(rt) {
			a.errf(e.Pos, diagnostics.TypeError, "invalid operands to compound assignment")
			return ExprResult{}
		}
		if lhs.Constant != nil && rhs.Constant != nil {
			folded := lhs.Constant.BinaryOp(constBinOp(e.Op), foldKind(target, rt), *rhs.Constant)
			effConst = &folded
			effValue = nil
		} else {
			effConst = nil
			effValue = nil
			if lhs.Value != nil {
				cur := a.Builder.Load(target, lhs.Value)
				rv := a.materialize(rhs, target)
				if rv != nil {
					effValue = a.Builder.BinaryOp(constBinOp(e.Op), target.Fund, cur, rv)
				}
			}
		}
		effType = target
	}

	if _, ok := types.IsConvertibleTo(effType, target, effConst); !ok {
		a.errf(e.Pos, diagnostics.TypeError, "assigning to %s from incompatible type %s",
			describeType(target), describeType(effType))
		return ExprResult{}
	}

	var storeVal value.Value
	if effConst != nil && (target.Kind == types.KindFundamental || target.Kind == types.KindEnum) {
		tf := target.Fund
		if target.Kind == types.KindEnum {
			tf = types.Int
		}
		storeVal = a.Builder.Constant(*effConst, tf)
	} else if effValue != nil {
		storeVal = a.Builder.Convert(effType, target, effValue)
	}
	if lhs.Value != nil && storeVal != nil {
		a.Builder.Store(storeVal, lhs.Value)
	}
	return ExprResult{Type: target, Value: lhs.Value, Ok: true}
}

func (a *Analyzer) VisitCall(e *ast.CallExpr) any {
	callee, ok := a.analyzeExpr(e.Callee)
	if !ok {
		return ExprResult{}
	}
	var args []ExprResult
	for _, ae := range e.Args {
		r, ok := a.analyzeExpr(ae)
		if !ok {
			return ExprResult{}
		}
		args = append(args, r)
	}
	matches := resolveOverload(callee.Symbols, args)
	if len(matches) == 0 {
		a.errf(e.Pos, diagnostics.NameResolution, "no matching function for call")
		return ExprResult{}
	}
	if len(matches) > 1 {
		a.errf(e.Pos, diagnostics.NameResolution, "call to '%s' is ambiguous", matches[0].ID)
		return ExprResult{}
	}
	fn := matches[0]
	fnVal := backendValue(fn)

	var argVals []value.Value
	allPresent := true
	for i, r := range args {
		pt := fn.Type.Function.Params[i].Symbol.Type
		v := a.materialize(r, pt)
		if v == nil {
			allPresent = false
		}
		argVals = append(argVals, v)
	}
	var result value.Value
	if fnVal != nil && allPresent {
		result = a.Builder.Call(fnVal, argVals...)
	}
	return ExprResult{Type: fn.Type.Function.ReturnType, Value: result, Ok: true}
}

// resolveOverload returns every candidate in set whose parameters the
// given arguments all convert to (accounting for trailing defaulted
// parameters); the caller treats zero matches as "no matching function"
// and more than one as an ambiguous call, since this language has no
// further tie-breaking rule (best-match ranking) to fall back on.
func resolveOverload(set types.SymbolSet, args []ExprResult) []*types.Symbol {
	var matches []*types.Symbol
	for _, sym := range set.Symbols {
		fn := sym.Type.Function
		if fn == nil || len(args) > len(fn.Params) {
			continue
		}
		minArgs := 0
		for _, p := range fn.Params {
			if !p.HasDefault {
				minArgs++
			}
		}
		if len(args) < minArgs {
			continue
		}
		ok := true
		for i, arg := range args {
			if _, convOk := types.IsConvertibleTo(arg.Type, fn.Params[i].Symbol.Type, arg.Constant); !convOk {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, sym)
		}
	}
	return matches
}

func (a *Analyzer) VisitCast(e *ast.CastExpr) any {
	target, _, _ := a.applyDeclarator(&e.Abstract, a.mustResolve(&e.Target), false)
	operand, ok := a.analyzeExpr(e.Operand)
	if !ok {
		return ExprResult{}
	}
	if _, ok := types.IsConvertibleTo(operand.Type, target, operand.Constant); !ok {
		a.errf(e.Pos, diagnostics.TypeError, "invalid cast to %s", describeType(target))
		return ExprResult{}
	}
	v := a.materialize(operand, target)
	return ExprResult{Type: target, Value: v, Ok: true}
}

func (a *Analyzer) VisitMember(e *ast.MemberExpr) any {
	base, ok := a.analyzeExpr(e.Base)
	if !ok {
		return ExprResult{}
	}
	bt := types.Decay(base.Type)
	var objAddr value.Value
	if e.Arrow {
		if !bt.IsPointer() {
			a.errf(e.Pos, diagnostics.TypeError, "member reference type is not a pointer")
			return ExprResult{}
		}
		objAddr = a.materialize(base, bt)
		bt.Pointers = bt.Pointers[:len(bt.Pointers)-1]
	} else if base.Type.IsReference() {
		objAddr = base.Value
	}
	if bt.Kind != types.KindClass || bt.Class == nil {
		a.errf(e.Pos, diagnostics.NameResolution, "member reference base type is not a class")
		return ExprResult{}
	}
	set := bt.Class.MemberScope.QuerySymbol(e.Member, true)
	if set.Empty() {
		a.errf(e.Pos, diagnostics.NameResolution, "no member named '%s' in '%s'", e.Member, bt.Class.Name)
		return ExprResult{}
	}
	sym := set.One()
	if sym == nil {
		return ExprResult{Symbols: set, Ok: true}
	}

	var addr value.Value
	if objAddr != nil {
		if idx, err := irgen.FieldIndex(bt.Class, sym); err == nil {
			addr = a.Builder.GEPField(objAddr, idx)
		}
	}

	// An rvalue object's member is itself an rvalue: load it rather than
	// exposing its address.
	if !e.Arrow && !base.Type.IsReference() {
		t := types.Decay(sym.Type)
		var v value.Value
		if addr != nil {
			v = a.Builder.Load(sym.Type, addr)
		}
		return ExprResult{Type: t, Value: v, Symbols: set, Ok: true}
	}

	t := sym.Type.WithPointer(types.PointerDescriptor{Kind: types.PtrReference})
	return ExprResult{Type: t, Value: addr, Symbols: set, Ok: true}
}

func (a *Analyzer) VisitIndex(e *ast.IndexExpr) any {
	base, bok := a.analyzeExpr(e.Base)
	idx, iok := a.analyzeExpr(e.Index)
	if !bok || !iok {
		return ExprResult{}
	}

	firstDecay := types.Decay(base.Type)
	wasArray := firstDecay.IsArray()
	decayed := firstDecay
	if wasArray {
		decayed = types.Decay(decayed)
	}
	if !decayed.IsPointer() {
		a.errf(e.Pos, diagnostics.TypeError, "subscripted value is not an array or pointer")
		return ExprResult{}
	}

	idxType := types.Decay(idx.Type)
	if idxType.Kind == types.KindFundamental && !idxType.Fund.IsIntegral() {
		a.errf(e.Pos, diagnostics.TypeError, "array subscript is not an integer")
		return ExprResult{}
	}
	if idxType.Kind != types.KindFundamental && idxType.Kind != types.KindEnum {
		a.errf(e.Pos, diagnostics.TypeError, "array subscript is not an integer")
		return ExprResult{}
	}

	elem := decayed
	elem.Pointers = elem.Pointers[:len(elem.Pointers)-1]
	resultType := elem.WithPointer(types.PointerDescriptor{Kind: types.PtrReference})

	idxVal := a.materialize(idx, types.Fundamental(types.Int))
	var addr value.Value
	elemLL := a.Builder.LLVMType(elem)
	if wasArray {
		if base.Value != nil && idxVal != nil {
			zero := constant.NewInt(irtypes.I32, 0)
			arrLL := a.Builder.LLVMType(firstDecay)
			addr = a.Builder.GEP(arrLL, base.Value, zero, idxVal)
		}
	} else {
		basePtr := a.materialize(base, decayed)
		if basePtr != nil && idxVal != nil {
			addr = a.Builder.GEP(elemLL, basePtr, idxVal)
		}
	}

	return ExprResult{Type: resultType, Value: addr, Ok: true}
}

func (a *Analyzer) VisitSizeofType(e *ast.SizeofTypeExpr) any {
	t, _, _ := a.applyDeclarator(&e.Abstract, a.mustResolve(&e.Specifier), false)
	if !t.IsComplete() {
		a.errf(e.Pos, diagnostics.TypeError, "sizeof applied to incomplete type")
		return ExprResult{}
	}
	c := types.IntConstant(int64(t.Size()))
	return ExprResult{Type: types.Fundamental(types.ULong), Constant: &c, Ok: true}
}
