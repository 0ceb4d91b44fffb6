// Package irgen is the IR Builder described in the compiler core: it
// turns source types and constants into LLVM IR, backed by
// github.com/llir/llvm, and emits the control-flow and conversion
// instruction sequences the semantic analyzer drives it with.
package irgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sysc/internal/types"
)

// Builder owns one LLVM module and the memo tables that make type/class
// lowering idempotent across repeated lookups.
type Builder struct {
	Module *ir.Module

	classTypes map[*types.ClassDescriptor]*irtypes.StructType
	cur        *ir.Block // current insertion block; nil once terminated
	curFunc    *ir.Func
}

// NewBuilder creates an empty module named src, mirroring the module
// construction step of GenerateModule in the codegen reference this
// package is grounded on.
func NewBuilder(src string) *Builder {
	m := ir.NewModule()
	m.SourceFilename = src
	return &Builder{Module: m, classTypes: make(map[*types.ClassDescriptor]*irtypes.StructType)}
}

// LLVMType lowers a source type to its backend representation. Class
// types are memoized per descriptor so repeated lookups of the same
// class share one LLVM struct type, matching the "memoized per class
// descriptor" requirement.
func (b *Builder) LLVMType(t types.Type) irtypes.Type {
	base := b.baseLLVMType(t)
	if t.IsArray() {
		for i := len(t.Arrays) - 1; i >= 0; i-- {
			a := t.Arrays[i]
			n := uint64(a.Size)
			if n == 0 {
				n = 0
			}
			base = irtypes.NewArray(n, base)
		}
	}
	for range t.Pointers {
		base = irtypes.NewPointer(base)
	}
	return base
}

func (b *Builder) baseLLVMType(t types.Type) irtypes.Type {
	switch t.Kind {
	case types.KindFundamental:
		return fundLLVMType(t.Fund)
	case types.KindEnum:
		return irtypes.I32
	case types.KindClass:
		return b.classType(t.Class)
	case types.KindFunction:
		return b.funcLLVMType(t.Function)
	default:
		return irtypes.Void
	}
}

func fundLLVMType(f types.FundamentalType) irtypes.Type {
	switch f {
	case types.Void:
		return irtypes.Void
	case types.Bool:
		return irtypes.I1
	case types.Char, types.UChar:
		return irtypes.I8
	case types.Short, types.UShort:
		return irtypes.I16
	case types.Int, types.UInt:
		return irtypes.I32
	case types.Long, types.ULong:
		return irtypes.I64
	case types.Float:
		return irtypes.Float
	case types.Double:
		return irtypes.Double
	default:
		return irtypes.Void
	}
}

// classType materializes (or retrieves) the LLVM struct type for a
// class: a flat field list over the class's data members in layout
// order, with the base class's fields (if any) prepended, since
// single inheritance lays the base out first.
func (b *Builder) classType(c *types.ClassDescriptor) *irtypes.StructType {
	if st, ok := b.classTypes[c]; ok {
		return st
	}
	st := irtypes.NewStruct()
	b.classTypes[c] = st // register before recursing, so a self-referential pointer member sees this entry
	if c.Base != nil {
		base := b.classType(c.Base.Class)
		st.Fields = append(st.Fields, base.Fields...)
	}
	for _, sym := range c.MemberScope.SortedSymbols() {
		st.Fields = append(st.Fields, b.LLVMType(sym.Type))
	}
	if len(st.Fields) == 0 {
		st.Fields = []irtypes.Type{irtypes.I8}
	}
	if c.Name != "" {
		st.TypeName = c.Name
		b.Module.NewTypeDef(c.Name, st)
	}
	return st
}

func (b *Builder) funcLLVMType(f *types.FunctionDescriptor) *irtypes.FuncType {
	ft := &irtypes.FuncType{RetType: b.LLVMType(f.ReturnType)}
	for _, p := range f.Params {
		ft.Params = append(ft.Params, b.LLVMType(p.Symbol.Type))
	}
	return ft
}

// ZeroValue returns the zero-initializer constant for t, used for
// default-constructed locals/globals and scalar list-initializers with
// zero elements.
func (b *Builder) ZeroValue(t types.Type) constant.Constant {
	if len(t.Pointers) > 0 {
		return constant.NewNull(b.LLVMType(t).(*irtypes.PointerType))
	}
	switch lt := b.LLVMType(t).(type) {
	case *irtypes.IntType:
		return constant.NewInt(lt, 0)
	case *irtypes.FloatType:
		return constant.NewFloat(lt, 0)
	case *irtypes.ArrayType, *irtypes.StructType:
		return constant.NewZeroInitializer(lt)
	default:
		return constant.NewZeroInitializer(lt)
	}
}

// Constant lowers a folded source constant of fundamental type f to an
// LLVM constant.
func (b *Builder) Constant(c types.Constant, f types.FundamentalType) constant.Constant {
	lt := fundLLVMType(f)
	switch c.Kind {
	case types.ConstBool:
		v := int64(0)
		if c.BoolVal {
			v = 1
		}
		return constant.NewInt(lt.(*irtypes.IntType), v)
	case types.ConstChar:
		return constant.NewInt(lt.(*irtypes.IntType), int64(c.CharVal))
	case types.ConstFloat:
		return constant.NewFloat(lt.(*irtypes.FloatType), c.FloatVal)
	default:
		if it, ok := lt.(*irtypes.IntType); ok {
			return constant.NewInt(it, c.IntVal)
		}
		return constant.NewFloat(lt.(*irtypes.FloatType), float64(c.IntVal))
	}
}

// NewFunc declares a function in the module with the given source
// signature, memoizing nothing itself (the caller's symbol table keeps
// the *ir.Func as the symbol's backend value).
func (b *Builder) NewFunc(name string, fd *types.FunctionDescriptor) *ir.Func {
	ret := b.LLVMType(fd.ReturnType)
	fn := b.Module.NewFunc(name, ret)
	for _, p := range fd.Params {
		param := ir.NewParam(p.Symbol.ID, b.LLVMType(p.Symbol.Type))
		fn.Params = append(fn.Params, param)
	}
	return fn
}

// StartFunction opens the entry block of fn and copies each parameter
// into a stack slot, so later local-address-of and mutation has a
// uniform alloca/load/store story regardless of whether the name was a
// parameter or a local, matching the reference generator's parameter
// handling.
func (b *Builder) StartFunction(fn *ir.Func, params []*types.Symbol) map[string]value.Value {
	entry := fn.NewBlock(fn.Name() + ".entry")
	b.cur = entry
	b.curFunc = fn
	slots := make(map[string]value.Value, len(params))
	for i, p := range params {
		if i >= len(fn.Params) {
			break
		}
		slot := entry.NewAlloca(fn.Params[i].Type())
		slot.SetName(p.ID + ".addr")
		entry.NewStore(fn.Params[i], slot)
		slots[p.ID] = slot
		p.Backend = slot
	}
	return slots
}

// Alloca reserves a stack slot for a local of type t, emitting the
// alloca into the current block (which is the entry block only for
// slots created before any branch).
func (b *Builder) Alloca(name string, t types.Type) value.Value {
	slot := b.cur.NewAlloca(b.LLVMType(t))
	slot.SetName(name + ".addr")
	return slot
}

// NewBlock appends a fresh basic block to the function currently being
// emitted.
func (b *Builder) NewBlock(label string) *ir.Block {
	return b.curFunc.NewBlock(label)
}

// SetInsertPoint redirects subsequent emission to blk.
func (b *Builder) SetInsertPoint(blk *ir.Block) { b.cur = blk }

// terminated reports whether the current block already has a
// terminator, in which case further emission into it is a deliberate
// no-op: a block's terminator is emitted exactly once.
func (b *Builder) terminated() bool {
	return b.cur == nil || b.cur.Term != nil
}

// Br emits an unconditional branch, unless the current block is already
// terminated.
func (b *Builder) Br(target *ir.Block) {
	if b.terminated() {
		return
	}
	b.cur.NewBr(target)
}

// CondBr emits a conditional branch, unless the current block is
// already terminated.
func (b *Builder) CondBr(cond value.Value, then, els *ir.Block) {
	if b.terminated() {
		return
	}
	b.cur.NewCondBr(cond, then, els)
}

// Switch emits a switch over cond with one successor per case value and
// a mandatory default, unless the current block is already terminated.
func (b *Builder) Switch(cond value.Value, def *ir.Block, cases map[int64]*ir.Block) {
	if b.terminated() {
		return
	}
	var llCases []*ir.Case
	for v, blk := range cases {
		lt, ok := cond.Type().(*irtypes.IntType)
		if !ok {
			continue
		}
		llCases = append(llCases, ir.NewCase(constant.NewInt(lt, v), blk))
	}
	b.cur.NewSwitch(cond, def, llCases...)
}

// Ret emits a return, unless the current block is already terminated.
func (b *Builder) Ret(v value.Value) {
	if b.terminated() {
		return
	}
	if v == nil {
		b.cur.NewRet(nil)
		return
	}
	b.cur.NewRet(v)
}

// Phi emits a φ-node at the start of the current block selecting among
// incoming values per predecessor, implementing the merge-point
// requirement that the reference generator this package is
// grounded on leaves unimplemented.
func (b *Builder) Phi(t types.Type, incoming map[*ir.Block]value.Value) *ir.InstPhi {
	var incs []*ir.Incoming
	for pred, v := range incoming {
		incs = append(incs, ir.NewIncoming(v, pred))
	}
	return b.cur.NewPhi(incs...)
}

// Load dereferences a pointer/stack-slot value.
func (b *Builder) Load(elem types.Type, addr value.Value) value.Value {
	return b.cur.NewLoad(b.LLVMType(elem), addr)
}

// Store writes v into addr.
func (b *Builder) Store(v value.Value, addr value.Value) {
	b.cur.NewStore(v, addr)
}

// GEP computes the address of the idx'th field/element below base.
func (b *Builder) GEP(elem irtypes.Type, base value.Value, indices ...value.Value) value.Value {
	return b.cur.NewGetElementPtr(elem, base, indices...)
}

// GEPField computes the address of data-member index idx within the
// struct base points to, per FieldIndex's layout.
func (b *Builder) GEPField(base value.Value, idx int) value.Value {
	ptrType, ok := base.Type().(*irtypes.PointerType)
	if !ok {
		return base
	}
	zero := constant.NewInt(irtypes.I32, 0)
	i := constant.NewInt(irtypes.I32, int64(idx))
	return b.cur.NewGetElementPtr(ptrType.ElemType, base, zero, i)
}

// Terminated reports whether the current insertion block already ends
// in a terminator, so callers outside this package (the function-body
// walk's implicit-return fallback) can check before emitting one.
func (b *Builder) Terminated() bool { return b.terminated() }

// Call emits a direct call.
func (b *Builder) Call(fn value.Value, args ...value.Value) value.Value {
	return b.cur.NewCall(fn, args...)
}

// CurrentBlock exposes the block instructions are currently landing in,
// so callers assembling multi-block control flow (short-circuit &&/||,
// the conditional operator) can record a predecessor for a later
// φ-node.
func (b *Builder) CurrentBlock() *ir.Block { return b.cur }

// Add/Sub/Mul and the bitwise ops are signedness- and type-agnostic at
// the LLVM level, so one instruction serves integer operands of either
// signedness; Div/Rem/Shr split by signedness and FAdd/FSub/FMul/
// FDiv are the float-only counterparts, matching the per-fundamental-type
// dispatch tables in BinaryExpression::Codegen.
func (b *Builder) Add(x, y value.Value) value.Value  { return b.cur.NewAdd(x, y) }
func (b *Builder) FAdd(x, y value.Value) value.Value { return b.cur.NewFAdd(x, y) }
func (b *Builder) Sub(x, y value.Value) value.Value  { return b.cur.NewSub(x, y) }
func (b *Builder) FSub(x, y value.Value) value.Value { return b.cur.NewFSub(x, y) }
func (b *Builder) Mul(x, y value.Value) value.Value  { return b.cur.NewMul(x, y) }
func (b *Builder) FMul(x, y value.Value) value.Value { return b.cur.NewFMul(x, y) }
func (b *Builder) SDiv(x, y value.Value) value.Value { return b.cur.NewSDiv(x, y) }
func (b *Builder) UDiv(x, y value.Value) value.Value { return b.cur.NewUDiv(x, y) }
func (b *Builder) FDiv(x, y value.Value) value.Value { return b.cur.NewFDiv(x, y) }
func (b *Builder) SRem(x, y value.Value) value.Value { return b.cur.NewSRem(x, y) }
func (b *Builder) URem(x, y value.Value) value.Value { return b.cur.NewURem(x, y) }
func (b *Builder) Shl(x, y value.Value) value.Value  { return b.cur.NewShl(x, y) }
func (b *Builder) AShr(x, y value.Value) value.Value { return b.cur.NewAShr(x, y) }
func (b *Builder) LShr(x, y value.Value) value.Value { return b.cur.NewLShr(x, y) }
func (b *Builder) And(x, y value.Value) value.Value  { return b.cur.NewAnd(x, y) }
func (b *Builder) Or(x, y value.Value) value.Value   { return b.cur.NewOr(x, y) }
func (b *Builder) Xor(x, y value.Value) value.Value  { return b.cur.NewXor(x, y) }

// ICmp and FCmp emit integer/float comparisons with the predicate they
// are given. BinaryOp, LogicalNot and the float-to-bool conversion emit
// their float comparisons with the unordered family (UGT/ULT/UEQ/...),
// under which a comparison with a NaN operand is true.
func (b *Builder) ICmp(pred enum.IPred, x, y value.Value) value.Value {
	return b.cur.NewICmp(pred, x, y)
}
func (b *Builder) FCmp(pred enum.FPred, x, y value.Value) value.Value {
	return b.cur.NewFCmp(pred, x, y)
}

// Select emits a two-way value select.
func (b *Builder) Select(cond, x, y value.Value) value.Value {
	return b.cur.NewSelect(cond, x, y)
}

// Neg implements unary minus. LLVM has no integer negate instruction, so
// it's synthesized as 0 - x, the standard lowering every LLVM frontend
// uses.
func (b *Builder) Neg(f types.FundamentalType, v value.Value) value.Value {
	if f.IsFloating() {
		return b.cur.NewFNeg(v)
	}
	return b.cur.NewSub(b.Constant(types.IntConstant(0), f), v)
}

// Not implements bitwise complement as xor against all-ones.
func (b *Builder) Not(v value.Value) value.Value {
	it, ok := v.Type().(*irtypes.IntType)
	if !ok {
		return v
	}
	return b.cur.NewXor(v, constant.NewInt(it, -1))
}

// LogicalNot implements unary !, comparing the operand against its own
// fundamental type's zero value rather than assuming it's already bool.
func (b *Builder) LogicalNot(f types.FundamentalType, v value.Value) value.Value {
	zero := b.Constant(types.IntConstant(0), f)
	if f.IsFloating() {
		return b.cur.NewFCmp(enum.FPredUEQ, v, zero)
	}
	return b.cur.NewICmp(enum.IPredEQ, v, zero)
}

// BinaryOp dispatches a source binary operator to the instruction its
// common operand type requires, mirroring BinaryExpression::Codegen's
// signed/unsigned/float instruction tables.
func (b *Builder) BinaryOp(op types.BinaryOp, f types.FundamentalType, x, y value.Value) value.Value {
	switch {
	case f.IsFloating():
		switch op {
		case types.BinMul:
			return b.cur.NewFMul(x, y)
		case types.BinDiv:
			return b.cur.NewFDiv(x, y)
		case types.BinAdd:
			return b.cur.NewFAdd(x, y)
		case types.BinSub:
			return b.cur.NewFSub(x, y)
		case types.BinGt:
			return b.cur.NewFCmp(enum.FPredUGT, x, y)
		case types.BinLt:
			return b.cur.NewFCmp(enum.FPredULT, x, y)
		case types.BinLe:
			return b.cur.NewFCmp(enum.FPredULE, x, y)
		case types.BinGe:
			return b.cur.NewFCmp(enum.FPredUGE, x, y)
		case types.BinEq:
			return b.cur.NewFCmp(enum.FPredUEQ, x, y)
		default:
			return b.cur.NewFCmp(enum.FPredUNE, x, y)
		}
	case f.IsUnsigned():
		switch op {
		case types.BinMul:
			return b.cur.NewMul(x, y)
		case types.BinDiv:
			return b.cur.NewUDiv(x, y)
		case types.BinMod:
			return b.cur.NewURem(x, y)
		case types.BinAdd:
			return b.cur.NewAdd(x, y)
		case types.BinSub:
			return b.cur.NewSub(x, y)
		case types.BinShl:
			return b.cur.NewShl(x, y)
		case types.BinShr:
			return b.cur.NewLShr(x, y)
		case types.BinGt:
			return b.cur.NewICmp(enum.IPredUGT, x, y)
		case types.BinLt:
			return b.cur.NewICmp(enum.IPredULT, x, y)
		case types.BinLe:
			return b.cur.NewICmp(enum.IPredULE, x, y)
		case types.BinGe:
			return b.cur.NewICmp(enum.IPredUGE, x, y)
		case types.BinEq:
			return b.cur.NewICmp(enum.IPredEQ, x, y)
		case types.BinNe:
			return b.cur.NewICmp(enum.IPredNE, x, y)
		case types.BinAnd:
			return b.cur.NewAnd(x, y)
		case types.BinXor:
			return b.cur.NewXor(x, y)
		default:
			return b.cur.NewOr(x, y)
		}
	default:
		switch op {
		case types.BinMul:
			return b.cur.NewMul(x, y)
		case types.BinDiv:
			return b.cur.NewSDiv(x, y)
		case types.BinMod:
			return b.cur.NewSRem(x, y)
		case types.BinAdd:
			return b.cur.NewAdd(x, y)
		case types.BinSub:
			return b.cur.NewSub(x, y)
		case types.BinShl:
			return b.cur.NewShl(x, y)
		case types.BinShr:
			return b.cur.NewAShr(x, y)
		case types.BinGt:
			return b.cur.NewICmp(enum.IPredSGT, x, y)
		case types.BinLt:
			return b.cur.NewICmp(enum.IPredSLT, x, y)
		case types.BinLe:
			return b.cur.NewICmp(enum.IPredSLE, x, y)
		case types.BinGe:
			return b.cur.NewICmp(enum.IPredSGE, x, y)
		case types.BinEq:
			return b.cur.NewICmp(enum.IPredEQ, x, y)
		case types.BinNe:
			return b.cur.NewICmp(enum.IPredNE, x, y)
		case types.BinAnd:
			return b.cur.NewAnd(x, y)
		case types.BinXor:
			return b.cur.NewXor(x, y)
		default:
			return b.cur.NewOr(x, y)
		}
	}
}

// extOrTrunc widens or narrows an integer value to exactly to's bit
// width, picking sign- or zero-extension per signed; equal widths (e.g.
// char -> signed char) are a no-op. Mirrors CreateSExtOrTrunc/
// CreateZExtOrTrunc in the reference generator this is grounded on.
func (b *Builder) extOrTrunc(v value.Value, to irtypes.Type, signed bool) value.Value {
	fromIT, fromOk := v.Type().(*irtypes.IntType)
	toIT, toOk := to.(*irtypes.IntType)
	if !fromOk || !toOk || fromIT.BitSize == toIT.BitSize {
		return v
	}
	if fromIT.BitSize < toIT.BitSize {
		if signed {
			return b.cur.NewSExt(v, to)
		}
		return b.cur.NewZExt(v, to)
	}
	return b.cur.NewTrunc(v, to)
}

func (b *Builder) fpCast(v value.Value, to irtypes.Type) value.Value {
	fromFT, fromOk := v.Type().(*irtypes.FloatType)
	toFT, toOk := to.(*irtypes.FloatType)
	if !fromOk || !toOk || fromFT.Kind == toFT.Kind {
		return v
	}
	if toFT.Kind == irtypes.FloatKindDouble {
		return b.cur.NewFPExt(v, to)
	}
	return b.cur.NewFPTrunc(v, to)
}

// convertFund implements ConvertFundType's fundamental-to-fundamental
// conversion table: a conversion to bool is a compare-against-zero
// rather than a truncation (so the result is never anything but 0 or
// 1), integers convert to floats with [SU]IToFP and back with
// FPTo[SU]I, and bool itself widens by zero-extension (it carries no
// sign to preserve) rather than the reference generator's sign-extend,
// since this package lowers bool to i1.
func (b *Builder) convertFund(from, to types.FundamentalType, v value.Value) value.Value {
	if from == to {
		return v
	}
	toLL := fundLLVMType(to)

	if to == types.Bool {
		zero := b.Constant(types.IntConstant(0), from)
		if from.IsFloating() {
			return b.cur.NewFCmp(enum.FPredUNE, v, zero)
		}
		return b.cur.NewICmp(enum.IPredNE, v, zero)
	}

	if to.IsFloating() {
		switch {
		case from.IsFloating():
			return b.fpCast(v, toLL)
		case from == types.Bool || from.IsUnsigned():
			return b.cur.NewUIToFP(v, toLL)
		default:
			return b.cur.NewSIToFP(v, toLL)
		}
	}

	switch {
	case from.IsFloating():
		if to.IsUnsigned() {
			return b.cur.NewFPToUI(v, toLL)
		}
		return b.cur.NewFPToSI(v, toLL)
	case from == types.Bool:
		return b.extOrTrunc(v, toLL, false)
	default:
		return b.extOrTrunc(v, toLL, !from.IsUnsigned())
	}
}

// Convert implements the implicit-conversion sequence types.IsConvertibleTo
// describes, turning from's value representation into to's: a load for
// lvalue->rvalue, a two-index GEP for array decay, an alloca+store to
// materialize a temporary bound to a const reference, convertFund's
// table for numeric conversions, and a bitcast or icmp-against-null for
// pointer conversions. Mirrors CodeGenHelper::ConvertType.
func (b *Builder) Convert(from, to types.Type, v value.Value) value.Value {
	if from.Equals(to) {
		return v
	}

	if from.IsReference() && !to.IsReference() {
		referent := types.Decay(from)
		if !referent.IsFunction() && !referent.IsArray() {
			v = b.Load(referent, v)
			from = referent.Unqualified()
		}
	}

	if from.IsArray() && to.IsPointer() {
		if at, ok := b.LLVMType(from).(*irtypes.ArrayType); ok {
			zero := constant.NewInt(irtypes.I32, 0)
			v = b.cur.NewGetElementPtr(at.ElemType, v, zero, zero)
		}
		from = types.Decay(from)
	}

	if from.IsFunction() {
		from = types.Decay(from)
	}

	if to.IsReference() && !from.IsReference() {
		slot := b.cur.NewAlloca(b.LLVMType(from))
		b.cur.NewStore(v, slot)
		v = slot
		from = from.WithPointer(types.PointerDescriptor{Kind: types.PtrReference, CV: to.CV})
	}

	if from.Equals(to) {
		return v
	}

	fromNumeric := len(from.Pointers) == 0 && (from.Kind == types.KindFundamental || from.Kind == types.KindEnum)
	toNumeric := len(to.Pointers) == 0 && (to.Kind == types.KindFundamental || to.Kind == types.KindEnum)
	if fromNumeric && toNumeric {
		ff, tf := from.Fund, to.Fund
		if from.Kind == types.KindEnum {
			ff = types.Int
		}
		if to.Kind == types.KindEnum {
			tf = types.Int
		}
		return b.convertFund(ff, tf, v)
	}

	if from.IsPointer() && to.IsPointer() {
		return b.cur.NewBitCast(v, b.LLVMType(to))
	}

	if from.IsPointer() && len(to.Pointers) == 0 && to.Kind == types.KindFundamental && to.Fund == types.Bool {
		if pt, ok := v.Type().(*irtypes.PointerType); ok {
			return b.cur.NewICmp(enum.IPredNE, v, constant.NewNull(pt))
		}
	}

	return v
}

// Global declares a module-level variable with the given linkage;
// requires external linkage by default and internal linkage for
// file-static variables.
func (b *Builder) Global(name string, t types.Type, init constant.Constant, static bool) *ir.Global {
	g := b.Module.NewGlobalDef(name, init)
	if static {
		g.Linkage = enum.LinkageInternal
	}
	return g
}

// FieldIndex finds the struct-field index of a class's data member, for
// GEP-based member access.
func FieldIndex(c *types.ClassDescriptor, member *types.Symbol) (int, error) {
	base := 0
	if c.Base != nil {
		n, err := fieldCount(c.Base.Class)
		if err != nil {
			return 0, err
		}
		base = n
	}
	for i, s := range c.MemberScope.SortedSymbols() {
		if s == member {
			return base + i, nil
		}
	}
	return 0, fmt.Errorf("member %q not laid out in class %q", member.ID, c.Name)
}

func fieldCount(c *types.ClassDescriptor) (int, error) {
	n := len(c.MemberScope.SortedSymbols())
	if c.Base != nil {
		baseN, err := fieldCount(c.Base.Class)
		if err != nil {
			return 0, err
		}
		n += baseN
	}
	return n, nil
}
