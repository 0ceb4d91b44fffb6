package sema

import (
	"sysc/internal/ast"
	"sysc/internal/diagnostics"
	"sysc/internal/types"
)

// analyzeInitializer handles the three initializer forms: an assignment
// initializer is checked for convertibility and stored; a list
// initializer bounds its element count against array size (or accepts
// zero/one elements for a scalar); a parenthesized initializer defers to
// constructor resolution for class types, which this specification
// leaves unimplemented per the Open Question decision recorded in
// DESIGN.md. A const-qualified variable without any initializer is an
// error.
func (a *Analyzer) analyzeInitializer(pos ast.Pos, sym *types.Symbol, init ast.Initializer, st DeclState) {
	isGlobal := a.scope == a.root

	switch init.Kind {
	case ast.InitNone:
		if sym.Type.CV == types.CVConst {
			a.errf(pos, diagnostics.Misc, "default initialization of an object of const type '%s'", describeType(sym.Type))
		}
		return

	case ast.InitAssign:
		res, ok := a.analyzeExpr(init.Expr)
		if !ok {
			return
		}
		if isGlobal && res.Constant == nil {
			a.errf(pos, diagnostics.Misc, "non-constant initializer for global '%s'", sym.ID)
			return
		}
		conv, ok := types.IsConvertibleTo(res.Type, sym.Type, res.Constant)
		if !ok {
			a.errf(pos, diagnostics.TypeError, "cannot initialize '%s' of type %s with an expression of type %s",
				sym.ID, describeType(sym.Type), describeType(res.Type))
			return
		}
		a.emitInitStore(sym, res, conv, isGlobal)

	case ast.InitList:
		a.analyzeListInit(pos, sym, init.Elems, isGlobal)

	case ast.InitParen:
		if sym.Type.Kind == types.KindClass {
			a.errf(pos, diagnostics.Misc, "unimplemented: constructor resolution for class-type initialization")
			return
		}
		if len(init.Args) != 1 {
			a.errf(pos, diagnostics.Misc, "scalar initializer must have exactly one argument")
			return
		}
		a.analyzeInitializer(pos, sym, ast.Initializer{Kind: ast.InitAssign, Expr: init.Args[0]}, st)
	}
}

func (a *Analyzer) analyzeListInit(pos ast.Pos, sym *types.Symbol, elems []ast.Expr, isGlobal bool) {
	if sym.Type.IsArray() {
		arrLen := sym.Type.Arrays[0].Size
		if arrLen > 0 && len(elems) > arrLen {
			a.errf(pos, diagnostics.Misc, "too many initializers for array of size %d", arrLen)
			return
		}
		elemType := sym.Type
		elemType.Arrays = sym.Type.Arrays[1:]
		for _, e := range elems {
			res, ok := a.analyzeExpr(e)
			if !ok {
				continue
			}
			if _, ok := types.IsConvertibleTo(res.Type, elemType, res.Constant); !ok {
				a.errf(pos, diagnostics.TypeError, "array element not convertible to %s", describeType(elemType))
			}
		}
		return
	}
	if len(elems) > 1 {
		a.errf(pos, diagnostics.Misc, "too many initializers for scalar '%s'", sym.ID)
		return
	}
	if len(elems) == 0 {
		return // zero elements: nothing to check; no store is emitted
	}
	res, ok := a.analyzeExpr(elems[0])
	if !ok {
		return
	}
	if _, ok := types.IsConvertibleTo(res.Type, sym.Type, res.Constant); !ok {
		a.errf(pos, diagnostics.TypeError, "cannot initialize '%s' of type %s", sym.ID, describeType(sym.Type))
	}
	_ = isGlobal
}

// emitInitStore lowers the converted initializer value into sym's
// backend storage: a global definition for file-scope symbols, or a
// stack-slot store for locals.
func (a *Analyzer) emitInitStore(sym *types.Symbol, res ExprResult, conv types.Conversion, isGlobal bool) {
	if isGlobal {
		init := a.Builder.ZeroValue(sym.Type)
		if res.Constant != nil {
			fund := sym.Type.Fund
			if conv.RefinedConstant != nil {
				init = a.Builder.Constant(*conv.RefinedConstant, fund)
			} else {
				init = a.Builder.Constant(*res.Constant, fund)
			}
		}
		sym.Backend = a.Builder.Global(sym.ID, sym.Type, init, sym.Attr == types.AttrStatic)
		return
	}
	slot := a.Builder.Alloca(sym.ID, sym.Type)
	sym.Backend = slot
	if v := a.materialize(res, sym.Type); v != nil {
		a.Builder.Store(v, slot)
	}
}

func describeType(t types.Type) string {
	if t.Kind == types.KindFundamental {
		return t.Fund.String()
	}
	if t.Kind == types.KindClass && t.Class != nil {
		return t.Class.Name
	}
	if t.Kind == types.KindEnum && t.Enum != nil {
		return t.Enum.Name
	}
	return "?"
}
