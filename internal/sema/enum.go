package sema

import (
	"sysc/internal/ast"
	"sysc/internal/diagnostics"
	"sysc/internal/types"
)

// analyzeEnumSpecifier applies the enum rule: each enumerator
// expression is evaluated in a no-decl state, an omitted value takes
// the previous one plus one (starting at 0), and every enumerator is
// inserted as a constant symbol of the enum's own type.
func (a *Analyzer) analyzeEnumSpecifier(es *ast.EnumSpecifier) *types.EnumDescriptor {
	ed := &types.EnumDescriptor{Name: es.Name}
	if ed.Name != "" {
		if err := a.scope.AddEnum(ed); err != nil {
			a.errf(es.Pos, diagnostics.Redefinition, "%s", err)
		}
	}
	enumType := types.EnumType(ed)

	next := int64(0)
	for _, e := range es.Enumerators {
		val := next
		if e.Value != nil {
			if c, _, ok := a.foldConstInt(e.Value); ok {
				val = c
			} else {
				a.errf(e.Pos, diagnostics.Misc, "enumerator value for '%s' is not a constant expression", e.Name)
			}
		}
		next = val + 1
		cv := types.IntConstant(val)
		sym := &types.Symbol{ID: e.Name, Type: enumType, Attr: types.AttrConstant, ConstValue: &cv}
		if _, err := a.scope.AddSymbol(sym); err != nil {
			a.errf(e.Pos, diagnostics.Redefinition, "%s", err)
		}
	}
	return ed
}
