package sema

import (
	"sysc/internal/ast"
	"sysc/internal/diagnostics"
	"sysc/internal/types"
)

// analyzeClassSpecifier implements a two-pass class-body walk: member
// declarations are processed to collect symbols and nested types in
// declaration order (function bodies deferred), the aggregate layout is
// then fixed by construction (types.Scope lays members out as they're
// inserted), and deferred bodies are re-analyzed later by flushDeferred
// once every class in the translation unit has had its first pass.
func (a *Analyzer) analyzeClassSpecifier(cs *ast.ClassSpecifier, outer DeclState) *types.ClassDescriptor {
	cd := &types.ClassDescriptor{Name: cs.Name}

	if cs.Base != nil {
		base := a.scope.QueryClass(cs.Base.Name, false)
		if base == nil {
			a.errf(cs.Base.Pos, diagnostics.NameResolution, "no class named '%s'", cs.Base.Name)
		} else {
			cd.Base = &types.BaseSpec{Class: base, Access: types.Access(cs.Base.Access)}
		}
	}

	if cd.Name != "" {
		if err := a.scope.AddClass(cd); err != nil {
			a.errf(cs.Pos, diagnostics.Redefinition, "%s", err)
		}
	}

	classScope := types.NewScope(a.scope, cd, nil)
	if cd.Base != nil {
		classScope.SetStartOffset(cd.Base.Class.MemberScope.ScopeSize())
	}
	cd.MemberScope = classScope

	outerScope := a.scope
	a.scope = classScope
	for i := range cs.Members {
		a.analyzeMember(&cs.Members[i])
	}
	a.scope = outerScope

	return cd
}

// analyzeMember processes one class-body member declaration: either a
// nested-type-only member, one or more data/function declarators
// sharing a specifier, or a member-function definition (deferred to the
// second pass).
func (a *Analyzer) analyzeMember(m *ast.MemberDeclaration) {
	spec := m.Specifier
	st := DeclState{Phase: PhaseFull, IsFriend: spec.IsFriend, MemberFirstPass: true, Access: types.Access(m.Access)}

	if spec.IsFriend {
		if len(m.Declarators) == 1 && spec.Type == ast.SpecNamed {
			if friend := a.scope.QueryClass(spec.Name, false); friend != nil {
				a.scope.EnclosingClass.Friends = append(a.scope.EnclosingClass.Friends, friend)
			}
		}
		return
	}

	var base types.Type
	ok := true
	switch {
	case spec.ClassBody != nil:
		base = types.ClassType(a.analyzeClassSpecifier(spec.ClassBody, st))
	case spec.EnumBody != nil:
		base = types.EnumType(a.analyzeEnumSpecifier(spec.EnumBody))
	default:
		base, ok = a.resolveTypeSpecifier(&spec)
	}
	if !ok {
		return
	}
	if spec.IsConst {
		base = base.AsConst()
	}

	for i := range m.Declarators {
		decl := &m.Declarators[i]
		full, name, idNode := a.applyDeclarator(decl, base, false)
		name = composeId(idNode, a.currentClassName())

		if spec.IsTypedef {
			if err := a.scope.AddTypedef(name, full); err != nil {
				a.errf(m.Pos, diagnostics.Redefinition, "%s", err)
			}
			continue
		}

		if full.IsFunction() {
			id := ast.InitDeclarator{Declarator: *decl, Body: m.FunctionDef, CtorInit: m.CtorInit}
			a.declareFunction(m.Pos, name, full.Function, &id, st, spec.IsStatic)
			continue
		}

		attr := types.AttrNormal
		if spec.IsStatic {
			attr = types.AttrStatic
		}
		if spec.IsFriend {
			attr = types.AttrNormal
		}
		sym := &types.Symbol{ID: name, Type: full, Attr: attr, Access: st.Access}
		if _, err := a.scope.AddSymbol(sym); err != nil {
			a.errf(m.Pos, diagnostics.Redefinition, "%s", err)
		}
	}
}
