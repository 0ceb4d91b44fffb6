package sema

import (
	"sysc/internal/ast"
	"sysc/internal/diagnostics"
	"sysc/internal/types"
)

// AnalyzeDeclaration processes one top-level or block-scope declaration,
// implementing the declarator walk and id-declarator resolution.
func (a *Analyzer) AnalyzeDeclaration(d *ast.Declaration, st DeclState) {
	spec := d.Specifier

	if spec.ClassBody != nil {
		cd := a.analyzeClassSpecifier(spec.ClassBody, st)
		a.declareInstances(d, types.ClassType(cd), st)
		return
	}
	if spec.EnumBody != nil {
		ed := a.analyzeEnumSpecifier(spec.EnumBody)
		a.declareInstances(d, types.EnumType(ed), st)
		return
	}

	base, ok := a.resolveTypeSpecifier(&spec)
	if !ok {
		return
	}
	if spec.IsConst {
		base = base.AsConst()
	}
	a.declareInstances(d, base, st)
}

// declareInstances applies each declarator in d to base, in turn
// handling typedefs, function declarations/definitions, and variable
// declarations with their initializers.
func (a *Analyzer) declareInstances(d *ast.Declaration, base types.Type, st DeclState) {
	spec := d.Specifier
	for i := range d.Declarators {
		id := &d.Declarators[i]
		full, name, idNode := a.applyDeclarator(&id.Declarator, base, st.Phase == PhaseParameter)
		name = composeId(idNode, a.currentClassName())

		if spec.IsTypedef {
			if err := a.scope.AddTypedef(name, full); err != nil {
				a.errf(d.Pos, diagnostics.Redefinition, "%s", err)
			}
			continue
		}

		if full.IsFunction() {
			a.declareFunction(d.Pos, name, full.Function, id, st, spec.IsStatic)
			continue
		}

		attr := types.AttrNormal
		if spec.IsStatic {
			attr = types.AttrStatic
		}
		sym := &types.Symbol{ID: name, Type: full, Attr: attr, Access: st.Access}
		merged, err := a.scope.AddSymbol(sym)
		if err != nil {
			a.errf(d.Pos, diagnostics.Redefinition, "%s", err)
			continue
		}
		a.analyzeInitializer(d.Pos, merged, id.Init, st)
	}
}

// declareFunction inserts a function symbol, prepends a hidden `this`
// parameter for non-static member functions, creates the backend
// function, and — if the declarator carries a body — defers it for the
// class two-pass's second visit (or analyzes it immediately outside a
// class body).
func (a *Analyzer) declareFunction(pos ast.Pos, name string, fd *types.FunctionDescriptor, id *ast.InitDeclarator, st DeclState, isStatic bool) {
	class := a.scope.EnclosingClass
	isCtor := class != nil && name == class.Name

	if class != nil && !isStatic {
		this := types.ClassType(class).AsConst().WithPointer(types.PointerDescriptor{Kind: types.PtrPlain})
		if isCtor {
			this = types.ClassType(class).WithPointer(types.PointerDescriptor{Kind: types.PtrPlain})
		}
		fd.Params = append([]types.Param{{Symbol: &types.Symbol{ID: "this", Type: this}}}, fd.Params...)
	}

	fd.EnclosingScope = a.scope
	fd.HasBody = id.Body != nil
	sym := &types.Symbol{ID: name, Type: types.FunctionType(fd), Attr: types.AttrNormal, Access: st.Access}
	merged, err := a.scope.AddSymbol(sym)
	if err != nil {
		a.errf(pos, diagnostics.Redefinition, "%s", err)
		return
	}
	mfd := merged.Type.Function
	mfd.DefiningSymbol = merged
	if merged.Backend == nil {
		merged.Backend = a.Builder.NewFunc(mangleName(name, class), mfd)
	}

	if id.Body == nil {
		return
	}
	if class != nil && st.MemberFirstPass {
		a.deferred = append(a.deferred, deferredBody{
			Scope: a.scope, Fn: mfd, Sym: merged, Body: id.Body,
			Init: id.CtorInit, Class: class,
		})
		return
	}
	a.analyzeFunctionBody(a.scope, mfd, merged, id.Body, id.CtorInit, class)
}

func mangleName(name string, class *types.ClassDescriptor) string {
	if class == nil {
		return name
	}
	return class.Name + "." + name
}

func (a *Analyzer) currentClassName() string {
	if a.scope.EnclosingClass != nil {
		return a.scope.EnclosingClass.Name
	}
	return ""
}

// flushDeferred re-visits every member function body deferred during a
// class's first collection pass.
func (a *Analyzer) flushDeferred() {
	pending := a.deferred
	a.deferred = nil
	for _, db := range pending {
		a.analyzeFunctionBody(db.Scope, db.Fn, db.Sym, db.Body, db.Init, db.Class)
	}
}
