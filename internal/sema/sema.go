// Package sema is the Declaration Analyzer and Expression/Statement
// Analyzer: it walks an internal/ast tree, resolves
// names and types against internal/types' scope tree, folds constants,
// drives internal/irgen to materialize the backend representation, and
// reports failures through internal/diagnostics without aborting the
// walk.
package sema

import (
	"github.com/llir/llvm/ir"

	"sysc/internal/ast"
	"sysc/internal/diagnostics"
	"sysc/internal/irgen"
	"sysc/internal/types"
)

// Phase mirrors DeclarationState.phase: how much context the declarator
// walk currently has to work with.
type Phase int

const (
	PhaseNoDecl Phase = iota
	PhaseParameter
	PhaseMinimal
	PhaseLocal
	PhaseFull
)

// DeclState tracks the ambient declaration context threaded through one
// declarator walk.
type DeclState struct {
	Phase           Phase
	IsFriend        bool
	IsTypedef       bool
	MustComplete    bool
	MemberFirstPass bool
	Access          types.Access
}

// deferredBody is a snapshot of the analysis context needed to analyze
// a member function's body on the class two-pass's second visit.
type deferredBody struct {
	Scope  *types.Scope
	Fn     *types.FunctionDescriptor
	Sym    *types.Symbol
	Body   *ast.CompoundStmt
	Params []ast.ParamDeclaration
	Init   []ast.CtorMemInit
	Class  *types.ClassDescriptor
}

// loopCtx is pushed while analyzing a loop or switch body, so break and
// continue can be validated and targeted at the right merge block.
type loopCtx struct {
	isSwitch    bool
	breakBlock  *ir.Block
	continueBlk *ir.Block
}

// Analyzer holds everything one compilation pass threads through: the
// current scope, diagnostic sink, and IR builder.
type Analyzer struct {
	Sink    *diagnostics.Sink
	Builder *irgen.Builder

	root     *types.Scope
	scope    *types.Scope
	deferred []deferredBody
	loops    []loopCtx

	anonCount int
}

// New creates an analyzer over a fresh root scope, emitting into a new
// module named after sourceName.
func New(sourceName string) *Analyzer {
	root := types.NewRootScope()
	return &Analyzer{
		Sink:    &diagnostics.Sink{},
		Builder: irgen.NewBuilder(sourceName),
		root:    root,
		scope:   root,
	}
}

// AnalyzeTranslationUnit walks every top-level declaration, recovering
// at each declaration boundary: an error in
// one declaration does not block later ones.
func (a *Analyzer) AnalyzeTranslationUnit(tu *ast.TranslationUnit) {
	for i := range tu.Decls {
		a.analyzeDeclarationRecovering(&tu.Decls[i], DeclState{Phase: PhaseFull})
	}
	a.flushDeferred()
}

// analyzeDeclarationRecovering wraps AnalyzeDeclaration so a panic-free
// error path (errors are values here, not panics) still gives future
// declarations in the same translation unit/compound statement a clean
// scope to continue from; today that's a direct call since nothing in
// this analyzer panics, but the wrapper is the recovery boundary and
// is where a future recover() would go if the walk ever grew one.
func (a *Analyzer) analyzeDeclarationRecovering(d *ast.Declaration, st DeclState) {
	a.AnalyzeDeclaration(d, st)
}

func (a *Analyzer) errf(pos ast.Pos, kind diagnostics.Kind, format string, args ...any) {
	a.Sink.Errorf(kind, pos.Loc(), format, args...)
}

// resolveTypeSpecifier turns a decl-specifier's type portion into a base
// types.Type (unwrapped of any declarator pointer/array/function
// layers, and without its own CV, which the caller applies).
func (a *Analyzer) resolveTypeSpecifier(spec *ast.DeclSpecifier) (types.Type, bool) {
	switch spec.Type {
	case ast.SpecVoid:
		return types.Fundamental(types.Void), true
	case ast.SpecBool:
		return types.Fundamental(types.Bool), true
	case ast.SpecChar:
		return types.Fundamental(types.Char), true
	case ast.SpecShort:
		return types.Fundamental(types.Short), true
	case ast.SpecInt:
		return types.Fundamental(types.Int), true
	case ast.SpecLong:
		return types.Fundamental(types.Long), true
	case ast.SpecFloat:
		return types.Fundamental(types.Float), true
	case ast.SpecDouble:
		return types.Fundamental(types.Double), true
	case ast.SpecUnsigned:
		return types.Fundamental(types.UInt), true
	case ast.SpecNamed:
		if cd := a.scope.QueryClass(spec.Name, false); cd != nil {
			return types.ClassType(cd), true
		}
		if ed := a.scope.QueryEnum(spec.Name, false); ed != nil {
			return types.EnumType(ed), true
		}
		if td, ok := a.scope.QueryTypedef(spec.Name, false); ok {
			return td, true
		}
		a.errf(spec.Pos, diagnostics.NameResolution, "no type named '%s'", spec.Name)
		return types.Type{}, false
	default:
		a.errf(spec.Pos, diagnostics.Misc, "declaration has no type specifier")
		return types.Type{}, false
	}
}

// applyDeclarator walks a declarator chain innermost-outward, building
// the full type around base and returning the declared identifier (or
// "" for an abstract declarator).
func (a *Analyzer) applyDeclarator(d *ast.Declarator, base types.Type, isParam bool) (types.Type, string, *ast.Declarator) {
	if d == nil {
		return base, "", nil
	}
	switch d.Kind {
	case ast.DeclId:
		return base, d.Name, d
	case ast.DeclPointer:
		inner, name, idNode := a.applyDeclarator(d.Inner, base, isParam)
		return inner.WithPointer(types.PointerDescriptor{Kind: types.PtrPlain, CV: cvOf(d.PointeeConst)}), name, idNode
	case ast.DeclReference:
		inner, name, idNode := a.applyDeclarator(d.Inner, base, isParam)
		if inner.IsArray() {
			a.errf(d.Pos, diagnostics.TypeError, "reference cannot be an array element")
		}
		return inner.WithPointer(types.PointerDescriptor{Kind: types.PtrReference}), name, idNode
	case ast.DeclArray:
		elem, name, idNode := a.applyDeclarator(d.Inner, base, isParam)
		if !elem.IsComplete() {
			a.errf(d.Pos, diagnostics.TypeError, "array has incomplete element type")
		}
		size := 0
		if d.HasSize {
			if c, _, ok := a.foldConstInt(d.Size); ok {
				size = int(c)
			}
		}
		if d.HasSize && size <= 0 {
			a.errf(d.Pos, diagnostics.Misc, "array size must be a positive constant")
		}
		arr := elem.WithArray(types.ArrayDescriptor{Size: size})
		if size == 0 {
			arr = types.Decay(arr)
		}
		if isParam {
			arr = types.Decay(elem.WithArray(types.ArrayDescriptor{Size: size}))
		}
		return arr, name, idNode
	case ast.DeclFunction:
		inner, name, idNode := a.applyDeclarator(d.Inner, base, isParam)
		if inner.IsArray() {
			a.errf(d.Pos, diagnostics.TypeError, "function cannot return an array")
		}
		if inner.IsFunction() {
			a.errf(d.Pos, diagnostics.TypeError, "function cannot return a function")
		}
		fd := &types.FunctionDescriptor{ReturnType: inner}
		for _, p := range d.Params {
			pt, pname, _ := a.applyDeclarator(&p.Declarator, a.mustResolve(&p.Specifier), true)
			sym := &types.Symbol{ID: pname, Type: pt}
			fd.Params = append(fd.Params, types.Param{Symbol: sym, HasDefault: p.Default != nil})
		}
		return types.FunctionType(fd), name, idNode
	case ast.DeclParen:
		return a.applyDeclarator(d.Inner, base, isParam)
	default:
		return base, "", nil
	}
}

func (a *Analyzer) mustResolve(spec *ast.DeclSpecifier) types.Type {
	t, ok := a.resolveTypeSpecifier(spec)
	if !ok {
		return types.Fundamental(types.Int)
	}
	if spec.IsConst {
		t = t.AsConst()
	}
	return t
}

func cvOf(isConst bool) types.CVQualifier {
	if isConst {
		return types.CVConst
	}
	return types.CVNone
}

// composeId resolves the special declarator identifier forms (
// "Id-declarator"): plain name, destructor, constructor, operator
// function, or conversion function.
func composeId(d *ast.Declarator, enclosingClass string) string {
	if d == nil {
		return ""
	}
	switch d.Form {
	case ast.IdDestructor:
		return "~" + d.Name
	case ast.IdConstructor:
		return d.Name
	case ast.IdOperator:
		return "operator" + d.OperatorOp
	case ast.IdConversion:
		return "operator-conv"
	default:
		return d.Name
	}
}
