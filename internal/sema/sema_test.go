package sema

import (
	"testing"

	"github.com/llir/llvm/ir"

	"sysc/internal/ast"
	"sysc/internal/diagnostics"
)

func pos(line int) ast.Pos { return ast.Pos{File: "t.sys", Line: line, Column: 1} }

func intSpec() ast.DeclSpecifier {
	return ast.DeclSpecifier{HasType: true, Type: ast.SpecInt}
}

func idDecl(name string) ast.Declarator {
	return ast.Declarator{Kind: ast.DeclId, Name: name}
}

func TestGlobalConstWithoutInitializerIsAnError(t *testing.T) {
	a := New("t.sys")
	spec := intSpec()
	spec.IsConst = true
	d := &ast.Declaration{
		Pos:       pos(1),
		Specifier: spec,
		Declarators: []ast.InitDeclarator{
			{Declarator: idDecl("x")},
		},
	}
	a.AnalyzeDeclaration(d, DeclState{Phase: PhaseFull, Access: 0})

	if !a.Sink.Failed() {
		t.Fatal("const global without initializer should report a diagnostic")
	}
	diags := a.Sink.All()
	if diags[0].Kind != diagnostics.Misc {
		t.Fatalf("expected a Misc diagnostic, got %v: %s", diags[0].Kind, diags[0].Message)
	}
}

func TestGlobalIntWithConstantInitializerSucceeds(t *testing.T) {
	a := New("t.sys")
	d := &ast.Declaration{
		Pos:       pos(1),
		Specifier: intSpec(),
		Declarators: []ast.InitDeclarator{
			{
				Declarator: idDecl("x"),
				Init: ast.Initializer{
					Kind: ast.InitAssign,
					Expr: &ast.Literal{Pos: pos(1), Kind: ast.LitInt, IntVal: 42},
				},
			},
		},
	}
	a.AnalyzeDeclaration(d, DeclState{Phase: PhaseFull})

	if a.Sink.Failed() {
		t.Fatalf("unexpected diagnostics: %v", a.Sink.All())
	}
	set := a.scope.QuerySymbol("x", true)
	if set.Empty() {
		t.Fatal("x should be registered in the root scope")
	}
}

func TestGlobalInitializerWithUndeclaredIdentifierIsRejected(t *testing.T) {
	a := New("t.sys")
	d := &ast.Declaration{
		Pos:       pos(1),
		Specifier: intSpec(),
		Declarators: []ast.InitDeclarator{
			{
				Declarator: idDecl("x"),
				Init: ast.Initializer{
					Kind: ast.InitAssign,
					Expr: &ast.IdExpr{Pos: pos(1), Name: "undefined_name"},
				},
			},
		},
	}
	a.AnalyzeDeclaration(d, DeclState{Phase: PhaseFull})

	if !a.Sink.Failed() {
		t.Fatal("referencing an undeclared identifier should report a diagnostic")
	}
}

// TestFreeFunctionGetsNoHiddenThis exercises a free function (no
// enclosing class) and checks no hidden parameter is prepended.
func TestFreeFunctionGetsNoHiddenThis(t *testing.T) {
	a := New("t.sys")

	fn := &ast.Declaration{
		Pos:       pos(1),
		Specifier: intSpec(),
		Declarators: []ast.InitDeclarator{
			{
				Declarator: ast.Declarator{
					Kind:  ast.DeclFunction,
					Inner: &ast.Declarator{Kind: ast.DeclId, Name: "add"},
				},
				Body: &ast.CompoundStmt{
					Stmts: []ast.Stmt{
						&ast.ReturnStmt{Value: &ast.Literal{Kind: ast.LitInt, IntVal: 0}},
					},
				},
			},
		},
	}
	a.AnalyzeDeclaration(fn, DeclState{Phase: PhaseFull})
	a.flushDeferred()

	if a.Sink.Failed() {
		t.Fatalf("unexpected diagnostics: %v", a.Sink.All())
	}
	sym := a.scope.QuerySymbol("add", true).One()
	if sym == nil {
		t.Fatal("add should be registered")
	}
	if len(sym.Type.Function.Params) != 0 {
		t.Fatalf("free function should not get a hidden this, got %d params", len(sym.Type.Function.Params))
	}
}

// TestClassTwoPassDefersMemberBody exercises the class-body two pass:
// a member function body referencing a sibling member declared later in
// the class resolves correctly because its body is analyzed only after
// every member has been collected.
func TestClassTwoPassDefersMemberBody(t *testing.T) {
	a := New("t.sys")

	cls := &ast.ClassSpecifier{
		Pos:  pos(1),
		Name: "Box",
		Members: []ast.MemberDeclaration{
			{
				Pos:       pos(2),
				Specifier: intSpec(),
				Declarators: []ast.Declarator{
					{
						Kind:  ast.DeclFunction,
						Inner: &ast.Declarator{Kind: ast.DeclId, Name: "get"},
					},
				},
				FunctionDef: &ast.CompoundStmt{
					Stmts: []ast.Stmt{
						&ast.ReturnStmt{
							Value: &ast.IdExpr{Pos: pos(2), Name: "value"},
						},
					},
				},
			},
			{
				Pos:         pos(3),
				Specifier:   intSpec(),
				Declarators: []ast.Declarator{idDecl("value")},
			},
		},
	}

	decl := &ast.Declaration{
		Pos:       pos(1),
		Specifier: ast.DeclSpecifier{HasType: true, ClassBody: cls},
	}
	a.AnalyzeDeclaration(decl, DeclState{Phase: PhaseFull})
	a.flushDeferred()

	if a.Sink.Failed() {
		t.Fatalf("unexpected diagnostics: %v", a.Sink.All())
	}
	cd := a.scope.QueryClass("Box", true)
	if cd == nil {
		t.Fatal("Box should be registered")
	}
	if cd.MemberScope.QuerySymbol("value", true).Empty() {
		t.Fatal("value should be a laid-out member of Box")
	}
}

func TestEnumeratorsDefaultToPreviousPlusOne(t *testing.T) {
	a := New("t.sys")
	es := &ast.EnumSpecifier{
		Pos:  pos(1),
		Name: "Color",
		Enumerators: []ast.Enumerator{
			{Name: "Red"},
			{Name: "Green"},
			{Name: "Blue", Value: &ast.Literal{Kind: ast.LitInt, IntVal: 10}},
			{Name: "Indigo"},
		},
	}
	ed := a.analyzeEnumSpecifier(es)
	if ed.Name != "Color" {
		t.Fatalf("expected enum name Color, got %q", ed.Name)
	}

	want := map[string]int64{"Red": 0, "Green": 1, "Blue": 10, "Indigo": 11}
	for name, expect := range want {
		sym := a.scope.QuerySymbol(name, true).One()
		if sym == nil || sym.ConstValue == nil {
			t.Fatalf("enumerator %s not registered with a constant value", name)
		}
		if sym.ConstValue.IntVal != expect {
			t.Fatalf("enumerator %s: got %d want %d", name, sym.ConstValue.IntVal, expect)
		}
	}
}

// TestRecursiveFunctionEmitsRuntimeInstructions builds
//
//	int fibo(int n) {
//	    if (n < 2) return n;
//	    return fibo(n - 1) + fibo(n - 2);
//	}
//
// by hand and checks that every operand involved (the parameter n) is a
// non-constant, so the comparison, the two recursive calls and the
// final add can only analyze correctly if the IR builder actually
// emits instructions for runtime values rather than only folding
// constants.
func TestRecursiveFunctionEmitsRuntimeInstructions(t *testing.T) {
	a := New("t.sys")

	nParam := ast.ParamDeclaration{Specifier: intSpec(), Declarator: idDecl("n")}
	nId := func(line int) *ast.IdExpr { return &ast.IdExpr{Pos: pos(line), Name: "n"} }
	litInt := func(line int, v int64) *ast.Literal { return &ast.Literal{Pos: pos(line), Kind: ast.LitInt, IntVal: v} }
	call := func(line int, arg ast.Expr) *ast.CallExpr {
		return &ast.CallExpr{
			Pos:    pos(line),
			Callee: &ast.IdExpr{Pos: pos(line), Name: "fibo"},
			Args:   []ast.Expr{arg},
		}
	}

	fibo := &ast.Declaration{
		Pos:       pos(1),
		Specifier: intSpec(),
		Declarators: []ast.InitDeclarator{
			{
				Declarator: ast.Declarator{
					Kind:   ast.DeclFunction,
					Inner:  &ast.Declarator{Kind: ast.DeclId, Name: "fibo"},
					Params: []ast.ParamDeclaration{nParam},
				},
				Body: &ast.CompoundStmt{
					Pos: pos(1),
					Stmts: []ast.Stmt{
						&ast.IfStmt{
							Pos: pos(2),
							Cond: &ast.BinaryExpr{
								Pos: pos(2), Op: ast.BinLt,
								Left: nId(2), Right: litInt(2, 2),
							},
							Then: &ast.ReturnStmt{Pos: pos(2), Value: nId(2)},
						},
						&ast.ReturnStmt{
							Pos: pos(3),
							Value: &ast.BinaryExpr{
								Pos: pos(3), Op: ast.BinAdd,
								Left: call(3, &ast.BinaryExpr{
									Pos: pos(3), Op: ast.BinSub, Left: nId(3), Right: litInt(3, 1),
								}),
								Right: call(3, &ast.BinaryExpr{
									Pos: pos(3), Op: ast.BinSub, Left: nId(3), Right: litInt(3, 2),
								}),
							},
						},
					},
				},
			},
		},
	}

	a.AnalyzeDeclaration(fibo, DeclState{Phase: PhaseFull})
	a.flushDeferred()

	if a.Sink.Failed() {
		t.Fatalf("unexpected diagnostics: %v", a.Sink.All())
	}

	sym := a.scope.QuerySymbol("fibo", true).One()
	if sym == nil {
		t.Fatal("fibo should be registered")
	}
	fn, ok := sym.Backend.(*ir.Func)
	if !ok {
		t.Fatalf("fibo's backend should be an *ir.Func, got %T", sym.Backend)
	}

	var condBrs, calls, icmps, adds int
	for _, blk := range fn.Blocks {
		for _, inst := range blk.Insts {
			switch inst.(type) {
			case *ir.InstCall:
				calls++
			case *ir.InstICmp:
				icmps++
			case *ir.InstAdd:
				adds++
			}
		}
		if _, ok := blk.Term.(*ir.TermCondBr); ok {
			condBrs++
		}
	}

	if icmps == 0 {
		t.Fatal("the `n < 2` guard should emit a real icmp instruction, not only fold a constant")
	}
	if condBrs == 0 {
		t.Fatal("the if-guard should branch on the icmp's result, not fall back to an unconditional branch")
	}
	if calls < 2 {
		t.Fatalf("both recursive calls fibo(n-1)/fibo(n-2) should emit a call instruction, got %d", calls)
	}
	if adds == 0 {
		t.Fatal("fibo(n-1) + fibo(n-2) should emit a real add instruction combining the two call results")
	}
}

func TestBreakOutsideLoopIsAContextError(t *testing.T) {
	a := New("t.sys")
	a.analyzeStmt(&ast.BreakStmt{Pos: pos(1)})
	if !a.Sink.Failed() {
		t.Fatal("break outside a loop/switch should report a diagnostic")
	}
	if a.Sink.All()[0].Kind != diagnostics.Context {
		t.Fatalf("expected a Context diagnostic, got %v", a.Sink.All()[0].Kind)
	}
}
