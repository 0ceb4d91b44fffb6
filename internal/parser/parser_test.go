package parser

import (
	"testing"

	"sysc/internal/ast"
	"sysc/internal/lexer"
)

func parse(t *testing.T, src string) *ast.TranslationUnit {
	t.Helper()
	toks := lexer.NewScanner(src).ScanTokens()
	p := New(toks, "t.sys")
	tu := p.Parse()
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors)
	}
	return tu
}

func TestParseSimpleVariableDeclaration(t *testing.T) {
	tu := parse(t, "int x = 42;")
	if len(tu.Decls) != 1 {
		t.Fatalf("got %d declarations, want 1", len(tu.Decls))
	}
	d := tu.Decls[0]
	if d.Specifier.Type != ast.SpecInt {
		t.Fatalf("expected int specifier, got %v", d.Specifier.Type)
	}
	if len(d.Declarators) != 1 || d.Declarators[0].Declarator.Name != "x" {
		t.Fatalf("expected single declarator named x, got %+v", d.Declarators)
	}
	if d.Declarators[0].Init.Kind != ast.InitAssign {
		t.Fatalf("expected an assignment initializer, got %v", d.Declarators[0].Init.Kind)
	}
}

func TestParseFunctionDefinition(t *testing.T) {
	tu := parse(t, "int add(int a, int b) { return a + b; }")
	if len(tu.Decls) != 1 {
		t.Fatalf("got %d declarations, want 1", len(tu.Decls))
	}
	id := tu.Decls[0].Declarators[0]
	if id.Declarator.Kind != ast.DeclFunction {
		t.Fatalf("expected a function declarator, got %v", id.Declarator.Kind)
	}
	if id.Body == nil {
		t.Fatal("expected a function body")
	}
	if len(id.Declarator.Params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(id.Declarator.Params))
	}
	if len(id.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in body, got %d", len(id.Body.Stmts))
	}
	if _, ok := id.Body.Stmts[0].(*ast.ReturnStmt); !ok {
		t.Fatalf("expected a return statement, got %T", id.Body.Stmts[0])
	}
}

func TestParseClassWithMembers(t *testing.T) {
	tu := parse(t, `class Box {
public:
	int get();
	int value;
};`)
	if len(tu.Decls) != 1 {
		t.Fatalf("got %d declarations, want 1", len(tu.Decls))
	}
	cs := tu.Decls[0].Specifier.ClassBody
	if cs == nil {
		t.Fatal("expected a class specifier")
	}
	if cs.Name != "Box" {
		t.Fatalf("expected class name Box, got %q", cs.Name)
	}
	// The "public:" access specifier is itself one member-declaration
	// entry, followed by the two declared members.
	if len(cs.Members) != 3 {
		t.Fatalf("expected 3 members (1 access specifier + 2 declarations), got %d", len(cs.Members))
	}
}

func TestParseIfWhileAndBreak(t *testing.T) {
	tu := parse(t, `int f() {
	while (1) {
		if (1) {
			break;
		}
	}
	return 0;
}`)
	body := tu.Decls[0].Declarators[0].Body
	if len(body.Stmts) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(body.Stmts))
	}
	if _, ok := body.Stmts[0].(*ast.WhileStmt); !ok {
		t.Fatalf("expected a while statement, got %T", body.Stmts[0])
	}
}
