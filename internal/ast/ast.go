// Package ast defines the node families the declaration and
// expression/statement analyzers walk: declarators and declaration
// specifiers, class/base specifiers, constructor initializers,
// expressions, and statements. Node shapes follow the visitor pattern
// the parser's existing expression/statement trees already use, so the
// shape is familiar even though every node here is new.
package ast

import "sysc/internal/diagnostics"

// Pos is the source position carried by every node, used to build a
// diagnostics.Location when the analyzer reports an error against it.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) Loc() diagnostics.Location {
	return diagnostics.Location{File: p.File, Line: p.Line, Column: p.Column}
}

// ---- Declaration specifiers -------------------------------------------------

// TypeSpecifierKind names which built-in or named type a decl-specifier
// refers to.
type TypeSpecifierKind int

const (
	SpecNone TypeSpecifierKind = iota
	SpecVoid
	SpecBool
	SpecChar
	SpecShort
	SpecInt
	SpecLong
	SpecFloat
	SpecDouble
	SpecUnsigned
	SpecNamed // names a class/enum/typedef looked up by Name
)

// DeclSpecifier is the specifier sequence preceding a declarator:
// storage/linkage flags plus at most one type specifier, combined left
// to right by Combine.
type DeclSpecifier struct {
	Pos Pos

	IsFriend    bool
	IsTypedef   bool
	IsVirtual   bool
	IsStatic    bool
	IsConst     bool
	HasType     bool
	Type        TypeSpecifierKind
	Name        string // valid when Type == SpecNamed
	ClassBody   *ClassSpecifier
	EnumBody    *EnumSpecifier
}

// Combine merges two decl-specifiers left to right: duplicate
// friend/virtual/typedef, or more than one type specifier, is an error;
// otherwise flags OR-merge and the first present type specifier wins.
func (a DeclSpecifier) Combine(b DeclSpecifier) (DeclSpecifier, error) {
	out := a
	if b.IsFriend {
		if a.IsFriend {
			return out, combineErr(b.Pos, "duplicate 'friend'")
		}
		out.IsFriend = true
	}
	if b.IsVirtual {
		if a.IsVirtual {
			return out, combineErr(b.Pos, "duplicate 'virtual'")
		}
		out.IsVirtual = true
	}
	if b.IsTypedef {
		if a.IsTypedef {
			return out, combineErr(b.Pos, "duplicate 'typedef'")
		}
		out.IsTypedef = true
	}
	out.IsStatic = out.IsStatic || b.IsStatic
	out.IsConst = out.IsConst || b.IsConst
	if b.HasType {
		if a.HasType {
			return out, combineErr(b.Pos, "two or more data types in declaration specifiers")
		}
		out.HasType = true
		out.Type = b.Type
		out.Name = b.Name
		out.ClassBody = b.ClassBody
		out.EnumBody = b.EnumBody
	}
	return out, nil
}

func combineErr(pos Pos, msg string) error {
	return diagnostics.New(diagnostics.Misc, pos.Loc(), "%s", msg)
}

// ---- Class / enum specifiers ------------------------------------------------

// BaseSpecifier names a single base class in a class-head, with the
// access level under which it is inherited.
type BaseSpecifier struct {
	Pos    Pos
	Name   string
	Access int // mirrors types.Access; kept untyped here to avoid an ast->types dependency for a single field
}

// MemberDeclaration is one member of a class body: a decl-specifier plus
// the declarators sharing it, or a nested class/enum declared inline.
type MemberDeclaration struct {
	Pos         Pos
	Access      int
	Specifier   DeclSpecifier
	Declarators []Declarator
	FunctionDef *CompoundStmt // non-nil when this member is a function definition
	CtorInit    []CtorMemInit
}

// ClassSpecifier is a class-head plus its member-declaration list.
type ClassSpecifier struct {
	Pos     Pos
	Name    string // empty for an anonymous class, possibly named later by a typedef
	Base    *BaseSpecifier
	Members []MemberDeclaration
}

// EnumSpecifier is an enum-head plus its enumerator list.
type EnumSpecifier struct {
	Pos        Pos
	Name       string
	Enumerators []Enumerator
}

// Enumerator is one `name` or `name = expr` entry in an enum body.
type Enumerator struct {
	Pos   Pos
	Name  string
	Value Expr // nil when the enumerator takes the previous value + 1
}

// CtorMemInit is one entry in a constructor-initializer list: either a
// named data member or a base-class call.
type CtorMemInit struct {
	Pos    Pos
	Target string // member name, or the base class's name
	Args   []Expr
}

// ---- Declarators -------------------------------------------------------------

// DeclaratorKind tags which layer of the declarator chain a node is.
type DeclaratorKind int

const (
	DeclId DeclaratorKind = iota
	DeclPointer
	DeclReference
	DeclArray
	DeclFunction
	DeclParen
)

// IdForm distinguishes the special composed-identifier forms
// names: a plain name, a destructor, a same-named constructor, an
// overloaded operator, or a user-defined conversion function.
type IdForm int

const (
	IdPlain IdForm = iota
	IdConstructor
	IdDestructor
	IdOperator
	IdConversion
)

// Declarator is one node in the innermost-outward declarator chain.
// Exactly one of the Kind-specific fields is meaningful for a given
// node; Inner is nil only for the innermost DeclId node.
type Declarator struct {
	Pos  Pos
	Kind DeclaratorKind

	Inner *Declarator // nil for DeclId

	// DeclId
	Name       string
	Form       IdForm
	OperatorOp string // valid when Form == IdOperator
	ConvSpec   *DeclSpecifier // valid when Form == IdConversion: the target type T in "operator T()"

	// DeclPointer / DeclReference
	PointeeConst bool

	// DeclArray
	HasSize  bool
	Size     Expr

	// DeclFunction
	Params     []ParamDeclaration
	IsConst    bool // trailing const on a member function
}

// ParamDeclaration is one parameter in a DeclFunction declarator.
type ParamDeclaration struct {
	Pos       Pos
	Specifier DeclSpecifier
	Declarator Declarator
	Default   Expr
}

// ---- Top-level declarations --------------------------------------------------

// Declaration is one top-level (or block-scope) declaration: a shared
// specifier plus one or more declarators, each optionally initialized.
type Declaration struct {
	Pos         Pos
	Specifier   DeclSpecifier
	Declarators []InitDeclarator
}

// InitDeclarator pairs a declarator with its optional initializer.
type InitDeclarator struct {
	Declarator Declarator
	Init       Initializer
	Body       *CompoundStmt // non-nil when the declarator is a function definition
	CtorInit   []CtorMemInit
}

// InitializerKind tags which of the three initializer forms is present.
type InitializerKind int

const (
	InitNone InitializerKind = iota
	InitAssign
	InitList
	InitParen
)

// Initializer is one of: nothing, `= expr`, `{ a, b, c }`, or `(args)`.
type Initializer struct {
	Kind  InitializerKind
	Expr  Expr   // InitAssign
	Elems []Expr // InitList
	Args  []Expr // InitParen
}

// TranslationUnit is the root node: a sequence of top-level declarations
// in one source file.
type TranslationUnit struct {
	File  string
	Decls []Declaration
}
