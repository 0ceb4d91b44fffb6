package ast

// Expr is any expression node. Accept dispatches to the matching
// ExprVisitor method, following the parser's existing visitor shape.
type Expr interface {
	Accept(v ExprVisitor) any
	Position() Pos
}

// ExprVisitor is implemented by the expression/statement analyzer (and
// by anything else that walks expressions, e.g. a pretty-printer).
type ExprVisitor interface {
	VisitLiteral(*Literal) any
	VisitId(*IdExpr) any
	VisitUnary(*UnaryExpr) any
	VisitBinary(*BinaryExpr) any
	VisitConditional(*ConditionalExpr) any
	VisitAssign(*AssignExpr) any
	VisitCall(*CallExpr) any
	VisitCast(*CastExpr) any
	VisitMember(*MemberExpr) any
	VisitIndex(*IndexExpr) any
	VisitSizeofType(*SizeofTypeExpr) any
}

// LiteralKind tags which field of Literal is live.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitChar
	LitBool
	LitString
)

// Literal is an int/float/char/bool/string literal.
type Literal struct {
	Pos      Pos
	Kind     LiteralKind
	IntVal   int64
	FloatVal float64
	CharVal  byte
	BoolVal  bool
	StrVal   string
}

func (l *Literal) Accept(v ExprVisitor) any { return v.VisitLiteral(l) }
func (l *Literal) Position() Pos            { return l.Pos }

// IdExpr names an identifier to be resolved against the current scope.
// Qualified is set for a `Class::member` lookup.
type IdExpr struct {
	Pos       Pos
	Name      string
	Qualifier string
	Qualified bool
}

func (e *IdExpr) Accept(v ExprVisitor) any { return v.VisitId(e) }
func (e *IdExpr) Position() Pos            { return e.Pos }

// UnaryOpKind enumerates prefix/postfix unary operators.
type UnaryOpKind int

const (
	UnaryMinus UnaryOpKind = iota
	UnaryPlus
	UnaryNot
	UnaryBitNot
	UnaryAddrOf
	UnaryDeref
	UnaryPreIncr
	UnaryPreDecr
	UnaryPostIncr
	UnaryPostDecr
)

// UnaryExpr applies a single prefix or postfix operator to Operand.
type UnaryExpr struct {
	Pos     Pos
	Op      UnaryOpKind
	Operand Expr
}

func (e *UnaryExpr) Accept(v ExprVisitor) any { return v.VisitUnary(e) }
func (e *UnaryExpr) Position() Pos            { return e.Pos }

// BinaryOpKind enumerates the binary operator family, including
// short-circuit logical operators (handled specially by the analyzer,
// rather than folded through ArithmeticConvert).
type BinaryOpKind int

const (
	BinAdd BinaryOpKind = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinBitAnd
	BinBitXor
	BinBitOr
	BinLt
	BinLe
	BinGt
	BinGe
	BinEq
	BinNe
	BinLogicalAnd
	BinLogicalOr
	BinComma
)

// BinaryExpr is a two-operand expression.
type BinaryExpr struct {
	Pos         Pos
	Op          BinaryOpKind
	Left, Right Expr
}

func (e *BinaryExpr) Accept(v ExprVisitor) any { return v.VisitBinary(e) }
func (e *BinaryExpr) Position() Pos            { return e.Pos }

// ConditionalExpr is `cond ? then : els`.
type ConditionalExpr struct {
	Pos              Pos
	Cond, Then, Else Expr
}

func (e *ConditionalExpr) Accept(v ExprVisitor) any { return v.VisitConditional(e) }
func (e *ConditionalExpr) Position() Pos            { return e.Pos }

// AssignExpr is `lhs op= rhs`; Op is BinAdd etc. for a compound
// assignment (Compound set). For plain `=` Compound is false and Op is
// left at its zero value and not read.
type AssignExpr struct {
	Pos      Pos
	Lhs, Rhs Expr
	Op       BinaryOpKind
	Compound bool
}

func (e *AssignExpr) Accept(v ExprVisitor) any { return v.VisitAssign(e) }
func (e *AssignExpr) Position() Pos            { return e.Pos }

// CallExpr applies Callee to Args.
type CallExpr struct {
	Pos    Pos
	Callee Expr
	Args   []Expr
}

func (e *CallExpr) Accept(v ExprVisitor) any { return v.VisitCall(e) }
func (e *CallExpr) Position() Pos            { return e.Pos }

// CastExpr is an explicit `(T) expr` cast.
type CastExpr struct {
	Pos    Pos
	Target DeclSpecifier
	Abstract Declarator // pointer/array/reference wrapping in the cast's type-id
	Operand Expr
}

func (e *CastExpr) Accept(v ExprVisitor) any { return v.VisitCast(e) }
func (e *CastExpr) Position() Pos            { return e.Pos }

// MemberExpr is `base.member` or `base->member`.
type MemberExpr struct {
	Pos     Pos
	Base    Expr
	Member  string
	Arrow   bool
}

func (e *MemberExpr) Accept(v ExprVisitor) any { return v.VisitMember(e) }
func (e *MemberExpr) Position() Pos            { return e.Pos }

// IndexExpr is `base[index]`.
type IndexExpr struct {
	Pos         Pos
	Base, Index Expr
}

func (e *IndexExpr) Accept(v ExprVisitor) any { return v.VisitIndex(e) }
func (e *IndexExpr) Position() Pos            { return e.Pos }

// SizeofTypeExpr is `sizeof(T)` applied to a type-id. The parser reads
// every sizeof operand as a type-id; there is no `sizeof expr` form.
type SizeofTypeExpr struct {
	Pos       Pos
	Specifier DeclSpecifier
	Abstract  Declarator
}

func (e *SizeofTypeExpr) Accept(v ExprVisitor) any { return v.VisitSizeofType(e) }
func (e *SizeofTypeExpr) Position() Pos            { return e.Pos }
