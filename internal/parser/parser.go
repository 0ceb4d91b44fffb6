// Package parser is a hand-written recursive-descent parser, the same
// "match/check/consume/advance over a flat token slice" shape the
// teacher's original parser used, retargeted to build internal/ast
// trees (declarations, class/enum bodies, statements, expressions)
// instead of the scripting language's dynamic AST.
package parser

import (
	"fmt"

	"sysc/internal/ast"
	"sysc/internal/lexer"
)

// Parser walks a flat token slice, recovering at statement/declaration
// boundaries so one syntax error doesn't abort the whole file.
type Parser struct {
	tokens  []lexer.Token
	current int
	file    string
	Errors  []error

	classNameStack []string
}

func New(tokens []lexer.Token, file string) *Parser {
	return &Parser{tokens: tokens, file: file}
}

// Parse consumes the whole token stream as a translation unit: a
// sequence of top-level declarations.
func (p *Parser) Parse() *ast.TranslationUnit {
	tu := &ast.TranslationUnit{File: p.file}
	for !p.isAtEnd() {
		d, ok := p.parseDeclarationRecovering()
		if ok {
			tu.Decls = append(tu.Decls, *d)
		}
	}
	return tu
}

func (p *Parser) parseDeclarationRecovering() (*ast.Declaration, bool) {
	start := p.current
	d := p.parseDeclaration()
	if d == nil {
		if p.current == start {
			p.advance() // guarantee forward progress on an unrecognized token
		}
		p.syncToDeclarationBoundary()
		return nil, false
	}
	return d, true
}

func (p *Parser) syncToDeclarationBoundary() {
	for !p.isAtEnd() {
		if p.previous().Type == lexer.TokenSemicolon || p.previous().Type == lexer.TokenRBrace {
			return
		}
		p.advance()
	}
}

func (p *Parser) pos(t lexer.Token) ast.Pos {
	return ast.Pos{File: p.file, Line: t.Line, Column: t.Column}
}

// ---- Declarations -----------------------------------------------------------

// parseDeclaration parses one decl-specifier-seq followed by a
// declarator list: each declarator in
// the comma-separated list shares the same base specifier.
func (p *Parser) parseDeclaration() *ast.Declaration {
	startTok := p.peek()
	spec, ok := p.parseDeclSpecifierSeq()
	if !ok {
		return nil
	}
	decl := &ast.Declaration{Pos: p.pos(startTok), Specifier: spec}

	if spec.ClassBody != nil || spec.EnumBody != nil {
		if p.check(lexer.TokenSemicolon) {
			p.advance()
			return decl
		}
	}

	for {
		id := p.parseInitDeclarator(spec)
		decl.Declarators = append(decl.Declarators, id)
		if id.Body != nil {
			return decl // a function definition ends the declaration, no trailing ';'
		}
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenSemicolon, "expected ';' after declaration")
	return decl
}

func (p *Parser) parseInitDeclarator(spec ast.DeclSpecifier) ast.InitDeclarator {
	declr := p.parseDeclarator()
	id := ast.InitDeclarator{Declarator: *declr}

	if declr.Kind == ast.DeclFunction && p.check(lexer.TokenLBrace) {
		id.Body = p.parseCompoundStmt()
		return id
	}
	if declr.Kind == ast.DeclFunction && p.check(lexer.TokenColon) {
		id.CtorInit = p.parseCtorInitList()
		id.Body = p.parseCompoundStmt()
		return id
	}
	if p.match(lexer.TokenAssign) {
		if p.check(lexer.TokenLBrace) {
			id.Init = ast.Initializer{Kind: ast.InitList, Elems: p.parseBraceInitList()}
		} else {
			id.Init = ast.Initializer{Kind: ast.InitAssign, Expr: p.parseAssignment()}
		}
		return id
	}
	if p.match(lexer.TokenLParen) {
		var args []ast.Expr
		if !p.check(lexer.TokenRParen) {
			for {
				args = append(args, p.parseAssignment())
				if !p.match(lexer.TokenComma) {
					break
				}
			}
		}
		p.consume(lexer.TokenRParen, "expected ')' after initializer arguments")
		id.Init = ast.Initializer{Kind: ast.InitParen, Args: args}
	}
	return id
}

func (p *Parser) parseCtorInitList() []ast.CtorMemInit {
	p.consume(lexer.TokenColon, "expected ':' before constructor initializer list")
	var inits []ast.CtorMemInit
	for {
		tok := p.consume(lexer.TokenIdent, "expected member or base class name")
		init := ast.CtorMemInit{Pos: p.pos(tok), Target: tok.Lexeme}
		p.consume(lexer.TokenLParen, "expected '(' in constructor initializer")
		if !p.check(lexer.TokenRParen) {
			for {
				init.Args = append(init.Args, p.parseAssignment())
				if !p.match(lexer.TokenComma) {
					break
				}
			}
		}
		p.consume(lexer.TokenRParen, "expected ')' after constructor initializer")
		inits = append(inits, init)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	return inits
}

func (p *Parser) parseBraceInitList() []ast.Expr {
	p.consume(lexer.TokenLBrace, "expected '{'")
	var elems []ast.Expr
	if !p.check(lexer.TokenRBrace) {
		for {
			elems = append(elems, p.parseAssignment())
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRBrace, "expected '}' to close initializer list")
	return elems
}

// parseDeclSpecifierSeq repeatedly parses one specifier at a time and
// folds them together with DeclSpecifier.Combine, per the
// "declaration-specifier combining rule".
func (p *Parser) parseDeclSpecifierSeq() (ast.DeclSpecifier, bool) {
	var spec ast.DeclSpecifier
	any := false
	for {
		if spec.HasType && p.check(lexer.TokenIdent) {
			break // the identifier is the declarator name, not a second type
		}
		one, ok := p.parseOneSpecifier()
		if !ok {
			break
		}
		merged, err := spec.Combine(one)
		if err != nil {
			p.Errors = append(p.Errors, err)
		} else {
			spec = merged
		}
		any = true
	}
	return spec, any
}

func (p *Parser) parseOneSpecifier() (ast.DeclSpecifier, bool) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenFriend:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), IsFriend: true}, true
	case lexer.TokenVirtual:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), IsVirtual: true}, true
	case lexer.TokenStatic:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), IsStatic: true}, true
	case lexer.TokenConst:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), IsConst: true}, true
	case lexer.TokenTypedef:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), IsTypedef: true}, true
	case lexer.TokenVoid:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecVoid}, true
	case lexer.TokenBool:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecBool}, true
	case lexer.TokenChar:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecChar}, true
	case lexer.TokenShort:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecShort}, true
	case lexer.TokenInt:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecInt}, true
	case lexer.TokenLong:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecLong}, true
	case lexer.TokenFloat:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecFloat}, true
	case lexer.TokenDouble:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecDouble}, true
	case lexer.TokenUnsigned:
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecUnsigned}, true
	case lexer.TokenClass:
		cs := p.parseClassSpecifier()
		return ast.DeclSpecifier{Pos: cs.Pos, HasType: true, ClassBody: cs}, true
	case lexer.TokenEnum:
		es := p.parseEnumSpecifier()
		return ast.DeclSpecifier{Pos: es.Pos, HasType: true, EnumBody: es}, true
	case lexer.TokenIdent:
		// An identifier is read as a named type only while no type
		// specifier has been seen: parseDeclSpecifierSeq stops before an
		// identifier once it has a type, leaving it for the declarator.
		p.advance()
		return ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecNamed, Name: tok.Lexeme}, true
	default:
		return ast.DeclSpecifier{}, false
	}
}

// ---- Class / enum specifiers -------------------------------------------------

func (p *Parser) parseClassSpecifier() *ast.ClassSpecifier {
	tok := p.consume(lexer.TokenClass, "expected 'class'")
	cs := &ast.ClassSpecifier{Pos: p.pos(tok)}
	if p.check(lexer.TokenIdent) {
		cs.Name = p.advance().Lexeme
	}
	if p.match(lexer.TokenColon) {
		access := accessPublic
		if p.match(lexer.TokenPublic) {
			access = accessPublic
		} else if p.match(lexer.TokenProtected) {
			access = accessProtected
		} else if p.match(lexer.TokenPrivate) {
			access = accessPrivate
		}
		baseTok := p.consume(lexer.TokenIdent, "expected base class name")
		cs.Base = &ast.BaseSpecifier{Pos: p.pos(baseTok), Name: baseTok.Lexeme, Access: access}
	}
	if !p.match(lexer.TokenLBrace) {
		return cs // forward declaration: `class Foo;`
	}
	p.classNameStack = append(p.classNameStack, cs.Name)
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		cs.Members = append(cs.Members, p.parseMemberDeclaration())
	}
	p.classNameStack = p.classNameStack[:len(p.classNameStack)-1]
	p.consume(lexer.TokenRBrace, "expected '}' to close class body")
	return cs
}

const (
	accessPublic    = 1
	accessProtected = 2
	accessPrivate   = 3
)

func (p *Parser) currentClassName() string {
	if len(p.classNameStack) == 0 {
		return ""
	}
	return p.classNameStack[len(p.classNameStack)-1]
}

func (p *Parser) parseMemberDeclaration() ast.MemberDeclaration {
	tok := p.peek()

	switch tok.Type {
	case lexer.TokenPublic, lexer.TokenProtected, lexer.TokenPrivate:
		p.advance()
		p.consume(lexer.TokenColon, "expected ':' after access specifier")
		return ast.MemberDeclaration{Pos: p.pos(tok), Access: accessOf(tok.Type)}
	case lexer.TokenFriend:
		p.advance()
		p.match(lexer.TokenClass)
		nameTok := p.consume(lexer.TokenIdent, "expected class name after 'friend'")
		return ast.MemberDeclaration{
			Pos:       p.pos(tok),
			Specifier: ast.DeclSpecifier{Pos: p.pos(tok), IsFriend: true, HasType: true, Type: ast.SpecNamed, Name: nameTok.Lexeme},
			Declarators: []ast.Declarator{
				{Kind: ast.DeclId, Name: nameTok.Lexeme},
			},
		}
	}

	// Constructor: ClassName(...) or ~ClassName(...)
	if p.check(lexer.TokenTilde) || (p.check(lexer.TokenIdent) && p.peek().Lexeme == p.currentClassName() && p.checkNext(lexer.TokenLParen)) {
		return p.parseCtorOrDtorMember()
	}

	spec, ok := p.parseDeclSpecifierSeq()
	if !ok {
		p.advance()
		return ast.MemberDeclaration{Pos: p.pos(tok)}
	}
	md := ast.MemberDeclaration{Pos: p.pos(tok), Specifier: spec}

	if spec.ClassBody != nil || spec.EnumBody != nil {
		if p.check(lexer.TokenSemicolon) {
			p.advance()
			return md
		}
	}

	for {
		declr := p.parseDeclarator()
		md.Declarators = append(md.Declarators, *declr)
		if declr.Kind == ast.DeclFunction && p.check(lexer.TokenLBrace) {
			md.FunctionDef = p.parseCompoundStmt()
			return md
		}
		if declr.Kind == ast.DeclFunction && p.check(lexer.TokenColon) {
			md.CtorInit = p.parseCtorInitList()
			md.FunctionDef = p.parseCompoundStmt()
			return md
		}
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenSemicolon, "expected ';' after member declaration")
	return md
}

// parseCtorOrDtorMember handles the two id-declarator forms that never
// carry a type specifier: `Name(...)`/`Name(...) : inits {...}` for a
// constructor, `~Name() {...}` for a destructor. Both are declared with
// an implicit void return type since the return type plays no role for
// either.
func (p *Parser) parseCtorOrDtorMember() ast.MemberDeclaration {
	tok := p.peek()
	isDtor := p.match(lexer.TokenTilde)
	nameTok := p.consume(lexer.TokenIdent, "expected constructor/destructor name")

	inner := &ast.Declarator{Pos: p.pos(nameTok), Kind: ast.DeclId, Name: nameTok.Lexeme}
	if isDtor {
		inner.Form = ast.IdDestructor
	} else {
		inner.Form = ast.IdConstructor
	}

	fn := &ast.Declarator{Pos: p.pos(tok), Kind: ast.DeclFunction, Inner: inner}
	p.consume(lexer.TokenLParen, "expected '(' after constructor/destructor name")
	if !isDtor && !p.check(lexer.TokenRParen) {
		fn.Params = p.parseParamList()
	} else if isDtor {
		// destructors take no parameters
	}
	p.consume(lexer.TokenRParen, "expected ')'")

	md := ast.MemberDeclaration{
		Pos:         p.pos(tok),
		Specifier:   ast.DeclSpecifier{Pos: p.pos(tok), HasType: true, Type: ast.SpecVoid},
		Declarators: []ast.Declarator{*fn},
	}
	if p.check(lexer.TokenColon) {
		md.CtorInit = p.parseCtorInitList()
	}
	md.FunctionDef = p.parseCompoundStmt()
	return md
}

func accessOf(t lexer.TokenType) int {
	switch t {
	case lexer.TokenPublic:
		return accessPublic
	case lexer.TokenProtected:
		return accessProtected
	case lexer.TokenPrivate:
		return accessPrivate
	}
	return accessPublic
}

func (p *Parser) parseEnumSpecifier() *ast.EnumSpecifier {
	tok := p.consume(lexer.TokenEnum, "expected 'enum'")
	es := &ast.EnumSpecifier{Pos: p.pos(tok)}
	if p.check(lexer.TokenIdent) {
		es.Name = p.advance().Lexeme
	}
	p.consume(lexer.TokenLBrace, "expected '{' to open enum body")
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		nameTok := p.consume(lexer.TokenIdent, "expected enumerator name")
		e := ast.Enumerator{Pos: p.pos(nameTok), Name: nameTok.Lexeme}
		if p.match(lexer.TokenAssign) {
			e.Value = p.parseAssignment()
		}
		es.Enumerators = append(es.Enumerators, e)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBrace, "expected '}' to close enum body")
	return es
}

// ---- Declarators --------------------------------------------------------------

// parseDeclarator parses pointer/reference prefixes, then a direct
// declarator, then any postfix array/function suffixes, building the
// innermost-outward chain internal/sema's applyDeclarator expects.
func (p *Parser) parseDeclarator() *ast.Declarator {
	var prefixes []*ast.Declarator
	for {
		tok := p.peek()
		switch tok.Type {
		case lexer.TokenStar:
			p.advance()
			d := &ast.Declarator{Pos: p.pos(tok), Kind: ast.DeclPointer}
			if p.match(lexer.TokenConst) {
				d.PointeeConst = true
			}
			prefixes = append(prefixes, d)
			continue
		case lexer.TokenAmp:
			p.advance()
			prefixes = append(prefixes, &ast.Declarator{Pos: p.pos(tok), Kind: ast.DeclReference})
			continue
		}
		break
	}

	direct := p.parseDirectDeclarator()

	for i := len(prefixes) - 1; i >= 0; i-- {
		prefixes[i].Inner = direct
		direct = prefixes[i]
	}
	return direct
}

func (p *Parser) parseDirectDeclarator() *ast.Declarator {
	var base *ast.Declarator
	tok := p.peek()

	switch {
	case p.match(lexer.TokenLParen):
		base = p.parseDeclarator()
		p.consume(lexer.TokenRParen, "expected ')' to close parenthesized declarator")
	case p.check(lexer.TokenOperator):
		base = p.parseOperatorId()
	case p.check(lexer.TokenIdent):
		p.advance()
		base = &ast.Declarator{Pos: p.pos(tok), Kind: ast.DeclId, Name: tok.Lexeme}
	default:
		// abstract declarator: no identifier (used in cast-type-id / sizeof / params)
		base = &ast.Declarator{Pos: p.pos(tok), Kind: ast.DeclId}
	}

	for {
		switch p.peek().Type {
		case lexer.TokenLBracket:
			arrTok := p.advance()
			d := &ast.Declarator{Pos: p.pos(arrTok), Kind: ast.DeclArray, Inner: base}
			if !p.check(lexer.TokenRBracket) {
				d.HasSize = true
				d.Size = p.parseAssignment()
			}
			p.consume(lexer.TokenRBracket, "expected ']'")
			base = d
		case lexer.TokenLParen:
			fnTok := p.advance()
			d := &ast.Declarator{Pos: p.pos(fnTok), Kind: ast.DeclFunction, Inner: base}
			if !p.check(lexer.TokenRParen) {
				d.Params = p.parseParamList()
			}
			p.consume(lexer.TokenRParen, "expected ')'")
			if p.match(lexer.TokenConst) {
				d.IsConst = true
			}
			base = d
		default:
			return base
		}
	}
}

var operatorSymbols = map[lexer.TokenType]string{
	lexer.TokenPlus: "+", lexer.TokenMinus: "-", lexer.TokenStar: "*", lexer.TokenSlash: "/",
	lexer.TokenPercent: "%", lexer.TokenEq: "==", lexer.TokenNeq: "!=", lexer.TokenLT: "<",
	lexer.TokenGT: ">", lexer.TokenLE: "<=", lexer.TokenGE: ">=", lexer.TokenAssign: "=",
	lexer.TokenLBracket: "[]", lexer.TokenAndAnd: "&&", lexer.TokenOrOr: "||", lexer.TokenBang: "!",
}

func (p *Parser) parseOperatorId() *ast.Declarator {
	tok := p.consume(lexer.TokenOperator, "expected 'operator'")
	if sym, ok := operatorSymbols[p.peek().Type]; ok {
		p.advance()
		if sym == "[]" {
			p.consume(lexer.TokenRBracket, "expected ']' to close operator[]")
		}
		return &ast.Declarator{Pos: p.pos(tok), Kind: ast.DeclId, Form: ast.IdOperator, OperatorOp: sym}
	}
	// conversion operator: `operator T()`
	conv, _ := p.parseDeclSpecifierSeq()
	return &ast.Declarator{Pos: p.pos(tok), Kind: ast.DeclId, Form: ast.IdConversion, ConvSpec: &conv}
}

func (p *Parser) parseParamList() []ast.ParamDeclaration {
	var params []ast.ParamDeclaration
	for {
		tok := p.peek()
		spec, ok := p.parseDeclSpecifierSeq()
		if !ok {
			break
		}
		declr := p.parseDeclarator()
		pd := ast.ParamDeclaration{Pos: p.pos(tok), Specifier: spec, Declarator: *declr}
		if p.match(lexer.TokenAssign) {
			pd.Default = p.parseAssignment()
		}
		params = append(params, pd)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	return params
}

// ---- Statements ----------------------------------------------------------------

func (p *Parser) parseCompoundStmt() *ast.CompoundStmt {
	tok := p.consume(lexer.TokenLBrace, "expected '{'")
	cs := &ast.CompoundStmt{Pos: p.pos(tok)}
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		if s := p.parseStatementRecovering(); s != nil {
			cs.Stmts = append(cs.Stmts, s)
		}
	}
	p.consume(lexer.TokenRBrace, "expected '}' to close block")
	return cs
}

func (p *Parser) parseStatementRecovering() ast.Stmt {
	start := p.current
	s := p.parseStatement()
	if s == nil && p.current == start {
		p.advance()
	}
	return s
}

func (p *Parser) parseStatement() ast.Stmt {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenLBrace:
		return p.parseCompoundStmt()
	case lexer.TokenIf:
		return p.parseIfStmt()
	case lexer.TokenWhile:
		return p.parseWhileStmt()
	case lexer.TokenDo:
		return p.parseDoStmt()
	case lexer.TokenFor:
		return p.parseForStmt()
	case lexer.TokenSwitch:
		return p.parseSwitchStmt()
	case lexer.TokenCase:
		p.advance()
		val := p.parseAssignment()
		p.consume(lexer.TokenColon, "expected ':' after case value")
		return &ast.CaseStmt{Pos: p.pos(tok), Value: val}
	case lexer.TokenDefault:
		p.advance()
		p.consume(lexer.TokenColon, "expected ':' after 'default'")
		return &ast.DefaultStmt{Pos: p.pos(tok)}
	case lexer.TokenBreak:
		p.advance()
		p.consume(lexer.TokenSemicolon, "expected ';' after 'break'")
		return &ast.BreakStmt{Pos: p.pos(tok)}
	case lexer.TokenContinue:
		p.advance()
		p.consume(lexer.TokenSemicolon, "expected ';' after 'continue'")
		return &ast.ContinueStmt{Pos: p.pos(tok)}
	case lexer.TokenReturn:
		p.advance()
		r := &ast.ReturnStmt{Pos: p.pos(tok)}
		if !p.check(lexer.TokenSemicolon) {
			r.Value = p.parseExpression()
		}
		p.consume(lexer.TokenSemicolon, "expected ';' after return value")
		return r
	case lexer.TokenSemicolon:
		p.advance()
		return &ast.CompoundStmt{Pos: p.pos(tok)} // empty statement
	}

	if p.looksLikeDeclaration() {
		d := p.parseDeclaration()
		if d == nil {
			return nil
		}
		return &ast.DeclStmt{Pos: p.pos(tok), Decl: *d}
	}

	expr := p.parseExpression()
	p.consume(lexer.TokenSemicolon, "expected ';' after expression statement")
	return &ast.ExprStmt{Pos: p.pos(tok), Expr: expr}
}

func (p *Parser) looksLikeDeclaration() bool {
	switch p.peek().Type {
	case lexer.TokenConst, lexer.TokenStatic, lexer.TokenTypedef, lexer.TokenClass, lexer.TokenEnum,
		lexer.TokenVoid, lexer.TokenBool, lexer.TokenChar, lexer.TokenShort, lexer.TokenInt,
		lexer.TokenLong, lexer.TokenFloat, lexer.TokenDouble, lexer.TokenUnsigned:
		return true
	case lexer.TokenIdent:
		// `Name ident` or `Name *ident`/`Name &ident` starts a declaration;
		// `Name =`/`Name (`/`Name .` etc. is an expression statement.
		next := p.tokenAt(p.current + 1)
		return next.Type == lexer.TokenIdent || next.Type == lexer.TokenStar || next.Type == lexer.TokenAmp
	}
	return false
}

func (p *Parser) parseIfStmt() ast.Stmt {
	tok := p.consume(lexer.TokenIf, "expected 'if'")
	p.consume(lexer.TokenLParen, "expected '(' after 'if'")
	cond := p.parseExpression()
	p.consume(lexer.TokenRParen, "expected ')' after if condition")
	then := p.parseStatement()
	s := &ast.IfStmt{Pos: p.pos(tok), Cond: cond, Then: then}
	if p.match(lexer.TokenElse) {
		s.Else = p.parseStatement()
	}
	return s
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	tok := p.consume(lexer.TokenWhile, "expected 'while'")
	p.consume(lexer.TokenLParen, "expected '(' after 'while'")
	cond := p.parseExpression()
	p.consume(lexer.TokenRParen, "expected ')' after while condition")
	body := p.parseStatement()
	return &ast.WhileStmt{Pos: p.pos(tok), Cond: cond, Body: body}
}

func (p *Parser) parseDoStmt() ast.Stmt {
	tok := p.consume(lexer.TokenDo, "expected 'do'")
	body := p.parseStatement()
	p.consume(lexer.TokenWhile, "expected 'while' after do-block")
	p.consume(lexer.TokenLParen, "expected '(' after 'while'")
	cond := p.parseExpression()
	p.consume(lexer.TokenRParen, "expected ')' after do-while condition")
	p.consume(lexer.TokenSemicolon, "expected ';' after do-while statement")
	return &ast.DoStmt{Pos: p.pos(tok), Cond: cond, Body: body}
}

func (p *Parser) parseForStmt() ast.Stmt {
	tok := p.consume(lexer.TokenFor, "expected 'for'")
	p.consume(lexer.TokenLParen, "expected '(' after 'for'")
	s := &ast.ForStmt{Pos: p.pos(tok)}
	if !p.check(lexer.TokenSemicolon) {
		if p.looksLikeDeclaration() {
			d := p.parseDeclaration()
			if d != nil {
				s.Init = &ast.DeclStmt{Pos: p.pos(tok), Decl: *d}
			}
		} else {
			e := p.parseExpression()
			s.Init = &ast.ExprStmt{Pos: p.pos(tok), Expr: e}
			p.consume(lexer.TokenSemicolon, "expected ';' after for-init")
		}
	} else {
		p.advance()
	}
	if !p.check(lexer.TokenSemicolon) {
		s.Cond = p.parseExpression()
	}
	p.consume(lexer.TokenSemicolon, "expected ';' after for-condition")
	if !p.check(lexer.TokenRParen) {
		s.Post = p.parseExpression()
	}
	p.consume(lexer.TokenRParen, "expected ')' after for-clauses")
	s.Body = p.parseStatement()
	return s
}

func (p *Parser) parseSwitchStmt() ast.Stmt {
	tok := p.consume(lexer.TokenSwitch, "expected 'switch'")
	p.consume(lexer.TokenLParen, "expected '(' after 'switch'")
	cond := p.parseExpression()
	p.consume(lexer.TokenRParen, "expected ')' after switch condition")
	body := p.parseCompoundStmt()
	return &ast.SwitchStmt{Pos: p.pos(tok), Cond: cond, Body: body}
}

// ---- Expressions -----------------------------------------------------------
//
// Precedence, loosest to tightest: assignment, conditional, ||, &&, |,
// ^, &, equality, relational, shift, additive, multiplicative, unary,
// postfix, primary. Comma is handled only inside argument/initializer
// lists, not as a general binary operator, since this language's
// statement grammar never needs the comma operator standalone.

func (p *Parser) parseExpression() ast.Expr {
	return p.parseAssignment()
}

var compoundAssignOps = map[lexer.TokenType]string{
	lexer.TokenPlusEq: "+", lexer.TokenMinusEq: "-", lexer.TokenStarEq: "*", lexer.TokenSlashEq: "/",
	lexer.TokenPercentEq: "%", lexer.TokenShlEq: "<<", lexer.TokenShrEq: ">>",
	lexer.TokenAmpEq: "&", lexer.TokenCaretEq: "^", lexer.TokenPipeEq: "|",
}

func (p *Parser) parseAssignment() ast.Expr {
	lhs := p.parseConditional()
	tok := p.peek()
	if tok.Type == lexer.TokenAssign {
		p.advance()
		rhs := p.parseAssignment()
		return &ast.AssignExpr{Pos: p.pos(tok), Lhs: lhs, Rhs: rhs}
	}
	if sym, ok := compoundAssignOps[tok.Type]; ok {
		p.advance()
		rhs := p.parseAssignment()
		return &ast.AssignExpr{Pos: p.pos(tok), Lhs: lhs, Rhs: rhs, Compound: true, Op: binOpOf(sym)}
	}
	return lhs
}

func (p *Parser) parseConditional() ast.Expr {
	cond := p.parseLogicalOr()
	if p.match(lexer.TokenQuestion) {
		then := p.parseAssignment()
		p.consume(lexer.TokenColon, "expected ':' in conditional expression")
		els := p.parseAssignment()
		return &ast.ConditionalExpr{Pos: cond.Position(), Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) parseLogicalOr() ast.Expr {
	lhs := p.parseLogicalAnd()
	for p.check(lexer.TokenOrOr) {
		tok := p.advance()
		rhs := p.parseLogicalAnd()
		lhs = &ast.BinaryExpr{Pos: p.pos(tok), Op: ast.BinLogicalOr, Left: lhs, Right: rhs}
	}
	return lhs
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	lhs := p.parseBitOr()
	for p.check(lexer.TokenAndAnd) {
		tok := p.advance()
		rhs := p.parseBitOr()
		lhs = &ast.BinaryExpr{Pos: p.pos(tok), Op: ast.BinLogicalAnd, Left: lhs, Right: rhs}
	}
	return lhs
}

func (p *Parser) parseBitOr() ast.Expr {
	lhs := p.parseBitXor()
	for p.check(lexer.TokenPipe) {
		tok := p.advance()
		rhs := p.parseBitXor()
		lhs = &ast.BinaryExpr{Pos: p.pos(tok), Op: ast.BinBitOr, Left: lhs, Right: rhs}
	}
	return lhs
}

func (p *Parser) parseBitXor() ast.Expr {
	lhs := p.parseBitAnd()
	for p.check(lexer.TokenCaret) {
		tok := p.advance()
		rhs := p.parseBitAnd()
		lhs = &ast.BinaryExpr{Pos: p.pos(tok), Op: ast.BinBitXor, Left: lhs, Right: rhs}
	}
	return lhs
}

func (p *Parser) parseBitAnd() ast.Expr {
	lhs := p.parseEquality()
	for p.check(lexer.TokenAmp) {
		tok := p.advance()
		rhs := p.parseEquality()
		lhs = &ast.BinaryExpr{Pos: p.pos(tok), Op: ast.BinBitAnd, Left: lhs, Right: rhs}
	}
	return lhs
}

func (p *Parser) parseEquality() ast.Expr {
	lhs := p.parseRelational()
	for p.check(lexer.TokenEq) || p.check(lexer.TokenNeq) {
		tok := p.advance()
		op := ast.BinEq
		if tok.Type == lexer.TokenNeq {
			op = ast.BinNe
		}
		rhs := p.parseRelational()
		lhs = &ast.BinaryExpr{Pos: p.pos(tok), Op: op, Left: lhs, Right: rhs}
	}
	return lhs
}

func (p *Parser) parseRelational() ast.Expr {
	lhs := p.parseShift()
	for {
		tok := p.peek()
		var op ast.BinaryOpKind
		switch tok.Type {
		case lexer.TokenLT:
			op = ast.BinLt
		case lexer.TokenGT:
			op = ast.BinGt
		case lexer.TokenLE:
			op = ast.BinLe
		case lexer.TokenGE:
			op = ast.BinGe
		default:
			return lhs
		}
		p.advance()
		rhs := p.parseShift()
		lhs = &ast.BinaryExpr{Pos: p.pos(tok), Op: op, Left: lhs, Right: rhs}
	}
}

func (p *Parser) parseShift() ast.Expr {
	lhs := p.parseAdditive()
	for {
		tok := p.peek()
		var op ast.BinaryOpKind
		switch tok.Type {
		case lexer.TokenShl:
			op = ast.BinShl
		case lexer.TokenShr:
			op = ast.BinShr
		default:
			return lhs
		}
		p.advance()
		rhs := p.parseAdditive()
		lhs = &ast.BinaryExpr{Pos: p.pos(tok), Op: op, Left: lhs, Right: rhs}
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	lhs := p.parseMultiplicative()
	for {
		tok := p.peek()
		var op ast.BinaryOpKind
		switch tok.Type {
		case lexer.TokenPlus:
			op = ast.BinAdd
		case lexer.TokenMinus:
			op = ast.BinSub
		default:
			return lhs
		}
		p.advance()
		rhs := p.parseMultiplicative()
		lhs = &ast.BinaryExpr{Pos: p.pos(tok), Op: op, Left: lhs, Right: rhs}
	}
}

func (p *Parser) parseMultiplicative() ast.Expr {
	lhs := p.parseUnary()
	for {
		tok := p.peek()
		var op ast.BinaryOpKind
		switch tok.Type {
		case lexer.TokenStar:
			op = ast.BinMul
		case lexer.TokenSlash:
			op = ast.BinDiv
		case lexer.TokenPercent:
			op = ast.BinMod
		default:
			return lhs
		}
		p.advance()
		rhs := p.parseUnary()
		lhs = &ast.BinaryExpr{Pos: p.pos(tok), Op: op, Left: lhs, Right: rhs}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenPlus:
		p.advance()
		return &ast.UnaryExpr{Pos: p.pos(tok), Op: ast.UnaryPlus, Operand: p.parseUnary()}
	case lexer.TokenMinus:
		p.advance()
		return &ast.UnaryExpr{Pos: p.pos(tok), Op: ast.UnaryMinus, Operand: p.parseUnary()}
	case lexer.TokenBang:
		p.advance()
		return &ast.UnaryExpr{Pos: p.pos(tok), Op: ast.UnaryNot, Operand: p.parseUnary()}
	case lexer.TokenTilde:
		p.advance()
		return &ast.UnaryExpr{Pos: p.pos(tok), Op: ast.UnaryBitNot, Operand: p.parseUnary()}
	case lexer.TokenAmp:
		p.advance()
		return &ast.UnaryExpr{Pos: p.pos(tok), Op: ast.UnaryAddrOf, Operand: p.parseUnary()}
	case lexer.TokenStar:
		p.advance()
		return &ast.UnaryExpr{Pos: p.pos(tok), Op: ast.UnaryDeref, Operand: p.parseUnary()}
	case lexer.TokenPlusPlus:
		p.advance()
		return &ast.UnaryExpr{Pos: p.pos(tok), Op: ast.UnaryPreIncr, Operand: p.parseUnary()}
	case lexer.TokenMinusMinus:
		p.advance()
		return &ast.UnaryExpr{Pos: p.pos(tok), Op: ast.UnaryPreDecr, Operand: p.parseUnary()}
	case lexer.TokenSizeof:
		p.advance()
		p.consume(lexer.TokenLParen, "expected '(' after 'sizeof'")
		spec, _ := p.parseDeclSpecifierSeq()
		declr := p.parseDeclarator()
		p.consume(lexer.TokenRParen, "expected ')' after sizeof operand")
		return &ast.SizeofTypeExpr{Pos: p.pos(tok), Specifier: spec, Abstract: *declr}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		tok := p.peek()
		switch tok.Type {
		case lexer.TokenDot:
			p.advance()
			nameTok := p.consume(lexer.TokenIdent, "expected member name after '.'")
			expr = &ast.MemberExpr{Pos: p.pos(tok), Base: expr, Member: nameTok.Lexeme}
		case lexer.TokenArrow:
			p.advance()
			nameTok := p.consume(lexer.TokenIdent, "expected member name after '->'")
			expr = &ast.MemberExpr{Pos: p.pos(tok), Base: expr, Member: nameTok.Lexeme, Arrow: true}
		case lexer.TokenLBracket:
			p.advance()
			idx := p.parseExpression()
			p.consume(lexer.TokenRBracket, "expected ']' after index expression")
			expr = &ast.IndexExpr{Pos: p.pos(tok), Base: expr, Index: idx}
		case lexer.TokenLParen:
			p.advance()
			var args []ast.Expr
			if !p.check(lexer.TokenRParen) {
				for {
					args = append(args, p.parseAssignment())
					if !p.match(lexer.TokenComma) {
						break
					}
				}
			}
			p.consume(lexer.TokenRParen, "expected ')' after call arguments")
			expr = &ast.CallExpr{Pos: p.pos(tok), Callee: expr, Args: args}
		case lexer.TokenPlusPlus:
			p.advance()
			expr = &ast.UnaryExpr{Pos: p.pos(tok), Op: ast.UnaryPostIncr, Operand: expr}
		case lexer.TokenMinusMinus:
			p.advance()
			expr = &ast.UnaryExpr{Pos: p.pos(tok), Op: ast.UnaryPostDecr, Operand: expr}
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenIntLit:
		p.advance()
		return &ast.Literal{Pos: p.pos(tok), Kind: ast.LitInt, IntVal: tok.IntVal}
	case lexer.TokenFloatLit:
		p.advance()
		return &ast.Literal{Pos: p.pos(tok), Kind: ast.LitFloat, FloatVal: tok.FloatVal}
	case lexer.TokenCharLit:
		p.advance()
		return &ast.Literal{Pos: p.pos(tok), Kind: ast.LitChar, CharVal: tok.CharVal}
	case lexer.TokenStrLit:
		p.advance()
		return &ast.Literal{Pos: p.pos(tok), Kind: ast.LitString, StrVal: tok.Lexeme}
	case lexer.TokenTrue:
		p.advance()
		return &ast.Literal{Pos: p.pos(tok), Kind: ast.LitBool, BoolVal: true}
	case lexer.TokenFalse:
		p.advance()
		return &ast.Literal{Pos: p.pos(tok), Kind: ast.LitBool, BoolVal: false}
	case lexer.TokenIdent:
		p.advance()
		id := &ast.IdExpr{Pos: p.pos(tok), Name: tok.Lexeme}
		if p.match(lexer.TokenDColon) {
			nameTok := p.consume(lexer.TokenIdent, "expected name after '::'")
			return &ast.IdExpr{Pos: p.pos(tok), Name: nameTok.Lexeme, Qualifier: id.Name, Qualified: true}
		}
		return id
	case lexer.TokenLParen:
		p.advance()
		if p.looksLikeCastType() {
			spec, _ := p.parseDeclSpecifierSeq()
			declr := p.parseDeclarator()
			p.consume(lexer.TokenRParen, "expected ')' after cast type")
			operand := p.parseUnary()
			return &ast.CastExpr{Pos: p.pos(tok), Target: spec, Abstract: *declr, Operand: operand}
		}
		inner := p.parseExpression()
		p.consume(lexer.TokenRParen, "expected ')' to close parenthesized expression")
		return inner
	}
	p.Errors = append(p.Errors, fmt.Errorf("%s: unexpected token %s in expression", p.pos(tok), tok))
	p.advance()
	return &ast.Literal{Pos: p.pos(tok), Kind: ast.LitInt, IntVal: 0}
}

// looksLikeCastType reports whether the tokens just inside an open paren
// start a type-id rather than an expression, so `(int)x` parses as a
// cast while `(x)` parses as a grouped expression.
func (p *Parser) looksLikeCastType() bool {
	switch p.peek().Type {
	case lexer.TokenVoid, lexer.TokenBool, lexer.TokenChar, lexer.TokenShort, lexer.TokenInt,
		lexer.TokenLong, lexer.TokenFloat, lexer.TokenDouble, lexer.TokenUnsigned, lexer.TokenConst:
		return true
	case lexer.TokenIdent:
		next := p.tokenAt(p.current + 1)
		return next.Type == lexer.TokenRParen || next.Type == lexer.TokenStar || next.Type == lexer.TokenAmp
	}
	return false
}

func binOpOf(sym string) ast.BinaryOpKind {
	switch sym {
	case "+":
		return ast.BinAdd
	case "-":
		return ast.BinSub
	case "*":
		return ast.BinMul
	case "/":
		return ast.BinDiv
	case "%":
		return ast.BinMod
	case "<<":
		return ast.BinShl
	case ">>":
		return ast.BinShr
	case "&":
		return ast.BinBitAnd
	case "^":
		return ast.BinBitXor
	case "|":
		return ast.BinBitOr
	}
	return ast.BinAdd
}

// ---- Token cursor helpers -------------------------------------------------------

func (p *Parser) peek() lexer.Token    { return p.tokenAt(p.current) }
func (p *Parser) previous() lexer.Token { return p.tokenAt(p.current - 1) }

func (p *Parser) tokenAt(i int) lexer.Token {
	if i < 0 || i >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[i]
}

func (p *Parser) isAtEnd() bool { return p.peek().Type == lexer.TokenEOF }

func (p *Parser) check(t lexer.TokenType) bool { return p.peek().Type == t }

func (p *Parser) checkNext(t lexer.TokenType) bool { return p.tokenAt(p.current + 1).Type == t }

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	tok := p.peek()
	p.Errors = append(p.Errors, fmt.Errorf("%s: %s (got %s)", p.pos(tok), msg, tok))
	return tok
}
