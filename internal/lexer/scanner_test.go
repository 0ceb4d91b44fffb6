package lexer

import "testing"

func TestScanTokensBasicDeclaration(t *testing.T) {
	s := NewScanner("int x = 42;")
	toks := s.ScanTokens()
	if len(s.Errors()) != 0 {
		t.Fatalf("unexpected lex errors: %v", s.Errors())
	}

	want := []TokenType{TokenInt, TokenIdent, TokenAssign, TokenIntLit, TokenSemicolon, TokenEOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
	if toks[3].IntVal != 42 {
		t.Fatalf("int literal: got %d, want 42", toks[3].IntVal)
	}
}

func TestScanTokensOperatorsAndComments(t *testing.T) {
	s := NewScanner("a += b; // trailing comment\n/* block */ a->b :: c")
	toks := s.ScanTokens()
	if len(s.Errors()) != 0 {
		t.Fatalf("unexpected lex errors: %v", s.Errors())
	}
	want := []TokenType{
		TokenIdent, TokenPlusEq, TokenIdent, TokenSemicolon,
		TokenIdent, TokenArrow, TokenIdent, TokenDColon, TokenIdent, TokenEOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].Type, tt)
		}
	}
}

func TestScanTokensUnterminatedStringIsAnError(t *testing.T) {
	s := NewScanner(`"unterminated`)
	s.ScanTokens()
	if len(s.Errors()) == 0 {
		t.Fatal("unterminated string literal should report a lex error")
	}
}

func TestScanTokensCharLiteral(t *testing.T) {
	s := NewScanner(`'a'`)
	toks := s.ScanTokens()
	if len(s.Errors()) != 0 {
		t.Fatalf("unexpected lex errors: %v", s.Errors())
	}
	if toks[0].Type != TokenCharLit || toks[0].CharVal != 'a' {
		t.Fatalf("got %+v, want char literal 'a'", toks[0])
	}
}
