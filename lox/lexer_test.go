package lox

import "testing"

func TestScanTokensBasic(t *testing.T) {
	tokens, diags := scanTokens("var x = 1.5; // trailing\n\"hi\" != nil")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	want := []TokenType{tokenVar, tokenIdent, tokenAssign, tokenNumber, tokenSemicolon, tokenString, tokenNotEQ, tokenNil, tokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Fatalf("token %d: expected %s, got %s", i, tt, tokens[i].Type)
		}
	}
	if tokens[3].Literal != 1.5 {
		t.Fatalf("expected literal 1.5, got %v", tokens[3].Literal)
	}
	if tokens[5].Literal != "hi" || tokens[5].Line() != 2 {
		t.Fatalf("unexpected string token %v", tokens[5])
	}
}

func TestScanTokensNumberWithoutFraction(t *testing.T) {
	tokens, _ := scanTokens("1.")
	if len(tokens) != 3 || tokens[0].Type != tokenNumber || tokens[1].Type != tokenDot {
		t.Fatalf("expected number then dot, got %v", tokens)
	}
	if tokens[0].Lexeme != "1" {
		t.Fatalf("unexpected lexeme %q", tokens[0].Lexeme)
	}
}

func TestScanTokensMultilineString(t *testing.T) {
	tokens, diags := scanTokens("\"a\nb\" x")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if tokens[0].Literal != "a\nb" {
		t.Fatalf("unexpected literal %q", tokens[0].Literal)
	}
	if tokens[1].Line() != 2 {
		t.Fatalf("expected identifier on line 2, got %d", tokens[1].Line())
	}
}

func TestScanTokensErrorsContinue(t *testing.T) {
	tokens, diags := scanTokens("print @ 1;\n\"open")
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", diags)
	}
	if got := diags[0].String(); got != "[line 1] Error: Unexpected character." {
		t.Fatalf("unexpected first diagnostic %q", got)
	}
	if got := diags[1].String(); got != "[line 2] Error: Unterminated string." {
		t.Fatalf("unexpected second diagnostic %q", got)
	}
	if tokens[len(tokens)-1].Type != tokenEOF {
		t.Fatalf("expected trailing EOF")
	}
	for _, tok := range tokens {
		if tok.Type == tokenIllegal {
			t.Fatalf("illegal token leaked: %v", tok)
		}
	}
}

func TestScanTokensEOFLine(t *testing.T) {
	tokens, _ := scanTokens("print 1;\n")
	eof := tokens[len(tokens)-1]
	if eof.Line() != 2 {
		t.Fatalf("expected EOF on line 2, got %d", eof.Line())
	}
}
