package lexer

import "testing"

func scanTypes(t *testing.T, input string) []TokenType {
	t.Helper()
	toks, err := NewScanner(input, "<test>").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens(%q): %v", input, err)
	}
	types := make([]TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func assertTypes(t *testing.T, input string, want ...TokenType) {
	t.Helper()
	want = append(want, TokenEOF)
	got := scanTypes(t, input)
	if len(got) != len(want) {
		t.Fatalf("%q: got %v, want %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%q: token %d: got %s, want %s", input, i, got[i], want[i])
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	assertTypes(t, "(", TokenLParen)
	assertTypes(t, "::", TokenDoubleColon)
	assertTypes(t, ":", TokenColon)
	assertTypes(t, "++", TokenPlusPlus)
	assertTypes(t, "++=", TokenCatEq)
	assertTypes(t, "+=", TokenPlusEq)
	assertTypes(t, "+", TokenPlus)
	assertTypes(t, "//", TokenISlash)
	assertTypes(t, "//=", TokenISlashEq)
	assertTypes(t, "/=", TokenFSlashEq)
	assertTypes(t, "==", TokenEqEq)
	assertTypes(t, "!=", TokenNotEq)
	assertTypes(t, "&&", TokenLAnd)
	assertTypes(t, "||", TokenLOr)
}

func TestScanKeywordsVsIdentifiers(t *testing.T) {
	assertTypes(t, "fun", TokenFun)
	assertTypes(t, "function", TokenIdent)
	assertTypes(t, "extends", TokenExtends)
	assertTypes(t, "true false nil", TokenTrue, TokenFalse, TokenNil)
}

func TestScanNumbers(t *testing.T) {
	assertTypes(t, "42", TokenInt)
	assertTypes(t, "3.14", TokenFloat)
	assertTypes(t, "3.", TokenInt, TokenDot)
}

func TestScanStrings(t *testing.T) {
	toks := scanTypes(t, `"hi"`)
	if toks[0] != TokenString {
		t.Fatalf("expected TokenString, got %s", toks[0])
	}
}

func TestScanStringEscapes(t *testing.T) {
	toks, err := NewScanner(`"a\nb"`, "<test>").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	if toks[0].Lexeme != "a\nb" {
		t.Errorf("expected escaped newline, got %q", toks[0].Lexeme)
	}
}

func TestScanRawStringSkipsEscapes(t *testing.T) {
	toks, err := NewScanner(`r"a\nb"`, "<test>").ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	if toks[0].Lexeme != `a\nb` {
		t.Errorf("expected raw escape sequence preserved, got %q", toks[0].Lexeme)
	}
}

func TestScanNoteAndDocPrefixes(t *testing.T) {
	assertTypes(t, `n"""a note"""`, TokenNote)
	assertTypes(t, `d"""a doc"""`, TokenDoc)
}

func TestScanCommentsAndShebangSkipped(t *testing.T) {
	assertTypes(t, "#!/usr/bin/env mash\nx", TokenIdent)
	assertTypes(t, "x # trailing comment", TokenIdent)
	assertTypes(t, "x // trailing comment", TokenIdent)
}

func TestScanUnterminatedStringIsSyntaxError(t *testing.T) {
	_, err := NewScanner(`"unterminated`, "<test>").ScanTokens()
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestScanUnexpectedCharacterIsSyntaxError(t *testing.T) {
	_, err := NewScanner("$", "<test>").ScanTokens()
	if err == nil {
		t.Fatal("expected error for unexpected character")
	}
}

func TestScanLoneAmpersandIsSyntaxError(t *testing.T) {
	_, err := NewScanner("&", "<test>").ScanTokens()
	if err == nil {
		t.Fatal("expected error for lone '&'")
	}
}
