package lexer

import (
	"testing"

	"phase/token"
)

func scanTypes(t *testing.T, input string) []token.TokenType {
	t.Helper()
	toks, err := New("test.phase", input).Scan()
	if err != nil {
		t.Fatalf("Scan(%q) raised an error: %v", input, err)
	}
	types := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.TokenType
	}
	return types
}

func TestOperators(t *testing.T) {
	got := scanTypes(t, "== / = * + > - < != <= >= ! && ||")
	want := []token.TokenType{
		token.EQUAL_EQUAL, token.DIV, token.ASSIGN, token.MULT, token.ADD,
		token.LARGER, token.SUB, token.LESS, token.NOT_EQUAL, token.LESS_EQUAL,
		token.LARGER_EQUAL, token.BANG, token.AND_AND, token.OR_OR, token.EOF,
	}
	assertTypesEqual(t, got, want)
}

func TestDelimiters(t *testing.T) {
	got := scanTypes(t, "(){};,:")
	want := []token.TokenType{
		token.LPA, token.RPA, token.LCUR, token.RCUR, token.SEMICOLON,
		token.COMMA, token.COLON, token.EOF,
	}
	assertTypesEqual(t, got, want)
}

func TestKeywordsAndTypeAnnotations(t *testing.T) {
	got := scanTypes(t, "entry func let return if else while out true false int float bool str void")
	want := []token.TokenType{
		token.ENTRY, token.FUNC, token.LET, token.RETURN, token.IF, token.ELSE,
		token.WHILE, token.OUT, token.TRUE, token.FALSE,
		token.TYPE_INT, token.TYPE_FLOAT, token.TYPE_BOOL, token.TYPE_STR, token.TYPE_VOID,
		token.EOF,
	}
	assertTypesEqual(t, got, want)
}

func TestIdentifier(t *testing.T) {
	toks, err := New("test.phase", "counter_1").Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].TokenType != token.IDENTIFIER || toks[0].Lexeme != "counter_1" {
		t.Errorf("got %+v, want IDENTIFIER 'counter_1'", toks[0])
	}
}

func TestNumberLiterals(t *testing.T) {
	toks, err := New("test.phase", "42 3.14").Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].TokenType != token.INT || toks[0].Literal.(int32) != 42 {
		t.Errorf("got %+v, want INT 42", toks[0])
	}
	if toks[1].TokenType != token.FLOAT || toks[1].Literal.(float64) != 3.14 {
		t.Errorf("got %+v, want FLOAT 3.14", toks[1])
	}
}

func TestStringLiteral(t *testing.T) {
	toks, err := New("test.phase", `"hello"`).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].TokenType != token.STRING || toks[0].Literal.(string) != "hello" {
		t.Errorf("got %+v, want STRING 'hello'", toks[0])
	}
}

func TestUnterminatedStringReportsDiagnostic(t *testing.T) {
	_, err := New("test.phase", `"unterminated`).Scan()
	if err == nil {
		t.Fatal("expected an unterminated string diagnostic, got nil")
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	got := scanTypes(t, "let x: int = 1 # trailing comment\n")
	want := []token.TokenType{
		token.LET, token.IDENTIFIER, token.COLON, token.TYPE_INT, token.ASSIGN, token.INT, token.EOF,
	}
	assertTypesEqual(t, got, want)
}

func TestLineAndColumnTracking(t *testing.T) {
	toks, err := New("test.phase", "let\nx").Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Line != 1 || toks[0].Column != 1 {
		t.Errorf("'let' at %d:%d, want 1:1", toks[0].Line, toks[0].Column)
	}
	if toks[1].Line != 2 || toks[1].Column != 1 {
		t.Errorf("'x' at %d:%d, want 2:1", toks[1].Line, toks[1].Column)
	}
}

func assertTypesEqual(t *testing.T, got, want []token.TokenType) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d tokens %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
