package token

import (
	"testing"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		line      int
		column    int
		want      Token
	}{
		{
			name:      "Create ASSIGN token",
			tokenType: ASSIGN,
			line:      1,
			column:    3,
			want:      Token{TokenType: ASSIGN, Lexeme: "=", Line: 1, Column: 3},
		},
		{
			name:      "Create LCUR token",
			tokenType: LCUR,
			line:      2,
			column:    1,
			want:      Token{TokenType: LCUR, Lexeme: "{", Line: 2, Column: 1},
		},
		{
			name:      "Create LARGER_EQUAL token",
			tokenType: LARGER_EQUAL,
			line:      4,
			column:    9,
			want:      Token{TokenType: LARGER_EQUAL, Lexeme: ">=", Line: 4, Column: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, tt.line, tt.column)
			if got != tt.want {
				t.Errorf("CreateToken() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	tok := CreateLiteralToken(INT, int32(42), "42", 1, 1)
	if tok.Literal != int32(42) {
		t.Errorf("Literal = %v, want 42", tok.Literal)
	}
	if tok.Lexeme != "42" {
		t.Errorf("Lexeme = %q, want %q", tok.Lexeme, "42")
	}
}

func TestEndColumn(t *testing.T) {
	tests := []struct {
		name string
		tok  Token
		want int
	}{
		{"single char", CreateToken(LPA, 1, 5), 5},
		{"two char operator", CreateToken(LARGER_EQUAL, 1, 5), 6},
		{"identifier", CreateLiteralToken(IDENTIFIER, nil, "counter", 1, 5), 11},
		{"empty lexeme", Token{Line: 1, Column: 3}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tok.EndColumn(); got != tt.want {
				t.Errorf("EndColumn() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKeyWordsCoverPrimitiveTypes(t *testing.T) {
	for _, name := range []string{"int", "float", "bool", "str", "void"} {
		if _, ok := KeyWords[name]; !ok {
			t.Errorf("KeyWords missing primitive type %q", name)
		}
	}
}
