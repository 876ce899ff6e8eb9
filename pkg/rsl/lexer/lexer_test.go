package lexer

import (
	"strings"
	"testing"
	"time"

	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
)

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

func equalTypes(a, b []TokenType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenize_TokenTypes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "module header",
			input: "MODULE [Scheduling]:",
			want:  []TokenType{MODULE, NAME, COLON, NEWLINE, EOF},
		},
		{
			name:  "lowercase keywords",
			input: "module [A]\nend",
			want:  []TokenType{MODULE, NAME, NEWLINE, END, NEWLINE, EOF},
		},
		{
			name:  "assignment line",
			input: "= 45 minutes",
			want:  []TokenType{ASSIGN, DURATION, NEWLINE, EOF},
		},
		{
			name:  "conditional",
			input: `= IF(branch_type == "urban", 30 minutes)`,
			want:  []TokenType{ASSIGN, IF, LPAREN, IDENT, EQ, STRING, COMMA, DURATION, RPAREN, NEWLINE, EOF},
		},
		{
			name:  "comparison operators",
			input: "a != b < c > d <= e >= f",
			want:  []TokenType{IDENT, NEQ, IDENT, LT, IDENT, GT, IDENT, LTE, IDENT, GTE, IDENT, NEWLINE, EOF},
		},
		{
			name:  "logical and literals",
			input: "TRUE AND false OR null",
			want:  []TokenType{TRUE, AND, FALSE, OR, NULL, NEWLINE, EOF},
		},
		{
			name:  "time call",
			input: "TIME(9, 30, 0)",
			want:  []TokenType{TIME, LPAREN, NUMBER, COMMA, NUMBER, COMMA, NUMBER, RPAREN, NEWLINE, EOF},
		},
		{
			name:  "blank lines collapse",
			input: "\n\nEND\n\n\nEND\n",
			want:  []TokenType{END, NEWLINE, END, NEWLINE, EOF},
		},
		{
			name:  "empty input",
			input: "",
			want:  []TokenType{EOF},
		},
		{
			name:  "number followed by non-unit word",
			input: "30 apples",
			want:  []TokenType{NUMBER, IDENT, NEWLINE, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, errs := Tokenize(tt.input, "test.rules")
			if errs.HasErrors() {
				t.Fatalf("Tokenize() errors: %v", errs)
			}
			if got := tokenTypes(tokens); !equalTypes(got, tt.want) {
				t.Errorf("Tokenize() types = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenize_Literals(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ast.Value
	}{
		{"integer", "42", ast.NumberValue(42)},
		{"decimal", "1.5", ast.NumberValue(1.5)},
		{"string", `"urban"`, ast.StringValue("urban")},
		{"escaped string", `"a\"b\\c\nd\te"`, ast.StringValue("a\"b\\c\nd\te")},
		{"minutes", "30 minutes", ast.DurationValue(30 * time.Minute)},
		{"singular minute", "1 minute", ast.DurationValue(time.Minute)},
		{"hours", "2 hours", ast.DurationValue(2 * time.Hour)},
		{"seconds", "90 seconds", ast.DurationValue(90 * time.Second)},
		{"fractional hour", "1.5 hours", ast.DurationValue(90 * time.Minute)},
		{"unit without space", "45minutes", ast.DurationValue(45 * time.Minute)},
		{"mixed case unit", "10 Minutes", ast.DurationValue(10 * time.Minute)},
		{"true", "TRUE", ast.BoolValue(true)},
		{"false", "False", ast.BoolValue(false)},
		{"null", "NULL", ast.Null},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, errs := Tokenize(tt.input, "")
			if errs.HasErrors() {
				t.Fatalf("Tokenize() errors: %v", errs)
			}
			if got := tokens[0].Value; got != tt.want {
				t.Errorf("Value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenize_SubSecondDuration(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"0.5 seconds", true},
		{"1.25 seconds", true},
		{"0.001 hours", true},
		{"1.5 seconds", true},
		{"0.5 minutes", false},
		{"0.25 hours", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, errs := Tokenize(tt.input, "")
			if errs.HasErrors() != tt.wantErr {
				t.Fatalf("Tokenize(%q) errors = %v, wantErr %v", tt.input, errs, tt.wantErr)
			}
			if tokens[0].Type != DURATION {
				t.Errorf("Type = %v, want DURATION", tokens[0].Type)
			}
			if !tt.wantErr {
				return
			}
			e := errs.Errors[0]
			if e.Type != rslErrors.ErrorTypeSyntax || !strings.Contains(e.Message, "not a whole number of seconds") {
				t.Errorf("error = %s: %s, want SyntaxError about whole seconds", e.Type, e.Message)
			}
		})
	}
}

func TestTokenize_BracketedName(t *testing.T) {
	tokens, errs := Tokenize("RULESET [  Service Territory ]:", "")
	if errs.HasErrors() {
		t.Fatalf("Tokenize() errors: %v", errs)
	}
	if tokens[1].Type != NAME {
		t.Fatalf("tokens[1].Type = %v, want %v", tokens[1].Type, NAME)
	}
	if tokens[1].Text != "Service Territory" {
		t.Errorf("Text = %q, want %q", tokens[1].Text, "Service Territory")
	}
	if tokens[1].Lexeme != "[  Service Territory ]" {
		t.Errorf("Lexeme = %q, want %q", tokens[1].Lexeme, "[  Service Territory ]")
	}
}

func TestTokenize_DottedIdentifier(t *testing.T) {
	tokens, errs := Tokenize("user.region == \"west\"", "")
	if errs.HasErrors() {
		t.Fatalf("Tokenize() errors: %v", errs)
	}
	if tokens[0].Type != IDENT || tokens[0].Text != "user.region" {
		t.Errorf("tokens[0] = %v %q, want IDENT %q", tokens[0].Type, tokens[0].Text, "user.region")
	}
}

func TestTokenize_Locations(t *testing.T) {
	input := "MODULE [A]\n  RULE [B]\n"
	tokens, errs := Tokenize(input, "loc.rules")
	if errs.HasErrors() {
		t.Fatalf("Tokenize() errors: %v", errs)
	}

	tests := []struct {
		index  int
		typ    TokenType
		line   int
		column int
	}{
		{0, MODULE, 1, 1},
		{1, NAME, 1, 8},
		{3, RULE, 2, 3},
		{4, NAME, 2, 8},
	}

	for _, tt := range tests {
		tok := tokens[tt.index]
		if tok.Type != tt.typ {
			t.Errorf("tokens[%d].Type = %v, want %v", tt.index, tok.Type, tt.typ)
			continue
		}
		if tok.Location.Line != tt.line || tok.Location.Column != tt.column {
			t.Errorf("tokens[%d] at %d:%d, want %d:%d", tt.index, tok.Location.Line, tok.Location.Column, tt.line, tt.column)
		}
		if tok.Location.Source != "loc.rules" {
			t.Errorf("tokens[%d].Source = %q, want %q", tt.index, tok.Location.Source, "loc.rules")
		}
	}
}

func TestTokenize_CommentRegion(t *testing.T) {
	input := "===\nthis is free text with [brackets] and END\n===\nMODULE [A]\nEND\n"
	tokens, errs := Tokenize(input, "")
	if errs.HasErrors() {
		t.Fatalf("Tokenize() errors: %v", errs)
	}

	want := []TokenType{COMMENT, MODULE, NAME, NEWLINE, END, NEWLINE, EOF}
	if got := tokenTypes(tokens); !equalTypes(got, want) {
		t.Fatalf("types = %v, want %v", got, want)
	}
	if tokens[1].Location.Line != 4 {
		t.Errorf("MODULE line = %d, want 4", tokens[1].Location.Line)
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType rslErrors.ErrorType
		line     int
		column   int
	}{
		{"unknown character", "= a @ b", rslErrors.ErrorTypeLex, 1, 5},
		{"bare bang", "= !a", rslErrors.ErrorTypeLex, 1, 3},
		{"unterminated string", "= \"abc\n", rslErrors.ErrorTypeLex, 1, 3},
		{"invalid escape", `= "a\qb"`, rslErrors.ErrorTypeLex, 1, 6},
		{"unterminated name", "MODULE [Scheduling\nEND", rslErrors.ErrorTypeSyntax, 1, 8},
		{"unterminated comment", "MODULE [A]\n===\nnever closed\n", rslErrors.ErrorTypeLex, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, errs := Tokenize(tt.input, "")
			if !errs.HasErrors() {
				t.Fatal("Tokenize() expected errors, got none")
			}
			err := errs.Errors[0]
			if err.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", err.Type, tt.wantType)
			}
			if err.Location.Line != tt.line || err.Location.Column != tt.column {
				t.Errorf("Location = %d:%d, want %d:%d", err.Location.Line, err.Location.Column, tt.line, tt.column)
			}
			if tokens[len(tokens)-1].Type != EOF {
				t.Error("token stream does not end with EOF")
			}
		})
	}
}

func TestTokenize_ContinuesAfterError(t *testing.T) {
	_, errs := Tokenize("= a @ b\n= c # d\n", "")
	if errs.Count() != 2 {
		t.Errorf("Count() = %d, want 2", errs.Count())
	}
}

func TestTokenType_Category(t *testing.T) {
	tests := []struct {
		typ  TokenType
		want Category
	}{
		{MODULE, CategoryKeyword},
		{IF, CategoryKeyword},
		{IDENT, CategoryIdentifier},
		{NAME, CategoryBracketedName},
		{GTE, CategoryOperator},
		{DURATION, CategoryLiteral},
		{TRUE, CategoryLiteral},
		{COMMENT, CategoryComment},
		{NEWLINE, CategoryLayout},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := tt.typ.Category(); got != tt.want {
				t.Errorf("Category() = %q, want %q", got, tt.want)
			}
		})
	}
}
