package lexer

import (
	"mercator-hq/rulescript/pkg/rsl/ast"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	NEWLINE
	COMMENT // A whole ===-delimited comment region

	// Names and literals
	NAME     // [bracketed name]
	IDENT    // fact reference
	STRING   // "text"
	NUMBER   // 42, 1.5
	DURATION // 30 minutes

	// Keywords (case-insensitive)
	MODULE
	RULESET
	RULE
	END
	IF
	TIME
	AND
	OR
	TRUE
	FALSE
	NULL

	// Operators and punctuation
	EQ     // ==
	NEQ    // !=
	LT     // <
	GT     // >
	LTE    // <=
	GTE    // >=
	ASSIGN // =
	LPAREN // (
	RPAREN // )
	COMMA  // ,
	COLON  // :
)

// Category groups token types into the coarse kinds used in diagnostics.
type Category string

const (
	CategoryKeyword       Category = "keyword"
	CategoryIdentifier    Category = "identifier"
	CategoryBracketedName Category = "bracketed-name"
	CategoryOperator      Category = "operator"
	CategoryLiteral       Category = "literal"
	CategoryComment       Category = "comment-marker"
	CategoryLayout        Category = "layout"
)

var tokenNames = map[TokenType]string{
	EOF:      "end of input",
	NEWLINE:  "newline",
	COMMENT:  "comment",
	NAME:     "bracketed name",
	IDENT:    "identifier",
	STRING:   "string",
	NUMBER:   "number",
	DURATION: "duration",
	MODULE:   "MODULE",
	RULESET:  "RULESET",
	RULE:     "RULE",
	END:      "END",
	IF:       "IF",
	TIME:     "TIME",
	AND:      "AND",
	OR:       "OR",
	TRUE:     "TRUE",
	FALSE:    "FALSE",
	NULL:     "NULL",
	EQ:       "'=='",
	NEQ:      "'!='",
	LT:       "'<'",
	GT:       "'>'",
	LTE:      "'<='",
	GTE:      "'>='",
	ASSIGN:   "'='",
	LPAREN:   "'('",
	RPAREN:   "')'",
	COMMA:    "','",
	COLON:    "':'",
}

// String returns a readable name for the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "unknown"
}

// Category returns the coarse kind of the token type.
func (t TokenType) Category() Category {
	switch {
	case t == NAME:
		return CategoryBracketedName
	case t == IDENT:
		return CategoryIdentifier
	case t == COMMENT:
		return CategoryComment
	case t == STRING || t == NUMBER || t == DURATION || t == TRUE || t == FALSE || t == NULL:
		return CategoryLiteral
	case t >= MODULE && t <= OR:
		return CategoryKeyword
	case t >= EQ && t <= COLON:
		return CategoryOperator
	default:
		return CategoryLayout
	}
}

// IsBlockKeyword returns true for keywords that open or close a block.
func (t TokenType) IsBlockKeyword() bool {
	return t == MODULE || t == RULESET || t == RULE || t == END
}

// keywords maps upper-cased words to keyword token types.
var keywords = map[string]TokenType{
	"MODULE":  MODULE,
	"RULESET": RULESET,
	"RULE":    RULE,
	"END":     END,
	"IF":      IF,
	"TIME":    TIME,
	"AND":     AND,
	"OR":      OR,
	"TRUE":    TRUE,
	"FALSE":   FALSE,
	"NULL":    NULL,
}

// Token is a lexical token.
type Token struct {
	Type     TokenType
	Lexeme   string       // Raw source text
	Text     string       // Trimmed name (NAME) or identifier (IDENT)
	Value    ast.Value    // Parsed value for literals
	Location ast.Location // Start of the token
	End      ast.Location // Just past the token
}

// Span returns the source range of the token.
func (t Token) Span() ast.Span {
	return ast.Span{Start: t.Location, End: t.End}
}
