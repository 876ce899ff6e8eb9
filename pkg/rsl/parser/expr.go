package parser

import (
	"fmt"

	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
	"mercator-hq/rulescript/pkg/rsl/lexer"
)

// exprParser is a recursive-descent parser over the tokens of one rule line.
// It stops at the first error; the block parser resumes on the next line.
type exprParser struct {
	tokens   []lexer.Token
	pos      int
	depth    int
	maxDepth int
	err      *rslErrors.Error
}

var comparisonOperators = map[lexer.TokenType]ast.Operator{
	lexer.EQ:  ast.OperatorEqual,
	lexer.NEQ: ast.OperatorNotEqual,
	lexer.LT:  ast.OperatorLessThan,
	lexer.GT:  ast.OperatorGreaterThan,
	lexer.LTE: ast.OperatorLessEqual,
	lexer.GTE: ast.OperatorGreaterEqual,
}

// parseLine parses `[=] expression` and requires every token to be consumed.
func parseLine(tokens []lexer.Token, maxDepth int) (*ast.Line, *rslErrors.Error) {
	p := &exprParser{tokens: tokens, maxDepth: maxDepth}

	line := &ast.Line{Location: tokens[0].Location}
	if p.check(lexer.ASSIGN) {
		line.Assign = true
		p.pos++
		if p.atEnd() {
			return nil, p.fail(tokens[0], "missing expression after '='",
				"Write a value or an IF(...) after '='")
		}
	}

	expr := p.parseExpr()
	if p.err != nil {
		return nil, p.err
	}
	if !p.atEnd() {
		tok := p.current()
		return nil, p.fail(tok, fmt.Sprintf("unexpected %s after expression", describe(tok)),
			"Each rule line holds a single expression; combine conditions with AND or OR")
	}

	line.Expr = expr
	return line, nil
}

// parseExpr parses the lowest-precedence level.
func (p *exprParser) parseExpr() *ast.Expr {
	p.depth++
	defer func() { p.depth-- }()

	if p.maxDepth > 0 && p.depth > p.maxDepth {
		tok := p.current()
		p.fail(tok, fmt.Sprintf("expression nesting exceeds maximum depth of %d", p.maxDepth),
			"Split the rule into simpler lines")
		return nil
	}

	return p.parseOr()
}

func (p *exprParser) parseOr() *ast.Expr {
	left := p.parseAnd()
	for left != nil && p.check(lexer.OR) {
		p.pos++
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = logical(ast.LogicalOr, left, right)
	}
	return left
}

func (p *exprParser) parseAnd() *ast.Expr {
	left := p.parseComparison()
	for left != nil && p.check(lexer.AND) {
		p.pos++
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		left = logical(ast.LogicalAnd, left, right)
	}
	return left
}

// parseComparison parses a single, non-associative comparison.
func (p *exprParser) parseComparison() *ast.Expr {
	left := p.parsePrimary()
	if left == nil {
		return nil
	}

	op, ok := comparisonOperators[p.current().Type]
	if !ok {
		return left
	}
	p.pos++

	right := p.parsePrimary()
	if right == nil {
		return nil
	}

	if _, chained := comparisonOperators[p.current().Type]; chained {
		p.fail(p.current(), "comparison operators cannot be chained",
			"Combine comparisons with AND, e.g. a > 1 AND a < 5")
		return nil
	}

	return &ast.Expr{
		Type:     ast.ExprTypeCompare,
		Operator: op,
		Left:     left,
		Right:    right,
		Span:     ast.Span{Start: left.Span.Start, End: right.Span.End},
	}
}

func (p *exprParser) parsePrimary() *ast.Expr {
	if p.err != nil {
		return nil
	}
	if p.atEnd() {
		p.fail(p.current(), "unexpected end of line, expected an expression", "")
		return nil
	}

	tok := p.current()
	switch tok.Type {
	case lexer.NUMBER, lexer.STRING, lexer.DURATION, lexer.TRUE, lexer.FALSE, lexer.NULL:
		p.pos++
		return &ast.Expr{Type: ast.ExprTypeLiteral, Value: tok.Value, Span: tok.Span()}

	case lexer.IDENT:
		p.pos++
		return &ast.Expr{Type: ast.ExprTypeIdentifier, Name: tok.Text, Span: tok.Span()}

	case lexer.IF:
		return p.parseIf()

	case lexer.TIME:
		return p.parseTime()

	case lexer.LPAREN:
		p.pos++
		inner := p.parseExpr()
		if inner == nil {
			return nil
		}
		closing, ok := p.expect(lexer.RPAREN, "missing ')' to close '('")
		if !ok {
			return nil
		}
		return &ast.Expr{
			Type: ast.ExprTypeGroup,
			Args: []*ast.Expr{inner},
			Span: ast.Span{Start: tok.Location, End: closing.End},
		}

	default:
		p.fail(tok, fmt.Sprintf("expected an expression, found %s", describe(tok)), "")
		return nil
	}
}

// parseIf parses IF(cond, then[, else]).
func (p *exprParser) parseIf() *ast.Expr {
	start := p.current()
	args, end, ok := p.parseCall("IF")
	if !ok {
		return nil
	}

	if len(args) != 2 && len(args) != 3 {
		p.fail(start, fmt.Sprintf("malformed IF call: expected 2 or 3 arguments, got %d", len(args)),
			"Use IF(condition, value) or IF(condition, value, otherwise)")
		return nil
	}

	return &ast.Expr{
		Type: ast.ExprTypeIf,
		Args: args,
		Span: ast.Span{Start: start.Location, End: end.End},
	}
}

// parseTime parses TIME(h, m, s). Argument checks happen in the validator;
// a well-formed call is folded into its time-of-day value here.
func (p *exprParser) parseTime() *ast.Expr {
	start := p.current()
	args, end, ok := p.parseCall("TIME")
	if !ok {
		return nil
	}

	return &ast.Expr{
		Type:  ast.ExprTypeTime,
		Args:  args,
		Value: foldTime(args),
		Span:  ast.Span{Start: start.Location, End: end.End},
	}
}

// parseCall parses `KEYWORD ( expr {, expr} )` and returns the arguments and closing token.
func (p *exprParser) parseCall(name string) ([]*ast.Expr, lexer.Token, bool) {
	p.pos++ // keyword

	if _, ok := p.expect(lexer.LPAREN, fmt.Sprintf("malformed %s call: expected '(' after %s", name, name)); !ok {
		return nil, lexer.Token{}, false
	}

	var args []*ast.Expr
	if p.check(lexer.RPAREN) {
		closing := p.current()
		p.pos++
		return args, closing, true
	}

	for {
		arg := p.parseExpr()
		if arg == nil {
			return nil, lexer.Token{}, false
		}
		args = append(args, arg)

		if p.check(lexer.COMMA) {
			p.pos++
			continue
		}
		closing, ok := p.expect(lexer.RPAREN, fmt.Sprintf("malformed %s call: expected ',' or ')'", name))
		if !ok {
			return nil, lexer.Token{}, false
		}
		return args, closing, true
	}
}

// foldTime returns the time-of-day value of TIME(h, m, s) when all three
// arguments are in-range numeric literals, and null otherwise.
func foldTime(args []*ast.Expr) ast.Value {
	if len(args) != 3 {
		return ast.Null
	}
	limits := [3]int{23, 59, 59}
	var parts [3]int
	for i, arg := range args {
		arg = arg.Unwrap()
		if arg.Type != ast.ExprTypeLiteral || arg.Value.Kind != ast.ValueKindNumber {
			return ast.Null
		}
		n := arg.Value.Number
		if n < 0 || n > float64(limits[i]) || n != float64(int(n)) {
			return ast.Null
		}
		parts[i] = int(n)
	}
	return ast.TimeValue(parts[0], parts[1], parts[2])
}

func logical(op ast.LogicalOperator, left, right *ast.Expr) *ast.Expr {
	return &ast.Expr{
		Type:    ast.ExprTypeLogical,
		Logical: op,
		Left:    left,
		Right:   right,
		Span:    ast.Span{Start: left.Span.Start, End: right.Span.End},
	}
}

func (p *exprParser) expect(tt lexer.TokenType, message string) (lexer.Token, bool) {
	if p.err != nil {
		return lexer.Token{}, false
	}
	if !p.check(tt) {
		tok := p.current()
		p.fail(tok, fmt.Sprintf("%s, found %s", message, describe(tok)), "")
		return lexer.Token{}, false
	}
	tok := p.current()
	p.pos++
	return tok, true
}

func (p *exprParser) fail(tok lexer.Token, message, suggestion string) *rslErrors.Error {
	if p.err == nil {
		p.err = &rslErrors.Error{
			Type:       rslErrors.ErrorTypeSyntax,
			Message:    message,
			Location:   tok.Location,
			Suggestion: suggestion,
		}
	}
	return p.err
}

func (p *exprParser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *exprParser) check(tt lexer.TokenType) bool {
	return !p.atEnd() && p.tokens[p.pos].Type == tt
}

// current returns the token at the cursor, or an EOF token past the end of the line.
func (p *exprParser) current() lexer.Token {
	if p.atEnd() {
		return lexer.Token{Type: lexer.EOF, Location: p.last().End}
	}
	return p.tokens[p.pos]
}

func (p *exprParser) last() lexer.Token {
	return p.tokens[len(p.tokens)-1]
}

// describe renders a token for diagnostics.
func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of line"
	case lexer.IDENT, lexer.NAME, lexer.STRING, lexer.NUMBER, lexer.DURATION:
		return fmt.Sprintf("%s %q", tok.Type, tok.Lexeme)
	default:
		return tok.Type.String()
	}
}
