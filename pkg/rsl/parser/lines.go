package parser

import (
	"mercator-hq/rulescript/pkg/rsl/lexer"
)

// splitLines groups a token stream into logical lines.
//
// Newlines end a line except inside parentheses, so multi-line IF(...) calls
// form a single line. An unbalanced '(' would otherwise swallow the rest of
// the script, so a line also ends when the next line starts with a block
// keyword. Comment tokens end the current line and are dropped.
func splitLines(tokens []lexer.Token) [][]lexer.Token {
	var lines [][]lexer.Token
	var current []lexer.Token
	depth := 0

	flush := func() {
		if len(current) > 0 {
			lines = append(lines, current)
		}
		current = nil
		depth = 0
	}

	for i, tok := range tokens {
		switch tok.Type {
		case lexer.EOF:
			flush()
			return lines

		case lexer.COMMENT:
			flush()

		case lexer.NEWLINE:
			if depth > 0 && !startsBlockLine(tokens, i+1) {
				continue
			}
			flush()

		case lexer.LPAREN:
			depth++
			current = append(current, tok)

		case lexer.RPAREN:
			if depth > 0 {
				depth--
			}
			current = append(current, tok)

		default:
			current = append(current, tok)
		}
	}

	flush()
	return lines
}

// startsBlockLine reports whether the token at index i begins a line that
// cannot continue an expression.
func startsBlockLine(tokens []lexer.Token, i int) bool {
	if i >= len(tokens) {
		return true
	}
	switch tokens[i].Type {
	case lexer.EOF, lexer.COMMENT:
		return true
	}
	return tokens[i].Type.IsBlockKeyword()
}
