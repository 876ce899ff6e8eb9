package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
)

// commentDelimiter is the line that opens and closes a free-text comment region.
const commentDelimiter = "==="

// durationUnits maps lower-cased duration unit words to their length.
var durationUnits = map[string]time.Duration{
	"second":  time.Second,
	"seconds": time.Second,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"hour":    time.Hour,
	"hours":   time.Hour,
}

// Lexer scans rule script text into tokens.
// Scanning never stops at the first problem: every lexical error is recorded
// and the lexer resynchronizes on the next character.
type Lexer struct {
	src    string
	source string // Script name for locations

	cur  int // Current byte offset
	line int // 1-based
	col  int // 1-based, counted in runes

	start    int          // Start offset of the current token
	startLoc ast.Location // Start location of the current token

	atLineStart bool
	tokens      []Token
	errors      *rslErrors.ErrorList
}

// New creates a lexer for the given script text. The source name is only
// used in diagnostic locations.
func New(src, source string) *Lexer {
	return &Lexer{
		src:         src,
		source:      source,
		line:        1,
		col:         1,
		atLineStart: true,
		errors:      rslErrors.NewErrorList(),
	}
}

// Tokenize is a convenience wrapper around New(src, source).Run().
func Tokenize(src, source string) ([]Token, *rslErrors.ErrorList) {
	return New(src, source).Run()
}

// Run scans the whole input. The returned token slice always ends with EOF.
// The error list contains LexError and SyntaxError diagnostics and is empty
// when the input is lexically valid.
func (l *Lexer) Run() ([]Token, *rslErrors.ErrorList) {
	for !l.isAtEnd() {
		if l.atLineStart {
			l.atLineStart = false
			if l.scanComment() {
				continue
			}
		}

		l.begin()
		r := l.advance()

		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == '\f':
			// Insignificant whitespace
		case r == '\n':
			l.emitNewline()
		case r == '[':
			l.scanName()
		case r == '"':
			l.scanString()
		case isDigit(r) || (r == '.' && isDigit(l.peek())):
			l.scanNumber()
		case isIdentStart(r):
			l.scanIdent()
		case r == '=':
			if l.match('=') {
				l.emit(EQ)
			} else {
				l.emit(ASSIGN)
			}
		case r == '!':
			if l.match('=') {
				l.emit(NEQ)
			} else {
				l.errorf(rslErrors.ErrorTypeLex, l.startLoc, "unexpected character %q (did you mean '!='?)", r)
			}
		case r == '<':
			if l.match('=') {
				l.emit(LTE)
			} else {
				l.emit(LT)
			}
		case r == '>':
			if l.match('=') {
				l.emit(GTE)
			} else {
				l.emit(GT)
			}
		case r == '(':
			l.emit(LPAREN)
		case r == ')':
			l.emit(RPAREN)
		case r == ',':
			l.emit(COMMA)
		case r == ':':
			l.emit(COLON)
		default:
			l.errorf(rslErrors.ErrorTypeLex, l.startLoc, "unexpected character %q", r)
		}
	}

	l.begin()
	if n := len(l.tokens); n > 0 && l.tokens[n-1].Type != NEWLINE && l.tokens[n-1].Type != COMMENT {
		l.emit(NEWLINE)
	}
	l.emit(EOF)

	return l.tokens, l.errors
}

// scanComment consumes a ===-delimited comment region starting at the current
// line. It returns false, consuming nothing, when the line is not a delimiter.
func (l *Lexer) scanComment() bool {
	lineEnd := l.lineEnd(l.cur)
	if strings.TrimSpace(l.src[l.cur:lineEnd]) != commentDelimiter {
		return false
	}

	l.begin()

	// Find the closing delimiter line
	closeEnd := -1
	pos := lineEnd + 1
	for pos <= len(l.src) {
		end := l.lineEnd(pos)
		if strings.TrimSpace(l.src[pos:end]) == commentDelimiter {
			closeEnd = end
			break
		}
		pos = end + 1
	}

	if closeEnd < 0 {
		l.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeLex,
			"unterminated comment block (missing closing '===')",
			l.startLoc,
			"Close the comment with a line containing only '==='")
		for !l.isAtEnd() {
			l.advance()
		}
		return true
	}

	for l.cur < closeEnd {
		l.advance()
	}
	l.emit(COMMENT)

	// Swallow the newline that ends the closing delimiter line
	if l.peek() == '\n' {
		l.advance()
	}
	return true
}

// scanName scans a bracketed name. The opening '[' has been consumed.
func (l *Lexer) scanName() {
	for {
		if l.isAtEnd() || l.peek() == '\n' {
			l.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeSyntax,
				"malformed bracketed name: missing ']'",
				l.startLoc,
				"Bracketed names must open and close on the same line, e.g. [Service Territory]")
			tok := l.emit(NAME)
			tok.Text = strings.TrimSpace(l.src[l.start+1 : l.cur])
			return
		}
		if l.advance() == ']' {
			tok := l.emit(NAME)
			tok.Text = strings.TrimSpace(l.src[l.start+1 : l.cur-1])
			return
		}
	}
}

// scanString scans a double-quoted string literal. The opening quote has been consumed.
func (l *Lexer) scanString() {
	var sb strings.Builder

	for {
		if l.isAtEnd() || l.peek() == '\n' {
			l.errorf(rslErrors.ErrorTypeLex, l.startLoc, "unterminated string literal")
			break
		}

		r := l.advance()
		if r == '"' {
			break
		}
		if r != '\\' {
			sb.WriteRune(r)
			continue
		}

		escLoc := l.loc()
		if l.isAtEnd() || l.peek() == '\n' {
			l.errorf(rslErrors.ErrorTypeLex, l.startLoc, "unterminated string literal")
			break
		}
		switch esc := l.advance(); esc {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '"', '\\':
			sb.WriteRune(esc)
		default:
			l.errorf(rslErrors.ErrorTypeLex, escLoc, "invalid escape sequence \\%c", esc)
			sb.WriteRune(esc)
		}
	}

	tok := l.emit(STRING)
	tok.Value = ast.StringValue(sb.String())
}

// scanNumber scans a numeric literal and, when a unit word follows, turns it
// into a duration literal. The first character has been consumed.
func (l *Lexer) scanNumber() {
	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	n, err := strconv.ParseFloat(l.src[l.start:l.cur], 64)
	if err != nil {
		l.errorf(rslErrors.ErrorTypeLex, l.startLoc, "invalid number %q", l.src[l.start:l.cur])
	}

	if unit, ok := l.scanUnit(); ok {
		d := time.Duration(n * float64(unit))
		if d%time.Second != 0 {
			l.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeSyntax,
				fmt.Sprintf("duration %q is not a whole number of seconds", l.src[l.start:l.cur]),
				l.startLoc,
				"Durations have one-second resolution; use e.g. 1 second or 90 seconds")
		}
		tok := l.emit(DURATION)
		tok.Value = ast.DurationValue(d)
		return
	}

	tok := l.emit(NUMBER)
	tok.Value = ast.NumberValue(n)
}

// scanUnit consumes optional blanks and a duration unit word. It restores the
// lexer position and returns false when no unit follows.
func (l *Lexer) scanUnit() (time.Duration, bool) {
	savedCur, savedLine, savedCol := l.cur, l.line, l.col

	for l.peek() == ' ' || l.peek() == '\t' {
		l.advance()
	}

	wordStart := l.cur
	for isLetter(l.peek()) {
		l.advance()
	}

	if unit, ok := durationUnits[strings.ToLower(l.src[wordStart:l.cur])]; ok && !isIdentPart(l.peek()) {
		return unit, true
	}

	l.cur, l.line, l.col = savedCur, savedLine, savedCol
	return 0, false
}

// scanIdent scans an identifier or keyword. The first character has been consumed.
func (l *Lexer) scanIdent() {
	for isIdentPart(l.peek()) {
		l.advance()
	}

	word := l.src[l.start:l.cur]
	if tt, ok := keywords[strings.ToUpper(word)]; ok {
		tok := l.emit(tt)
		switch tt {
		case TRUE:
			tok.Value = ast.BoolValue(true)
		case FALSE:
			tok.Value = ast.BoolValue(false)
		case NULL:
			tok.Value = ast.Null
		}
		return
	}

	tok := l.emit(IDENT)
	tok.Text = word
}

// emitNewline emits a NEWLINE, collapsing runs of blank lines.
func (l *Lexer) emitNewline() {
	n := len(l.tokens)
	if n == 0 || l.tokens[n-1].Type == NEWLINE || l.tokens[n-1].Type == COMMENT {
		return
	}
	l.emit(NEWLINE)
}

// emit appends a token spanning start..cur and returns a pointer to it so
// callers can fill literal fields.
func (l *Lexer) emit(tt TokenType) *Token {
	l.tokens = append(l.tokens, Token{
		Type:     tt,
		Lexeme:   l.src[l.start:l.cur],
		Location: l.startLoc,
		End:      l.loc(),
	})
	return &l.tokens[len(l.tokens)-1]
}

func (l *Lexer) errorf(errType rslErrors.ErrorType, loc ast.Location, format string, args ...any) {
	l.errors.AddError(errType, fmt.Sprintf(format, args...), loc)
}

func (l *Lexer) begin() {
	l.start = l.cur
	l.startLoc = l.loc()
}

func (l *Lexer) loc() ast.Location {
	return ast.Location{Source: l.source, Line: l.line, Column: l.col, Offset: l.cur}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

// lineEnd returns the offset of the newline ending the line that contains pos,
// or len(src) for the last line.
func (l *Lexer) lineEnd(pos int) int {
	if pos >= len(l.src) {
		return len(l.src)
	}
	if i := strings.IndexByte(l.src[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(l.src)
}

func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt returns the rune n runes ahead without consuming anything.
func (l *Lexer) peekAt(n int) rune {
	pos := l.cur
	for i := 0; ; i++ {
		if pos >= len(l.src) {
			return 0
		}
		r, size := utf8.DecodeRuneInString(l.src[pos:])
		if i == n {
			return r
		}
		pos += size
	}
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.cur:])
	l.cur += size
	if r == '\n' {
		l.line++
		l.col = 1
		l.atLineStart = true
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) match(want rune) bool {
	if l.peek() != want {
		return false
	}
	l.advance()
	return true
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isLetter(r rune) bool { return r < utf8.RuneSelf && unicode.IsLetter(r) }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
