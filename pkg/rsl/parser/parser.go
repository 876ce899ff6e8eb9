package parser

import (
	"fmt"

	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
	"mercator-hq/rulescript/pkg/rsl/lexer"
)

// DefaultMaxDepth is the default expression nesting limit.
const DefaultMaxDepth = 32

// Parser parses rule scripts into syntax trees.
// A Parser holds configuration only and is safe for concurrent use.
type Parser struct {
	maxDepth int // Maximum expression nesting depth (default: 32, 0 disables)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxDepth: DefaultMaxDepth,
	}
}

// WithMaxDepth sets the maximum expression nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// Parse lexes and parses script text. The name is used in diagnostic locations.
//
// Parse always returns a script, even when errors were found, so the
// structural validator can report every independent problem in one pass.
// The error list holds lexical, syntax and placement diagnostics.
func (p *Parser) Parse(src, name string) (*ast.Script, *rslErrors.ErrorList) {
	tokens, errs := lexer.Tokenize(src, name)
	script, parseErrs := p.ParseTokens(tokens, name)
	errs.Merge(parseErrs)
	return script, errs
}

// ParseTokens builds the block tree from a token stream produced by the lexer.
func (p *Parser) ParseTokens(tokens []lexer.Token, name string) (*ast.Script, *rslErrors.ErrorList) {
	b := &blockParser{
		script:   &ast.Script{Source: name},
		errors:   rslErrors.NewErrorList(),
		maxDepth: p.maxDepth,
	}

	for _, line := range splitLines(tokens) {
		b.parseLine(line)
	}
	b.finish(tokens)

	return b.script, b.errors
}

// blockParser is the per-call state of the MODULE/RULESET/RULE state machine.
// The innermost open block determines the state: TOP when the stack is empty,
// otherwise IN_MODULE, IN_RULESET or IN_RULE.
type blockParser struct {
	script   *ast.Script
	stack    []*ast.Block
	errors   *rslErrors.ErrorList
	maxDepth int
}

var openers = map[lexer.TokenType]ast.BlockKind{
	lexer.MODULE:  ast.BlockModule,
	lexer.RULESET: ast.BlockRuleset,
	lexer.RULE:    ast.BlockRule,
}

// parentKind is the block kind each opener must appear directly inside.
// Modules appear at top level.
var parentKind = map[ast.BlockKind]ast.BlockKind{
	ast.BlockModule:  "",
	ast.BlockRuleset: ast.BlockModule,
	ast.BlockRule:    ast.BlockRuleset,
}

func (b *blockParser) parseLine(tokens []lexer.Token) {
	first := tokens[0]

	if kind, ok := openers[first.Type]; ok {
		b.open(kind, tokens)
		return
	}

	switch first.Type {
	case lexer.END:
		b.close(tokens)

	case lexer.NAME:
		b.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeSyntax,
			fmt.Sprintf("bracketed name %q without MODULE, RULESET or RULE", first.Text),
			first.Location,
			fmt.Sprintf("Start the line with a block keyword, e.g. RULE [%s]:", first.Text))

	case lexer.IDENT:
		if len(tokens) > 1 && tokens[1].Type == lexer.NAME {
			b.unknownKeyword(tokens)
			return
		}
		b.body(tokens)

	default:
		b.body(tokens)
	}
}

// unknownKeyword reports a line like `RULSET [Name]:` and, when the word is
// close to a block keyword, recovers by treating it as that keyword.
func (b *blockParser) unknownKeyword(tokens []lexer.Token) {
	word := tokens[0]
	keyword, ok := rslErrors.ClosestKeyword(word.Text)

	suggestion := "Blocks start with MODULE, RULESET or RULE"
	if ok {
		suggestion = rslErrors.SuggestKeyword(word.Text)
	}
	b.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeSyntax,
		fmt.Sprintf("unknown keyword %q", word.Text),
		word.Location,
		suggestion)

	if !ok {
		return
	}
	switch keyword {
	case "MODULE":
		b.open(ast.BlockModule, tokens)
	case "RULESET":
		b.open(ast.BlockRuleset, tokens)
	case "RULE":
		b.open(ast.BlockRule, tokens)
	case "END":
		b.close(tokens[:1])
	}
}

// open handles a MODULE, RULESET or RULE header line.
func (b *blockParser) open(kind ast.BlockKind, tokens []lexer.Token) {
	b.script.Tally.Opens++

	keyword := tokens[0]
	block := &ast.Block{
		Kind: kind,
		Span: ast.Span{Start: keyword.Location, End: tokens[len(tokens)-1].End},
	}
	b.header(block, tokens)
	b.place(block, keyword)
	b.stack = append(b.stack, block)
}

// header reads `[name]` and an optional trailing colon.
func (b *blockParser) header(block *ast.Block, tokens []lexer.Token) {
	keyword := tokens[0]
	rest := tokens[1:]

	if len(rest) == 0 || rest[0].Type != lexer.NAME {
		loc := keyword.End
		if len(rest) > 0 {
			loc = rest[0].Location
		}
		b.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeSyntax,
			fmt.Sprintf("%s requires a bracketed name", block.Kind),
			loc,
			fmt.Sprintf("Write %s [Name]:", block.Kind))
		return
	}

	name := rest[0]
	block.Name = name.Text
	block.NameLocation = name.Location
	if name.Text == "" {
		b.errors.AddError(rslErrors.ErrorTypeSyntax,
			fmt.Sprintf("empty name in %s header", block.Kind),
			name.Location)
	}

	rest = rest[1:]
	if len(rest) > 0 && rest[0].Type == lexer.COLON {
		rest = rest[1:]
	}
	if len(rest) > 0 {
		b.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeSyntax,
			fmt.Sprintf("unexpected %s after %s [%s]", describe(rest[0]), block.Kind, block.Name),
			rest[0].Location,
			"Put rule lines on their own lines below the header")
	}
}

// place attaches a new block to its parent. A block of the same kind as the
// innermost open block means the previous one is missing its END; that block
// is closed implicitly. Any other misplacement is reported and the block is
// parsed detached from the tree so later problems are still found.
func (b *blockParser) place(block *ast.Block, keyword lexer.Token) {
	if top := b.top(); top != nil && top.Kind == block.Kind {
		b.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeStructural,
			fmt.Sprintf("%s [%s] is missing END before %s [%s]", top.Kind, top.Name, block.Kind, block.Name),
			keyword.Location,
			rslErrors.SuggestEnd(string(top.Kind), top.Name))
		top.Span.End = keyword.Location
		b.stack = b.stack[:len(b.stack)-1]
	}

	want := parentKind[block.Kind]
	top := b.top()

	switch {
	case top == nil && want == "":
		b.script.Modules = append(b.script.Modules, block)

	case top != nil && top.Kind == want:
		top.Children = append(top.Children, block)

	case top == nil:
		b.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeStructural,
			fmt.Sprintf("%s [%s] must be inside a %s", block.Kind, block.Name, want),
			keyword.Location,
			fmt.Sprintf("Wrap it in %s [Name]: ... END", want))

	case want == "":
		b.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeStructural,
			fmt.Sprintf("%s [%s] cannot be nested inside %s [%s]", block.Kind, block.Name, top.Kind, top.Name),
			keyword.Location,
			rslErrors.SuggestEnd(string(top.Kind), top.Name))

	default:
		b.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeStructural,
			fmt.Sprintf("%s [%s] cannot appear directly inside %s [%s]; it must be inside a %s",
				block.Kind, block.Name, top.Kind, top.Name, want),
			keyword.Location,
			fmt.Sprintf("Wrap it in %s [Name]: ... END", want))
	}
}

// close handles an END line.
func (b *blockParser) close(tokens []lexer.Token) {
	b.script.Tally.Ends++

	end := tokens[0]
	if len(tokens) > 1 {
		b.errors.AddError(rslErrors.ErrorTypeSyntax,
			fmt.Sprintf("unexpected %s after END", describe(tokens[1])),
			tokens[1].Location)
	}

	top := b.top()
	if top == nil {
		b.script.Tally.StrayEnds = append(b.script.Tally.StrayEnds, end.Location)
		b.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeStructural,
			"unmatched END: no open block to close",
			end.Location,
			"Remove this END or add the MODULE, RULESET or RULE it was meant to close")
		return
	}

	top.Closed = true
	top.Span.End = end.End
	b.stack = b.stack[:len(b.stack)-1]
}

// body handles an expression line.
func (b *blockParser) body(tokens []lexer.Token) {
	top := b.top()
	if top == nil || top.Kind != ast.BlockRule {
		where := "at top level"
		if top != nil {
			where = fmt.Sprintf("inside %s [%s]", top.Kind, top.Name)
		}
		b.errors.AddErrorWithSuggestion(rslErrors.ErrorTypeSyntax,
			fmt.Sprintf("expression outside of a RULE body (%s)", where),
			tokens[0].Location,
			"Rule lines belong between RULE [Name]: and END")
		return
	}

	line, err := parseLine(tokens, b.maxDepth)
	if err != nil {
		b.errors.Add(err)
		// Keep the line so the rule is not also reported as empty
		top.Lines = append(top.Lines, &ast.Line{Location: tokens[0].Location})
		return
	}
	top.Lines = append(top.Lines, line)
}

// finish records blocks left open at end of input.
func (b *blockParser) finish(tokens []lexer.Token) {
	var eof ast.Location
	if len(tokens) > 0 {
		eof = tokens[len(tokens)-1].Location
	}

	for _, block := range b.stack {
		block.Span.End = eof
	}
	b.script.Tally.Unclosed = append(b.script.Tally.Unclosed, b.stack...)
	b.stack = nil
}

func (b *blockParser) top() *ast.Block {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}
