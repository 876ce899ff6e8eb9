package ast

// BlockKind is the tag of a Block variant.
type BlockKind string

const (
	BlockModule  BlockKind = "MODULE"
	BlockRuleset BlockKind = "RULESET"
	BlockRule    BlockKind = "RULE"
)

// Block is a MODULE, RULESET or RULE. Modules and rulesets own their children;
// rules own their body lines. Blocks never point back at their parent.
type Block struct {
	Kind         BlockKind
	Name         string   // Trimmed bracketed name
	NameLocation Location // Location of the bracketed name
	Children     []*Block // Rulesets (Module) or rules (Ruleset)
	Lines        []*Line  // Body lines (Rule)
	Span         Span     // Opening keyword through END
	Closed       bool     // Whether a matching END was seen
}

// Child returns the direct child with the given name, or nil.
func (b *Block) Child(name string) *Block {
	for _, child := range b.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// HasBody returns true if the block is a rule with at least one line.
func (b *Block) HasBody() bool {
	return b.Kind == BlockRule && len(b.Lines) > 0
}

// Line is one candidate line in a RULE body: a bare expression or `= expression`.
type Line struct {
	Expr     *Expr    // nil when the line failed to parse
	Assign   bool     // Line was written with a leading '='
	Location Location // Start of the line
}

// Condition returns the governing condition of the line, or nil when the
// line always matches. A top-level IF governs its line whatever its
// argument count; nested IFs are plain expressions.
func (l *Line) Condition() *Expr {
	e := l.Expr.Unwrap()
	if e != nil && e.IsConditional() {
		return e.Args[0]
	}
	return nil
}
