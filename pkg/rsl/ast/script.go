package ast

// Script is the root of a parsed rule script. It owns every Module block.
type Script struct {
	Source  string   // Script name used in diagnostics
	Modules []*Block // Top-level MODULE blocks in source order
	Tally   Tally    // Block bookkeeping recorded by the parser
}

// Tally records the block bookkeeping the structural validator needs.
type Tally struct {
	Opens     int        // MODULE + RULESET + RULE keywords seen
	Ends      int        // END keywords seen
	Unclosed  []*Block   // Blocks still open at end of input, outermost first
	StrayEnds []Location // END keywords seen at top level
}

// RuleRef addresses a rule together with its enclosing names.
type RuleRef struct {
	Module  string
	Ruleset string
	Rule    *Block
}

// Rules returns every RULE in the script in source order.
func (s *Script) Rules() []RuleRef {
	var refs []RuleRef
	for _, module := range s.Modules {
		for _, ruleset := range module.Children {
			for _, rule := range ruleset.Children {
				refs = append(refs, RuleRef{
					Module:  module.Name,
					Ruleset: ruleset.Name,
					Rule:    rule,
				})
			}
		}
	}
	return refs
}

// Module returns the module with the given name, or nil.
func (s *Script) Module(name string) *Block {
	for _, module := range s.Modules {
		if module.Name == name {
			return module
		}
	}
	return nil
}

// BlockCount returns the number of MODULE, RULESET and RULE blocks attached to the tree.
func (s *Script) BlockCount() int {
	count := 0
	for _, module := range s.Modules {
		count++
		for _, ruleset := range module.Children {
			count += 1 + len(ruleset.Children)
		}
	}
	return count
}
