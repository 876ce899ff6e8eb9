package ruleset

import (
	"fmt"

	"mercator-hq/rulescript/pkg/policy/scope"
	"mercator-hq/rulescript/pkg/rsl/ast"
)

// RuleKey addresses a rule across scopes. Module names are not part of the
// key: rulesets with the same name share one key space.
type RuleKey struct {
	Ruleset string
	Rule    string
}

// String returns "[Ruleset]/[Rule]".
func (k RuleKey) String() string {
	return fmt.Sprintf("[%s]/[%s]", k.Ruleset, k.Rule)
}

// Rule is a compiled rule: its body lines and where it was defined.
// Rules are immutable once compiled and safe to share between goroutines.
type Rule struct {
	Key    RuleKey
	Module string
	Lines  []*ast.Line
	Span   ast.Span
}

// CompiledRuleSet is the validated rule content of one script.
type CompiledRuleSet struct {
	Scope     scope.Descriptor
	Hash      uint64 // Content hash of the script text
	CompileID string // Compile that produced this set

	keys  []RuleKey
	rules map[RuleKey]*Rule
}

// New builds a rule set from a validated script. Rules keep source order.
// It returns an error if a key is defined twice, which the validator rejects.
func New(desc scope.Descriptor, hash uint64, script *ast.Script) (*CompiledRuleSet, error) {
	rs := &CompiledRuleSet{
		Scope: desc,
		Hash:  hash,
		rules: make(map[RuleKey]*Rule),
	}

	for _, ref := range script.Rules() {
		key := RuleKey{Ruleset: ref.Ruleset, Rule: ref.Rule.Name}
		if _, exists := rs.rules[key]; exists {
			return nil, fmt.Errorf("duplicate rule %s in %s", key, desc)
		}
		rs.keys = append(rs.keys, key)
		rs.rules[key] = &Rule{
			Key:    key,
			Module: ref.Module,
			Lines:  ref.Rule.Lines,
			Span:   ref.Rule.Span,
		}
	}

	return rs, nil
}

// Len returns the number of rules.
func (rs *CompiledRuleSet) Len() int {
	return len(rs.keys)
}

// Keys returns the rule keys in source order.
func (rs *CompiledRuleSet) Keys() []RuleKey {
	keys := make([]RuleKey, len(rs.keys))
	copy(keys, rs.keys)
	return keys
}

// Get returns the rule for a key.
func (rs *CompiledRuleSet) Get(key RuleKey) (*Rule, bool) {
	rule, ok := rs.rules[key]
	return rule, ok
}

// Rules returns the rules in source order.
func (rs *CompiledRuleSet) Rules() []*Rule {
	rules := make([]*Rule, len(rs.keys))
	for i, key := range rs.keys {
		rules[i] = rs.rules[key]
	}
	return rules
}

// Rulesets returns the distinct ruleset names in first-seen order.
func (rs *CompiledRuleSet) Rulesets() []string {
	seen := make(map[string]bool)
	var names []string
	for _, key := range rs.keys {
		if !seen[key.Ruleset] {
			seen[key.Ruleset] = true
			names = append(names, key.Ruleset)
		}
	}
	return names
}
