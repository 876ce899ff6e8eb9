package ruleset

import (
	"fmt"
	"sort"

	"mercator-hq/rulescript/pkg/policy/scope"
)

// Entry is one resolved rule together with the scope that supplied it.
type Entry struct {
	Key               RuleKey
	Rule              *Rule
	ContributingScope scope.Type
	Source            scope.Descriptor // Script the rule came from
}

// EffectiveRuleSet is the scope-resolved view of the rules that apply to one
// evaluation context. It is derived on demand and never persisted.
type EffectiveRuleSet struct {
	// Scopes lists the rule sets folded into this view, least specific first.
	Scopes []scope.Descriptor

	// Missing lists requested scopes that had no compiled rule set.
	Missing []scope.Descriptor

	keys    []RuleKey
	entries map[RuleKey]*Entry
}

// Resolve folds compiled rule sets from least to most specific scope.
//
// Nil sets are skipped, so absent branch or user scripts contribute nothing.
// Each rule key in a more specific set replaces the whole entry from a
// broader one; there is no line-level merge. Keys keep the order in which
// they were first seen. Two sets of the same scope type are an error.
func Resolve(sets ...*CompiledRuleSet) (*EffectiveRuleSet, error) {
	ordered := make([]*CompiledRuleSet, 0, len(sets))
	for _, rs := range sets {
		if rs != nil {
			ordered = append(ordered, rs)
		}
	}

	// Least specific first
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Scope.Type.Specificity() < ordered[j].Scope.Type.Specificity()
	})

	eff := &EffectiveRuleSet{entries: make(map[RuleKey]*Entry)}

	for i, rs := range ordered {
		if !rs.Scope.Type.IsValid() {
			return nil, fmt.Errorf("cannot resolve rule set %s: unknown scope type", rs.Scope)
		}
		if i > 0 && ordered[i-1].Scope.Type == rs.Scope.Type {
			return nil, fmt.Errorf("cannot resolve %s and %s: only one rule set per scope type", ordered[i-1].Scope, rs.Scope)
		}

		eff.Scopes = append(eff.Scopes, rs.Scope)

		for _, key := range rs.keys {
			if _, exists := eff.entries[key]; !exists {
				eff.keys = append(eff.keys, key)
			}
			eff.entries[key] = &Entry{
				Key:               key,
				Rule:              rs.rules[key],
				ContributingScope: rs.Scope.Type,
				Source:            rs.Scope,
			}
		}
	}

	return eff, nil
}

// Len returns the number of resolved rules.
func (e *EffectiveRuleSet) Len() int {
	return len(e.keys)
}

// Get returns the entry for a key.
func (e *EffectiveRuleSet) Get(key RuleKey) (*Entry, bool) {
	entry, ok := e.entries[key]
	return entry, ok
}

// Lookup returns the entry for a ruleset and rule name.
func (e *EffectiveRuleSet) Lookup(rulesetName, ruleName string) (*Entry, bool) {
	return e.Get(RuleKey{Ruleset: rulesetName, Rule: ruleName})
}

// Keys returns the resolved keys in first-seen order.
func (e *EffectiveRuleSet) Keys() []RuleKey {
	keys := make([]RuleKey, len(e.keys))
	copy(keys, e.keys)
	return keys
}

// Entries returns the resolved entries in first-seen order.
func (e *EffectiveRuleSet) Entries() []*Entry {
	entries := make([]*Entry, len(e.keys))
	for i, key := range e.keys {
		entries[i] = e.entries[key]
	}
	return entries
}

// Summary counts resolved rules per contributing scope type.
func (e *EffectiveRuleSet) Summary() map[scope.Type]int {
	summary := make(map[scope.Type]int)
	for _, entry := range e.entries {
		summary[entry.ContributingScope]++
	}
	return summary
}
