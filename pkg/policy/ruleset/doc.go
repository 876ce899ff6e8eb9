// Package ruleset holds compiled rule sets and the scope resolver.
//
// A CompiledRuleSet is the validated content of one script, keyed by
// (ruleset name, rule name). Resolve layers up to one set per scope type
// into an EffectiveRuleSet:
//
//	eff, err := ruleset.Resolve(orgSet, branchSet, userSet)
//	entry, ok := eff.Lookup("Service Territory", "Max Travel Time")
//	fmt.Println(entry.ContributingScope) // BRANCH
//
// Specificity decides every conflict: user > branch > org. Rule sets are
// immutable after construction, so resolution and evaluation need no locks.
package ruleset
