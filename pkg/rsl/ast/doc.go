// Package ast provides the syntax tree for the rule script language (RSL).
//
// A script is a tree of blocks:
//
//	MODULE [Scheduling]:
//	  RULESET [Service Territory]:
//	    RULE [Max Travel Time]:
//	      = IF(branch_type == "urban", 30 minutes)
//	      = 45 minutes
//	    END
//	  END
//	END
//
// # Core Types
//
// Script: Root node owning every MODULE block and the parser's block tally
//
// Block: MODULE, RULESET or RULE with a name, children or body lines, and a span
//
// Line: One candidate line of a RULE body
//
// Expr: Expression node (literal, identifier, comparison, AND/OR, IF, TIME, group)
//
// Value: Typed value (number, string, boolean, null, time of day, duration)
//
// Location, Span: Source positions for diagnostics
//
// Blocks are owned top-down. A rule never references its ruleset, so the tree
// has no cycles and can be shared freely once built.
//
// # Traversal
//
// Use Walk to visit every block, line and expression:
//
//	err := ast.Walk(script, myVisitor)
//
// Use Script.Rules to enumerate rules with their enclosing names:
//
//	for _, ref := range script.Rules() {
//	    fmt.Println(ref.Ruleset, ref.Rule.Name, len(ref.Rule.Lines))
//	}
package ast
