// Package rsl provides compilation for the rule script language (RSL).
//
// RSL encodes per-organization business policy as small block-structured
// scripts. Scripts exist at organization, branch and user scope; the
// policy packages merge them so that more specific scopes override rules
// from broader ones.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - lexer: Tokens, including bracketed names, durations and === comment regions
// - ast: Block tree and expression nodes
// - parser: Block state machine and expression grammar
// - validator: Structural and literal checks
// - errors: Diagnostics with location, source excerpt and suggestions
//
// # Basic Usage
//
//	script, err := rsl.Compile(text, "org/acme")
//	if err != nil {
//	    fmt.Println(err) // every diagnostic, with source excerpts
//	    return
//	}
//
//	for _, ref := range script.Rules() {
//	    fmt.Println(ref.Ruleset, ref.Rule.Name)
//	}
//
// # Script Structure
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
// A RULE body is evaluated top to bottom. A line whose expression is an IF
// matches only when its condition is true; any other line always matches. The first matching line decides the rule's value.
package rsl
