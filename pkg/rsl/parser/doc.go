// Package parser builds rule script syntax trees from text.
//
// Parsing happens in two layers. The block parser is a state machine over
// lines (TOP, IN_MODULE, IN_RULESET, IN_RULE) that builds the
// MODULE → RULESET → RULE tree and counts open keywords and END lines.
// Each RULE body line is handed to a recursive-descent expression parser:
//
//	expr       = or
//	or         = and { OR and }
//	and        = comparison { AND comparison }
//	comparison = primary [ ( == | != | < | > | <= | >= ) primary ]
//	primary    = literal | identifier | IF(expr, expr[, expr]) | TIME(expr, expr, expr) | ( expr )
//
// # Basic Usage
//
//	script, errs := parser.NewParser().Parse(text, "org/acme")
//	if errs.HasErrors() {
//	    fmt.Println(errs)
//	}
//
// The parser never stops at the first problem. It returns a best-effort tree
// along with every diagnostic it found, and records the block tally the
// validator needs to check END balance.
//
// # Configuration
//
//	p := parser.NewParser().
//	    WithMaxDepth(16) // Max expression nesting depth
package parser
