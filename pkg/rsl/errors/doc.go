// Package errors provides diagnostics for compiling rule scripts.
//
// Diagnostics carry a kind, a source location, an optional excerpt of the
// surrounding source, and an optional suggestion.
//
// # Error Types
//
// ErrorTypeLex: Unrecognized character, unterminated string or comment region
//
// ErrorTypeSyntax: Malformed bracketed name, IF/TIME call or expression
//
// ErrorTypeStructural: Unmatched END, missing MODULE, duplicate sibling name, unbalanced blocks
//
// ErrorTypeReference: Fact absent from an evaluation context (evaluation time only)
//
// ErrorTypeType: Operator applied to incompatible values (evaluation time only)
//
// # Basic Usage
//
// Accumulate diagnostics instead of stopping at the first one:
//
//	errList := errors.NewErrorList()
//	errList.AddError(errors.ErrorTypeStructural, "END without an open block", loc)
//	errList.AddErrorWithSuggestion(errors.ErrorTypeSyntax, "Unknown keyword 'RULSET'", loc,
//	    errors.SuggestKeyword("RULSET"))
//
//	if errList.HasErrors() {
//	    errList.Sort()
//	    errors.AddContext(errList, source)
//	    return errList.ToError()
//	}
//
// # Error Format
//
//	[StructuralError] RULESET [Service Territory] is missing END
//	  --> org/acme:3:3
//	  |
//	   2 | MODULE [Scheduling]:
//	-> 3 |   RULESET [Service Territory]:
//	     |   ^
//	   4 |     RULE [Max Travel Time]:
//	  |
//	  = suggestion: Add 'END' to close RULESET [Service Territory]
package errors
