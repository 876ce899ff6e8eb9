// Package validator checks parsed rule scripts.
//
// Validation runs after parsing, whether or not parsing succeeded, and
// collects every independent diagnostic.
//
// Structural pass:
//   - every block is closed, and open keywords balance END lines
//   - at least one MODULE exists, and every MODULE has a RULESET
//   - sibling names are unique, and a (ruleset, rule) key is defined once
//     per script even across modules
//   - every RULE has at least one body line
//
// Literal pass:
//   - ordering operators (< > <= >=) are not applied to string or boolean literals
//   - TIME(h, m, s) takes three in-range number literals
//
// Validators are not safe for concurrent use; create one per goroutine.
package validator
