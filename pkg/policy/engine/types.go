package engine

import (
	"errors"

	"mercator-hq/rulescript/pkg/policy/ruleset"
	"mercator-hq/rulescript/pkg/policy/scope"
	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
)

// Diagnostic is one problem found in a script or during evaluation.
type Diagnostic struct {
	// Kind is LexError, SyntaxError, StructuralError, ReferenceError or TypeError.
	Kind string `json:"kind"`

	// Message describes the problem.
	Message string `json:"message"`

	// Line and Column locate the problem (1-based). Both are 0 when the
	// problem has no position.
	Line   int `json:"line"`
	Column int `json:"column"`

	// Suggestion is a likely fix, if one is obvious.
	Suggestion string `json:"suggestion,omitempty"`

	// Context is a source excerpt with a caret under the column.
	Context string `json:"context,omitempty"`
}

// NewDiagnostic converts a compiler diagnostic.
func NewDiagnostic(e *rslErrors.Error) Diagnostic {
	return Diagnostic{
		Kind:       string(e.Type),
		Message:    e.Message,
		Line:       e.Location.Line,
		Column:     e.Location.Column,
		Suggestion: e.Suggestion,
		Context:    e.Context,
	}
}

// Diagnostics flattens an error into diagnostics. Compiler error lists
// and evaluation errors keep their kind and position; any other error
// becomes a single StructuralError without a position.
func Diagnostics(err error) []Diagnostic {
	if err == nil {
		return nil
	}

	var errList *rslErrors.ErrorList
	if errors.As(err, &errList) {
		diags := make([]Diagnostic, 0, len(errList.Errors))
		for _, e := range errList.Errors {
			diags = append(diags, NewDiagnostic(e))
		}
		return diags
	}

	var diagnoser interface{ Diagnostic() *rslErrors.Error }
	if errors.As(err, &diagnoser) {
		return []Diagnostic{NewDiagnostic(diagnoser.Diagnostic())}
	}

	var e *rslErrors.Error
	if errors.As(err, &e) {
		return []Diagnostic{NewDiagnostic(e)}
	}

	return []Diagnostic{{Kind: string(rslErrors.ErrorTypeStructural), Message: err.Error()}}
}

// CompileResult is the outcome of a compile request.
type CompileResult struct {
	// OK is true when the script compiled without diagnostics.
	OK bool `json:"ok"`

	// Scope is the script's scope.
	Scope scope.Descriptor `json:"-"`

	// RuleSet is the compiled rule set when OK is true. On a cache hit it
	// is the set committed by an earlier compile.
	RuleSet *ruleset.CompiledRuleSet `json:"-"`

	// Diagnostics lists every problem found, sorted by position.
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Cached is true when the text was already compiled and nothing was parsed.
	Cached bool `json:"cached"`

	// Superseded is true when a newer compile for the same scope committed
	// first. RuleSet is valid but is not the active set.
	Superseded bool `json:"superseded"`

	// CompileID identifies the compile that produced RuleSet, in logs and
	// traces. A cached or shared result carries the id of the original
	// compile; a failed compile carries a fresh id.
	CompileID string `json:"compile_id"`
}

// Outcome returns the metrics label for the result: "ok", "error",
// "cached" or "superseded".
func (r *CompileResult) Outcome() string {
	switch {
	case !r.OK:
		return "error"
	case r.Cached:
		return "cached"
	case r.Superseded:
		return "superseded"
	default:
		return "ok"
	}
}

// Decision is the value a rule produced and the scope that supplied it.
type Decision struct {
	// Key is the evaluated rule.
	Key ruleset.RuleKey

	// Value is the matching line's value, or null when no line matched.
	Value ast.Value

	// ContributingScope is the scope type whose rule was evaluated.
	ContributingScope scope.Type

	// Source is the script the rule came from.
	Source scope.Descriptor

	// Line is the source line of the matching rule line, 0 when unmatched.
	Line int

	// Matched is false when no line of the rule matched.
	Matched bool
}
