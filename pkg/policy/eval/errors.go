package eval

import (
	"fmt"

	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
)

// ReferenceError indicates an expression referenced a fact that is absent
// from the evaluation context. It is a per-evaluation condition and never
// invalidates the compiled rule set.
type ReferenceError struct {
	Name       string       // Missing fact name
	Location   ast.Location // Where the fact is referenced
	Suggestion string       // Closest fact name present, if any
}

// Error returns the error message.
func (e *ReferenceError) Error() string {
	msg := fmt.Sprintf("unknown fact %q at %s", e.Name, e.Location)
	if e.Suggestion != "" {
		msg += ": " + e.Suggestion
	}
	return msg
}

// Diagnostic converts the error into a rule script diagnostic.
func (e *ReferenceError) Diagnostic() *rslErrors.Error {
	return &rslErrors.Error{
		Type:       rslErrors.ErrorTypeReference,
		Message:    fmt.Sprintf("unknown fact %q", e.Name),
		Location:   e.Location,
		Suggestion: e.Suggestion,
	}
}

// TypeError indicates an operator was applied to values of incompatible kinds.
type TypeError struct {
	Operator string
	Left     ast.ValueKind
	Right    ast.ValueKind // Empty for unary checks such as IF conditions
	Location ast.Location
	Message  string
}

// Error returns the error message.
func (e *TypeError) Error() string {
	return fmt.Sprintf("type error at %s: %s", e.Location, e.Message)
}

// Diagnostic converts the error into a rule script diagnostic.
func (e *TypeError) Diagnostic() *rslErrors.Error {
	return &rslErrors.Error{
		Type:     rslErrors.ErrorTypeType,
		Message:  e.Message,
		Location: e.Location,
	}
}

func newReferenceError(name string, loc ast.Location, facts Facts) *ReferenceError {
	return &ReferenceError{
		Name:       name,
		Location:   loc,
		Suggestion: rslErrors.SuggestName(name, facts.Names()),
	}
}
