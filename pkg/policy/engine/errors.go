package engine

import (
	"errors"
	"fmt"

	"mercator-hq/rulescript/pkg/policy/ruleset"
)

// Common sentinel errors
var (
	// ErrRuleNotFound indicates the effective rule set has no rule with the
	// requested (ruleset, rule) key.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrOrgRequired indicates Resolve was called without an organization id.
	ErrOrgRequired = errors.New("organization id is required")

	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")
)

// EvaluationError reports a rule that failed to evaluate. The cause is an
// *eval.ReferenceError or *eval.TypeError.
type EvaluationError struct {
	Key   ruleset.RuleKey
	Cause error
}

// Error returns the error message.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Key, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
