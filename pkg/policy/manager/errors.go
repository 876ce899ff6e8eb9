package manager

import (
	"errors"
	"fmt"
	"strings"

	"mercator-hq/rulescript/pkg/policy/engine"
	"mercator-hq/rulescript/pkg/policy/scope"
)

// ErrWatchUnsupported is returned by Watch when the store is not a
// directory store.
var ErrWatchUnsupported = errors.New("watch requires a directory store")

// LoadError represents a script that could not be read from the store.
type LoadError struct {
	// Scope is the script that failed to load
	Scope scope.Descriptor

	// Cause is the underlying store error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load script %s: %v", e.Scope, e.Cause)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// CompileError represents a script that was read but did not compile.
// The previously compiled rule set for the scope stays active.
type CompileError struct {
	// Scope is the script that failed to compile
	Scope scope.Descriptor

	// Diagnostics lists every problem found in the script
	Diagnostics []engine.Diagnostic
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 0 {
		return fmt.Sprintf("script %s does not compile", e.Scope)
	}
	first := e.Diagnostics[0]
	msg := fmt.Sprintf("script %s does not compile: line %d: %s: %s", e.Scope, first.Line, first.Kind, first.Message)
	if n := len(e.Diagnostics) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// ErrorList contains multiple errors that occurred while loading scripts.
// This is used when loading many scripts where some may succeed and others fail.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Unwrap returns the collected errors for errors.Is and errors.As.
func (e *ErrorList) Unwrap() []error {
	return e.Errors
}

// Add appends err if it is not nil.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if any errors were collected.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil when the list is empty.
func (e *ErrorList) ToError() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}
