package errors

import (
	"fmt"
	"sort"
	"strings"

	"mercator-hq/rulescript/pkg/rsl/ast"
)

// ErrorType categorizes a diagnostic. The string values are the diagnostic
// kinds reported to callers.
type ErrorType string

const (
	ErrorTypeLex        ErrorType = "LexError"        // Unrecognized character or token
	ErrorTypeSyntax     ErrorType = "SyntaxError"     // Malformed name, IF/TIME call or expression
	ErrorTypeStructural ErrorType = "StructuralError" // Block nesting, duplicates, END balance
	ErrorTypeReference  ErrorType = "ReferenceError"  // Fact absent from an evaluation context
	ErrorTypeType       ErrorType = "TypeError"       // Operator applied to incompatible values
)

// Error represents a diagnostic with location, context, and an optional suggestion.
type Error struct {
	Type       ErrorType    // Category of error
	Message    string       // Error message
	Location   ast.Location // Source location (line, column)
	Context    string       // Surrounding lines of source
	Suggestion string       // Suggested fix (optional)
}

// Error implements the error interface.
// It returns a formatted message with location and context.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Type, e.Message))

	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Location.String()))
	}

	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// ErrorList collects diagnostics so that a compile reports every
// independent problem at once.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message string, location ast.Location) {
	el.Add(&Error{
		Type:     errType,
		Message:  message,
		Location: location,
	})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message string, location ast.Location, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Message:    message,
		Location:   location,
		Suggestion: suggestion,
	})
}

// Merge appends all errors from another list.
func (el *ErrorList) Merge(other *ErrorList) {
	if other == nil {
		return
	}
	el.Errors = append(el.Errors, other.Errors...)
}

// HasErrors returns true if the error list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Sort orders errors by source position. Errors without a location sort last.
// The sort is stable so errors at the same position keep their detection order.
func (el *ErrorList) Sort() {
	sort.SliceStable(el.Errors, func(i, j int) bool {
		a, b := el.Errors[i].Location, el.Errors[j].Location
		if a.IsValid() != b.IsValid() {
			return a.IsValid()
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Error implements the error interface.
// It returns all errors formatted as a single string.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the error list is empty, otherwise returns the error list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if the error list contains at least one error of the given type.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}
