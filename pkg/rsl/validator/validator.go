package validator

import (
	"errors"

	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
)

// Validator is the main validator that orchestrates all validation passes.
// Both passes always run so a test compile reports every problem at once.
type Validator struct {
	structural *StructuralValidator
	literals   *LiteralValidator
}

// NewValidator creates a new validator with all validation passes.
func NewValidator() *Validator {
	return &Validator{
		structural: NewStructuralValidator(),
		literals:   NewLiteralValidator(),
	}
}

// Validate runs all validation passes on a script.
// It accumulates errors from all passes and returns them together as an
// *errors.ErrorList, or nil when the script is valid.
func (v *Validator) Validate(script *ast.Script) error {
	all := rslErrors.NewErrorList()

	for _, err := range []error{
		v.structural.Validate(script),
		v.literals.Validate(script),
	} {
		var errList *rslErrors.ErrorList
		if errors.As(err, &errList) {
			all.Merge(errList)
		}
	}

	return all.ToError()
}

// ValidateStructural runs only structural validation.
func (v *Validator) ValidateStructural(script *ast.Script) error {
	return v.structural.Validate(script)
}

// ValidateLiterals runs only literal operand validation.
func (v *Validator) ValidateLiterals(script *ast.Script) error {
	return v.literals.Validate(script)
}
