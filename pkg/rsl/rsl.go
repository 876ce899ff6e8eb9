package rsl

import (
	"fmt"

	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
	"mercator-hq/rulescript/pkg/rsl/parser"
	"mercator-hq/rulescript/pkg/rsl/validator"
)

// DefaultMaxScriptBytes is the default script size limit (1 MiB).
const DefaultMaxScriptBytes = 1 << 20

// Compiler runs the full front end: size check, lexing, parsing and validation.
// A Compiler holds configuration only and is safe for concurrent use.
type Compiler struct {
	maxScriptBytes int // 0 disables the limit
	maxDepth       int // Maximum expression nesting depth
}

// NewCompiler creates a compiler with default limits.
func NewCompiler() *Compiler {
	return &Compiler{
		maxScriptBytes: DefaultMaxScriptBytes,
		maxDepth:       parser.DefaultMaxDepth,
	}
}

// WithMaxScriptBytes sets the script size limit.
func (c *Compiler) WithMaxScriptBytes(n int) *Compiler {
	c.maxScriptBytes = n
	return c
}

// WithMaxDepth sets the maximum expression nesting depth.
func (c *Compiler) WithMaxDepth(depth int) *Compiler {
	c.maxDepth = depth
	return c
}

// Compile parses and validates script text. The name is used in diagnostic
// locations. Every diagnostic is collected, sorted by position and given a
// source excerpt. The script is only meaningful when the list is empty.
func (c *Compiler) Compile(src, name string) (*ast.Script, *rslErrors.ErrorList) {
	if c.maxScriptBytes > 0 && len(src) > c.maxScriptBytes {
		errs := rslErrors.NewErrorList()
		errs.AddErrorWithSuggestion(rslErrors.ErrorTypeSyntax,
			fmt.Sprintf("script is %d bytes, exceeding the limit of %d bytes", len(src), c.maxScriptBytes),
			ast.Location{Source: name, Line: 1, Column: 1},
			"Split the script or raise compiler.max_script_bytes")
		return nil, errs
	}

	script, errs := parser.NewParser().WithMaxDepth(c.maxDepth).Parse(src, name)

	if err := validator.NewValidator().Validate(script); err != nil {
		if errList, ok := err.(*rslErrors.ErrorList); ok {
			errs.Merge(errList)
		}
	}

	errs.Sort()
	rslErrors.AddContext(errs, src)

	return script, errs
}

// Compile is a convenience function that compiles script text with default limits.
// It returns the script if successful, or the *errors.ErrorList as an error.
func Compile(src, name string) (*ast.Script, error) {
	script, errs := NewCompiler().Compile(src, name)
	if errs.HasErrors() {
		return nil, errs
	}
	return script, nil
}

// Parse parses script text without validation.
// Use this if you want to inspect the tree before validation.
func Parse(src, name string) (*ast.Script, error) {
	script, errs := parser.NewParser().Parse(src, name)
	return script, errs.ToError()
}

// Validate validates a parsed script.
func Validate(script *ast.Script) error {
	return validator.NewValidator().Validate(script)
}
