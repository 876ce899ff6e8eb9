package validator

import (
	"fmt"

	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
)

// timeLimits are the inclusive upper bounds of TIME(h, m, s) arguments.
var timeLimits = [3]struct {
	name string
	max  float64
}{
	{"hour", 23},
	{"minute", 59},
	{"second", 59},
}

// LiteralValidator checks literal operands whose misuse is visible without
// any facts: ordering comparisons on strings or booleans and TIME arguments.
type LiteralValidator struct {
	errors *rslErrors.ErrorList
}

// NewLiteralValidator creates a new literal validator.
func NewLiteralValidator() *LiteralValidator {
	return &LiteralValidator{
		errors: rslErrors.NewErrorList(),
	}
}

// Validate walks every rule expression in the script.
func (v *LiteralValidator) Validate(script *ast.Script) error {
	v.errors = rslErrors.NewErrorList()

	// The visitor never returns an error
	_ = ast.Walk(script, v)

	return v.errors.ToError()
}

// VisitBlock implements ast.Visitor.
func (v *LiteralValidator) VisitBlock(*ast.Block) error { return nil }

// VisitLine implements ast.Visitor.
func (v *LiteralValidator) VisitLine(*ast.Line) error { return nil }

// VisitExpr implements ast.Visitor.
func (v *LiteralValidator) VisitExpr(expr *ast.Expr) error {
	switch expr.Type {
	case ast.ExprTypeCompare:
		if expr.Operator.IsOrdering() {
			v.checkOrderable(expr, expr.Left)
			v.checkOrderable(expr, expr.Right)
		}
	case ast.ExprTypeTime:
		v.checkTime(expr)
	}
	return nil
}

// checkOrderable reports a string or boolean literal used with < > <= >=.
func (v *LiteralValidator) checkOrderable(cmp, operand *ast.Expr) {
	lit := operand.Unwrap()
	if lit.Type != ast.ExprTypeLiteral {
		return
	}
	if lit.Value.Kind != ast.ValueKindString && lit.Value.Kind != ast.ValueKindBoolean {
		return
	}

	v.errors.AddErrorWithSuggestion(
		rslErrors.ErrorTypeSyntax,
		fmt.Sprintf("operator %s cannot be applied to %s literal %s", cmp.Operator, lit.Value.Kind, lit.Value),
		lit.Span.Start,
		"Strings and booleans only support == and !=",
	)
}

// checkTime validates TIME(h, m, s) arguments.
func (v *LiteralValidator) checkTime(expr *ast.Expr) {
	if len(expr.Args) != 3 {
		v.errors.AddErrorWithSuggestion(
			rslErrors.ErrorTypeSyntax,
			fmt.Sprintf("malformed TIME call: expected 3 arguments, got %d", len(expr.Args)),
			expr.Span.Start,
			"Use TIME(hour, minute, second), e.g. TIME(17, 30, 0)",
		)
		return
	}

	for i, arg := range expr.Args {
		limit := timeLimits[i]
		lit := arg.Unwrap()

		if lit.Type != ast.ExprTypeLiteral || lit.Value.Kind != ast.ValueKindNumber {
			v.errors.AddErrorWithSuggestion(
				rslErrors.ErrorTypeSyntax,
				fmt.Sprintf("malformed TIME call: %s must be a number literal, got %s", limit.name, arg),
				arg.Span.Start,
				"TIME arguments are fixed; compare a time fact against TIME(...) instead",
			)
			continue
		}

		n := lit.Value.Number
		if n < 0 || n > limit.max || n != float64(int(n)) {
			v.errors.AddError(
				rslErrors.ErrorTypeSyntax,
				fmt.Sprintf("malformed TIME call: %s must be a whole number between 0 and %d, got %s",
					limit.name, int(limit.max), lit.Value),
				arg.Span.Start,
			)
		}
	}
}
