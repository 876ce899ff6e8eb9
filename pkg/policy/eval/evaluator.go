package eval

import (
	"fmt"

	"mercator-hq/rulescript/pkg/rsl/ast"
)

// Result is the outcome of evaluating one rule.
type Result struct {
	Value   ast.Value
	Matched bool // False when no line matched; Value is then null
	Line    int  // Source line of the matching rule line, 0 when unmatched
	Index   int  // Index of the matching line in the rule body, -1 when unmatched
}

// EvaluateRule evaluates rule lines top to bottom and returns the value of
// the first matching line.
//
// A line whose top-level expression is an IF matches only when its
// condition is true, and then yields the then branch; an else argument on
// such a line is never reached. Every other line always matches, so an
// unconditional line acts as the fallback for the lines above it. Evaluation is read-only
// and safe to run concurrently on shared rule lines.
func EvaluateRule(lines []*ast.Line, facts Facts) (Result, error) {
	for i, line := range lines {
		if line.Expr == nil {
			continue
		}

		if cond := line.Condition(); cond != nil {
			v, err := Evaluate(cond, facts)
			if err != nil {
				return Result{}, err
			}
			ok, err := truthy(v, "IF condition", cond.Span.Start)
			if err != nil {
				return Result{}, err
			}
			if !ok {
				continue
			}

			value, err := Evaluate(line.Expr.Unwrap().Args[1], facts)
			if err != nil {
				return Result{}, err
			}
			return Result{Value: value, Matched: true, Line: line.Location.Line, Index: i}, nil
		}

		value, err := Evaluate(line.Expr, facts)
		if err != nil {
			return Result{}, err
		}
		return Result{Value: value, Matched: true, Line: line.Location.Line, Index: i}, nil
	}

	return Result{Value: ast.Null, Index: -1}, nil
}

// Evaluate evaluates an expression against facts.
// It returns a *ReferenceError for a missing fact and a *TypeError for an
// operator applied to incompatible values.
func Evaluate(expr *ast.Expr, facts Facts) (ast.Value, error) {
	switch expr.Type {
	case ast.ExprTypeLiteral, ast.ExprTypeTime:
		return expr.Value, nil

	case ast.ExprTypeIdentifier:
		v, ok := facts[expr.Name]
		if !ok {
			return ast.Null, newReferenceError(expr.Name, expr.Span.Start, facts)
		}
		return v, nil

	case ast.ExprTypeGroup:
		if len(expr.Args) != 1 {
			return ast.Null, fmt.Errorf("malformed group expression at %s", expr.Span.Start)
		}
		return Evaluate(expr.Args[0], facts)

	case ast.ExprTypeCompare:
		return evaluateCompare(expr, facts)

	case ast.ExprTypeLogical:
		return evaluateLogical(expr, facts)

	case ast.ExprTypeIf:
		return evaluateIf(expr, facts)

	default:
		return ast.Null, fmt.Errorf("unknown expression type %q at %s", expr.Type, expr.Span.Start)
	}
}

func evaluateCompare(expr *ast.Expr, facts Facts) (ast.Value, error) {
	left, err := Evaluate(expr.Left, facts)
	if err != nil {
		return ast.Null, err
	}
	right, err := Evaluate(expr.Right, facts)
	if err != nil {
		return ast.Null, err
	}

	result, err := evaluateOperator(expr.Operator, left, right, expr.Span.Start)
	if err != nil {
		return ast.Null, err
	}
	return ast.BoolValue(result), nil
}

// evaluateLogical evaluates AND/OR with short-circuiting.
func evaluateLogical(expr *ast.Expr, facts Facts) (ast.Value, error) {
	what := string(expr.Logical)

	left, err := Evaluate(expr.Left, facts)
	if err != nil {
		return ast.Null, err
	}
	l, err := truthy(left, what, expr.Left.Span.Start)
	if err != nil {
		return ast.Null, err
	}

	switch expr.Logical {
	case ast.LogicalAnd:
		if !l {
			return ast.BoolValue(false), nil
		}
	case ast.LogicalOr:
		if l {
			return ast.BoolValue(true), nil
		}
	default:
		return ast.Null, fmt.Errorf("unknown logical operator %q", expr.Logical)
	}

	right, err := Evaluate(expr.Right, facts)
	if err != nil {
		return ast.Null, err
	}
	r, err := truthy(right, what, expr.Right.Span.Start)
	if err != nil {
		return ast.Null, err
	}
	return ast.BoolValue(r), nil
}

// evaluateIf evaluates IF(cond, then[, else]). A false condition with no
// else branch yields null.
func evaluateIf(expr *ast.Expr, facts Facts) (ast.Value, error) {
	if len(expr.Args) < 2 || len(expr.Args) > 3 {
		return ast.Null, fmt.Errorf("malformed IF at %s", expr.Span.Start)
	}

	cond, err := Evaluate(expr.Args[0], facts)
	if err != nil {
		return ast.Null, err
	}
	ok, err := truthy(cond, "IF condition", expr.Args[0].Span.Start)
	if err != nil {
		return ast.Null, err
	}

	switch {
	case ok:
		return Evaluate(expr.Args[1], facts)
	case len(expr.Args) == 3:
		return Evaluate(expr.Args[2], facts)
	default:
		return ast.Null, nil
	}
}
