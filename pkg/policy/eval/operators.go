package eval

import (
	"fmt"

	"mercator-hq/rulescript/pkg/rsl/ast"
)

// evaluateOperator compares two values. Values of different kinds are never
// equal; ordering is only defined between two numbers, two times of day or
// two durations.
func evaluateOperator(op ast.Operator, left, right ast.Value, loc ast.Location) (bool, error) {
	switch op {
	case ast.OperatorEqual:
		return evaluateEqual(left, right), nil

	case ast.OperatorNotEqual:
		return !evaluateEqual(left, right), nil

	case ast.OperatorLessThan:
		c, err := compareOrdered(op, left, right, loc)
		return c < 0, err

	case ast.OperatorGreaterThan:
		c, err := compareOrdered(op, left, right, loc)
		return c > 0, err

	case ast.OperatorLessEqual:
		c, err := compareOrdered(op, left, right, loc)
		return c <= 0, err

	case ast.OperatorGreaterEqual:
		c, err := compareOrdered(op, left, right, loc)
		return c >= 0, err

	default:
		return false, fmt.Errorf("unknown operator: %q", op)
	}
}

// evaluateEqual checks if two values are equal without coercion.
func evaluateEqual(left, right ast.Value) bool {
	// Handle null cases
	if left.IsNull() || right.IsNull() {
		return left.IsNull() && right.IsNull()
	}
	if left.Kind != right.Kind {
		return false
	}

	switch left.Kind {
	case ast.ValueKindNumber:
		return left.Number == right.Number
	case ast.ValueKindString:
		return left.Str == right.Str
	case ast.ValueKindBoolean:
		return left.Bool == right.Bool
	case ast.ValueKindTime:
		return left.Time.Compare(right.Time) == 0
	case ast.ValueKindDuration:
		return left.Duration == right.Duration
	default:
		return false
	}
}

// compareOrdered returns -1, 0 or 1, or a TypeError when the kinds differ
// or have no ordering.
func compareOrdered(op ast.Operator, left, right ast.Value, loc ast.Location) (int, error) {
	leftKind, rightKind := kindOf(left), kindOf(right)

	if leftKind != rightKind {
		return 0, &TypeError{
			Operator: string(op),
			Left:     leftKind,
			Right:    rightKind,
			Location: loc,
			Message:  fmt.Sprintf("cannot compare %s %s %s", leftKind, op, rightKind),
		}
	}

	switch leftKind {
	case ast.ValueKindNumber:
		return cmpFloat(left.Number, right.Number), nil
	case ast.ValueKindTime:
		return left.Time.Compare(right.Time), nil
	case ast.ValueKindDuration:
		return cmpFloat(left.Duration.Seconds(), right.Duration.Seconds()), nil
	default:
		return 0, &TypeError{
			Operator: string(op),
			Left:     leftKind,
			Right:    rightKind,
			Location: loc,
			Message:  fmt.Sprintf("operator %s is not defined for %s values (only == and !=)", op, leftKind),
		}
	}
}

// truthy interprets a value as a condition. Null counts as false.
func truthy(v ast.Value, what string, loc ast.Location) (bool, error) {
	if v.IsNull() {
		return false, nil
	}
	if v.Kind != ast.ValueKindBoolean {
		return false, &TypeError{
			Operator: what,
			Left:     v.Kind,
			Location: loc,
			Message:  fmt.Sprintf("%s requires a boolean, got %s %s", what, v.Kind, v),
		}
	}
	return v.Bool, nil
}

func kindOf(v ast.Value) ast.ValueKind {
	if v.IsNull() {
		return ast.ValueKindNull
	}
	return v.Kind
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
