package ast

import (
	"strings"
)

// ExprType represents the type of an expression node.
type ExprType string

const (
	ExprTypeLiteral    ExprType = "literal"    // number, string, boolean, null, duration
	ExprTypeIdentifier ExprType = "identifier" // fact lookup
	ExprTypeCompare    ExprType = "compare"    // left op right
	ExprTypeLogical    ExprType = "logical"    // left AND/OR right
	ExprTypeIf         ExprType = "if"         // IF(cond, then[, else])
	ExprTypeTime       ExprType = "time"       // TIME(h, m, s)
	ExprTypeGroup      ExprType = "group"      // ( expr )
)

// Operator represents a comparison operator.
type Operator string

const (
	OperatorEqual        Operator = "=="
	OperatorNotEqual     Operator = "!="
	OperatorLessThan     Operator = "<"
	OperatorGreaterThan  Operator = ">"
	OperatorLessEqual    Operator = "<="
	OperatorGreaterEqual Operator = ">="
)

// IsOrdering returns true for <, >, <= and >=.
func (o Operator) IsOrdering() bool {
	switch o {
	case OperatorLessThan, OperatorGreaterThan, OperatorLessEqual, OperatorGreaterEqual:
		return true
	}
	return false
}

// LogicalOperator is AND or OR.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// Expr is a node in an expression tree. Only the fields relevant to Type are set.
// Expressions are immutable once the parser returns them.
type Expr struct {
	Type     ExprType
	Value    Value           // Literal value (Literal; folded value for Time)
	Name     string          // Fact name (Identifier)
	Operator Operator        // Comparison operator (Compare)
	Logical  LogicalOperator // AND/OR (Logical)
	Left     *Expr           // Compare, Logical
	Right    *Expr           // Compare, Logical
	Args     []*Expr         // If, Time; Group holds its inner expression in Args[0]
	Span     Span            // Source range
}

// IsConditional returns true if this is an IF call with a condition and a
// then branch. Any else argument is ignored when the IF governs a line.
func (e *Expr) IsConditional() bool {
	return e.Type == ExprTypeIf && len(e.Args) >= 2
}

// Unwrap strips redundant parentheses.
func (e *Expr) Unwrap() *Expr {
	for e != nil && e.Type == ExprTypeGroup && len(e.Args) == 1 {
		e = e.Args[0]
	}
	return e
}

// String renders the expression in script syntax.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e *Expr) write(sb *strings.Builder) {
	switch e.Type {
	case ExprTypeLiteral, ExprTypeTime:
		sb.WriteString(e.Value.String())
	case ExprTypeIdentifier:
		sb.WriteString(e.Name)
	case ExprTypeCompare:
		e.Left.write(sb)
		sb.WriteString(" " + string(e.Operator) + " ")
		e.Right.write(sb)
	case ExprTypeLogical:
		e.Left.write(sb)
		sb.WriteString(" " + string(e.Logical) + " ")
		e.Right.write(sb)
	case ExprTypeIf:
		sb.WriteString("IF(")
		for i, arg := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			arg.write(sb)
		}
		sb.WriteString(")")
	case ExprTypeGroup:
		sb.WriteString("(")
		if len(e.Args) == 1 {
			e.Args[0].write(sb)
		}
		sb.WriteString(")")
	}
}
