// Package eval evaluates compiled rule expressions against a fact context.
//
// Facts are typed values (number, string, boolean, time of day, duration,
// null). There is no coercion between kinds: values of different kinds are
// never equal, and ordering them is a TypeError. AND and OR short-circuit
// and treat null as false. A fact missing from the context is a
// ReferenceError naming the closest fact that is present.
//
//	facts, _ := eval.FromMap(map[string]any{"branch_type": "urban"})
//	result, err := eval.EvaluateRule(rule.Lines, facts)
//	var refErr *eval.ReferenceError
//	if errors.As(err, &refErr) {
//	    fmt.Println(refErr.Suggestion)
//	}
package eval
