package validator

import (
	"fmt"

	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
)

// StructuralValidator validates block structure.
// It checks END balance, required children, and name uniqueness.
type StructuralValidator struct {
	errors *rslErrors.ErrorList
}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{
		errors: rslErrors.NewErrorList(),
	}
}

// Validate performs structural validation on a parsed script.
// It returns an ErrorList containing all structural errors found.
func (v *StructuralValidator) Validate(script *ast.Script) error {
	v.errors = rslErrors.NewErrorList()

	v.validateClosed(script)
	v.validateBalance(script)
	v.validateModules(script)
	v.validateRuleKeys(script)

	return v.errors.ToError()
}

// validateClosed reports every block still open at end of input.
func (v *StructuralValidator) validateClosed(script *ast.Script) {
	for _, block := range script.Tally.Unclosed {
		v.errors.AddErrorWithSuggestion(
			rslErrors.ErrorTypeStructural,
			fmt.Sprintf("%s [%s] is never closed", block.Kind, block.Name),
			block.Span.Start,
			rslErrors.SuggestEnd(string(block.Kind), block.Name),
		)
	}
}

// validateBalance compares the number of opening keywords with END lines.
func (v *StructuralValidator) validateBalance(script *ast.Script) {
	tally := script.Tally
	if tally.Opens == tally.Ends {
		return
	}

	// Point at the most useful place: the innermost unclosed block when
	// ENDs are missing, or the first unmatched END when there are too many.
	var loc ast.Location
	switch {
	case tally.Opens > tally.Ends && len(tally.Unclosed) > 0:
		loc = tally.Unclosed[len(tally.Unclosed)-1].Span.Start
	case tally.Ends > tally.Opens && len(tally.StrayEnds) > 0:
		loc = tally.StrayEnds[0]
	}

	suggestion := "Every MODULE, RULESET and RULE needs exactly one END"
	if tally.Opens > tally.Ends {
		suggestion = fmt.Sprintf("Add %d missing END line(s)", tally.Opens-tally.Ends)
	}

	v.errors.AddErrorWithSuggestion(
		rslErrors.ErrorTypeStructural,
		fmt.Sprintf("unbalanced blocks: %d opening keyword(s) (MODULE, RULESET, RULE) but %d END(s)", tally.Opens, tally.Ends),
		loc,
		suggestion,
	)
}

// validateModules checks MODULE presence, required children, empty rules,
// and sibling name uniqueness at every level.
func (v *StructuralValidator) validateModules(script *ast.Script) {
	if len(script.Modules) == 0 {
		v.errors.AddErrorWithSuggestion(
			rslErrors.ErrorTypeStructural,
			"script contains no MODULE",
			ast.Location{Source: script.Source, Line: 1, Column: 1},
			"Wrap rulesets in MODULE [Name]: ... END",
		)
		return
	}

	v.checkSiblings(nil, script.Modules)

	for _, module := range script.Modules {
		if len(module.Children) == 0 {
			v.errors.AddErrorWithSuggestion(
				rslErrors.ErrorTypeStructural,
				fmt.Sprintf("MODULE [%s] contains no RULESET", module.Name),
				module.Span.Start,
				"Add at least one RULESET [Name]: ... END",
			)
		}
		v.checkSiblings(module, module.Children)

		for _, ruleset := range module.Children {
			v.checkSiblings(ruleset, ruleset.Children)

			for _, rule := range ruleset.Children {
				if !rule.HasBody() {
					v.errors.AddErrorWithSuggestion(
						rslErrors.ErrorTypeStructural,
						fmt.Sprintf("RULE [%s] has no body lines", rule.Name),
						rule.Span.Start,
						"Add at least one line such as '= value'",
					)
				}
			}
		}
	}
}

// checkSiblings reports blocks that share a name with an earlier sibling.
// Blocks with an empty name were already reported by the parser.
func (v *StructuralValidator) checkSiblings(parent *ast.Block, siblings []*ast.Block) {
	seen := make(map[string]*ast.Block)

	for _, block := range siblings {
		if block.Name == "" {
			continue
		}
		first, ok := seen[block.Name]
		if !ok {
			seen[block.Name] = block
			continue
		}

		where := "at top level"
		if parent != nil {
			where = fmt.Sprintf("in %s [%s]", parent.Kind, parent.Name)
		}
		v.errors.AddErrorWithSuggestion(
			rslErrors.ErrorTypeStructural,
			fmt.Sprintf("duplicate %s name [%s] %s (first defined at line %d)", block.Kind, block.Name, where, first.Span.Start.Line),
			block.NameLocation,
			"Rename one of them or merge their contents",
		)
	}
}

// validateRuleKeys reports a (ruleset, rule) key defined in more than one
// RULESET block. Rulesets with the same name in different modules share one
// key space. Duplicates inside a single ruleset are reported by checkSiblings.
func (v *StructuralValidator) validateRuleKeys(script *ast.Script) {
	type firstDef struct {
		module string
		line   int
	}
	seen := make(map[[2]string]firstDef)
	seenIn := make(map[[2]string]map[string]bool) // key -> module names defining it

	for _, module := range script.Modules {
		for _, ruleset := range module.Children {
			for _, rule := range ruleset.Children {
				if ruleset.Name == "" || rule.Name == "" {
					continue
				}
				key := [2]string{ruleset.Name, rule.Name}

				first, ok := seen[key]
				if !ok {
					seen[key] = firstDef{module: module.Name, line: rule.Span.Start.Line}
					seenIn[key] = map[string]bool{module.Name: true}
					continue
				}
				if seenIn[key][module.Name] {
					// Same ruleset block or a duplicate ruleset in one module
					continue
				}
				seenIn[key][module.Name] = true

				v.errors.AddErrorWithSuggestion(
					rslErrors.ErrorTypeStructural,
					fmt.Sprintf("RULE [%s] in RULESET [%s] is already defined in MODULE [%s] at line %d",
						rule.Name, ruleset.Name, first.module, first.line),
					rule.NameLocation,
					"Rulesets with the same name share rule names across modules; rename the rule or the ruleset",
				)
			}
		}
	}
}
