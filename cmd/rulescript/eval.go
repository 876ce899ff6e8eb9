package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/rulescript/pkg/cli"
	"mercator-hq/rulescript/pkg/policy/engine"
	"mercator-hq/rulescript/pkg/policy/eval"
	"mercator-hq/rulescript/pkg/policy/ruleset"
	"mercator-hq/rulescript/pkg/policy/store"
	"mercator-hq/rulescript/pkg/rsl/ast"
	rslErrors "mercator-hq/rulescript/pkg/rsl/errors"
)

var evalFlags struct {
	scopeFlags
	ruleset string
	rule    string
	facts   string
	format  string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate one rule against a set of facts",
	Long: `Resolve the effective rule set for the given scopes and evaluate one rule.

Facts are read from a YAML mapping. Strings that read as durations
("30 minutes") or times of day ("09:30") are converted to those kinds:

  branch_type: urban
  traffic_level: 8
  now: "17:45"
  wait: 20 minutes

Rule lines are tried top to bottom; the first line whose condition holds
supplies the value. A fact the rule needs but the file lacks is reported
with the closest fact name that is present.

Examples:
  rulescript eval --dir rules --org acme --branch north \
      --ruleset "Service Territory" --rule "Max Travel Time" --facts facts.yaml

  # Facts from stdin
  echo 'traffic_level: 9' | rulescript eval --dir rules --org acme --branch north \
      --ruleset "Service Territory" --rule "Max Travel Time" --facts -`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalFlags.register(evalCmd)
	evalCmd.Flags().StringVar(&evalFlags.ruleset, "ruleset", "", "ruleset name (required)")
	evalCmd.Flags().StringVar(&evalFlags.rule, "rule", "", "rule name (required)")
	evalCmd.Flags().StringVar(&evalFlags.facts, "facts", "", "YAML facts file (- for stdin)")
	evalCmd.Flags().StringVar(&evalFlags.format, "format", "text", "output format: text, json")
}

func runEval(cmd *cobra.Command, args []string) error {
	switch {
	case evalFlags.org == "":
		return cli.NewConfigError("org", "--org is required")
	case evalFlags.ruleset == "" || evalFlags.rule == "":
		return cli.NewConfigError("rule", "--ruleset and --rule are required")
	}
	format, err := cli.ParseFormat(evalFlags.format)
	if err != nil {
		return err
	}

	facts := eval.Facts{}
	if evalFlags.facts != "" {
		text, err := readInput(cmd, evalFlags.facts)
		if err != nil {
			return cli.NewCommandError("eval", err)
		}
		if facts, err = eval.ParseYAML([]byte(text)); err != nil {
			return cli.NewConfigError("facts", err.Error())
		}
	}

	e, err := newEnv(setupOptions{quiet: true})
	if err != nil {
		return err
	}
	defer e.close()

	dir, err := e.storeDir(evalFlags.dir)
	if err != nil {
		return err
	}
	_, dirStore, err := e.loadDir(cmd.Context(), dir)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	eff, err := e.engine.Resolve(cmd.Context(), evalFlags.org, evalFlags.branch, evalFlags.user)
	if err != nil {
		return cli.NewCommandError("eval", err)
	}

	formatter := cli.NewFormatter(format)
	decision, err := e.engine.Evaluate(cmd.Context(), eff, evalFlags.ruleset, evalFlags.rule, facts)
	if err != nil {
		var evalErr *engine.EvaluationError
		if !errors.As(err, &evalErr) {
			return cli.NewCommandError("eval", err)
		}

		report := evaluationReport(cmd, dirStore, eff, evalErr)
		if ferr := formatter.FormatTo(cmd.OutOrStdout(), report); ferr != nil {
			return ferr
		}
		return cli.NewCommandError("eval", err)
	}

	return formatter.FormatTo(cmd.OutOrStdout(), cli.NewDecisionReport(decision))
}

// evaluationReport builds diagnostics for a failed evaluation, with the
// source excerpt of the script that supplied the rule.
func evaluationReport(cmd *cobra.Command, dirStore *store.DirStore, eff *ruleset.EffectiveRuleSet, evalErr *engine.EvaluationError) *cli.DiagnosticReport {
	diags := engine.Diagnostics(evalErr.Cause)
	report := &cli.DiagnosticReport{
		Source:      evalErr.Key.String(),
		Diagnostics: diags,
	}

	entry, ok := eff.Get(evalErr.Key)
	if !ok {
		return report
	}
	report.Source = fmt.Sprintf("%s (%s)", entry.Source, evalErr.Key)

	text, err := dirStore.GetScript(cmd.Context(), entry.Source.Type, entry.Source.ID)
	if err != nil {
		return report
	}
	if path, err := dirStore.Path(entry.Source.Type, entry.Source.ID); err == nil {
		report.Source = path
	}
	for i, d := range diags {
		loc := ast.Location{Line: d.Line, Column: d.Column}
		diags[i].Context = rslErrors.ExtractContext(text, loc, 1)
	}
	return report
}
