package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"mercator-hq/rulescript/pkg/policy/engine"
	"mercator-hq/rulescript/pkg/policy/ruleset"
	"mercator-hq/rulescript/pkg/policy/scope"
)

// WriteDiagnostics writes diagnostics in a compiler-style layout with the
// source excerpt and suggestion of each.
func WriteDiagnostics(w io.Writer, source string, diags []engine.Diagnostic) error {
	for _, d := range diags {
		loc := source
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", source, d.Line, d.Column)
		}
		if _, err := fmt.Fprintf(w, "%s: %s: %s\n", loc, d.Kind, d.Message); err != nil {
			return err
		}
		if d.Context != "" {
			if _, err := fmt.Fprintf(w, "  |\n%s  |\n", d.Context); err != nil {
				return err
			}
		}
		if d.Suggestion != "" {
			if _, err := fmt.Fprintf(w, "  = suggestion: %s\n", d.Suggestion); err != nil {
				return err
			}
		}
	}
	return nil
}

// CompileReport is the output of a test compile.
type CompileReport struct {
	Source      string              `json:"source"`
	Scope       string              `json:"scope"`
	OK          bool                `json:"ok"`
	Cached      bool                `json:"cached"`
	CompileID   string              `json:"compile_id"`
	Rules       int                 `json:"rules"`
	Diagnostics []engine.Diagnostic `json:"diagnostics"`
}

// NewCompileReport builds a report from a compile result.
func NewCompileReport(source string, res *engine.CompileResult) *CompileReport {
	r := &CompileReport{
		Source:      source,
		Scope:       res.Scope.String(),
		OK:          res.OK,
		Cached:      res.Cached,
		CompileID:   res.CompileID,
		Diagnostics: res.Diagnostics,
	}
	if res.RuleSet != nil {
		r.Rules = res.RuleSet.Len()
	}
	return r
}

// WriteText implements TextWriter.
func (r *CompileReport) WriteText(w io.Writer) error {
	if err := WriteDiagnostics(w, r.Source, r.Diagnostics); err != nil {
		return err
	}
	if r.OK {
		_, err := fmt.Fprintf(w, "✓ %s compiled: %d rule(s) for %s\n", r.Source, r.Rules, r.Scope)
		return err
	}
	_, err := fmt.Fprintf(w, "✗ %s: %d diagnostic(s)\n", r.Source, len(r.Diagnostics))
	return err
}

// ResolvedRule is one row of a resolve report.
type ResolvedRule struct {
	Ruleset           string `json:"ruleset"`
	Rule              string `json:"rule"`
	Module            string `json:"module"`
	ContributingScope string `json:"contributing_scope"`
	Source            string `json:"source"`
	Line              int    `json:"line"`
}

// ResolveReport lists the effective rules and where each came from.
type ResolveReport struct {
	Scopes  []string       `json:"scopes"`
	Missing []string       `json:"missing,omitempty"`
	Summary map[string]int `json:"summary"`
	Rules   []ResolvedRule `json:"rules"`
}

// NewResolveReport builds a report from an effective rule set.
func NewResolveReport(eff *ruleset.EffectiveRuleSet) *ResolveReport {
	r := &ResolveReport{
		Scopes:  descriptorStrings(eff.Scopes),
		Missing: descriptorStrings(eff.Missing),
		Summary: make(map[string]int),
		Rules:   make([]ResolvedRule, 0, eff.Len()),
	}
	for t, n := range eff.Summary() {
		r.Summary[t.String()] = n
	}
	for _, entry := range eff.Entries() {
		r.Rules = append(r.Rules, ResolvedRule{
			Ruleset:           entry.Key.Ruleset,
			Rule:              entry.Key.Rule,
			Module:            entry.Rule.Module,
			ContributingScope: entry.ContributingScope.String(),
			Source:            entry.Source.String(),
			Line:              entry.Rule.Span.Start.Line,
		})
	}
	return r
}

// WriteText implements TextWriter.
func (r *ResolveReport) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULESET\tRULE\tSCOPE\tSOURCE\tLINE")
	for _, rule := range r.Rules {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			rule.Ruleset, rule.Rule, rule.ContributingScope, rule.Source, rule.Line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	types := make([]string, 0, len(r.Summary))
	for t := range r.Summary {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		return scope.Type(types[i]).Specificity() < scope.Type(types[j]).Specificity()
	})

	fmt.Fprintf(w, "\n%d rule(s)", len(r.Rules))
	for _, t := range types {
		fmt.Fprintf(w, ", %s: %d", t, r.Summary[t])
	}
	fmt.Fprintln(w)

	for _, m := range r.Missing {
		if _, err := fmt.Fprintf(w, "⚠  no compiled script for %s\n", m); err != nil {
			return err
		}
	}
	return nil
}

// DecisionReport is the output of a rule evaluation.
type DecisionReport struct {
	Ruleset           string      `json:"ruleset"`
	Rule              string      `json:"rule"`
	Value             interface{} `json:"value"`
	ValueText         string      `json:"value_text"`
	Kind              string      `json:"kind"`
	Matched           bool        `json:"matched"`
	ContributingScope string      `json:"contributing_scope"`
	Source            string      `json:"source"`
	Line              int         `json:"line,omitempty"`
}

// NewDecisionReport builds a report from an evaluation decision.
func NewDecisionReport(d *engine.Decision) *DecisionReport {
	return &DecisionReport{
		Ruleset:           d.Key.Ruleset,
		Rule:              d.Key.Rule,
		Value:             d.Value.Interface(),
		ValueText:         d.Value.String(),
		Kind:              string(d.Value.Kind),
		Matched:           d.Matched,
		ContributingScope: d.ContributingScope.String(),
		Source:            d.Source.String(),
		Line:              d.Line,
	}
}

// WriteText implements TextWriter.
func (r *DecisionReport) WriteText(w io.Writer) error {
	if !r.Matched {
		_, err := fmt.Fprintf(w, "[%s]/[%s] = %s (no line matched, from %s)\n",
			r.Ruleset, r.Rule, r.ValueText, r.Source)
		return err
	}
	_, err := fmt.Fprintf(w, "[%s]/[%s] = %s (from %s, line %d)\n",
		r.Ruleset, r.Rule, r.ValueText, r.Source, r.Line)
	return err
}

// DiagnosticReport carries diagnostics from a failed evaluation.
type DiagnosticReport struct {
	Source      string              `json:"source"`
	Diagnostics []engine.Diagnostic `json:"diagnostics"`
}

// WriteText implements TextWriter.
func (r *DiagnosticReport) WriteText(w io.Writer) error {
	return WriteDiagnostics(w, r.Source, r.Diagnostics)
}

func descriptorStrings(descs []scope.Descriptor) []string {
	if len(descs) == 0 {
		return nil
	}
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.String()
	}
	return out
}
