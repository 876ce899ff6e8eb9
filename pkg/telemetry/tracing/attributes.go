package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys set on rulescript spans. Custom keys use the
// "rulescript.*" namespace.
const (
	// Scope attributes
	AttrScopeType = "rulescript.scope.type"
	AttrScopeID   = "rulescript.scope.id"

	// Compile attributes
	AttrCompileID   = "rulescript.compile.id"
	AttrCompileOK   = "rulescript.compile.ok"
	AttrScriptBytes = "rulescript.script.bytes"
	AttrDiagnostics = "rulescript.diagnostics"
	AttrRuleCount   = "rulescript.rules"

	// Cache attributes
	AttrCacheHit        = "rulescript.cache.hit"
	AttrCacheSuperseded = "rulescript.cache.superseded"

	// Evaluation attributes
	AttrRuleset           = "rulescript.ruleset"
	AttrRule              = "rulescript.rule"
	AttrContributingScope = "rulescript.contributing_scope"
	AttrMatched           = "rulescript.matched"
	AttrLine              = "rulescript.line"
)

// SetScopeAttributes sets the scope a span operates on.
//
// Example:
//
//	SetScopeAttributes(span, "ORG", "acme")
func SetScopeAttributes(span trace.Span, scopeType, scopeID string) {
	span.SetAttributes(
		attribute.String(AttrScopeType, scopeType),
		attribute.String(AttrScopeID, scopeID),
	)
}

// SetCompileAttributes records the outcome of a compile request.
func SetCompileAttributes(span trace.Span, compileID string, ok bool, diagnostics, rules int) {
	span.SetAttributes(
		attribute.String(AttrCompileID, compileID),
		attribute.Bool(AttrCompileOK, ok),
		attribute.Int(AttrDiagnostics, diagnostics),
		attribute.Int(AttrRuleCount, rules),
	)
}

// SetCacheAttributes records how the cache answered a compile request.
func SetCacheAttributes(span trace.Span, hit, superseded bool) {
	span.SetAttributes(
		attribute.Bool(AttrCacheHit, hit),
		attribute.Bool(AttrCacheSuperseded, superseded),
	)
}

// RuleAttributes returns the attributes identifying an evaluated rule, for
// use with trace.WithAttributes when starting a span.
func RuleAttributes(ruleset, rule string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRuleset, ruleset),
		attribute.String(AttrRule, rule),
	}
}

// SetDecisionAttributes records the outcome of a rule evaluation.
func SetDecisionAttributes(span trace.Span, contributingScope string, matched bool, line int) {
	span.SetAttributes(
		attribute.String(AttrContributingScope, contributingScope),
		attribute.Bool(AttrMatched, matched),
		attribute.Int(AttrLine, line),
	)
}
