package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/rulescript/pkg/policy/cache"
	"mercator-hq/rulescript/pkg/policy/eval"
	"mercator-hq/rulescript/pkg/policy/ruleset"
	"mercator-hq/rulescript/pkg/policy/scope"
	"mercator-hq/rulescript/pkg/rsl"
	"mercator-hq/rulescript/pkg/telemetry/logging"
	"mercator-hq/rulescript/pkg/telemetry/metrics"
	"mercator-hq/rulescript/pkg/telemetry/tracing"
)

// Span names.
const (
	SpanCompile  = "rulescript.compile"
	SpanResolve  = "rulescript.resolve"
	SpanEvaluate = "rulescript.evaluate"
)

// Engine compiles scripts into the cache, resolves effective rule sets from
// cached scopes and evaluates rules against facts.
//
// The engine performs no I/O. Callers load script text from storage, call
// Compile, and persist the text only when the result is OK.
type Engine struct {
	// config contains engine configuration
	config *Config

	// compiler runs the script front end; it holds configuration only
	compiler *rsl.Compiler

	// cache holds the last good rule set per scope
	cache *cache.Cache

	// metrics records compile and evaluation metrics (optional)
	metrics *metrics.Collector

	// tracer creates spans; a no-op tracer when tracing is off
	tracer *tracing.Tracer

	// logger for structured logging
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records compile, cache and evaluation metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) {
		e.metrics = c
	}
}

// WithTracer creates spans with t.
func WithTracer(t *tracing.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New creates a rule engine with an empty cache.
func New(config *Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		config: config,
		logger: logger,
		compiler: rsl.NewCompiler().
			WithMaxScriptBytes(config.MaxScriptBytes).
			WithMaxDepth(config.MaxExpressionDepth),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.tracer == nil {
		e.tracer = tracing.Noop()
	}

	// A nil *Collector must not end up inside the interface
	var cacheMetrics cache.Metrics
	if e.metrics != nil {
		cacheMetrics = e.metrics
	}
	e.cache = cache.New(logger, cacheMetrics)

	return e, nil
}

// Compile compiles script text for a scope and commits the result to the
// cache. Identical text for a scope that is already cached is not parsed
// again. A failed compile keeps the previously cached rule set active.
//
// Script problems are reported as diagnostics in the result. The error is
// only non-nil for an invalid scope or a canceled context.
func (e *Engine) Compile(ctx context.Context, scopeType scope.Type, scopeID, text string) (*CompileResult, error) {
	desc := scope.New(scopeType, scopeID)
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	compileID := uuid.NewString()

	ctx = logging.WithCompileID(ctx, compileID)
	ctx = logging.WithScope(ctx, scopeType.String(), scopeID)
	ctx, span := e.tracer.Start(ctx, SpanCompile,
		trace.WithAttributes(attribute.Int(tracing.AttrScriptBytes, len(text))))
	defer span.End()
	tracing.SetScopeAttributes(span, scopeType.String(), scopeID)

	res := e.cache.Compile(desc, text, func(hash uint64) (*ruleset.CompiledRuleSet, error) {
		script, errs := e.compiler.Compile(text, desc.String())
		if errs.HasErrors() {
			return nil, errs
		}

		rs, err := ruleset.New(desc, hash, script)
		if err != nil {
			return nil, err
		}
		rs.CompileID = compileID
		return rs, nil
	})

	// A cache hit or a shared compile parsed nothing under this request's id
	if res.RuleSet != nil && res.RuleSet.CompileID != compileID {
		compileID = res.RuleSet.CompileID
		ctx = logging.WithCompileID(ctx, compileID)
	}

	result := &CompileResult{
		OK:          res.Err == nil,
		Scope:       desc,
		RuleSet:     res.RuleSet,
		Diagnostics: Diagnostics(res.Err),
		Cached:      res.Cached,
		Superseded:  res.Superseded,
		CompileID:   compileID,
	}
	if result.Diagnostics == nil {
		result.Diagnostics = []Diagnostic{}
	}

	duration := time.Since(start)
	rules := 0
	if res.RuleSet != nil {
		rules = res.RuleSet.Len()
	}

	tracing.SetCompileAttributes(span, compileID, result.OK, len(result.Diagnostics), rules)
	tracing.SetCacheAttributes(span, res.Cached, res.Superseded)
	if res.Err != nil {
		tracing.SetError(span, res.Err)
	}

	if e.metrics != nil {
		kinds := make([]string, 0, len(result.Diagnostics))
		for _, d := range result.Diagnostics {
			kinds = append(kinds, d.Kind)
		}
		e.metrics.RecordCompile(scopeType.String(), result.Outcome(), duration, kinds)
	}

	switch {
	case !result.OK:
		e.logger.WarnContext(ctx, "compile failed",
			"scope", desc,
			"diagnostics", len(result.Diagnostics),
			"duration_ms", duration.Milliseconds(),
		)
	case res.Cached:
		e.logger.DebugContext(ctx, "compile served from cache", "scope", desc, "rules", rules)
	case res.Superseded:
		e.logger.InfoContext(ctx, "compile superseded by a newer request",
			"scope", desc,
			"duration_ms", duration.Milliseconds(),
		)
	default:
		e.logger.InfoContext(ctx, "compiled script",
			"scope", desc,
			"rules", rules,
			"shared", res.Shared,
			"duration_ms", duration.Milliseconds(),
		)
	}

	return result, nil
}

// Resolve builds the effective rule set for an organization and optional
// branch and user. Empty branch or user ids mean the scope is absent.
//
// Only cached rule sets are read; Resolve never waits for an in-flight
// compile. Requested scopes with nothing cached are listed in
// EffectiveRuleSet.Missing and contribute no rules.
func (e *Engine) Resolve(ctx context.Context, orgID, branchID, userID string) (*ruleset.EffectiveRuleSet, error) {
	_, span := e.tracer.Start(ctx, SpanResolve)
	defer span.End()

	if strings.TrimSpace(orgID) == "" {
		tracing.SetError(span, ErrOrgRequired)
		return nil, ErrOrgRequired
	}

	wanted := []scope.Descriptor{scope.New(scope.Org, orgID)}
	if branchID != "" {
		wanted = append(wanted, scope.New(scope.Branch, branchID))
	}
	if userID != "" {
		wanted = append(wanted, scope.New(scope.User, userID))
	}

	sets := make([]*ruleset.CompiledRuleSet, 0, len(wanted))
	var missing []scope.Descriptor
	for _, desc := range wanted {
		if rs, ok := e.cache.Get(desc); ok {
			sets = append(sets, rs)
		} else {
			missing = append(missing, desc)
		}
	}

	eff, err := ruleset.Resolve(sets...)
	if err != nil {
		tracing.SetError(span, err)
		return nil, err
	}
	eff.Missing = missing

	span.SetAttributes(
		attribute.String(tracing.AttrScopeID, orgID),
		attribute.Int(tracing.AttrRuleCount, eff.Len()),
	)

	if len(missing) > 0 {
		e.logger.DebugContext(ctx, "resolved with missing scopes",
			"org", orgID,
			"missing", fmt.Sprint(missing),
		)
	}

	return eff, nil
}

// Evaluate evaluates one rule of an effective rule set against facts.
//
// It returns ErrRuleNotFound for an unknown key and an *EvaluationError
// wrapping an *eval.ReferenceError or *eval.TypeError when the rule cannot
// be evaluated with the given facts. Evaluation errors never affect the
// cached rule sets.
func (e *Engine) Evaluate(ctx context.Context, eff *ruleset.EffectiveRuleSet, rulesetName, ruleName string, facts eval.Facts) (*Decision, error) {
	if eff == nil {
		return nil, fmt.Errorf("effective rule set cannot be nil")
	}

	_, span := e.tracer.Start(ctx, SpanEvaluate,
		trace.WithAttributes(tracing.RuleAttributes(rulesetName, ruleName)...))
	defer span.End()

	key := ruleset.RuleKey{Ruleset: rulesetName, Rule: ruleName}
	entry, ok := eff.Get(key)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrRuleNotFound, key)
		tracing.SetError(span, err)
		return nil, err
	}

	start := time.Now()
	result, err := eval.EvaluateRule(entry.Rule.Lines, facts)
	duration := time.Since(start)

	contributing := entry.ContributingScope.String()
	if err != nil {
		evalErr := &EvaluationError{Key: key, Cause: err}
		tracing.SetError(span, evalErr)
		if e.metrics != nil {
			e.metrics.RecordEvaluation(contributing, "error", duration)
			var refErr *eval.ReferenceError
			if errors.As(err, &refErr) {
				e.metrics.RecordReferenceError()
			}
		}
		e.logger.DebugContext(ctx, "evaluation failed",
			"rule", key.String(),
			"source", entry.Source,
			"error", err,
		)
		return nil, evalErr
	}

	tracing.SetDecisionAttributes(span, contributing, result.Matched, result.Line)
	if e.metrics != nil {
		outcome := "matched"
		if !result.Matched {
			outcome = "unmatched"
		}
		e.metrics.RecordEvaluation(contributing, outcome, duration)
	}

	return &Decision{
		Key:               key,
		Value:             result.Value,
		ContributingScope: entry.ContributingScope,
		Source:            entry.Source,
		Line:              result.Line,
		Matched:           result.Matched,
	}, nil
}

// RuleSet returns the cached rule set for a scope.
func (e *Engine) RuleSet(scopeType scope.Type, scopeID string) (*ruleset.CompiledRuleSet, bool) {
	return e.cache.Get(scope.New(scopeType, scopeID))
}

// Evict drops the cached rule set for a scope, e.g. after its script was
// deleted. It reports whether an entry was removed.
func (e *Engine) Evict(scopeType scope.Type, scopeID string) bool {
	desc := scope.New(scopeType, scopeID)
	removed := e.cache.Evict(desc)
	if removed {
		e.logger.Info("evicted rule set", "scope", desc)
	}
	return removed
}

// Scopes returns every scope with a cached rule set.
func (e *Engine) Scopes() []scope.Descriptor {
	return e.cache.Keys()
}

// Stats returns a snapshot of the compile cache counters.
func (e *Engine) Stats() cache.Stats {
	return e.cache.Stats()
}
