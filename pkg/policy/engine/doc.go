// Package engine ties the rule script compiler, the compile cache, the scope
// resolver and the evaluator together.
//
// # Operations
//
//   - Compile: parse and validate script text for one scope and commit the
//     compiled rule set to the cache. Every diagnostic is returned at once.
//   - Resolve: fold the cached organization, branch and user rule sets into
//     an EffectiveRuleSet. Reads the cache only.
//   - Evaluate: run one rule of an EffectiveRuleSet against a fact map.
//
// # Usage
//
//	eng, err := engine.New(engine.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//
//	res, err := eng.Compile(ctx, scope.Org, "acme", text)
//	if err != nil {
//	    return err
//	}
//	if !res.OK {
//	    for _, d := range res.Diagnostics {
//	        fmt.Printf("%d:%d %s: %s\n", d.Line, d.Column, d.Kind, d.Message)
//	    }
//	}
//
//	eff, err := eng.Resolve(ctx, "acme", "north", "alice")
//	decision, err := eng.Evaluate(ctx, eff, "Service Territory", "Max Travel Time", facts)
//
// # Observability
//
// Compile, Resolve and Evaluate create the spans rulescript.compile,
// rulescript.resolve and rulescript.evaluate. Compile results, cache events
// and evaluation outcomes are recorded on the metrics collector passed with
// WithMetrics.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Compiles for different scopes run
// in parallel; compiled rule trees are immutable, so evaluation takes no locks.
package engine
