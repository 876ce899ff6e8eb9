// Package server provides the HTTP server run by `rulescript watch`.
//
// The server mounts health probes, the Prometheus metrics endpoint and a
// small read-only decision API on one mux, wraps it in request ID, logging
// and panic recovery middleware, and shuts down gracefully when its context
// is cancelled.
//
// # Decision API
//
//	GET  /v1/rules?org=acme&branch=north&user=alice
//	POST /v1/evaluate
//
// /v1/rules returns the effective rule set for the given scopes and the
// scope that contributed each rule. /v1/evaluate takes a JSON body
//
//	{
//	    "org": "acme",
//	    "branch": "north",
//	    "user": "alice",
//	    "ruleset": "Service Territory",
//	    "rule": "Max Travel Time",
//	    "facts": {"branch_type": "urban", "wait": "20 minutes"}
//	}
//
// and returns the decision. Fact strings that read as durations or times of
// day are converted the same way as a facts file given to `rulescript eval`.
// Evaluation failures answer 422 with the diagnostics of the failing rule.
//
// The API only reads compiled rule sets; scripts are never written through it.
package server
