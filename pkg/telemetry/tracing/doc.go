// Package tracing provides OpenTelemetry tracing for rulescript.
//
// When tracing is disabled the Tracer is a noop and spans cost almost
// nothing. When enabled, spans are batched to an OTLP/gRPC collector:
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "rulescript.compile")
//	tracing.SetScopeAttributes(span, "ORG", "acme")
//	defer span.End()
//
// Sampling supports "always", "never" and "ratio", each wrapped in a
// parent-based sampler.
package tracing
