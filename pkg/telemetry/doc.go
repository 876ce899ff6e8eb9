// Package telemetry groups the observability packages used by rulescript.
//
// # Components
//
//   - logging: structured slog logging with text, JSON and console output
//   - metrics: Prometheus collectors for compiles, cache and evaluations
//   - tracing: OpenTelemetry spans around compile, resolve and evaluate
//   - health: liveness, readiness and version probes for the watch server
//
// # Usage
//
//	cfg := config.GetConfig()
//
//	logger, _ := logging.New(logging.FromConfig(cfg.Telemetry.Logging, os.Stderr))
//	tracer, _ := tracing.New(&cfg.Telemetry.Tracing)
//	defer tracer.Shutdown(context.Background())
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	eng, _ := engine.New(engine.FromCompilerConfig(cfg.Compiler), logger.Slog(),
//	    engine.WithMetrics(collector), engine.WithTracer(tracer))
//
//	checker := health.New(cfg.Server.HealthCheckTimeout)
//	checker.RegisterCheck("load", health.LoadCheck(mgr))
//	checker.Register(mux, version, commit, buildDate)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// The subpackages take their configuration from pkg/config and do not
// depend on each other.
package telemetry
