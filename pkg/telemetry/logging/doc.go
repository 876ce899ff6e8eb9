// Package logging provides structured logging built on log/slog.
//
// # Overview
//
//   - Structured logging with JSON, text, and console formats
//   - Context-aware logging: compile_id, scope_type, scope_id and trace_id
//     stored on a context are added to every record logged with it
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//
//	ctx = logging.WithCompileID(ctx, compileID)
//	ctx = logging.WithScope(ctx, "ORG", "acme")
//	logger.Slog().InfoContext(ctx, "rule set compiled", "rules", 7)
//	// {"msg":"rule set compiled","rules":7,"compile_id":"...","scope_type":"ORG","scope_id":"acme"}
package logging
