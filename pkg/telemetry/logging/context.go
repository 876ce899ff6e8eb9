package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// CompileIDKey is the context key for compile identifiers.
	CompileIDKey contextKey = "compile_id"

	// ScopeTypeKey is the context key for the scope type (ORG, BRANCH, USER).
	ScopeTypeKey contextKey = "scope_type"

	// ScopeIDKey is the context key for the scope identifier.
	ScopeIDKey contextKey = "scope_id"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"
)

// WithCompileID adds a compile ID to the context.
func WithCompileID(ctx context.Context, compileID string) context.Context {
	return context.WithValue(ctx, CompileIDKey, compileID)
}

// GetCompileID retrieves the compile ID from the context.
func GetCompileID(ctx context.Context) string {
	if id, ok := ctx.Value(CompileIDKey).(string); ok {
		return id
	}
	return ""
}

// WithScope adds a scope type and id to the context.
func WithScope(ctx context.Context, scopeType, scopeID string) context.Context {
	ctx = context.WithValue(ctx, ScopeTypeKey, scopeType)
	return context.WithValue(ctx, ScopeIDKey, scopeID)
}

// GetScope retrieves the scope type and id from the context.
func GetScope(ctx context.Context) (scopeType, scopeID string) {
	scopeType, _ = ctx.Value(ScopeTypeKey).(string)
	scopeID, _ = ctx.Value(ScopeIDKey).(string)
	return scopeType, scopeID
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if compileID := GetCompileID(ctx); compileID != "" {
		fields = append(fields, "compile_id", compileID)
	}

	scopeType, scopeID := GetScope(ctx)
	if scopeType != "" {
		fields = append(fields, "scope_type", scopeType)
	}
	if scopeID != "" {
		fields = append(fields, "scope_id", scopeID)
	}

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	return fields
}

// contextHandler adds context fields to every record logged with a context.
type contextHandler struct {
	slog.Handler
}

// Handle implements slog.Handler.
func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if fields := extractContextFields(ctx); len(fields) > 0 {
			r.Add(fields...)
		}
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
