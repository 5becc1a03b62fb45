package bandit

import "context"

type ctxKey string

const TraceIDKey ctxKey = "trace_id"

// WithTraceID stores a trace id for decision and attribution logs.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	if v := ctx.Value(TraceIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
