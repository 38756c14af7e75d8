package cache

import (
	"context"
)

type operationContextKey struct{}

// WithOperation attaches the logical calling operation name to the context.
// Events emitted while serving that context are attributed to the name, which
// replaces stack introspection for call-site identification.
func WithOperation(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, operationContextKey{}, name)
}

// OperationFromContext returns the operation name previously attached with
// WithOperation, or the empty string.
func OperationFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if name, ok := ctx.Value(operationContextKey{}).(string); ok {
		return name
	}
	return ""
}
