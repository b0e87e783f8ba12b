package requestctx

import "context"

type key struct{}

// WithRequestID stores the correlation id so stores and sinks deeper in the
// call chain can stamp it onto what they write.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key{}, id)
}

// GetRequestID returns the stored id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(key{}).(string)
	return id
}
