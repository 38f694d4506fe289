package requestctx

import "context"

// Info captures metadata about the HTTP request that started an operation.
type Info struct {
	ID        string
	IPAddress string
	UserAgent string
}

type infoContextKey struct{}

// WithInfo injects request metadata into the supplied context, returning a derived context that
// callers can pass down into service layers for log correlation.
func WithInfo(ctx context.Context, info Info) context.Context {
	if ctx == nil {
		return context.WithValue(context.Background(), infoContextKey{}, info)
	}
	return context.WithValue(ctx, infoContextKey{}, info)
}

// FromContext extracts previously stored request metadata from the context.
func FromContext(ctx context.Context) (Info, bool) {
	if ctx == nil {
		return Info{}, false
	}
	info, ok := ctx.Value(infoContextKey{}).(Info)
	return info, ok
}

// ID returns the request identifier stored in ctx, or "" when there is none.
func ID(ctx context.Context) string {
	info, _ := FromContext(ctx)
	return info.ID
}
