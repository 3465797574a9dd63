package httpclient

import (
	"context"
	nethttp "net/http"

	"github.com/google/uuid"
)

// HeaderXRequestID carries the id shared by every attempt of one logical request.
const HeaderXRequestID = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID stores id in ctx for the request id interceptor.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored in ctx, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// ensureRequestID returns ctx carrying a request id, generating one if needed.
func ensureRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := RequestIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRequestID(ctx, id), id
}

// NewRequestIDInterceptor sets X-Request-ID from the context unless the
// request already has one.
func NewRequestIDInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *nethttp.Request) error {
		if req.Header.Get(HeaderXRequestID) != "" {
			return nil
		}
		if id, ok := RequestIDFromContext(ctx); ok {
			req.Header.Set(HeaderXRequestID, id)
		}
		return nil
	}
}
