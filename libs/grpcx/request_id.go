package grpcx

import (
	"context"

	"github.com/tammy-rb/siri-cosmetics-server/libs/httpx"
)

// RequestIDMetadataKey carries the request id over gRPC metadata (lowercase per gRPC conventions).
const RequestIDMetadataKey = "x-request-id"

// RequestIDFromContext shares storage with httpx so HTTP and gRPC hops log the same id.
func RequestIDFromContext(ctx context.Context) string {
	return httpx.RequestIDFromContext(ctx)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return httpx.ContextWithRequestID(ctx, id)
}

func NewRequestID() string {
	return httpx.NewRequestID()
}
