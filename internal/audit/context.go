package audit

import (
	"context"
	"strings"
)

type requestIDKey struct{}

// WithRequestID attaches the request identifier for audit correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts the request id if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(requestIDKey{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

type actorKey struct{}

// WithActor attaches the acting user so stores that write their own audit
// rows can attribute them.
func WithActor(ctx context.Context, userID int64) context.Context {
	if userID <= 0 {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext extracts the acting user id if present.
func ActorFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(actorKey{}).(int64)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}
