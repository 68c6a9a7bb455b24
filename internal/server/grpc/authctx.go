package grpcserver

import (
	"context"
)

type ctxKey string

const usernameKey ctxKey = "passbox.username"

// WithUsername stores the authenticated username in context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// UsernameFromCtx fetches the authenticated username from context.
func UsernameFromCtx(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(usernameKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
