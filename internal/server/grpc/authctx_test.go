package grpcserver

import (
	"context"
	"testing"
)

func TestWithUsername_And_UsernameFromCtx(t *testing.T) {
	t.Parallel()

	if name, ok := UsernameFromCtx(context.Background()); ok || name != "" {
		t.Fatalf("expected no username in empty ctx")
	}

	ctx := WithUsername(context.Background(), "alice")
	got, ok := UsernameFromCtx(ctx)
	if !ok || got != "alice" {
		t.Fatalf("got %q ok=%v", got, ok)
	}

	if _, ok := UsernameFromCtx(WithUsername(context.Background(), "")); ok {
		t.Fatalf("expected miss on empty username")
	}

	bad := context.WithValue(context.Background(), usernameKey, 42)
	if _, ok := UsernameFromCtx(bad); ok {
		t.Fatalf("expected miss on wrong typed value")
	}
}
