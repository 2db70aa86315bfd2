package ctxmeta_test

import (
	"context"
	"testing"

	"github.com/Gunvolt24/pos_terminal/pkg/ctxmeta"
)

func TestWithRequestID_PutAndGet(t *testing.T) {
	parent := context.Background()

	ctx := ctxmeta.WithRequestID(parent, "req-123")
	got, ok := ctxmeta.RequestIDFromContext(ctx)
	if !ok || got != "req-123" {
		t.Fatalf("want ok=true, id=req-123; got ok=%v id=%q", ok, got)
	}

	// Родитель не должен содержать request_id
	if _, parentOk := ctxmeta.RequestIDFromContext(parent); parentOk {
		t.Fatalf("parent context must not contain request_id")
	}
}

func TestWithValues_EmptyValue_NoChange(t *testing.T) {
	parent := context.Background()
	if ctx := ctxmeta.WithRequestID(parent, ""); ctx != parent {
		t.Fatalf("WithRequestID with empty id must return the same ctx")
	}
	if ctx := ctxmeta.WithTerminalID(parent, ""); ctx != parent {
		t.Fatalf("WithTerminalID with empty id must return the same ctx")
	}
	if ctx := ctxmeta.WithAuthToken(parent, ""); ctx != parent {
		t.Fatalf("WithAuthToken with empty token must return the same ctx")
	}
}

func TestWithRequestID_NilCtx(t *testing.T) {
	var nilCtx context.Context
	if ctx := ctxmeta.WithRequestID(nilCtx, "req-1"); ctx != nil {
		t.Fatalf("WithRequestID(nil, ...) must return nil")
	}
	if id, ok := ctxmeta.RequestIDFromContext(nilCtx); ok || id != "" {
		t.Fatalf("RequestIDFromContext(nil) must be empty/false, got id=%q ok=%v", id, ok)
	}
}

func TestTerminalAndToken_Independent(t *testing.T) {
	ctx := ctxmeta.WithTerminalID(context.Background(), "caja-1")
	ctx = ctxmeta.WithAuthToken(ctx, "tok")

	if id, ok := ctxmeta.TerminalIDFromContext(ctx); !ok || id != "caja-1" {
		t.Fatalf("terminal id: got %q ok=%v", id, ok)
	}
	if tok, ok := ctxmeta.AuthTokenFromContext(ctx); !ok || tok != "tok" {
		t.Fatalf("auth token: got %q ok=%v", tok, ok)
	}
	if _, ok := ctxmeta.RequestIDFromContext(ctx); ok {
		t.Fatalf("request id must be absent")
	}
}

func TestRequestIDFromContext_EmptyStoredValue(t *testing.T) {
	// Даже если ключ верный, пустое значение считаем отсутствующим
	ctx := context.WithValue(context.Background(), ctxmeta.KeyRequestID, "")
	id, ok := ctxmeta.RequestIDFromContext(ctx)
	if ok || id != "" {
		t.Fatalf("empty stored value must be treated as absent, got id=%q ok=%v", id, ok)
	}
}

func TestRequestIDFromContext_ForeignKeyDoesNotWork(t *testing.T) {
	type otherKey struct{}
	ctx := context.WithValue(context.Background(), otherKey{}, "req-xyz")
	id, ok := ctxmeta.RequestIDFromContext(ctx)
	if ok || id != "" {
		t.Fatalf("foreign key must not be recognized, got id=%q ok=%v", id, ok)
	}
}
