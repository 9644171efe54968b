package services_test

import (
	"context"
	"testing"

	"fastscribe/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithVideoID(ctx, "dQw4w9WgXcQ")
	ctx = services.WithBackend(ctx, "cloud")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.VideoIDFromContext(ctx); !ok || id != "dQw4w9WgXcQ" {
		t.Fatalf("unexpected video id: %v %v", id, ok)
	}
	if backend, ok := services.BackendFromContext(ctx); !ok || backend != "cloud" {
		t.Fatalf("unexpected backend: %v %v", backend, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBackendBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithBackend(ctx, "")
	if _, ok := services.BackendFromContext(ctx); ok {
		t.Fatal("expected no backend value")
	}
}
