package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInit_DisabledReturnsNoopShutdown(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected the disabled-mode shutdown to be a no-op, got %v", err)
	}
}

func TestStartSpan_AndEnd_RecordsErrorWithoutPanicking(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test-span")
	if ctx == nil {
		t.Fatal("expected a non-nil context from StartSpan")
	}
	End(span, errors.New("boom"))
}

func TestStartSpan_AndEnd_SucceedsWithoutError(t *testing.T) {
	_, span := StartSpan(context.Background(), "test-span-ok")
	End(span, nil)
}

func TestWrapHandler_ServesInnerHandler(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	wrapped := WrapHandler("test-server", inner)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected the wrapped handler to delegate to the inner handler, got status %d", rec.Code)
	}
}

func TestTracer_ReturnsNonNilTracer(t *testing.T) {
	if Tracer() == nil {
		t.Error("expected Tracer() to return a usable tracer even with no provider configured")
	}
}
