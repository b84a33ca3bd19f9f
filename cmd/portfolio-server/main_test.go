package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetupWiresModuleAndCommands(t *testing.T) {
	t.Setenv("PORTFOLIO_DB_DRIVER", "memory")
	module, registration, err := setup(context.Background(), "")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(func() {
		registration.Unsubscribe()
		_ = module.Close(context.Background())
	})

	if len(registration.Handlers) == 0 || len(registration.Subscriptions) != len(registration.Handlers) {
		t.Fatalf("expected every handler subscribed, got %d of %d", len(registration.Subscriptions), len(registration.Handlers))
	}

	handler, err := module.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/p/unknown", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown slug, got %d", rec.Code)
	}
}

func TestRunServerStopsOnCancel(t *testing.T) {
	t.Setenv("PORTFOLIO_DB_DRIVER", "memory")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runServer(ctx, []string{"-addr", "127.0.0.1:0"}); err != nil {
		t.Fatalf("run server: %v", err)
	}
}

func TestSetupRejectsMissingConfig(t *testing.T) {
	if _, _, err := setup(context.Background(), "does-not-exist.yaml"); err == nil {
		t.Fatal("expected config read error")
	}
}
