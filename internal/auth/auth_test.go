package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-portfolio/internal/permissions"
)

func newTestAuthenticator(t *testing.T, now time.Time) *Authenticator {
	t.Helper()
	a, err := New(Config{Secret: "test-secret", Issuer: "go-portfolio", TTL: time.Hour}, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new authenticator: %v", err)
	}
	return a
}

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("expected secret required, got %v", err)
	}
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(t, now)
	actor := uuid.New()

	token, err := a.Issue(actor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := a.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := claims.Actor()
	if err != nil || got != actor {
		t.Fatalf("expected actor %s, got %s (%v)", actor, got, err)
	}
	if len(claims.Grants()) != len(permissions.OwnerDefaults()) {
		t.Fatalf("expected owner defaults, got %v", claims.Grants())
	}
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	issuer := newTestAuthenticator(t, now)
	token, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	later := newTestAuthenticator(t, now.Add(2*time.Hour))
	if _, err := later.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}

	other, err := New(Config{Secret: "other-secret", Issuer: "go-portfolio"}, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := other.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
	if _, err := issuer.Parse(""); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected missing token, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(t, now)
	actor := uuid.New()
	token, err := a.Issue(actor, permissions.PortfoliosRead)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen uuid.UUID
	var canUpdate bool
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = permissions.ActorFromContext(r.Context())
		canUpdate = permissions.Allowed(r.Context(), permissions.PortfoliosUpdate)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolios", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/portfolios", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if seen != actor {
		t.Fatalf("expected actor on context, got %s", seen)
	}
	if canUpdate {
		t.Fatalf("explicit claims should limit permissions")
	}
}
