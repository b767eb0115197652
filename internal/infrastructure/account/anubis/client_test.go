package anubis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/usecase"
)

func newTestClient(srv *httptest.Server, adminKey string, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(srv.Client(), srv.URL, "/v1/auth/introspect", adminKey, breaker, logging.NewNop())
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	body, err := sonic.Marshal(v)
	if err != nil {
		t.Errorf("marshal response: %v", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func TestClientVerifyAccessToken_SendsAdminKeyAndParsesResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/auth/introspect" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("x-admin-key"); got != "admin-secret" {
			t.Errorf("unexpected x-admin-key: %s", got)
		}

		raw, _ := io.ReadAll(r.Body)
		var req map[string]string
		if err := sonic.Unmarshal(raw, &req); err != nil || req["token"] != "token-abc" {
			t.Errorf("unexpected request body %s: %v", raw, err)
		}

		writeJSON(t, w, map[string]any{
			"active":       true,
			"user_id":      "user-123",
			"display_name": "Bung Towel",
			"permissions":  []string{"match.manage", "users.read"},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv, "admin-secret", resilience.CircuitBreakerConfig{})
	principal, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if err != nil {
		t.Fatalf("verify token failed: %v", err)
	}

	if principal.UserID != "user-123" || principal.DisplayName != "Bung Towel" {
		t.Fatalf("unexpected principal: %+v", principal)
	}
	if !principal.CanManageMatch() || principal.CanModerate() {
		t.Fatalf("unexpected capabilities: %+v", principal.Capabilities)
	}
}

func TestClientVerifyAccessToken_InactiveToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"active": false})
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "", resilience.CircuitBreakerConfig{}).VerifyAccessToken(context.Background(), "invalid-token")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestClientVerifyAccessToken_ForbiddenMappedToDependencyUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, "wrong-key", resilience.CircuitBreakerConfig{}).VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestClientVerifyAccessToken_UsesInMemoryCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(t, w, map[string]any{"active": true, "user_id": "user-cache"})
	}))
	defer srv.Close()

	client := newTestClient(srv, "", resilience.CircuitBreakerConfig{})
	for i := 0; i < 2; i++ {
		principal, err := client.VerifyAccessToken(context.Background(), "cached-token")
		if err != nil {
			t.Fatalf("verify token failed: %v", err)
		}
		if principal.UserID != "user-cache" {
			t.Fatalf("unexpected user id: %s", principal.UserID)
		}
	}

	if calls.Load() != 1 {
		t.Fatalf("expected one introspection call with cache, got %d", calls.Load())
	}
}

func TestClientVerifyAccessToken_OpensCircuitOnServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv, "", resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 3; i++ {
		_, err := client.VerifyAccessToken(context.Background(), "token")
		if !errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("attempt %d: expected ErrDependencyUnavailable, got %v", i, err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected open circuit to short-circuit the third call, got %d calls", calls.Load())
	}
}

func TestDevVerifier(t *testing.T) {
	principal, err := DevVerifier{}.VerifyAccessToken(context.Background(), "dev:ops-1:match.manage,match.moderate")
	if err != nil {
		t.Fatalf("verify dev token: %v", err)
	}
	if principal.UserID != "ops-1" || !principal.CanManageMatch() || !principal.CanModerate() {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if _, err := (DevVerifier{}).VerifyAccessToken(context.Background(), "Bearer-ish"); !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
