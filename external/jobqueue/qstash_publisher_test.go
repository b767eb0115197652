package jobqueue

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPublisher(t *testing.T, baseURL string, breaker resilience.CircuitBreakerConfig) *QStashPublisher {
	t.Helper()
	p, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          baseURL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://api.matchday.example",
		Retries:          3,
		InternalJobToken: "job-secret",
		CircuitBreaker:   breaker,
	}, logging.NewNop())
	require.NoError(t, err)
	return p
}

func TestQStashPublisher_EnqueueSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/publish/https://api.matchday.example/v1/internal/jobs/reconcile-scores", r.URL.Path)
		assert.Equal(t, "Bearer qstash-token", r.Header.Get("Authorization"))
		assert.Equal(t, "30s", r.Header.Get("Upstash-Delay"))
		assert.Equal(t, "3", r.Header.Get("Upstash-Retries"))
		assert.Equal(t, "reconcile-m1", r.Header.Get("Upstash-Deduplication-Id"))
		assert.Equal(t, "job-secret", r.Header.Get("Upstash-Forward-X-Internal-Job-Token"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]string
		require.NoError(t, sonic.Unmarshal(raw, &body))
		assert.Equal(t, "m1", body["match_id"])

		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	p := newTestPublisher(t, srv.URL, resilience.CircuitBreakerConfig{Enabled: false})
	err := p.Enqueue(context.Background(), "v1/internal/jobs/reconcile-scores", map[string]string{"match_id": "m1"}, 30*time.Second, "reconcile-m1")
	require.NoError(t, err)
}

func TestQStashPublisher_TransientFailuresOpenCircuit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := newTestPublisher(t, srv.URL, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 3; i++ {
		err := p.Enqueue(context.Background(), "/v1/internal/jobs/reconcile-scores", nil, 0, "")
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), calls.Load(), "third call should be short-circuited")
}

func TestQStashPublisher_ClientErrorDoesNotTripCircuit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := newTestPublisher(t, srv.URL, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		require.Error(t, p.Enqueue(context.Background(), "/v1/internal/jobs/reconcile-scores", nil, 0, ""))
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewQStashPublisher_RejectsBadTarget(t *testing.T) {
	_, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: "https://qstash.upstash.io", TargetBaseURL: "ftp://api"}, logging.NewNop())
	require.Error(t, err)
}

func TestFormatDelay(t *testing.T) {
	assert.Equal(t, "0s", formatDelay(0))
	assert.Equal(t, "2s", formatDelay(1500*time.Millisecond))
	assert.Equal(t, "90s", formatDelay(90*time.Second))
}
