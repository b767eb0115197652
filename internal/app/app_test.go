package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:               config.EnvDev,
		HTTPAddr:             ":0",
		ReadTimeout:          time.Second,
		WriteTimeout:         time.Second,
		CORSAllowedOrigins:   []string{"*"},
		CacheEnabled:         true,
		CacheTTL:             time.Minute,
		MessageRetention:     240 * time.Hour,
		RealtimeBuffer:       8,
		RealtimePingInterval: time.Second,
		ReconcileWorkers:     2,
		InternalJobToken:     "job-secret",
	}
}

func TestNewHTTPServer_InMemory(t *testing.T) {
	srv, cleanup, err := NewHTTPServer(memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	defer cleanup()

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/matches/"+memory.SeedMatchID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// The development verifier is active without an identity service.
	req := httptest.NewRequest(http.MethodPost, "/v1/matches/"+memory.SeedMatchID+"/messages", nil)
	req.Header.Set("Authorization", "Bearer not-a-dev-token")
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewHTTPServer_RejectsEmptyAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	_, _, err := NewHTTPServer(cfg, logging.NewNop())
	require.Error(t, err)
}

func TestNewHTTPServer_BadQStashTarget(t *testing.T) {
	cfg := memoryConfig()
	cfg.QStashEnabled = true
	cfg.QStashBaseURL = "https://qstash.upstash.io"
	cfg.QStashTargetBaseURL = "not a url"
	_, _, err := NewHTTPServer(cfg, logging.NewNop())
	require.Error(t, err)
}
