package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/matchday/external/jobqueue"
	"github.com/riskibarqy/matchday/external/rosterapi"
	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchday/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/pubsub"
	"github.com/riskibarqy/matchday/internal/usecase"
)

// NewHTTPServer wires storage, the realtime hub and the match services into
// an HTTP server. The returned cleanup closes the hub and the database and
// must run after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	store, err := openStorage(context.Background(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	teamRepo := store.teams
	var playerRepo player.Repository = store.players
	if cfg.RosterAPIEnabled {
		playerRepo = rosterapi.NewClient(rosterapi.ClientConfig{
			BaseURL:        cfg.RosterAPIBaseURL,
			Token:          cfg.RosterAPIToken,
			Timeout:        cfg.RosterAPITimeout,
			MaxRetries:     2,
			CircuitBreaker: cfg.RosterAPICircuit,
			Logger:         logger,
		})
		logger.Info("roster api enabled", "base_url", cfg.RosterAPIBaseURL)
	}
	if cfg.CacheEnabled {
		teamRepo = cache.NewTeamRepository(teamRepo, cfg.CacheTTL)
		playerRepo = cache.NewPlayerRepository(playerRepo, cfg.CacheTTL)
	}

	hub := pubsub.NewHub(cfg.RealtimeBuffer, logger)
	locks := usecase.NewMatchLocks()

	scoreSvc := usecase.NewScoreService(store.matches, store.events, hub, locks, logger)
	scoreSvc.SetReconcileWorkers(cfg.ReconcileWorkers)

	clockSvc := usecase.NewClockService(store.matches, store.events, teamRepo, hub, locks, nil, logger)
	if cfg.QStashEnabled {
		publisher, err := jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			Timeout:          cfg.QStashTimeout,
			CircuitBreaker:   cfg.QStashCircuit,
		}, logger)
		if err != nil {
			hub.Close()
			store.close()
			return nil, nil, fmt.Errorf("build qstash publisher: %w", err)
		}
		clockSvc.SetJobScheduler(publisher, cfg.FullTimeReconcileDelay)
	}

	eventSvc := usecase.NewEventService(store.matches, store.events, playerRepo, scoreSvc, hub, locks, nil, logger)
	eventSvc.SetMessageRetention(cfg.MessageRetention)
	lineupSvc := usecase.NewLineupService(store.matches, store.lineups, playerRepo, hub, locks, nil, logger)
	snapshotSvc := usecase.NewSnapshotService(clockSvc, eventSvc, lineupSvc)

	handler := httpapi.NewHandler(clockSvc, eventSvc, lineupSvc, snapshotSvc, scoreSvc, hub, logger)
	handler.SetStreamPingInterval(cfg.RealtimePingInterval)

	bodyMax := 0
	if cfg.UptraceCaptureRequestBody {
		bodyMax = cfg.UptraceRequestBodyMaxBytes
	}
	router := httpapi.NewRouter(
		handler,
		newTokenVerifier(cfg, logger),
		logger,
		cfg.CORSAllowedOrigins,
		cfg.InternalJobToken,
		bodyMax,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	// Shutdown does not track hijacked websocket connections; closing the
	// hub ends every stream with a going-away frame.
	server.RegisterOnShutdown(hub.Close)

	cleanup := func() {
		hub.Close()
		store.close()
	}
	return server, cleanup, nil
}

// newTokenVerifier falls back to the development verifier only in dev and
// only when no identity service is configured.
func newTokenVerifier(cfg config.Config, logger *logging.Logger) httpapi.TokenVerifier {
	if cfg.AnubisBaseURL == "" && cfg.AppEnv == config.EnvDev {
		logger.Warn("ANUBIS_BASE_URL not set, using development token verifier")
		return anubis.DevVerifier{}
	}
	return anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectURL,
		cfg.AnubisAdminKey,
		cfg.AnubisCircuit,
		logger,
	)
}
