package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/domain/lineup"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/team"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/migration"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbPingTimeout = 5 * time.Second

type storage struct {
	matches match.Repository
	events  matchevent.Repository
	lineups lineup.Repository
	teams   team.Repository
	players player.Repository
	close   func()
}

// openStorage picks Postgres when DB_URL is set and the seeded in-memory
// store otherwise.
func openStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (storage, error) {
	if cfg.DBURL == "" {
		logger.Warn("DB_URL not set, using in-memory storage with seed data")
		return storage{
			matches: memory.NewMatchRepository(memory.SeedMatches()...),
			events:  memory.NewEventRepository(),
			lineups: memory.NewLineupRepository(),
			teams:   memory.NewTeamRepository(memory.SeedTeams()),
			players: memory.NewPlayerRepository(memory.SeedPlayers()),
			close:   func() {},
		}, nil
	}

	dbURL := NormalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	if cfg.DBAutoMigrate {
		if err := migration.Up(dbURL, logger.Named("migration"), migration.DefaultDirs()...); err != nil {
			return storage{}, fmt.Errorf("auto migrate: %w", err)
		}
	}

	db, err := openDB(ctx, dbURL)
	if err != nil {
		return storage{}, err
	}
	logger.Info("postgres connected", "db_name", dbNameFromURL(cfg.DBURL))

	return storage{
		matches: postgres.NewMatchRepository(db),
		events:  postgres.NewEventRepository(db),
		lineups: postgres.NewLineupRepository(db),
		teams:   postgres.NewTeamRepository(db),
		players: postgres.NewPlayerRepository(db),
		close: func() {
			if err := db.Close(); err != nil {
				logger.Warn("close postgres", "error", err)
			}
		},
	}, nil
}

// openDB opens a traced sqlx handle. Queries show up as spans with the
// whitespace-collapsed statement attached.
func openDB(ctx context.Context, dbURL string) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
