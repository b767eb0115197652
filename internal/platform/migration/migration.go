package migration

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/riskibarqy/matchday/db"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const embeddedSource = "embedded://db/migrations"

// New opens a migrator against dbURL. A migrations directory found on
// disk wins over the SQL files compiled into the binary.
func New(dbURL string, dirCandidates ...string) (*migrate.Migrate, string, error) {
	if dir, ok := resolveDir(dirCandidates); ok {
		sourceURL := "file://" + filepath.ToSlash(dir)
		m, err := migrate.New(sourceURL, dbURL)
		if err != nil {
			return nil, "", crerr.Wrapf(err, "create migrator from %s", sourceURL)
		}
		return m, sourceURL, nil
	}

	src, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return nil, "", crerr.Wrap(err, "open embedded migrations")
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, "", crerr.Wrap(err, "create migrator from embedded source")
	}
	return m, embeddedSource, nil
}

// Up applies every pending migration. ErrNoChange is not an error.
func Up(dbURL string, logger *logging.Logger, dirCandidates ...string) error {
	m, source, err := New(dbURL, dirCandidates...)
	if err != nil {
		return err
	}
	defer Close(m, logger)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migration changes", "source", source)
			return nil
		}
		return crerr.Wrap(err, "apply migrations")
	}

	logger.Info("migrations applied", "source", source)
	return nil
}

func Close(m *migrate.Migrate, logger *logging.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db", "error", dbErr)
	}
}

// DefaultDirs lists the on-disk locations checked before falling back to
// the embedded files.
func DefaultDirs() []string {
	return []string{
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		strings.TrimSpace(os.Getenv("MIGRATIONS_PATH")),
		"./db/migrations",
		"/app/db/migrations",
	}
}

func resolveDir(candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, true
	}
	return "", false
}
