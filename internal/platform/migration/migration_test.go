package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/riskibarqy/matchday/db"
)

func TestResolveDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir.sql")
	if err := os.WriteFile(file, []byte("SELECT 1;"), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	got, ok := resolveDir([]string{"", filepath.Join(dir, "missing"), file, dir})
	if !ok || got != dir {
		t.Fatalf("expected %s, got %q (ok=%v)", dir, got, ok)
	}

	if _, ok := resolveDir([]string{"", filepath.Join(dir, "missing")}); ok {
		t.Fatalf("expected no directory")
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(db.Migrations, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	if len(ups) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	for name := range ups {
		if !downs[name] {
			t.Fatalf("migration %s has no down file", name)
		}
	}
}
