package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/matchday/internal/domain/match"
)

func TestMatchRepository_UpdateAtomicVersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := NewMatchRepository(SeedMatches()...)

	current, ok, err := repo.GetByID(ctx, SeedMatchID)
	if err != nil || !ok {
		t.Fatalf("get seeded match: ok=%v err=%v", ok, err)
	}

	next := current
	next.HomeScore = 1
	stored, err := repo.UpdateAtomic(ctx, next, current.Version)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if stored.Version != current.Version+1 {
		t.Fatalf("expected version bump, got %d", stored.Version)
	}

	next.AwayScore = 1
	if _, err := repo.UpdateAtomic(ctx, next, current.Version); !errors.Is(err, match.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	live, err := repo.ListByStatus(ctx, match.StatusFirstHalf)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(live) != 0 {
		t.Fatalf("expected no live matches, got %d", len(live))
	}
}
