package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/matchday/internal/domain/match"
)

type MatchRepository struct {
	mu    sync.RWMutex
	items map[string]match.Match
}

func NewMatchRepository(seed ...match.Match) *MatchRepository {
	items := make(map[string]match.Match, len(seed))
	for _, item := range seed {
		items[item.ID] = item.Clone()
	}
	return &MatchRepository{items: items}
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return match.Match{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *MatchRepository) Create(_ context.Context, item match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("match %s already exists", item.ID)
	}
	if item.Version < 1 {
		item.Version = 1
	}
	r.items[item.ID] = item.Clone()
	return nil
}

func (r *MatchRepository) UpdateAtomic(_ context.Context, item match.Match, expectedVersion int64) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[item.ID]
	if !ok {
		return match.Match{}, fmt.Errorf("match %s not found", item.ID)
	}
	if current.Version != expectedVersion {
		return match.Match{}, fmt.Errorf("%w: match=%s expected=%d stored=%d",
			match.ErrVersionConflict, item.ID, expectedVersion, current.Version)
	}

	next := item.Clone()
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version + 1
	r.items[item.ID] = next
	return next.Clone(), nil
}

func (r *MatchRepository) ListByStatus(_ context.Context, statuses ...match.Status) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	want := make(map[match.Status]struct{}, len(statuses))
	for _, s := range statuses {
		want[s] = struct{}{}
	}

	out := make([]match.Match, 0)
	for _, item := range r.items {
		if _, ok := want[item.Status]; len(want) > 0 && !ok {
			continue
		}
		out = append(out, item.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
