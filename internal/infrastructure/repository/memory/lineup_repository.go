package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/matchday/internal/domain/lineup"
)

type LineupRepository struct {
	mu    sync.RWMutex
	items map[string]lineup.Lineup
}

func NewLineupRepository() *LineupRepository {
	return &LineupRepository{items: make(map[string]lineup.Lineup)}
}

func (r *LineupRepository) Get(_ context.Context, matchID, teamID string) (lineup.Lineup, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[lineupKey(matchID, teamID)]
	if !ok {
		return lineup.Lineup{}, false, nil
	}

	return item.Clone(), true, nil
}

func (r *LineupRepository) Upsert(_ context.Context, item lineup.Lineup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[lineupKey(item.MatchID, item.TeamID)] = item.Clone()
	return nil
}

// DeleteByMatch drops every lineup of a match, mirroring the cascade on
// the matches table.
func (r *LineupRepository) DeleteByMatch(_ context.Context, matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, item := range r.items {
		if item.MatchID == matchID {
			delete(r.items, key)
		}
	}
}

func lineupKey(matchID, teamID string) string {
	return matchID + "::" + teamID
}
