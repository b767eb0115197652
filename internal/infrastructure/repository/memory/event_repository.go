package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/matchday/internal/domain/matchevent"
)

type EventRepository struct {
	mu      sync.RWMutex
	items   map[string]matchevent.Event
	byMatch map[string][]string
}

func NewEventRepository() *EventRepository {
	return &EventRepository{
		items:   make(map[string]matchevent.Event),
		byMatch: make(map[string][]string),
	}
}

func (r *EventRepository) Append(_ context.Context, item matchevent.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return fmt.Errorf("event %s already exists", item.ID)
	}
	r.items[item.ID] = item.Clone()
	r.byMatch[item.MatchID] = append(r.byMatch[item.MatchID], item.ID)
	return nil
}

func (r *EventRepository) GetByID(_ context.Context, eventID string) (matchevent.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[eventID]
	if !ok {
		return matchevent.Event{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *EventRepository) UpdateAtomic(
	_ context.Context,
	eventID string,
	mutate func(current matchevent.Event) (matchevent.Event, bool, error),
) (matchevent.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[eventID]
	if !ok {
		return matchevent.Event{}, fmt.Errorf("event %s not found", eventID)
	}

	next, changed, err := mutate(current.Clone())
	if err != nil {
		return matchevent.Event{}, err
	}
	if !changed {
		return current.Clone(), nil
	}

	// Identity and creation fields are immutable.
	next.ID = current.ID
	next.MatchID = current.MatchID
	next.Type = current.Type
	next.CreatedAt = current.CreatedAt
	next.CreatedBy = current.CreatedBy
	r.items[eventID] = next.Clone()
	return next.Clone(), nil
}

func (r *EventRepository) ListRecent(_ context.Context, query matchevent.ListQuery) ([]matchevent.Event, error) {
	r.mu.RLock()
	ids := r.byMatch[query.MatchID]
	out := make([]matchevent.Event, 0, len(ids))
	for _, id := range ids {
		item := r.items[id]
		if !item.Visible(query.Now) {
			continue
		}
		if query.Cursor != nil && !item.Before(*query.Cursor) {
			continue
		}
		out = append(out, item.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[j].Before(out[i]) })
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (r *EventRepository) CountGoals(_ context.Context, matchID string) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int, 2)
	for _, id := range r.byMatch[matchID] {
		item := r.items[id]
		if item.CountsTowardScore() {
			counts[item.TeamID]++
		}
	}
	return counts, nil
}

// CountAll reports every stored event of a match, deleted and expired
// rows included.
func (r *EventRepository) CountAll(_ context.Context, matchID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byMatch[matchID])
}
