package matchevent

import (
	"context"
	"time"
)

// ListQuery selects one page of a match's visible activity stream, newest first.
type ListQuery struct {
	MatchID string
	// Cursor, when set, restricts the page to events strictly older than it.
	Cursor *Event
	Limit  int
	Now    time.Time
}

// Repository exposes event persistence operations.
type Repository interface {
	Append(ctx context.Context, item Event) error
	GetByID(ctx context.Context, eventID string) (Event, bool, error)
	// UpdateAtomic runs mutate against the locked stored event. When mutate
	// returns changed=false nothing is written and the stored event is returned.
	UpdateAtomic(ctx context.Context, eventID string, mutate func(current Event) (next Event, changed bool, err error)) (Event, error)
	ListRecent(ctx context.Context, query ListQuery) ([]Event, error)
	// CountGoals returns non-deleted goal counts keyed by team id.
	CountGoals(ctx context.Context, matchID string) (map[string]int, error)
}
