package realtime

import (
	"context"
	"time"
)

// Entity names the kind of state a notification refers to. Ordering is only
// guaranteed among notifications of the same entity for the same match.
type Entity string

const (
	EntityMatch  Entity = "match"
	EntityEvent  Entity = "event"
	EntityLineup Entity = "lineup"
)

type Action string

const (
	ActionClockChanged Action = "clock_changed"
	ActionScoreChanged Action = "score_changed"
	ActionAppended     Action = "appended"
	ActionDeleted      Action = "deleted"
	ActionLineupSet    Action = "lineup_set"
)

// Notification tells observers that committed state changed. Observers treat
// it as a hint and re-read authoritative state keyed by Version.
type Notification struct {
	MatchID    string    `json:"match_id"`
	Entity     Entity    `json:"entity"`
	Action     Action    `json:"action"`
	EntityID   string    `json:"entity_id"`
	Version    int64     `json:"version"`
	Sequence   uint64    `json:"sequence"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// Publisher fans notifications out to a match's observers. Publish never
// blocks on slow observers.
type Publisher interface {
	Publish(ctx context.Context, n Notification)
}
