package matchevent

import (
	"strings"
	"time"
)

// Type classifies an entry in a match's activity stream.
type Type string

const (
	TypeGoal         Type = "GOAL"
	TypeMessage      Type = "MESSAGE"
	TypeStatusChange Type = "STATUS_CHANGE"
)

// Event is an append-only activity record. Only the moderation fields
// (IsDeleted, DeletedBy, DeletedAt) change after creation.
type Event struct {
	ID                string
	MatchID           string
	Type              Type
	TeamID            string
	PlayerRef         string
	PlayerDisplayName string
	Minute            *int
	ExtraTimeMinutes  *int
	Body              string
	CreatedBy         string
	CreatedByName     string
	CreatedAt         time.Time
	IsDeleted         bool
	DeletedBy         string
	DeletedAt         *time.Time
	ExpiresAt         *time.Time
}

func (t Type) Valid() bool {
	switch t {
	case TypeGoal, TypeMessage, TypeStatusChange:
		return true
	default:
		return false
	}
}

// Expired reports whether a retained message has passed its expiry at now.
func (e Event) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}

// Visible reports whether readers should see the event at now.
func (e Event) Visible(now time.Time) bool {
	return !e.IsDeleted && !e.Expired(now)
}

// CountsTowardScore reports whether the event is a live goal.
func (e Event) CountsTowardScore() bool {
	return e.Type == TypeGoal && !e.IsDeleted && strings.TrimSpace(e.TeamID) != ""
}

// Before reports whether e sorts before other in the stream's (created_at, id) order.
func (e Event) Before(other Event) bool {
	if !e.CreatedAt.Equal(other.CreatedAt) {
		return e.CreatedAt.Before(other.CreatedAt)
	}
	return e.ID < other.ID
}

func (e Event) Clone() Event {
	out := e
	out.Minute = cloneInt(e.Minute)
	out.ExtraTimeMinutes = cloneInt(e.ExtraTimeMinutes)
	out.DeletedAt = cloneTime(e.DeletedAt)
	out.ExpiresAt = cloneTime(e.ExpiresAt)
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
