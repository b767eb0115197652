package matchevent

import (
	"testing"
	"time"
)

func TestTally(t *testing.T) {
	now := time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)

	events := []Event{
		{ID: "1", Type: TypeGoal, TeamID: "home"},
		{ID: "2", Type: TypeGoal, TeamID: "home"},
		{ID: "3", Type: TypeGoal, TeamID: "away"},
		{ID: "4", Type: TypeGoal, TeamID: "home", IsDeleted: true},
		{ID: "5", Type: TypeMessage, TeamID: "home", ExpiresAt: &expired},
		{ID: "6", Type: TypeStatusChange, Body: "Kick-off"},
		{ID: "7", Type: TypeGoal, TeamID: "someone-else"},
	}

	got := Tally(events, "home", "away")
	if got.Home != 2 || got.Away != 1 {
		t.Fatalf("unexpected score: %+v", got)
	}
}

func TestEventVisible(t *testing.T) {
	now := time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	tests := []struct {
		name  string
		event Event
		want  bool
	}{
		{name: "plain goal", event: Event{Type: TypeGoal}, want: true},
		{name: "deleted goal", event: Event{Type: TypeGoal, IsDeleted: true}, want: false},
		{name: "fresh message", event: Event{Type: TypeMessage, ExpiresAt: &future}, want: true},
		{name: "expired message", event: Event{Type: TypeMessage, ExpiresAt: &past}, want: false},
		{name: "message expiring exactly now", event: Event{Type: TypeMessage, ExpiresAt: &now}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.event.Visible(now); got != tc.want {
				t.Fatalf("expected visible=%t, got %t", tc.want, got)
			}
		})
	}
}

func TestEventBefore_TieBreaksOnID(t *testing.T) {
	at := time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC)
	a := Event{ID: "a", CreatedAt: at}
	b := Event{ID: "b", CreatedAt: at}

	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected id tie-break a < b")
	}
	if a.Before(a) {
		t.Fatalf("event must not sort before itself")
	}
}
