package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/riskibarqy/matchday/internal/domain/lineup"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get match: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("pq: relation matches does not exist")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches 23505", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}) {
			t.Fatalf("expected false for foreign key violation")
		}
	})
}

func TestNullHelpers(t *testing.T) {
	if v := nullString("  "); v.Valid {
		t.Fatalf("expected blank string to be null")
	}
	if v := nullString(" idn-persija "); !v.Valid || v.String != "idn-persija" {
		t.Fatalf("unexpected null string: %+v", v)
	}

	minute := 45
	round := intFromNull(nullInt(&minute))
	if round == nil || *round != 45 {
		t.Fatalf("unexpected round trip: %v", round)
	}
	if intFromNull(nullInt(nil)) != nil {
		t.Fatalf("expected nil for null int")
	}
}

func TestSelectColumns(t *testing.T) {
	got := selectColumns(matchTableModel{})
	if got == "" || got[:len("id, public_id")] != "id, public_id" {
		t.Fatalf("unexpected select columns: %s", got)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func TestLineupRowRoundTripKeepsSlotOrder(t *testing.T) {
	item := lineupInsertFromDomain(lineupFixture())
	row := lineupTableModel{
		PublicID:      item.PublicID,
		MatchID:       item.MatchID,
		TeamID:        item.TeamID,
		FormationName: item.FormationName,
		PositionCodes: item.PositionCodes,
		PlayerRefs:    item.PlayerRefs,
		DisplayNames:  item.DisplayNames[:1],
	}

	got := lineupFromRow(row)
	if len(got.Positions) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(got.Positions))
	}
	if got.Positions[0].PositionCode != "GK" || got.Positions[1].PlayerRef != "p-2" {
		t.Fatalf("unexpected slots: %+v", got.Positions)
	}
	if got.Positions[1].DisplayName != "" {
		t.Fatalf("expected short display array to pad with blanks")
	}
}

func lineupFixture() lineup.Lineup {
	return lineup.Lineup{
		ID:            "lu-1",
		MatchID:       "m-1",
		TeamID:        "idn-persija",
		FormationName: "4-4-2",
		Positions: []lineup.Assignment{
			{PositionCode: "GK", PlayerRef: "p-1", DisplayName: "Andritany"},
			{PositionCode: "LB", PlayerRef: "p-2"},
		},
	}
}
