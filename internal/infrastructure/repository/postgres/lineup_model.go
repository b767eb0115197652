package postgres

import (
	"time"

	"github.com/lib/pq"
	"github.com/riskibarqy/matchday/internal/domain/lineup"
)

// Slots are stored as three parallel arrays indexed by assignment order.
type lineupTableModel struct {
	ID            int64          `db:"id"`
	PublicID      string         `db:"public_id"`
	MatchID       string         `db:"match_public_id"`
	TeamID        string         `db:"team_public_id"`
	FormationName string         `db:"formation_name"`
	PositionCodes pq.StringArray `db:"position_codes"`
	PlayerRefs    pq.StringArray `db:"player_refs"`
	DisplayNames  pq.StringArray `db:"display_names"`
	UpdatedBy     string         `db:"updated_by"`
	Version       int64          `db:"version"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type lineupInsertModel struct {
	PublicID      string         `db:"public_id"`
	MatchID       string         `db:"match_public_id"`
	TeamID        string         `db:"team_public_id"`
	FormationName string         `db:"formation_name"`
	PositionCodes pq.StringArray `db:"position_codes"`
	PlayerRefs    pq.StringArray `db:"player_refs"`
	DisplayNames  pq.StringArray `db:"display_names"`
	UpdatedBy     string         `db:"updated_by"`
	UpdatedAt     time.Time      `db:"updated_at"`
	Version       int64          `db:"version"`
}

func lineupFromRow(row lineupTableModel) lineup.Lineup {
	positions := make([]lineup.Assignment, 0, len(row.PositionCodes))
	for i, code := range row.PositionCodes {
		positions = append(positions, lineup.Assignment{
			PositionCode: code,
			PlayerRef:    valueAt(row.PlayerRefs, i),
			DisplayName:  valueAt(row.DisplayNames, i),
		})
	}

	return lineup.Lineup{
		ID:            row.PublicID,
		MatchID:       row.MatchID,
		TeamID:        row.TeamID,
		FormationName: row.FormationName,
		Positions:     positions,
		UpdatedBy:     row.UpdatedBy,
		UpdatedAt:     row.UpdatedAt.UTC(),
		Version:       row.Version,
	}
}

func lineupInsertFromDomain(item lineup.Lineup) lineupInsertModel {
	codes := make(pq.StringArray, 0, len(item.Positions))
	refs := make(pq.StringArray, 0, len(item.Positions))
	names := make(pq.StringArray, 0, len(item.Positions))
	for _, slot := range item.Positions {
		codes = append(codes, slot.PositionCode)
		refs = append(refs, slot.PlayerRef)
		names = append(names, slot.DisplayName)
	}

	return lineupInsertModel{
		PublicID:      item.ID,
		MatchID:       item.MatchID,
		TeamID:        item.TeamID,
		FormationName: item.FormationName,
		PositionCodes: codes,
		PlayerRefs:    refs,
		DisplayNames:  names,
		UpdatedBy:     item.UpdatedBy,
		UpdatedAt:     item.UpdatedAt,
		Version:       item.Version,
	}
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
