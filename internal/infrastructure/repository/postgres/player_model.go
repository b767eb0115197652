package postgres

import (
	"time"

	"github.com/riskibarqy/matchday/internal/domain/player"
)

type playerTableModel struct {
	ID          int64      `db:"id"`
	PublicID    string     `db:"public_id"`
	TeamID      string     `db:"team_public_id"`
	Name        string     `db:"name"`
	ShirtNumber int        `db:"shirt_number"`
	Position    string     `db:"position"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:          row.PublicID,
		TeamID:      row.TeamID,
		Name:        row.Name,
		ShirtNumber: row.ShirtNumber,
		Position:    player.Position(row.Position),
	}
}
