package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/match"
)

type matchTableModel struct {
	ID                  int64         `db:"id"`
	PublicID            string        `db:"public_id"`
	HomeTeamID          string        `db:"home_team_public_id"`
	AwayTeamID          string        `db:"away_team_public_id"`
	HomeScore           int           `db:"home_score"`
	AwayScore           int           `db:"away_score"`
	Status              string        `db:"status"`
	HalfDurationMinutes sql.NullInt64 `db:"half_duration_minutes"`
	KickoffAt           *time.Time    `db:"kickoff_at"`
	HalftimeStartedAt   *time.Time    `db:"halftime_started_at"`
	SecondHalfStartedAt *time.Time    `db:"second_half_started_at"`
	EndedAt             *time.Time    `db:"ended_at"`
	Version             int64         `db:"version"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}

type matchInsertModel struct {
	PublicID   string    `db:"public_id"`
	HomeTeamID string    `db:"home_team_public_id"`
	AwayTeamID string    `db:"away_team_public_id"`
	HomeScore  int       `db:"home_score"`
	AwayScore  int       `db:"away_score"`
	Status     string    `db:"status"`
	Version    int64     `db:"version"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func matchFromRow(row matchTableModel) match.Match {
	out := match.Match{
		ID:                  row.PublicID,
		HomeTeamID:          row.HomeTeamID,
		AwayTeamID:          row.AwayTeamID,
		HomeScore:           row.HomeScore,
		AwayScore:           row.AwayScore,
		Status:              match.Status(row.Status),
		KickoffAt:           utcPtr(row.KickoffAt),
		HalftimeStartedAt:   utcPtr(row.HalftimeStartedAt),
		SecondHalfStartedAt: utcPtr(row.SecondHalfStartedAt),
		EndedAt:             utcPtr(row.EndedAt),
		Version:             row.Version,
		CreatedAt:           row.CreatedAt.UTC(),
		UpdatedAt:           row.UpdatedAt.UTC(),
	}
	if row.HalfDurationMinutes.Valid {
		out.HalfDurationMinutes = int(row.HalfDurationMinutes.Int64)
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
