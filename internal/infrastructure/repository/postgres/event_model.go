package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/matchevent"
)

type eventTableModel struct {
	ID                int64          `db:"id"`
	PublicID          string         `db:"public_id"`
	MatchID           string         `db:"match_public_id"`
	EventType         string         `db:"event_type"`
	TeamID            sql.NullString `db:"team_public_id"`
	PlayerRef         sql.NullString `db:"player_public_id"`
	PlayerDisplayName string         `db:"player_display_name"`
	Minute            sql.NullInt64  `db:"match_minute"`
	ExtraTimeMinutes  sql.NullInt64  `db:"extra_time_minutes"`
	Body              string         `db:"body"`
	CreatedBy         string         `db:"created_by"`
	CreatedByName     string         `db:"created_by_name"`
	CreatedAt         time.Time      `db:"created_at"`
	IsDeleted         bool           `db:"is_deleted"`
	DeletedBy         sql.NullString `db:"deleted_by"`
	DeletedAt         *time.Time     `db:"deleted_at"`
	ExpiresAt         *time.Time     `db:"expires_at"`
}

type eventInsertModel struct {
	PublicID          string         `db:"public_id"`
	MatchID           string         `db:"match_public_id"`
	EventType         string         `db:"event_type"`
	TeamID            sql.NullString `db:"team_public_id"`
	PlayerRef         sql.NullString `db:"player_public_id"`
	PlayerDisplayName string         `db:"player_display_name"`
	Minute            sql.NullInt64  `db:"match_minute"`
	ExtraTimeMinutes  sql.NullInt64  `db:"extra_time_minutes"`
	Body              string         `db:"body"`
	CreatedBy         string         `db:"created_by"`
	CreatedByName     string         `db:"created_by_name"`
	CreatedAt         time.Time      `db:"created_at"`
	ExpiresAt         *time.Time     `db:"expires_at"`
}

type goalCountRow struct {
	TeamID string `db:"team_public_id"`
	Goals  int    `db:"goals"`
}

func eventFromRow(row eventTableModel) matchevent.Event {
	return matchevent.Event{
		ID:                row.PublicID,
		MatchID:           row.MatchID,
		Type:              matchevent.Type(row.EventType),
		TeamID:            row.TeamID.String,
		PlayerRef:         row.PlayerRef.String,
		PlayerDisplayName: row.PlayerDisplayName,
		Minute:            intFromNull(row.Minute),
		ExtraTimeMinutes:  intFromNull(row.ExtraTimeMinutes),
		Body:              row.Body,
		CreatedBy:         row.CreatedBy,
		CreatedByName:     row.CreatedByName,
		CreatedAt:         row.CreatedAt.UTC(),
		IsDeleted:         row.IsDeleted,
		DeletedBy:         row.DeletedBy.String,
		DeletedAt:         utcPtr(row.DeletedAt),
		ExpiresAt:         utcPtr(row.ExpiresAt),
	}
}

func eventInsertFromDomain(item matchevent.Event) eventInsertModel {
	return eventInsertModel{
		PublicID:          item.ID,
		MatchID:           item.MatchID,
		EventType:         string(item.Type),
		TeamID:            nullString(item.TeamID),
		PlayerRef:         nullString(item.PlayerRef),
		PlayerDisplayName: item.PlayerDisplayName,
		Minute:            nullInt(item.Minute),
		ExtraTimeMinutes:  nullInt(item.ExtraTimeMinutes),
		Body:              item.Body,
		CreatedBy:         item.CreatedBy,
		CreatedByName:     item.CreatedByName,
		CreatedAt:         item.CreatedAt,
		ExpiresAt:         item.ExpiresAt,
	}
}
