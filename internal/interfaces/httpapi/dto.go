package httpapi

import (
	"time"

	"github.com/riskibarqy/matchday/internal/domain/lineup"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/realtime"
	"github.com/riskibarqy/matchday/internal/usecase"
)

type createMatchRequest struct {
	HomeTeamID string `json:"home_team_id" validate:"required,max=64"`
	AwayTeamID string `json:"away_team_id" validate:"required,max=64,nefield=HomeTeamID"`
}

type startFirstHalfRequest struct {
	HalfDurationMinutes int `json:"half_duration_minutes" validate:"required,min=20,max=60"`
}

type appendGoalRequest struct {
	TeamID           string `json:"team_id" validate:"required"`
	PlayerRef        string `json:"player_ref" validate:"required_without=PlayerName,excluded_with=PlayerName"`
	PlayerName       string `json:"player_name" validate:"omitempty,max=120"`
	Minute           *int   `json:"minute" validate:"omitempty,min=1,max=150"`
	ExtraTimeMinutes *int   `json:"extra_time_minutes" validate:"omitempty,min=0,max=30"`
	Caption          string `json:"caption" validate:"omitempty,max=280"`
}

type appendMessageRequest struct {
	Body string `json:"body" validate:"required,max=1000"`
}

type setLineupRequest struct {
	FormationName string                  `json:"formation_name" validate:"required"`
	Positions     []lineupPositionRequest `json:"positions" validate:"max=11,dive"`
}

type lineupPositionRequest struct {
	PositionCode string `json:"position_code" validate:"required"`
	PlayerRef    string `json:"player_ref" validate:"required_without=DisplayName"`
	DisplayName  string `json:"display_name" validate:"omitempty,max=120"`
}

type clockDTO struct {
	Period      string `json:"period"`
	Minute      int    `json:"minute"`
	AddedMinute int    `json:"added_minute,omitempty"`
	Display     string `json:"display"`
}

type matchDTO struct {
	ID                  string     `json:"id"`
	HomeTeamID          string     `json:"home_team_id"`
	AwayTeamID          string     `json:"away_team_id"`
	HomeScore           int        `json:"home_score"`
	AwayScore           int        `json:"away_score"`
	Status              string     `json:"status"`
	HalfDurationMinutes int        `json:"half_duration_minutes,omitempty"`
	KickoffAt           *time.Time `json:"kickoff_at,omitempty"`
	HalftimeStartedAt   *time.Time `json:"halftime_started_at,omitempty"`
	SecondHalfStartedAt *time.Time `json:"second_half_started_at,omitempty"`
	EndedAt             *time.Time `json:"ended_at,omitempty"`
	Version             int64      `json:"version"`
	Clock               *clockDTO  `json:"clock,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type eventDTO struct {
	ID                string     `json:"id"`
	MatchID           string     `json:"match_id"`
	Type              string     `json:"type"`
	TeamID            string     `json:"team_id,omitempty"`
	PlayerRef         string     `json:"player_ref,omitempty"`
	PlayerDisplayName string     `json:"player_display_name,omitempty"`
	Minute            *int       `json:"minute,omitempty"`
	ExtraTimeMinutes  *int       `json:"extra_time_minutes,omitempty"`
	Body              string     `json:"body,omitempty"`
	CreatedBy         string     `json:"created_by"`
	CreatedByName     string     `json:"created_by_name,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	IsDeleted         bool       `json:"is_deleted"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

type eventResultDTO struct {
	Event eventDTO  `json:"event"`
	Match *matchDTO `json:"match,omitempty"`
}

type eventPageDTO struct {
	Items      []eventDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type formationDTO struct {
	Name      string   `json:"name"`
	Positions []string `json:"positions"`
}

type lineupPositionDTO struct {
	PositionCode  string `json:"position_code"`
	PlayerRef     string `json:"player_ref,omitempty"`
	DisplayName   string `json:"display_name"`
	PlayerMissing bool   `json:"player_missing,omitempty"`
}

type lineupDTO struct {
	MatchID       string              `json:"match_id"`
	TeamID        string              `json:"team_id"`
	IsSet         bool                `json:"is_set"`
	FormationName string              `json:"formation_name,omitempty"`
	Positions     []lineupPositionDTO `json:"positions"`
	UpdatedBy     string              `json:"updated_by,omitempty"`
	UpdatedAt     *time.Time          `json:"updated_at,omitempty"`
	Version       int64               `json:"version,omitempty"`
}

type snapshotDTO struct {
	Match      matchDTO   `json:"match"`
	Events     []eventDTO `json:"events"`
	HomeLineup lineupDTO  `json:"home_lineup"`
	AwayLineup lineupDTO  `json:"away_lineup"`
	TakenAt    time.Time  `json:"taken_at"`
}

type reconcileScoresRequest struct {
	MatchID string `json:"match_id" validate:"required"`
}

type reconcileResultDTO struct {
	MatchCount   int      `json:"match_count"`
	UpdatedCount int      `json:"updated_count"`
	FailedCount  int      `json:"failed_count"`
	UpdatedIDs   []string `json:"updated_ids"`
}

// streamFrame is one websocket message. Type is "snapshot" for the initial
// frame and "notification" afterwards.
type streamFrame struct {
	Type         string           `json:"type"`
	Snapshot     *snapshotDTO     `json:"snapshot,omitempty"`
	Notification *notificationDTO `json:"notification,omitempty"`
}

type notificationDTO struct {
	MatchID    string    `json:"match_id"`
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	EntityID   string    `json:"entity_id"`
	Version    int64     `json:"version"`
	Sequence   uint64    `json:"sequence"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

func matchToDTO(m match.Match, clock *match.ClockReading) matchDTO {
	out := matchDTO{
		ID:                  m.ID,
		HomeTeamID:          m.HomeTeamID,
		AwayTeamID:          m.AwayTeamID,
		HomeScore:           m.HomeScore,
		AwayScore:           m.AwayScore,
		Status:              string(m.Status),
		HalfDurationMinutes: m.HalfDurationMinutes,
		KickoffAt:           m.KickoffAt,
		HalftimeStartedAt:   m.HalftimeStartedAt,
		SecondHalfStartedAt: m.SecondHalfStartedAt,
		EndedAt:             m.EndedAt,
		Version:             m.Version,
		UpdatedAt:           m.UpdatedAt,
	}
	if clock != nil {
		out.Clock = &clockDTO{
			Period:      string(clock.Period),
			Minute:      clock.Minute,
			AddedMinute: clock.AddedMinute,
			Display:     clock.Display,
		}
	}
	return out
}

func eventToDTO(e matchevent.Event) eventDTO {
	return eventDTO{
		ID:                e.ID,
		MatchID:           e.MatchID,
		Type:              string(e.Type),
		TeamID:            e.TeamID,
		PlayerRef:         e.PlayerRef,
		PlayerDisplayName: e.PlayerDisplayName,
		Minute:            e.Minute,
		ExtraTimeMinutes:  e.ExtraTimeMinutes,
		Body:              e.Body,
		CreatedBy:         e.CreatedBy,
		CreatedByName:     e.CreatedByName,
		CreatedAt:         e.CreatedAt,
		IsDeleted:         e.IsDeleted,
		DeletedAt:         e.DeletedAt,
	}
}

func eventsToDTO(items []matchevent.Event) []eventDTO {
	out := make([]eventDTO, 0, len(items))
	for _, e := range items {
		out = append(out, eventToDTO(e))
	}
	return out
}

func eventResultToDTO(res usecase.EventResult) eventResultDTO {
	out := eventResultDTO{Event: eventToDTO(res.Event)}
	if res.Match != nil {
		m := matchToDTO(*res.Match, nil)
		out.Match = &m
	}
	return out
}

func formationToDTO(f lineup.Formation) formationDTO {
	return formationDTO{
		Name:      f.Name,
		Positions: append([]string(nil), f.Positions...),
	}
}

func lineupToDTO(v usecase.LineupView) lineupDTO {
	out := lineupDTO{
		MatchID:       v.MatchID,
		TeamID:        v.TeamID,
		IsSet:         v.IsSet,
		FormationName: v.FormationName,
		Positions:     make([]lineupPositionDTO, 0, len(v.Positions)),
		UpdatedBy:     v.UpdatedBy,
		Version:       v.Version,
	}
	if !v.UpdatedAt.IsZero() {
		updatedAt := v.UpdatedAt
		out.UpdatedAt = &updatedAt
	}
	for _, p := range v.Positions {
		out.Positions = append(out.Positions, lineupPositionDTO{
			PositionCode:  p.PositionCode,
			PlayerRef:     p.PlayerRef,
			DisplayName:   p.DisplayName,
			PlayerMissing: p.PlayerMissing,
		})
	}
	return out
}

func snapshotToDTO(s usecase.Snapshot) snapshotDTO {
	clock := s.Clock
	return snapshotDTO{
		Match:      matchToDTO(s.Match, &clock),
		Events:     eventsToDTO(s.Events),
		HomeLineup: lineupToDTO(s.HomeLineup),
		AwayLineup: lineupToDTO(s.AwayLineup),
		TakenAt:    s.TakenAt,
	}
}

func assignmentsFromRequest(items []lineupPositionRequest) []lineup.Assignment {
	out := make([]lineup.Assignment, 0, len(items))
	for _, p := range items {
		out = append(out, lineup.Assignment{
			PositionCode: p.PositionCode,
			PlayerRef:    p.PlayerRef,
			DisplayName:  p.DisplayName,
		})
	}
	return out
}

// notificationToDTO converts the domain payload carried by a notification
// into its wire shape. Unknown payloads are dropped; clients re-read state
// by entity id anyway.
func notificationToDTO(n realtime.Notification) notificationDTO {
	out := notificationDTO{
		MatchID:    n.MatchID,
		Entity:     string(n.Entity),
		Action:     string(n.Action),
		EntityID:   n.EntityID,
		Version:    n.Version,
		Sequence:   n.Sequence,
		OccurredAt: n.OccurredAt,
	}
	switch data := n.Data.(type) {
	case match.Match:
		out.Data = matchToDTO(data, nil)
	case *match.Match:
		if data != nil {
			out.Data = matchToDTO(*data, nil)
		}
	case matchevent.Event:
		out.Data = eventToDTO(data)
	case usecase.LineupView:
		out.Data = lineupToDTO(data)
	}
	return out
}
