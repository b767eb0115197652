package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the position of a match in its clock state machine.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusFirstHalf  Status = "FIRST_HALF"
	StatusHalftime   Status = "HALFTIME"
	StatusSecondHalf Status = "SECOND_HALF"
	StatusFullTime   Status = "FULL_TIME"
)

const (
	MinHalfDurationMinutes = 20
	MaxHalfDurationMinutes = 60
)

var (
	ErrInvalidTransition   = errors.New("invalid match transition")
	ErrInvalidHalfDuration = errors.New("invalid half duration")
	// ErrVersionConflict is returned by repositories when a compare-and-swap update
	// finds a different stored version than the caller read.
	ErrVersionConflict = errors.New("match version conflict")
)

// Match is one live session between two teams.
type Match struct {
	ID                  string
	HomeTeamID          string
	AwayTeamID          string
	HomeScore           int
	AwayScore           int
	Status              Status
	HalfDurationMinutes int
	KickoffAt           *time.Time
	HalftimeStartedAt   *time.Time
	SecondHalfStartedAt *time.Time
	EndedAt             *time.Time
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (m Match) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("match id is required")
	}
	if strings.TrimSpace(m.HomeTeamID) == "" || strings.TrimSpace(m.AwayTeamID) == "" {
		return fmt.Errorf("match teams are required")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("home and away team must be different")
	}
	if !m.Status.Valid() {
		return fmt.Errorf("invalid match status: %s", m.Status)
	}

	return nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusFirstHalf, StatusHalftime, StatusSecondHalf, StatusFullTime:
		return true
	default:
		return false
	}
}

// InPlay reports whether the ball is rolling.
func (s Status) InPlay() bool {
	return s == StatusFirstHalf || s == StatusSecondHalf
}

// HasTeam reports whether teamID is one of the two sides.
func (m Match) HasTeam(teamID string) bool {
	return teamID != "" && (teamID == m.HomeTeamID || teamID == m.AwayTeamID)
}

// Clone returns a copy that shares no timestamp pointers with m.
func (m Match) Clone() Match {
	out := m
	out.KickoffAt = cloneTime(m.KickoffAt)
	out.HalftimeStartedAt = cloneTime(m.HalftimeStartedAt)
	out.SecondHalfStartedAt = cloneTime(m.SecondHalfStartedAt)
	out.EndedAt = cloneTime(m.EndedAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
