package player

import "fmt"

// Position represents football position categories on a roster.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// Player is a roster entry that events and lineups may reference.
type Player struct {
	ID          string
	TeamID      string
	Name        string
	ShirtNumber int
	Position    Position
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	if p.ShirtNumber < 0 || p.ShirtNumber > 99 {
		return fmt.Errorf("player shirt number must be between 0 and 99")
	}

	return nil
}
