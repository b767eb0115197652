package lineup

import "time"

// Assignment places one player in one formation slot.
type Assignment struct {
	PositionCode string
	PlayerRef    string
	// DisplayName overrides roster lookup when set.
	DisplayName string
}

// Lineup stores one team's formation and slot assignments for a match.
type Lineup struct {
	ID            string
	MatchID       string
	TeamID        string
	FormationName string
	Positions     []Assignment
	UpdatedBy     string
	UpdatedAt     time.Time
	// Version starts at 1 and grows by one per replacement.
	Version int64
}

func (l Lineup) Clone() Lineup {
	out := l
	out.Positions = append([]Assignment(nil), l.Positions...)
	return out
}
