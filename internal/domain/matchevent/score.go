package matchevent

// Score is the derived scoreline of a match.
type Score struct {
	Home int
	Away int
}

// Tally counts non-deleted goals per side. Goals credited to any other team
// are ignored. Message expiry plays no part here: goals never expire.
func Tally(events []Event, homeTeamID, awayTeamID string) Score {
	var score Score
	for _, e := range events {
		if !e.CountsTowardScore() {
			continue
		}
		switch e.TeamID {
		case homeTeamID:
			score.Home++
		case awayTeamID:
			score.Away++
		}
	}
	return score
}

// FromGoalCounts builds a Score from per-team goal counts.
func FromGoalCounts(counts map[string]int, homeTeamID, awayTeamID string) Score {
	return Score{Home: counts[homeTeamID], Away: counts[awayTeamID]}
}
