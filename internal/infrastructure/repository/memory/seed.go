package memory

import (
	"time"

	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/team"
)

const SeedMatchID = "match-idn-001"

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: "idn-persija", Name: "Persija Jakarta", Short: "PSJ"},
		{ID: "idn-persib", Name: "Persib Bandung", Short: "PSB"},
		{ID: "idn-persebaya", Name: "Persebaya Surabaya", Short: "PRB"},
		{ID: "idn-baliutd", Name: "Bali United", Short: "BU"},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "idn-gk-01", TeamID: "idn-persija", Name: "Andritany Ardhiyasa", ShirtNumber: 26, Position: player.PositionGoalkeeper},
		{ID: "idn-def-01", TeamID: "idn-persija", Name: "Hansamu Yama", ShirtNumber: 23, Position: player.PositionDefender},
		{ID: "idn-mid-01", TeamID: "idn-persija", Name: "Maciej Gajos", ShirtNumber: 10, Position: player.PositionMidfielder},
		{ID: "idn-fwd-01", TeamID: "idn-persija", Name: "Gustavo Almeida", ShirtNumber: 9, Position: player.PositionForward},
		{ID: "idn-gk-02", TeamID: "idn-persib", Name: "Teja Paku Alam", ShirtNumber: 14, Position: player.PositionGoalkeeper},
		{ID: "idn-def-02", TeamID: "idn-persib", Name: "Nick Kuipers", ShirtNumber: 4, Position: player.PositionDefender},
		{ID: "idn-mid-02", TeamID: "idn-persib", Name: "Marc Klok", ShirtNumber: 23, Position: player.PositionMidfielder},
		{ID: "idn-mid-06", TeamID: "idn-persib", Name: "Dedi Kusnandar", ShirtNumber: 11, Position: player.PositionMidfielder},
		{ID: "idn-fwd-02", TeamID: "idn-persib", Name: "David da Silva", ShirtNumber: 19, Position: player.PositionForward},
		{ID: "idn-def-03", TeamID: "idn-persebaya", Name: "Dusan Stevanovic", ShirtNumber: 5, Position: player.PositionDefender},
		{ID: "idn-mid-03", TeamID: "idn-persebaya", Name: "Bruno Moreira", ShirtNumber: 7, Position: player.PositionMidfielder},
		{ID: "idn-fwd-03", TeamID: "idn-persebaya", Name: "Paulo Henrique", ShirtNumber: 9, Position: player.PositionForward},
		{ID: "idn-def-04", TeamID: "idn-baliutd", Name: "Ricky Fajrin", ShirtNumber: 24, Position: player.PositionDefender},
		{ID: "idn-mid-04", TeamID: "idn-baliutd", Name: "Eber Bessa", ShirtNumber: 10, Position: player.PositionMidfielder},
		{ID: "idn-mid-05", TeamID: "idn-baliutd", Name: "Mitsuru Maruoka", ShirtNumber: 8, Position: player.PositionMidfielder},
	}
}

// SeedMatches returns one scheduled match so a local instance has
// something to drive.
func SeedMatches() []match.Match {
	created := time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC)
	return []match.Match{
		{
			ID:         SeedMatchID,
			HomeTeamID: "idn-persija",
			AwayTeamID: "idn-persib",
			Status:     match.StatusNotStarted,
			Version:    1,
			CreatedAt:  created,
			UpdatedAt:  created,
		},
	}
}
