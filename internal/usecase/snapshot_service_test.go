package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/lineup"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotService_GetSnapshot(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	m := e.liveMatch(t)

	_, err := e.lineup.SetLineup(ctx, manager, SetLineupInput{
		MatchID:       m.ID,
		TeamID:        homeTeamID,
		FormationName: "4-3-3",
		Positions:     []lineup.Assignment{{PositionCode: "ST", PlayerRef: "idn-fwd-01"}},
	})
	require.NoError(t, err)

	e.clockNow.Advance(23 * time.Minute)
	_, err = e.event.AppendGoal(ctx, manager, AppendGoalInput{MatchID: m.ID, TeamID: homeTeamID, PlayerRef: "idn-fwd-01", Minute: intPtr(23)})
	require.NoError(t, err)

	snap, err := e.snapshot.GetSnapshot(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Match.HomeScore)
	assert.Equal(t, match.PeriodFirstHalf, snap.Clock.Period)
	assert.Equal(t, "24'", snap.Clock.Display)
	require.Len(t, snap.Events, 2, "kick-off narration and the goal")
	assert.Equal(t, "Gustavo Almeida", snap.Events[0].PlayerDisplayName)
	assert.True(t, snap.HomeLineup.IsSet)
	assert.False(t, snap.AwayLineup.IsSet)
}

func TestSnapshotService_UnknownMatch(t *testing.T) {
	e := newEngine(t)
	_, err := e.snapshot.GetSnapshot(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
