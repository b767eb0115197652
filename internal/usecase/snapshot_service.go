package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/sourcegraph/conc/pool"
)

const snapshotEventLimit = 50

// Snapshot is everything an observer needs to render a match from scratch.
// Stream clients receive one on connect and after any reconnect.
type Snapshot struct {
	Match      match.Match
	Clock      match.ClockReading
	Events     []matchevent.Event
	HomeLineup LineupView
	AwayLineup LineupView
	TakenAt    time.Time
}

type SnapshotService struct {
	clock   *ClockService
	events  *EventService
	lineups *LineupService
	now     func() time.Time
}

func NewSnapshotService(clock *ClockService, events *EventService, lineups *LineupService) *SnapshotService {
	return &SnapshotService{
		clock:   clock,
		events:  events,
		lineups: lineups,
		now:     time.Now,
	}
}

// GetSnapshot reads the match first, then loads events and both lineups
// concurrently. The first failure cancels the rest.
func (s *SnapshotService) GetSnapshot(ctx context.Context, matchID string) (Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.GetSnapshot")
	defer span.End()

	view, err := s.clock.GetMatch(ctx, matchID)
	if err != nil {
		return Snapshot{}, err
	}

	out := Snapshot{
		Match:   view.Match,
		Clock:   view.Clock,
		TakenAt: s.now().UTC(),
	}

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		items, err := s.events.ListRecent(ctx, ListRecentInput{MatchID: view.Match.ID, PageSize: snapshotEventLimit})
		if err != nil {
			return err
		}
		out.Events = items
		return nil
	})
	p.Go(func(ctx context.Context) error {
		l, err := s.lineups.GetLineup(ctx, view.Match.ID, view.Match.HomeTeamID)
		if err != nil {
			return err
		}
		out.HomeLineup = l
		return nil
	})
	p.Go(func(ctx context.Context) error {
		l, err := s.lineups.GetLineup(ctx, view.Match.ID, view.Match.AwayTeamID)
		if err != nil {
			return err
		}
		out.AwayLineup = l
		return nil
	})
	if err := p.Wait(); err != nil {
		return Snapshot{}, err
	}

	return out, nil
}
