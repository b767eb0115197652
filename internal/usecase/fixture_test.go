package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/realtime"
	"github.com/riskibarqy/matchday/internal/domain/user"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const (
	homeTeamID = "idn-persija"
	awayTeamID = "idn-persib"
)

var (
	manager   = user.NewPrincipal("u-manager", "Match Admin", user.CapabilityManageMatch)
	moderator = user.NewPrincipal("u-mod", "Moderator", user.CapabilityModerate)
	viewer    = user.NewPrincipal("u-viewer", "Viewer")
)

type recordingPublisher struct {
	mu    sync.Mutex
	items []realtime.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, n realtime.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, n)
}

func (p *recordingPublisher) actions() []realtime.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]realtime.Action, 0, len(p.items))
	for _, n := range p.items {
		out = append(out, n.Action)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type engine struct {
	matches   *memory.MatchRepository
	events    *memory.EventRepository
	lineups   *memory.LineupRepository
	players   *memory.PlayerRepository
	publisher *recordingPublisher
	clockNow  *testClock

	clock    *ClockService
	score    *ScoreService
	event    *EventService
	lineup   *LineupService
	snapshot *SnapshotService
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	e := &engine{
		matches:   memory.NewMatchRepository(),
		events:    memory.NewEventRepository(),
		lineups:   memory.NewLineupRepository(),
		players:   memory.NewPlayerRepository(memory.SeedPlayers()),
		publisher: &recordingPublisher{},
		clockNow:  &testClock{now: time.Date(2026, 2, 14, 19, 0, 0, 0, time.UTC)},
	}
	teams := memory.NewTeamRepository(memory.SeedTeams())
	locks := NewMatchLocks()
	logger := logging.NewNop()

	e.score = NewScoreService(e.matches, e.events, e.publisher, locks, logger)
	e.clock = NewClockService(e.matches, e.events, teams, e.publisher, locks, nil, logger)
	e.event = NewEventService(e.matches, e.events, e.players, e.score, e.publisher, locks, nil, logger)
	e.lineup = NewLineupService(e.matches, e.lineups, e.players, e.publisher, locks, nil, logger)
	e.snapshot = NewSnapshotService(e.clock, e.event, e.lineup)

	e.score.now = e.clockNow.Now
	e.clock.now = e.clockNow.Now
	e.event.now = e.clockNow.Now
	e.lineup.now = e.clockNow.Now
	e.snapshot.now = e.clockNow.Now
	return e
}

func (e *engine) createMatch(t *testing.T) match.Match {
	t.Helper()
	m, err := e.clock.CreateMatch(context.Background(), manager, CreateMatchInput{HomeTeamID: homeTeamID, AwayTeamID: awayTeamID})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return m
}

func (e *engine) liveMatch(t *testing.T) match.Match {
	t.Helper()
	m := e.createMatch(t)
	started, err := e.clock.StartFirstHalf(context.Background(), manager, m.ID, 45)
	if err != nil {
		t.Fatalf("start first half: %v", err)
	}
	e.publisher.reset()
	return started
}

// assertScoreMatchesLog checks the stored score against a recount of the log.
func (e *engine) assertScoreMatchesLog(t *testing.T, matchID string) match.Match {
	t.Helper()
	ctx := context.Background()
	m, ok, err := e.matches.GetByID(ctx, matchID)
	if err != nil || !ok {
		t.Fatalf("get match: ok=%v err=%v", ok, err)
	}
	counts, err := e.events.CountGoals(ctx, matchID)
	if err != nil {
		t.Fatalf("count goals: %v", err)
	}
	if m.HomeScore != counts[m.HomeTeamID] || m.AwayScore != counts[m.AwayTeamID] {
		t.Fatalf("score drift: stored=%d-%d log=%d-%d", m.HomeScore, m.AwayScore, counts[m.HomeTeamID], counts[m.AwayTeamID])
	}
	return m
}

func intPtr(v int) *int { return &v }
