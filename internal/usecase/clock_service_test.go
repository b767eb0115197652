package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/jobscheduler"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/realtime"
)

func TestClockService_StartFirstHalf(t *testing.T) {
	e := newEngine(t)
	m := e.createMatch(t)

	got, err := e.clock.StartFirstHalf(context.Background(), manager, m.ID, 45)
	if err != nil {
		t.Fatalf("start first half: %v", err)
	}
	if got.Status != match.StatusFirstHalf {
		t.Fatalf("unexpected status: %s", got.Status)
	}
	if got.KickoffAt == nil || !got.KickoffAt.Equal(e.clockNow.Now()) {
		t.Fatalf("kickoff not stamped: %v", got.KickoffAt)
	}
	if got.HomeScore != 0 || got.AwayScore != 0 {
		t.Fatalf("unexpected score %d-%d", got.HomeScore, got.AwayScore)
	}
	if got.HalfDurationMinutes != 45 {
		t.Fatalf("unexpected half duration: %d", got.HalfDurationMinutes)
	}
	if got.Version != m.Version+1 {
		t.Fatalf("expected version bump, got %d", got.Version)
	}
}

func TestClockService_OutOfOrderTransitionLeavesStateUnchanged(t *testing.T) {
	e := newEngine(t)
	m := e.liveMatch(t)

	_, err := e.clock.StartSecondHalf(context.Background(), manager, m.ID)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	stored, _, _ := e.matches.GetByID(context.Background(), m.ID)
	if stored.Status != match.StatusFirstHalf || stored.SecondHalfStartedAt != nil || stored.Version != m.Version {
		t.Fatalf("state changed after rejected transition: %+v", stored)
	}
	if len(e.publisher.actions()) != 0 {
		t.Fatalf("rejected transition must not dispatch, got %v", e.publisher.actions())
	}
}

func TestClockService_HalftimeBeforeKickoffFails(t *testing.T) {
	e := newEngine(t)
	m := e.createMatch(t)

	if _, err := e.clock.StartHalftime(context.Background(), manager, m.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestClockService_HalfDurationOutOfRange(t *testing.T) {
	e := newEngine(t)
	m := e.createMatch(t)

	for _, minutes := range []int{0, 19, 61} {
		if _, err := e.clock.StartFirstHalf(context.Background(), manager, m.ID, minutes); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("half=%d: expected ErrInvalidInput, got %v", minutes, err)
		}
	}
	if _, err := e.clock.StartFirstHalf(context.Background(), manager, m.ID, 20); err != nil {
		t.Fatalf("lower bound should be accepted: %v", err)
	}
}

func TestClockService_FullLifecycleNarratesAndFreezes(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	m := e.createMatch(t)

	steps := []func() (match.Match, error){
		func() (match.Match, error) { return e.clock.StartFirstHalf(ctx, manager, m.ID, 45) },
		func() (match.Match, error) { return e.clock.StartHalftime(ctx, manager, m.ID) },
		func() (match.Match, error) { return e.clock.StartSecondHalf(ctx, manager, m.ID) },
		func() (match.Match, error) { return e.clock.EndMatch(ctx, manager, m.ID) },
	}
	var last match.Match
	for i, step := range steps {
		e.clockNow.Advance(47 * time.Minute)
		got, err := step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		last = got
	}

	if last.Status != match.StatusFullTime {
		t.Fatalf("expected FULL_TIME, got %s", last.Status)
	}
	stamps := []*time.Time{last.KickoffAt, last.HalftimeStartedAt, last.SecondHalfStartedAt, last.EndedAt}
	for i := 1; i < len(stamps); i++ {
		if stamps[i] == nil || stamps[i-1] == nil || stamps[i].Before(*stamps[i-1]) {
			t.Fatalf("timestamps not monotonic: %v", stamps)
		}
	}

	events, err := e.event.ListRecent(ctx, ListRecentInput{MatchID: m.ID})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	want := []string{"Full-time", "Second half underway", "Half-time", "Kick-off"}
	if len(events) != len(want) {
		t.Fatalf("expected %d narration events, got %d", len(want), len(events))
	}
	for i, ev := range events {
		if ev.Type != matchevent.TypeStatusChange || ev.Body != want[i] || ev.ExpiresAt != nil {
			t.Fatalf("unexpected narration event %d: %+v", i, ev)
		}
	}

	for _, cmd := range []func() (match.Match, error){
		func() (match.Match, error) { return e.clock.StartFirstHalf(ctx, manager, m.ID, 45) },
		func() (match.Match, error) { return e.clock.StartHalftime(ctx, manager, m.ID) },
		func() (match.Match, error) { return e.clock.EndMatch(ctx, manager, m.ID) },
	} {
		if _, err := cmd(); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected frozen match to reject, got %v", err)
		}
	}

	view, err := e.clock.GetMatch(ctx, m.ID)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if view.Clock.Display != "FT" {
		t.Fatalf("unexpected clock display: %s", view.Clock.Display)
	}
}

func TestClockService_ConcurrentKickoffOnlyOneWins(t *testing.T) {
	e := newEngine(t)
	m := e.createMatch(t)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := e.clock.StartFirstHalf(context.Background(), manager, m.ID, 45)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrInvalidTransition):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 || rejected != callers-1 {
		t.Fatalf("expected one winner, got successes=%d rejected=%d", successes, rejected)
	}
}

func TestClockService_RequiresManageCapability(t *testing.T) {
	e := newEngine(t)
	m := e.createMatch(t)

	if _, err := e.clock.StartFirstHalf(context.Background(), moderator, m.ID, 45); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if _, err := e.clock.CreateMatch(context.Background(), viewer, CreateMatchInput{HomeTeamID: homeTeamID, AwayTeamID: awayTeamID}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestClockService_CreateMatchValidation(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	if _, err := e.clock.CreateMatch(ctx, manager, CreateMatchInput{HomeTeamID: homeTeamID, AwayTeamID: homeTeamID}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for same teams, got %v", err)
	}
	if _, err := e.clock.CreateMatch(ctx, manager, CreateMatchInput{HomeTeamID: homeTeamID, AwayTeamID: "nope"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown team, got %v", err)
	}
	if _, err := e.clock.GetMatch(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClockService_DispatchesClockAndNarration(t *testing.T) {
	e := newEngine(t)
	m := e.createMatch(t)

	if _, err := e.clock.StartFirstHalf(context.Background(), manager, m.ID, 45); err != nil {
		t.Fatalf("start: %v", err)
	}
	got := e.publisher.actions()
	want := []realtime.Action{realtime.ActionClockChanged, realtime.ActionAppended}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected dispatch: %v", got)
	}
}

type recordedJob struct {
	path    string
	payload any
	delay   time.Duration
	dedupID string
}

type fakeJobPublisher struct {
	mu   sync.Mutex
	jobs []recordedJob
	err  error
}

func (p *fakeJobPublisher) Enqueue(_ context.Context, path string, payload any, delay time.Duration, dedupID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, recordedJob{path: path, payload: payload, delay: delay, dedupID: dedupID})
	return p.err
}

func TestClockService_EndMatchSchedulesReconcile(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	jobs := &fakeJobPublisher{}
	e.clock.SetJobScheduler(jobs, 30*time.Second)

	m := e.liveMatch(t)
	if _, err := e.clock.StartHalftime(ctx, manager, m.ID); err != nil {
		t.Fatalf("halftime: %v", err)
	}
	if _, err := e.clock.StartSecondHalf(ctx, manager, m.ID); err != nil {
		t.Fatalf("second half: %v", err)
	}
	if len(jobs.jobs) != 0 {
		t.Fatalf("only full time should schedule, got %d jobs", len(jobs.jobs))
	}
	if _, err := e.clock.EndMatch(ctx, manager, m.ID); err != nil {
		t.Fatalf("end: %v", err)
	}

	if len(jobs.jobs) != 1 {
		t.Fatalf("expected one scheduled job, got %d", len(jobs.jobs))
	}
	job := jobs.jobs[0]
	if job.path != jobscheduler.PathReconcileScores || job.delay != 30*time.Second || job.dedupID != "reconcile-"+m.ID {
		t.Fatalf("unexpected job: %+v", job)
	}
	if p, ok := job.payload.(jobscheduler.ReconcilePayload); !ok || p.MatchID != m.ID {
		t.Fatalf("unexpected payload: %#v", job.payload)
	}
}

func TestClockService_ScheduleFailureDoesNotFailEndMatch(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	e.clock.SetJobScheduler(&fakeJobPublisher{err: errors.New("qstash down")}, time.Minute)

	m := e.liveMatch(t)
	for _, step := range []func() (match.Match, error){
		func() (match.Match, error) { return e.clock.StartHalftime(ctx, manager, m.ID) },
		func() (match.Match, error) { return e.clock.StartSecondHalf(ctx, manager, m.ID) },
		func() (match.Match, error) { return e.clock.EndMatch(ctx, manager, m.ID) },
	} {
		if _, err := step(); err != nil {
			t.Fatalf("transition: %v", err)
		}
	}
	stored, _, _ := e.matches.GetByID(ctx, m.ID)
	if stored.Status != match.StatusFullTime {
		t.Fatalf("expected FULL_TIME, got %s", stored.Status)
	}
}
