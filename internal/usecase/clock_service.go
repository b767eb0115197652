package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/jobscheduler"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/realtime"
	"github.com/riskibarqy/matchday/internal/domain/team"
	"github.com/riskibarqy/matchday/internal/domain/user"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

var transitionNarration = map[match.Transition]string{
	match.TransitionStartFirstHalf:  "Kick-off",
	match.TransitionStartHalftime:   "Half-time",
	match.TransitionStartSecondHalf: "Second half underway",
	match.TransitionEndMatch:        "Full-time",
}

type CreateMatchInput struct {
	HomeTeamID string
	AwayTeamID string
}

// MatchView is a match plus its clock as read at a given instant.
type MatchView struct {
	Match match.Match
	Clock match.ClockReading
}

// ClockService drives the match clock state machine. Transitions for one
// match are serialized through MatchLocks and committed with a version check.
type ClockService struct {
	matchRepo match.Repository
	eventRepo matchevent.Repository
	teamRepo  team.Repository
	publisher realtime.Publisher
	locks     *MatchLocks
	ids       id.Generator
	logger    *logging.Logger
	now       func() time.Time

	jobs           jobscheduler.Publisher
	reconcileDelay time.Duration
}

func NewClockService(
	matchRepo match.Repository,
	eventRepo matchevent.Repository,
	teamRepo team.Repository,
	publisher realtime.Publisher,
	locks *MatchLocks,
	ids id.Generator,
	logger *logging.Logger,
) *ClockService {
	if logger == nil {
		logger = logging.Default()
	}
	if locks == nil {
		locks = NewMatchLocks()
	}
	if ids == nil {
		ids = id.NewTimeOrderedGenerator()
	}
	return &ClockService{
		matchRepo: matchRepo,
		eventRepo: eventRepo,
		teamRepo:  teamRepo,
		publisher: publisher,
		locks:     locks,
		ids:       ids,
		logger:    logger,
		now:       time.Now,
	}
}

// SetJobScheduler enables a delayed score reconcile for every match that
// reaches full time.
func (s *ClockService) SetJobScheduler(jobs jobscheduler.Publisher, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	s.jobs = jobs
	s.reconcileDelay = delay
}

func (s *ClockService) CreateMatch(ctx context.Context, caller user.Principal, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClockService.CreateMatch")
	defer span.End()

	if err := requireManageMatch(caller); err != nil {
		return match.Match{}, err
	}

	homeID := strings.TrimSpace(input.HomeTeamID)
	awayID := strings.TrimSpace(input.AwayTeamID)
	if homeID == "" || awayID == "" {
		return match.Match{}, fmt.Errorf("%w: home_team_id and away_team_id are required", ErrInvalidInput)
	}
	if homeID == awayID {
		return match.Match{}, fmt.Errorf("%w: home and away team must be different", ErrInvalidInput)
	}
	for _, teamID := range []string{homeID, awayID} {
		_, exists, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return match.Match{}, fmt.Errorf("get team: %w", err)
		}
		if !exists {
			return match.Match{}, fmt.Errorf("%w: unknown team_id=%s", ErrInvalidInput, teamID)
		}
	}

	matchID, err := s.ids.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	item := match.Match{
		ID:         matchID,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Status:     match.StatusNotStarted,
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := item.Validate(); err != nil {
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.matchRepo.Create(ctx, item); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}

	s.logger.InfoContext(ctx, "match created",
		"match_id", item.ID,
		"home_team_id", item.HomeTeamID,
		"away_team_id", item.AwayTeamID,
		"created_by", caller.UserID,
	)
	return item, nil
}

func (s *ClockService) GetMatch(ctx context.Context, matchID string) (MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClockService.GetMatch")
	defer span.End()

	item, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return MatchView{}, err
	}
	return MatchView{Match: item, Clock: match.ReadClock(item, s.now())}, nil
}

func (s *ClockService) StartFirstHalf(ctx context.Context, caller user.Principal, matchID string, halfDurationMinutes int) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClockService.StartFirstHalf")
	defer span.End()

	return s.transition(ctx, caller, matchID, match.TransitionStartFirstHalf, halfDurationMinutes)
}

func (s *ClockService) StartHalftime(ctx context.Context, caller user.Principal, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClockService.StartHalftime")
	defer span.End()

	return s.transition(ctx, caller, matchID, match.TransitionStartHalftime, 0)
}

func (s *ClockService) StartSecondHalf(ctx context.Context, caller user.Principal, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClockService.StartSecondHalf")
	defer span.End()

	return s.transition(ctx, caller, matchID, match.TransitionStartSecondHalf, 0)
}

func (s *ClockService) EndMatch(ctx context.Context, caller user.Principal, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClockService.EndMatch")
	defer span.End()

	return s.transition(ctx, caller, matchID, match.TransitionEndMatch, 0)
}

func (s *ClockService) transition(
	ctx context.Context,
	caller user.Principal,
	matchID string,
	t match.Transition,
	halfDuration int,
) (match.Match, error) {
	if err := requireManageMatch(caller); err != nil {
		return match.Match{}, err
	}
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	unlock := s.locks.Lock(matchID)
	defer unlock()

	current, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return match.Match{}, err
	}

	now := s.now().UTC()
	next, err := current.Apply(t, now, halfDuration)
	switch {
	case errors.Is(err, match.ErrInvalidTransition):
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	case errors.Is(err, match.ErrInvalidHalfDuration):
		return match.Match{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case err != nil:
		return match.Match{}, fmt.Errorf("apply transition: %w", err)
	}
	next.UpdatedAt = now

	updated, err := s.matchRepo.UpdateAtomic(ctx, next, current.Version)
	if errors.Is(err, match.ErrVersionConflict) {
		return match.Match{}, s.classifyLostTransition(ctx, current, t)
	}
	if err != nil {
		return match.Match{}, fmt.Errorf("update match clock: %w", err)
	}

	s.logger.InfoContext(ctx, "match clock transitioned",
		"match_id", updated.ID,
		"transition", string(t),
		"status", string(updated.Status),
		"version", updated.Version,
		"caller", caller.UserID,
	)

	s.publish(ctx, realtime.Notification{
		MatchID:  updated.ID,
		Entity:   realtime.EntityMatch,
		Action:   realtime.ActionClockChanged,
		EntityID: updated.ID,
		Version:  updated.Version,
		Data:     updated,
	})
	s.narrate(ctx, caller, updated, t)
	if t == match.TransitionEndMatch {
		s.scheduleReconcile(ctx, updated.ID)
	}

	return updated, nil
}

// classifyLostTransition re-reads after a lost version check. A status that
// moved means the requested edge is no longer legal; anything else (a score
// write in between) is a transient race the caller may retry.
func (s *ClockService) classifyLostTransition(ctx context.Context, read match.Match, t match.Transition) error {
	latest, exists, err := s.matchRepo.GetByID(ctx, read.ID)
	if err != nil {
		return fmt.Errorf("reload match after conflict: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: match=%s", ErrNotFound, read.ID)
	}
	if latest.Status != read.Status {
		return fmt.Errorf("%w: %s lost race, match is now %s", ErrInvalidTransition, t, latest.Status)
	}
	return fmt.Errorf("%w: match=%s changed during %s", ErrConflictLost, read.ID, t)
}

// narrate records the transition in the activity stream. The clock change
// is already committed, so a failure here is logged and swallowed.
func (s *ClockService) narrate(ctx context.Context, caller user.Principal, m match.Match, t match.Transition) {
	if s.eventRepo == nil {
		return
	}
	eventID, err := s.ids.NewID()
	if err != nil {
		s.logger.WarnContext(ctx, "generate narration event id failed", "match_id", m.ID, "error", err)
		return
	}

	item := matchevent.Event{
		ID:            eventID,
		MatchID:       m.ID,
		Type:          matchevent.TypeStatusChange,
		Body:          transitionNarration[t],
		CreatedBy:     caller.UserID,
		CreatedByName: callerName(caller),
		CreatedAt:     m.UpdatedAt,
	}
	if err := s.eventRepo.Append(ctx, item); err != nil {
		s.logger.WarnContext(ctx, "append status change narration failed",
			"match_id", m.ID,
			"transition", string(t),
			"error", err,
		)
		return
	}

	s.publish(ctx, realtime.Notification{
		MatchID:  m.ID,
		Entity:   realtime.EntityEvent,
		Action:   realtime.ActionAppended,
		EntityID: item.ID,
		Version:  1,
		Data:     item,
	})
}

// scheduleReconcile asks the job queue to recompute the final score once
// late writes have settled. The match is already finished, so a failure is
// only logged; the periodic reconcile job still covers it.
func (s *ClockService) scheduleReconcile(ctx context.Context, matchID string) {
	if s.jobs == nil {
		return
	}
	err := s.jobs.Enqueue(ctx,
		jobscheduler.PathReconcileScores,
		jobscheduler.ReconcilePayload{MatchID: matchID},
		s.reconcileDelay,
		jobscheduler.ReconcileDeduplicationID(matchID),
	)
	if err != nil {
		s.logger.WarnContext(ctx, "schedule full-time reconcile failed", "match_id", matchID, "error", err)
		return
	}
	s.logger.InfoContext(ctx, "full-time reconcile scheduled", "match_id", matchID, "delay", s.reconcileDelay.String())
}

func (s *ClockService) loadMatch(ctx context.Context, matchID string) (match.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return item, nil
}

func (s *ClockService) publish(ctx context.Context, n realtime.Notification) {
	if s.publisher == nil {
		return
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = s.now().UTC()
	}
	s.publisher.Publish(ctx, n)
}
