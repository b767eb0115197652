package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/realtime"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const (
	scoreWriteAttempts      = 3
	defaultReconcileWorkers = 4
	maxReconcileWorkers     = 32
)

// ScoreService keeps the denormalized score on a match equal to the number
// of live goal events per team.
type ScoreService struct {
	matchRepo match.Repository
	eventRepo matchevent.Repository
	publisher realtime.Publisher
	locks     *MatchLocks
	logger    *logging.Logger
	now       func() time.Time
	workers   int
}

func NewScoreService(
	matchRepo match.Repository,
	eventRepo matchevent.Repository,
	publisher realtime.Publisher,
	locks *MatchLocks,
	logger *logging.Logger,
) *ScoreService {
	if logger == nil {
		logger = logging.Default()
	}
	if locks == nil {
		locks = NewMatchLocks()
	}
	return &ScoreService{
		matchRepo: matchRepo,
		eventRepo: eventRepo,
		publisher: publisher,
		locks:     locks,
		logger:    logger,
		now:       time.Now,
		workers:   defaultReconcileWorkers,
	}
}

// SetReconcileWorkers bounds the worker pool used by ReconcileScores.
func (s *ScoreService) SetReconcileWorkers(n int) {
	s.workers = n
}

// Recompute re-derives the score of one match under its lock.
func (s *ScoreService) Recompute(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.Recompute")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	unlock := s.locks.Lock(matchID)
	defer unlock()

	item, _, err := s.recomputeLocked(ctx, matchID)
	return item, err
}

// recomputeLocked must run while the caller holds the match lock. It
// re-counts goals from the log and writes them with a version check, so a
// writer in another process can only delay it, never make it lose a goal.
func (s *ScoreService) recomputeLocked(ctx context.Context, matchID string) (match.Match, bool, error) {
	for attempt := 1; attempt <= scoreWriteAttempts; attempt++ {
		current, exists, err := s.matchRepo.GetByID(ctx, matchID)
		if err != nil {
			return match.Match{}, false, fmt.Errorf("get match: %w", err)
		}
		if !exists {
			return match.Match{}, false, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
		}

		counts, err := s.eventRepo.CountGoals(ctx, matchID)
		if err != nil {
			return match.Match{}, false, fmt.Errorf("count goals: %w", err)
		}
		score := matchevent.FromGoalCounts(counts, current.HomeTeamID, current.AwayTeamID)
		if score.Home == current.HomeScore && score.Away == current.AwayScore {
			return current, false, nil
		}

		next := current.Clone()
		next.HomeScore = score.Home
		next.AwayScore = score.Away
		next.UpdatedAt = s.now().UTC()

		updated, err := s.matchRepo.UpdateAtomic(ctx, next, current.Version)
		if errors.Is(err, match.ErrVersionConflict) {
			s.logger.DebugContext(ctx, "score write lost version race, retrying",
				"match_id", matchID,
				"attempt", attempt,
			)
			continue
		}
		if err != nil {
			return match.Match{}, false, fmt.Errorf("update match score: %w", err)
		}

		s.publish(ctx, realtime.Notification{
			MatchID:  updated.ID,
			Entity:   realtime.EntityMatch,
			Action:   realtime.ActionScoreChanged,
			EntityID: updated.ID,
			Version:  updated.Version,
			Data:     updated,
		})
		return updated, true, nil
	}

	return match.Match{}, false, fmt.Errorf("%w: score update for match=%s kept racing", ErrConflictLost, matchID)
}

// ReconcileMatch recomputes a single match and reports it in the same shape
// as ReconcileScores. It backs the delayed full-time callback.
func (s *ScoreService) ReconcileMatch(ctx context.Context, matchID string) (ReconcileResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.ReconcileMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return ReconcileResult{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}

	unlock := s.locks.Lock(matchID)
	_, changed, err := s.recomputeLocked(ctx, matchID)
	unlock()
	if err != nil {
		return ReconcileResult{}, err
	}

	result := ReconcileResult{MatchCount: 1}
	if changed {
		result.UpdatedCount = 1
		result.UpdatedIDs = []string{matchID}
	}
	return result, nil
}

type ReconcileResult struct {
	MatchCount   int
	UpdatedCount int
	FailedCount  int
	UpdatedIDs   []string
}

// ReconcileScores recomputes every match that has started, fanning out over
// a bounded worker pool. Failures are counted, not returned.
func (s *ScoreService) ReconcileScores(ctx context.Context) (ReconcileResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoreService.ReconcileScores")
	defer span.End()

	items, err := s.matchRepo.ListByStatus(ctx,
		match.StatusFirstHalf,
		match.StatusHalftime,
		match.StatusSecondHalf,
		match.StatusFullTime,
	)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("list matches for reconcile: %w", err)
	}

	result := ReconcileResult{MatchCount: len(items)}
	if len(items) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(normalizeReconcileWorkers(s.workers, len(items)))
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	matchIDs := make([]string, 0, len(items))
	for _, item := range items {
		matchIDs = append(matchIDs, item.ID)
	}
	err = submitAndWait(pool, matchIDs, func(matchID string) {
		unlock := s.locks.Lock(matchID)
		_, changed, err := s.recomputeLocked(ctx, matchID)
		unlock()

		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			result.FailedCount++
			s.logger.WarnContext(ctx, "reconcile match score failed", "match_id", matchID, "error", err)
		case changed:
			result.UpdatedCount++
			result.UpdatedIDs = append(result.UpdatedIDs, matchID)
		}
	})
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("submit reconcile task: %w", err)
	}

	sort.Strings(result.UpdatedIDs)
	s.logger.InfoContext(ctx, "score reconcile finished",
		"matches", result.MatchCount,
		"updated", result.UpdatedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

type taskSubmitter interface {
	Submit(task func()) error
}

// submitAndWait runs task once per match id on pool. It always waits for
// every accepted task before returning, including when a later Submit fails.
func submitAndWait(pool taskSubmitter, matchIDs []string, task func(matchID string)) error {
	var workers sync.WaitGroup
	defer workers.Wait()

	for _, matchID := range matchIDs {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			task(matchID)
		}); err != nil {
			workers.Done()
			return err
		}
	}
	return nil
}

func (s *ScoreService) publish(ctx context.Context, n realtime.Notification) {
	if s.publisher == nil {
		return
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = s.now().UTC()
	}
	s.publisher.Publish(ctx, n)
}

func normalizeReconcileWorkers(requested, tasks int) int {
	n := requested
	if n <= 0 {
		n = defaultReconcileWorkers
	}
	if n > maxReconcileWorkers {
		n = maxReconcileWorkers
	}
	if n > tasks {
		n = tasks
	}
	if n < 1 {
		n = 1
	}
	return n
}
