package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/matchevent"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/realtime"
	"github.com/riskibarqy/matchday/internal/domain/user"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const (
	DefaultMessageRetention = 240 * time.Hour
	DefaultEventPageSize    = 50
	MaxEventPageSize        = 200

	goalMinuteMin       = 1
	goalMinuteMax       = 150
	goalExtraTimeMax    = 30
	goalCaptionMaxRunes = 280
	messageMaxRunes     = 1000
	playerNameMaxRunes  = 120
)

type AppendGoalInput struct {
	MatchID          string
	TeamID           string
	PlayerRef        string
	PlayerName       string
	Minute           *int
	ExtraTimeMinutes *int
	Caption          string
}

type AppendMessageInput struct {
	MatchID string
	Body    string
}

type ListRecentInput struct {
	MatchID  string
	BeforeID string
	PageSize int
}

// EventResult carries the affected event and, when a goal changed the
// score, the match as stored after recomputation. Match is nil when the
// event committed but the score refresh did not.
type EventResult struct {
	Event matchevent.Event
	Match *match.Match
}

// EventService owns the match activity stream. Goal appends and goal
// deletes hold the match lock across the write and the score recompute;
// messages never take it.
type EventService struct {
	matchRepo  match.Repository
	eventRepo  matchevent.Repository
	playerRepo player.Repository
	scores     *ScoreService
	publisher  realtime.Publisher
	locks      *MatchLocks
	ids        id.Generator
	logger     *logging.Logger
	now        func() time.Time
	retention  time.Duration
}

func NewEventService(
	matchRepo match.Repository,
	eventRepo matchevent.Repository,
	playerRepo player.Repository,
	scores *ScoreService,
	publisher realtime.Publisher,
	locks *MatchLocks,
	ids id.Generator,
	logger *logging.Logger,
) *EventService {
	if logger == nil {
		logger = logging.Default()
	}
	if locks == nil {
		locks = NewMatchLocks()
	}
	if ids == nil {
		ids = id.NewTimeOrderedGenerator()
	}
	return &EventService{
		matchRepo:  matchRepo,
		eventRepo:  eventRepo,
		playerRepo: playerRepo,
		scores:     scores,
		publisher:  publisher,
		locks:      locks,
		ids:        ids,
		logger:     logger,
		now:        time.Now,
		retention:  DefaultMessageRetention,
	}
}

// SetMessageRetention sets how long chat messages stay readable.
func (s *EventService) SetMessageRetention(d time.Duration) {
	if d > 0 {
		s.retention = d
	}
}

func (s *EventService) AppendGoal(ctx context.Context, caller user.Principal, input AppendGoalInput) (EventResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.AppendGoal")
	defer span.End()

	if err := requireManageMatch(caller); err != nil {
		return EventResult{}, err
	}
	input, err := normalizeGoalInput(input)
	if err != nil {
		return EventResult{}, err
	}

	unlock := s.locks.Lock(input.MatchID)
	defer unlock()

	current, err := s.loadMatch(ctx, input.MatchID)
	if err != nil {
		return EventResult{}, err
	}
	if !current.Status.InPlay() {
		return EventResult{}, fmt.Errorf("%w: goals can only be recorded during play, match is %s", ErrInvalidState, current.Status)
	}
	if !current.HasTeam(input.TeamID) {
		return EventResult{}, fmt.Errorf("%w: team_id=%s is not playing in match=%s", ErrInvalidInput, input.TeamID, current.ID)
	}

	displayName := input.PlayerName
	if input.PlayerRef != "" {
		item, exists, err := s.playerRepo.GetByID(ctx, input.PlayerRef)
		if err != nil {
			return EventResult{}, fmt.Errorf("%w: roster lookup: %v", ErrDependencyUnavailable, err)
		}
		if !exists {
			return EventResult{}, fmt.Errorf("%w: unknown player_ref=%s", ErrInvalidInput, input.PlayerRef)
		}
		displayName = item.Name
	}

	eventID, err := s.ids.NewID()
	if err != nil {
		return EventResult{}, fmt.Errorf("generate event id: %w", err)
	}
	item := matchevent.Event{
		ID:                eventID,
		MatchID:           current.ID,
		Type:              matchevent.TypeGoal,
		TeamID:            input.TeamID,
		PlayerRef:         input.PlayerRef,
		PlayerDisplayName: displayName,
		Minute:            input.Minute,
		ExtraTimeMinutes:  input.ExtraTimeMinutes,
		Body:              input.Caption,
		CreatedBy:         caller.UserID,
		CreatedByName:     callerName(caller),
		CreatedAt:         s.now().UTC(),
	}
	if err := s.eventRepo.Append(ctx, item); err != nil {
		return EventResult{}, fmt.Errorf("append goal event: %w", err)
	}

	s.publish(ctx, realtime.Notification{
		MatchID:  item.MatchID,
		Entity:   realtime.EntityEvent,
		Action:   realtime.ActionAppended,
		EntityID: item.ID,
		Version:  1,
		Data:     item,
	})

	updated, _, err := s.scores.recomputeLocked(ctx, current.ID)
	if err != nil {
		// The goal is durable; the next recompute or reconcile run repairs the score.
		s.logger.WarnContext(ctx, "recompute score after goal failed",
			"match_id", current.ID,
			"event_id", item.ID,
			"error", err,
		)
		return EventResult{Event: item}, nil
	}

	s.logger.InfoContext(ctx, "goal recorded",
		"match_id", current.ID,
		"event_id", item.ID,
		"team_id", item.TeamID,
		"home_score", updated.HomeScore,
		"away_score", updated.AwayScore,
	)
	return EventResult{Event: item, Match: &updated}, nil
}

func (s *EventService) AppendMessage(ctx context.Context, caller user.Principal, input AppendMessageInput) (matchevent.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.AppendMessage")
	defer span.End()

	if err := requireCaller(caller); err != nil {
		return matchevent.Event{}, err
	}
	matchID := strings.TrimSpace(input.MatchID)
	body := strings.TrimSpace(input.Body)
	if matchID == "" {
		return matchevent.Event{}, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}
	if body == "" {
		return matchevent.Event{}, fmt.Errorf("%w: message body is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(body) > messageMaxRunes {
		return matchevent.Event{}, fmt.Errorf("%w: message body exceeds %d characters", ErrInvalidInput, messageMaxRunes)
	}

	if _, err := s.loadMatch(ctx, matchID); err != nil {
		return matchevent.Event{}, err
	}

	eventID, err := s.ids.NewID()
	if err != nil {
		return matchevent.Event{}, fmt.Errorf("generate event id: %w", err)
	}
	createdAt := s.now().UTC()
	expiresAt := createdAt.Add(s.retention)
	item := matchevent.Event{
		ID:            eventID,
		MatchID:       matchID,
		Type:          matchevent.TypeMessage,
		Body:          body,
		CreatedBy:     caller.UserID,
		CreatedByName: callerName(caller),
		CreatedAt:     createdAt,
		ExpiresAt:     &expiresAt,
	}
	if err := s.eventRepo.Append(ctx, item); err != nil {
		return matchevent.Event{}, fmt.Errorf("append message event: %w", err)
	}

	s.publish(ctx, realtime.Notification{
		MatchID:  item.MatchID,
		Entity:   realtime.EntityEvent,
		Action:   realtime.ActionAppended,
		EntityID: item.ID,
		Version:  1,
		Data:     item,
	})
	return item, nil
}

// SoftDelete hides an event. Deleting an already deleted event returns the
// stored event unchanged and dispatches nothing.
func (s *EventService) SoftDelete(ctx context.Context, caller user.Principal, eventID string) (EventResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.SoftDelete")
	defer span.End()

	if err := requireModerate(caller); err != nil {
		return EventResult{}, err
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return EventResult{}, fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}

	stored, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return EventResult{}, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return EventResult{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	if stored.IsDeleted {
		return EventResult{Event: stored}, nil
	}

	isGoal := stored.Type == matchevent.TypeGoal
	if isGoal {
		unlock := s.locks.Lock(stored.MatchID)
		defer unlock()
	}

	changed := false
	updated, err := s.eventRepo.UpdateAtomic(ctx, eventID, func(current matchevent.Event) (matchevent.Event, bool, error) {
		if current.IsDeleted {
			return current, false, nil
		}
		deletedAt := s.now().UTC()
		next := current.Clone()
		next.IsDeleted = true
		next.DeletedBy = caller.UserID
		next.DeletedAt = &deletedAt
		changed = true
		return next, true, nil
	})
	if err != nil {
		return EventResult{}, fmt.Errorf("soft delete event: %w", err)
	}
	if !changed {
		return EventResult{Event: updated}, nil
	}

	s.logger.InfoContext(ctx, "event soft deleted",
		"match_id", updated.MatchID,
		"event_id", updated.ID,
		"type", string(updated.Type),
		"deleted_by", caller.UserID,
	)
	s.publish(ctx, realtime.Notification{
		MatchID:  updated.MatchID,
		Entity:   realtime.EntityEvent,
		Action:   realtime.ActionDeleted,
		EntityID: updated.ID,
		Version:  2,
		Data:     updated,
	})

	if !isGoal {
		return EventResult{Event: updated}, nil
	}
	m, _, err := s.scores.recomputeLocked(ctx, updated.MatchID)
	if err != nil {
		s.logger.WarnContext(ctx, "recompute score after goal delete failed",
			"match_id", updated.MatchID,
			"event_id", updated.ID,
			"error", err,
		)
		return EventResult{Event: updated}, nil
	}
	return EventResult{Event: updated, Match: &m}, nil
}

// ListRecent returns visible events newest first. BeforeID pages strictly
// past that event in (created_at, id) order.
func (s *EventService) ListRecent(ctx context.Context, input ListRecentInput) ([]matchevent.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventService.ListRecent")
	defer span.End()

	matchID := strings.TrimSpace(input.MatchID)
	if _, err := s.loadMatch(ctx, matchID); err != nil {
		return nil, err
	}

	query := matchevent.ListQuery{
		MatchID: matchID,
		Limit:   NormalizeEventPageSize(input.PageSize),
		Now:     s.now().UTC(),
	}
	if beforeID := strings.TrimSpace(input.BeforeID); beforeID != "" {
		cursor, exists, err := s.eventRepo.GetByID(ctx, beforeID)
		if err != nil {
			return nil, fmt.Errorf("get cursor event: %w", err)
		}
		if !exists || cursor.MatchID != matchID {
			return nil, fmt.Errorf("%w: before_id=%s is not an event of match=%s", ErrInvalidInput, beforeID, matchID)
		}
		query.Cursor = &cursor
	}

	items, err := s.eventRepo.ListRecent(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	return items, nil
}

func (s *EventService) loadMatch(ctx context.Context, matchID string) (match.Match, error) {
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

func (s *EventService) publish(ctx context.Context, n realtime.Notification) {
	if s.publisher == nil {
		return
	}
	if n.OccurredAt.IsZero() {
		n.OccurredAt = s.now().UTC()
	}
	s.publisher.Publish(ctx, n)
}

func normalizeGoalInput(input AppendGoalInput) (AppendGoalInput, error) {
	input.MatchID = strings.TrimSpace(input.MatchID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	input.PlayerRef = strings.TrimSpace(input.PlayerRef)
	input.PlayerName = strings.TrimSpace(input.PlayerName)
	input.Caption = strings.TrimSpace(input.Caption)

	if input.MatchID == "" {
		return input, fmt.Errorf("%w: match_id is required", ErrInvalidInput)
	}
	if input.TeamID == "" {
		return input, fmt.Errorf("%w: team_id is required", ErrInvalidInput)
	}
	if (input.PlayerRef == "") == (input.PlayerName == "") {
		return input, fmt.Errorf("%w: exactly one of player_ref or player_name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(input.PlayerName) > playerNameMaxRunes {
		return input, fmt.Errorf("%w: player_name exceeds %d characters", ErrInvalidInput, playerNameMaxRunes)
	}
	if input.Minute != nil && (*input.Minute < goalMinuteMin || *input.Minute > goalMinuteMax) {
		return input, fmt.Errorf("%w: minute must be between %d and %d", ErrInvalidInput, goalMinuteMin, goalMinuteMax)
	}
	if input.ExtraTimeMinutes != nil && (*input.ExtraTimeMinutes < 0 || *input.ExtraTimeMinutes > goalExtraTimeMax) {
		return input, fmt.Errorf("%w: extra_time_minutes must be between 0 and %d", ErrInvalidInput, goalExtraTimeMax)
	}
	if utf8.RuneCountInString(input.Caption) > goalCaptionMaxRunes {
		return input, fmt.Errorf("%w: caption exceeds %d characters", ErrInvalidInput, goalCaptionMaxRunes)
	}
	return input, nil
}

// NormalizeEventPageSize applies the default and the upper bound to a
// requested page size.
func NormalizeEventPageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultEventPageSize
	case size > MaxEventPageSize:
		return MaxEventPageSize
	default:
		return size
	}
}
