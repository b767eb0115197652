package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/matchday/internal/domain/lineup"
	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/realtime"
	"github.com/riskibarqy/matchday/internal/domain/user"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

const lineupDisplayNameMaxRunes = 120

type SetLineupInput struct {
	MatchID       string
	TeamID        string
	FormationName string
	Positions     []lineup.Assignment
}

// PositionView is one slot with its resolved display name. PlayerMissing
// flags a reference the roster no longer knows.
type PositionView struct {
	PositionCode  string
	PlayerRef     string
	DisplayName   string
	PlayerMissing bool
}

type LineupView struct {
	MatchID       string
	TeamID        string
	FormationName string
	Positions     []PositionView
	UpdatedBy     string
	UpdatedAt     time.Time
	Version       int64
	IsSet         bool
}

type LineupService struct {
	matchRepo  match.Repository
	lineupRepo lineup.Repository
	playerRepo player.Repository
	publisher  realtime.Publisher
	locks      *MatchLocks
	ids        id.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewLineupService(
	matchRepo match.Repository,
	lineupRepo lineup.Repository,
	playerRepo player.Repository,
	publisher realtime.Publisher,
	locks *MatchLocks,
	ids id.Generator,
	logger *logging.Logger,
) *LineupService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewTimeOrderedGenerator()
	}
	if locks == nil {
		locks = NewMatchLocks()
	}
	return &LineupService{
		matchRepo:  matchRepo,
		lineupRepo: lineupRepo,
		playerRepo: playerRepo,
		publisher:  publisher,
		locks:      locks,
		ids:        ids,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *LineupService) ListFormations(ctx context.Context) []lineup.Formation {
	_, span := startUsecaseSpan(ctx, "usecase.LineupService.ListFormations")
	defer span.End()

	return lineup.Formations()
}

// SetLineup validates the whole assignment and then replaces whatever was
// stored for (match, team). Slots left out of the input are cleared.
// The match lock is held through publish so notifications for one lineup
// leave in version order.
func (s *LineupService) SetLineup(ctx context.Context, caller user.Principal, input SetLineupInput) (LineupView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.SetLineup")
	defer span.End()

	if err := requireManageMatch(caller); err != nil {
		return LineupView{}, err
	}

	matchID := strings.TrimSpace(input.MatchID)
	teamID := strings.TrimSpace(input.TeamID)
	if matchID == "" || teamID == "" {
		return LineupView{}, fmt.Errorf("%w: match_id and team_id are required", ErrInvalidInput)
	}
	formation, ok := lineup.LookupFormation(input.FormationName)
	if !ok {
		return LineupView{}, fmt.Errorf("%w: unknown formation %q", ErrInvalidInput, strings.TrimSpace(input.FormationName))
	}
	positions, err := validateAssignments(formation, input.Positions)
	if err != nil {
		return LineupView{}, err
	}

	unlock := s.locks.Lock(matchID)
	defer unlock()

	if err := s.requireParticipant(ctx, matchID, teamID); err != nil {
		return LineupView{}, err
	}

	current, exists, err := s.lineupRepo.Get(ctx, matchID, teamID)
	if err != nil {
		return LineupView{}, fmt.Errorf("get lineup: %w", err)
	}
	lineupID, version := current.ID, current.Version+1
	if !exists {
		version = 1
		lineupID, err = s.ids.NewID()
		if err != nil {
			return LineupView{}, fmt.Errorf("generate lineup id: %w", err)
		}
	}

	next := lineup.Lineup{
		ID:            lineupID,
		MatchID:       matchID,
		TeamID:        teamID,
		FormationName: formation.Name,
		Positions:     positions,
		UpdatedBy:     caller.UserID,
		UpdatedAt:     s.now().UTC(),
		Version:       version,
	}
	if err := s.lineupRepo.Upsert(ctx, next); err != nil {
		return LineupView{}, fmt.Errorf("upsert lineup: %w", err)
	}

	s.logger.InfoContext(ctx, "lineup set",
		"match_id", matchID,
		"team_id", teamID,
		"formation", formation.Name,
		"positions", len(positions),
		"version", next.Version,
	)

	view := s.resolve(ctx, next)
	if s.publisher != nil {
		s.publisher.Publish(ctx, realtime.Notification{
			MatchID:    matchID,
			Entity:     realtime.EntityLineup,
			Action:     realtime.ActionLineupSet,
			EntityID:   next.ID,
			Version:    next.Version,
			OccurredAt: next.UpdatedAt,
			Data:       view,
		})
	}
	return view, nil
}

// GetLineup returns the stored lineup re-validated against the current
// formation template and roster. Display lookups degrade to a blank name.
// A team with no lineup yet yields an empty view with IsSet false. Unknown
// matches and teams not playing in the match are rejected.
func (s *LineupService) GetLineup(ctx context.Context, matchID, teamID string) (LineupView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupService.GetLineup")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	teamID = strings.TrimSpace(teamID)
	if matchID == "" || teamID == "" {
		return LineupView{}, fmt.Errorf("%w: match_id and team_id are required", ErrInvalidInput)
	}
	if err := s.requireParticipant(ctx, matchID, teamID); err != nil {
		return LineupView{}, err
	}

	item, exists, err := s.lineupRepo.Get(ctx, matchID, teamID)
	if err != nil {
		return LineupView{}, fmt.Errorf("get lineup: %w", err)
	}
	if !exists {
		return LineupView{MatchID: matchID, TeamID: teamID, Positions: []PositionView{}}, nil
	}
	return s.resolve(ctx, item), nil
}

func (s *LineupService) requireParticipant(ctx context.Context, matchID, teamID string) error {
	item, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !item.HasTeam(teamID) {
		return fmt.Errorf("%w: team_id=%s is not playing in match=%s", ErrInvalidInput, teamID, matchID)
	}
	return nil
}

func (s *LineupService) resolve(ctx context.Context, item lineup.Lineup) LineupView {
	view := LineupView{
		MatchID:       item.MatchID,
		TeamID:        item.TeamID,
		FormationName: item.FormationName,
		Positions:     make([]PositionView, 0, len(item.Positions)),
		UpdatedBy:     item.UpdatedBy,
		UpdatedAt:     item.UpdatedAt,
		Version:       item.Version,
		IsSet:         true,
	}

	formation, ok := lineup.LookupFormation(item.FormationName)
	for _, a := range item.Positions {
		if !ok || !formation.Has(a.PositionCode) {
			s.logger.WarnContext(ctx, "dropping lineup slot outside formation",
				"match_id", item.MatchID,
				"team_id", item.TeamID,
				"formation", item.FormationName,
				"position", a.PositionCode,
			)
			continue
		}

		pv := PositionView{PositionCode: a.PositionCode, PlayerRef: a.PlayerRef, DisplayName: a.DisplayName}
		if pv.DisplayName == "" && pv.PlayerRef != "" && s.playerRepo != nil {
			p, found, err := s.playerRepo.GetByID(ctx, pv.PlayerRef)
			switch {
			case err != nil:
				s.logger.WarnContext(ctx, "resolve lineup player failed",
					"player_ref", pv.PlayerRef,
					"error", err,
				)
			case !found:
				pv.PlayerMissing = true
			default:
				pv.DisplayName = p.Name
			}
		}
		view.Positions = append(view.Positions, pv)
	}
	return view
}

func validateAssignments(formation lineup.Formation, in []lineup.Assignment) ([]lineup.Assignment, error) {
	if len(in) > len(formation.Positions) {
		return nil, fmt.Errorf("%w: formation %s has %d positions, got %d", ErrInvalidInput, formation.Name, len(formation.Positions), len(in))
	}

	out := make([]lineup.Assignment, 0, len(in))
	seenCodes := make(map[string]struct{}, len(in))
	seenPlayers := make(map[string]struct{}, len(in))
	for _, a := range in {
		a.PositionCode = strings.ToUpper(strings.TrimSpace(a.PositionCode))
		a.PlayerRef = strings.TrimSpace(a.PlayerRef)
		a.DisplayName = strings.TrimSpace(a.DisplayName)

		if !formation.Has(a.PositionCode) {
			return nil, fmt.Errorf("%w: position %q is not part of formation %s", ErrInvalidInput, a.PositionCode, formation.Name)
		}
		if _, dup := seenCodes[a.PositionCode]; dup {
			return nil, fmt.Errorf("%w: position %s assigned twice", ErrInvalidInput, a.PositionCode)
		}
		seenCodes[a.PositionCode] = struct{}{}

		if a.PlayerRef == "" && a.DisplayName == "" {
			return nil, fmt.Errorf("%w: position %s needs player_ref or display_name", ErrInvalidInput, a.PositionCode)
		}
		if utf8.RuneCountInString(a.DisplayName) > lineupDisplayNameMaxRunes {
			return nil, fmt.Errorf("%w: display_name for %s exceeds %d characters", ErrInvalidInput, a.PositionCode, lineupDisplayNameMaxRunes)
		}
		if a.PlayerRef != "" {
			if _, dup := seenPlayers[a.PlayerRef]; dup {
				return nil, fmt.Errorf("%w: player %s assigned to more than one position", ErrInvalidInput, a.PlayerRef)
			}
			seenPlayers[a.PlayerRef] = struct{}{}
		}
		out = append(out, a)
	}
	return out, nil
}
