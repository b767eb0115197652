package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/domain/team"
	basecache "github.com/riskibarqy/matchday/internal/platform/cache"
)

type cachedLookup[T any] struct {
	value  T
	exists bool
}

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store[cachedLookup[team.Team]]
}

func NewTeamRepository(next team.Repository, ttl time.Duration) *TeamRepository {
	return &TeamRepository{next: next, cache: basecache.NewStore[cachedLookup[team.Team]](ttl)}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, "team:id:"+teamID, func(ctx context.Context) (cachedLookup[team.Team], error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return cachedLookup[team.Team]{}, err
		}
		return cachedLookup[team.Team]{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	return cached.value, cached.exists, nil
}

// PlayerRepository memoizes roster lookups used for display-name
// resolution. Misses are cached too, so a removed player stays flagged
// until the entry expires or Invalidate is called.
type PlayerRepository struct {
	next   player.Repository
	byID   *basecache.Store[cachedLookup[player.Player]]
	byTeam *basecache.Store[[]player.Player]
}

func NewPlayerRepository(next player.Repository, ttl time.Duration) *PlayerRepository {
	return &PlayerRepository{
		next:   next,
		byID:   basecache.NewStore[cachedLookup[player.Player]](ttl),
		byTeam: basecache.NewStore[[]player.Player](ttl),
	}
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	cached, err := r.byID.GetOrLoad(ctx, "player:id:"+playerID, func(ctx context.Context) (cachedLookup[player.Player], error) {
		item, exists, err := r.next.GetByID(ctx, playerID)
		if err != nil {
			return cachedLookup[player.Player]{}, err
		}
		return cachedLookup[player.Player]{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Player{}, false, err
	}

	return cached.value, cached.exists, nil
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	items, err := r.byTeam.GetOrLoad(ctx, "player:team:"+teamID, func(ctx context.Context) ([]player.Player, error) {
		items, err := r.next.ListByTeam(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	return append([]player.Player(nil), items...), nil
}

// Invalidate drops cached entries for one player and every team listing.
func (r *PlayerRepository) Invalidate(ctx context.Context, playerID string) {
	r.byID.Delete(ctx, "player:id:"+playerID)
	r.byTeam.DeletePrefix(ctx, "player:team:")
}
