package player

import "context"

// Repository is the roster lookup used for display resolution and
// existence checks.
type Repository interface {
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	ListByTeam(ctx context.Context, teamID string) ([]Player, error)
}
