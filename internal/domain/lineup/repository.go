package lineup

import "context"

// Repository exposes lineup persistence operations.
type Repository interface {
	Get(ctx context.Context, matchID, teamID string) (Lineup, bool, error)
	// Upsert replaces the whole stored lineup for (match, team).
	Upsert(ctx context.Context, item Lineup) error
}
