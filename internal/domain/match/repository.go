package match

import "context"

// Repository exposes match persistence operations.
type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	Create(ctx context.Context, item Match) error
	// UpdateAtomic stores item only when the stored version still equals
	// expectedVersion, bumping the version on success. It returns the stored
	// match, or ErrVersionConflict when another writer got there first.
	UpdateAtomic(ctx context.Context, item Match, expectedVersion int64) (Match, error)
	ListByStatus(ctx context.Context, statuses ...Status) ([]Match, error)
}
