package jobscheduler

import (
	"context"
	"time"
)

const PathReconcileScores = "/v1/internal/jobs/reconcile-scores"

// ReconcilePayload is the body of a reconcile-scores callback. An empty
// MatchID reconciles every match.
type ReconcilePayload struct {
	MatchID string `json:"match_id,omitempty"`
}

// Publisher schedules a delayed POST to one of the internal job endpoints.
type Publisher interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

func ReconcileDeduplicationID(matchID string) string {
	return "reconcile-" + matchID
}
