package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday/internal/usecase"
)

// RunReconcileScoresJob recomputes scores from the event log. With a
// match_id body it reconciles that match only, which is what the delayed
// full-time callback sends; an empty body reconciles every started match.
func (h *Handler) RunReconcileScoresJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunReconcileScoresJob")
	defer span.End()

	var req reconcileScoresRequest
	scoped, err := h.decodeOptionalRequest(ctx, r, &req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var result usecase.ReconcileResult
	if scoped {
		result, err = h.scoreService.ReconcileMatch(ctx, req.MatchID)
	} else {
		result, err = h.scoreService.ReconcileScores(ctx)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "reconcile scores job failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "reconcile scores job finished",
		"match_id", req.MatchID,
		"match_count", result.MatchCount,
		"updated_count", result.UpdatedCount,
		"failed_count", result.FailedCount,
	)

	updatedIDs := result.UpdatedIDs
	if updatedIDs == nil {
		updatedIDs = []string{}
	}
	writeSuccess(ctx, w, http.StatusOK, reconcileResultDTO{
		MatchCount:   result.MatchCount,
		UpdatedCount: result.UpdatedCount,
		FailedCount:  result.FailedCount,
		UpdatedIDs:   updatedIDs,
	})
}
