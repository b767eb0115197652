package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday/internal/domain/match"
	"github.com/riskibarqy/matchday/internal/usecase"
)

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateMatch")
	defer span.End()

	principal, err := callerFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createMatchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.clockService.CreateMatch(ctx, principal, usecase.CreateMatchInput{
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create match failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchToDTO(created, nil))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := r.PathValue("matchID")
	view, err := h.clockService.GetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(view.Match, &view.Clock))
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshot")
	defer span.End()

	matchID := r.PathValue("matchID")
	snapshot, err := h.snapshotService.GetSnapshot(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get snapshot failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(snapshot))
}

func (h *Handler) StartFirstHalf(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartFirstHalf")
	defer span.End()

	principal, err := callerFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req startFirstHalfRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	updated, err := h.clockService.StartFirstHalf(ctx, principal, matchID, req.HalfDurationMinutes)
	h.writeClockResult(w, r.WithContext(ctx), matchID, match.TransitionStartFirstHalf, updated, err)
}

func (h *Handler) StartHalftime(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartHalftime")
	defer span.End()

	principal, err := callerFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	updated, err := h.clockService.StartHalftime(ctx, principal, matchID)
	h.writeClockResult(w, r.WithContext(ctx), matchID, match.TransitionStartHalftime, updated, err)
}

func (h *Handler) StartSecondHalf(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartSecondHalf")
	defer span.End()

	principal, err := callerFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	updated, err := h.clockService.StartSecondHalf(ctx, principal, matchID)
	h.writeClockResult(w, r.WithContext(ctx), matchID, match.TransitionStartSecondHalf, updated, err)
}

func (h *Handler) EndMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.EndMatch")
	defer span.End()

	principal, err := callerFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	updated, err := h.clockService.EndMatch(ctx, principal, matchID)
	h.writeClockResult(w, r.WithContext(ctx), matchID, match.TransitionEndMatch, updated, err)
}

func (h *Handler) writeClockResult(w http.ResponseWriter, r *http.Request, matchID string, t match.Transition, updated match.Match, err error) {
	ctx := r.Context()
	if err != nil {
		h.logger.WarnContext(ctx, "clock transition failed", "match_id", matchID, "transition", string(t), "error", err)
		writeError(ctx, w, err)
		return
	}

	clock := match.ReadClock(updated, updated.UpdatedAt)
	writeSuccess(ctx, w, http.StatusOK, matchToDTO(updated, &clock))
}
