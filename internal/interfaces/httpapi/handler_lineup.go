package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday/internal/usecase"
)

func (h *Handler) ListFormations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFormations")
	defer span.End()

	formations := h.lineupService.ListFormations(ctx)
	items := make([]formationDTO, 0, len(formations))
	for _, f := range formations {
		items = append(items, formationToDTO(f))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLineup")
	defer span.End()

	matchID := r.PathValue("matchID")
	teamID := r.PathValue("teamID")
	view, err := h.lineupService.GetLineup(ctx, matchID, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get lineup failed", "match_id", matchID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(view))
}

func (h *Handler) SetLineup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetLineup")
	defer span.End()

	principal, err := callerFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setLineupRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	teamID := r.PathValue("teamID")
	view, err := h.lineupService.SetLineup(ctx, principal, usecase.SetLineupInput{
		MatchID:       matchID,
		TeamID:        teamID,
		FormationName: req.FormationName,
		Positions:     assignmentsFromRequest(req.Positions),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set lineup failed", "match_id", matchID, "team_id", teamID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lineupToDTO(view))
}
