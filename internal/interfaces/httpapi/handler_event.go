package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday/internal/usecase"
)

func (h *Handler) AppendGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AppendGoal")
	defer span.End()

	principal, err := callerFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req appendGoalRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	res, err := h.eventService.AppendGoal(ctx, principal, usecase.AppendGoalInput{
		MatchID:          matchID,
		TeamID:           req.TeamID,
		PlayerRef:        req.PlayerRef,
		PlayerName:       req.PlayerName,
		Minute:           req.Minute,
		ExtraTimeMinutes: req.ExtraTimeMinutes,
		Caption:          req.Caption,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "append goal failed", "match_id", matchID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventResultToDTO(res))
}

func (h *Handler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AppendMessage")
	defer span.End()

	principal, err := callerFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req appendMessageRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	matchID := r.PathValue("matchID")
	item, err := h.eventService.AppendMessage(ctx, principal, usecase.AppendMessageInput{
		MatchID: matchID,
		Body:    req.Body,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "append message failed", "match_id", matchID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, eventToDTO(item))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteEvent")
	defer span.End()

	principal, err := callerFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	eventID := r.PathValue("eventID")
	res, err := h.eventService.SoftDelete(ctx, principal, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "delete event failed", "event_id", eventID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventResultToDTO(res))
}

// ListEvents pages newest first. next_cursor is the id of the last item and
// is only set when the page is full.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEvents")
	defer span.End()

	matchID := r.PathValue("matchID")
	query := r.URL.Query()
	pageSize, err := parsePageSize(query.Get("page_size"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.eventService.ListRecent(ctx, usecase.ListRecentInput{
		MatchID:  matchID,
		BeforeID: query.Get("before_id"),
		PageSize: pageSize,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list events failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	page := eventPageDTO{Items: eventsToDTO(items)}
	if len(items) > 0 && len(items) == usecase.NormalizeEventPageSize(pageSize) {
		page.NextCursor = items[len(items)-1].ID
	}

	writeSuccess(ctx, w, http.StatusOK, page)
}
