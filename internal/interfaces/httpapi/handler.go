package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchday/internal/domain/user"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/pubsub"
	"github.com/riskibarqy/matchday/internal/usecase"
)

const (
	maxRequestBodyBytes       = 1 << 20
	defaultStreamPingInterval = 25 * time.Second
)

var requestDecoder = sonic.Config{DisallowUnknownFields: true}.Froze()

type Handler struct {
	clockService    *usecase.ClockService
	eventService    *usecase.EventService
	lineupService   *usecase.LineupService
	snapshotService *usecase.SnapshotService
	scoreService    *usecase.ScoreService
	hub             *pubsub.Hub
	logger          *logging.Logger
	validator       *validator.Validate
	pingInterval    time.Duration
}

func NewHandler(
	clockService *usecase.ClockService,
	eventService *usecase.EventService,
	lineupService *usecase.LineupService,
	snapshotService *usecase.SnapshotService,
	scoreService *usecase.ScoreService,
	hub *pubsub.Hub,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		clockService:    clockService,
		eventService:    eventService,
		lineupService:   lineupService,
		snapshotService: snapshotService,
		scoreService:    scoreService,
		hub:             hub,
		logger:          logger.Named("httpapi"),
		validator:       validator.New(),
		pingInterval:    defaultStreamPingInterval,
	}
}

// SetStreamPingInterval sets how often idle stream connections are pinged.
func (h *Handler) SetStreamPingInterval(d time.Duration) {
	if d > 0 {
		h.pingInterval = d
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst and validates it. Unknown fields
// are rejected.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any) error {
	present, err := h.decodeOptionalRequest(ctx, r, dst)
	if err != nil {
		return err
	}
	if !present {
		return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
	}
	return nil
}

// decodeOptionalRequest is decodeRequest for endpoints where an empty body
// is meaningful. It reports whether a body was present.
func (h *Handler) decodeOptionalRequest(ctx context.Context, r *http.Request, dst any) (bool, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes+1))
	if err != nil {
		return false, fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if len(body) > maxRequestBodyBytes {
		return false, fmt.Errorf("%w: request body too large", usecase.ErrInvalidInput)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return false, nil
	}
	if err := requestDecoder.Unmarshal(body, dst); err != nil {
		return true, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return true, h.validateRequest(ctx, dst)
}

func callerFromRequest(r *http.Request) (user.Principal, error) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: missing auth principal", usecase.ErrUnauthorized)
	}
	return principal, nil
}

func parsePageSize(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: page_size must be an integer", usecase.ErrInvalidInput)
	}
	return size, nil
}
