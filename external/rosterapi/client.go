package rosterapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday/internal/domain/player"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout      = 2 * time.Second
	maxResponseBodySize = 2 << 20
)

var errRosterTransient = crerr.New("roster api transient failure")

type ClientConfig struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client reads roster entries from the remote roster service. It
// satisfies player.Repository.
type Client struct {
	http       *fasthttp.Client
	baseURL    string
	token      string
	timeout    time.Duration
	maxRetries int
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[[]byte]
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                "matchday-roster",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBodySize,
		},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      strings.TrimSpace(cfg.Token),
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		logger:     logger.Named("rosterapi"),
	}
}

func (c *Client) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return player.Player{}, false, nil
	}

	raw, found, err := c.get(ctx, c.buildURL("players", playerID))
	if err != nil || !found {
		return player.Player{}, false, err
	}

	var envelope playerEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return player.Player{}, false, crerr.Wrapf(err, "decode roster player %s", playerID)
	}
	if strings.TrimSpace(envelope.Data.ID) == "" {
		return player.Player{}, false, nil
	}
	return envelope.Data.toDomain(), true, nil
}

func (c *Client) ListByTeam(ctx context.Context, teamID string) ([]player.Player, error) {
	raw, found, err := c.get(ctx, c.buildURL("teams", strings.TrimSpace(teamID), "players"))
	if err != nil {
		return nil, err
	}
	if !found {
		return []player.Player{}, nil
	}

	var envelope playerListEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, crerr.Wrapf(err, "decode roster for team %s", teamID)
	}

	out := make([]player.Player, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		out = append(out, item.toDomain())
	}
	return out, nil
}

// get returns found=false on 404. Transport failures and 5xx responses
// count against the circuit breaker and surface as ErrDependencyUnavailable.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, bool, error) {
	var (
		raw   []byte
		found bool
	)
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		body, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
			return c.executeRequest(ctx, fullURL)
		})
		if err != nil {
			return err
		}
		raw, found = body, body != nil
		return nil
	}, isCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "roster api circuit breaker rejected request")
			return nil, false, fmt.Errorf("%w: roster service is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
		if crerr.Is(err, errRosterTransient) {
			return nil, false, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return nil, false, err
	}
	return raw, found, nil
}

// executeRequest returns a nil body for 404.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, retry, err := c.doOnce(ctx, fullURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || attempt == c.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * 100 * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "roster api request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, bool, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if c.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.token)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, true, crerr.Mark(crerr.Wrap(err, "send roster request"), errRosterTransient)
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusNotFound:
		return nil, false, nil
	case status >= 200 && status < 300:
		return append([]byte(nil), resp.Body()...), false, nil
	case isRetryableStatus(status):
		return nil, true, crerr.Mark(crerr.Newf("roster status=%d", status), errRosterTransient)
	default:
		return nil, false, crerr.Newf("roster status=%d body=%s", status, abbreviate(resp.Body()))
	}
}

func (c *Client) buildURL(segments ...string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	_, _ = buf.WriteString("/v1")
	for _, segment := range segments {
		_ = buf.WriteByte('/')
		_, _ = buf.WriteString(url.PathEscape(segment))
	}
	return buf.String()
}

type playerPayload struct {
	ID          string `json:"id"`
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	ShirtNumber any    `json:"shirt_number"`
	Position    string `json:"position"`
}

type playerEnvelope struct {
	Data playerPayload `json:"data"`
}

type playerListEnvelope struct {
	Data []playerPayload `json:"data"`
}

func (p playerPayload) toDomain() player.Player {
	return player.Player{
		ID:          strings.TrimSpace(p.ID),
		TeamID:      strings.TrimSpace(p.TeamID),
		Name:        strings.TrimSpace(p.Name),
		ShirtNumber: shirtNumber(p.ShirtNumber),
		Position:    player.Position(strings.ToUpper(strings.TrimSpace(p.Position))),
	}
}

// shirtNumber accepts both numeric and string encodings.
func shirtNumber(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int64:
		return int(n)
	case string:
		out, _ := strconv.Atoi(strings.TrimSpace(n))
		return out
	default:
		return 0
	}
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errRosterTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}

func abbreviate(body []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(body))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
