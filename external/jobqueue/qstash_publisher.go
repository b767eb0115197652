package jobqueue

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

// QStashPublisher schedules delayed callbacks into this service's internal
// job endpoints. QStash forwards the internal job token on delivery.
type QStashPublisher struct {
	client           *http.Client
	publishBaseURL   string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) (*QStashPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	publishBaseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	return &QStashPublisher{
		client:           &http.Client{Timeout: timeout},
		publishBaseURL:   publishBaseURL,
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    targetBaseURL,
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger.Named("qstash"),
		breaker:          resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

// Enqueue asks QStash to POST payload to path after delay. A non-empty
// deduplicationID collapses repeated requests for the same job.
func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	targetURL := p.targetBaseURL + path
	publishURL := p.publishBaseURL + "/v2/publish/" + targetURL
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.delay", formatDelay(delay)),
			attribute.String("qstash.deduplication_id", deduplicationID),
		)
	}

	err = p.breaker.Do(ctx, func(ctx context.Context) error {
		return p.publish(ctx, publishURL, body, delay, deduplicationID)
	}, isCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			p.logger.WarnContext(ctx, "qstash circuit open, job dropped", "path", path, "deduplication_id", deduplicationID)
		}
		return crerr.Wrapf(err, "publish qstash job target_url=%s", targetURL)
	}

	p.logger.InfoContext(ctx, "qstash job published",
		"path", path,
		"delay", formatDelay(delay),
		"deduplication_id", deduplicationID,
	)
	return nil
}

func (p *QStashPublisher) publish(ctx context.Context, publishURL string, body []byte, delay time.Duration, deduplicationID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if delay > 0 {
		req.Header.Set("Upstash-Delay", formatDelay(delay))
	}
	if id := strings.TrimSpace(deduplicationID); id != "" {
		req.Header.Set("Upstash-Deduplication-Id", id)
	}
	if p.internalJobToken != "" {
		req.Header.Set("Upstash-Forward-X-Internal-Job-Token", p.internalJobToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "qstash request"), errQStashTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw := readErrorBody(resp.Body)
	statusErr := crerr.Newf("qstash status=%d body=%s", resp.StatusCode, raw)
	if isRetryableStatus(resp.StatusCode) {
		return crerr.Mark(statusErr, errQStashTransient)
	}
	return statusErr
}

func readErrorBody(r io.Reader) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.ReadFrom(io.LimitReader(r, 4096))
	return strings.TrimSpace(buf.String())
}

func formatDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return fmt.Sprintf("%ds", int(delay.Round(time.Second).Seconds()))
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errQStashTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
