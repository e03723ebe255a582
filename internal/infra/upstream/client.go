package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fantasygw/internal/domain"
	"fantasygw/internal/infra/telemetry"
)

const maxBodyBytes = 64 << 20

// Options configures a Client.
type Options struct {
	Platform   string
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	AuthHeader string
	AuthToken  string
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    domain.Metrics
}

// FetchOptions tunes a single call.
type FetchOptions struct {
	// Endpoint is a low-cardinality label for logs and metrics.
	Endpoint string
	// Timeout overrides the client default when positive.
	Timeout time.Duration
}

// Client issues timed, cancellable GET requests against the platform API and
// maps every failure to a coded *domain.Error. It never retries.
type Client struct {
	platform   string
	baseURL    string
	timeout    time.Duration
	userAgent  string
	authHeader string
	authToken  string
	http       *http.Client
	logger     *zap.Logger
	metrics    domain.Metrics
}

func NewClient(opts Options) *Client {
	platform := strings.TrimSpace(opts.Platform)
	if platform == "" {
		platform = domain.PlatformSleeper
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = domain.DefaultUpstreamBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Duration(domain.DefaultUpstreamTimeoutSecs) * time.Second
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = domain.DefaultUpstreamUserAgent
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	return &Client{
		platform:   platform,
		baseURL:    baseURL,
		timeout:    timeout,
		userAgent:  userAgent,
		authHeader: strings.TrimSpace(opts.AuthHeader),
		authToken:  opts.AuthToken,
		http:       httpClient,
		logger:     logger.Named("upstream"),
		metrics:    metrics,
	}
}

// Platform returns the platform prefix used for error codes.
func (c *Client) Platform() string {
	return c.platform
}

// Fetch performs GET <baseURL><path> and returns the body of a 2xx response.
func (c *Client) Fetch(ctx context.Context, path string, opts FetchOptions) ([]byte, error) {
	start := time.Now()
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = path
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, status, err := c.do(callCtx, path)
	if err != nil {
		err = c.transportError(callCtx, endpoint, err)
	} else if status < 200 || status > 299 {
		err = c.MapStatus(status, body)
	}

	metric := domain.UpstreamMetric{Endpoint: endpoint, Status: status, Duration: time.Since(start)}
	if err != nil {
		metric.Code, _ = domain.CodeFrom(err)
		telemetry.LoggerWithRequest(ctx, c.logger).Warn("upstream request failed",
			telemetry.EventField(telemetry.EventUpstreamError),
			telemetry.EndpointField(endpoint),
			telemetry.DurationField(metric.Duration),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.metrics.ObserveUpstream(metric)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// FetchJSON fetches path and decodes the body into out.
func (c *Client) FetchJSON(ctx context.Context, path string, opts FetchOptions, out any) error {
	body, err := c.Fetch(ctx, path, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return c.codedError(domain.SuffixAPIError, fmt.Sprintf("decode %s response: %v", opts.Endpoint, err), err, 0)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.authHeader != "" && c.authToken != "" {
		req.Header.Set(c.authHeader, c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// MapStatus converts a non-2xx status into the coarse upstream error table.
func (c *Client) MapStatus(status int, body []byte) error {
	detail := snippet(body)
	switch status {
	case http.StatusNotFound:
		return c.codedError(domain.SuffixNotFound, withDetail("resource not found", detail), nil, status)
	case http.StatusTooManyRequests:
		return c.codedError(domain.SuffixRateLimit, withDetail("rate limited by upstream", detail), nil, status)
	case http.StatusBadRequest:
		return c.codedError(domain.SuffixBadRequest, withDetail("upstream rejected the request", detail), nil, status)
	default:
		return c.codedError(domain.SuffixAPIError, withDetail(fmt.Sprintf("upstream returned HTTP %d", status), detail), nil, status)
	}
}

// transportError separates cancellation and deadlines from connection failures.
func (c *Client) transportError(ctx context.Context, endpoint string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return c.codedError(domain.SuffixTimeout, fmt.Sprintf("request to %s timed out or was cancelled", endpoint), err, 0)
	}
	return c.codedError(domain.SuffixAPIError, fmt.Sprintf("network error calling %s: %v", endpoint, err), err, 0)
}

func (c *Client) codedError(suffix, msg string, cause error, status int) *domain.Error {
	return &domain.Error{
		Code:      domain.UpstreamCode(c.platform, suffix),
		Op:        "upstream.fetch",
		Message:   msg,
		Cause:     cause,
		Retryable: suffix == domain.SuffixTimeout || suffix == domain.SuffixRateLimit,
		Status:    status,
	}
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

func withDetail(msg, detail string) string {
	if detail == "" {
		return msg
	}
	return msg + ": " + detail
}
