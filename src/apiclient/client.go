package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL           = "http://localhost:8000"
	defaultTimeout           = 30 * time.Second
	defaultStreamIdleTimeout = 2 * time.Minute
	defaultUserAgent         = "eventchat"
)

// Client is the backend API client.
type Client struct {
	config       Config
	httpClient   *http.Client
	streamClient *http.Client
	limiter      *rate.Limiter
	logger       *slog.Logger

	uaOnce    sync.Once
	userAgent string
}

// NewClient creates a new backend API client.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.StreamIdleTimeout == 0 {
		config.StreamIdleTimeout = defaultStreamIdleTimeout
	}
	if config.RetryCount == 0 {
		config.RetryCount = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api_client")

	limit := rate.Inf
	burst := 1
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
		if config.RateLimit > 1 {
			burst = int(config.RateLimit)
		}
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		// streams may legitimately stay open longer than Timeout; the idle
		// reader bounds silence instead
		streamClient: newStreamClient(config.Timeout),
		limiter:      rate.NewLimiter(limit, burst),
		logger:       logger,
	}
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// HealthCheck calls the backend health endpoint.
func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	url := c.config.BaseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.getUserAgent())

	return req, nil
}

// getUserAgent builds the User-Agent once, including the host platform
func (c *Client) getUserAgent() string {
	c.uaOnce.Do(func() {
		platform := runtime.GOOS
		if info, err := host.Info(); err == nil && info.Platform != "" {
			platform = info.Platform
			if info.PlatformVersion != "" {
				platform += " " + info.PlatformVersion
			}
		}
		c.userAgent = fmt.Sprintf("%s (%s; %s)", c.config.UserAgent, platform, runtime.GOARCH)
	})
	return c.userAgent
}

// do sends one request through the rate limiter.
func (c *Client) do(client *http.Client, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, c.wrapTransportError(req, err)
	}
	return resp, nil
}

// newStreamClient builds the client used for chat streams. The body has no
// overall deadline; the wait for response headers is bounded by timeout.
func newStreamClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}

// wrapTransportError turns deadline-style failures into TimeoutError
func (c *Client) wrapTransportError(req *http.Request, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TimeoutError{
			Operation: req.Method + " " + req.URL.Path,
			Duration:  c.config.Timeout,
			Cause:     err,
		}
	}
	return err
}

// doRequestWithRetry performs an idempotent HTTP request with retry logic.
// Only GET requests are retried; anything else is sent exactly once.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.do(c.httpClient, req)
	}

	var lastErr error

	logger := c.logger.With("method", "doRequestWithRetry", "url", req.URL.String())

	for i := 0; i < c.config.RetryCount; i++ {
		if i > 0 {
			delay := GetRetryDelay(lastErr, i, c.config.RetryDelay)
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(delay):
			}
		}

		resp, err := c.do(c.httpClient, req.Clone(req.Context()))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			lastErr = err
			logger.Debug("request attempt failed", "attempt", i+1, "error", err)
			continue
		}

		// Success or client error - return immediately
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Server error or rate limit - retry
		lastErr = c.handleError(resp)
		resp.Body.Close()
		logger.Debug("server error, retrying", "attempt", i+1, "status_code", resp.StatusCode)
	}

	logger.Error("request failed after all retries", "retry_count", c.config.RetryCount, "error", lastErr)
	return nil, fmt.Errorf("request failed after %d retries: %w", c.config.RetryCount, lastErr)
}

// handleError processes error responses from the API.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
		RequestID:  resp.Header.Get("X-Request-ID"),
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Error != nil:
			apiErr.Type = errResp.Error.Type
			apiErr.Message = errResp.Error.Message
			apiErr.Code = errResp.Error.Code
		case errResp.Detail != "":
			apiErr.Message = errResp.Detail
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = resp.Header.Get("Retry-After")
	}

	return apiErr
}

// getJSON performs a GET and decodes a JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

// postJSON performs a single POST with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	logger := c.logger.With("method", req.Method, "path", req.URL.Path)

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		logger.Warn("request failed", "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Debug("received error response", "status_code", resp.StatusCode)
		return c.handleError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyResponse
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
