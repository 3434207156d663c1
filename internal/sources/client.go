package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mdaehl/PaperStream/internal/domain"
)

const (
	// maxBodySize limits how much of a response body is read.
	maxBodySize = 10 << 20

	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = time.Second
	defaultUserAgent  = "PaperStream/1.0"
)

// ClientConfig configures the throttled HTTP client.
type ClientConfig struct {
	// Source is the adapter name used in error values.
	Source string

	// Timeout is the request timeout for HTTP operations.
	Timeout time.Duration

	// RetryDelay is the wait before the single retry on server or
	// transport failures, unless the response carries Retry-After.
	RetryDelay time.Duration

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// APIKey is an optional API key for authentication.
	APIKey string

	// APIKeyHeader is the header name for the API key (e.g. "X-ELS-APIKey").
	// When empty the key is not sent as a header; adapters may still pass
	// it as a query parameter.
	APIKeyHeader string
}

// Client wraps http.Client with throttling and error classification.
// Every request first acquires the throttler, so interval pacing and the
// call budget cover retries as well. It is safe for concurrent use.
//
// Status mapping: 401/403 become domain.AuthError, 429 becomes
// domain.RateLimitError without a retry (the fallback layer decides what
// happens next), 404 becomes domain.NotFoundError, and 5xx or transport
// failures get one retry before surfacing as domain.NetworkError.
type Client struct {
	client    *http.Client
	throttler *Throttler
	config    ClientConfig
}

// NewClient creates a throttled HTTP client.
func NewClient(cfg ClientConfig, throttler *Throttler) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		throttler: throttler,
		config:    cfg,
	}
}

// Throttler exposes the client's throttler for budget inspection.
func (c *Client) Throttler() *Throttler {
	return c.throttler
}

// Get fetches the URL and returns the response body.
// Non-2xx statuses and transport failures are classified into the domain
// error taxonomy; the caller never sees a raw *http.Response.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.GetWithHeaders(ctx, rawURL, nil)
}

// GetWithHeaders fetches the URL with extra request headers.
func (c *Client) GetWithHeaders(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= 1; attempt++ {
		if err := c.throttler.Acquire(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		if c.config.APIKey != "" && c.config.APIKeyHeader != "" {
			req.Header.Set(c.config.APIKeyHeader, c.config.APIKey)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			lastErr = domain.NewNetworkError(c.config.Source, 0, err)
			if attempt == 0 {
				if err := c.waitForRetry(ctx, c.config.RetryDelay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				return nil, domain.NewNetworkError(c.config.Source, resp.StatusCode, readErr)
			}
			return body, nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, domain.NewAuthError(c.config.Source, resp.StatusCode, string(truncate(body, 256)))

		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, domain.NewRateLimitError(c.config.Source, retryAfter(resp))

		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.NewNotFoundError(c.config.Source, rawURL)

		case resp.StatusCode >= 500:
			lastErr = domain.NewNetworkError(c.config.Source, resp.StatusCode,
				fmt.Errorf("server returned status %d", resp.StatusCode))
			if attempt == 0 {
				delay := retryAfter(resp)
				if delay <= 0 {
					delay = c.config.RetryDelay
				}
				if err := c.waitForRetry(ctx, delay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr

		default:
			return nil, domain.NewNetworkError(c.config.Source, resp.StatusCode,
				fmt.Errorf("unexpected status %d", resp.StatusCode))
		}
	}

	return nil, lastErr
}

// retryAfter parses the Retry-After header as seconds or an HTTP date.
// Returns zero when absent or unparseable.
func retryAfter(resp *http.Response) time.Duration {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0
	}

	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		if seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		return 0
	}

	if t, err := http.ParseTime(value); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}

	return 0
}

// waitForRetry waits for the specified duration, respecting context cancellation.
func (c *Client) waitForRetry(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
