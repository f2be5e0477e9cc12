// Package client wraps the third-party tennis-data API. All outbound
// calls funnel through one rate-limited, retry-aware GET path.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"fantasytennis/ingestion/internal/metrics"
)

// ErrRateLimited is returned once the bounded 429 retries are exhausted.
// HTTP handlers map it to a 429 so the operator can retry the whole
// invocation later.
var ErrRateLimited = errors.New("provider rate limit exceeded")

// StatusError is a non-2xx, non-429 provider response surfaced as-is.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

// Client is the tennis-data API client. The limiter enforces a fixed
// inter-request interval; backoffHint front-loads extra delay on the
// call after a 429 was observed (best-effort, not authoritative).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int

	backoffInitial time.Duration
	backoffMax     time.Duration

	mu          sync.Mutex
	backoffHint time.Duration

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Config holds client tuning knobs.
type Config struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	RequestInterval time.Duration
	MaxRetries      int
	BackoffInitial  time.Duration
	BackoffMax      time.Duration
}

// NewClient creates a tennis-data API client.
func NewClient(cfg Config) *Client {
	if cfg.RequestInterval <= 0 {
		cfg.RequestInterval = 200 * time.Millisecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = 2 * time.Second
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 30 * time.Second
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		limiter:        rate.NewLimiter(rate.Every(cfg.RequestInterval), 1),
		maxRetries:     cfg.MaxRetries,
		backoffInitial: cfg.BackoffInitial,
		backoffMax:     cfg.BackoffMax,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		sleep: func(ctx context.Context, d time.Duration) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d):
				return nil
			}
		},
	}
}

// Get performs a GET against the provider and returns the raw body. The
// API key rides along as a query parameter. 429 responses are retried
// with exponential backoff honoring Retry-After; any other non-2xx is
// surfaced immediately as a StatusError.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	if hint := c.takeBackoffHint(); hint > 0 {
		log.Debug().Dur("hint", hint).Str("path", path).Msg("Front-loading delay after earlier rate limit")
		if err := c.sleep(ctx, hint); err != nil {
			return nil, err
		}
	}

	backoff := c.backoffInitial
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		body, status, retryAfter, err := c.do(ctx, url)
		if err != nil {
			metrics.RecordProviderCall(path, "error", time.Since(start).Seconds())
			return nil, err
		}
		metrics.RecordProviderCall(path, strconv.Itoa(status), time.Since(start).Seconds())

		switch {
		case status >= 200 && status < 300:
			return body, nil

		case status == http.StatusTooManyRequests:
			if attempt == c.maxRetries {
				c.setBackoffHint(backoff)
				return nil, fmt.Errorf("%w after %d attempts", ErrRateLimited, attempt+1)
			}
			delay := backoff
			if retryAfter > 0 {
				delay = retryAfter
			}
			if delay > c.backoffMax {
				delay = c.backoffMax
			}
			log.Warn().
				Str("path", path).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("Provider rate limited, backing off")
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			backoff *= 2
			if backoff > c.backoffMax {
				backoff = c.backoffMax
			}

		default:
			return nil, &StatusError{Status: status, Body: truncate(string(body), 200)}
		}
	}

	return nil, ErrRateLimited
}

// do runs one HTTP round trip, returning the body, the status code and
// any Retry-After duration the provider advertised.
func (c *Client) do(ctx context.Context, url string) ([]byte, int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("api_key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json, application/xml, text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read provider response: %w", err)
	}

	return body, resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

// parseRetryAfter reads a delay-seconds Retry-After value; HTTP-date
// forms and garbage come back as zero.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func (c *Client) takeBackoffHint() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	hint := c.backoffHint
	c.backoffHint = 0
	return hint
}

func (c *Client) setBackoffHint(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > c.backoffMax {
		d = c.backoffMax
	}
	c.backoffHint = d
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
