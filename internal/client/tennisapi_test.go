package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:         srv.URL,
		APIKey:          "test-key",
		Timeout:         5 * time.Second,
		RequestInterval: time.Millisecond,
	})

	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestGet_Success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"), "API key rides as a query parameter")
		w.Write([]byte(`{"ok":true}`))
	})

	body, err := c.Get(context.Background(), "rankings.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestGet_RetryAfter429(t *testing.T) {
	attempts := 0
	c, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"recovered":true}`))
	})

	body, err := c.Get(context.Background(), "rankings.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"recovered":true}`, string(body))
	assert.Equal(t, 2, attempts)
	require.Len(t, *slept, 1, "exactly one retry delay for one 429")
	assert.Equal(t, 2*time.Second, (*slept)[0], "first backoff starts at 2s")
}

func TestGet_HonorsRetryAfterHeader(t *testing.T) {
	attempts := 0
	c, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	})

	_, err := c.Get(context.Background(), "competitions.json")
	require.NoError(t, err)
	require.Len(t, *slept, 1)
	assert.Equal(t, 7*time.Second, (*slept)[0])
}

func TestGet_RateLimitExhausted(t *testing.T) {
	attempts := 0
	c, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Get(context.Background(), "rankings.json")
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 4, attempts, "initial attempt plus three retries")
	require.Len(t, *slept, 3)
	assert.Equal(t, 2*time.Second, (*slept)[0])
	assert.Equal(t, 4*time.Second, (*slept)[1])
	assert.Equal(t, 8*time.Second, (*slept)[2])

	// The exhausted backoff is front-loaded onto the next call.
	attempts = 0
	*slept = nil
	_, err = c.Get(context.Background(), "rankings.json")
	require.Error(t, err)
	require.NotEmpty(t, *slept)
	assert.Equal(t, 16*time.Second, (*slept)[0], "next call starts from the carried backoff hint")
}

func TestGet_BackoffCappedAt30s(t *testing.T) {
	c, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "300")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Get(context.Background(), "rankings.json")
	require.ErrorIs(t, err, ErrRateLimited)
	for _, d := range *slept {
		assert.LessOrEqual(t, d, 30*time.Second)
	}
}

func TestGet_NonRetryableStatus(t *testing.T) {
	c, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := c.Get(context.Background(), "seasons/sr:season:1/info.xml")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "non-429 errors carry the HTTP status")
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.Empty(t, *slept, "no retries for non-429 statuses")
}
