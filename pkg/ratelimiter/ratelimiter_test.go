package ratelimiter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ripplesns/ripple/pkg/ratelimiter"
)

func newBucket(t *testing.T, cfg ratelimiter.Config) *ratelimiter.Bucket {
	t.Helper()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	tb, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)
	return tb
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	defer store.Close()

	_, err := ratelimiter.NewBucket(store, ratelimiter.Config{})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestBucket_Allow(t *testing.T) {
	t.Parallel()

	tb := newBucket(t, ratelimiter.Config{
		Capacity:       3,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	ctx := context.Background()

	for i := range 3 {
		res, err := tb.Allow(ctx, "key")
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "request %d should be allowed", i+1)
	}

	res, err := tb.Allow(ctx, "key")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Positive(t, res.RetryAfter())

	// Other keys are unaffected.
	other, err := tb.Allow(ctx, "other")
	require.NoError(t, err)
	assert.True(t, other.Allowed())
}

func TestBucket_Reset(t *testing.T) {
	t.Parallel()

	tb := newBucket(t, ratelimiter.Config{
		Capacity:       1,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})
	ctx := context.Background()

	_, err := tb.Allow(ctx, "key")
	require.NoError(t, err)

	res, err := tb.Allow(ctx, "key")
	require.NoError(t, err)
	require.False(t, res.Allowed())

	require.NoError(t, tb.Reset(ctx, "key"))

	res, err = tb.Allow(ctx, "key")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestBucket_Refill(t *testing.T) {
	t.Parallel()

	tb := newBucket(t, ratelimiter.Config{
		Capacity:       1,
		RefillRate:     1,
		RefillInterval: 50 * time.Millisecond,
	})
	ctx := context.Background()

	_, err := tb.Allow(ctx, "key")
	require.NoError(t, err)

	res, err := tb.Allow(ctx, "key")
	require.NoError(t, err)
	require.False(t, res.Allowed())

	time.Sleep(60 * time.Millisecond)

	res, err = tb.Allow(ctx, "key")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tb := newBucket(t, ratelimiter.Config{
		Capacity:       1,
		RefillRate:     1,
		RefillInterval: time.Hour,
	})

	handler := ratelimiter.Middleware(tb, ratelimiter.ByClientIP)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestByClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5000"
	assert.Equal(t, "192.0.2.7", ratelimiter.ByClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ratelimiter.ByClientIP(req))
}
