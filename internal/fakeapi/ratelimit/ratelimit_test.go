package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestTokenBucket_Basic(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	bucket := NewTokenBucket(Config{Capacity: 5, RatePS: 2}, WithClock(clock.now))

	for i := 0; i < 5; i++ {
		assert.True(t, bucket.Allow(), "request %d", i+1)
	}
	assert.False(t, bucket.Allow())
}

func TestTokenBucket_Refill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	bucket := NewTokenBucket(Config{Capacity: 2, RatePS: 1}, WithClock(clock.now))

	bucket.Allow()
	bucket.Allow()
	require.False(t, bucket.Allow())

	clock.advance(1100 * time.Millisecond)
	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())

	// 補充不超過容量
	clock.advance(time.Hour)
	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())
}

func TestMiddleware(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(Config{Capacity: 1, RatePS: 1}, WithClock(clock.now))(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"message":"too many requests"}`, rec.Body.String())
}

func TestMiddlewareDisabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Middleware(Config{})(ok)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/p001", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
