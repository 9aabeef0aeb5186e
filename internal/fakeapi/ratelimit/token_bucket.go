package ratelimit

import (
	"sync"
	"time"
)

type Config struct {
	Capacity int     // bucket 上限，也是瞬間可通過的請求數
	RatePS   float64 // tokens/秒
}

func (c Config) Enabled() bool {
	return c.RatePS > 0 && c.Capacity > 0
}

/*
TokenBucket 在 Allow 時依經過時間補充 token
不需要背景 goroutine，也就不需要 Stop
*/
type TokenBucket struct {
	Config
	mu           sync.Mutex
	tokens       float64
	lastRefilled time.Time
	now          func() time.Time
}

type Option func(*TokenBucket)

func WithClock(now func() time.Time) Option {
	return func(t *TokenBucket) {
		t.now = now
	}
}

func NewTokenBucket(config Config, opts ...Option) *TokenBucket {
	t := &TokenBucket{
		Config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.tokens = float64(config.Capacity)
	t.lastRefilled = t.now()
	return t
}

func (t *TokenBucket) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if elapsed := now.Sub(t.lastRefilled); elapsed > 0 {
		t.tokens = min(float64(t.Capacity), t.tokens+elapsed.Seconds()*t.RatePS)
		t.lastRefilled = now
	}
	if t.tokens < 1 {
		return false
	}
	t.tokens--
	return true
}
