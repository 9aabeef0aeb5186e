package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss key 不存在
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Ping(ctx context.Context) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
