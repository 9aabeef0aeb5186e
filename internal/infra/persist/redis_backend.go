package persist

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/infra/cache"
)

type RedisBackend struct {
	cache cache.Cache
}

var _ Backend = (*RedisBackend)(nil)

func NewRedisBackend(c cache.Cache) *RedisBackend {
	if c == nil {
		panic("redis backend dependency cache is nil")
	}
	return &RedisBackend{cache: c}
}

func (r *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save 快照不設過期
func (r *RedisBackend) Save(ctx context.Context, key string, data []byte) error {
	return r.cache.Set(ctx, key, data, 0)
}
