package search

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RunLock is the dedup signal for search runs: a present key means a run for
// that order is in flight.
type RunLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisRunLock implements RunLock with SETNX and DEL.
type RedisRunLock struct {
	Client *redis.Client
}

func (l *RedisRunLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.Client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (l *RedisRunLock) Release(ctx context.Context, key string) error {
	return l.Client.Del(ctx, key).Err()
}
