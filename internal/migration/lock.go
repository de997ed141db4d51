package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

const (
	lockKey = "batchbook:migration"
	lockTTL = 10 * time.Minute
)

// RedisLocker holds a Redis lock for the length of a run, so two API
// instances cannot migrate at once.
type RedisLocker struct {
	client *redislock.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

func (l *RedisLocker) Lock(ctx context.Context) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, lockKey, lockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrAlreadyRunning
	}

	if err != nil {
		return nil, fmt.Errorf("obtaining migration lock: %w", err)
	}

	return func(ctx context.Context) error {
		err := lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			return nil
		}

		return err
	}, nil
}

// NoLock is used when Redis is not configured.
type NoLock struct{}

func (NoLock) Lock(context.Context) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
