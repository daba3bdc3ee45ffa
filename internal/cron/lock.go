package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

const defaultLockTTL = 5 * time.Minute

// Lock coordinates exclusive cron runs.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// RedisLock is a token-owned Redis lock; only the holder's token can release it.
type RedisLock struct {
	locker redis.Locker
	name   string
	ttl    time.Duration
	token  string
}

// NewRedisLock constructs a Redis-backed lock.
func NewRedisLock(locker redis.Locker, name string, ttl time.Duration) (*RedisLock, error) {
	if locker == nil {
		return nil, errors.New("redis client required for lock")
	}
	if name == "" {
		return nil, errors.New("lock name is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{locker: locker, name: name, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := instance.GetID() + ":" + uuid.NewString()
	ok, err := l.locker.AcquireLock(ctx, l.name, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", l.name, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release frees the lock if this instance still owns it.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	if err := l.locker.ReleaseLock(ctx, l.name, l.token); err != nil {
		return fmt.Errorf("release lock %s: %w", l.name, err)
	}
	l.token = ""
	return nil
}
