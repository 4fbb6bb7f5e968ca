package catalogimport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// LockName keeps two importers from paging the catalog at once.
	LockName       = "catalog-import"
	defaultLockTTL = 6 * time.Hour
)

// Lock coordinates exclusive import runs.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// lockStore is satisfied by *redis.Client.
type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DeleteIfEquals(ctx context.Context, key, expected string) (bool, error)
}

// RedisLock is a single-holder lease. The holder writes a random token and
// releases with a compare-and-delete, so a run that outlived its TTL cannot
// free a lease some later run now holds.
type RedisLock struct {
	store lockStore
	key   string
	ttl   time.Duration
	token string
}

func NewRedisLock(store lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	switch {
	case store == nil:
		return nil, errors.New("redis client required for lock")
	case key == "":
		return nil, errors.New("lock key is required")
	case ttl <= 0:
		ttl = defaultLockTTL
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

// Acquire is false, nil when someone else holds the lease.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	if l.token != "" {
		return false, fmt.Errorf("lock %s already held by this process", l.key)
	}
	token := uuid.NewString()
	won, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if won {
		l.token = token
	}
	return won, nil
}

// Release is a no-op when the lease is not held or has already expired.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""
	if _, err := l.store.DeleteIfEquals(ctx, l.key, token); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
