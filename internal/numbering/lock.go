package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// ErrLockTimeout is returned when the series lock could not be taken in time.
var ErrLockTimeout = fmt.Errorf("numbering: lock wait timed out: %w", shared.ErrContention)

// Locker serialises number issuance for a series key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// NopLocker relies on the unique constraint alone.
type NopLocker struct{}

// Lock always succeeds immediately.
func (NopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker holds a SET NX lock owned by a random token.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewRedisLocker builds a locker. ttl bounds how long a crashed holder blocks the series.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl, wait: ttl, retry: 25 * time.Millisecond}
}

// Lock blocks until the key is free, ctx ends, or the wait budget runs out.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("numbering: acquire %s: %w", key, err)
		}
		if ok {
			return func() {
				// A fresh context lets the release run even when the request was cancelled.
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
