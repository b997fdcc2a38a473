package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout is returned when a lock could not be acquired before the context ended
var ErrLockTimeout = errors.New("lock acquisition timed out")

// releaseScript deletes the key only when it still holds our token
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Locker provides single-writer locks keyed by an arbitrary string
// ⭐ SSOT: cross-instance mutual exclusion lives here only
type Locker struct {
	client *Client
	prefix string
	ttl    time.Duration
	poll   time.Duration
}

// NewLocker creates a new lock helper. ttl bounds how long a crashed holder can block others.
func NewLocker(client *Client, prefix string, ttl time.Duration) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		poll:   25 * time.Millisecond,
	}
}

// Lock blocks until the lock for key is held or ctx is done.
// The returned function releases the lock; it is safe to call once.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	if !l.client.Enabled() {
		return nil, fmt.Errorf("redis lock %s: redis disabled", key)
	}

	fullKey := fmt.Sprintf("%s:lock:%s", l.prefix, key)
	token := uuid.NewString()
	rdb := l.client.Redis()

	for {
		ok, err := rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-time.After(l.poll):
		}
	}

	unlock := func() {
		// Release with a fresh context so a cancelled request still frees the key
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, rdb, []string{fullKey}, token).Err()
	}

	return unlock, nil
}
