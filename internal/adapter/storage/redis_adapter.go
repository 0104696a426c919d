package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	lockKeyPrefix     = "lock:item:"
	lockRetryInterval = 20 * time.Millisecond
)

var releaseLockScript = redis.NewScript(`
local key = KEYS[1]
local token = ARGV[1]

if redis.call('GET', key) == token then
	return redis.call('DEL', key)
end

return 0
`)

var extendLockScript = redis.NewScript(`
local key = KEYS[1]
local token = ARGV[1]
local ttl = ARGV[2]

if redis.call('GET', key) == token then
	return redis.call('PEXPIRE', key, ttl)
end

return 0
`)

// RedisLocker is an ItemLocker shared by every replica that talks to the same
// Redis. While held, the lock is extended every ttl/3; it expires after ttl
// only if its holder dies.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

func (r *RedisLocker) Lock(ctx context.Context, itemID int64) (func(), error) {
	key := lockKey(itemID)
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(lockRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.keepAlive(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			if err := releaseLockScript.Run(releaseCtx, r.client, []string{key}, token).Err(); err != nil {
				r.logger.Warn("release item lock failed", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

// keepAlive extends the lock until stop is closed or the token no longer owns the key.
func (r *RedisLocker) keepAlive(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := r.ttl / 3
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			extended, err := extendLockScript.Run(ctx, r.client, []string{key}, token, r.ttl.Milliseconds()).Int()
			cancel()

			if err != nil {
				r.logger.Warn("extend item lock failed", zap.String("key", key), zap.Error(err))
				continue
			}
			if extended == 0 {
				r.logger.Error("item lock lost", zap.String("key", key))
				return
			}
		}
	}
}

func lockKey(itemID int64) string {
	return fmt.Sprintf("%s%d", lockKeyPrefix, itemID)
}
