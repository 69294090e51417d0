package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// unlockLua deletes the lock only while it still carries the caller's token.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// refreshLua extends the TTL only while the caller still holds the lock.
const refreshLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 0
`

// LockManager implements domain.LockManager with SET NX and a token-checked
// unlock. It guards ownership of the simulation when several processes share
// one Redis.
type LockManager struct {
	client    *Client
	unlockSc  *redis.Script
	refreshSc *redis.Script
}

// NewLockManager creates a LockManager backed by c.
func NewLockManager(c *Client) *LockManager {
	return &LockManager{
		client:    c,
		unlockSc:  redis.NewScript(unlockLua),
		refreshSc: redis.NewScript(refreshLua),
	}
}

var _ domain.LockManager = (*LockManager)(nil)

func (lm *LockManager) lockKey(key string) string {
	return lm.client.Key("lock:" + key)
}

// Acquire obtains the lock for key. The returned unlock function is safe to
// call more than once. It returns domain.ErrLockHeld when another holder owns
// the key.
func (lm *LockManager) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	lk := lm.lockKey(key)
	rdb := lm.client.Underlying()

	ok, err := rdb.SetNX(ctx, lk, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLockHeld
	}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = lm.unlockSc.Run(unlockCtx, rdb, []string{lk}, token).Err()
		})
	}
	return unlock, nil
}

// Hold acquires key and keeps extending it every ttl/3 until ctx is
// cancelled or the lock is lost. It returns nil on cancellation and an error
// when the lock could not be taken or was lost.
func (lm *LockManager) Hold(ctx context.Context, key string, ttl time.Duration) error {
	token := uuid.NewString()
	lk := lm.lockKey(key)
	rdb := lm.client.Underlying()

	ok, err := rdb.SetNX(ctx, lk, token, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis: acquire lock %s: %w", key, err)
	}
	if !ok {
		return domain.ErrLockHeld
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = lm.unlockSc.Run(releaseCtx, rdb, []string{lk}, token).Err()
	}()

	ticker := time.NewTicker(max(ttl/3, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := lm.refreshSc.Run(ctx, rdb, []string{lk}, token, ttl.Milliseconds()).Int64()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("redis: refresh lock %s: %w", key, err)
			}
			if n == 0 {
				return fmt.Errorf("redis: lock %s lost", key)
			}
		}
	}
}
