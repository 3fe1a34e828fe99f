// Package limiter tracks failed share-code attempts in Redis so that every
// server instance sees the same counters and lockouts.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zenithbooks/zenithbooks/internal/config"
)

// failScript counts one failure.  The counter lives for the lockout window
// from the first failure; reaching the threshold replaces it with a lock key.
// Returns {failures, lock_ttl_ms}.
var failScript = redis.NewScript(`
	local fail_key = KEYS[1]
	local lock_key = KEYS[2]
	local threshold = tonumber(ARGV[1])
	local window_ms = tonumber(ARGV[2])

	local lock_ttl = redis.call('PTTL', lock_key)
	if lock_ttl > 0 then
		return { threshold, lock_ttl }
	end

	local n = redis.call('INCR', fail_key)
	if n == 1 then
		redis.call('PEXPIRE', fail_key, window_ms)
	end
	if n >= threshold then
		redis.call('SET', lock_key, n, 'PX', window_ms)
		redis.call('DEL', fail_key)
		return { n, window_ms }
	end
	return { n, 0 }
`)

// ErrUnavailable is returned by Locked and Fail when no Redis client is
// configured.  Callers decide whether to fail open.
var ErrUnavailable = errors.New("lockout store unavailable")

// Lockout implements the consecutive-failure lockout.  Without a client
// nothing is counted and Locked and Fail report ErrUnavailable.
type Lockout struct {
	rdb *redis.Client
	cfg config.LockoutConfig
}

func NewLockout(rdb *redis.Client, cfg config.LockoutConfig) *Lockout {
	return &Lockout{rdb: rdb, cfg: cfg}
}

func (l *Lockout) failKey(caller string) string { return l.cfg.Prefix + ":fail:" + caller }
func (l *Lockout) lockKey(caller string) string { return l.cfg.Prefix + ":lock:" + caller }

// Locked returns the remaining lockout for caller, or zero when not locked.
func (l *Lockout) Locked(ctx context.Context, caller string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, ErrUnavailable
	}
	ttl, err := l.rdb.PTTL(ctx, l.lockKey(caller)).Result()
	if err != nil {
		return 0, fmt.Errorf("lockout ttl: %w", err)
	}
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

// Fail records a failed attempt.  It returns the lockout now in force,
// which is non-zero once the threshold has been reached.
func (l *Lockout) Fail(ctx context.Context, caller string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, ErrUnavailable
	}
	vals, err := failScript.Run(ctx, l.rdb,
		[]string{l.failKey(caller), l.lockKey(caller)},
		l.cfg.Threshold, l.cfg.Window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return 0, fmt.Errorf("lockout fail: %w", err)
	}
	if len(vals) != 2 {
		return 0, fmt.Errorf("lockout fail: unexpected script result %v", vals)
	}
	return time.Duration(vals[1]) * time.Millisecond, nil
}

// Reset clears the failure counter after a successful attempt.  An active
// lock is left in place.
func (l *Lockout) Reset(ctx context.Context, caller string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	if err := l.rdb.Del(ctx, l.failKey(caller)).Err(); err != nil {
		return fmt.Errorf("lockout reset: %w", err)
	}
	return nil
}
