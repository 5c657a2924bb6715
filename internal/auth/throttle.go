package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts login attempts per key and blocks further attempts
// once a limit is reached. A successful login resets the count, so only
// failures and in-flight attempts accumulate.
type LoginThrottle interface {
	// Acquire counts one attempt for key and reports whether it is within
	// the limit. Counting and checking happen in one step.
	Acquire(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// ThrottleKey builds the throttle key for a login attempt.
func ThrottleKey(username, clientIP string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "|" + clientIP
}

// RedisThrottle stores attempt counters in Redis. Each attempt pushes the
// counter's expiry window forward.
type RedisThrottle struct {
	client      redis.Cmdable
	prefix      string
	maxAttempts int64
	window      time.Duration
}

// NewRedisThrottle constructs a RedisThrottle.
func NewRedisThrottle(client redis.Cmdable, maxAttempts int, window time.Duration) *RedisThrottle {
	return &RedisThrottle{
		client:      client,
		prefix:      "onlinestore:login_failures:",
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

// Acquire increments the counter for key and compares the new value with the
// limit, so concurrent attempts cannot all pass the check.
func (t *RedisThrottle) Acquire(ctx context.Context, key string) (bool, error) {
	var incr *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, t.prefix+key)
		pipe.Expire(ctx, t.prefix+key, t.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("auth: throttle incr: %w", err)
	}
	return incr.Val() <= t.maxAttempts, nil
}

// Reset clears the counter for key.
func (t *RedisThrottle) Reset(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, t.prefix+key).Err(); err != nil {
		return fmt.Errorf("auth: throttle reset: %w", err)
	}
	return nil
}

// NoopThrottle never blocks.
type NoopThrottle struct{}

func (NoopThrottle) Acquire(context.Context, string) (bool, error) { return true, nil }
func (NoopThrottle) Reset(context.Context, string) error            { return nil }
