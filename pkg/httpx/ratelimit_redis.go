package httpx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisWindowLimiter enforces a fixed-window policy with shared counters in
// Redis, so quotas hold across replicas. INCR creates the counter atomically;
// the first hit in a window attaches the expiry that implements the reset.
type RedisWindowLimiter struct {
	client *redis.Client
	policy WindowPolicy
	prefix string
}

func NewRedisWindowLimiter(client *redis.Client, policy WindowPolicy, prefix string) *RedisWindowLimiter {
	return &RedisWindowLimiter{
		client: client,
		policy: policy,
		prefix: prefix,
	}
}

func (l *RedisWindowLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	bucketKey := l.prefix + ":" + key

	count, err := l.client.Incr(ctx, bucketKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit redis incr: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, bucketKey, l.policy.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("ratelimit redis expire: %w", err)
		}
	}

	if count > int64(l.policy.MaxRequests) {
		ttl, err := l.client.PTTL(ctx, bucketKey).Result()
		if err != nil || ttl < 0 {
			// Counter without expiry (e.g. Expire failed after a crash):
			// report the full window rather than blocking forever.
			ttl = l.policy.Window
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: ttl}, nil
	}

	return Decision{
		Allowed:   true,
		Remaining: l.policy.MaxRequests - int(count),
	}, nil
}

// Reset clears a bucket. Only used by tests and operational tooling.
func (l *RedisWindowLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+":"+key).Err()
}

var _ WindowLimiter = (*RedisWindowLimiter)(nil)
