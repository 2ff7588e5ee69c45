package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter implements usecase.LoginLimiter as a Redis counter with a
// rolling window. The key is shared across all server instances, so the
// attempt limit holds fleet-wide.
type LoginLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
}

// NewLoginLimiter creates a new LoginLimiter counting attempts per key
// within window.
func NewLoginLimiter(client *redis.Client, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		client: client,
		prefix: "loginattempts:",
		window: window,
	}
}

// Hit records one attempt and returns the count within the current window.
func (l *LoginLimiter) Hit(ctx context.Context, key string) (int64, error) {
	fullKey := l.prefix + key

	count, err := l.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, err
	}

	// First attempt starts the window.
	if count == 1 {
		if err := l.client.Expire(ctx, fullKey, l.window).Err(); err != nil {
			return count, err
		}
	}

	return count, nil
}

// Reset clears the counter for key.
func (l *LoginLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}
