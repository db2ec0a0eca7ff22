package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitrine-commerce/vitrine/internal/platform/httpx"
)

// LoginThrottle limits login attempts per client IP and username using a
// redis counter with a fixed window.
type LoginThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLoginThrottle constructs a LoginThrottle.
func NewLoginThrottle(client *redis.Client, limit int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, limit: int64(limit), window: window}
}

// Allow records an attempt and fails once the window limit is exceeded.
// A redis outage must not lock users out, so counter errors are ignored.
func (t *LoginThrottle) Allow(ctx context.Context, ip, username string) error {
	if t == nil || t.client == nil {
		return nil
	}
	key := fmt.Sprintf("login_attempts:%s:%s", ip, username)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return nil
	}
	if count == 1 {
		t.client.Expire(ctx, key, t.window)
	}
	if count > t.limit {
		return fmt.Errorf("%w: too many login attempts", httpx.ErrRateLimited)
	}
	return nil
}
