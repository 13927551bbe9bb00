package persistence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// LoginLimiter enforces a fixed-window attempt budget per scope and
// username, backed by Redis. When Redis is unreachable the limiter fails
// open: availability of login wins over throttling.
type LoginLimiter struct {
	redis  *Redis
	limit  int64
	window time.Duration
	logger *zap.Logger
}

// NewLoginLimiter builds a limiter. A nil or unconfigured Redis disables it.
func NewLoginLimiter(redis *Redis, limit int, window time.Duration, logger *zap.Logger) *LoginLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LoginLimiter{redis: redis, limit: int64(limit), window: window, logger: logger}
}

// Allow reports whether another attempt is permitted inside the current
// window.
func (l *LoginLimiter) Allow(ctx context.Context, scope, username string) bool {
	if l == nil || l.redis == nil || l.redis.Client == nil {
		return true
	}

	key := fmt.Sprintf("login_attempts:%s:%s", scope, username)
	n, err := l.redis.Client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("login limiter unavailable", zap.Error(err))
		return true
	}
	if n == 1 {
		if err := l.redis.Client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("login limiter expire", zap.Error(err))
		}
	}
	return n <= l.limit
}
