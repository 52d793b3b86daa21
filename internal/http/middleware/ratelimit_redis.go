package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisLimitPrefix  = "accelerator:ratelimit:"
	redisLimitTimeout = 250 * time.Millisecond
)

// RedisLimiter counts calls in Redis so every instance shares one budget.
// Each window gets its own counter key, named after the window's start slot,
// which expires with the window. Errors from Redis let the call through.
type RedisLimiter struct {
	client redis.UniversalClient
	logger *slog.Logger
	now    func() time.Time
}

func NewRedisLimiter(client redis.UniversalClient, logger *slog.Logger) *RedisLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLimiter{client: client, logger: logger, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, policy Policy, subject ...string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key := policy.Key(subject...)
	if key == "" || policy.disabled() {
		return true
	}
	counter := l.counterKey(key, policy.Window)

	ctx, cancel := context.WithTimeout(ctx, redisLimitTimeout)
	defer cancel()
	var hits *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		hits = pipe.Incr(ctx, counter)
		pipe.PExpire(ctx, counter, policy.Window)
		return nil
	})
	if err != nil {
		l.logger.Warn("rate limit check skipped", slog.String("policy", policy.Name), slog.String("error", err.Error()))
		return true
	}
	return hits.Val() <= int64(policy.Limit)
}

func (l *RedisLimiter) counterKey(key string, window time.Duration) string {
	size := window.Milliseconds()
	if size <= 0 {
		size = 1
	}
	slot := l.now().UnixMilli() / size
	return redisLimitPrefix + key + ":" + strconv.FormatInt(slot, 10)
}
