package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/doctorbookings/homevisit-api/pkg/logging"
)

// RedisLimiter is a sliding-window limiter over a Redis sorted set per
// client, for deployments running more than one instance. Each submission is
// a member scored by its unix-millisecond timestamp; the window is applied by
// trimming scores older than now-window before counting.
//
// Redis errors fail open: a broken limiter backend must not block patients
// from booking.
type RedisLimiter struct {
	client redis.UniversalClient
	max    int
	window time.Duration
	prefix string
	logger *logging.Logger
}

// NewRedisLimiter allows at most max submissions per client in any trailing
// window, with per-client keys namespaced by prefix.
func NewRedisLimiter(client redis.UniversalClient, max int, window time.Duration, prefix string, logger *logging.Logger) *RedisLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisLimiter{
		client: client,
		max:    max,
		window: window,
		prefix: prefix,
		logger: logger,
	}
}

// Admit implements Limiter.
func (l *RedisLimiter) Admit(ctx context.Context, key string, now time.Time) bool {
	rkey := l.prefix + key
	cutoff := now.Add(-l.window).UnixMilli()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "-inf", strconv.FormatInt(cutoff, 10))
	count := pipe.ZCard(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("rate limiter redis error, failing open", "error", err)
		return true
	}

	if count.Val() >= int64(l.max) {
		return false
	}

	add := l.client.TxPipeline()
	add.ZAdd(ctx, rkey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	add.Expire(ctx, rkey, l.window)
	if _, err := add.Exec(ctx); err != nil {
		l.logger.Error("rate limiter redis error, failing open", "error", err)
	}
	return true
}

// Sweep implements Limiter. Redis expires idle client keys via TTL, so there
// is nothing to trim out-of-band.
func (l *RedisLimiter) Sweep(context.Context, time.Time) {}

var (
	_ Limiter = (*MemoryLimiter)(nil)
	_ Limiter = (*RedisLimiter)(nil)
)
