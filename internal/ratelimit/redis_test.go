package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/doctorbookings/homevisit-api/pkg/logging"
)

func newTestRedisLimiter(t *testing.T, max int, window time.Duration) *RedisLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, max, window, "test:leads:", logging.Default())
}

func TestRedisLimiterSlidingWindow(t *testing.T) {
	ctx := context.Background()
	l := newTestRedisLimiter(t, 3, time.Second)
	start := time.Now()

	for i := 0; i < 3; i++ {
		require.True(t, l.Admit(ctx, "1.2.3.4", start.Add(time.Duration(i)*100*time.Millisecond)),
			"submission %d should be admitted", i+1)
	}

	require.False(t, l.Admit(ctx, "1.2.3.4", start.Add(400*time.Millisecond)),
		"fourth submission within the window should be rejected")

	require.True(t, l.Admit(ctx, "1.2.3.4", start.Add(1001*time.Millisecond)),
		"submission after the window slides should be admitted")
}

func TestRedisLimiterIsolatesClients(t *testing.T) {
	ctx := context.Background()
	l := newTestRedisLimiter(t, 1, time.Minute)
	now := time.Now()

	require.True(t, l.Admit(ctx, "client-a", now))
	require.False(t, l.Admit(ctx, "client-a", now))
	require.True(t, l.Admit(ctx, "client-b", now))
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewRedisLimiter(client, 1, time.Minute, "test:leads:", logging.Default())

	mr.Close()

	// With the backend down, admission must not block patients.
	require.True(t, l.Admit(context.Background(), "client-a", time.Now()))
}
