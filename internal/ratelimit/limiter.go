package ratelimit

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// UnknownClient buckets requests that arrive without a forwarded-address
// header. All such clients share one quota; a known precision gap.
const UnknownClient = "unknown"

// Limiter decides whether a client may submit again within the trailing
// window. Implementations must be safe for concurrent use.
type Limiter interface {
	// Admit records the submission and returns true when the client is under
	// its limit; over-limit calls are rejected without being recorded.
	Admit(ctx context.Context, key string, now time.Time) bool
	// Sweep drops state for clients with no submissions left in the window.
	Sweep(ctx context.Context, now time.Time)
}

// MemoryLimiter is a sliding-window limiter over a process-local map of
// per-client submission timestamps. State is lost on restart, which briefly
// resets abuse protection; accepted for a single-instance deployment.
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string][]time.Time
	max     int
	window  time.Duration
}

// NewMemoryLimiter allows at most max submissions per client in any trailing
// window.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		clients: make(map[string][]time.Time),
		max:     max,
		window:  window,
	}
}

// Admit implements Limiter.
func (l *MemoryLimiter) Admit(_ context.Context, key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := trimWindow(l.clients[key], now, l.window)
	if len(recent) >= l.max {
		l.clients[key] = recent
		return false
	}
	l.clients[key] = append(recent, now)
	return true
}

// Sweep implements Limiter. It bounds memory growth between requests, since
// no single request is guaranteed to touch every tracked client.
func (l *MemoryLimiter) Sweep(_ context.Context, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, times := range l.clients {
		recent := trimWindow(times, now, l.window)
		if len(recent) == 0 {
			delete(l.clients, key)
			continue
		}
		l.clients[key] = recent
	}
}

func (l *MemoryLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// trimWindow keeps only timestamps strictly within the trailing window.
func trimWindow(times []time.Time, now time.Time, window time.Duration) []time.Time {
	recent := times[:0:len(times)]
	for _, t := range times {
		if now.Sub(t) < window {
			recent = append(recent, t)
		}
	}
	return recent
}

// ClientKey derives the rate-limit bucket for a request from its forwarded
// address headers, falling back to the shared unknown bucket.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First hop is the original client.
		if ip := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xri != "" {
		return xri
	}
	return UnknownClient
}
