package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestMemoryLimiterSlidingWindow(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(3, time.Second)
	start := time.Now()

	for i := 0; i < 3; i++ {
		if !l.Admit(ctx, "1.2.3.4", start.Add(time.Duration(i)*100*time.Millisecond)) {
			t.Fatalf("submission %d should be admitted", i+1)
		}
	}

	if l.Admit(ctx, "1.2.3.4", start.Add(400*time.Millisecond)) {
		t.Fatal("fourth submission within the window should be rejected")
	}

	// 1001ms after the first submission the window has slid past it.
	if !l.Admit(ctx, "1.2.3.4", start.Add(1001*time.Millisecond)) {
		t.Fatal("submission after the window slides should be admitted")
	}
}

func TestMemoryLimiterRejectDoesNotExtendWindow(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(1, time.Second)
	start := time.Now()

	if !l.Admit(ctx, "a", start) {
		t.Fatal("first submission should be admitted")
	}
	// Rejected attempts must not be recorded against the quota.
	if l.Admit(ctx, "a", start.Add(500*time.Millisecond)) {
		t.Fatal("second submission should be rejected")
	}
	if !l.Admit(ctx, "a", start.Add(1100*time.Millisecond)) {
		t.Fatal("submission after window should be admitted despite earlier reject")
	}
}

func TestMemoryLimiterIsolatesClients(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(2, time.Minute)
	now := time.Now()

	l.Admit(ctx, "client-a", now)
	l.Admit(ctx, "client-a", now)
	if l.Admit(ctx, "client-a", now) {
		t.Fatal("client-a should be exhausted")
	}

	if !l.Admit(ctx, "client-b", now) {
		t.Fatal("client-b must not be affected by client-a's quota")
	}
}

func TestMemoryLimiterSweep(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(5, time.Second)
	now := time.Now()

	l.Admit(ctx, "stale", now)
	l.Admit(ctx, "fresh", now.Add(900*time.Millisecond))

	l.Sweep(ctx, now.Add(1500*time.Millisecond))

	if got := l.tracked(); got != 1 {
		t.Fatalf("expected 1 tracked client after sweep, got %d", got)
	}

	// The stale client starts a fresh window.
	if !l.Admit(ctx, "stale", now.Add(2*time.Second)) {
		t.Fatal("swept client should be admitted again")
	}
}

func TestMemoryLimiterConcurrentAdmit(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLimiter(50, time.Minute)
	now := time.Now()

	var wg sync.WaitGroup
	admitted := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admitted <- l.Admit(ctx, "shared", now)
		}()
	}
	wg.Wait()
	close(admitted)

	count := 0
	for ok := range admitted {
		if ok {
			count++
		}
	}
	if count != 50 {
		t.Fatalf("expected exactly 50 admissions under concurrency, got %d", count)
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"forwarded chain uses first hop", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "203.0.113.9"},
		{"real ip fallback", map[string]string{"X-Real-Ip": "198.51.100.7"}, "198.51.100.7"},
		{"no headers", nil, UnknownClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientKey(r); got != tt.want {
				t.Fatalf("expected key %q, got %q", tt.want, got)
			}
		})
	}
}
