package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(Config{RequestsPerMinute: 60, Burst: 2})
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("a") {
		t.Error("third immediate request should be rejected")
	}
	if !l.Allow("b") {
		t.Error("clients are limited independently")
	}

	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Error("one token refills per second at 60/min")
	}
	if l.Rejected() != 1 {
		t.Errorf("Rejected() = %d, want 1", l.Rejected())
	}
}

func TestLimiter_ForgetIdle(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(Config{RequestsPerMinute: 10, IdleTimeout: time.Minute})
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(30 * time.Second)
	l.Allow("b")
	now = now.Add(45 * time.Second)

	if n := l.forgetIdle(); n != 1 {
		t.Errorf("forgetIdle() = %d, want 1", n)
	}
	if l.ActiveClients() != 1 {
		t.Errorf("ActiveClients() = %d, want 1", l.ActiveClients())
	}
}

func TestMiddleware_WritesOnly(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1, Burst: 1})
	h := l.Middleware(func(*http.Request) string { return "ip" }, WritesOnly)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }),
	)

	do := func(method string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/", nil))
		return rec.Code
	}

	if got := do(http.MethodPost); got != http.StatusNoContent {
		t.Fatalf("first POST = %d", got)
	}
	if got := do(http.MethodPost); got != http.StatusTooManyRequests {
		t.Errorf("second POST = %d, want 429", got)
	}
	for i := 0; i < 5; i++ {
		if got := do(http.MethodGet); got != http.StatusNoContent {
			t.Fatalf("GET = %d, reads are not limited", got)
		}
	}
}
