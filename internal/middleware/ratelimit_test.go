package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterIsAllowed(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	ip := "192.168.1.1"

	// First 3 attempts should be allowed
	for i := 0; i < 3; i++ {
		if !rl.IsAllowed(ip) {
			t.Errorf("Attempt %d should be allowed", i+1)
		}
	}

	// 4th attempt should be blocked
	if rl.IsAllowed(ip) {
		t.Error("4th attempt should be blocked")
	}

	// Different IP should still be allowed
	if !rl.IsAllowed("192.168.1.2") {
		t.Error("Different IP should be allowed")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)

	ip := "192.168.1.1"

	if !rl.IsAllowed(ip) {
		t.Error("First attempt should be allowed")
	}
	if rl.IsAllowed(ip) {
		t.Error("Second attempt inside the window should be blocked")
	}

	time.Sleep(60 * time.Millisecond)

	if !rl.IsAllowed(ip) {
		t.Error("Attempt after the window should be allowed")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("First request should pass, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Second request should be rate limited, got %d", rr.Code)
	}
}
