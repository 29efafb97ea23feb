package middleware

import (
	"testing"
	"time"
)

func TestIPRateLimiterAllowsUnderLimit(t *testing.T) {
	rl := NewIPRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request over the limit should be rejected")
	}
}

func TestIPRateLimiterIsPerIP(t *testing.T) {
	rl := NewIPRateLimiter(1, time.Minute)

	if !rl.Allow("1.1.1.1") {
		t.Fatal("first request from first ip should be allowed")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("first request from second ip should be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("second request from first ip should be rejected")
	}
}

func TestIPRateLimiterWindowExpiry(t *testing.T) {
	rl := NewIPRateLimiter(1, 20*time.Millisecond)

	if !rl.Allow("1.2.3.4") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("second immediate request should be rejected")
	}

	time.Sleep(30 * time.Millisecond)

	if !rl.Allow("1.2.3.4") {
		t.Error("request after the window should be allowed again")
	}
}
