package orchestrator

import (
	"testing"
	"time"
)

func TestRateLimiterBasic(t *testing.T) {
	r := NewRateLimiter(map[string]int{"openai": 3})

	for i := 0; i < 3; i++ {
		if !r.Check("openai") {
			t.Fatalf("check %d should pass", i)
		}
		r.Record("openai")
	}
	if r.Check("openai") {
		t.Error("fourth check should fail at limit 3")
	}
}

func TestRateLimiterUnlimitedBackend(t *testing.T) {
	r := NewRateLimiter(map[string]int{"openai": 3})

	for i := 0; i < 100; i++ {
		if !r.Check("local") {
			t.Fatal("backend without a limit must never be throttled")
		}
		r.Record("local")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	now := time.Now()
	r := NewRateLimiter(map[string]int{"gemini": 2})
	r.now = func() time.Time { return now }

	r.Record("gemini")
	r.Record("gemini")
	if r.Check("gemini") {
		t.Fatal("should be throttled at limit")
	}

	// Advance past the 60s window.
	now = now.Add(61 * time.Second)
	if !r.Check("gemini") {
		t.Fatal("expired window should reset the count")
	}
	r.Record("gemini")
	if !r.Check("gemini") {
		t.Fatal("one request into the new window should still pass with limit 2")
	}
}

func TestRateLimiterZeroLimit(t *testing.T) {
	r := NewRateLimiter(map[string]int{"claude": 0})
	if r.Check("claude") {
		t.Error("zero limit should always throttle")
	}
}

func TestRateLimiterFailedAttemptsDoNotCount(t *testing.T) {
	// The caller only Records successes. Checks alone never consume
	// quota.
	r := NewRateLimiter(map[string]int{"openai": 1})
	for i := 0; i < 10; i++ {
		if !r.Check("openai") {
			t.Fatal("checks must not consume quota")
		}
	}
	r.Record("openai")
	if r.Check("openai") {
		t.Error("recorded success should exhaust limit 1")
	}
}
