package orchestrator

import (
	"sync"
	"time"
)

// rateWindowDuration is the fixed sliding window for free-tier limits.
const rateWindowDuration = 60 * time.Second

type rateWindow struct {
	count int
	start time.Time
}

// RateLimiter tracks per-backend request counts over a fixed 60-second
// window. Only successful dispatches consume quota; a throttled backend
// is treated as unavailable for the rest of its window.
type RateLimiter struct {
	mu      sync.Mutex
	limits  map[string]int
	windows map[string]*rateWindow
	now     func() time.Time
}

// NewRateLimiter creates a limiter with per-backend request limits.
// Backends without an entry are never limited.
func NewRateLimiter(limits map[string]int) *RateLimiter {
	return &RateLimiter{
		limits:  limits,
		windows: make(map[string]*rateWindow),
		now:     time.Now,
	}
}

// Check reports whether a backend may be dispatched to. An expired
// window resets the count before the limit is applied.
func (r *RateLimiter) Check(name string) bool {
	limit, ok := r.limits[name]
	if !ok {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.windows[name]
	if w == nil {
		return limit > 0
	}
	if r.now().Sub(w.start) > rateWindowDuration {
		w.count = 0
		w.start = r.now()
	}
	return w.count < limit
}

// Record consumes one unit of quota. Called only after a successful
// dispatch; failed attempts never count.
func (r *RateLimiter) Record(name string) {
	if _, ok := r.limits[name]; !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.windows[name]
	if w == nil {
		w = &rateWindow{start: r.now()}
		r.windows[name] = w
	}
	if r.now().Sub(w.start) > rateWindowDuration {
		w.count = 0
		w.start = r.now()
	}
	w.count++
}
