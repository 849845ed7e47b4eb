// Package metrics provides in-process metrics for backend dispatch,
// fallback behavior and health probes. Snapshots feed the metrics
// endpoint.
package metrics

import (
	"sync"
	"time"
)

// MetricType represents the type of metric
type MetricType string

const (
	TypeTiming      MetricType = "timing"
	TypeCounter     MetricType = "counter"
	TypeSuccessFail MetricType = "success_fail"
)

// TimingMetric tracks timing statistics
type TimingMetric struct {
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

func (t *TimingMetric) record(d time.Duration) {
	t.Count++
	t.Total += d
	t.Last = d
	if t.Min == 0 || d < t.Min {
		t.Min = d
	}
	if d > t.Max {
		t.Max = d
	}
}

// Average returns the mean duration across all samples.
func (t *TimingMetric) Average() time.Duration {
	if t.Count == 0 {
		return 0
	}
	return t.Total / time.Duration(t.Count)
}

// SuccessFailMetric tracks success/failure counts
type SuccessFailMetric struct {
	Successes int64
	Failures  int64
	LastError string
}

// Snapshot is a point-in-time view of one metric path.
type Snapshot struct {
	Path      string     `json:"path"`
	Type      MetricType `json:"type"`
	Count     int64      `json:"count,omitempty"`
	AvgMs     float64    `json:"avg_ms,omitempty"`
	MinMs     float64    `json:"min_ms,omitempty"`
	MaxMs     float64    `json:"max_ms,omitempty"`
	LastMs    float64    `json:"last_ms,omitempty"`
	Value     int64      `json:"value,omitempty"`
	Successes int64      `json:"successes,omitempty"`
	Failures  int64      `json:"failures,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// Manager collects metrics keyed by slash-separated paths, e.g.
// "llm/openai/generate" or "orchestrator/exhausted".
type Manager struct {
	mu          sync.RWMutex
	timings     map[string]*TimingMetric
	counters    map[string]int64
	successFail map[string]*SuccessFailMetric
}

// NewManager creates an empty metrics manager.
func NewManager() *Manager {
	return &Manager{
		timings:     make(map[string]*TimingMetric),
		counters:    make(map[string]int64),
		successFail: make(map[string]*SuccessFailMetric),
	}
}

// RecordDuration records a timing sample for a path.
func (m *Manager) RecordDuration(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timings[path]
	if !ok {
		t = &TimingMetric{}
		m.timings[path] = t
	}
	t.record(d)
}

// IncrementCounter increments a counter path by one.
func (m *Manager) IncrementCounter(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[path]++
}

// RecordSuccess records a success for a path.
func (m *Manager) RecordSuccess(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getSuccessFail(path).Successes++
}

// RecordFailure records a failure with the failure reason.
func (m *Manager) RecordFailure(path, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sf := m.getSuccessFail(path)
	sf.Failures++
	sf.LastError = reason
}

// getSuccessFail returns the metric for a path, creating it if needed.
// Caller must hold the lock.
func (m *Manager) getSuccessFail(path string) *SuccessFailMetric {
	sf, ok := m.successFail[path]
	if !ok {
		sf = &SuccessFailMetric{}
		m.successFail[path] = sf
	}
	return sf
}

// Counter returns the current value of a counter path.
func (m *Manager) Counter(path string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[path]
}

// GetSnapshot returns a point-in-time view of all metrics.
func (m *Manager) GetSnapshot() map[string]Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := make(map[string]Snapshot, len(m.timings)+len(m.counters)+len(m.successFail))

	toMs := func(d time.Duration) float64 {
		return float64(d) / float64(time.Millisecond)
	}

	for path, t := range m.timings {
		snap[path] = Snapshot{
			Path:   path,
			Type:   TypeTiming,
			Count:  t.Count,
			AvgMs:  toMs(t.Average()),
			MinMs:  toMs(t.Min),
			MaxMs:  toMs(t.Max),
			LastMs: toMs(t.Last),
		}
	}

	for path, v := range m.counters {
		snap[path] = Snapshot{
			Path:  path,
			Type:  TypeCounter,
			Value: v,
		}
	}

	for path, sf := range m.successFail {
		snap[path] = Snapshot{
			Path:      path,
			Type:      TypeSuccessFail,
			Successes: sf.Successes,
			Failures:  sf.Failures,
			LastError: sf.LastError,
		}
	}

	return snap
}
