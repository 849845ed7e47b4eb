// Package health probes the configured backends concurrently and
// aggregates their states into a single service status.
package health

import (
	"context"
	"sync"
	"time"

	"hybridai/internal/llm"
	. "hybridai/internal/logging"
)

// Status is one of the three aggregate service states.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// severity orders statuses for worst-of aggregation.
func severity(s Status) int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

const (
	defaultProbeTimeout = 5 * time.Second

	// slowThreshold marks a responding backend degraded.
	slowThreshold = 2 * time.Second
)

// BackendHealth is the probe outcome for one backend.
type BackendHealth struct {
	Backend   string    `json:"backend"`
	Type      string    `json:"type"`
	Status    Status    `json:"status"`
	LatencyMS float64   `json:"latency_ms"`
	LastCheck time.Time `json:"last_check"`
	Error     string    `json:"error,omitempty"`
}

// Report is the full aggregated health report.
type Report struct {
	Status        Status          `json:"status"`
	Timestamp     time.Time       `json:"timestamp"`
	UptimeSeconds float64         `json:"uptime_seconds"`
	Backends      []BackendHealth `json:"backends"`
}

// Prober is the surface the monitor needs from a backend. Satisfied
// by llm.Provider.
type Prober interface {
	Name() string
	Type() string
	IsAvailable() bool
	Generate(ctx context.Context, req llm.Request) (llm.Result, error)
}

// Monitor fans probes out to every backend and keeps the last report.
// Probes go straight to the adapters; they never touch orchestrator
// state or consume rate quota.
type Monitor struct {
	backends []Prober
	timeout  time.Duration
	started  time.Time

	mu   sync.RWMutex
	last *Report
}

// NewMonitor creates a monitor over the given backends. Probe order
// in the report follows the slice order.
func NewMonitor(backends []Prober, probeTimeout time.Duration) *Monitor {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	return &Monitor{
		backends: backends,
		timeout:  probeTimeout,
		started:  time.Now(),
	}
}

// Check probes every backend concurrently and returns the aggregated
// report. The aggregate status is the worst individual status; a
// monitor with no backends reports unhealthy.
func (m *Monitor) Check(ctx context.Context) Report {
	results := make([]BackendHealth, len(m.backends))

	var wg sync.WaitGroup
	for i, b := range m.backends {
		wg.Add(1)
		go func(i int, b Prober) {
			defer wg.Done()
			results[i] = m.probe(ctx, b)
		}(i, b)
	}
	wg.Wait()

	status := StatusHealthy
	if len(results) == 0 {
		status = StatusUnhealthy
	}
	for _, r := range results {
		if severity(r.Status) > severity(status) {
			status = r.Status
		}
	}

	report := Report{
		Status:        status,
		Timestamp:     time.Now(),
		UptimeSeconds: time.Since(m.started).Seconds(),
		Backends:      results,
	}

	m.mu.Lock()
	m.last = &report
	m.mu.Unlock()

	if status != StatusHealthy {
		L_warn("health: service not fully healthy", "status", status, "backends", len(results))
	} else {
		L_debug("health: all backends healthy", "backends", len(results))
	}

	return report
}

// Last returns the most recent report without probing, or nil when no
// check has run yet.
func (m *Monitor) Last() *Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// probe issues a minimal one-token request against a single backend.
func (m *Monitor) probe(ctx context.Context, b Prober) BackendHealth {
	h := BackendHealth{Backend: b.Name(), Type: b.Type(), LastCheck: time.Now()}

	if !b.IsAvailable() {
		h.Status = StatusUnhealthy
		h.Error = "not configured"
		return h
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	res, err := b.Generate(ctx, llm.Request{Message: "ping", MaxTokens: 5})
	latency := time.Since(start)
	h.LatencyMS = float64(latency.Microseconds()) / 1000.0

	switch {
	case err != nil:
		h.Status = StatusUnhealthy
		h.Error = err.Error()
	case res.Empty():
		h.Status = StatusDegraded
		h.Error = "empty response"
	case latency >= slowThreshold:
		h.Status = StatusDegraded
	default:
		h.Status = StatusHealthy
	}
	return h
}
