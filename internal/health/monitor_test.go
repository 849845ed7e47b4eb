package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"hybridai/internal/llm"
)

type stubBackend struct {
	name      string
	typ       string
	available bool
	text      string
	err       error
	delay     time.Duration
	calls     atomic.Int32
}

func (s *stubBackend) Name() string      { return s.name }
func (s *stubBackend) Type() string      { return s.typ }
func (s *stubBackend) IsAvailable() bool { return s.available }

func (s *stubBackend) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return llm.Result{}, ctx.Err()
		}
	}
	if s.err != nil {
		return llm.Result{}, s.err
	}
	return llm.Result{Text: s.text, Backend: s.name}, nil
}

func TestCheckAllHealthy(t *testing.T) {
	m := NewMonitor([]Prober{
		&stubBackend{name: "local", typ: llm.TypeLocal, available: true, text: "pong"},
		&stubBackend{name: "claude", typ: llm.TypeClaude, available: true, text: "pong"},
	}, time.Second)

	report := m.Check(context.Background())
	if report.Status != StatusHealthy {
		t.Errorf("status = %v, want healthy", report.Status)
	}
	if len(report.Backends) != 2 {
		t.Fatalf("got %d backends, want 2", len(report.Backends))
	}
	for _, b := range report.Backends {
		if b.Status != StatusHealthy {
			t.Errorf("%s status = %v, want healthy", b.Backend, b.Status)
		}
	}
}

func TestCheckAggregateIsWorst(t *testing.T) {
	tests := []struct {
		name  string
		other *stubBackend
		want  Status
	}{
		{"degraded backend degrades service", &stubBackend{name: "openai", typ: llm.TypeOpenAI, available: true, text: ""}, StatusDegraded},
		{"failed backend makes service unhealthy", &stubBackend{name: "openai", typ: llm.TypeOpenAI, available: true, err: errors.New("429")}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor([]Prober{
				&stubBackend{name: "local", typ: llm.TypeLocal, available: true, text: "pong"},
				tt.other,
			}, time.Second)

			if report := m.Check(context.Background()); report.Status != tt.want {
				t.Errorf("status = %v, want %v", report.Status, tt.want)
			}
		})
	}
}

func TestCheckNoBackendsIsUnhealthy(t *testing.T) {
	m := NewMonitor(nil, time.Second)
	if report := m.Check(context.Background()); report.Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy with no backends", report.Status)
	}
}

func TestCheckEmptyReplyIsDegraded(t *testing.T) {
	m := NewMonitor([]Prober{
		&stubBackend{name: "local", typ: llm.TypeLocal, available: true, text: ""},
	}, time.Second)

	report := m.Check(context.Background())
	if report.Backends[0].Status != StatusDegraded {
		t.Errorf("backend status = %v, want degraded for empty reply", report.Backends[0].Status)
	}
}

func TestCheckUnavailableBackendNotProbed(t *testing.T) {
	b := &stubBackend{name: "claude", typ: llm.TypeClaude, available: false}
	m := NewMonitor([]Prober{b}, time.Second)

	report := m.Check(context.Background())
	if b.calls.Load() != 0 {
		t.Error("unavailable backend must not receive a probe request")
	}
	if report.Backends[0].Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy for unconfigured backend", report.Backends[0].Status)
	}
}

func TestCheckProbesConcurrently(t *testing.T) {
	// Four backends each sleeping 100ms: concurrent probing finishes
	// well under the 400ms a serial sweep would need.
	backends := make([]Prober, 4)
	for i := range backends {
		backends[i] = &stubBackend{name: "b", typ: llm.TypeLocal, available: true, text: "pong", delay: 100 * time.Millisecond}
	}
	m := NewMonitor(backends, time.Second)

	start := time.Now()
	m.Check(context.Background())
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("probes took %v, expected concurrent fan-out", elapsed)
	}
}

func TestCheckProbeTimeout(t *testing.T) {
	m := NewMonitor([]Prober{
		&stubBackend{name: "slow", typ: llm.TypeLocal, available: true, text: "pong", delay: time.Second},
	}, 50*time.Millisecond)

	report := m.Check(context.Background())
	if report.Backends[0].Status != StatusUnhealthy {
		t.Errorf("status = %v, want unhealthy after probe timeout", report.Backends[0].Status)
	}
}

func TestLast(t *testing.T) {
	m := NewMonitor([]Prober{
		&stubBackend{name: "local", typ: llm.TypeLocal, available: true, text: "pong"},
	}, time.Second)

	if m.Last() != nil {
		t.Error("Last should be nil before any check")
	}
	m.Check(context.Background())
	if m.Last() == nil {
		t.Error("Last should return the most recent report")
	}
}
