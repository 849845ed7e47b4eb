package metrics

import (
	"testing"
	"time"
)

func TestRecordDuration(t *testing.T) {
	m := NewManager()
	m.RecordDuration("llm/local/generate", 10*time.Millisecond)
	m.RecordDuration("llm/local/generate", 30*time.Millisecond)

	snap := m.GetSnapshot()
	s, ok := snap["llm/local/generate"]
	if !ok {
		t.Fatal("missing timing snapshot")
	}
	if s.Count != 2 {
		t.Errorf("Count = %d, want 2", s.Count)
	}
	if s.AvgMs != 20 {
		t.Errorf("AvgMs = %v, want 20", s.AvgMs)
	}
	if s.MinMs != 10 || s.MaxMs != 30 {
		t.Errorf("Min/Max = %v/%v, want 10/30", s.MinMs, s.MaxMs)
	}
}

func TestCounters(t *testing.T) {
	m := NewManager()
	m.IncrementCounter("orchestrator/fallback_used")
	m.IncrementCounter("orchestrator/fallback_used")

	if got := m.Counter("orchestrator/fallback_used"); got != 2 {
		t.Errorf("Counter = %d, want 2", got)
	}
	if got := m.Counter("never/seen"); got != 0 {
		t.Errorf("unseen counter = %d, want 0", got)
	}
}

func TestSuccessFail(t *testing.T) {
	m := NewManager()
	m.RecordSuccess("llm/openai")
	m.RecordSuccess("llm/openai")
	m.RecordFailure("llm/openai", "429")

	snap := m.GetSnapshot()
	s, ok := snap["llm/openai"]
	if !ok {
		t.Fatal("missing success/fail snapshot")
	}
	if s.Successes != 2 || s.Failures != 1 {
		t.Errorf("Successes/Failures = %d/%d, want 2/1", s.Successes, s.Failures)
	}
	if s.LastError != "429" {
		t.Errorf("LastError = %q, want 429", s.LastError)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := NewManager()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				m.IncrementCounter("shared")
				m.RecordDuration("timing", time.Millisecond)
				m.GetSnapshot()
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	if got := m.Counter("shared"); got != 800 {
		t.Errorf("Counter = %d, want 800", got)
	}
}
