package orchestrator

import (
	"testing"

	"hybridai/internal/llm"
)

func allCandidates() []Candidate {
	return []Candidate{
		{Name: "local", Type: llm.TypeLocal},
		{Name: "openai", Type: llm.TypeOpenAI},
		{Name: "gemini", Type: llm.TypeGemini},
		{Name: "claude", Type: llm.TypeClaude},
	}
}

var defaultPriority = []string{"local", "openai", "gemini", "claude"}

func TestSelectBackendPersonalityRouting(t *testing.T) {
	tests := []struct {
		name        string
		personality string
		want        string
	}{
		{"creative routes to gemini", "creative", "gemini"},
		{"analytical routes to claude", "analytical", "claude"},
		{"fast routes to openai", "fast", "openai"},
		{"helpful follows priority", "helpful", "local"},
		{"unknown treated as helpful", "pirate", "local"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectBackend(tt.personality, allCandidates(), "", defaultPriority)
			if got != tt.want {
				t.Errorf("SelectBackend(%q) = %q, want %q", tt.personality, got, tt.want)
			}
		})
	}
}

func TestSelectBackendPersonalityBeatsAffinity(t *testing.T) {
	// Personality routing outranks the sticky backend.
	got := SelectBackend("creative", allCandidates(), "openai", defaultPriority)
	if got != "gemini" {
		t.Errorf("got %q, want gemini over sticky openai", got)
	}
}

func TestSelectBackendStickyAffinity(t *testing.T) {
	got := SelectBackend("helpful", allCandidates(), "claude", defaultPriority)
	if got != "claude" {
		t.Errorf("got %q, want sticky claude", got)
	}
}

func TestSelectBackendAffinityIgnoredWhenGone(t *testing.T) {
	candidates := []Candidate{
		{Name: "openai", Type: llm.TypeOpenAI},
		{Name: "claude", Type: llm.TypeClaude},
	}
	got := SelectBackend("helpful", candidates, "gemini", defaultPriority)
	if got != "openai" {
		t.Errorf("got %q, want openai from priority order", got)
	}
}

func TestSelectBackendCreativeBeatsLocalPriority(t *testing.T) {
	// Only the local runtime and a gemini backend: creative wins over
	// local's higher static priority.
	candidates := []Candidate{
		{Name: "local", Type: llm.TypeLocal},
		{Name: "gemini", Type: llm.TypeGemini},
	}
	got := SelectBackend("creative", candidates, "", defaultPriority)
	if got != "gemini" {
		t.Errorf("got %q, want gemini despite local priority", got)
	}
}

func TestSelectBackendPersonalityTargetMissing(t *testing.T) {
	// No gemini candidate: creative falls through to the normal chain.
	candidates := []Candidate{
		{Name: "openai", Type: llm.TypeOpenAI},
		{Name: "claude", Type: llm.TypeClaude},
	}
	got := SelectBackend("creative", candidates, "", defaultPriority)
	if got != "openai" {
		t.Errorf("got %q, want openai", got)
	}
}

func TestSelectBackendOutsidePriorityList(t *testing.T) {
	candidates := []Candidate{{Name: "extra", Type: llm.TypeOpenAI}}
	got := SelectBackend("helpful", candidates, "", defaultPriority)
	if got != "extra" {
		t.Errorf("got %q, want first candidate as final fallback", got)
	}
}

func TestSelectBackendEmpty(t *testing.T) {
	if got := SelectBackend("helpful", nil, "local", defaultPriority); got != "" {
		t.Errorf("got %q, want empty string for no candidates", got)
	}
}
