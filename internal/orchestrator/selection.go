package orchestrator

import "hybridai/internal/llm"

// Candidate is one backend eligible for selection: available, not yet
// tried in this cascade, and inside its rate window.
type Candidate struct {
	Name string
	Type string
}

// SelectBackend picks one backend name from the candidate set.
// Priority, first match wins:
//  1. creative personality routes to a Gemini backend
//  2. analytical personality routes to a Claude backend
//  3. fast personality routes to an OpenAI backend
//  4. the backend that served the previous call (sticky affinity)
//  5. the static priority list, first candidate found
//  6. any remaining candidate
//
// Returns "" when the candidate set is empty.
func SelectBackend(personality string, candidates []Candidate, lastUsed string, priority []string) string {
	if len(candidates) == 0 {
		return ""
	}

	switch llm.NormalizePersonality(personality) {
	case llm.PersonalityCreative:
		if name := firstOfType(candidates, llm.TypeGemini); name != "" {
			return name
		}
	case llm.PersonalityAnalytical:
		if name := firstOfType(candidates, llm.TypeClaude); name != "" {
			return name
		}
	case llm.PersonalityFast:
		if name := firstOfType(candidates, llm.TypeOpenAI); name != "" {
			return name
		}
	}

	if lastUsed != "" && contains(candidates, lastUsed) {
		return lastUsed
	}

	for _, name := range priority {
		if contains(candidates, name) {
			return name
		}
	}

	return candidates[0].Name
}

func firstOfType(candidates []Candidate, backendType string) string {
	for _, c := range candidates {
		if c.Type == backendType {
			return c.Name
		}
	}
	return ""
}

func contains(candidates []Candidate, name string) bool {
	for _, c := range candidates {
		if c.Name == name {
			return true
		}
	}
	return false
}
