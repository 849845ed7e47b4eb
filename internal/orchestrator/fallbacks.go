package orchestrator

import (
	_ "embed"
	"encoding/json"
	"os"
	"strings"

	. "hybridai/internal/logging"
)

//go:embed fallback_responses.json
var defaultFallbacksJSON []byte

// hardcodedFallback is the last resort when neither the requested key
// nor the "error" key exists in the table.
const hardcodedFallback = "I'm experiencing some technical difficulties. Please try again later."

// ResponseStore is the immutable canned-reply table consulted when
// every backend has failed. Loaded once at construction and owned by
// the orchestrator instance.
type ResponseStore struct {
	responses map[string]string
}

// NewResponseStore loads canned replies from a JSON file, or from the
// embedded defaults when path is empty or unreadable.
func NewResponseStore(path string) *ResponseStore {
	s := &ResponseStore{responses: make(map[string]string)}

	data := defaultFallbacksJSON
	if path != "" {
		if fileData, err := os.ReadFile(path); err == nil {
			data = fileData
		} else {
			L_warn("fallbacks: could not read file, using defaults", "path", path, "error", err)
		}
	}

	if err := json.Unmarshal(data, &s.responses); err != nil {
		L_error("fallbacks: could not parse responses", "error", err)
		// Re-parse the embedded defaults if a user file was broken.
		s.responses = make(map[string]string)
		if err := json.Unmarshal(defaultFallbacksJSON, &s.responses); err != nil {
			L_error("fallbacks: embedded defaults unparsable", "error", err)
		}
	}

	L_debug("fallbacks: store loaded", "entries", len(s.responses))
	return s
}

// Lookup resolves a canned reply: key, then the "error" key, then a
// hardcoded literal.
func (s *ResponseStore) Lookup(key string) string {
	if text, ok := s.responses[key]; ok {
		return text
	}
	if text, ok := s.responses["error"]; ok {
		return text
	}
	return hardcodedFallback
}

// greetingWords are the tokens that classify a message as a greeting.
var greetingWords = map[string]bool{
	"hello":     true,
	"hi":        true,
	"hey":       true,
	"greetings": true,
	"morning":   true,
	"afternoon": true,
	"evening":   true,
	"howdy":     true,
}

// IntentKey maps a message to a canned-reply key with a coarse keyword
// heuristic. Returns "greeting" for greeting-like messages, "" for
// everything else.
func IntentKey(message string) string {
	lower := strings.ToLower(message)
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	}) {
		if greetingWords[word] {
			return "greeting"
		}
	}
	return ""
}
