// Package llm provides the unified backend adapter interface and
// implementations for the completion backends hybridai can dispatch to.
package llm

import (
	"context"
	"strings"
	"time"
)

// Personality tags accepted by all backends. Unknown tags are treated
// as PersonalityHelpful, never as an error.
const (
	PersonalityHelpful    = "helpful"
	PersonalityCreative   = "creative"
	PersonalityAnalytical = "analytical"
	PersonalityFast       = "fast"
	PersonalityFunny      = "funny"
)

// Backend types. Config keys name backend instances; the type decides
// which adapter serves them and how the selection policy routes
// personalities.
const (
	TypeLocal  = "local"
	TypeOpenAI = "openai"
	TypeGemini = "gemini"
	TypeClaude = "claude"
)

// Request is one immutable generation request.
type Request struct {
	Message     string
	Personality string
	MaxTokens   int
	Temperature float32
}

// Result is the outcome of one backend attempt. An empty Text with a
// nil error means the backend answered with a semantically empty
// completion; callers must treat that the same as an error.
type Result struct {
	Text    string
	Backend string
	Latency time.Duration
}

// Empty reports whether the completion carried no usable text.
func (r Result) Empty() bool {
	return r.Text == ""
}

// Provider is the uniform contract every backend adapter implements.
// Implementations: LocalProvider, OpenAIProvider, GeminiProvider,
// ClaudeProvider.
type Provider interface {
	// Name returns the backend instance name (config key).
	Name() string

	// Type returns the adapter type (local, openai, gemini, claude).
	Type() string

	// IsAvailable reports whether construction succeeded. It is pure
	// and O(1); a backend that failed construction stays unavailable
	// for the process lifetime.
	IsAvailable() bool

	// Generate performs one blocking completion attempt. Network
	// failures, timeouts, non-2xx statuses and malformed payloads
	// return an error; a syntactically valid but empty completion
	// returns a Result with empty Text and no error.
	Generate(ctx context.Context, req Request) (Result, error)
}

// BackendConfig is the configuration for a single backend instance.
type BackendConfig struct {
	Type           string `json:"type"`           // "local", "openai", "gemini", "claude"
	APIKey         string `json:"apiKey"`         // For hosted backends
	URL            string `json:"url"`            // For the local runtime
	Model          string `json:"model"`          // Model name or local model identifier
	TimeoutSeconds int    `json:"timeoutSeconds"` // Per-request timeout
}

// Timeout returns the configured request timeout, applying the default
// when unset.
func (c BackendConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ErrUnavailable is returned when a backend is not available
type ErrUnavailable struct {
	Backend string
	Reason  string
}

func (e ErrUnavailable) Error() string {
	if e.Reason != "" {
		return e.Backend + " is unavailable: " + e.Reason
	}
	return e.Backend + " is unavailable"
}

// NormalizePersonality lowercases a personality tag and maps unknown
// tags to helpful.
func NormalizePersonality(p string) string {
	lower := strings.ToLower(p)
	switch lower {
	case PersonalityHelpful, PersonalityCreative, PersonalityAnalytical, PersonalityFast, PersonalityFunny:
		return lower
	default:
		return PersonalityHelpful
	}
}
