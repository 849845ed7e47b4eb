package llm

import "testing"

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want ErrorType
	}{
		{"rate limit text", "rate limit exceeded, retry later", ErrorTypeRateLimit},
		{"429 status", "API returned status 429", ErrorTypeRateLimit},
		{"quota", "quota exceeded for this project", ErrorTypeRateLimit},
		{"overloaded text", "the model is overloaded", ErrorTypeOverloaded},
		{"503 status", "server returned 503 service unavailable", ErrorTypeOverloaded},
		{"auth invalid key", "invalid api key provided", ErrorTypeAuth},
		{"401 status", "request failed with status 401", ErrorTypeAuth},
		{"billing", "insufficient credit balance", ErrorTypeBilling},
		{"402 status", "payment required: 402", ErrorTypeBilling},
		{"timeout text", "context deadline exceeded", ErrorTypeTimeout},
		{"504 status", "upstream returned 504", ErrorTypeTimeout},
		{"format decode", "decode response: unexpected end of JSON input", ErrorTypeFormat},
		{"format malformed", "malformed completion payload", ErrorTypeFormat},
		{"unknown", "something odd happened", ErrorTypeUnknown},
		{"empty", "", ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.msg); got != tt.want {
				t.Errorf("ClassifyError(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestIsRateLimitMessage(t *testing.T) {
	if !IsRateLimitMessage("Rate Limit exceeded") {
		t.Error("expected case-insensitive rate limit match")
	}
	if IsRateLimitMessage("all good") {
		t.Error("unexpected rate limit match")
	}
}

func TestIsTimeoutMessage(t *testing.T) {
	if !IsTimeoutMessage("request timed out after 30s") {
		t.Error("expected timeout match")
	}
	if IsTimeoutMessage("completed fine") {
		t.Error("unexpected timeout match")
	}
}
