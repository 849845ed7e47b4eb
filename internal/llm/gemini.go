package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	. "hybridai/internal/logging"
	"google.golang.org/api/option"
)

// GeminiProvider implements the Provider interface for Google's Gemini
// API.
type GeminiProvider struct {
	name      string
	client    *genai.Client
	model     string
	timeout   time.Duration
	available bool
}

// NewGeminiProvider creates the Gemini adapter. Missing API key is a
// construction error; the backend stays unavailable for the process
// lifetime.
func NewGeminiProvider(ctx context.Context, name string, cfg BackendConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key not configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini model not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	L_debug("gemini provider created", "name", name, "model", cfg.Model, "timeout", cfg.Timeout())

	return &GeminiProvider{
		name:      name,
		client:    client,
		model:     cfg.Model,
		timeout:   cfg.Timeout(),
		available: true,
	}, nil
}

// Name returns the backend instance name
func (p *GeminiProvider) Name() string {
	return p.name
}

// Type returns the adapter type
func (p *GeminiProvider) Type() string {
	return TypeGemini
}

// IsAvailable returns true if construction succeeded
func (p *GeminiProvider) IsAvailable() bool {
	return p.available
}

// Generate sends one content generation request. The SDK has no
// per-client timeout, so the request deadline is applied here.
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (Result, error) {
	if !p.available {
		return Result{}, ErrUnavailable{Backend: p.name, Reason: "not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	startTime := time.Now()
	L_debug("gemini: sending request", "model", p.model, "chars", len(req.Message))

	model := p.client.GenerativeModel(p.model)
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	model.SetTemperature(req.Temperature)
	model.SystemInstruction = genai.NewUserContent(genai.Text(SystemPrompt(TypeGemini, req.Personality)))

	resp, err := model.GenerateContent(ctx, genai.Text(req.Message))
	if err != nil {
		L_warn("gemini: request failed", "error", err, "errType", ClassifyError(err.Error()))
		return Result{}, fmt.Errorf("gemini completion: %w", err)
	}

	latency := time.Since(startTime)

	var sb strings.Builder
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	text := strings.TrimSpace(sb.String())
	L_debug("gemini: request completed", "duration", latency.Round(time.Millisecond), "responseChars", len(text))

	return Result{Text: text, Backend: p.name, Latency: latency}, nil
}

// Close releases the underlying client.
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
