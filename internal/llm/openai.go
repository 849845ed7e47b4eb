package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	. "hybridai/internal/logging"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible
// chat completion APIs.
type OpenAIProvider struct {
	name      string
	client    *openai.Client
	model     string
	available bool
}

// NewOpenAIProvider creates the OpenAI adapter. Missing API key is a
// construction error; the backend stays unavailable for the process
// lifetime.
func NewOpenAIProvider(name string, cfg BackendConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key not configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model not configured")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.URL != "" {
		baseURL := cfg.URL
		if !strings.HasSuffix(baseURL, "/v1") && !strings.HasSuffix(baseURL, "/v1/") {
			baseURL = strings.TrimSuffix(baseURL, "/") + "/v1"
		}
		config.BaseURL = baseURL
	}
	config.HTTPClient = &http.Client{Timeout: cfg.Timeout()}

	L_debug("openai provider created", "name", name, "model", cfg.Model, "timeout", cfg.Timeout())

	return &OpenAIProvider{
		name:      name,
		client:    openai.NewClientWithConfig(config),
		model:     cfg.Model,
		available: true,
	}, nil
}

// Name returns the backend instance name
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Type returns the adapter type
func (p *OpenAIProvider) Type() string {
	return TypeOpenAI
}

// IsAvailable returns true if construction succeeded
func (p *OpenAIProvider) IsAvailable() bool {
	return p.available
}

// Generate sends one chat completion request.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (Result, error) {
	if !p.available {
		return Result{}, ErrUnavailable{Backend: p.name, Reason: "not configured"}
	}

	startTime := time.Now()
	L_debug("openai: sending request", "model", p.model, "chars", len(req.Message))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(TypeOpenAI, req.Personality)},
			{Role: openai.ChatMessageRoleUser, Content: req.Message},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		L_warn("openai: request failed", "error", err, "errType", ClassifyError(err.Error()))
		return Result{}, fmt.Errorf("openai completion: %w", err)
	}

	latency := time.Since(startTime)

	var text string
	if len(resp.Choices) > 0 {
		text = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	L_debug("openai: request completed", "duration", latency.Round(time.Millisecond), "responseChars", len(text))

	return Result{Text: text, Backend: p.name, Latency: latency}, nil
}
