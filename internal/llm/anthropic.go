package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	. "hybridai/internal/logging"
)

// ClaudeProvider implements the Provider interface for Anthropic's
// Claude messages API.
type ClaudeProvider struct {
	name      string
	client    *anthropic.Client
	model     string
	available bool
}

// NewClaudeProvider creates the Claude adapter. Missing API key is a
// construction error; the backend stays unavailable for the process
// lifetime.
func NewClaudeProvider(name string, cfg BackendConfig) (*ClaudeProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key not configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic model not configured")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
	}
	if cfg.URL != "" {
		opts = append(opts, option.WithBaseURL(cfg.URL))
	}
	client := anthropic.NewClient(opts...)

	L_debug("claude provider created", "name", name, "model", cfg.Model, "timeout", cfg.Timeout())

	return &ClaudeProvider{
		name:      name,
		client:    &client,
		model:     cfg.Model,
		available: true,
	}, nil
}

// Name returns the backend instance name
func (p *ClaudeProvider) Name() string {
	return p.name
}

// Type returns the adapter type
func (p *ClaudeProvider) Type() string {
	return TypeClaude
}

// IsAvailable returns true if construction succeeded
func (p *ClaudeProvider) IsAvailable() bool {
	return p.available
}

// Generate sends one messages request.
func (p *ClaudeProvider) Generate(ctx context.Context, req Request) (Result, error) {
	if !p.available {
		return Result{}, ErrUnavailable{Backend: p.name, Reason: "not configured"}
	}

	startTime := time.Now()
	L_debug("claude: sending request", "model", p.model, "chars", len(req.Message))

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: SystemPrompt(TypeClaude, req.Personality)},
		},
		Temperature: anthropic.Float(float64(req.Temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Message)),
		},
	})
	if err != nil {
		L_warn("claude: request failed", "error", err, "errType", ClassifyError(err.Error()))
		return Result{}, fmt.Errorf("claude completion: %w", err)
	}

	latency := time.Since(startTime)

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	L_debug("claude: request completed", "duration", latency.Round(time.Millisecond), "responseChars", len(text))

	return Result{Text: text, Backend: p.name, Latency: latency}, nil
}
