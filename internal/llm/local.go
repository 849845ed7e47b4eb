package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	. "hybridai/internal/logging"
)

// LocalProvider serves completions from a local model runtime over its
// HTTP API. No credential, no rate limit. The model is verified once at
// construction; if that fails the backend stays unavailable for the
// process lifetime.
type LocalProvider struct {
	name      string
	url       string
	model     string
	client    *http.Client
	available bool
}

// localShowRequest is the request body for /api/show
type localShowRequest struct {
	Model string `json:"model"`
}

// localChatRequest is the request body for the runtime's chat API
type localChatRequest struct {
	Model    string             `json:"model"`
	Messages []localChatMessage `json:"messages"`
	Stream   bool               `json:"stream"`
	Options  *localOptions      `json:"options,omitempty"`
}

// localOptions carries per-request model options
type localOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}

type localChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type localChatResponse struct {
	Message localChatMessage `json:"message"`
	Done    bool             `json:"done"`
}

// NewLocalProvider creates the local runtime adapter. The constructor
// verifies the model exists in the runtime; a runtime that is down or
// missing the model yields a construction error.
func NewLocalProvider(name string, cfg BackendConfig) (*LocalProvider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("local runtime URL not configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("local model not configured")
	}

	p := &LocalProvider{
		name:   name,
		url:    strings.TrimSuffix(cfg.URL, "/"),
		model:  cfg.Model,
		client: &http.Client{Timeout: cfg.Timeout()},
	}

	if err := p.verifyModel(); err != nil {
		return nil, fmt.Errorf("local model %s: %w", cfg.Model, err)
	}
	p.available = true

	L_debug("local provider created", "name", name, "url", p.url, "model", p.model, "timeout", cfg.Timeout())
	return p, nil
}

// verifyModel checks the runtime has the configured model loaded.
func (p *LocalProvider) verifyModel() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.client.Timeout)
	defer cancel()

	jsonData, err := json.Marshal(localShowRequest{Model: p.model})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.url+"/api/show", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("runtime unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("runtime returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Name returns the backend instance name
func (p *LocalProvider) Name() string {
	return p.name
}

// Type returns the adapter type
func (p *LocalProvider) Type() string {
	return TypeLocal
}

// IsAvailable returns true if construction succeeded
func (p *LocalProvider) IsAvailable() bool {
	return p.available
}

// Generate sends one non-streaming chat request to the local runtime.
func (p *LocalProvider) Generate(ctx context.Context, req Request) (Result, error) {
	if !p.available {
		return Result{}, ErrUnavailable{Backend: p.name, Reason: "not configured"}
	}

	startTime := time.Now()
	L_debug("local: sending request", "model", p.model, "chars", len(req.Message))

	messages := []localChatMessage{
		{Role: "system", Content: SystemPrompt(TypeLocal, req.Personality)},
		{Role: "user", Content: req.Message},
	}

	reqBody := localChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Options: &localOptions{
			NumPredict:  req.MaxTokens,
			Temperature: req.Temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.url+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		L_warn("local: request failed", "error", err)
		return Result{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		L_warn("local: request failed", "status", resp.StatusCode, "body", string(body))
		return Result{}, fmt.Errorf("local runtime returned status %d: %s", resp.StatusCode, string(body))
	}

	var result localChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	latency := time.Since(startTime)
	text := strings.TrimSpace(result.Message.Content)
	L_debug("local: request completed", "duration", latency.Round(time.Millisecond), "responseChars", len(text))

	return Result{Text: text, Backend: p.name, Latency: latency}, nil
}
