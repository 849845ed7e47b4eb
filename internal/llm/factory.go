package llm

import (
	"context"
	"fmt"
)

// Build constructs the adapter for a single backend config.
func Build(ctx context.Context, name string, cfg BackendConfig) (Provider, error) {
	switch cfg.Type {
	case TypeLocal:
		return NewLocalProvider(name, cfg)
	case TypeOpenAI:
		return NewOpenAIProvider(name, cfg)
	case TypeGemini:
		return NewGeminiProvider(ctx, name, cfg)
	case TypeClaude:
		return NewClaudeProvider(name, cfg)
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}
}

// Unavailable returns a permanently unavailable placeholder for a
// backend whose construction failed. It keeps the backend visible to
// health reporting without ever serving traffic.
func Unavailable(name, backendType, reason string) Provider {
	return &unavailableProvider{name: name, typ: backendType, reason: reason}
}

type unavailableProvider struct {
	name   string
	typ    string
	reason string
}

func (p *unavailableProvider) Name() string      { return p.name }
func (p *unavailableProvider) Type() string      { return p.typ }
func (p *unavailableProvider) IsAvailable() bool { return false }

func (p *unavailableProvider) Generate(ctx context.Context, req Request) (Result, error) {
	return Result{}, ErrUnavailable{Backend: p.name, Reason: p.reason}
}
