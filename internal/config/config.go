package config

import (
	"encoding/json"
	"fmt"
	"os"

	"hybridai/internal/llm"
)

// Config is the merged hybridai configuration.
type Config struct {
	Listen   string `json:"listen"`
	LogLevel string `json:"logLevel"`

	// Priority is the static backend preference order consulted when
	// no personality or affinity rule applies.
	Priority []string `json:"priority"`

	// FallbackResponses optionally points at a canned-reply JSON file.
	FallbackResponses string `json:"fallbackResponses"`

	// Backends maps a backend name to its adapter settings.
	Backends map[string]llm.BackendConfig `json:"backends"`

	// FreeTier enables the per-backend rate limiter.
	FreeTier bool `json:"freeTier"`

	// RateLimits is requests per 60s window per backend name. Only
	// consulted when FreeTier is set.
	RateLimits map[string]int `json:"rateLimits"`
}

// Load reads configuration from the given JSON file and applies
// defaults and environment overrides. A missing file is not an error;
// the defaults plus environment are enough to run.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Priority: []string{"local", "openai", "gemini", "claude"},
		Backends: map[string]llm.BackendConfig{},
		RateLimits: map[string]int{
			"openai": 3,
			"gemini": 15,
			"claude": 5,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv fills in backend credentials from the environment. An env
// var creates or completes the matching backend entry so a bare
// deployment needs no config file at all.
func (c *Config) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		b := c.Backends["openai"]
		b.Type = llm.TypeOpenAI
		if b.APIKey == "" {
			b.APIKey = key
		}
		c.Backends["openai"] = b
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		b := c.Backends["gemini"]
		b.Type = llm.TypeGemini
		if b.APIKey == "" {
			b.APIKey = key
		}
		c.Backends["gemini"] = b
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		b := c.Backends["claude"]
		b.Type = llm.TypeClaude
		if b.APIKey == "" {
			b.APIKey = key
		}
		c.Backends["claude"] = b
	}
	if url := os.Getenv("LOCAL_RUNTIME_URL"); url != "" {
		b := c.Backends["local"]
		b.Type = llm.TypeLocal
		if b.URL == "" {
			b.URL = url
		}
		c.Backends["local"] = b
	}

	for name, b := range c.Backends {
		if b.Model == "" {
			b.Model = defaultModels[b.Type]
			c.Backends[name] = b
		}
	}
}

var defaultModels = map[string]string{
	llm.TypeLocal:  "orca-mini-3b",
	llm.TypeOpenAI: "gpt-4o-mini",
	llm.TypeGemini: "gemini-2.5-flash",
	llm.TypeClaude: "claude-3-5-haiku-latest",
}

// validate rejects configurations the adapters cannot act on.
func (c *Config) validate() error {
	for name, b := range c.Backends {
		switch b.Type {
		case llm.TypeLocal, llm.TypeOpenAI, llm.TypeGemini, llm.TypeClaude:
		case "":
			return fmt.Errorf("backend %q: missing type", name)
		default:
			return fmt.Errorf("backend %q: unknown type %q", name, b.Type)
		}
	}
	for name, limit := range c.RateLimits {
		if limit < 0 {
			return fmt.Errorf("rate limit for %q must not be negative", name)
		}
	}
	return nil
}
