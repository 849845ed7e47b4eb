package config

import (
	"os"
	"path/filepath"
	"testing"

	"hybridai/internal/llm"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("Listen = %q, want :8080", cfg.Listen)
	}
	if len(cfg.Priority) != 4 || cfg.Priority[0] != "local" {
		t.Errorf("Priority = %v", cfg.Priority)
	}
	if cfg.RateLimits["openai"] != 3 || cfg.RateLimits["gemini"] != 15 || cfg.RateLimits["claude"] != 5 {
		t.Errorf("RateLimits = %v", cfg.RateLimits)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hybridai.json")
	data := `{
		"listen": ":9000",
		"freeTier": true,
		"backends": {
			"local": {"type": "local", "url": "http://127.0.0.1:11434", "model": "m"}
		}
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9000" || !cfg.FreeTier {
		t.Errorf("cfg = %+v", cfg)
	}
	b := cfg.Backends["local"]
	if b.Type != llm.TypeLocal || b.URL != "http://127.0.0.1:11434" {
		t.Errorf("local backend = %+v", b)
	}
}

func TestLoadBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{nope`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRejectsUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hybridai.json")
	data := `{"backends": {"weird": {"type": "cohere"}}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown backend type")
	}
}

func TestEnvCreatesBackend(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("LOCAL_RUNTIME_URL", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, ok := cfg.Backends["openai"]
	if !ok {
		t.Fatal("env var should create the openai backend")
	}
	if b.Type != llm.TypeOpenAI || b.APIKey != "sk-test" {
		t.Errorf("openai backend = %+v", b)
	}
	if b.Model == "" {
		t.Error("env-created backend should get a default model")
	}
}

func TestFileKeyWinsOverEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "hybridai.json")
	data := `{"backends": {"claude": {"type": "claude", "apiKey": "file-key", "model": "m"}}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Backends["claude"].APIKey; got != "file-key" {
		t.Errorf("APIKey = %q, want the file value", got)
	}
}
