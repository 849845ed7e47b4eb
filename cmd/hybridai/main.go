package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hybridai/internal/config"
	"hybridai/internal/health"
	httpserver "hybridai/internal/http"
	"hybridai/internal/llm"
	. "hybridai/internal/logging"
	"hybridai/internal/metrics"
	"hybridai/internal/orchestrator"
)

const version = "0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("hybridai %s\n", version)
		return
	}

	configPath := flag.String("config", "hybridai.json", "path to config file")
	logLevel := flag.String("log-level", "", "override log level (trace, debug, info, warn, error)")
	flag.Parse()

	// Initialize logging
	Init(&Config{
		Level: LevelInfo,
	})

	// Optional .env for local development. A missing file is fine.
	if err := godotenv.Load(); err == nil {
		L_debug("loaded .env file")
	}

	L_info("hybridai %s starting", version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		L_fatal("failed to load config: %v", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	SetLevel(ParseLevel(cfg.LogLevel))

	if len(cfg.Backends) == 0 {
		L_warn("no backends configured, every request will get a canned reply")
	}

	ctx := context.Background()

	// Build every configured backend. A failed construction becomes an
	// unavailable stub so the rest of the service keeps running.
	providers := make(map[string]llm.Provider, len(cfg.Backends))
	for name, bcfg := range cfg.Backends {
		p, err := llm.Build(ctx, name, bcfg)
		if err != nil {
			L_warn("backend unavailable", "backend", name, "type", bcfg.Type, "error", err)
			p = llm.Unavailable(name, bcfg.Type, err.Error())
		}
		providers[name] = p
	}

	m := metrics.NewManager()

	opts := orchestrator.Options{
		Priority:          cfg.Priority,
		FallbackResponses: cfg.FallbackResponses,
		Metrics:           m,
	}
	var orch *orchestrator.Orchestrator
	if cfg.FreeTier {
		orch = orchestrator.NewFreeTier(providers, opts, cfg.RateLimits)
	} else {
		orch = orchestrator.New(providers, opts)
	}

	probers := make([]health.Prober, 0, len(providers))
	for _, info := range orch.Backends() {
		probers = append(probers, providers[info.Name])
	}
	monitor := health.NewMonitor(probers, 5*time.Second)

	// A single chat request may walk every backend's full timeout
	// before the canned reply is written.
	writeTimeout := 30 * time.Second
	for _, bcfg := range cfg.Backends {
		writeTimeout += bcfg.Timeout()
	}

	server := httpserver.NewServer(&httpserver.ServerConfig{
		Listen:       cfg.Listen,
		WriteTimeout: writeTimeout,
	}, orch, monitor, m)
	if err := server.Start(); err != nil {
		L_fatal("failed to start HTTP server: %v", err)
	}

	L_info("hybridai ready", "listen", cfg.Listen, "backends", len(providers))

	// Set up signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh

	L_info("received shutdown signal")
	if err := server.Stop(); err != nil {
		L_error("shutdown error", "error", err)
	}
	for _, p := range providers {
		if c, ok := p.(interface{ Close() error }); ok {
			c.Close()
		}
	}
	L_info("hybridai stopped")
}
