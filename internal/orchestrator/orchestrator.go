// Package orchestrator selects among the configured completion
// backends, drives the per-request fallback cascade, and degrades to a
// canned reply when every backend is exhausted.
package orchestrator

import (
	"context"
	"sort"
	"sync"
	"time"

	"hybridai/internal/llm"
	. "hybridai/internal/logging"
	"hybridai/internal/metrics"
)

const (
	defaultMaxTokens   = 150
	defaultTemperature = 0.7
)

// ChatResult carries the reply plus the attribution the transport
// layer reports alongside it. Backend is "fallback" when the reply is
// canned.
type ChatResult struct {
	Response string
	Backend  string
	Latency  time.Duration
}

// BackendInfo describes one configured backend for the status report.
type BackendInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Available bool   `json:"available"`
}

// Options configures an orchestrator instance.
type Options struct {
	// Priority is the static backend order consulted after personality
	// routing and sticky affinity. Defaults to local, openai, gemini,
	// claude.
	Priority []string

	// FallbackResponses is an optional path to a canned-reply JSON
	// file; empty uses the embedded defaults.
	FallbackResponses string

	// Metrics receives dispatch and cascade metrics. Optional.
	Metrics *metrics.Manager
}

// Orchestrator is the facade callers use. GenerateResponse never
// returns an error and always produces text; every failure class is
// absorbed into the cascade or the canned-reply table.
type Orchestrator struct {
	providers map[string]llm.Provider
	order     []string // deterministic candidate order
	priority  []string
	store     *ResponseStore
	limiter   *RateLimiter // non-nil only for the free-tier variant
	metrics   *metrics.Manager

	// Shared mutable state, single writer at a time.
	mu       sync.Mutex
	lastUsed string
	perf     map[string]time.Duration
}

// New creates the standard orchestrator without rate limits.
func New(providers map[string]llm.Provider, opts Options) *Orchestrator {
	priority := opts.Priority
	if len(priority) == 0 {
		priority = []string{"local", "openai", "gemini", "claude"}
	}

	o := &Orchestrator{
		providers: providers,
		order:     candidateOrder(providers, priority),
		priority:  priority,
		store:     NewResponseStore(opts.FallbackResponses),
		metrics:   opts.Metrics,
		perf:      make(map[string]time.Duration),
	}

	available := 0
	for _, p := range providers {
		if p.IsAvailable() {
			available++
		}
	}
	L_info("orchestrator: created", "backends", len(providers), "available", available)

	return o
}

// NewFreeTier creates the rate-limited orchestrator variant. Backends
// without a limit entry are never throttled.
func NewFreeTier(providers map[string]llm.Provider, opts Options, limits map[string]int) *Orchestrator {
	o := New(providers, opts)
	o.limiter = NewRateLimiter(limits)
	L_info("orchestrator: free-tier rate limits enabled", "limited", len(limits))
	return o
}

// candidateOrder fixes a deterministic iteration order: the priority
// list first, then any remaining backends sorted by name.
func candidateOrder(providers map[string]llm.Provider, priority []string) []string {
	seen := make(map[string]bool, len(providers))
	order := make([]string, 0, len(providers))
	for _, name := range priority {
		if _, ok := providers[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range providers {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// GenerateResponse runs the full cascade and returns the reply text.
// It never fails; on total exhaustion the canned reply is returned.
func (o *Orchestrator) GenerateResponse(ctx context.Context, req llm.Request) string {
	return o.Generate(ctx, req).Response
}

// GenerateResponseAsync offloads the synchronous cascade to a
// goroutine. The returned channel yields exactly one reply. An
// abandoned call does not abort an in-flight backend request; that
// request runs to its own timeout.
func (o *Orchestrator) GenerateResponseAsync(ctx context.Context, req llm.Request) <-chan string {
	out := make(chan string, 1)
	go func() {
		out <- o.GenerateResponse(ctx, req)
		close(out)
	}()
	return out
}

// Generate runs the cascade and returns the reply with backend
// attribution for the transport layer.
func (o *Orchestrator) Generate(ctx context.Context, req llm.Request) ChatResult {
	req = normalize(req)
	start := time.Now()

	tried := make(map[string]bool)
	attempted := 0

	for {
		candidates := o.candidates(tried)

		o.mu.Lock()
		lastUsed := o.lastUsed
		o.mu.Unlock()

		name := SelectBackend(req.Personality, candidates, lastUsed, o.priority)
		if name == "" {
			break
		}

		provider := o.providers[name]
		attempted++
		if attempted > 1 {
			L_info("orchestrator: trying fallback backend", "backend", name)
		} else {
			L_debug("orchestrator: backend selected", "backend", name, "personality", req.Personality)
		}

		result, err := provider.Generate(ctx, req)
		if err != nil || result.Empty() {
			reason := "empty response"
			if err != nil {
				reason = err.Error()
				L_warn("orchestrator: backend failed", "backend", name, "error", err, "errType", llm.ClassifyError(reason))
			} else {
				L_warn("orchestrator: backend returned empty response", "backend", name)
			}
			if o.metrics != nil {
				o.metrics.RecordFailure("llm/"+name, reason)
			}
			tried[name] = true
			continue
		}

		o.mu.Lock()
		o.lastUsed = name
		o.perf[name] = result.Latency
		o.mu.Unlock()

		if o.limiter != nil {
			o.limiter.Record(name)
		}
		if o.metrics != nil {
			o.metrics.RecordSuccess("llm/" + name)
			o.metrics.RecordDuration("llm/"+name+"/generate", result.Latency)
			if attempted > 1 {
				o.metrics.IncrementCounter("orchestrator/fallback_used")
			}
		}

		L_elapsed(start, "orchestrator: request served", "backend", name, "attempts", attempted)
		return ChatResult{Response: result.Text, Backend: name, Latency: result.Latency}
	}

	// Exhausted: every candidate failed, was unavailable or throttled.
	key := IntentKey(req.Message)
	if key == "" {
		switch {
		case attempted > 0 && o.limiter == nil:
			key = "error"
		case attempted == 0 && o.limiter != nil:
			key = "busy"
		default:
			key = "unavailable"
		}
	}

	if o.metrics != nil {
		o.metrics.IncrementCounter("orchestrator/exhausted")
	}
	L_warn("orchestrator: all backends exhausted, using canned reply", "attempts", attempted, "key", key)

	return ChatResult{Response: o.store.Lookup(key), Backend: "fallback"}
}

// candidates returns backends that are available, untried in this
// cascade, and inside their rate window.
func (o *Orchestrator) candidates(tried map[string]bool) []Candidate {
	var out []Candidate
	for _, name := range o.order {
		if tried[name] {
			continue
		}
		p := o.providers[name]
		if !p.IsAvailable() {
			continue
		}
		if o.limiter != nil && !o.limiter.Check(name) {
			continue
		}
		out = append(out, Candidate{Name: name, Type: p.Type()})
	}
	return out
}

// LastUsed returns the backend that served the previous successful
// call, or "".
func (o *Orchestrator) LastUsed() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastUsed
}

// Performance returns a copy of the rolling per-backend latency map.
func (o *Orchestrator) Performance() map[string]time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make(map[string]time.Duration, len(o.perf))
	for k, v := range o.perf {
		out[k] = v
	}
	return out
}

// Backends lists every configured backend in candidate order.
func (o *Orchestrator) Backends() []BackendInfo {
	out := make([]BackendInfo, 0, len(o.order))
	for _, name := range o.order {
		p := o.providers[name]
		out = append(out, BackendInfo{Name: name, Type: p.Type(), Available: p.IsAvailable()})
	}
	return out
}

// normalize applies the public-contract defaults and clamps.
func normalize(req llm.Request) llm.Request {
	req.Personality = llm.NormalizePersonality(req.Personality)
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	if req.Temperature < 0 || req.Temperature > 1 {
		req.Temperature = defaultTemperature
	}
	return req
}
