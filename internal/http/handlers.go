package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"hybridai/internal/health"
	"hybridai/internal/llm"
	. "hybridai/internal/logging"
	"hybridai/internal/orchestrator"
)

// ChatRequest is the POST /api/chat body. MaxTokens and Temperature
// are pointers so an absent field can be told apart from a zero.
type ChatRequest struct {
	Message     string   `json:"message"`
	Personality string   `json:"personality,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
}

// ChatResponse is the POST /api/chat reply. Backend attribution
// travels here, never inside the response text.
type ChatResponse struct {
	Response    string    `json:"response"`
	BackendUsed string    `json:"backend_used"`
	LatencyMS   float64   `json:"latency_ms"`
	RequestID   string    `json:"request_id"`
	Timestamp   time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleChat handles POST /api/chat
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		L_warn("http: chat - wrong method", "method", r.Method)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		L_warn("http: chat - bad request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	requestID := uuid.New().String()
	L_debug("http: chat request", "requestID", requestID, "personality", req.Personality, "messageLen", len(req.Message))

	genReq := llm.Request{
		Message:     req.Message,
		Personality: req.Personality,
	}
	if req.MaxTokens != nil {
		genReq.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		genReq.Temperature = *req.Temperature
	} else {
		genReq.Temperature = -1 // absent, let the defaults apply
	}

	result := s.gen.Generate(r.Context(), genReq)

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:    result.Response,
		BackendUsed: result.Backend,
		LatencyMS:   float64(result.Latency.Microseconds()) / 1000.0,
		RequestID:   requestID,
		Timestamp:   time.Now(),
	})
}

// handleHealth handles GET /api/health - probes every backend
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	report := s.checker.Check(r.Context())

	// Degraded still serves traffic, only a full outage is a 503.
	code := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

// handleStatus handles GET /api/status - backend inventory without probing
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	perf := make(map[string]float64)
	for name, d := range s.gen.Performance() {
		perf[name] = float64(d.Microseconds()) / 1000.0
	}

	status := struct {
		Status   string                     `json:"status"`
		Uptime   string                     `json:"uptime"`
		LastUsed string                     `json:"last_used,omitempty"`
		Backends []orchestrator.BackendInfo `json:"backends"`
		PerfMS   map[string]float64         `json:"performance_ms"`
	}{
		Status:   "ready",
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		LastUsed: s.gen.LastUsed(),
		Backends: s.gen.Backends(),
		PerfMS:   perf,
	}

	writeJSON(w, http.StatusOK, status)
}

// handleMetrics handles GET /api/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	if s.metrics == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.GetSnapshot())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		L_error("http: failed to encode response", "error", err)
	}
}
