// Package gateway serves the two HTTP surfaces: the bot surface that chat
// platforms call with signed command envelopes, and the service surface
// guarded by a shared secret.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/foundrgate/foundrgate/internal/auth"
	"github.com/foundrgate/foundrgate/internal/commands"
	"github.com/foundrgate/foundrgate/internal/config"
	"github.com/foundrgate/foundrgate/internal/ledger"
	"github.com/foundrgate/foundrgate/internal/reply"
)

// Dispatcher runs one authenticated invocation to completion.
type Dispatcher interface {
	Dispatch(ctx context.Context, inv commands.Invocation) commands.Result
}

// ServiceLedger is the slice of the ledger client the service surface needs.
type ServiceLedger interface {
	Admins(ctx context.Context) ([]string, error)
	GetMessages(ctx context.Context, id string) ([]ledger.ChatMessage, error)
}

// StatsSource feeds dispatch counts into /status.
type StatsSource interface {
	Stats(ctx context.Context) (map[string]int64, error)
}

type serverMetrics struct {
	mu           sync.Mutex
	started      time.Time
	requests     int64
	authFailures int64
	outcomes     map[commands.Outcome]int64
}

func (m *serverMetrics) noteRequest() {
	m.mu.Lock()
	m.requests++
	m.mu.Unlock()
}

func (m *serverMetrics) noteAuthFailure() {
	m.mu.Lock()
	m.authFailures++
	m.mu.Unlock()
}

func (m *serverMetrics) noteOutcome(o commands.Outcome) {
	m.mu.Lock()
	m.outcomes[o]++
	m.mu.Unlock()
}

func (m *serverMetrics) snapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	outcomes := make(map[string]int64, len(m.outcomes))
	for k, v := range m.outcomes {
		outcomes[string(k)] = v
	}
	return map[string]any{
		"uptime_seconds": int64(time.Since(m.started).Seconds()),
		"requests":       m.requests,
		"auth_failures":  m.authFailures,
		"outcomes":       outcomes,
	}
}

// Server is the gateway HTTP server.
type Server struct {
	cfg        config.GatewayConfig
	dispatcher Dispatcher
	verifier   *auth.EnvelopeVerifier
	doc        commands.Document
	ledger     ServiceLedger
	sink       reply.Sink
	stats      StatsSource
	log        *slog.Logger
	metrics    *serverMetrics
}

// Options carries the optional collaborators.
type Options struct {
	Verifier *auth.EnvelopeVerifier
	Ledger   ServiceLedger
	Sink     reply.Sink
	Stats    StatsSource
	Log      *slog.Logger
}

// NewServer wires a server. doc is the platform-facing bot definition.
func NewServer(cfg config.GatewayConfig, dispatcher Dispatcher, doc commands.Document, opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:        cfg,
		dispatcher: dispatcher,
		verifier:   opts.Verifier,
		doc:        doc,
		ledger:     opts.Ledger,
		sink:       opts.Sink,
		stats:      opts.Stats,
		log:        log,
		metrics: &serverMetrics{
			started:  time.Now(),
			outcomes: map[commands.Outcome]int64{},
		},
	}
}

// Handler builds the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDefinition)
	mux.HandleFunc("GET /bot_definition", s.handleDefinition)
	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.HandleFunc("POST /execute_command", s.handleExecute)
	mux.HandleFunc("GET /admins", s.handleAdmins)
	mux.HandleFunc("POST /slack/execute", s.handleSlackExecute)
	mux.HandleFunc("GET /slack/messages", s.handleSlackMessages)
	mux.HandleFunc("POST /slack/dashboard", s.handleSlackDashboard)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /status", s.handleStatus)
	return mux
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gateway listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	body := s.metrics.snapshot()
	if s.stats != nil {
		if stats, err := s.stats.Stats(r.Context()); err == nil {
			body["audit"] = stats
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDefinition(w http.ResponseWriter, r *http.Request) {
	s.metrics.noteRequest()
	writeJSON(w, http.StatusOK, s.doc)
}

// handleExecute runs one signed command envelope from the bot surface.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	s.metrics.noteRequest()
	if s.verifier == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "envelope verification is not configured"})
		return
	}
	inv, err := s.verifier.Verify(r.Header.Get(auth.EnvelopeHeader))
	if err != nil {
		s.metrics.noteAuthFailure()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	res := s.dispatcher.Dispatch(r.Context(), inv)
	s.metrics.noteOutcome(res.Outcome)
	s.writeResult(w, res)
}

// writeResult maps a dispatch result onto the bot surface status codes.
func (s *Server) writeResult(w http.ResponseWriter, res commands.Result) {
	switch res.Outcome {
	case commands.OutcomeSuccess:
		writeJSON(w, http.StatusOK, map[string]string{"message": res.Reply})
	case commands.OutcomeBadRequest:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": res.Message})
	case commands.OutcomeRateLimited:
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": res.Message})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": res.Message})
	}
}
