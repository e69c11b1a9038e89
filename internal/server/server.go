// Package server exposes the audit pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/realibuddy/citecheck/internal/model"
)

// Auditor is the pipeline surface the server needs.
type Auditor interface {
	Audit(ctx context.Context, text string) ([]model.AuditOutcome, error)
}

// Server serves the audit API.
type Server struct {
	auditor Auditor
	logger  *zap.Logger
	config  model.ServerConfig
	limiter *clientLimiter
}

// New creates a server. A nil logger is replaced with a no-op one.
func New(auditor Auditor, logger *zap.Logger, config model.ServerConfig) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxTextLen <= 0 {
		config.MaxTextLen = model.DefaultConfig().Server.MaxTextLen
	}
	return &Server{
		auditor: auditor,
		logger:  logger,
		config:  config,
		limiter: newClientLimiter(config.RateQuota, config.RateWindow),
	}
}

// Handler returns the HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/audit", s.handleAudit)
	mux.HandleFunc("/healthz", s.handleHealth)
	return withCORS(mux)
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.config.Addr,
		Handler:     s.Handler(),
		ReadTimeout: s.config.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type auditRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	client := clientAddr(r)
	if !s.limiter.allow(client) {
		w.Header().Set("Retry-After", strconv.Itoa(int(s.config.RateWindow.Seconds())))
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		s.logger.Warn("rate limited", zap.String("client", client))
		return
	}

	var req auditRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, int64(s.config.MaxTextLen)+4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(text) > s.config.MaxTextLen {
		writeError(w, http.StatusBadRequest, "text exceeds maximum length")
		return
	}

	start := time.Now()
	outcomes, err := s.auditor.Audit(r.Context(), text)
	if err != nil {
		s.logger.Error("audit failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "audit failed")
		return
	}

	s.logger.Info("audit served",
		zap.String("client", client),
		zap.Int("claims", len(outcomes)),
		zap.Duration("elapsed", time.Since(start)))

	writeJSON(w, http.StatusOK, outcomes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// clientAddr keys rate limiting by the client's host, ignoring the port.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
