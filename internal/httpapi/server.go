// Package httpapi implements the HTTP/SSE API (spec.md §4.J): chat
// (sync/streaming), session CRUD, health and server inventory, following
// the teacher's internal/web.Server for route registration and graceful
// shutdown, generalized onto Go 1.22+'s method/wildcard-aware
// http.ServeMux patterns instead of the teacher's hand-rolled prefix
// dispatch.
package httpapi

import (
	"context"
	"embed"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rca-orchestrator/orchestrator/internal/orchestrator"
	"github.com/rca-orchestrator/orchestrator/internal/session"
)

//go:embed static/index.html
var staticFiles embed.FS

// Server exposes the orchestrator over HTTP/SSE.
type Server struct {
	log   *zap.Logger
	mux   *http.ServeMux
	orch  *orchestrator.Orchestrator
	store *session.Store
	model string
}

// NewServer wires the HTTP routes against an already-initialized
// Orchestrator and Session Store.
func NewServer(log *zap.Logger, orch *orchestrator.Orchestrator, store *session.Store, model string) *Server {
	s := &Server{
		log:   log,
		mux:   http.NewServeMux(),
		orch:  orch,
		store: store,
		model: model,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /servers", s.handleServers)
	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("POST /chat/stream", s.handleChatStream)
	s.mux.HandleFunc("GET /sessions", s.handleListSessions)
	s.mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("POST /sessions/{id}/resume", s.handleResumeSession)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

// Start begins listening with graceful shutdown on SIGINT/SIGTERM,
// mirroring the teacher's internal/web.Server.Start (10s shutdown drain,
// hardened Read/IdleTimeouts).
func (s *Server) Start(host, port string) error {
	addr := host + ":" + port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		s.log.Info("received signal, shutting down gracefully", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("graceful shutdown error", zap.Error(err))
		}
	}()

	s.log.Info("orchestrator listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		s.log.Info("server stopped gracefully")
		return nil
	}
	return err
}
