// Package server exposes the HTTP surface: webhook ingress, queue and
// ledger introspection, the websocket job stream, and the health probe.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ontoforge/ontoforge/config"
	"github.com/ontoforge/ontoforge/errors"
	"github.com/ontoforge/ontoforge/queue"
	"github.com/ontoforge/ontoforge/store"
)

// Server wires the HTTP handlers to the store, the queue and the
// webhook secret vault key.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	queue  *queue.Queue
	logger *zap.SugaredLogger

	httpServer *http.Server
}

// New builds the server and registers all routes.
func New(cfg *config.Config, st *store.Store, q *queue.Queue, logger *zap.SugaredLogger) *Server {
	s := &Server{
		cfg:    cfg,
		store:  st,
		queue:  q,
		logger: logger.Named("server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhooks/{owner}/{repo}", s.corsMiddleware(s.HandleWebhook))
	mux.HandleFunc("/api/events/", s.corsMiddleware(s.HandleEvent))
	mux.HandleFunc("/api/jobs", s.corsMiddleware(s.HandleJobs))
	mux.HandleFunc("/api/jobs/", s.corsMiddleware(s.HandleJob))
	mux.HandleFunc("/ws/jobs", s.corsMiddleware(s.HandleJobStream))
	mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Infow("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server")
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// corsMiddleware sets permissive CORS headers for browser clients and
// answers preflight requests.
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Hub-Signature-256, X-GitHub-Event")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// originAllowed reports whether the Origin may use CORS. An empty
// allow-list permits any origin.
func (s *Server) originAllowed(origin string) bool {
	if len(s.cfg.Server.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
