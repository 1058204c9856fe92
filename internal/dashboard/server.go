package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/pkg/errors"
	"github.com/searchroi/search-roi/internal/pkg/logger"
	"github.com/searchroi/search-roi/internal/results"
)

// Server exposes persisted runs as a read-only JSON API.
type Server struct {
	cfg   config.DashboardConfig
	store results.Store
	log   *logger.Logger

	httpServer *http.Server
}

// New creates a dashboard server over the given result store.
func New(cfg config.DashboardConfig, store results.Store, log *logger.Logger) *Server {
	s := &Server{
		cfg:   cfg,
		store: store,
		log:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /api/runs/{id}/comparison", s.handleComparison)

	s.httpServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("dashboard listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.ListRuns(r.Context())
	if err != nil {
		s.log.Error("listing runs failed", "error", err)
		errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	record, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	record, err := s.store.GetRun(r.Context(), r.PathValue("id"))
	if err != nil {
		errors.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BuildComparison(record))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
