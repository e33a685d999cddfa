// Package api exposes the HTTP interface of the ingestion service:
// chat export and image uploads, listing retrieval, search, and health.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anerudhh/Realistly-mvp/internal/config"
	"github.com/anerudhh/Realistly-mvp/internal/database"
	"github.com/anerudhh/Realistly-mvp/internal/pipeline"
)

// Ingestor is the part of the processing pipeline the API needs.
type Ingestor interface {
	ProcessChat(ctx context.Context, content, sourceGroup string) (*pipeline.Report, error)
	ProcessImages(ctx context.Context, images []pipeline.ImageInput) (*pipeline.Report, error)
}

// Server wires the HTTP routes to the store and the pipeline.
type Server struct {
	router   *chi.Mux
	log      *slog.Logger
	store    database.Store
	ingestor Ingestor
	cfg      config.ServerConfig
}

// NewServer creates the API server and registers all routes.
func NewServer(log *slog.Logger, store database.Store, ingestor Ingestor, cfg config.ServerConfig) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:   router,
		log:      log.With("component", "api"),
		store:    store,
		ingestor: ingestor,
		cfg:      cfg,
	}

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/process", s.processChat)
		r.Post("/process-images", s.processImages)
		r.Get("/listings", s.listings)
		r.Get("/search", s.search)
	})

	return s
}

// Handler returns the root HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("API server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutdown signal received, stopping API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	}
}
