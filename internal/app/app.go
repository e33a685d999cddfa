// Package app manages the lifecycle of the ingestion service: the HTTP
// API server and the task scheduler, with graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/anerudhh/Realistly-mvp/internal/api"
)

// App represents the running service and manages its components.
type App struct {
	log       *slog.Logger
	server    *api.Server
	scheduler *Scheduler
}

// New creates the application orchestrator.
func New(log *slog.Logger, server *api.Server, scheduler *Scheduler) *App {
	return &App{
		log:       log.With("component", "app"),
		server:    server,
		scheduler: scheduler,
	}
}

// Run starts all components and blocks until the context is cancelled
// or a component fails.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("Starting service...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Run(gCtx)
	})

	g.Go(func() error {
		if err := a.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		a.log.Info("Shutdown signal received, stopping scheduler...")

		if err := a.scheduler.Stop(); err != nil {
			a.log.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	a.log.Info("Service running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error("Service stopped due to error", "error", err)
		return err
	}

	a.log.Info("Service stopped gracefully.")
	return nil
}
