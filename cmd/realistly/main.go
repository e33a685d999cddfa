// Package main contains the entrypoint for the Realistly ingestion service.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anerudhh/Realistly-mvp/internal/api"
	"github.com/anerudhh/Realistly-mvp/internal/app"
	"github.com/anerudhh/Realistly-mvp/internal/config"
	"github.com/anerudhh/Realistly-mvp/internal/database"
	"github.com/anerudhh/Realistly-mvp/internal/extract"
	"github.com/anerudhh/Realistly-mvp/internal/geocode"
	"github.com/anerudhh/Realistly-mvp/internal/logger"
	"github.com/anerudhh/Realistly-mvp/internal/ocr"
	"github.com/anerudhh/Realistly-mvp/internal/pipeline"
	"github.com/anerudhh/Realistly-mvp/internal/relevance"
	"github.com/anerudhh/Realistly-mvp/internal/tasks"
	"github.com/anerudhh/Realistly-mvp/internal/whatsapp"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components (config, logger, database, extraction,
// geocoding, pipeline, API server, scheduler), handles graceful
// shutdown, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	parser := whatsapp.NewParser(log, nil)
	classifier := relevance.NewClassifier(relevance.DefaultConfig())

	var extractor extract.Extractor
	var reader ocr.Reader
	if cfg.Gemini.APIKey != "" {
		geminiExtractor, err := extract.NewGeminiExtractor(ctx, cfg.Gemini, log)
		if err != nil {
			log.Error("Failed to initialize Gemini extractor", "error", err)
			return 1
		}
		extractor = geminiExtractor

		geminiReader, err := ocr.NewGeminiReader(ctx, cfg.Gemini, log)
		if err != nil {
			log.Error("Failed to initialize Gemini image reader", "error", err)
			return 1
		}
		reader = geminiReader
	} else {
		log.Warn("Gemini API key not configured, using rule-based extraction only")
		extractor = extract.NewFallbackExtractor()
	}

	geocoder := geocode.NewClient(cfg.Geocoding, log)
	if !geocoder.Enabled() {
		log.Warn("Geocoding API key not configured, location enrichment disabled")
	}

	pipe := pipeline.New(log, store, parser, classifier, extractor, geocoder, reader, cfg.Pipeline)
	server := api.NewServer(log, store, pipe, cfg.Server)

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Pipeline: pipe,
	}
	sched, err := app.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	service := app.New(log, server, sched)

	log.Info("Starting ingestion service...")
	runErr := service.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Service stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Service stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
