package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-quality-pipeline/internal/api"
	"go-quality-pipeline/internal/api/handler"
	"go-quality-pipeline/internal/config"
	"go-quality-pipeline/internal/logging"
	"go-quality-pipeline/internal/metrics"
	"go-quality-pipeline/internal/metrics/prom"
	"go-quality-pipeline/internal/pipeline"
	"go-quality-pipeline/internal/store"
	"go-quality-pipeline/pkg/router"

	"go.uber.org/zap"
)

// @title Quality Pipeline API
// @version 1.0
// @description Quality-gated ETL pipelines: sources, pipelines, quality rules, runs and analytics.
// @BasePath /api
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pipeline:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	s, err := store.Open(ctx, cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	scorer, err := pipeline.ScorerByName(cfg.ScoringStrategy)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder(nil)
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		backend, err := prom.NewBackend()
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		recorder = metrics.NewRecorder(backend)
		metricsHandler = backend.Handler()
	}

	ingest := pipeline.SourceIngestor{
		Simulated: pipeline.SimulatedIngestor{Records: cfg.IngestRecords},
		Files:     pipeline.FileIngestor{Client: &http.Client{Timeout: 30 * time.Second}},
	}
	orch := pipeline.NewOrchestrator(ingest, s, s, pipeline.Options{
		Scorer:     scorer,
		SampleSize: cfg.SampleSize,
		Timeout:    cfg.RunTimeout,
		Logger:     logger,
		Metrics:    recorder,
	})

	var definitions handler.DefinitionsFunc
	if cfg.DefinitionsFile != "" {
		definitions = func() (*store.Definitions, error) {
			return config.LoadDefinitions(cfg.DefinitionsFile)
		}
	}

	// Create router
	r := router.New(router.WithLogger(logger), router.WithCORS(cfg.CORSOrigins...))

	// Register API routes
	api.RegisterRoutes(r, handler.New(s, orch, definitions, logger), metricsHandler)

	logger.Info("starting pipeline service",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("scoring", scorer.Name()),
		zap.Bool("metrics", cfg.MetricsEnabled),
	)
	return r.Start(ctx, cfg.HTTPAddr)
}
