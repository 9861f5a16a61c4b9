package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labibilahe-oss/Vaulty-AI-main/internal/advisor"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/api/handlers"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/api/middleware"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/app"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/config"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/jobs"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/jobs/inmemory"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/logger"
	"github.com/labibilahe-oss/Vaulty-AI-main/internal/pipeline"
)

func main() {
	// Parse command-line flags
	var (
		configPath = flag.String("config", "", "Path to TOML config file (default: vaulty.toml if present)")
		port       = flag.String("port", "", "HTTP server port (overrides http.port)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.HTTP.Port = *port
	}

	// Initialize logger
	log := logger.NewWithLevel(cfg.Log.Level)
	ctx := logger.WithContext(context.Background(), log)

	// Open the ledger
	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer a.Close()

	engine := a.Engine
	normalizer := pipeline.NewNormalizer()

	var (
		receiptsHandler   *handlers.ReceiptsHandler
		statementsHandler *handlers.StatementsHandler
		adv               handlers.Advisor
	)

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if cfg.Gemini.APIKey == "" {
		log.Warn().Msg("No Gemini API key configured - receipt, statement and advice endpoints are disabled")
	} else {
		extractor, err := pipeline.NewGeminiExtractor(ctx, cfg.Gemini.APIKey, cfg.Gemini.ExtractionModel, cfg.Gemini.ReceiptModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini extractor")
		}
		gemini, err := advisor.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.AdvisorModel)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create advisor")
		}
		adv = gemini

		statementChannel := pipeline.NewStatementChannel(extractor, a.Store, normalizer)
		jobHandler := jobs.NewStatementImportHandler(statementChannel)

		// Start job consumer in background
		go func() {
			log.Info().Msg("Starting statement import worker")
			if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
				log.Error().Err(err).Msg("Job worker stopped with error")
			}
		}()

		receiptsHandler = handlers.NewReceiptsHandler(extractor, a.Store, normalizer, log)
		statementsHandler = handlers.NewStatementsHandler(jobQueue, log)
	}

	mux := handlers.NewRouter(handlers.Handlers{
		Ledger:     handlers.NewLedgerHandler(a.Store, engine, log),
		Receipts:   receiptsHandler,
		Statements: statementsHandler,
		Jobs:       handlers.NewJobsHandler(jobStore, log),
		Export:     handlers.NewExportHandler(a.Store, engine, log),
		Advice:     handlers.NewAdviceHandler(adv, a.Store, engine, log),
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.HTTP.Port).Str("backend", cfg.Storage.Backend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for the in-flight import
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	log.Info().Msg("Server exited")
}
