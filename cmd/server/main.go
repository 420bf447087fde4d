// @title Catalog Service API
// @version 1.0
// @description Internal API for supplier price-list ingestion, catalog consolidation and pricing.
// @BasePath /internal
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/listino/catalog-service/config"
	_ "github.com/listino/catalog-service/docs"
	"github.com/listino/catalog-service/internal/database"
	"github.com/listino/catalog-service/internal/enrichment"
	"github.com/listino/catalog-service/internal/handlers"
	httpx "github.com/listino/catalog-service/internal/http"
	"github.com/listino/catalog-service/internal/http/ratelimit"
	"github.com/listino/catalog-service/internal/ingest"
	"github.com/listino/catalog-service/internal/jobs"
	"github.com/listino/catalog-service/internal/middleware"
	"github.com/listino/catalog-service/internal/notify"
	"github.com/listino/catalog-service/internal/pipeline"
	"github.com/listino/catalog-service/internal/storage"
	"github.com/listino/catalog-service/internal/sweepers"
	"github.com/listino/catalog-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting catalog service")

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	ctx := context.Background()
	if err := database.Connect(
		ctx,
		dbURL,
		cfg.Database.MaxConnections,
		cfg.Database.MinConnections,
		cfg.Database.MaxConnLifetime,
		cfg.Database.MaxConnIdleTime,
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	shutdownTelemetry := telemetry.MustInit(ctx, telemetry.GetConfigFromEnv())
	defer shutdownTelemetry(ctx)

	store := database.NewStore()

	if err := closeInterruptedRuns(ctx, store, logger); err != nil {
		logger.Warn().Err(err).Msg("Failed to close interrupted runs")
	}

	retention := jobs.RetentionConfig{RawRecordRetentionDays: cfg.Pipeline.RawRetentionDays}
	sweeper := sweepers.NewRetentionSweeper(logger, time.Hour, retention)
	go sweeper.Start(ctx)

	orchestrator := buildOrchestrator(cfg, store, logger)
	pipelineHandler := handlers.NewPipelineHandler(orchestrator, pipeline.Options{
		SkipEnrichment: cfg.Pipeline.SkipEnrichment,
		SkipAI:         cfg.Pipeline.SkipAI,
		AIItemLimit:    cfg.Pipeline.AIItemLimit,
		WindowDays:     cfg.Pipeline.WindowDays,
		PacingDelay:    cfg.Pipeline.PacingDelay,
		Concurrency:    cfg.Pipeline.SupplierConcurrency,
	})

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	public := router.Group("")
	public.Use(middleware.RateLimitMiddleware())
	{
		public.GET("/health", handlers.HealthCheck)
		public.GET("/metrics", gin.WrapH(promhttp.Handler()))
		public.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(cfg.Server.InternalToken))
	internal.Use(middleware.ServiceRateLimitMiddleware(50, 100))
	{
		internal.GET("/health", handlers.HealthCheck)

		admin := internal.Group("/admin")
		{
			admin.POST("/pipeline/run", pipelineHandler.TriggerRun)
		}

		pipelineGroup := internal.Group("/pipeline")
		{
			pipelineGroup.GET("/runs", handlers.ListRuns)
			pipelineGroup.GET("/runs/:runId", handlers.GetRun)
		}

		catalog := internal.Group("/catalog")
		{
			catalog.GET("/products", handlers.ListProducts)
			catalog.GET("/products/:ean", handlers.GetProduct)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

// buildOrchestrator wires the pipeline from configuration. Enrichment
// providers are optional: a missing ICecat username or OpenAI key simply
// disables that phase.
func buildOrchestrator(cfg *config.Config, store *database.Store, logger *zerolog.Logger) *pipeline.Orchestrator {
	client := httpx.NewClient(ratelimit.Config{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		MaxRetries:        cfg.RateLimit.MaxRetries,
		InitialBackoffMs:  cfg.RateLimit.InitialBackoffMs,
		MaxBackoffMs:      cfg.RateLimit.MaxBackoffMs,
	})

	var archive storage.Storage
	if cfg.Feeds.ArchiveType == "local" {
		local, err := storage.NewLocal(cfg.Feeds.ArchiveDir)
		if err != nil {
			logger.Warn().Err(err).Msg("Feed archive disabled")
		} else {
			archive = local
		}
	}
	feeds := ingest.NewDirectoryFeed(cfg.Feeds.DropDir, archive, *logger)

	var notifier notify.Notifier = notify.NewLog(*logger)
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewMulti(notify.NewWebhook(cfg.Notify.WebhookURL, client), notify.NewLog(*logger))
	}

	var enricher pipeline.EnrichmentProvider
	if cfg.Enrichment.ICecatUsername != "" {
		enricher = enrichment.NewICecat(enrichment.ICecatConfig{
			BaseURL:  cfg.Enrichment.ICecatBaseURL,
			Username: cfg.Enrichment.ICecatUsername,
			Language: cfg.Enrichment.ICecatLanguage,
		}, client, store, *logger)
	}

	var aiEnricher pipeline.EnrichmentProvider
	if cfg.Enrichment.OpenAIKey != "" {
		provider, err := enrichment.NewAIProvider(enrichment.AIConfig{
			APIKey:      cfg.Enrichment.OpenAIKey,
			BaseURL:     cfg.Enrichment.OpenAIBaseURL,
			Model:       cfg.Enrichment.OpenAIModel,
			Temperature: cfg.Enrichment.Temperature,
		}, store, *logger)
		if err != nil {
			logger.Warn().Err(err).Msg("AI enrichment disabled")
		} else {
			aiEnricher = provider
		}
	}

	return pipeline.New(pipeline.Config{
		Store:      store,
		Feeds:      feeds,
		Notifier:   notifier,
		Enricher:   enricher,
		AIEnricher: aiEnricher,
		Logger:     *logger,
	})
}

// closeInterruptedRuns appends a terminal error row to any run the previous
// process left without a COMPLETE phase, so dashboards never show a run
// stuck in progress after a restart.
func closeInterruptedRuns(ctx context.Context, store *database.Store, logger *zerolog.Logger) error {
	pool := database.Pool()

	rows, err := pool.Query(ctx, `
		SELECT DISTINCT run_id
		FROM run_logs
		WHERE run_id NOT IN (
			SELECT run_id FROM run_logs WHERE phase = 'COMPLETE'
		)
	`)
	if err != nil {
		return fmt.Errorf("query interrupted runs: %w", err)
	}
	defer rows.Close()

	var runIDs []string
	for rows.Next() {
		var runID string
		if err := rows.Scan(&runID); err != nil {
			logger.Error().Err(err).Msg("Failed to scan interrupted run")
			continue
		}
		runIDs = append(runIDs, runID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(runIDs) == 0 {
		logger.Info().Msg("No interrupted runs found")
		return nil
	}

	for _, runID := range runIDs {
		entry := pipeline.InterruptedRunLog(runID, time.Now())
		if err := store.InsertRunLog(ctx, entry); err != nil {
			logger.Error().Err(err).Str("run_id", runID).Msg("Failed to close interrupted run")
			continue
		}
		logger.Info().Str("run_id", runID).Msg("Closed interrupted run")
	}

	logger.Info().Int("count", len(runIDs)).Msg("Handled interrupted runs")
	return nil
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &logger
}
