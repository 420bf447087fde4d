package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/listino/catalog-service/internal/database"
	"github.com/listino/catalog-service/internal/enrichment"
	httpx "github.com/listino/catalog-service/internal/http"
	"github.com/listino/catalog-service/internal/http/ratelimit"
	"github.com/listino/catalog-service/internal/ingest"
	"github.com/listino/catalog-service/internal/notify"
	"github.com/listino/catalog-service/internal/pipeline"
	"github.com/listino/catalog-service/internal/storage"
)

var (
	runSkipIngestion  bool
	runSkipEnrichment bool
	runSkipAI         bool
	runWindowDays     int
	runAIItemLimit    int
	runTimeout        time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full catalog pipeline once",
	Long: `Runs every pipeline phase in order: ingestion from the feed drop
directory, normalization through supplier field mappings, consolidation of
offers per EAN, pricing by markup rules and optional enrichment.

Phase outcomes are appended to run_logs, same as server-triggered runs.`,
	Example: `  # Full run with config defaults
  catalog-service run

  # Re-price existing data without fetching new feeds
  catalog-service run --skip-ingestion --skip-enrichment --skip-ai

  # Widen the consolidation window to 14 days
  catalog-service run --window-days 14`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runSkipIngestion, "skip-ingestion", false, "skip feed ingestion, work from previously imported records")
	runCmd.Flags().BoolVar(&runSkipEnrichment, "skip-enrichment", false, "skip external catalog enrichment")
	runCmd.Flags().BoolVar(&runSkipAI, "skip-ai", false, "skip AI description enrichment")
	runCmd.Flags().IntVar(&runWindowDays, "window-days", 0, "consolidation window in days (0 = config default)")
	runCmd.Flags().IntVar(&runAIItemLimit, "ai-item-limit", 0, "max products sent to AI enrichment (0 = config default)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Hour, "overall run timeout")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	store := database.NewStore()
	orchestrator := buildCLIOrchestrator(store)

	opts := pipeline.Options{
		SkipIngestion:  runSkipIngestion,
		SkipEnrichment: runSkipEnrichment || cfg.Pipeline.SkipEnrichment,
		SkipAI:         runSkipAI || cfg.Pipeline.SkipAI,
		WindowDays:     cfg.Pipeline.WindowDays,
		AIItemLimit:    cfg.Pipeline.AIItemLimit,
		PacingDelay:    cfg.Pipeline.PacingDelay,
		Concurrency:    cfg.Pipeline.SupplierConcurrency,
	}
	if runWindowDays > 0 {
		opts.WindowDays = runWindowDays
	}
	if runAIItemLimit > 0 {
		opts.AIItemLimit = runAIItemLimit
	}

	logger.Info().
		Int("window_days", opts.WindowDays).
		Bool("skip_ingestion", opts.SkipIngestion).
		Msg("Starting pipeline run")

	result, err := orchestrator.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("pipeline run failed to start: %w", err)
	}

	fmt.Printf("\nRun %s finished in %s\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Printf("  Products:  %d\n", result.TotalProducts)
	fmt.Printf("  Success:   %t\n", result.Success)
	for _, w := range result.Warnings {
		fmt.Printf("  Warning:   %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Printf("  Error:     %s\n", e)
	}

	if !result.Success {
		return fmt.Errorf("run %s completed with errors", result.RunID)
	}
	return nil
}

// buildCLIOrchestrator mirrors the server wiring but logs completion to the
// console instead of posting webhooks.
func buildCLIOrchestrator(store *database.Store) *pipeline.Orchestrator {
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
		Notifier:   notify.NewLog(*logger),
		Enricher:   enricher,
		AIEnricher: aiEnricher,
		Logger:     *logger,
	})
}
