package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/listino/catalog-service/internal/enrichment"
	"github.com/listino/catalog-service/internal/types"
)

// ErrRunInProgress is returned when a run is requested while another one
// holds the process-wide run lock. Requests are rejected, never queued.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// Store is the persistence surface the orchestrator depends on. The pgx
// implementation lives in internal/database; tests supply an in-memory one.
type Store interface {
	ActiveSuppliers(ctx context.Context) ([]types.Supplier, error)

	InsertRawRecords(ctx context.Context, records []types.RawRecord) error
	RawRecordsSince(ctx context.Context, cutoff time.Time) ([]types.RawRecord, error)
	UpdateNormalizedFields(ctx context.Context, recordID string, rec types.NormalizedRecord) error

	FieldMappings(ctx context.Context, supplierID string) ([]types.FieldMapping, error)
	CategoryMappings(ctx context.Context, supplierID string) ([]types.CategoryMapping, error)
	PricingRules(ctx context.Context) ([]types.PricingRule, error)

	UpsertMasterProduct(ctx context.Context, p types.MasterProduct) error
	UpdateSalePrice(ctx context.Context, ean string, salePriceCents int64, at time.Time) error
	CountMasterProducts(ctx context.Context) (int, error)
	EANsMissingEnrichment(ctx context.Context, limit int) ([]string, error)
	MarkEnriched(ctx context.Context, ean string) error

	InsertRunLog(ctx context.Context, entry types.RunLog) error
}

// FeedSource produces the raw key->value records for one supplier. File
// download and parsing live behind this interface; the pipeline never sees
// formats, only record bags.
type FeedSource interface {
	Fetch(ctx context.Context, supplier types.Supplier) ([]types.RawRecord, error)
}

// Notifier delivers the single completion event per run. Delivery failures
// are logged and never affect the already persisted run result.
type Notifier interface {
	Notify(ctx context.Context, event types.CompletionEvent) error
}

// Options are the pass-through knobs for one run
type Options struct {
	SkipIngestion  bool
	SkipEnrichment bool
	SkipAI         bool
	AIItemLimit    int           // cost control cap for AI enrichment
	WindowDays     int           // consolidation window, default 7
	PacingDelay    time.Duration // delay between external enrichment calls
	Concurrency    int           // per-supplier workers; <=1 means sequential
}

// RunResult summarizes one pipeline run
type RunResult struct {
	RunID         string        `json:"runId"`
	Success       bool          `json:"success"`
	TotalProducts int           `json:"totalProducts"`
	Duration      time.Duration `json:"duration"`
	Warnings      []string      `json:"warnings"`
	Errors        []string      `json:"errors"`
}

// EnrichmentProvider is re-exported for wiring convenience
type EnrichmentProvider = enrichment.Provider
