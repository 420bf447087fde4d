package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal counts finished pipeline runs by terminal status.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Total number of finished pipeline runs by status",
	}, []string{"status"})

	// phaseDuration tracks the time spent in each pipeline phase.
	phaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_phase_duration_seconds",
		Help:    "Time spent in each pipeline phase",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
	}, []string{"phase"})

	// phaseErrors counts phases that ended in error status.
	phaseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_phase_errors_total",
		Help: "Total number of phase executions ending in error",
	}, []string{"phase"})

	// suppliersFailed counts per-supplier ingestion failures.
	suppliersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_suppliers_failed_total",
		Help: "Total number of supplier ingestion failures",
	})

	// productsConsolidated counts master products written per run.
	productsConsolidated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_products_consolidated_total",
		Help: "Total number of master products upserted by consolidation",
	})

	// productsPriced counts sale price computations persisted.
	productsPriced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_products_priced_total",
		Help: "Total number of products priced",
	})

	// pricingFallbacks counts products priced with the flat fallback markup.
	pricingFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_pricing_fallbacks_total",
		Help: "Total number of products priced without any matching rule",
	})

	// enrichmentCost accumulates reported enrichment cost by provider.
	enrichmentCost = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_enrichment_cost_total",
		Help: "Accumulated enrichment cost by provider",
	}, []string{"provider"})
)
