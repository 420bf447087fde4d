package pipeline

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/listino/catalog-service/internal/consolidate"
	"github.com/listino/catalog-service/internal/enrichment"
	"github.com/listino/catalog-service/internal/mapper"
	"github.com/listino/catalog-service/internal/pricing"
	"github.com/listino/catalog-service/internal/types"
)

// ingestionPhase fetches every active supplier's feed and persists the raw
// records. One supplier's failure never stops the others; the phase errors
// only when no supplier succeeded at all.
func (o *Orchestrator) ingestionPhase(ctx context.Context, st *runState) phaseOutcome {
	if st.opts.SkipIngestion {
		return phaseOutcome{
			Status: types.StatusSuccess,
			Detail: map[string]any{"skipped": true},
		}
	}

	suppliers, err := o.store.ActiveSuppliers(ctx)
	if err != nil {
		st.addError("%s: load suppliers: %v", types.PhaseIngestion, err)
		return phaseOutcome{Status: types.StatusError, Detail: map[string]any{"error": err.Error()}}
	}
	if len(suppliers) == 0 {
		st.addWarning("%s: no active suppliers", types.PhaseIngestion)
		return phaseOutcome{Status: types.StatusWarning, Detail: map[string]any{"suppliers": 0}}
	}

	var mu sync.Mutex
	succeeded, failed := 0, 0
	totalRecords := 0

	ingestOne := func(sup types.Supplier) {
		records, err := o.feeds.Fetch(ctx, sup)
		if err == nil {
			err = o.store.InsertRawRecords(ctx, records)
		}

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			failed++
			st.addWarning("%s: supplier %s failed: %v", types.PhaseIngestion, sup.ID, err)
			suppliersFailed.Inc()
			o.logger.Error().Err(err).Str("supplier_id", sup.ID).Msg("Supplier ingestion failed")
			return
		}
		succeeded++
		totalRecords += len(records)
	}

	if st.opts.Concurrency > 1 {
		// Bounded worker pool; safe because raw record persistence is
		// order-independent and re-sorted on read.
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(st.opts.Concurrency)
		for _, sup := range suppliers {
			sup := sup
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				ingestOne(sup)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			st.addWarning("%s: worker pool stopped early: %v", types.PhaseIngestion, err)
		}
	} else {
		for _, sup := range suppliers {
			ingestOne(sup)
		}
	}

	status := types.StatusSuccess
	if succeeded == 0 {
		// All suppliers failed; the warnings above become a phase error
		st.addError("%s: all %d suppliers failed", types.PhaseIngestion, failed)
		status = types.StatusError
	}

	return phaseOutcome{
		Status:    status,
		Processed: totalRecords,
		Detail: map[string]any{
			"suppliersSucceeded": succeeded,
			"suppliersFailed":    failed,
			"recordsIngested":    totalRecords,
		},
	}
}

// normalizationPhase maps raw records within the window to normalized
// records and writes the canonical fields back. It runs sequentially per
// supplier so the record order feeding consolidation stays deterministic.
func (o *Orchestrator) normalizationPhase(ctx context.Context, st *runState) phaseOutcome {
	cutoff := o.now().AddDate(0, 0, -st.opts.WindowDays)
	records, err := o.store.RawRecordsSince(ctx, cutoff)
	if err != nil {
		st.addError("%s: load raw records: %v", types.PhaseNormalization, err)
		return phaseOutcome{Status: types.StatusError, Detail: map[string]any{"error": err.Error()}}
	}

	// Group by supplier, preserving input order inside each group
	bySupplier := make(map[string][]types.RawRecord)
	supplierOrder := make([]string, 0)
	for _, rec := range records {
		if _, seen := bySupplier[rec.SupplierID]; !seen {
			supplierOrder = append(supplierOrder, rec.SupplierID)
		}
		bySupplier[rec.SupplierID] = append(bySupplier[rec.SupplierID], rec)
	}

	suppliersOK, suppliersFailedCount := 0, 0
	normalized := 0
	missingEAN, missingPrice, unmappedCategories := 0, 0, 0

	for _, supplierID := range supplierOrder {
		fieldMappings, err := o.store.FieldMappings(ctx, supplierID)
		if err == nil && len(fieldMappings) == 0 {
			st.addWarning("%s: supplier %s has no field mappings", types.PhaseNormalization, supplierID)
			suppliersFailedCount++
			continue
		}
		var categoryMappings []types.CategoryMapping
		if err == nil {
			categoryMappings, err = o.store.CategoryMappings(ctx, supplierID)
		}
		if err != nil {
			st.addWarning("%s: supplier %s failed: %v", types.PhaseNormalization, supplierID, err)
			suppliersFailedCount++
			continue
		}

		for _, raw := range bySupplier[supplierID] {
			rec := mapper.Normalize(raw, fieldMappings, categoryMappings)

			if rec.EAN == "" {
				missingEAN++
			}
			if rec.PurchasePrice == nil {
				missingPrice++
			}
			if rec.Category == nil && rec.SupplierCategory != "" {
				unmappedCategories++
				o.logger.Debug().
					Str("supplier_id", supplierID).
					Str("supplier_category", rec.SupplierCategory).
					Msg("Unmapped supplier category")
			}

			if err := o.store.UpdateNormalizedFields(ctx, raw.ID, rec); err != nil {
				st.addWarning("%s: record %s: %v", types.PhaseNormalization, raw.ID, err)
				continue
			}
			st.normalized = append(st.normalized, rec)
			normalized++
		}
		suppliersOK++
	}

	status := types.StatusSuccess
	if len(supplierOrder) > 0 && suppliersOK == 0 {
		st.addError("%s: all %d suppliers failed", types.PhaseNormalization, suppliersFailedCount)
		status = types.StatusError
	}

	return phaseOutcome{
		Status:    status,
		Processed: normalized,
		Detail: map[string]any{
			"rawRecords":         len(records),
			"normalized":         normalized,
			"missingEAN":         missingEAN,
			"missingPrice":       missingPrice,
			"unmappedCategories": unmappedCategories,
			"suppliersFailed":    suppliersFailedCount,
		},
	}
}

// consolidationPhase reduces the normalized records to master products and
// upserts them by EAN. The upsert replaces all derived fields, so rerunning
// over unchanged data is a no-op.
func (o *Orchestrator) consolidationPhase(ctx context.Context, st *runState) phaseOutcome {
	window := consolidate.Window{From: o.now().AddDate(0, 0, -st.opts.WindowDays)}
	result := consolidate.Consolidate(st.normalized, window, o.now())

	for _, ean := range result.FailedEANs {
		st.addWarning("%s: group %s failed", types.PhaseConsolidation, ean)
	}

	upserted := 0
	for _, product := range result.Products {
		if err := o.store.UpsertMasterProduct(ctx, product); err != nil {
			st.addWarning("%s: upsert %s: %v", types.PhaseConsolidation, product.EAN, err)
			continue
		}
		st.products = append(st.products, product)
		upserted++
	}
	productsConsolidated.Add(float64(upserted))

	status := types.StatusSuccess
	if result.Failed > 0 && result.Consolidated == 0 {
		st.addError("%s: all %d EAN groups failed", types.PhaseConsolidation, result.Failed)
		status = types.StatusError
	} else if result.Failed > 0 || upserted < result.Consolidated {
		status = types.StatusWarning
	}

	return phaseOutcome{
		Status:    status,
		Processed: upserted,
		Detail: map[string]any{
			"inputRecords": len(st.normalized),
			"consolidated": result.Consolidated,
			"failedGroups": result.Failed,
			"upserted":     upserted,
		},
	}
}

// pricingPhase resolves a rule per consolidated product and persists the
// computed sale price. Fallback pricings are recorded as warnings: they mean
// the rule set lacks a default rule.
func (o *Orchestrator) pricingPhase(ctx context.Context, st *runState) phaseOutcome {
	rules, err := o.store.PricingRules(ctx)
	if err != nil {
		st.addError("%s: load rules: %v", types.PhasePricing, err)
		return phaseOutcome{Status: types.StatusError, Detail: map[string]any{"error": err.Error()}}
	}

	index := pricing.NewIndex(rules)
	asOf := o.now()

	priced, failed, fallbacks := 0, 0, 0
	for _, product := range st.products {
		resolution := index.Resolve(product, asOf)
		if resolution.Fallback {
			fallbacks++
			pricingFallbacks.Inc()
			st.addWarning("%s: no rule matched %s, flat fallback markup applied", types.PhasePricing, product.EAN)
		}

		salePrice := pricing.SalePrice(product.PurchasePrice, resolution)
		if err := o.store.UpdateSalePrice(ctx, product.EAN, salePrice, asOf); err != nil {
			st.addWarning("%s: update %s: %v", types.PhasePricing, product.EAN, err)
			failed++
			continue
		}
		priced++
	}
	productsPriced.Add(float64(priced))

	status := types.StatusSuccess
	if len(st.products) > 0 && priced == 0 {
		st.addError("%s: no products priced (%d failures)", types.PhasePricing, failed)
		status = types.StatusError
	} else if failed > 0 || fallbacks > 0 {
		status = types.StatusWarning
	}

	return phaseOutcome{
		Status:    status,
		Processed: priced,
		Detail: map[string]any{
			"rules":     len(rules),
			"priced":    priced,
			"failed":    failed,
			"fallbacks": fallbacks,
		},
	}
}

// enrichmentPhase feeds unenriched EANs to an external provider one at a
// time, sleeping the configured pacing delay between calls to respect the
// provider's rate limits.
func (o *Orchestrator) enrichmentPhase(ctx context.Context, st *runState, provider enrichment.Provider, phase types.Phase, itemCap int) phaseOutcome {
	limit := itemCap
	if limit <= 0 {
		limit = 100
	}

	eans, err := o.store.EANsMissingEnrichment(ctx, limit)
	if err != nil {
		st.addError("%s: load unenriched EANs: %v", phase, err)
		return phaseOutcome{Status: types.StatusError, Detail: map[string]any{"error": err.Error()}}
	}

	enriched, failed := 0, 0
	totalCost := 0.0

	for i, ean := range eans {
		if i > 0 && st.opts.PacingDelay > 0 {
			select {
			case <-ctx.Done():
				st.addWarning("%s: canceled after %d items", phase, enriched+failed)
				return phaseOutcome{
					Status:    types.StatusWarning,
					Processed: enriched,
					Detail:    map[string]any{"enriched": enriched, "failed": failed, "canceled": true},
				}
			case <-time.After(st.opts.PacingDelay):
			}
		}

		result, err := provider.Enrich(ctx, ean)
		totalCost += result.Cost
		if err != nil || !result.OK {
			failed++
			o.logger.Warn().Err(err).Str("ean", ean).Str("provider", provider.Name()).Msg("Enrichment failed")
			continue
		}
		if err := o.store.MarkEnriched(ctx, ean); err != nil {
			st.addWarning("%s: mark %s enriched: %v", phase, ean, err)
			failed++
			continue
		}
		enriched++
	}
	enrichmentCost.WithLabelValues(provider.Name()).Add(totalCost)

	status := types.StatusSuccess
	if len(eans) > 0 && enriched == 0 {
		st.addError("%s: all %d items failed via %s", phase, failed, provider.Name())
		status = types.StatusError
	} else if failed > 0 {
		status = types.StatusWarning
	}

	return phaseOutcome{
		Status:    status,
		Processed: enriched,
		Detail: map[string]any{
			"provider": provider.Name(),
			"enriched": enriched,
			"failed":   failed,
			"cost":     totalCost,
		},
	}
}
