// Package consolidate reduces normalized supplier records to one master
// product per EAN. The reduction is a pure function of its input: rerunning
// it over the same records yields identical output, which is what makes the
// pipeline's upserts idempotent.
package consolidate

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/listino/catalog-service/internal/types"
)

// Window bounds the import timestamps that participate in a consolidation
// run. From is inclusive; a zero To means unbounded.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether ts falls inside the window
func (w Window) Contains(ts time.Time) bool {
	if ts.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && ts.After(w.To) {
		return false
	}
	return true
}

// Result carries the consolidated products plus per-group failure counts.
// One bad EAN group never aborts the others.
type Result struct {
	Products     []types.MasterProduct
	Consolidated int
	Failed       int
	FailedEANs   []string
}

// Consolidate filters, groups and reduces normalized records into master
// products. Only records with a non-empty EAN, a positive purchase price and
// an import timestamp inside the window participate. Output order follows the
// first occurrence of each EAN in the input, so the result is reproducible.
func Consolidate(records []types.NormalizedRecord, window Window, now time.Time) Result {
	groups := make(map[string][]types.NormalizedRecord)
	order := make([]string, 0)

	for _, rec := range records {
		if rec.EAN == "" {
			continue
		}
		if rec.PurchasePrice == nil || *rec.PurchasePrice <= 0 {
			continue
		}
		if !window.Contains(rec.ImportedAt) {
			continue
		}
		if _, seen := groups[rec.EAN]; !seen {
			order = append(order, rec.EAN)
		}
		groups[rec.EAN] = append(groups[rec.EAN], rec)
	}

	result := Result{Products: make([]types.MasterProduct, 0, len(order))}

	for _, ean := range order {
		product, err := reduceGroup(ean, groups[ean], now)
		if err != nil {
			log.Error().Err(err).Str("ean", ean).Msg("Failed to consolidate EAN group")
			result.Failed++
			result.FailedEANs = append(result.FailedEANs, ean)
			continue
		}
		result.Products = append(result.Products, product)
		result.Consolidated++
	}

	return result
}

// reduceGroup builds the master product for one EAN group. A panic inside
// the reduction is converted to that group's failure so the remaining groups
// still get processed.
func reduceGroup(ean string, group []types.NormalizedRecord, now time.Time) (product types.MasterProduct, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic consolidating %s: %v", ean, r)
		}
	}()

	winner, err := selectBest(group)
	if err != nil {
		return types.MasterProduct{}, err
	}

	totalQuantity := 0
	for _, rec := range group {
		totalQuantity += rec.Quantity
	}

	// Winner's canonical category, falling back to its raw supplier string
	category := winner.SupplierCategory
	if winner.Category != nil {
		category = *winner.Category
	}

	return types.MasterProduct{
		EAN:           ean,
		SupplierID:    winner.SupplierID,
		SupplierSKU:   winner.SupplierSKU,
		PurchasePrice: *winner.PurchasePrice,
		Quantity:      totalQuantity,
		Category:      category,
		Brand:         winner.Brand,
		Description:   winner.Description,
		UpdatedAt:     now,
	}, nil
}

// selectBest picks the record with the minimum purchase price; ties are
// broken by first occurrence in input order so the selection is stable.
// An empty group can only come from a caller bug and is reported, never
// papered over with a fabricated record.
func selectBest(group []types.NormalizedRecord) (types.NormalizedRecord, error) {
	if len(group) == 0 {
		return types.NormalizedRecord{}, fmt.Errorf("empty EAN group")
	}

	best := group[0]
	if best.PurchasePrice == nil {
		return types.NormalizedRecord{}, fmt.Errorf("record without purchase price in group")
	}
	for _, rec := range group[1:] {
		if rec.PurchasePrice == nil {
			return types.NormalizedRecord{}, fmt.Errorf("record without purchase price in group")
		}
		if *rec.PurchasePrice < *best.PurchasePrice {
			best = rec
		}
	}
	return best, nil
}
