package consolidate

import (
	"reflect"
	"testing"
	"time"

	"github.com/listino/catalog-service/internal/types"
)

var (
	testNow    = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	testWindow = Window{From: testNow.AddDate(0, 0, -7)}
)

func rec(supplier, ean string, priceCents int64, qty int) types.NormalizedRecord {
	return types.NormalizedRecord{
		SupplierID:    supplier,
		SupplierSKU:   supplier + "-" + ean,
		EAN:           ean,
		PurchasePrice: &priceCents,
		Quantity:      qty,
		ImportedAt:    testNow.Add(-time.Hour),
	}
}

func TestConsolidateBestPriceSelection(t *testing.T) {
	records := []types.NormalizedRecord{
		rec("sup_a", "0000000000017", 1250, 5),
		rec("sup_b", "0000000000017", 999, 3),
		rec("sup_c", "0000000000017", 1500, 10),
	}

	result := Consolidate(records, testWindow, testNow)
	if result.Consolidated != 1 || result.Failed != 0 {
		t.Fatalf("got %d consolidated, %d failed", result.Consolidated, result.Failed)
	}

	p := result.Products[0]
	if p.PurchasePrice != 999 {
		t.Errorf("PurchasePrice = %d, want 999", p.PurchasePrice)
	}
	if p.SupplierID != "sup_b" {
		t.Errorf("SupplierID = %q, want sup_b", p.SupplierID)
	}
	if p.Quantity != 18 {
		t.Errorf("Quantity = %d, want 18 (sum across all suppliers)", p.Quantity)
	}
}

func TestConsolidateTieBreakIsFirstOccurrence(t *testing.T) {
	records := []types.NormalizedRecord{
		rec("sup_a", "0000000000017", 999, 1),
		rec("sup_b", "0000000000017", 999, 1),
	}

	result := Consolidate(records, testWindow, testNow)
	if got := result.Products[0].SupplierID; got != "sup_a" {
		t.Errorf("tie should keep first occurrence, got %q", got)
	}
}

func TestConsolidateFilters(t *testing.T) {
	noPrice := rec("sup_a", "0000000000024", 0, 1)
	noPrice.PurchasePrice = nil
	negative := rec("sup_a", "0000000000031", -100, 1)
	stale := rec("sup_a", "0000000000048", 500, 1)
	stale.ImportedAt = testNow.AddDate(0, 0, -30)
	noEAN := rec("sup_a", "", 500, 1)

	result := Consolidate([]types.NormalizedRecord{
		noPrice, negative, stale, noEAN,
		rec("sup_b", "0000000000055", 700, 2),
	}, testWindow, testNow)

	if result.Consolidated != 1 {
		t.Fatalf("Consolidated = %d, want 1", result.Consolidated)
	}
	if result.Products[0].EAN != "0000000000055" {
		t.Errorf("surviving EAN = %q, want 0000000000055", result.Products[0].EAN)
	}
	// Filtered records are not failures
	if result.Failed != 0 {
		t.Errorf("Failed = %d, want 0", result.Failed)
	}
}

func TestConsolidateCategoryFallback(t *testing.T) {
	mapped := rec("sup_a", "0000000000017", 999, 1)
	gpu := "GPU"
	mapped.Category = &gpu
	mapped.SupplierCategory = "Schede Video Gaming"

	unmapped := rec("sup_a", "0000000000024", 999, 1)
	unmapped.SupplierCategory = "Xyz123"

	result := Consolidate([]types.NormalizedRecord{mapped, unmapped}, testWindow, testNow)
	if got := result.Products[0].Category; got != "GPU" {
		t.Errorf("Category = %q, want canonical GPU", got)
	}
	if got := result.Products[1].Category; got != "Xyz123" {
		t.Errorf("Category = %q, want raw supplier string fallback", got)
	}
}

func TestConsolidateIdempotence(t *testing.T) {
	records := []types.NormalizedRecord{
		rec("sup_a", "0000000000017", 1250, 5),
		rec("sup_b", "0000000000017", 999, 3),
		rec("sup_a", "0000000000024", 450, 7),
	}

	first := Consolidate(records, testWindow, testNow)
	second := Consolidate(records, testWindow, testNow)
	if !reflect.DeepEqual(first, second) {
		t.Error("consolidating the same input twice produced different results")
	}
}

func TestConsolidateOutputOrderFollowsInput(t *testing.T) {
	records := []types.NormalizedRecord{
		rec("sup_a", "0000000000031", 100, 1),
		rec("sup_a", "0000000000017", 100, 1),
		rec("sup_b", "0000000000031", 90, 1),
	}

	result := Consolidate(records, testWindow, testNow)
	if len(result.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(result.Products))
	}
	if result.Products[0].EAN != "0000000000031" || result.Products[1].EAN != "0000000000017" {
		t.Errorf("output order %q,%q does not follow first occurrence",
			result.Products[0].EAN, result.Products[1].EAN)
	}
}

func TestSelectBestRejectsEmptyGroup(t *testing.T) {
	if _, err := selectBest(nil); err == nil {
		t.Error("selectBest(nil) should report an internal error")
	}
}
