package types

import "time"

// CanonicalField identifies a canonical attribute a supplier field can map to
type CanonicalField string

const (
	FieldSKU         CanonicalField = "SKU"
	FieldEAN         CanonicalField = "EAN"
	FieldDescription CanonicalField = "Description"
	FieldPrice       CanonicalField = "Price"
	FieldQuantity    CanonicalField = "Quantity"
	FieldCategory    CanonicalField = "Category"
	FieldBrand       CanonicalField = "Brand"
)

// CanonicalFields lists every canonical field in mapping order
var CanonicalFields = []CanonicalField{
	FieldSKU, FieldEAN, FieldDescription, FieldPrice,
	FieldQuantity, FieldCategory, FieldBrand,
}

// Supplier represents a price list source. Suppliers are managed externally;
// the pipeline only reads them.
type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// RawRecord is one row of a supplier's price list as ingested, before and
// after normalization. Fields is the original key->value bag; the canonical
// columns are filled in by the mapper.
type RawRecord struct {
	ID               string            `json:"id"`
	SupplierID       string            `json:"supplierId"`
	SupplierSKU      *string           `json:"supplierSku,omitempty"`
	EAN              *string           `json:"ean,omitempty"` // nil until mapped
	PurchasePrice    *int64            `json:"purchasePrice,omitempty"` // cents
	Quantity         int               `json:"quantity"`
	SupplierCategory *string           `json:"supplierCategory,omitempty"`
	Brand            *string           `json:"brand,omitempty"`
	Description      *string           `json:"description,omitempty"`
	Fields           map[string]string `json:"fields"`
	ImportedAt       time.Time         `json:"importedAt"`
}

// NormalizedRecord is the mapper's output: a raw record with canonical
// attributes resolved. EAN is empty when the source value normalized to
// nothing usable; PurchasePrice is nil when the source price was unparsable.
type NormalizedRecord struct {
	SupplierID       string    `json:"supplierId"`
	SupplierSKU      string    `json:"supplierSku"`
	EAN              string    `json:"ean"`
	Description      string    `json:"description"`
	PurchasePrice    *int64    `json:"purchasePrice,omitempty"` // cents
	Quantity         int       `json:"quantity"`
	Category         *string   `json:"category,omitempty"` // canonical, nil if unmapped
	SupplierCategory string    `json:"supplierCategory"`
	Brand            string    `json:"brand"`
	ImportedAt       time.Time `json:"importedAt"`
}

// FieldMapping maps one supplier field name to a canonical field. Mappings
// for the same canonical field are ordered by Priority ascending; the first
// one that yields a value wins.
type FieldMapping struct {
	SupplierID     string         `json:"supplierId"`
	SourceField    string         `json:"sourceField"`
	CanonicalField CanonicalField `json:"canonicalField"`
	Transforms     []string       `json:"transforms"`
	Priority       int            `json:"priority"`
}

// CategoryMapping maps a supplier category string to a canonical category.
// Lookup is case-insensitive; exact matches outrank substring matches.
type CategoryMapping struct {
	SupplierID        string `json:"supplierId"`
	SupplierCategory  string `json:"supplierCategory"`
	CanonicalCategory string `json:"canonicalCategory"`
	Priority          int    `json:"priority"`
}

// MasterProduct is the single consolidated record per EAN.
type MasterProduct struct {
	EAN           string    `json:"ean"`
	SupplierID    string    `json:"supplierId"` // best-price supplier
	SupplierSKU   string    `json:"supplierSku"`
	PurchasePrice int64     `json:"purchasePrice"` // cents, group minimum
	Quantity      int       `json:"quantity"`      // sum across all suppliers
	Category      string    `json:"category"`
	Brand         string    `json:"brand"`
	Description   string    `json:"description"`
	SalePrice     int64     `json:"salePrice"` // cents, 0 until priced
	Enriched      bool      `json:"enriched"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RuleType identifies the specificity level of a pricing rule
type RuleType string

const (
	RuleProduct  RuleType = "PRODUCT"
	RuleBrand    RuleType = "BRAND"
	RuleCategory RuleType = "CATEGORY"
	RuleDefault  RuleType = "DEFAULT"
)

// PricingRule describes a markup rule. Reference is the SKU/EAN, brand name
// or category name depending on Type; empty for DEFAULT rules. Lower Priority
// wins when several rules of the same type match.
type PricingRule struct {
	ID            string     `json:"id"`
	Type          RuleType   `json:"type"`
	Reference     string     `json:"reference,omitempty"`
	MarkupPercent float64    `json:"markupPercent"`
	MarkupFixed   int64      `json:"markupFixed"`  // cents
	ShippingCost  int64      `json:"shippingCost"` // cents
	Priority      int        `json:"priority"`
	ValidFrom     *time.Time `json:"validFrom,omitempty"`
	ValidTo       *time.Time `json:"validTo,omitempty"`
	Active        bool       `json:"active"`
}

// Phase names the steps of a pipeline run, in execution order
type Phase string

const (
	PhaseIngestion     Phase = "INGESTION"
	PhaseNormalization Phase = "NORMALIZATION"
	PhaseConsolidation Phase = "CONSOLIDATION"
	PhasePricing       Phase = "PRICING"
	PhaseEnrichment    Phase = "ENRICHMENT"
	PhaseAIEnrichment  Phase = "AI_ENRICHMENT"
	PhaseComplete      Phase = "COMPLETE"
)

// PhaseStatus is the terminal status of one executed phase
type PhaseStatus string

const (
	StatusRunning PhaseStatus = "running"
	StatusSuccess PhaseStatus = "success"
	StatusWarning PhaseStatus = "warning"
	StatusError   PhaseStatus = "error"
)

// RunLog is one append-only row per executed pipeline phase.
type RunLog struct {
	ID        string        `json:"id"`
	RunID     string        `json:"runId"`
	Phase     Phase         `json:"phase"`
	Status    PhaseStatus   `json:"status"`
	Detail    string        `json:"detail"` // JSON blob with counts
	Duration  time.Duration `json:"duration"`
	Processed int           `json:"processed"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CompletionEvent is the single notification emitted per pipeline run.
type CompletionEvent struct {
	RunID         string        `json:"runId"`
	Success       bool          `json:"success"`
	Duration      time.Duration `json:"duration"`
	TotalProducts int           `json:"totalProducts"`
	Warnings      []string      `json:"warnings"`
	Errors        []string      `json:"errors"`
	FinishedAt    time.Time     `json:"finishedAt"`
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// Int64Ptr returns a pointer to the given int64
func Int64Ptr(i int64) *int64 {
	return &i
}

// TimePtr returns a pointer to the given time
func TimePtr(t time.Time) *time.Time {
	return &t
}
