// Package enrichment fills in missing product data (descriptions, brand
// names) for consolidated catalog entries using external sources.
package enrichment

import (
	"context"

	"github.com/listino/catalog-service/internal/types"
)

// Result reports the outcome of enriching a single product
type Result struct {
	OK   bool    // product data was found and persisted
	Cost float64 // cost in EUR attributed to this call, 0 for free sources
}

// Provider enriches one product identified by its EAN. Implementations
// persist whatever fields they recover; the caller only tracks success and
// cost.
type Provider interface {
	Name() string
	Enrich(ctx context.Context, ean string) (Result, error)
}

// ProductWriter is the persistence surface providers need: read the current
// product and write back the fields the provider recovered.
type ProductWriter interface {
	MasterProduct(ctx context.Context, ean string) (*types.MasterProduct, error)
	UpdateEnrichedFields(ctx context.Context, ean string, description, brand string) error
}
