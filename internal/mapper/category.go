package mapper

import (
	"strings"

	"github.com/listino/catalog-service/internal/types"
)

// CategoryResolution is the outcome of mapping a supplier category string
type CategoryResolution struct {
	Canonical *string // nil when no mapping matched
	Exact     bool    // true when matched by exact comparison
}

// ResolveCategory maps a supplier category to a canonical one. Exact
// case-insensitive matches always outrank substring matches; within each
// tier the mapping with the lowest priority value wins. Mappings must be
// ordered by priority ascending, as loaded from the configuration store.
//
// Substring matching means the supplier category CONTAINS the mapping key,
// so a short key can match inside a longer unrelated category string. That
// behavior is intentional and kept as-is pending supplier taxonomy review.
func ResolveCategory(supplierCategory string, mappings []types.CategoryMapping) CategoryResolution {
	needle := strings.ToLower(strings.TrimSpace(supplierCategory))
	if needle == "" {
		return CategoryResolution{}
	}

	for _, m := range mappings {
		if strings.ToLower(strings.TrimSpace(m.SupplierCategory)) == needle {
			canonical := m.CanonicalCategory
			return CategoryResolution{Canonical: &canonical, Exact: true}
		}
	}

	for _, m := range mappings {
		key := strings.ToLower(strings.TrimSpace(m.SupplierCategory))
		if key == "" {
			continue
		}
		if strings.Contains(needle, key) {
			canonical := m.CanonicalCategory
			return CategoryResolution{Canonical: &canonical}
		}
	}

	return CategoryResolution{}
}
