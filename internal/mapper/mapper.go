// Package mapper converts raw supplier rows into normalized records with
// canonical attributes. Every function here is pure: the same record and
// mapping configuration always produce the same output.
package mapper

import (
	"sort"
	"strings"

	"github.com/listino/catalog-service/internal/types"
)

// Normalize resolves the canonical fields of one raw record using the
// supplier's field and category mappings. fieldMappings must be ordered by
// priority ascending; for each canonical field the first mapping whose source
// field carries a value wins and later mappings for that field are skipped.
func Normalize(raw types.RawRecord, fieldMappings []types.FieldMapping, categoryMappings []types.CategoryMapping) types.NormalizedRecord {
	values := make(map[types.CanonicalField]string, len(types.CanonicalFields))

	for _, m := range fieldMappings {
		if _, filled := values[m.CanonicalField]; filled {
			continue
		}
		source, ok := lookupField(raw.Fields, m.SourceField)
		if !ok || strings.TrimSpace(source) == "" {
			continue
		}
		values[m.CanonicalField] = ApplyTransforms(source, m.Transforms)
	}

	rec := types.NormalizedRecord{
		SupplierID:       raw.SupplierID,
		SupplierSKU:      values[types.FieldSKU],
		Description:      values[types.FieldDescription],
		Brand:            values[types.FieldBrand],
		SupplierCategory: values[types.FieldCategory],
		ImportedAt:       raw.ImportedAt,
	}

	// EAN is normalized unconditionally so a mapping without an explicit
	// normalize_ean step still yields a canonical 13-digit identity.
	rec.EAN = NormalizeEAN(values[types.FieldEAN])

	if price := values[types.FieldPrice]; price != "" {
		if cents, err := ParsePrice(price); err == nil {
			rec.PurchasePrice = &cents
		}
	}
	rec.Quantity = ParseQuantity(values[types.FieldQuantity])

	res := ResolveCategory(rec.SupplierCategory, categoryMappings)
	rec.Category = res.Canonical

	return rec
}

// lookupField finds a key in the raw field bag, tolerating case differences
// in supplier file headers. When several keys fold to the same name the
// lexicographically smallest wins, keeping the result stable across runs.
func lookupField(fields map[string]string, key string) (string, bool) {
	if v, ok := fields[key]; ok {
		return v, true
	}
	var candidates []string
	for k := range fields {
		if strings.EqualFold(k, key) {
			candidates = append(candidates, k)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Strings(candidates)
	return fields[candidates[0]], true
}
