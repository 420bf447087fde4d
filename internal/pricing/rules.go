// Package pricing resolves markup rules and computes sale prices. The rule
// cascade runs over a pre-sorted in-memory index so resolution is a pure
// function of the rule set, the product and the as-of date.
package pricing

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/listino/catalog-service/internal/types"
)

// FallbackMarkupPercent is applied when no rule matches at all. Hitting this
// path means the rule set is missing a default rule and is always surfaced
// as a warning, never silently.
const FallbackMarkupPercent = 20.0

// Index holds active pricing rules grouped by type and sorted by priority
// ascending, so the first match per type is the winner.
type Index struct {
	byType map[types.RuleType][]types.PricingRule
}

// NewIndex builds a rule index from the configured rule list. Inactive rules
// are dropped up front; date validity is checked per resolution since it
// depends on the as-of date.
func NewIndex(rules []types.PricingRule) *Index {
	ix := &Index{byType: make(map[types.RuleType][]types.PricingRule)}
	for _, r := range rules {
		if !r.Active {
			continue
		}
		ix.byType[r.Type] = append(ix.byType[r.Type], r)
	}
	for t := range ix.byType {
		bucket := ix.byType[t]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].Priority < bucket[j].Priority
		})
	}
	return ix
}

// Resolution is the outcome of the rule cascade for one product
type Resolution struct {
	Rule     types.PricingRule
	Fallback bool // no rule matched; flat fallback markup applied
}

// Resolve walks the cascade PRODUCT -> BRAND -> CATEGORY -> DEFAULT and
// returns the first matching rule. When nothing matches, a flat fallback
// markup is returned and the miss is logged as a missing-configuration
// warning.
func (ix *Index) Resolve(product types.MasterProduct, asOf time.Time) Resolution {
	if rule, ok := ix.match(types.RuleProduct, asOf, func(r types.PricingRule) bool {
		return r.Reference != "" && (r.Reference == product.SupplierSKU || r.Reference == product.EAN)
	}); ok {
		return Resolution{Rule: rule}
	}

	if rule, ok := ix.match(types.RuleBrand, asOf, func(r types.PricingRule) bool {
		return product.Brand != "" && strings.EqualFold(r.Reference, product.Brand)
	}); ok {
		return Resolution{Rule: rule}
	}

	if rule, ok := ix.match(types.RuleCategory, asOf, func(r types.PricingRule) bool {
		return product.Category != "" && strings.EqualFold(r.Reference, product.Category)
	}); ok {
		return Resolution{Rule: rule}
	}

	if rule, ok := ix.match(types.RuleDefault, asOf, func(types.PricingRule) bool {
		return true
	}); ok {
		return Resolution{Rule: rule}
	}

	log.Warn().
		Str("ean", product.EAN).
		Msg("No pricing rule matched, applying flat fallback markup")

	return Resolution{
		Rule:     types.PricingRule{Type: types.RuleDefault, MarkupPercent: FallbackMarkupPercent},
		Fallback: true,
	}
}

// match returns the lowest-priority rule of the given type that is date-valid
// and satisfies pred. The bucket is pre-sorted, so the first hit wins.
func (ix *Index) match(t types.RuleType, asOf time.Time, pred func(types.PricingRule) bool) (types.PricingRule, bool) {
	for _, r := range ix.byType[t] {
		if !dateValid(r, asOf) {
			continue
		}
		if pred(r) {
			return r, true
		}
	}
	return types.PricingRule{}, false
}

// dateValid checks validFrom <= asOf <= validTo, treating nil bounds as
// unbounded.
func dateValid(r types.PricingRule, asOf time.Time) bool {
	if r.ValidFrom != nil && asOf.Before(*r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && asOf.After(*r.ValidTo) {
		return false
	}
	return true
}
