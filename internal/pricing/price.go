package pricing

import "math"

// SalePrice computes the sale price in cents for a purchase price under the
// given rule: round2((purchase + shipping) * (1 + markupPercent/100) + fixed),
// half-up. A non-positive purchase price yields 0, not an error: products
// without a usable cost are exported unpriced rather than mispriced.
func SalePrice(purchaseCents int64, res Resolution) int64 {
	if purchaseCents <= 0 {
		return 0
	}

	r := res.Rule
	base := float64(purchaseCents + r.ShippingCost)
	price := base*(1+r.MarkupPercent/100) + float64(r.MarkupFixed)

	return int64(math.Round(price))
}
