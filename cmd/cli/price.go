package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/listino/catalog-service/internal/database"
	"github.com/listino/catalog-service/internal/mapper"
	"github.com/listino/catalog-service/internal/pricing"
	"github.com/listino/catalog-service/internal/types"
)

var (
	priceEAN      string
	priceSKU      string
	priceBrand    string
	priceCategory string
	pricePurchase string
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Preview the sale price a product would get under current rules",
	Long: `Resolves the pricing rule cascade (PRODUCT -> BRAND -> CATEGORY ->
DEFAULT) for the given product attributes and prints the computed sale price
with a breakdown. When --ean names an existing master product, its stored
attributes and purchase price are used as defaults.`,
	Example: `  # Preview for an existing catalog product
  catalog-service price --ean 4006381333931

  # What-if for a hypothetical purchase price
  catalog-service price --brand Logitech --category "Periferne naprave" --purchase 19.90`,
	Args: cobra.NoArgs,
	RunE: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().StringVar(&priceEAN, "ean", "", "product EAN")
	priceCmd.Flags().StringVar(&priceSKU, "sku", "", "supplier SKU")
	priceCmd.Flags().StringVar(&priceBrand, "brand", "", "brand name")
	priceCmd.Flags().StringVar(&priceCategory, "category", "", "canonical category")
	priceCmd.Flags().StringVar(&pricePurchase, "purchase", "", "purchase price, e.g. 19.90")
}

func runPrice(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := database.NewStore()

	product := types.MasterProduct{
		EAN:         priceEAN,
		SupplierSKU: priceSKU,
		Brand:       priceBrand,
		Category:    priceCategory,
	}

	if priceEAN != "" {
		stored, err := store.MasterProduct(ctx, priceEAN)
		if err != nil {
			return fmt.Errorf("failed to load product: %w", err)
		}
		if stored != nil {
			product = *stored
			if priceSKU != "" {
				product.SupplierSKU = priceSKU
			}
			if priceBrand != "" {
				product.Brand = priceBrand
			}
			if priceCategory != "" {
				product.Category = priceCategory
			}
		}
	}

	if pricePurchase != "" {
		cents, err := mapper.ParsePrice(pricePurchase)
		if err != nil {
			return fmt.Errorf("invalid --purchase value: %w", err)
		}
		product.PurchasePrice = cents
	}
	if product.PurchasePrice <= 0 {
		return fmt.Errorf("no purchase price: pass --purchase or an --ean with a stored price")
	}

	rules, err := store.PricingRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pricing rules: %w", err)
	}

	res := pricing.NewIndex(rules).Resolve(product, time.Now())
	sale := pricing.SalePrice(product.PurchasePrice, res)

	fmt.Printf("Purchase price:  %s\n", mapper.FormatCents(product.PurchasePrice))
	if res.Fallback {
		fmt.Printf("Rule:            none matched, fallback %.1f%% markup\n", pricing.FallbackMarkupPercent)
	} else {
		r := res.Rule
		fmt.Printf("Rule:            %s %q (priority %d)\n", r.Type, r.Reference, r.Priority)
		fmt.Printf("Markup:          %.2f%% + %s fixed\n", r.MarkupPercent, mapper.FormatCents(r.MarkupFixed))
		fmt.Printf("Shipping:        %s\n", mapper.FormatCents(r.ShippingCost))
	}
	fmt.Printf("Sale price:      %s\n", mapper.FormatCents(sale))
	return nil
}
