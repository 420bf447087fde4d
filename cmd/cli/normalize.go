package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/listino/catalog-service/internal/database"
	"github.com/listino/catalog-service/internal/ingest"
	"github.com/listino/catalog-service/internal/mapper"
	"github.com/listino/catalog-service/internal/types"
)

var (
	normalizeSupplier string
	normalizeLimit    int
	normalizeAll      bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>",
	Short: "Dry-run normalization of a feed file against supplier mappings",
	Long: `Parses a local CSV or XLSX feed file, applies the supplier's field and
category mappings from the database and prints the resulting normalized
records. Nothing is written; use this to verify mappings before dropping a
feed into the ingestion directory.`,
	Example: `  # Preview mapping output for a supplier feed
  catalog-service normalize --supplier sup-techdata pricelist.csv

  # Show every row, including ones that fail normalization
  catalog-service normalize --supplier sup-techdata --all pricelist.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringVar(&normalizeSupplier, "supplier", "", "supplier ID whose mappings to apply")
	normalizeCmd.Flags().IntVar(&normalizeLimit, "limit", 20, "max rows to print")
	normalizeCmd.Flags().BoolVar(&normalizeAll, "all", false, "print skipped rows too (missing EAN or price)")
	normalizeCmd.MarkFlagRequired("supplier")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var rows []map[string]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = ingest.ReadCSV(data)
	case ".xlsx":
		rows, err = ingest.ReadXLSX(data)
	default:
		return fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		fmt.Println("No data rows found.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := database.NewStore()
	fieldMappings, err := store.FieldMappings(ctx, normalizeSupplier)
	if err != nil {
		return fmt.Errorf("failed to load field mappings: %w", err)
	}
	if len(fieldMappings) == 0 {
		return fmt.Errorf("no field mappings configured for supplier %s", normalizeSupplier)
	}
	categoryMappings, err := store.CategoryMappings(ctx, normalizeSupplier)
	if err != nil {
		return fmt.Errorf("failed to load category mappings: %w", err)
	}

	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EAN\tSKU\tPRICE\tQTY\tCATEGORY\tBRAND\tDESCRIPTION")

	printed, skipped := 0, 0
	for _, fields := range rows {
		raw := types.RawRecord{
			SupplierID: normalizeSupplier,
			Fields:     fields,
			ImportedAt: now,
		}
		rec := mapper.Normalize(raw, fieldMappings, categoryMappings)

		usable := rec.EAN != "" && rec.PurchasePrice != nil
		if !usable {
			skipped++
			if !normalizeAll {
				continue
			}
		}
		if printed >= normalizeLimit {
			continue
		}
		printed++

		price := "-"
		if rec.PurchasePrice != nil {
			price = mapper.FormatCents(*rec.PurchasePrice)
		}
		ean := rec.EAN
		if ean == "" {
			ean = "-"
		}
		category := rec.SupplierCategory
		if rec.Category != nil {
			category = *rec.Category
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			ean, rec.SupplierSKU, price, rec.Quantity, category, rec.Brand, truncate(rec.Description, 40))
	}
	w.Flush()

	fmt.Printf("\n%d rows parsed, %d would be skipped (missing EAN or price)\n", len(rows), skipped)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
