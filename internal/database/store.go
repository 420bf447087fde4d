package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/listino/catalog-service/internal/types"
)

// Store exposes the persistence operations the pipeline needs, backed by the
// package connection pool. Methods convert between rows and domain types so
// callers never see SQL-level shapes.
type Store struct{}

// NewStore returns a Store bound to the package pool
func NewStore() *Store {
	return &Store{}
}

// ActiveSuppliers returns all suppliers flagged active, in a stable order
func (s *Store) ActiveSuppliers(ctx context.Context) ([]types.Supplier, error) {
	rows, err := Pool().Query(ctx, `
		SELECT id, name, active, created_at
		FROM suppliers
		WHERE active = true
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query active suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []types.Supplier
	for rows.Next() {
		var sup types.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Active, &sup.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	return suppliers, rows.Err()
}

// InsertRawRecords stores one import batch for a supplier. The original
// field bag is kept as JSON so the batch can be audited or re-normalized
// within the retention window.
func (s *Store) InsertRawRecords(ctx context.Context, records []types.RawRecord) error {
	pool := Pool()

	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		fields, err := json.Marshal(rec.Fields)
		if err != nil {
			return fmt.Errorf("marshal raw fields: %w", err)
		}
		_, err = pool.Exec(ctx, `
			INSERT INTO raw_records (
				id, supplier_id, supplier_sku, ean, purchase_price, quantity,
				supplier_category, brand, description, fields, imported_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, rec.ID, rec.SupplierID, rec.SupplierSKU, rec.EAN, rec.PurchasePrice,
			rec.Quantity, rec.SupplierCategory, rec.Brand, rec.Description,
			string(fields), rec.ImportedAt)
		if err != nil {
			return fmt.Errorf("insert raw record: %w", err)
		}
	}
	return nil
}

// RawRecordsSince loads raw records imported at or after the cutoff,
// in import order.
func (s *Store) RawRecordsSince(ctx context.Context, cutoff time.Time) ([]types.RawRecord, error) {
	rows, err := Pool().Query(ctx, `
		SELECT id, supplier_id, supplier_sku, ean, purchase_price, quantity,
		       supplier_category, brand, description, fields, imported_at
		FROM raw_records
		WHERE imported_at >= $1
		ORDER BY imported_at, id
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query raw records: %w", err)
	}
	defer rows.Close()

	var records []types.RawRecord
	for rows.Next() {
		var rec types.RawRecord
		var fields string
		err := rows.Scan(&rec.ID, &rec.SupplierID, &rec.SupplierSKU, &rec.EAN,
			&rec.PurchasePrice, &rec.Quantity, &rec.SupplierCategory,
			&rec.Brand, &rec.Description, &fields, &rec.ImportedAt)
		if err != nil {
			return nil, fmt.Errorf("scan raw record: %w", err)
		}
		if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
			rec.Fields = map[string]string{}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateNormalizedFields writes the mapper's output back onto a raw record
func (s *Store) UpdateNormalizedFields(ctx context.Context, recordID string, rec types.NormalizedRecord) error {
	var ean, sku, category, brand, description *string
	if rec.EAN != "" {
		ean = &rec.EAN
	}
	if rec.SupplierSKU != "" {
		sku = &rec.SupplierSKU
	}
	if rec.SupplierCategory != "" {
		category = &rec.SupplierCategory
	}
	if rec.Brand != "" {
		brand = &rec.Brand
	}
	if rec.Description != "" {
		description = &rec.Description
	}

	_, err := Pool().Exec(ctx, `
		UPDATE raw_records
		SET supplier_sku = $1, ean = $2, purchase_price = $3, quantity = $4,
		    supplier_category = $5, brand = $6, description = $7
		WHERE id = $8
	`, sku, ean, rec.PurchasePrice, rec.Quantity, category, brand, description, recordID)
	if err != nil {
		return fmt.Errorf("update normalized fields: %w", err)
	}
	return nil
}

// FieldMappings returns a supplier's field mappings ordered by priority
// ascending, which is the order the mapper depends on.
func (s *Store) FieldMappings(ctx context.Context, supplierID string) ([]types.FieldMapping, error) {
	rows, err := Pool().Query(ctx, `
		SELECT supplier_id, source_field, canonical_field, transforms, priority
		FROM field_mappings
		WHERE supplier_id = $1
		ORDER BY priority, source_field
	`, supplierID)
	if err != nil {
		return nil, fmt.Errorf("query field mappings: %w", err)
	}
	defer rows.Close()

	var mappings []types.FieldMapping
	for rows.Next() {
		var m types.FieldMapping
		var canonical string
		if err := rows.Scan(&m.SupplierID, &m.SourceField, &canonical, &m.Transforms, &m.Priority); err != nil {
			return nil, fmt.Errorf("scan field mapping: %w", err)
		}
		m.CanonicalField = types.CanonicalField(canonical)
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// CategoryMappings returns a supplier's category mappings ordered by priority
func (s *Store) CategoryMappings(ctx context.Context, supplierID string) ([]types.CategoryMapping, error) {
	rows, err := Pool().Query(ctx, `
		SELECT supplier_id, supplier_category, canonical_category, priority
		FROM category_mappings
		WHERE supplier_id = $1
		ORDER BY priority, supplier_category
	`, supplierID)
	if err != nil {
		return nil, fmt.Errorf("query category mappings: %w", err)
	}
	defer rows.Close()

	var mappings []types.CategoryMapping
	for rows.Next() {
		var m types.CategoryMapping
		if err := rows.Scan(&m.SupplierID, &m.SupplierCategory, &m.CanonicalCategory, &m.Priority); err != nil {
			return nil, fmt.Errorf("scan category mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// PricingRules returns every pricing rule; the pricing index filters and
// sorts, so no WHERE clause beyond ordering for stable reads.
func (s *Store) PricingRules(ctx context.Context) ([]types.PricingRule, error) {
	rows, err := Pool().Query(ctx, `
		SELECT id, type, reference, markup_percent, markup_fixed,
		       shipping_cost, priority, valid_from, valid_to, active
		FROM pricing_rules
		ORDER BY type, priority, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query pricing rules: %w", err)
	}
	defer rows.Close()

	var rules []types.PricingRule
	for rows.Next() {
		var r types.PricingRule
		var ruleType string
		var reference *string
		err := rows.Scan(&r.ID, &ruleType, &reference, &r.MarkupPercent,
			&r.MarkupFixed, &r.ShippingCost, &r.Priority,
			&r.ValidFrom, &r.ValidTo, &r.Active)
		if err != nil {
			return nil, fmt.Errorf("scan pricing rule: %w", err)
		}
		r.Type = types.RuleType(ruleType)
		if reference != nil {
			r.Reference = *reference
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// UpsertMasterProduct inserts or fully replaces the consolidated record for
// an EAN. Every derived field is overwritten: the latest consolidation run
// is authoritative, stale values are never merged.
func (s *Store) UpsertMasterProduct(ctx context.Context, p types.MasterProduct) error {
	_, err := Pool().Exec(ctx, `
		INSERT INTO master_products (
			ean, supplier_id, supplier_sku, purchase_price, quantity,
			category, brand, description, sale_price, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (ean) DO UPDATE SET
			supplier_id = EXCLUDED.supplier_id,
			supplier_sku = EXCLUDED.supplier_sku,
			purchase_price = EXCLUDED.purchase_price,
			quantity = EXCLUDED.quantity,
			category = EXCLUDED.category,
			brand = EXCLUDED.brand,
			description = EXCLUDED.description,
			sale_price = EXCLUDED.sale_price,
			updated_at = EXCLUDED.updated_at
	`, p.EAN, p.SupplierID, p.SupplierSKU, p.PurchasePrice, p.Quantity,
		p.Category, p.Brand, p.Description, p.SalePrice, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert master product %s: %w", p.EAN, err)
	}
	return nil
}

// UpdateSalePrice writes the computed sale price for one EAN
func (s *Store) UpdateSalePrice(ctx context.Context, ean string, salePriceCents int64, at time.Time) error {
	_, err := Pool().Exec(ctx, `
		UPDATE master_products
		SET sale_price = $1, updated_at = $2
		WHERE ean = $3
	`, salePriceCents, at, ean)
	if err != nil {
		return fmt.Errorf("update sale price %s: %w", ean, err)
	}
	return nil
}

// MasterProducts returns consolidated products ordered by EAN
func (s *Store) MasterProducts(ctx context.Context, limit, offset int) ([]types.MasterProduct, error) {
	rows, err := Pool().Query(ctx, `
		SELECT ean, supplier_id, supplier_sku, purchase_price, quantity,
		       category, brand, description, sale_price, enriched, updated_at
		FROM master_products
		ORDER BY ean
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query master products: %w", err)
	}
	defer rows.Close()

	var products []types.MasterProduct
	for rows.Next() {
		var p types.MasterProduct
		err := rows.Scan(&p.EAN, &p.SupplierID, &p.SupplierSKU, &p.PurchasePrice,
			&p.Quantity, &p.Category, &p.Brand, &p.Description,
			&p.SalePrice, &p.Enriched, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan master product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// MasterProduct returns one consolidated product by EAN
func (s *Store) MasterProduct(ctx context.Context, ean string) (*types.MasterProduct, error) {
	var p types.MasterProduct
	err := Pool().QueryRow(ctx, `
		SELECT ean, supplier_id, supplier_sku, purchase_price, quantity,
		       category, brand, description, sale_price, enriched, updated_at
		FROM master_products
		WHERE ean = $1
	`, ean).Scan(&p.EAN, &p.SupplierID, &p.SupplierSKU, &p.PurchasePrice,
		&p.Quantity, &p.Category, &p.Brand, &p.Description,
		&p.SalePrice, &p.Enriched, &p.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query master product %s: %w", ean, err)
	}
	return &p, nil
}

// CountMasterProducts returns the total number of consolidated products
func (s *Store) CountMasterProducts(ctx context.Context) (int, error) {
	var count int
	if err := Pool().QueryRow(ctx, `SELECT COUNT(*) FROM master_products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count master products: %w", err)
	}
	return count, nil
}

// EANsMissingEnrichment returns EANs that have not been enriched yet,
// capped at limit for cost control.
func (s *Store) EANsMissingEnrichment(ctx context.Context, limit int) ([]string, error) {
	rows, err := Pool().Query(ctx, `
		SELECT ean
		FROM master_products
		WHERE enriched = false
		ORDER BY ean
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unenriched EANs: %w", err)
	}
	defer rows.Close()

	var eans []string
	for rows.Next() {
		var ean string
		if err := rows.Scan(&ean); err != nil {
			return nil, fmt.Errorf("scan ean: %w", err)
		}
		eans = append(eans, ean)
	}
	return eans, rows.Err()
}

// UpdateEnrichedFields writes description and brand recovered by an
// enrichment provider. Empty values leave the existing column untouched.
func (s *Store) UpdateEnrichedFields(ctx context.Context, ean string, description, brand string) error {
	_, err := Pool().Exec(ctx, `
		UPDATE master_products
		SET description = COALESCE(NULLIF($1, ''), description),
		    brand = COALESCE(NULLIF($2, ''), brand),
		    updated_at = NOW()
		WHERE ean = $3
	`, description, brand, ean)
	if err != nil {
		return fmt.Errorf("update enriched fields %s: %w", ean, err)
	}
	return nil
}

// MarkEnriched flags one EAN as enriched
func (s *Store) MarkEnriched(ctx context.Context, ean string) error {
	_, err := Pool().Exec(ctx, `
		UPDATE master_products SET enriched = true, updated_at = NOW() WHERE ean = $1
	`, ean)
	if err != nil {
		return fmt.Errorf("mark enriched %s: %w", ean, err)
	}
	return nil
}
