package e2e

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/listino/catalog-service/internal/database"
	"github.com/listino/catalog-service/internal/ingest"
	"github.com/listino/catalog-service/internal/pipeline"
	"github.com/listino/catalog-service/internal/storage"
	"github.com/listino/catalog-service/internal/types"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []types.CompletionEvent
}

func (n *captureNotifier) Notify(ctx context.Context, event types.CompletionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

// TestPipelineEndToEnd drops two supplier feeds into a directory, runs the
// full pipeline against a throwaway Postgres and verifies the consolidated,
// priced catalog plus the run log trail.
func TestPipelineEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	ctx := context.Background()

	container, err := startPostgres(ctx)
	require.NoError(t, err)
	defer container.Terminate(ctx)

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Connect(ctx, connStr, 10, 2, 0, 0))
	defer database.Close()
	setupSchema(ctx, t)
	seedConfiguration(ctx, t)

	// Drop directory with one feed per supplier. Supplier A and B both carry
	// the Stabilo highlighter; A is cheaper and must win best-price.
	dropDir := t.TempDir()
	writeFeed(t, dropDir, "sup_alpha", "cjenik.csv",
		"sifra;barkod;naziv;cijena;kolicina;kategorija;brend\n"+
			"A-100;4006381333931;Signir Stabilo Boss;2,10;15;Uredski materijal;Stabilo\n"+
			"A-200;9788953900011;Spiralna biljeznica A4;1,05;40;Papirna galanterija;Fokus\n")
	writeFeed(t, dropDir, "sup_beta", "pricelist.csv",
		"item,ean,description,price,stock\n"+
			"B-9,4006381333931,Stabilo Boss highlighter,2.45,7\n")

	archiveDir := filepath.Join(t.TempDir(), "archive")
	archive, err := storage.NewLocal(archiveDir)
	require.NoError(t, err)

	logger := zerolog.Nop()
	notifier := &captureNotifier{}
	store := database.NewStore()

	orchestrator := pipeline.New(pipeline.Config{
		Store:    store,
		Feeds:    ingest.NewDirectoryFeed(dropDir, archive, logger),
		Notifier: notifier,
		Logger:   logger,
	})

	result, err := orchestrator.Run(ctx, pipeline.Options{
		SkipEnrichment: true,
		SkipAI:         true,
		WindowDays:     7,
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 2, result.TotalProducts)

	t.Run("BestPriceConsolidation", func(t *testing.T) {
		product, err := store.MasterProduct(ctx, "4006381333931")
		require.NoError(t, err)
		require.NotNil(t, product)

		assert.Equal(t, "sup_alpha", product.SupplierID, "cheaper supplier wins")
		assert.Equal(t, int64(210), product.PurchasePrice)
		assert.Equal(t, 22, product.Quantity, "quantity sums across suppliers")
		assert.Equal(t, "Office supplies", product.Category)
	})

	t.Run("MarkupPricing", func(t *testing.T) {
		product, err := store.MasterProduct(ctx, "4006381333931")
		require.NoError(t, err)
		require.NotNil(t, product)

		// 2.10 purchase + 0.50 shipping at 30% markup
		assert.Equal(t, int64(338), product.SalePrice)

		other, err := store.MasterProduct(ctx, "9788953900011")
		require.NoError(t, err)
		require.NotNil(t, other)

		// 1.05 at the 20% default rule, no shipping
		assert.Equal(t, int64(126), other.SalePrice)
	})

	t.Run("RunLogTrail", func(t *testing.T) {
		logs, err := store.RunLogs(ctx, result.RunID)
		require.NoError(t, err)

		var phases []types.Phase
		for _, l := range logs {
			phases = append(phases, l.Phase)
		}
		assert.Equal(t, []types.Phase{
			types.PhaseIngestion,
			types.PhaseNormalization,
			types.PhaseConsolidation,
			types.PhasePricing,
			types.PhaseComplete,
		}, phases)

		for _, l := range logs {
			assert.Equal(t, types.StatusSuccess, l.Status, "phase %s", l.Phase)
		}
	})

	t.Run("FeedsArchived", func(t *testing.T) {
		keys, err := archive.List(ctx, "feeds/sup_alpha/")
		require.NoError(t, err)
		assert.Len(t, keys, 1)
	})

	t.Run("CompletionNotifiedOnce", func(t *testing.T) {
		require.Len(t, notifier.events, 1)
		assert.Equal(t, result.RunID, notifier.events[0].RunID)
		assert.True(t, notifier.events[0].Success)
	})

	t.Run("RerunIsIdempotent", func(t *testing.T) {
		again, err := orchestrator.Run(ctx, pipeline.Options{
			SkipIngestion:  true,
			SkipEnrichment: true,
			SkipAI:         true,
			WindowDays:     7,
		})
		require.NoError(t, err)
		assert.True(t, again.Success)
		assert.Equal(t, 2, again.TotalProducts)

		product, err := store.MasterProduct(ctx, "4006381333931")
		require.NoError(t, err)
		assert.Equal(t, int64(338), product.SalePrice)
	})
}

func writeFeed(t *testing.T, dropDir, supplierID, name, content string) {
	t.Helper()
	dir := filepath.Join(dropDir, supplierID)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, error) {
	return postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("catalog_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(60*time.Second),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(1).
					WithStartupTimeout(60*time.Second),
			),
		),
	)
}

func seedConfiguration(ctx context.Context, t *testing.T) {
	t.Helper()
	pool := database.Pool()

	_, err := pool.Exec(ctx, `
		INSERT INTO suppliers (id, name, active) VALUES
			('sup_alpha', 'Alpha d.o.o.', true),
			('sup_beta', 'Beta GmbH', true);

		INSERT INTO field_mappings (supplier_id, source_field, canonical_field, transforms, priority) VALUES
			('sup_alpha', 'sifra', 'SKU', '{trim}', 10),
			('sup_alpha', 'barkod', 'EAN', '{normalize_ean}', 10),
			('sup_alpha', 'naziv', 'Description', '{trim}', 10),
			('sup_alpha', 'cijena', 'Price', '{}', 10),
			('sup_alpha', 'kolicina', 'Quantity', '{}', 10),
			('sup_alpha', 'kategorija', 'Category', '{trim}', 10),
			('sup_alpha', 'brend', 'Brand', '{trim}', 10),
			('sup_beta', 'item', 'SKU', '{trim}', 10),
			('sup_beta', 'ean', 'EAN', '{normalize_ean}', 10),
			('sup_beta', 'description', 'Description', '{trim}', 10),
			('sup_beta', 'price', 'Price', '{}', 10),
			('sup_beta', 'stock', 'Quantity', '{}', 10);

		INSERT INTO category_mappings (supplier_id, supplier_category, canonical_category, priority) VALUES
			('sup_alpha', 'Uredski materijal', 'Office supplies', 10),
			('sup_alpha', 'Papirna galanterija', 'Paper goods', 10);

		INSERT INTO pricing_rules (id, type, reference, markup_percent, markup_fixed, shipping_cost, priority, active) VALUES
			('rule_cat', 'CATEGORY', 'Office supplies', 30, 0, 50, 10, true),
			('rule_default', 'DEFAULT', NULL, 20, 0, 0, 100, true);
	`)
	require.NoError(t, err)
}

func setupSchema(ctx context.Context, t *testing.T) {
	t.Helper()
	pool := database.Pool()

	schema := `
		CREATE TABLE IF NOT EXISTS suppliers (
			id text PRIMARY KEY,
			name text NOT NULL,
			active boolean NOT NULL DEFAULT true,
			created_at timestamptz NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS raw_records (
			id text PRIMARY KEY,
			supplier_id text NOT NULL,
			supplier_sku text,
			ean text,
			purchase_price bigint,
			quantity integer NOT NULL DEFAULT 0,
			supplier_category text,
			brand text,
			description text,
			fields jsonb NOT NULL DEFAULT '{}',
			imported_at timestamptz NOT NULL
		);

		CREATE TABLE IF NOT EXISTS field_mappings (
			supplier_id text NOT NULL,
			source_field text NOT NULL,
			canonical_field text NOT NULL,
			transforms text[] NOT NULL DEFAULT '{}',
			priority integer NOT NULL DEFAULT 0,
			PRIMARY KEY (supplier_id, canonical_field, source_field)
		);

		CREATE TABLE IF NOT EXISTS category_mappings (
			supplier_id text NOT NULL,
			supplier_category text NOT NULL,
			canonical_category text NOT NULL,
			priority integer NOT NULL DEFAULT 0,
			PRIMARY KEY (supplier_id, supplier_category)
		);

		CREATE TABLE IF NOT EXISTS pricing_rules (
			id text PRIMARY KEY,
			type text NOT NULL,
			reference text,
			markup_percent double precision NOT NULL DEFAULT 0,
			markup_fixed bigint NOT NULL DEFAULT 0,
			shipping_cost bigint NOT NULL DEFAULT 0,
			priority integer NOT NULL DEFAULT 0,
			valid_from timestamptz,
			valid_to timestamptz,
			active boolean NOT NULL DEFAULT true
		);

		CREATE TABLE IF NOT EXISTS master_products (
			ean text PRIMARY KEY,
			supplier_id text NOT NULL,
			supplier_sku text NOT NULL DEFAULT '',
			purchase_price bigint NOT NULL DEFAULT 0,
			quantity integer NOT NULL DEFAULT 0,
			category text NOT NULL DEFAULT '',
			brand text NOT NULL DEFAULT '',
			description text NOT NULL DEFAULT '',
			sale_price bigint NOT NULL DEFAULT 0,
			enriched boolean NOT NULL DEFAULT false,
			updated_at timestamptz NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS run_logs (
			id text PRIMARY KEY,
			run_id text NOT NULL,
			phase text NOT NULL,
			status text NOT NULL,
			detail jsonb NOT NULL DEFAULT '{}',
			duration_ms bigint NOT NULL DEFAULT 0,
			processed integer NOT NULL DEFAULT 0,
			created_at timestamptz NOT NULL
		);
	`
	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)
}
