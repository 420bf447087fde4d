// Package jobs contains maintenance tasks that run on a schedule. The pool
// getter is registered by the database package at init time to avoid an
// import cycle.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RetentionConfig configures how long raw import data is kept
type RetentionConfig struct {
	RawRecordRetentionDays int
}

// DefaultRetentionConfig keeps raw records for the 7-day audit window
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		RawRecordRetentionDays: 7,
	}
}

// CleanupRawRecords deletes raw records older than the retention window.
// Master products are untouched: only the per-import audit trail expires.
// Returns the number of records deleted.
func CleanupRawRecords(ctx context.Context, cfg RetentionConfig) (int, error) {
	pool := getPool()
	if pool == nil {
		return 0, fmt.Errorf("database pool not initialized")
	}

	cutoff := time.Now().AddDate(0, 0, -cfg.RawRecordRetentionDays)

	result, err := pool.Exec(ctx, `
		DELETE FROM raw_records
		WHERE imported_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup raw records: %w", err)
	}

	return int(result.RowsAffected()), nil
}

var poolGetter func() *pgxpool.Pool

// getPool returns the database connection pool
func getPool() *pgxpool.Pool {
	if poolGetter == nil {
		return nil
	}
	return poolGetter()
}

// RegisterDBPoolGetter registers the database pool getter function.
// Called by the database package to break the import cycle.
func RegisterDBPoolGetter(getter func() *pgxpool.Pool) {
	poolGetter = getter
}
