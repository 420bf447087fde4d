package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/listino/catalog-service/internal/types"
)

// InsertRunLog appends one run log row. Rows are append-only: nothing in
// this service ever updates or deletes them.
func (s *Store) InsertRunLog(ctx context.Context, entry types.RunLog) error {
	id := entry.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := Pool().Exec(ctx, `
		INSERT INTO run_logs (
			id, run_id, phase, status, detail, duration_ms, processed, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, entry.RunID, string(entry.Phase), string(entry.Status),
		entry.Detail, entry.Duration.Milliseconds(), entry.Processed, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run log: %w", err)
	}
	return nil
}

// RunLogs returns the phase rows of one run in execution order
func (s *Store) RunLogs(ctx context.Context, runID string) ([]types.RunLog, error) {
	rows, err := Pool().Query(ctx, `
		SELECT id, run_id, phase, status, detail, duration_ms, processed, created_at
		FROM run_logs
		WHERE run_id = $1
		ORDER BY created_at, id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run logs: %w", err)
	}
	defer rows.Close()

	return scanRunLogs(rows)
}

// RecentRuns lists the latest runs, newest first, one entry per run ID
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]types.RunLog, error) {
	rows, err := Pool().Query(ctx, `
		SELECT DISTINCT ON (run_id)
		       id, run_id, phase, status, detail, duration_ms, processed, created_at
		FROM run_logs
		ORDER BY run_id, created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	return scanRunLogs(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRunLogs(rows rowScanner) ([]types.RunLog, error) {
	var logs []types.RunLog
	for rows.Next() {
		var entry types.RunLog
		var phase, status string
		var durationMs int64
		var createdAt time.Time
		err := rows.Scan(&entry.ID, &entry.RunID, &phase, &status,
			&entry.Detail, &durationMs, &entry.Processed, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan run log: %w", err)
		}
		entry.Phase = types.Phase(phase)
		entry.Status = types.PhaseStatus(status)
		entry.Duration = time.Duration(durationMs) * time.Millisecond
		entry.CreatedAt = createdAt
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
