// Package ingest reads supplier price-list exports (CSV, XLSX, zipped
// bundles of either) into raw records for the normalization pipeline. It is
// deliberately format-only: no field interpretation happens here.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/listino/catalog-service/internal/storage"
	"github.com/listino/catalog-service/internal/types"
)

// DirectoryFeed reads each supplier's latest export from a drop directory
// laid out as <root>/<supplierID>/<file>. Suppliers deliver files there via
// SFTP or a sync job outside this service.
type DirectoryFeed struct {
	root    string
	archive storage.Storage // optional, nil disables archiving
	logger  zerolog.Logger
	now     func() time.Time
}

// NewDirectoryFeed creates a feed over the given drop directory. When
// archive is non-nil every ingested file is copied there before parsing.
func NewDirectoryFeed(root string, archive storage.Storage, logger zerolog.Logger) *DirectoryFeed {
	return &DirectoryFeed{
		root:    root,
		archive: archive,
		logger:  logger.With().Str("component", "feed").Logger(),
		now:     time.Now,
	}
}

// Fetch reads the supplier's most recent export and returns its rows as raw
// records. A supplier directory with no usable file is an error so the run
// can report the supplier as failed.
func (f *DirectoryFeed) Fetch(ctx context.Context, supplier types.Supplier) ([]types.RawRecord, error) {
	path, err := f.latestFile(supplier.ID)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", path, err)
	}

	filename := filepath.Base(path)
	if f.archive != nil {
		key := storage.BuildFeedKey(supplier.ID, f.now(), filename)
		meta := &storage.Metadata{
			OriginalName: filename,
			SupplierID:   supplier.ID,
			IngestedAt:   f.now(),
		}
		if err := f.archive.Put(ctx, key, content, meta); err != nil {
			// Archiving is an audit aid, not a precondition for ingestion
			f.logger.Warn().Err(err).Str("supplier", supplier.ID).Msg("Feed archiving failed")
		}
	}

	rows, err := f.parse(filename, content)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", filename, err)
	}

	importedAt := f.now()
	records := make([]types.RawRecord, 0, len(rows))
	for _, fields := range rows {
		records = append(records, types.RawRecord{
			ID:         uuid.NewString(),
			SupplierID: supplier.ID,
			Fields:     fields,
			ImportedAt: importedAt,
		})
	}

	f.logger.Info().
		Str("supplier", supplier.ID).
		Str("file", filename).
		Int("records", len(records)).
		Msg("Feed ingested")
	return records, nil
}

// parse dispatches on file extension, expanding ZIP bundles and
// concatenating the rows of every entry inside.
func (f *DirectoryFeed) parse(filename string, content []byte) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSV(content)
	case ".xlsx":
		return ReadXLSX(content)
	case ".zip":
		entries, err := ExpandArchive(content)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, fmt.Errorf("archive contains no feed files")
		}
		var rows []map[string]string
		for _, entry := range entries {
			entryRows, err := f.parse(entry.Name, entry.Content)
			if err != nil {
				return nil, fmt.Errorf("entry %s: %w", entry.Name, err)
			}
			rows = append(rows, entryRows...)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported feed format: %s", filename)
	}
}

// latestFile returns the newest supported file in the supplier's directory
func (f *DirectoryFeed) latestFile(supplierID string) (string, error) {
	dir := filepath.Join(f.root, supplierID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("open feed directory for %s: %w", supplierID, err)
	}

	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".csv", ".xlsx", ".zip":
		default:
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = entry.Name()
			newestTime = info.ModTime()
		}
	}

	if newest == "" {
		return "", fmt.Errorf("no feed file for supplier %s", supplierID)
	}
	return filepath.Join(dir, newest), nil
}
