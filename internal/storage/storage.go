// Package storage archives original supplier feed files so any ingestion run
// can be audited or replayed from the exact bytes that were processed.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes an archived feed file
type Metadata struct {
	ContentType  string    `json:"contentType,omitempty"`
	OriginalName string    `json:"originalName,omitempty"`
	SupplierID   string    `json:"supplierId,omitempty"`
	IngestedAt   time.Time `json:"ingestedAt,omitempty"`
}

// Storage defines the interface for feed archive backends. Implementations
// can be local filesystem, S3, GCS, etc.
type Storage interface {
	// Put stores content at the given key with optional metadata
	Put(ctx context.Context, key string, content []byte, metadata *Metadata) error

	// Get retrieves content from the given key
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes a file at the given key
	Delete(ctx context.Context, key string) error

	// List returns all keys matching the given prefix
	List(ctx context.Context, prefix string) ([]string, error)
}

// BuildFeedKey builds an archive key for one supplier feed file
func BuildFeedKey(supplierID string, date time.Time, filename string) string {
	return fmt.Sprintf("feeds/%s/%s/%s", supplierID, date.Format("2006-01-02"), filename)
}

// ComputeChecksum computes the SHA256 checksum for content
func ComputeChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func marshalMetadata(m *Metadata) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}
