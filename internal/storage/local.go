package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Local implements Storage on the local filesystem. Metadata is kept in a
// sidecar .meta file next to each archived feed.
type Local struct {
	basePath string
}

// NewLocal creates a filesystem-backed archive rooted at basePath
func NewLocal(basePath string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create archive directory %s: %w", basePath, err)
	}
	return &Local{basePath: basePath}, nil
}

func (s *Local) Put(_ context.Context, key string, content []byte, metadata *Metadata) error {
	fullPath := s.keyToPath(key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	if metadata != nil {
		metaBytes, err := marshalMetadata(metadata)
		if err != nil {
			return err
		}
		if err := os.WriteFile(fullPath+".meta", metaBytes, 0644); err != nil {
			return fmt.Errorf("write metadata for %s: %w", key, err)
		}
	}
	return nil
}

func (s *Local) Get(_ context.Context, key string) ([]byte, error) {
	content, err := os.ReadFile(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("archive entry not found: %s", key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return content, nil
}

// GetMetadata loads the sidecar metadata for a key, nil when absent
func (s *Local) GetMetadata(_ context.Context, key string) (*Metadata, error) {
	metaBytes, err := os.ReadFile(s.keyToPath(key) + ".meta")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata for %s: %w", key, err)
	}
	var metadata Metadata
	if err := json.Unmarshal(metaBytes, &metadata); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", key, err)
	}
	return &metadata, nil
}

func (s *Local) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.keyToPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	return true, nil
}

func (s *Local) Delete(_ context.Context, key string) error {
	fullPath := s.keyToPath(key)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	// Sidecar metadata is best-effort
	os.Remove(fullPath + ".meta")
	return nil
}

func (s *Local) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, ".meta") {
			return nil
		}
		key := s.pathToKey(path)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	return keys, nil
}

func (s *Local) keyToPath(key string) string {
	cleanKey := strings.TrimPrefix(filepath.Clean(key), "/")
	return filepath.Join(s.basePath, cleanKey)
}

func (s *Local) pathToKey(path string) string {
	relPath, err := filepath.Rel(s.basePath, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(relPath)
}
