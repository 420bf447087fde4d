package ingest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

const (
	maxArchiveFileSize = 100 << 20 // per entry
	maxArchiveEntries  = 100
)

var skipPatterns = []string{"__MACOSX", ".DS_Store", "Thumbs.db"}

// ArchiveEntry is one feed file extracted from a zipped supplier export
type ArchiveEntry struct {
	Name    string
	Content []byte
}

// ExpandArchive extracts CSV and XLSX entries from a ZIP archive in memory.
// Directory structure inside the archive is flattened; entries with
// traversal paths or unexpected extensions are skipped.
func ExpandArchive(content []byte) ([]ArchiveEntry, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	var entries []ArchiveEntry
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		name, ok := safeEntryName(file.Name)
		if !ok {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".xlsx" {
			continue
		}
		if int64(file.UncompressedSize64) > maxArchiveFileSize {
			return nil, fmt.Errorf("entry %s exceeds size limit", name)
		}

		data, err := readEntry(file, name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ArchiveEntry{Name: name, Content: data})

		if len(entries) > maxArchiveEntries {
			return nil, fmt.Errorf("too many entries in archive")
		}
	}
	return entries, nil
}

func readEntry(file *zip.File, name string) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", name, err)
	}
	defer rc.Close()

	// Limit guards against decompression bombs regardless of declared size
	data, err := io.ReadAll(io.LimitReader(rc, maxArchiveFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", name, err)
	}
	if len(data) > maxArchiveFileSize {
		return nil, fmt.Errorf("entry %s exceeds size limit", name)
	}
	return data, nil
}

// safeEntryName flattens an archive path to its base name, rejecting
// traversal attempts and system files.
func safeEntryName(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	if path.IsAbs(name) {
		return "", false
	}
	cleaned := path.Clean(name)
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." {
			return "", false
		}
	}
	for _, pattern := range skipPatterns {
		if strings.Contains(cleaned, pattern) {
			return "", false
		}
	}
	base := path.Base(cleaned)
	if base == "." || base == "/" || base == "" {
		return "", false
	}
	return base, true
}
