package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// Store implements ports.SnapshotStore using the local filesystem.
// It stores documents as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".espalier/documents".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".espalier", "documents")
	}
	return &Store{BasePath: basePath}
}

// validateDocID rejects ids that would address files outside BasePath.
// The id becomes a file name, so path separators and traversal segments
// are refused outright.
func validateDocID(docID string) error {
	if docID == "" {
		return fmt.Errorf("%w: empty id", domain.ErrInvalidDocumentID)
	}
	if strings.ContainsAny(docID, `/\`) || strings.Contains(docID, "..") {
		return fmt.Errorf("%w: %q", domain.ErrInvalidDocumentID, docID)
	}
	return nil
}

// Save persists the document snapshot to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it
// to the destination.
func (s *Store) Save(ctx context.Context, docID string, snap *domain.Snapshot) error {
	if err := validateDocID(docID); err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure document directory: %w", err)
	}

	destPath := filepath.Join(s.BasePath, docID+".json")

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+docID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // Remove if still exists (not renamed)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Close before rename (cannot rename open file on Windows).
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists; remove it first. The brief
	// delete+rename window beats leaving a partially written file behind.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing document file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}

	return nil
}

// Load retrieves the document snapshot from a JSON file.
func (s *Store) Load(ctx context.Context, docID string) (*domain.Snapshot, error) {
	if err := validateDocID(docID); err != nil {
		return nil, err
	}

	filePath := filepath.Join(s.BasePath, docID+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to read document file: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snap, nil
}

// Delete removes the document file.
func (s *Store) Delete(ctx context.Context, docID string) error {
	if err := validateDocID(docID); err != nil {
		return err
	}

	filePath := filepath.Join(s.BasePath, docID+".json")

	err := os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document file: %w", err)
	}

	return nil
}

// List returns all stored document IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var docs []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			name := entry.Name()
			docs = append(docs, name[:len(name)-len(".json")])
		}
	}

	return docs, nil
}
