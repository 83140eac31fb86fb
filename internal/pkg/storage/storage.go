package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded file content and hands back an opaque handle.
// Handles are stable identifiers, not filesystem paths.
type Store interface {
	Store(data []byte, contentType string) (string, error)
	Resolve(handle string) (string, error)
	Delete(handle string) error
}

// DiskStore writes files under a base directory, one file per handle
type DiskStore struct {
	baseDir string
}

// NewDiskStore creates the base directory if needed
func NewDiskStore(baseDir string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &DiskStore{baseDir: baseDir}, nil
}

// Store writes data to disk under a generated handle
func (s *DiskStore) Store(data []byte, contentType string) (string, error) {
	handle := uuid.New().String() + extensionFor(contentType)
	path := filepath.Join(s.baseDir, handle)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return handle, nil
}

// Resolve returns the filesystem path for a handle
func (s *DiskStore) Resolve(handle string) (string, error) {
	// Reject traversal attempts; handles are always flat names
	if handle == "" || strings.ContainsAny(handle, "/\\") {
		return "", fmt.Errorf("invalid file handle")
	}
	path := filepath.Join(s.baseDir, handle)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %w", err)
	}
	return path, nil
}

// Delete removes the file for a handle. Missing files are not an error.
func (s *DiskStore) Delete(handle string) error {
	if handle == "" || strings.ContainsAny(handle, "/\\") {
		return fmt.Errorf("invalid file handle")
	}
	err := os.Remove(filepath.Join(s.baseDir, handle))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
