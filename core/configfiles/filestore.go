package configfiles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists config file bytes plus a JSON metadata sidecar per file
// on local disk
type FileStore interface {
	// Write stores the file bytes and the metadata sidecar for the given ID
	Write(id string, data []byte, meta *Metadata) error

	// Read returns the file bytes for the given ID
	Read(id string) ([]byte, error)

	// Delete removes the file and its sidecar
	Delete(id string) error
}

// diskFileStore implements FileStore on a local directory
type diskFileStore struct {
	dir string
}

// NewDiskFileStore creates a file store rooted at the given directory,
// creating it if necessary
func NewDiskFileStore(dir string) (FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &diskFileStore{dir: dir}, nil
}

func (s *diskFileStore) filePath(id string) string {
	return filepath.Join(s.dir, id+".ini")
}

func (s *diskFileStore) sidecarPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Write stores the file bytes and the metadata sidecar
func (s *diskFileStore) Write(id string, data []byte, meta *Metadata) error {
	if err := os.WriteFile(s.filePath(id), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	sidecar, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(s.sidecarPath(id), sidecar, 0644); err != nil {
		// Don't leave an orphaned config file behind
		os.Remove(s.filePath(id))
		return fmt.Errorf("failed to write metadata sidecar: %w", err)
	}

	return nil
}

// Read returns the file bytes for the given ID
func (s *diskFileStore) Read(id string) ([]byte, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}

// Delete removes the file and its sidecar
func (s *diskFileStore) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	if err := os.Remove(s.sidecarPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata sidecar: %w", err)
	}
	return nil
}
