// Package files stores uploaded photos on local disk. Receipt photos and
// section photos live in separate directories so retention cleanup never
// touches editable content.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes photos under a pair of base directories.
type Store struct {
	receiptsDir string
	sectionsDir string
}

// New creates the base directories if missing.
func New(receiptsDir, sectionsDir string) (*Store, error) {
	for _, dir := range []string{receiptsDir, sectionsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return &Store{receiptsDir: receiptsDir, sectionsDir: sectionsDir}, nil
}

// SaveReceipt persists a receipt photo and returns its path.
func (s *Store) SaveReceipt(r io.Reader) (string, error) {
	return save(s.receiptsDir, r)
}

// SaveSection persists a section photo and returns its path.
func (s *Store) SaveSection(r io.Reader) (string, error) {
	return save(s.sectionsDir, r)
}

// Exists reports whether a stored photo is still present on disk.
func (s *Store) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes a stored photo. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func save(dir string, r io.Reader) (string, error) {
	path := filepath.Join(dir, uuid.NewString()+".jpg")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
