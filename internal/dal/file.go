package dal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore writes the snapshot to a single JSON file, replacing it atomically.
type FileStore struct {
	path string
}

// NewFileStore creates a store at path. Parent directories are created on save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Save(_ context.Context, data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return "", fmt.Errorf("failed to replace snapshot: %w", err)
	}
	abs, err := filepath.Abs(f.path)
	if err != nil {
		return f.path, nil
	}
	return abs, nil
}

func (f *FileStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, missing(f.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Ping checks that the snapshot directory exists or can be created.
func (f *FileStore) Ping(context.Context) error {
	return os.MkdirAll(filepath.Dir(f.path), 0o755)
}

func (f *FileStore) Close() error { return nil }
