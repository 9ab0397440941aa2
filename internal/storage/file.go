package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Fixed file names used by FileBackend inside its directory.
const (
	LinksFileName  = "links.json"
	ConfigFileName = "config.json"
)

// FileBackend stores each key as one JSON document on disk.
type FileBackend struct {
	paths map[string]string
}

// NewFileBackend creates a file backend rooted at dir.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{
		paths: map[string]string{
			LinksKey:  filepath.Join(dir, LinksFileName),
			ConfigKey: filepath.Join(dir, ConfigFileName),
		},
	}, nil
}

// Path returns the file that holds key.
func (b *FileBackend) Path(key string) string {
	return b.paths[key]
}

// Get reads the file for key.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	path, err := b.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoData
	}
	return data, nil
}

// Put replaces the file for key. The value is written to a temporary file
// in the same directory and renamed over the target.
func (b *FileBackend) Put(_ context.Context, key string, data []byte) error {
	path, err := b.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Name identifies the backend.
func (b *FileBackend) Name() string { return "file" }

// Close is a no-op for files.
func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) path(key string) (string, error) {
	path, ok := b.paths[key]
	if !ok {
		return "", fmt.Errorf("unknown storage key %q", key)
	}
	return path, nil
}
