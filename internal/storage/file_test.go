package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackendMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	ctx := context.Background()

	if _, err := b.Get(ctx, LinksKey); !errors.Is(err, ErrNoData) {
		t.Errorf("missing file: expected ErrNoData, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, LinksFileName), []byte("  \n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := b.Get(ctx, LinksKey); !errors.Is(err, ErrNoData) {
		t.Errorf("empty file: expected ErrNoData, got %v", err)
	}
}

func TestFileBackendPutGet(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	ctx := context.Background()

	if err := b.Put(ctx, ConfigKey, []byte(`{"page_size":10}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := b.Get(ctx, ConfigKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"page_size":10}` {
		t.Errorf("unexpected content %s", got)
	}

	if b.Path(ConfigKey) != filepath.Join(dir, ConfigFileName) {
		t.Errorf("unexpected config path %s", b.Path(ConfigKey))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only config.json in dir, found %d entries", len(entries))
	}
}

func TestFileBackendUnknownKey(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	if err := b.Put(context.Background(), "other", []byte("x")); err == nil {
		t.Error("expected error for unknown key")
	}
}
