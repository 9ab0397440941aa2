package settings

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tahp/LinkManager/internal/model"
	"github.com/tahp/LinkManager/internal/storage"
)

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := storage.NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	return NewStore(storage.NewAdapter(backend, nil), nil), dir
}

// stubPersister returns fixed results.
type stubPersister struct {
	raw     json.RawMessage
	loadErr error
	saveErr error
	saved   any
}

func (p *stubPersister) LoadConfig(context.Context) (json.RawMessage, error) {
	return p.raw, p.loadErr
}

func (p *stubPersister) SaveConfig(_ context.Context, v any) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saved = v
	return nil
}

func TestLoadSeedsDefaults(t *testing.T) {
	s, dir := newFileStore(t)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := s.Get()
	if got.PageSize != 20 || got.DateFormatChoice != "1" || got.DefaultExportPath != "~/" {
		t.Errorf("unexpected defaults: %+v", got)
	}
	if len(got.DateFormats) != 3 {
		t.Errorf("expected 3 date formats, got %v", got.DateFormats)
	}
	if _, err := os.Stat(filepath.Join(dir, storage.ConfigFileName)); err != nil {
		t.Errorf("defaults were not persisted: %v", err)
	}
}

func TestLoadMergesMissingKeys(t *testing.T) {
	p := &stubPersister{raw: json.RawMessage(`{"page_size": 5, "theme": "dark"}`)}
	s := NewStore(p, nil)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := s.Get()
	if got.PageSize != 5 {
		t.Errorf("present key overwritten: page_size = %d", got.PageSize)
	}
	if got.DateFormatChoice != "1" || got.DefaultExportPath != "~/" || len(got.DateFormats) != 3 {
		t.Errorf("missing keys not merged: %+v", got)
	}

	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	doc, ok := p.saved.(map[string]any)
	if !ok {
		t.Fatalf("unexpected saved type %T", p.saved)
	}
	if theme, ok := doc["theme"].(json.RawMessage); !ok || string(theme) != `"dark"` {
		t.Errorf("unknown key not preserved: %v", doc["theme"])
	}
}

func TestLoadStoredDateFormatsReplacePresets(t *testing.T) {
	p := &stubPersister{raw: json.RawMessage(`{"date_format_choice":"9","date_formats":{"9":"%H:%M"}}`)}
	s := NewStore(p, nil)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got := s.Get()
	if len(got.DateFormats) != 1 || got.DateFormats["9"] != "%H:%M" {
		t.Errorf("stored presets merged with defaults: %v", got.DateFormats)
	}
	if s.ActiveDateFormat() != "%H:%M" {
		t.Errorf("ActiveDateFormat() = %q", s.ActiveDateFormat())
	}
	if err := s.SetDateFormatChoice("2"); !errors.Is(err, model.ErrValidation) {
		t.Errorf("removed preset accepted: %v", err)
	}
}

func TestLoadErrorsResetToDefaults(t *testing.T) {
	tests := []struct {
		name string
		p    *stubPersister
	}{
		{name: "read error", p: &stubPersister{loadErr: errors.New("network down")}},
		{name: "not an object", p: &stubPersister{raw: json.RawMessage(`[1,2,3]`)}},
		{name: "wrong field type", p: &stubPersister{raw: json.RawMessage(`{"page_size":"twenty"}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.p, nil)
			_ = s.SetPageSize(50)

			if err := s.Load(context.Background()); err == nil {
				t.Fatal("expected an error")
			}
			got := s.Get()
			if got.PageSize != 20 || got.DateFormatChoice != "1" || len(got.DateFormats) != 3 {
				t.Errorf("store not reset to defaults: %+v", got)
			}
		})
	}
}

func TestActiveDateFormat(t *testing.T) {
	p := &stubPersister{raw: json.RawMessage(`{"date_format_choice": "9"}`)}
	s := NewStore(p, nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := s.ActiveDateFormat(); got != "%Y-%m-%d %H:%M:%S" {
		t.Errorf("stale choice should fall back to preset 1, got %q", got)
	}

	if err := s.SetDateFormatChoice("3"); err != nil {
		t.Fatalf("SetDateFormatChoice: %v", err)
	}
	if got := s.ActiveDateFormat(); got != "%m/%d/%y %I:%M %p" {
		t.Errorf("ActiveDateFormat() = %q", got)
	}
}

func TestSetters(t *testing.T) {
	s := NewStore(&stubPersister{}, nil)

	for _, n := range []int{0, -1, 101} {
		if err := s.SetPageSize(n); !errors.Is(err, model.ErrValidation) {
			t.Errorf("SetPageSize(%d) = %v, want validation error", n, err)
		}
	}
	if err := s.SetPageSize(100); err != nil {
		t.Errorf("SetPageSize(100): %v", err)
	}
	if err := s.SetDateFormatChoice("7"); !errors.Is(err, model.ErrValidation) {
		t.Errorf("unknown format key accepted: %v", err)
	}
	if err := s.SetDefaultExportPath("  "); !errors.Is(err, model.ErrValidation) {
		t.Errorf("blank export path accepted: %v", err)
	}
	if err := s.SetDefaultExportPath("/tmp/exports"); err != nil {
		t.Errorf("SetDefaultExportPath: %v", err)
	}
	if got := s.Get().DefaultExportPath; got != "/tmp/exports" {
		t.Errorf("DefaultExportPath = %q", got)
	}
}

func TestApply(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()
	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	size, choice := 10, "2"
	if err := s.Apply(ctx, Update{PageSize: &size, DateFormatChoice: &choice}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// a second store over the same backend sees the saved values
	reloaded := NewStore(s.persist, nil)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := reloaded.Get(); got.PageSize != 10 || got.DateFormatChoice != "2" {
		t.Errorf("reloaded settings = %+v", got)
	}

	bad := 0
	if err := s.Apply(ctx, Update{PageSize: &bad, DateFormatChoice: &choice}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if s.Get().PageSize != 10 {
		t.Error("rejected update changed the store")
	}
}

func TestApplySaveFailureRestores(t *testing.T) {
	p := &stubPersister{saveErr: errors.New("disk full")}
	s := NewStore(p, nil)

	size := 42
	err := s.Apply(context.Background(), Update{PageSize: &size})
	if !errors.Is(err, model.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if s.Get().PageSize != 20 {
		t.Errorf("failed save left page_size = %d", s.Get().PageSize)
	}
}

func TestPageSizeFallback(t *testing.T) {
	p := &stubPersister{raw: json.RawMessage(`{"page_size": 0}`)}
	s := NewStore(p, nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Get().PageSize != 0 {
		t.Error("stored value should be kept as-is")
	}
	if s.PageSize() != 20 {
		t.Errorf("PageSize() = %d, want default 20", s.PageSize())
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := int64(1700000000)
	local := time.Unix(ts, 0).Local()

	tests := []struct {
		name    string
		ts      int64
		pattern string
		want    string
	}{
		{name: "zero", ts: 0, pattern: "%Y", want: "N/A"},
		{name: "negative", ts: -5, pattern: "%Y", want: "Invalid Date"},
		{name: "preset 1", ts: ts, pattern: "%Y-%m-%d %H:%M:%S", want: local.Format("2006-01-02 15:04:05")},
		{name: "preset 2", ts: ts, pattern: "%d/%m/%Y %H:%M", want: local.Format("02/01/2006 15:04")},
		{name: "preset 3", ts: ts, pattern: "%m/%d/%y %I:%M %p", want: local.Format("01/02/06 03:04 PM")},
		{name: "far future", ts: 1 << 40, pattern: "%Y", want: "Invalid Date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.ts, tt.pattern); got != tt.want {
				t.Errorf("FormatTimestamp(%d, %q) = %q, want %q", tt.ts, tt.pattern, got, tt.want)
			}
		})
	}
}
