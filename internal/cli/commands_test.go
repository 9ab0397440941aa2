package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tahp/LinkManager/internal/links"
	"github.com/tahp/LinkManager/internal/model"
	"github.com/tahp/LinkManager/internal/settings"
	"github.com/tahp/LinkManager/internal/storage"
)

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)

type testEnv struct {
	cmd    *Commands
	out    *bytes.Buffer
	repo   *links.Repository
	store  *settings.Store
	opened []string
	dir    string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	backend, err := storage.NewFileBackend(dir)
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	adapter := storage.NewAdapter(backend, nil)
	store := settings.NewStore(adapter, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("settings Load: %v", err)
	}
	repo := links.New(adapter, nil, links.WithClock(func() time.Time { return testNow }))

	env := &testEnv{out: &bytes.Buffer{}, repo: repo, store: store, dir: dir}
	env.cmd = NewCommands(repo, store, env.out)
	env.cmd.now = func() time.Time { return testNow }
	env.cmd.openURL = func(url string) error {
		env.opened = append(env.opened, url)
		return nil
	}
	return env
}

func (e *testEnv) add(t *testing.T, url, title string) model.Link {
	t.Helper()
	link, err := e.repo.Add(context.Background(), model.NewLink{URL: url, Title: title})
	if err != nil {
		t.Fatalf("Add(%s): %v", url, err)
	}
	return link
}

func TestAddCommand(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	err := env.cmd.Add(ctx, AddInput{URL: "https://go.dev", Title: "Go", Remind: "18:30"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !strings.Contains(env.out.String(), "Added") || strings.Contains(env.out.String(), "Warning") {
		t.Errorf("unexpected output: %q", env.out.String())
	}

	all, _ := env.repo.ListAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 link, got %d", len(all))
	}
	want := time.Date(2024, 3, 10, 18, 30, 0, 0, time.Local).Unix()
	if all[0].ReminderTimestamp != want {
		t.Errorf("reminder = %d, want %d", all[0].ReminderTimestamp, want)
	}

	env.out.Reset()
	if err := env.cmd.Add(ctx, AddInput{URL: "https://past.example", Remind: "08:00"}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !strings.Contains(env.out.String(), "Warning") {
		t.Errorf("expected past reminder warning, got %q", env.out.String())
	}

	if err := env.cmd.Add(ctx, AddInput{URL: " https://go.dev "}); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("duplicate add error = %v", err)
	}
	if err := env.cmd.Add(ctx, AddInput{URL: "https://x.example", Remind: "later"}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("bad reminder error = %v", err)
	}
}

func TestListCommand(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	if err := env.cmd.List(ctx, ListOptions{Page: 1}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if !strings.Contains(env.out.String(), "No links found.") {
		t.Errorf("empty list output = %q", env.out.String())
	}

	env.add(t, "https://github.com", "Hub")
	env.add(t, "https://news.example", "Daily News")

	env.out.Reset()
	if err := env.cmd.List(ctx, ListOptions{Search: "git", Page: 1}); err != nil {
		t.Fatalf("List: %v", err)
	}
	out := env.out.String()
	if !strings.Contains(out, "https://github.com") || strings.Contains(out, "news.example") {
		t.Errorf("search output = %q", out)
	}
	if !strings.Contains(out, "Page 1 of 1 (1 links)") {
		t.Errorf("missing page footer: %q", out)
	}

	if err := env.cmd.List(ctx, ListOptions{Query: "foo"}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("bad query error = %v", err)
	}
	if err := env.cmd.List(ctx, ListOptions{Sort: "stars"}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("bad sort error = %v", err)
	}
}

func TestShowAndNotFoundSuggestion(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	link := env.add(t, "https://go.dev", "Go")

	if err := env.cmd.Show(ctx, link.ID); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if !strings.Contains(env.out.String(), "https://go.dev") || !strings.Contains(env.out.String(), "N/A (none)") {
		t.Errorf("show output = %q", env.out.String())
	}

	typo := link.ID[:len(link.ID)-1] + "x"
	if typo == link.ID {
		typo = link.ID[:len(link.ID)-1] + "y"
	}
	err := env.cmd.Show(ctx, typo)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Show(typo) error = %v", err)
	}
	if !strings.Contains(err.Error(), "Did you mean") || !strings.Contains(err.Error(), link.ID) {
		t.Errorf("expected suggestion in %q", err.Error())
	}
}

func TestEditCommand(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	existing := time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local).Unix()
	link, err := env.repo.Add(ctx, model.NewLink{URL: "https://a.example", ReminderTimestamp: existing})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	remind, title := "17:15", "Renamed"
	if err := env.cmd.Edit(ctx, link.ID, EditInput{Title: &title, Remind: &remind}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	got, _ := env.repo.Get(ctx, link.ID)
	if got.Title != "Renamed" {
		t.Errorf("title = %q", got.Title)
	}
	if want := time.Date(2024, 5, 1, 17, 15, 0, 0, time.Local).Unix(); got.ReminderTimestamp != want {
		t.Errorf("reminder should keep the existing date: got %d, want %d", got.ReminderTimestamp, want)
	}

	none := ""
	if err := env.cmd.Edit(ctx, link.ID, EditInput{Remind: &none}); err != nil {
		t.Fatalf("Edit clear: %v", err)
	}
	if got, _ := env.repo.Get(ctx, link.ID); got.ReminderTimestamp != 0 {
		t.Errorf("reminder not cleared: %d", got.ReminderTimestamp)
	}

	if err := env.cmd.Edit(ctx, link.ID, EditInput{}); err == nil {
		t.Error("expected error for empty edit")
	}
	if err := env.cmd.Edit(ctx, "missing", EditInput{Title: &title}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("missing id error = %v", err)
	}
}

func TestRemoveCommand(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	a := env.add(t, "https://a.example", "")
	b := env.add(t, "https://b.example", "")

	err := env.cmd.Remove(ctx, a.ID, "nope")
	if err == nil || !strings.Contains(err.Error(), "nope (not found)") {
		t.Errorf("Remove error = %v", err)
	}
	if !strings.Contains(env.out.String(), "Deleted") {
		t.Errorf("output = %q", env.out.String())
	}

	all, _ := env.repo.ListAll(ctx)
	if len(all) != 1 || all[0].ID != b.ID {
		t.Errorf("remaining = %+v", all)
	}
}

func TestVisitCommand(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	link := env.add(t, "https://a.example", "")

	if err := env.cmd.Visit(ctx, link.ID, true); err != nil {
		t.Fatalf("Visit: %v", err)
	}
	if err := env.cmd.Visit(ctx, link.ID, false); err != nil {
		t.Fatalf("Visit: %v", err)
	}
	if len(env.opened) != 1 || env.opened[0] != "https://a.example" {
		t.Errorf("opened = %v", env.opened)
	}
	got, _ := env.repo.Get(ctx, link.ID)
	if got.VisitCount != 2 || got.LastVisitedTimestamp != testNow.Unix() {
		t.Errorf("visit data = %+v", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			src := setup(t)
			ctx := context.Background()
			src.add(t, "https://a.example", "A")
			src.add(t, "https://b.example", "B")

			path := filepath.Join(t.TempDir(), "links."+format)
			if err := src.cmd.ExportFile(ctx, path, ""); err != nil {
				t.Fatalf("ExportFile: %v", err)
			}

			dst := setup(t)
			dst.add(t, "https://a.example", "already here")
			if err := dst.cmd.Import(ctx, path, ""); err != nil {
				t.Fatalf("Import: %v", err)
			}
			if !strings.Contains(dst.out.String(), "Imported") || !strings.Contains(dst.out.String(), "skipped 1") {
				t.Errorf("import output = %q", dst.out.String())
			}

			all, _ := dst.repo.ListAll(ctx)
			if len(all) != 2 || all[1].Title != "B" {
				t.Errorf("imported collection = %+v", all)
			}
		})
	}
}

func TestExportToDirectoryAndUnknownFormat(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	env.add(t, "https://a.example", "")

	dir := t.TempDir()
	if err := env.cmd.ExportFile(ctx, dir, "json"); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, ExportFileName+".json"))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var exported []model.Link
	if err := json.Unmarshal(data, &exported); err != nil || len(exported) != 1 {
		t.Errorf("exported = %v, %v", exported, err)
	}

	var buf bytes.Buffer
	if err := env.cmd.Export(ctx, &buf, "csv"); !errors.Is(err, model.ErrValidation) {
		t.Errorf("csv export error = %v", err)
	}

	keep := filepath.Join(dir, "keep.json")
	if err := os.WriteFile(keep, []byte(`["precious"]`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := env.cmd.ExportFile(ctx, keep, "csv"); !errors.Is(err, model.ErrValidation) {
		t.Errorf("csv ExportFile error = %v", err)
	}
	if data, _ := os.ReadFile(keep); string(data) != `["precious"]` {
		t.Errorf("rejected export changed the file: %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("expected only the export and keep.json in %s, got %d entries", dir, len(entries))
	}
}

func TestSettingsCommands(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	env.cmd.ShowSettings()
	if !strings.Contains(env.out.String(), "Page size:") || !strings.Contains(env.out.String(), "%Y-%m-%d %H:%M:%S") {
		t.Errorf("settings output = %q", env.out.String())
	}

	size := 5
	if err := env.cmd.SetSettings(ctx, settings.Update{PageSize: &size}); err != nil {
		t.Fatalf("SetSettings: %v", err)
	}
	if env.store.PageSize() != 5 {
		t.Errorf("page size = %d", env.store.PageSize())
	}

	bad := "9"
	if err := env.cmd.SetSettings(ctx, settings.Update{DateFormatChoice: &bad}); !errors.Is(err, model.ErrValidation) {
		t.Errorf("bad choice error = %v", err)
	}
	if err := env.cmd.SetSettings(ctx, settings.Update{}); err == nil {
		t.Error("expected error for empty update")
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"same", "same", 0},
		{"abcd", "abed", 1},
	}
	for _, tt := range tests {
		if got := levenshteinDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
