package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/tahp/LinkManager/internal/logger"
	"github.com/tahp/LinkManager/internal/model"
	"github.com/tahp/LinkManager/internal/query"
	"github.com/tahp/LinkManager/internal/storage"
)

// Page size bounds accepted by SetPageSize.
const (
	MinPageSize = query.MinPageSize
	MaxPageSize = query.MaxPageSize
)

const (
	keyPageSize          = "page_size"
	keyDateFormatChoice  = "date_format_choice"
	keyDateFormats       = "date_formats"
	keyDefaultExportPath = "default_export_path"
)

// Settings is the persisted display configuration.
type Settings struct {
	PageSize          int               `json:"page_size" yaml:"page_size"`
	DateFormatChoice  string            `json:"date_format_choice" yaml:"date_format_choice"`
	DateFormats       map[string]string `json:"date_formats" yaml:"date_formats"`
	DefaultExportPath string            `json:"default_export_path" yaml:"default_export_path"`
}

// Defaults returns a fresh copy of the default settings.
func Defaults() Settings {
	return Settings{
		PageSize:         20,
		DateFormatChoice: "1",
		DateFormats: map[string]string{
			"1": "%Y-%m-%d %H:%M:%S",
			"2": "%d/%m/%Y %H:%M",
			"3": "%m/%d/%y %I:%M %p",
		},
		DefaultExportPath: "~/",
	}
}

func (s Settings) clone() Settings {
	out := s
	out.DateFormats = make(map[string]string, len(s.DateFormats))
	for k, v := range s.DateFormats {
		out.DateFormats[k] = v
	}
	return out
}

// Update lists the settings a caller may change. Nil fields are left as-is.
type Update struct {
	PageSize          *int    `json:"page_size,omitempty"`
	DateFormatChoice  *string `json:"date_format_choice,omitempty"`
	DefaultExportPath *string `json:"default_export_path,omitempty"`
}

// Persister reads and writes the raw settings object.
type Persister interface {
	LoadConfig(ctx context.Context) (json.RawMessage, error)
	SaveConfig(ctx context.Context, v any) error
}

// Store holds the current settings. It starts at the defaults; call Load
// to read the persisted object.
type Store struct {
	mu      sync.RWMutex
	persist Persister
	log     logger.Logger
	cur     Settings
	extra   map[string]json.RawMessage
}

// NewStore creates a store backed by p.
func NewStore(p Persister, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{persist: p, log: log, cur: Defaults()}
}

// Load reads the persisted settings. An absent object is seeded with the
// defaults and written back. Missing keys are filled from the defaults and
// present keys are kept. On any read or decode error the store resets to
// the defaults and the error is returned.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.persist.LoadConfig(ctx)
	if errors.Is(err, storage.ErrNoData) {
		s.reset()
		s.log.Info("no stored settings, saving defaults")
		return s.Save(ctx)
	}
	if err != nil {
		s.reset()
		s.log.Warn("load settings failed, using defaults", logger.Error(err))
		return fmt.Errorf("load settings: %w", err)
	}

	cur, extra, err := decode(raw)
	if err != nil {
		s.reset()
		s.log.Warn("decode settings failed, using defaults", logger.Error(err))
		return fmt.Errorf("decode settings: %w", err)
	}

	s.mu.Lock()
	s.cur, s.extra = cur, extra
	s.mu.Unlock()
	return nil
}

func (s *Store) reset() {
	s.mu.Lock()
	s.cur, s.extra = Defaults(), nil
	s.mu.Unlock()
}

// decode merges raw onto the defaults one top-level key at a time. Keys it
// does not know are returned separately so Save can write them back.
func decode(raw json.RawMessage) (Settings, map[string]json.RawMessage, error) {
	out := Defaults()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out, nil, err
	}

	known := map[string]any{
		keyPageSize:          &out.PageSize,
		keyDateFormatChoice:  &out.DateFormatChoice,
		keyDateFormats:       &out.DateFormats,
		keyDefaultExportPath: &out.DefaultExportPath,
	}

	extra := make(map[string]json.RawMessage)
	for key, value := range fields {
		dst, ok := known[key]
		if !ok {
			extra[key] = value
			continue
		}
		if string(value) == "null" {
			continue
		}
		if key == keyDateFormats {
			// A stored preset map replaces the defaults as a whole.
			out.DateFormats = nil
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return Defaults(), nil, fmt.Errorf("field %s: %w", key, err)
		}
	}
	if out.DateFormats == nil {
		out.DateFormats = Defaults().DateFormats
	}
	if len(extra) == 0 {
		extra = nil
	}
	return out, extra, nil
}

// Save writes the current settings, including any unknown keys that were
// loaded.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	doc := make(map[string]any, len(s.extra)+4)
	for k, v := range s.extra {
		doc[k] = v
	}
	cur := s.cur.clone()
	s.mu.RUnlock()

	doc[keyPageSize] = cur.PageSize
	doc[keyDateFormatChoice] = cur.DateFormatChoice
	doc[keyDateFormats] = cur.DateFormats
	doc[keyDefaultExportPath] = cur.DefaultExportPath

	if err := s.persist.SaveConfig(ctx, doc); err != nil {
		return fmt.Errorf("%w: save settings: %w", model.ErrPersistence, err)
	}
	return nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.clone()
}

// PageSize returns the stored page size, or the default when the stored
// value is out of range.
func (s *Store) PageSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur.PageSize < MinPageSize || s.cur.PageSize > MaxPageSize {
		return Defaults().PageSize
	}
	return s.cur.PageSize
}

// ActiveDateFormat returns the strftime pattern selected by
// date_format_choice, or the "1" preset when the choice is stale.
func (s *Store) ActiveDateFormat() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.cur.DateFormats[s.cur.DateFormatChoice]; ok && f != "" {
		return f
	}
	return Defaults().DateFormats["1"]
}

// DateFormatChoices returns the preset keys in order.
func (s *Store) DateFormatChoices() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.cur.DateFormats))
	for k := range s.cur.DateFormats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetPageSize changes the page size in memory.
func (s *Store) SetPageSize(n int) error {
	if err := validatePageSize(n); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur.PageSize = n
	s.mu.Unlock()
	return nil
}

// SetDateFormatChoice selects one of the configured presets in memory.
func (s *Store) SetDateFormatChoice(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := validateChoice(s.cur.DateFormats, key); err != nil {
		return err
	}
	s.cur.DateFormatChoice = strings.TrimSpace(key)
	return nil
}

// SetDefaultExportPath changes the export path in memory.
func (s *Store) SetDefaultExportPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return model.NewValidationError(keyDefaultExportPath, "must not be empty")
	}
	s.mu.Lock()
	s.cur.DefaultExportPath = path
	s.mu.Unlock()
	return nil
}

// Apply validates every field of u, applies them together and saves. When
// the save fails the previous settings are restored.
func (s *Store) Apply(ctx context.Context, u Update) error {
	s.mu.Lock()
	prev := s.cur.clone()
	next := s.cur.clone()

	if u.PageSize != nil {
		if err := validatePageSize(*u.PageSize); err != nil {
			s.mu.Unlock()
			return err
		}
		next.PageSize = *u.PageSize
	}
	if u.DateFormatChoice != nil {
		if err := validateChoice(next.DateFormats, *u.DateFormatChoice); err != nil {
			s.mu.Unlock()
			return err
		}
		next.DateFormatChoice = strings.TrimSpace(*u.DateFormatChoice)
	}
	if u.DefaultExportPath != nil {
		p := strings.TrimSpace(*u.DefaultExportPath)
		if p == "" {
			s.mu.Unlock()
			return model.NewValidationError(keyDefaultExportPath, "must not be empty")
		}
		next.DefaultExportPath = p
	}
	s.cur = next
	s.mu.Unlock()

	if err := s.Save(ctx); err != nil {
		s.mu.Lock()
		s.cur = prev
		s.mu.Unlock()
		return err
	}
	return nil
}

// FormatTimestamp renders an epoch-seconds value with the active pattern in
// local time. Zero renders as "N/A".
func (s *Store) FormatTimestamp(ts int64) string {
	return FormatTimestamp(ts, s.ActiveDateFormat())
}

// FormatTimestamp renders ts with a strftime pattern.
func FormatTimestamp(ts int64, pattern string) string {
	if ts == 0 {
		return "N/A"
	}
	if ts < 0 {
		return "Invalid Date"
	}
	t := time.Unix(ts, 0).Local()
	if t.Year() > 9999 {
		return "Invalid Date"
	}
	out, err := strftime.Format(pattern, t)
	if err != nil {
		return "Invalid Date"
	}
	return out
}

func validatePageSize(n int) error {
	if n < MinPageSize || n > MaxPageSize {
		return model.NewValidationError(keyPageSize,
			fmt.Sprintf("must be between %d and %d", MinPageSize, MaxPageSize))
	}
	return nil
}

func validateChoice(formats map[string]string, key string) error {
	key = strings.TrimSpace(key)
	if _, ok := formats[key]; !ok {
		return model.NewValidationError(keyDateFormatChoice,
			fmt.Sprintf("unknown date format %q", key))
	}
	return nil
}
