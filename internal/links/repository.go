// Package links owns the link collection: identity, URL uniqueness and
// field defaults. Every operation loads the whole collection, works on it
// and, when it changes something, writes the whole collection back.
package links

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tahp/LinkManager/internal/logger"
	"github.com/tahp/LinkManager/internal/model"
)

// Store loads and saves the raw link collection.
type Store interface {
	LoadCollection(ctx context.Context) []json.RawMessage
	SaveCollection(ctx context.Context, records []json.RawMessage) error
}

// Repository provides CRUD and visit tracking over a Store.
type Repository struct {
	store Store
	log   logger.Logger
	now   func() time.Time
	newID func() string
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) { r.newID = gen }
}

// New creates a repository over store.
func New(store Store, log logger.Logger, opts ...Option) *Repository {
	if log == nil {
		log = logger.NewNop()
	}
	r := &Repository{
		store: store,
		log:   log,
		now:   time.Now,
		newID: model.NewID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// load decodes the stored collection. When a record needed a generated id
// or creation time, the healed collection is written back once so those
// values stay the same on the next load.
func (r *Repository) load(ctx context.Context) []model.Link {
	records := r.store.LoadCollection(ctx)
	out := make([]model.Link, 0, len(records))
	healed := 0
	for i, raw := range records {
		link, h, ok := r.decodeRecord(raw)
		if !ok {
			r.log.Warn("skipping stored record that is not an object", logger.Int("index", i))
			continue
		}
		if h {
			healed++
		}
		out = append(out, link)
	}

	if healed > 0 {
		if err := r.save(ctx, out); err != nil {
			r.log.Warn("persist healed links failed", logger.Int("healed", healed), logger.Error(err))
		}
	}
	return out
}

func (r *Repository) save(ctx context.Context, all []model.Link) error {
	records, err := encodeRecords(all)
	if err != nil {
		return fmt.Errorf("%w: encode links: %w", model.ErrPersistence, err)
	}
	if err := r.store.SaveCollection(ctx, records); err != nil {
		return fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}
	return nil
}

// ListAll returns every link in stored order.
func (r *Repository) ListAll(ctx context.Context) ([]model.Link, error) {
	return r.load(ctx), nil
}

// Add validates in, rejects a URL that is already stored, and appends the
// new link.
func (r *Repository) Add(ctx context.Context, in model.NewLink) (model.Link, error) {
	if err := in.Validate(); err != nil {
		return model.Link{}, err
	}
	url := model.NormalizeURL(in.URL)

	all := r.load(ctx)
	if indexOfURL(all, url, "") >= 0 {
		return model.Link{}, fmt.Errorf("%w: %s", model.ErrDuplicate, url)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = url
	}
	link := model.Link{
		ID:                r.newID(),
		URL:               url,
		Title:             title,
		Notes:             strings.TrimSpace(in.Notes),
		IsDefault:         in.IsDefault,
		ReminderTimestamp: in.ReminderTimestamp,
		CreatedTimestamp:  r.now().Unix(),
	}

	if err := r.save(ctx, append(all, link)); err != nil {
		return model.Link{}, err
	}
	r.log.Info("link added", logger.String("id", link.ID), logger.String("url", link.URL))
	return link, nil
}

// Get returns the link with id.
func (r *Repository) Get(ctx context.Context, id string) (model.Link, error) {
	all := r.load(ctx)
	if i := indexOfID(all, id); i >= 0 {
		return all[i], nil
	}
	return model.Link{}, fmt.Errorf("%w: %s", model.ErrNotFound, id)
}

// Update applies the supplied fields of u to the link with id. A URL
// change may not collide with another link's URL.
func (r *Repository) Update(ctx context.Context, id string, u model.LinkUpdate) (model.Link, error) {
	if err := u.Validate(); err != nil {
		return model.Link{}, err
	}

	all := r.load(ctx)
	i := indexOfID(all, id)
	if i < 0 {
		return model.Link{}, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	if u.URL != nil {
		url := model.NormalizeURL(*u.URL)
		if indexOfURL(all, url, id) >= 0 {
			return model.Link{}, fmt.Errorf("%w: %s", model.ErrDuplicate, url)
		}
	}

	u.Apply(&all[i])
	if err := r.save(ctx, all); err != nil {
		return model.Link{}, err
	}
	r.log.Info("link updated", logger.String("id", id))
	return all[i], nil
}

// Delete removes the link with id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	all := r.load(ctx)
	kept := make([]model.Link, 0, len(all))
	for _, l := range all {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(all) {
		return fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	if err := r.save(ctx, kept); err != nil {
		return err
	}
	r.log.Info("link deleted", logger.String("id", id))
	return nil
}

// RecordVisit increments the visit count of the link with id and stamps
// the visit time.
func (r *Repository) RecordVisit(ctx context.Context, id string) (model.Link, error) {
	all := r.load(ctx)
	i := indexOfID(all, id)
	if i < 0 {
		return model.Link{}, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}

	link := &all[i]
	link.VisitCount++
	link.LastVisitedTimestamp = max(link.LastVisitedTimestamp, r.now().Unix())

	if err := r.save(ctx, all); err != nil {
		return model.Link{}, err
	}
	r.log.Debug("visit recorded", logger.String("id", id), logger.Int64("visit_count", link.VisitCount))
	return *link, nil
}

// ImportResult counts the outcome of an import.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Import appends the incoming links whose URL is valid and not yet stored.
// Incoming IDs are kept when they are well formed and unused; visit data
// is carried over. The collection is saved once.
func (r *Repository) Import(ctx context.Context, incoming []model.Link) (ImportResult, error) {
	var res ImportResult
	all := r.load(ctx)

	for _, in := range incoming {
		in.URL = model.NormalizeURL(in.URL)
		if model.ValidateURL(in.URL) != nil || indexOfURL(all, in.URL, "") >= 0 {
			res.Skipped++
			continue
		}
		if !model.ValidateID(in.ID) || indexOfID(all, in.ID) >= 0 {
			in.ID = r.newID()
		}
		in.Title = strings.TrimSpace(in.Title)
		if in.Title == "" {
			in.Title = in.URL
		}
		if in.CreatedTimestamp <= 0 {
			in.CreatedTimestamp = r.now().Unix()
		}
		in.ReminderTimestamp = max(in.ReminderTimestamp, 0)
		in.LastVisitedTimestamp = max(in.LastVisitedTimestamp, 0)
		in.VisitCount = max(in.VisitCount, 0)

		all = append(all, in)
		res.Added++
	}

	if res.Added == 0 {
		return res, nil
	}
	if err := r.save(ctx, all); err != nil {
		return ImportResult{}, err
	}
	r.log.Info("links imported", logger.Int("added", res.Added), logger.Int("skipped", res.Skipped))
	return res, nil
}

func indexOfID(all []model.Link, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}

// indexOfURL finds url among links other than the one with exceptID.
func indexOfURL(all []model.Link, url, exceptID string) int {
	for i := range all {
		if all[i].ID == exceptID && exceptID != "" {
			continue
		}
		if model.NormalizeURL(all[i].URL) == url {
			return i
		}
	}
	return -1
}
