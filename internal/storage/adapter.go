package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tahp/LinkManager/internal/logger"
)

// Adapter moves the link collection and the settings object in and out of
// a Backend as JSON documents. It knows nothing about link fields.
type Adapter struct {
	backend Backend
	log     logger.Logger
}

// NewAdapter wraps backend.
func NewAdapter(backend Backend, log logger.Logger) *Adapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{backend: backend, log: log}
}

// Backend returns the wrapped backend.
func (a *Adapter) Backend() Backend {
	return a.backend
}

// LoadCollection returns the stored records. A missing, empty, unreadable
// or undecodable collection yields an empty slice; the failure is logged.
func (a *Adapter) LoadCollection(ctx context.Context) []json.RawMessage {
	data, err := a.backend.Get(ctx, LinksKey)
	if err != nil {
		if !errors.Is(err, ErrNoData) {
			a.log.Error("load links failed, using empty collection",
				logger.String("backend", a.backend.Name()),
				logger.Error(err))
		}
		return []json.RawMessage{}
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		a.log.Error("decode links failed, using empty collection",
			logger.String("backend", a.backend.Name()),
			logger.Error(err))
		return []json.RawMessage{}
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records
}

// SaveCollection overwrites the stored collection with records.
func (a *Adapter) SaveCollection(ctx context.Context, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode links: %w", err)
	}
	if err := a.backend.Put(ctx, LinksKey, data); err != nil {
		a.log.Error("save links failed",
			logger.String("backend", a.backend.Name()),
			logger.Int("count", len(records)),
			logger.Error(err))
		return fmt.Errorf("save links: %w", err)
	}
	a.log.Debug("links saved",
		logger.String("backend", a.backend.Name()),
		logger.Int("count", len(records)))
	return nil
}

// LoadConfig returns the stored settings object, or ErrNoData.
func (a *Adapter) LoadConfig(ctx context.Context) (json.RawMessage, error) {
	data, err := a.backend.Get(ctx, ConfigKey)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("load config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoData
	}
	return json.RawMessage(data), nil
}

// SaveConfig overwrites the stored settings object with v.
func (a *Adapter) SaveConfig(ctx context.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := a.backend.Put(ctx, ConfigKey, data); err != nil {
		a.log.Error("save config failed",
			logger.String("backend", a.backend.Name()),
			logger.Error(err))
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Close closes the backend.
func (a *Adapter) Close() error {
	return a.backend.Close()
}
