package storage

import (
	"context"
	"errors"
)

// Logical keys. Every backend stores exactly these two values.
const (
	LinksKey  = "interactive_link_manager:links"
	ConfigKey = "interactive_link_manager:config"
)

// ErrNoData indicates a key has no stored value, or an empty one.
var ErrNoData = errors.New("no data stored")

// Backend reads and writes whole values by key. Put always overwrites the
// full value; there are no partial writes.
type Backend interface {
	// Get returns the stored value, or ErrNoData when nothing is stored.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the stored value.
	Put(ctx context.Context, key string, data []byte) error

	// Name identifies the backend in logs.
	Name() string

	// Close releases the backend's connection, if any.
	Close() error
}
