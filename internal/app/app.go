package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/tahp/LinkManager/internal/config"
	"github.com/tahp/LinkManager/internal/links"
	"github.com/tahp/LinkManager/internal/logger"
	"github.com/tahp/LinkManager/internal/settings"
	"github.com/tahp/LinkManager/internal/storage"
)

// Services bundles the collaborators every front end needs.
type Services struct {
	Backend  storage.Backend
	Settings *settings.Store
	Links    *links.Repository
	Log      logger.Logger
}

// OpenBackend picks the persistence backend once at startup. With KV_URL
// set it dials Redis; if that fails, or no URL is set, it opens the local
// backend.
func OpenBackend(cfg config.StorageConfig, log logger.Logger) (storage.Backend, error) {
	if log == nil {
		log = logger.NewNop()
	}

	if strings.TrimSpace(cfg.KVURL) != "" {
		b, err := storage.NewRedisBackend(storage.RedisOptions{
			URL:            cfg.KVURL,
			ConnectTimeout: cfg.RedisConnectTimeout,
			PingTimeout:    cfg.RedisPingTimeout,
		}, log.Named("redis"))
		if err == nil {
			return b, nil
		}
		log.Warn("remote store unavailable, falling back to local storage",
			logger.String("local_backend", cfg.LocalBackend),
			logger.Error(err))
	}

	return openLocal(cfg, log)
}

func openLocal(cfg config.StorageConfig, log logger.Logger) (storage.Backend, error) {
	switch cfg.LocalBackend {
	case config.BackendSQLite:
		b, err := storage.NewSQLiteBackend(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		log.Debug("using sqlite backend", logger.String("path", cfg.SQLitePath))
		return b, nil
	case config.BackendFile, "":
		b, err := storage.NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file backend: %w", err)
		}
		log.Debug("using file backend", logger.String("dir", cfg.DataDir))
		return b, nil
	default:
		return nil, fmt.Errorf("unknown local backend %q", cfg.LocalBackend)
	}
}

// Open selects the backend and wires the settings store and repository on
// top of it. Unreadable settings are logged and replaced by the defaults.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Services, error) {
	if log == nil {
		log = logger.NewNop()
	}

	backend, err := OpenBackend(cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	adapter := storage.NewAdapter(backend, log.Named("storage"))

	store := settings.NewStore(adapter, log.Named("settings"))
	if err := store.Load(ctx); err != nil {
		log.Warn("settings unavailable, using defaults", logger.Error(err))
	}

	return &Services{
		Backend:  backend,
		Settings: store,
		Links:    links.New(adapter, log.Named("links")),
		Log:      log,
	}, nil
}

// Close releases the backend and flushes the logger.
func (s *Services) Close() error {
	err := s.Backend.Close()
	_ = s.Log.Sync()
	return err
}
