package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LM_DATA_DIR", dir)
	t.Setenv("KV_URL", "")
	t.Setenv("LM_LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Storage.KVURL != "" {
		t.Errorf("Storage.KVURL = %s, want empty", cfg.Storage.KVURL)
	}
	if cfg.Storage.LocalBackend != BackendFile {
		t.Errorf("Storage.LocalBackend = %s, want file", cfg.Storage.LocalBackend)
	}
	if cfg.Storage.SQLitePath != filepath.Join(dir, "links.db") {
		t.Errorf("Storage.SQLitePath = %s", cfg.Storage.SQLitePath)
	}
	if cfg.Storage.RedisConnectTimeout != 5*time.Second {
		t.Errorf("Storage.RedisConnectTimeout = %v, want 5s", cfg.Storage.RedisConnectTimeout)
	}
	if cfg.Server.ListenAddr != "127.0.0.1:8080" {
		t.Errorf("Server.ListenAddr = %s", cfg.Server.ListenAddr)
	}
	if cfg.Log.LevelOr("warn") != "warn" {
		t.Errorf("Log.LevelOr = %s, want warn", cfg.Log.LevelOr("warn"))
	}
}

func TestLoad_Overrides(t *testing.T) {
	envVars := map[string]string{
		"KV_URL":                   "redis://localhost:6379/0",
		"LM_DATA_DIR":              t.TempDir(),
		"LM_LOCAL_BACKEND":         "sqlite",
		"LM_SQLITE_PATH":           "/tmp/lm-test.db",
		"LM_REDIS_CONNECT_TIMEOUT": "1s",
		"LM_REDIS_PING_TIMEOUT":    "250ms",
		"LM_LOG_LEVEL":             "debug",
		"LM_PRETTY_LOG":            "true",
		"LM_LISTEN_ADDR":           ":9090",
		"LM_SHUTDOWN_TIMEOUT":      "3s",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Storage.KVURL != "redis://localhost:6379/0" {
		t.Errorf("Storage.KVURL = %s", cfg.Storage.KVURL)
	}
	if cfg.Storage.LocalBackend != BackendSQLite {
		t.Errorf("Storage.LocalBackend = %s, want sqlite", cfg.Storage.LocalBackend)
	}
	if cfg.Storage.SQLitePath != "/tmp/lm-test.db" {
		t.Errorf("Storage.SQLitePath = %s", cfg.Storage.SQLitePath)
	}
	if cfg.Storage.RedisPingTimeout != 250*time.Millisecond {
		t.Errorf("Storage.RedisPingTimeout = %v", cfg.Storage.RedisPingTimeout)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Pretty {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Server.ListenAddr != ":9090" || cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown backend", key: "LM_LOCAL_BACKEND", val: "postgres"},
		{name: "bad log level", key: "LM_LOG_LEVEL", val: "verbose"},
		{name: "bad duration", key: "LM_SHUTDOWN_TIMEOUT", val: "soon"},
		{name: "zero ping timeout", key: "LM_REDIS_PING_TIMEOUT", val: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LM_DATA_DIR", t.TempDir())
			t.Setenv(tt.key, tt.val)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s succeeded, want error", tt.key, tt.val)
			}
		})
	}
}
