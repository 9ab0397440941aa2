package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tahp/LinkManager/internal/logger"
)

// redisClient is the subset of *redis.Client the backend uses.
type redisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisOptions configures the remote key-value backend.
type RedisOptions struct {
	URL            string        // redis://, rediss:// or bare host:port
	ConnectTimeout time.Duration // total time allowed for connection attempts
	PingTimeout    time.Duration // timeout for each ping attempt
	RetryInterval  time.Duration // initial wait between attempts, doubled each retry
	MaxWait        time.Duration // cap on the wait between attempts
}

func (o *RedisOptions) withDefaults() RedisOptions {
	out := *o
	if out.ConnectTimeout <= 0 {
		out.ConnectTimeout = 5 * time.Second
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = 2 * time.Second
	}
	if out.RetryInterval <= 0 {
		out.RetryInterval = 250 * time.Millisecond
	}
	if out.MaxWait <= 0 {
		out.MaxWait = 2 * time.Second
	}
	return out
}

// RedisBackend stores each key as a plain string value in Redis.
type RedisBackend struct {
	client redisClient
	addr   string
}

// NewRedisBackend dials Redis and pings it until it answers or
// ConnectTimeout elapses.
func NewRedisBackend(opts RedisOptions, log logger.Logger) (*RedisBackend, error) {
	if log == nil {
		log = logger.NewNop()
	}
	opts = opts.withDefaults()

	redisOpts, err := parseRedisURL(opts.URL)
	if err != nil {
		return nil, err
	}
	redisOpts.DialTimeout = opts.PingTimeout

	client := redis.NewClient(redisOpts)
	if err := connectWithRetry(client, redisOpts.Addr, opts, log); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisBackend{client: client, addr: redisOpts.Addr}, nil
}

func newRedisBackendWithClient(client redisClient, addr string) *RedisBackend {
	return &RedisBackend{client: client, addr: addr}
}

// parseRedisURL accepts full redis URLs as well as a bare host:port.
func parseRedisURL(raw string) (*redis.Options, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("redis URL is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "redis://" + raw
	}
	opts, err := redis.ParseURL(raw)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return opts, nil
}

// connectWithRetry pings with exponential backoff until success or timeout.
func connectWithRetry(client redisClient, addr string, opts RedisOptions, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	log.Debug("connecting to redis",
		logger.String("addr", addr),
		logger.Duration("timeout", opts.ConnectTimeout))

	attempt := 0
	wait := opts.RetryInterval
	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			log.Info("connected to redis",
				logger.String("addr", addr),
				logger.Int("attempts", attempt))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("redis unavailable at %s after %d attempts: %w", addr, attempt, err)
		case <-timer.C:
			log.Warn("redis connection failed, retrying",
				logger.String("addr", addr),
				logger.Int("attempt", attempt),
				logger.Duration("next_retry_in", wait),
				logger.Error(err))
			wait *= 2
			if wait > opts.MaxWait {
				wait = opts.MaxWait
			}
		}
	}
}

// Get reads key.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoData
	}
	return data, nil
}

// Put overwrites key without expiry.
func (b *RedisBackend) Put(ctx context.Context, key string, data []byte) error {
	if err := b.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Name identifies the backend.
func (b *RedisBackend) Name() string { return "redis" }

// Close closes the client connection pool.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
