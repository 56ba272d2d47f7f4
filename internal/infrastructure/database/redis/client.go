// Package redis provides the Redis client and the archive sync ledger built
// on it.
package redis

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/openipdata/grantfeed/internal/config"
	"github.com/openipdata/grantfeed/internal/infrastructure/monitoring/logging"
	"github.com/openipdata/grantfeed/pkg/errors"
)

// Client wraps a go-redis client with lifecycle management.  All ledger
// operations go through it so that connection handling and logging live in
// one place.
type Client struct {
	rdb    *redis.Client
	logger logging.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient builds a Client from cfg and verifies connectivity with a PING.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLedgerUnavailable, "redis ping failed")
	}

	logger.Info("redis client connected",
		logging.String("addr", cfg.Addr),
		logging.Int("db", cfg.DB),
	)

	return &Client{rdb: rdb, logger: logger}, nil
}

// NewClientFromRedis wraps an existing go-redis client.  Used by tests to
// inject a redismock instance.
func NewClientFromRedis(rdb *redis.Client, logger logging.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// Redis exposes the underlying go-redis client.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New(errors.ErrCodeLedgerUnavailable, "redis client is closed")
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeLedgerUnavailable, "redis ping failed")
	}
	return nil
}

// Close releases the connection pool.  Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rdb.Close()
}
