// Package redis implements store.Store on top of Redis, for companion
// deployments where several client processes share one token and history
// state.
package redis

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plantify/plantify-go/store"
)

// Client implements the store.Store interface using Redis as the backend.
type Client struct {
	client *redis.Client
	config Config
	closed atomic.Bool
}

var _ store.Store = (*Client)(nil)

// NewClient creates a new Redis-backed store.
// Validates configuration and verifies the connection with PING.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := cfg.withDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:         c.Address(),
		Password:     c.Password,
		DB:           c.Database,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, store.NewConnectionError("ping", c.Address(), err)
	}

	return &Client{client: client, config: c}, nil
}

func (c *Client) key(k string) string {
	return c.config.KeyPrefix + k
}

// Get retrieves a value from Redis.
// Returns store.ErrNotFound if the key doesn't exist.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, store.ErrClosed
	}

	result, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.NewOperationError("get", key, err)
	}
	return result, nil
}

// Set stores a value without expiration.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	if c.closed.Load() {
		return store.ErrClosed
	}

	if err := c.client.Set(ctx, c.key(key), value, 0).Err(); err != nil {
		return store.NewOperationError("set", key, err)
	}
	return nil
}

// Delete removes a key. Missing keys are not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return store.ErrClosed
	}

	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return store.NewOperationError("delete", key, err)
	}
	return nil
}

// Health checks if the Redis connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	if c.closed.Load() {
		return store.ErrClosed
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return store.NewConnectionError("ping", c.config.Address(), err)
	}
	return nil
}

// Close closes the Redis client and releases resources.
// Close is idempotent: later calls return store.ErrClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return store.ErrClosed
	}
	return c.client.Close()
}
