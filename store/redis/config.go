package redis

import (
	"fmt"
	"time"

	"github.com/plantify/plantify-go/store"
)

// Config holds Redis-specific configuration options.
type Config struct {
	// Host is the Redis server hostname or IP address.
	Host string

	// Port is the Redis server port (default: 6379).
	Port int

	// Password for Redis authentication (optional).
	Password string //nolint:gosec // config field, loaded from env

	// Database number to use (0-15).
	Database int

	// KeyPrefix namespaces every key, e.g. "plantify:<device>:".
	KeyPrefix string

	// PoolSize is the maximum number of socket connections (default: 4).
	PoolSize int

	// DialTimeout is the timeout for establishing new connections (default: 5s).
	DialTimeout time.Duration

	// ReadTimeout and WriteTimeout bound socket operations (default: 3s).
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Validate performs fail-fast validation of Redis configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return store.NewConfigError("redis.host", "host is required", nil)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return store.NewConfigError("redis.port", fmt.Sprintf("invalid port: %d", c.Port), nil)
	}

	if c.Database < 0 || c.Database > 15 {
		return store.NewConfigError("redis.database", fmt.Sprintf("invalid database number: %d (must be 0-15)", c.Database), nil)
	}

	if c.PoolSize < 0 {
		return store.NewConfigError("redis.poolsize", fmt.Sprintf("invalid pool size: %d", c.PoolSize), nil)
	}

	if c.DialTimeout < 0 {
		return store.NewConfigError("redis.dialtimeout", "dial timeout cannot be negative", nil)
	}

	return nil
}

// Address returns the Redis server address in "host:port" format.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.PoolSize == 0 {
		out.PoolSize = 4
	}
	if out.DialTimeout == 0 {
		out.DialTimeout = 5 * time.Second
	}
	if out.ReadTimeout == 0 {
		out.ReadTimeout = 3 * time.Second
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = 3 * time.Second
	}
	return out
}
