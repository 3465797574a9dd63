package config

import (
	"time"
)

// Config is the complete client configuration.
type Config struct {
	App          AppConfig          `koanf:"app"`
	Log          LogConfig          `koanf:"log"`
	Endpoint     EndpointConfig     `koanf:"endpoint"`
	Connectivity ConnectivityConfig `koanf:"connectivity"`
	Request      RequestConfig      `koanf:"request"`
	Store        StoreConfig        `koanf:"store"`
	Telemetry    TelemetryConfig    `koanf:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name    string `koanf:"name" validate:"required"`
	Version string `koanf:"version" validate:"required"`
	Env     string `koanf:"env" validate:"oneof=development staging production"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `koanf:"pretty"`
}

// EndpointConfig drives base URL discovery.
type EndpointConfig struct {
	// Candidates are probed in order; the first entry is the fallback when
	// nothing answers.
	Candidates   []string      `koanf:"candidates" validate:"required,min=1,dive,url"`
	ProbePath    string        `koanf:"probepath" validate:"required,startswith=/"`
	ProbeTimeout time.Duration `koanf:"probetimeout" validate:"gt=0"`
	TTL          time.Duration `koanf:"ttl" validate:"gt=0"`
	Strategy     string        `koanf:"strategy" validate:"oneof=race sequential"`
	// FailedRoundInterval spaces probe rounds after one found nothing.
	// Zero disables the limit.
	FailedRoundInterval time.Duration `koanf:"failedroundinterval" validate:"gte=0"`
	AccountSegment      string        `koanf:"accountsegment" validate:"required"`
	DiseaseSegment      string        `koanf:"diseasesegment" validate:"required"`
}

// ConnectivityConfig configures the internet reachability pre-check.
type ConnectivityConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// RequestConfig holds per-request execution settings.
type RequestConfig struct {
	Timeout     time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxAttempts int           `koanf:"maxattempts" validate:"min=1,max=10"`
	RetryDelay  time.Duration `koanf:"retrydelay" validate:"gte=0"`
	LogPayloads bool          `koanf:"logpayloads"`
}

// Store backend types
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// StoreConfig selects where tokens, the resolved URL and history live.
type StoreConfig struct {
	Type  string      `koanf:"type" validate:"oneof=memory file redis"`
	Path  string      `koanf:"path"`
	Redis RedisConfig `koanf:"redis"`
}

// RedisConfig holds redis store connection settings.
type RedisConfig struct {
	Host      string        `koanf:"host"`
	Port      int           `koanf:"port" validate:"omitempty,min=1,max=65535"`
	Password  string        `koanf:"password"`
	Database  int           `koanf:"database" validate:"min=0,max=15"`
	KeyPrefix string        `koanf:"keyprefix"`
	PoolSize  int           `koanf:"poolsize" validate:"gte=0"`
	Timeout   time.Duration `koanf:"timeout" validate:"gte=0"`
}

// TelemetryConfig enables stdout metric and trace exporters.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"servicename"`
}
