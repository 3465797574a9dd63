package observability

import (
	"errors"
	"io"
	"os"
	"time"
)

// ErrMissingServiceName is returned when telemetry is enabled but no service name is configured.
var ErrMissingServiceName = errors.New("observability: service name is required when telemetry is enabled")

const (
	// DefaultMetricInterval is how often metrics are exported.
	DefaultMetricInterval = 30 * time.Second
)

// Config configures the stdout telemetry exporters.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Writer receives exported spans and metrics. Defaults to os.Stderr so
	// telemetry never mixes with command output.
	Writer io.Writer

	// MetricInterval is the periodic export interval.
	MetricInterval time.Duration

	PrettyPrint bool
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Writer == nil {
		c.Writer = os.Stderr
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = DefaultMetricInterval
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Enabled && c.ServiceName == "" {
		return ErrMissingServiceName
	}
	return nil
}
