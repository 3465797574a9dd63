package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// DefaultShutdownTimeout bounds the final flush when Shutdown is given no
// timeout.
const DefaultShutdownTimeout = 5 * time.Second

// disabled is the Provider returned when telemetry is off.
type disabled struct{}

func (disabled) TracerProvider() trace.TracerProvider { return tracenoop.NewTracerProvider() }
func (disabled) MeterProvider() metric.MeterProvider  { return metricnoop.NewMeterProvider() }
func (disabled) Shutdown(context.Context) error       { return nil }
func (disabled) ForceFlush(context.Context) error     { return nil }

// Shutdown flushes and stops p, giving up after timeout. A nil provider is
// a no-op so callers can defer it unconditionally.
func Shutdown(p Provider, timeout time.Duration) error {
	if p == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := p.Shutdown(ctx); err != nil {
		return fmt.Errorf("telemetry shutdown: %w", err)
	}
	return nil
}
