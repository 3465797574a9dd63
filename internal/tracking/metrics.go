// Package tracking records OpenTelemetry metrics for outbound requests and
// endpoint probes using the global meter provider.
package tracking

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "plantify/client"

	metricRequestDuration = "plantify.client.request.duration" // Histogram in seconds
	metricRequestAttempts = "plantify.client.request.attempts" // Counter
	metricEndpointProbes  = "plantify.endpoint.probes"         // Counter

	attrMethod     = "http.request.method"
	attrStatusCode = "http.response.status_code"
	attrEndpoint   = "plantify.endpoint"
	attrErrorType  = "error.type"
	attrReachable  = "plantify.probe.reachable"
)

var (
	meter       metric.Meter
	meterOnce   sync.Once
	meterInitMu sync.Mutex

	requestDuration metric.Float64Histogram
	requestAttempts metric.Int64Counter
	endpointProbes  metric.Int64Counter
)

func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize metric %s: %v\n", metricName, err)
	}
}

func initMeter() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	if meter != nil {
		return
	}

	meter = otel.Meter(meterName)

	var err error
	requestDuration, err = meter.Float64Histogram(
		metricRequestDuration,
		metric.WithDescription("Duration of logical API requests including retries"),
		metric.WithUnit("s"),
	)
	logMetricError(metricRequestDuration, err)

	requestAttempts, err = meter.Int64Counter(
		metricRequestAttempts,
		metric.WithDescription("Number of HTTP attempts made for API requests"),
		metric.WithUnit("{attempt}"),
	)
	logMetricError(metricRequestAttempts, err)

	endpointProbes, err = meter.Int64Counter(
		metricEndpointProbes,
		metric.WithDescription("Number of base URL reachability probes"),
		metric.WithUnit("{probe}"),
	)
	logMetricError(metricEndpointProbes, err)
}

func ensureMeter() {
	meterOnce.Do(initMeter)
}

// Request describes one completed logical request.
type Request struct {
	Method   string
	Endpoint string
	Status   int    // zero when no response was received
	Attempts int    // HTTP attempts made, including the successful one
	Kind     string // error kind; empty on success
	Duration time.Duration
}

// RecordRequest records the duration and attempt count of a logical request.
func RecordRequest(ctx context.Context, r Request) {
	ensureMeter()

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, r.Method),
		attribute.String(attrEndpoint, r.Endpoint),
	}
	if r.Status > 0 {
		attrs = append(attrs, attribute.Int(attrStatusCode, r.Status))
	}
	if r.Kind != "" {
		attrs = append(attrs, attribute.String(attrErrorType, r.Kind))
	}
	opt := metric.WithAttributes(attrs...)

	if requestDuration != nil {
		requestDuration.Record(ctx, r.Duration.Seconds(), opt)
	}
	if requestAttempts != nil && r.Attempts > 0 {
		requestAttempts.Add(ctx, int64(r.Attempts), opt)
	}
}

// RecordProbe counts one reachability probe.
func RecordProbe(ctx context.Context, reachable bool) {
	ensureMeter()

	if endpointProbes != nil {
		endpointProbes.Add(ctx, 1, metric.WithAttributes(attribute.Bool(attrReachable, reachable)))
	}
}

// ResetForTesting resets the metric state for testing purposes.
func ResetForTesting() {
	meterInitMu.Lock()
	defer meterInitMu.Unlock()

	meter = nil
	requestDuration = nil
	requestAttempts = nil
	endpointProbes = nil
	meterOnce = sync.Once{}
}
