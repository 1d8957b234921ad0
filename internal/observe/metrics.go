// Package observe provides the OpenTelemetry metric instruments of the
// storyteller service and the HTTP middleware that records request latency.
//
// Instruments are created from an injected [metric.MeterProvider]; tests
// use an sdk ManualReader, the server uses the Prometheus bridge set up by
// [InitProvider].
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "storyteller"

// Metrics holds all metric instruments. Safe for concurrent use.
type Metrics struct {
	// Events counts dispatched platform events. Attribute "event".
	Events metric.Int64Counter

	// Outcomes counts progression results. Attribute "outcome".
	Outcomes metric.Int64Counter

	// MalformedTokens counts playback tokens that failed to decode.
	MalformedTokens metric.Int64Counter

	// StoreErrors counts failed session store operations.
	StoreErrors metric.Int64Counter

	// FeedClients tracks connected playback feed websockets.
	FeedClients metric.Int64UpDownCounter

	// HTTPRequestDuration tracks request handling time. Attributes "method",
	// "route" and "status".
	HTTPRequestDuration metric.Float64Histogram
}

var latencyBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1,
}

// NewMetrics creates every instrument on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.Events, err = m.Int64Counter("storyteller.events",
		metric.WithDescription("Platform events dispatched, by event type."),
	); err != nil {
		return nil, err
	}
	if met.Outcomes, err = m.Int64Counter("storyteller.outcomes",
		metric.WithDescription("Story progression outcomes, by kind."),
	); err != nil {
		return nil, err
	}
	if met.MalformedTokens, err = m.Int64Counter("storyteller.tokens.malformed",
		metric.WithDescription("Playback tokens that could not be decoded."),
	); err != nil {
		return nil, err
	}
	if met.StoreErrors, err = m.Int64Counter("storyteller.session.errors",
		metric.WithDescription("Session store operations that failed."),
	); err != nil {
		return nil, err
	}
	if met.FeedClients, err = m.Int64UpDownCounter("storyteller.feed.clients",
		metric.WithDescription("Connected playback feed clients."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("storyteller.http.duration",
		metric.WithDescription("HTTP request handling latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// Noop returns instruments that record nothing.
func Noop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// RecordEvent increments the event counter.
func (m *Metrics) RecordEvent(ctx context.Context, event string) {
	m.Events.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

// RecordOutcome increments the outcome counter.
func (m *Metrics) RecordOutcome(ctx context.Context, outcome string) {
	m.Outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
