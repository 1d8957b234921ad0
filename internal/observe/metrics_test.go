package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumFor returns the counter value for the data point carrying attr.
func sumFor(t *testing.T, m *metricdata.Metrics, attr attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: data is %T, want Sum[int64]", m.Name, m.Data)
	}
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attr.Key); ok && v == attr.Value {
			return dp.Value
		}
	}
	return 0
}

func TestRecordEventAndOutcome(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordEvent(ctx, "BeginStory")
	m.RecordEvent(ctx, "BeginStory")
	m.RecordEvent(ctx, "Pause")
	m.RecordOutcome(ctx, "completed")

	rm := collect(t, reader)

	events := findMetric(rm, "storyteller.events")
	if events == nil {
		t.Fatal("storyteller.events not found")
	}
	if got := sumFor(t, events, attribute.String("event", "BeginStory")); got != 2 {
		t.Errorf("BeginStory count = %d, want 2", got)
	}
	if got := sumFor(t, events, attribute.String("event", "Pause")); got != 1 {
		t.Errorf("Pause count = %d, want 1", got)
	}

	outcomes := findMetric(rm, "storyteller.outcomes")
	if outcomes == nil {
		t.Fatal("storyteller.outcomes not found")
	}
	if got := sumFor(t, outcomes, attribute.String("outcome", "completed")); got != 1 {
		t.Errorf("completed count = %d, want 1", got)
	}
}

func TestFeedClientsUpDown(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.FeedClients.Add(ctx, 1)
	m.FeedClients.Add(ctx, 1)
	m.FeedClients.Add(ctx, -1)

	got := findMetric(collect(t, reader), "storyteller.feed.clients")
	if got == nil {
		t.Fatal("storyteller.feed.clients not found")
	}
	sum := got.Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("feed clients = %+v, want 1", sum.DataPoints)
	}
}

func TestNoop(t *testing.T) {
	m := Noop()
	if m == nil {
		t.Fatal("Noop returned nil")
	}
	m.RecordEvent(context.Background(), "Launch")
	m.MalformedTokens.Add(context.Background(), 1)
}
