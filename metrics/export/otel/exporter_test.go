package otel

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	goGate "github.com/MrEthical07/goGate"
)

type fakeSource struct {
	mu       sync.RWMutex
	counters map[goGate.MetricID]uint64
	latency  []uint64
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() goGate.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := goGate.MetricsSnapshot{
		Counters:   make(map[goGate.MetricID]uint64, len(f.counters)),
		Histograms: map[goGate.MetricID][]uint64{},
	}
	for k, v := range f.counters {
		out.Counters[k] = v
	}
	if f.latency != nil {
		out.Histograms[goGate.MetricLoginLatency] = append([]uint64(nil), f.latency...)
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newReader(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestExporterCollectsCountersAndBuckets(t *testing.T) {
	reader, provider := newReader(t)
	src := &fakeSource{
		counters: map[goGate.MetricID]uint64{goGate.MetricLoginSuccess: 3, goGate.MetricAccessDenied: 2},
		latency:  []uint64{1, 1, 0, 0, 0, 0, 0, 1},
		dropped:  4,
	}

	exp, err := NewExporter(provider.Meter("gogate-test"), src)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, exp.Close()) })

	got := collect(t, reader)

	sum, ok := got["gogate_login_success_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	dropped, ok := got["gogate_audit_dropped_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(4), dropped.DataPoints[0].Value)

	buckets, ok := got["gogate_login_latency_seconds_bucket"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, buckets.DataPoints, 8)
	byLE := map[string]int64{}
	for _, dp := range buckets.DataPoints {
		le, _ := dp.Attributes.Value(attribute.Key("le"))
		byLE[le.AsString()] = dp.Value
	}
	assert.Equal(t, int64(1), byLE["0.01"])
	assert.Equal(t, int64(2), byLE["0.05"])
	assert.Equal(t, int64(3), byLE["+Inf"])

	count, ok := got["gogate_login_latency_seconds_count"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Equal(t, int64(3), count.DataPoints[0].Value)
}

func TestExporterSkipsDisabledHistogram(t *testing.T) {
	reader, provider := newReader(t)
	src := &fakeSource{counters: map[goGate.MetricID]uint64{}}

	exp, err := NewExporter(provider.Meter("gogate-test"), src)
	require.NoError(t, err)
	t.Cleanup(func() { _ = exp.Close() })

	got := collect(t, reader)
	_, present := got["gogate_login_latency_seconds_bucket"]
	assert.False(t, present)
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newReader(t)

	_, err := NewExporter(provider.Meter("gogate-test"), nil)
	assert.ErrorIs(t, err, ErrNilSource)

	_, err = NewExporter(nil, &fakeSource{})
	assert.ErrorIs(t, err, ErrNilMeter)
}

func TestExporterReadsLiveEngine(t *testing.T) {
	reader, provider := newReader(t)

	engine, err := goGate.New().
		WithVerifier(goGate.VerifierFunc(func(context.Context, string, string) (goGate.Identity, error) {
			return goGate.Identity{}, goGate.ErrInvalidCredentials
		})).
		WithMetricsEnabled(true).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	exp, err := NewExporter(provider.Meter("gogate-test"), engine)
	require.NoError(t, err)
	t.Cleanup(func() { _ = exp.Close() })

	_, err = engine.Login(context.Background(), goGate.Credentials{Email: "a@example.com", Password: "nope"})
	require.Error(t, err)

	got := collect(t, reader)
	sum, ok := got["gogate_login_failure_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
}

func TestExporterConcurrentCollect(t *testing.T) {
	reader, provider := newReader(t)
	src := &fakeSource{counters: map[goGate.MetricID]uint64{goGate.MetricLogout: 1}}

	exp, err := NewExporter(provider.Meter("gogate-test"), src)
	require.NoError(t, err)
	t.Cleanup(func() { _ = exp.Close() })

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.counters[goGate.MetricLogout] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
