package goJobs

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricVerifySuccess)

	if got := m.Value(MetricVerifySuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricVerifySuccess)
	m.Observe(MetricVerifyLatency, time.Millisecond)
	if m.Value(MetricVerifySuccess) != 0 || len(m.Snapshot().Counters) != 0 {
		t.Fatal("nil metrics must record nothing")
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRevokeSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricRevokeSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricVerifyLatency, d)
	}
	m.Observe(MetricVerifySuccess, time.Millisecond)

	buckets := m.Snapshot().Histograms[MetricVerifyLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
}

func TestMetricsAddAndSnapshot(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricQueryBuilt)
	m.Add(MetricQueryParamDropped, 3)
	m.Add(MetricQueryParamDropped, 0)

	snap := m.Snapshot()
	if snap.Counters[MetricQueryBuilt] != 1 {
		t.Fatalf("expected MetricQueryBuilt=1 got %d", snap.Counters[MetricQueryBuilt])
	}
	if snap.Counters[MetricQueryParamDropped] != 3 {
		t.Fatalf("expected MetricQueryParamDropped=3 got %d", snap.Counters[MetricQueryParamDropped])
	}
	if _, ok := snap.Histograms[MetricVerifyLatency]; ok {
		t.Fatal("histogram must be absent when latency is disabled")
	}
}
