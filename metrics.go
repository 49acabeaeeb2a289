package chronidx

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// PrometheusCollector for a ready-made one.
type MetricsCollector interface {
	// RecordLookup is called for every IndexFor and every block read by Lookup
	// or Claimed, with whether the file was resident.
	RecordLookup(hit bool)

	// RecordOpen is called after mapping an index file on a cache miss.
	RecordOpen(duration time.Duration, err error)

	// RecordEviction is called when the least recently used file is evicted.
	RecordEviction()

	// RecordAppend is called after each append. blocks is the number of
	// block files visited, 1 when the first candidate had room.
	RecordAppend(duration time.Duration, blocks int, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLookup(bool)                     {}
func (NoopMetricsCollector) RecordOpen(time.Duration, error)       {}
func (NoopMetricsCollector) RecordEviction()                       {}
func (NoopMetricsCollector) RecordAppend(time.Duration, int, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Hits             atomic.Int64
	Misses           atomic.Int64
	OpenCount        atomic.Int64
	OpenErrors       atomic.Int64
	Evictions        atomic.Int64
	AppendCount      atomic.Int64
	AppendErrors     atomic.Int64
	AppendBlocks     atomic.Int64
	AppendTotalNanos atomic.Int64
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(hit bool) {
	if hit {
		b.Hits.Add(1)
	} else {
		b.Misses.Add(1)
	}
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(_ time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordEviction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEviction() {
	b.Evictions.Add(1)
}

// RecordAppend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAppend(duration time.Duration, blocks int, err error) {
	b.AppendCount.Add(1)
	b.AppendBlocks.Add(int64(blocks))
	b.AppendTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AppendErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		Hits:           b.Hits.Load(),
		Misses:         b.Misses.Load(),
		OpenCount:      b.OpenCount.Load(),
		OpenErrors:     b.OpenErrors.Load(),
		Evictions:      b.Evictions.Load(),
		AppendCount:    b.AppendCount.Load(),
		AppendErrors:   b.AppendErrors.Load(),
		AppendBlocks:   b.AppendBlocks.Load(),
		AppendAvgNanos: b.getAvgAppendNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgAppendNanos() int64 {
	count := b.AppendCount.Load()
	if count == 0 {
		return 0
	}
	return b.AppendTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Hits           int64
	Misses         int64
	OpenCount      int64
	OpenErrors     int64
	Evictions      int64
	AppendCount    int64
	AppendErrors   int64
	AppendBlocks   int64
	AppendAvgNanos int64
}
