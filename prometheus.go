package chronidx

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector exports cache metrics through a Prometheus registry.
type PrometheusCollector struct {
	lookups      *prometheus.CounterVec
	opens        *prometheus.CounterVec
	openLatency  prometheus.Histogram
	evictions    prometheus.Counter
	appends      *prometheus.CounterVec
	appendLat    prometheus.Histogram
	appendBlocks prometheus.Histogram
}

// NewPrometheusCollector creates the collector and registers its metrics with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewPrometheusCollector(reg prometheus.Registerer, namespace string) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PrometheusCollector{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_cache_lookups_total",
			Help:      "Index file lookups by result (hit, miss).",
		}, []string{"result"}),
		opens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_file_opens_total",
			Help:      "Index files mapped on cache miss by status.",
		}, []string{"status"}),
		openLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_file_open_seconds",
			Help:      "Time to open and map an index file.",
			Buckets:   prometheus.DefBuckets,
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_cache_evictions_total",
			Help:      "Index files evicted from the bounded cache.",
		}),
		appends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_appends_total",
			Help:      "Index appends by status.",
		}, []string{"status"}),
		appendLat: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_append_seconds",
			Help:      "Append latency including slot claim.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
		appendBlocks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_append_blocks",
			Help:      "Block files visited per append.",
			Buckets:   []float64{1, 2, 3, 5, 10, 100},
		}),
	}

	for _, c := range []prometheus.Collector{p.lookups, p.opens, p.openLatency, p.evictions, p.appends, p.appendLat, p.appendBlocks} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// RecordLookup implements MetricsCollector.
func (p *PrometheusCollector) RecordLookup(hit bool) {
	if hit {
		p.lookups.WithLabelValues("hit").Inc()
	} else {
		p.lookups.WithLabelValues("miss").Inc()
	}
}

// RecordOpen implements MetricsCollector.
func (p *PrometheusCollector) RecordOpen(duration time.Duration, err error) {
	p.opens.WithLabelValues(status(err)).Inc()
	p.openLatency.Observe(duration.Seconds())
}

// RecordEviction implements MetricsCollector.
func (p *PrometheusCollector) RecordEviction() {
	p.evictions.Inc()
}

// RecordAppend implements MetricsCollector.
func (p *PrometheusCollector) RecordAppend(duration time.Duration, blocks int, err error) {
	p.appends.WithLabelValues(status(err)).Inc()
	p.appendLat.Observe(duration.Seconds())
	p.appendBlocks.Observe(float64(blocks))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
