package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the request cache.
type CacheMetrics struct {
	Hits          prometheus.Counter
	Misses        *prometheus.CounterVec
	Invalidations prometheus.Counter
	Entries       prometheus.Gauge
}

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "request_cache",
			Name:      "hits_total",
			Help:      "Total number of request cache hits.",
		}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "request_cache",
			Name:      "misses_total",
			Help:      "Total number of request cache misses, by reason (absent, expired, type).",
		}, []string{"reason"}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "request_cache",
			Name:      "invalidations_total",
			Help:      "Total number of request cache invalidations.",
		}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "request_cache",
			Name:      "entries",
			Help:      "Number of entries held, including expired ones.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Invalidations, m.Entries)
	return m
}
