package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

// Metrics counts cache activity per namespace.
type Metrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions *prometheus.CounterVec
	stalePuts *prometheus.CounterVec
}

// Stats is a snapshot of the counters of one namespace.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	StalePuts uint64
}

// NewMetrics creates the cache counters and registers them on reg.
// A nil reg keeps the counters unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	newCounter := func(name, help string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nyt",
			Subsystem: "cache",
			Name:      name,
			Help:      help,
		}, []string{"namespace"})
	}
	return &Metrics{
		hits:      newCounter("hits_total", "Cache lookups answered from the cache."),
		misses:    newCounter("misses_total", "Cache lookups that fell through to storage."),
		evictions: newCounter("evictions_total", "Whole-namespace evictions."),
		stalePuts: newCounter("stale_puts_total", "Computed values dropped because the namespace was evicted meanwhile."),
	}
}

func (m *Metrics) hit(ns Namespace) { m.hits.WithLabelValues(string(ns)).Inc() }
func (m *Metrics) miss(ns Namespace) { m.misses.WithLabelValues(string(ns)).Inc() }
func (m *Metrics) evict(ns Namespace) { m.evictions.WithLabelValues(string(ns)).Inc() }
func (m *Metrics) stalePut(ns Namespace) { m.stalePuts.WithLabelValues(string(ns)).Inc() }

// Stats reads the current counter values of ns.
func (m *Metrics) Stats(ns Namespace) Stats {
	return Stats{
		Hits:      counterValue(m.hits, ns),
		Misses:    counterValue(m.misses, ns),
		Evictions: counterValue(m.evictions, ns),
		StalePuts: counterValue(m.stalePuts, ns),
	}
}

func counterValue(vec *prometheus.CounterVec, ns Namespace) uint64 {
	metric := &promclient.Metric{}
	if err := vec.WithLabelValues(string(ns)).Write(metric); err != nil {
		return 0
	}
	return uint64(metric.GetCounter().GetValue())
}
