package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/ramfs/pkg/nodepool"
)

// poolMetrics is the Prometheus implementation of nodepool.Metrics.
type poolMetrics struct {
	allocs   *prometheus.CounterVec
	releases prometheus.Counter
	capacity prometheus.Gauge
}

// NewPoolMetrics creates a Prometheus-backed node pool sink.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// A nil sink disables pool reporting with zero overhead.
func NewPoolMetrics() nodepool.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &poolMetrics{
		allocs: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ramfs_nodepool_allocs_total",
				Help: "Total number of node allocations from the pool, by slot reuse",
			},
			[]string{"reused"}, // "true", "false"
		),
		releases: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "ramfs_nodepool_releases_total",
				Help: "Total number of node slots returned to the pool",
			},
		),
		capacity: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "ramfs_nodepool_capacity_slots",
				Help: "Current total slot capacity of the node pool",
			},
		),
	}
}

// ObserveAlloc records one allocation from the pool.
func (m *poolMetrics) ObserveAlloc(reused bool) {
	if m == nil {
		return
	}
	if reused {
		m.allocs.WithLabelValues("true").Inc()
	} else {
		m.allocs.WithLabelValues("false").Inc()
	}
}

// ObserveRelease records one slot returned to the free list.
func (m *poolMetrics) ObserveRelease() {
	if m == nil {
		return
	}
	m.releases.Inc()
}

// SetCapacity records the pool's total slot count.
func (m *poolMetrics) SetCapacity(n int) {
	if m == nil {
		return
	}
	m.capacity.Set(float64(n))
}
