package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/ramfs/pkg/vfs"
)

// nodeMetrics is the Prometheus implementation of vfs.NodeMetrics.
type nodeMetrics struct {
	created   *prometheus.CounterVec
	destroyed *prometheus.CounterVec
}

// NewNodeMetrics creates a Prometheus-backed node lifecycle sink.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewNodeMetrics() vfs.NodeMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &nodeMetrics{
		created: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ramfs_nodes_created_total",
				Help: "Total number of nodes created by allocator",
			},
			[]string{"allocator"},
		),
		destroyed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ramfs_nodes_destroyed_total",
				Help: "Total number of nodes destroyed by allocator",
			},
			[]string{"allocator"},
		),
	}
}

// ObserveNodeCreated records one node allocation.
func (m *nodeMetrics) ObserveNodeCreated(class vfs.StorageClass) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(allocatorLabel(class)).Inc()
}

// ObserveNodeDestroyed records one node release.
func (m *nodeMetrics) ObserveNodeDestroyed(class vfs.StorageClass) {
	if m == nil {
		return
	}
	m.destroyed.WithLabelValues(allocatorLabel(class)).Inc()
}

// allocatorLabel maps the empty storage class to a readable name.
func allocatorLabel(class vfs.StorageClass) string {
	if class == vfs.StorageClassNone {
		return "heap"
	}
	return string(class)
}
