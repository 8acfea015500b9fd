package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/ramfs/pkg/vfs"
)

// mountMetrics is the Prometheus implementation of vfs.RegistryMetrics.
type mountMetrics struct {
	mounts     *prometheus.CounterVec
	unmounts   *prometheus.CounterVec
	liveMounts prometheus.Gauge
}

// NewMountMetrics creates a Prometheus-backed mount lifecycle sink.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewMountMetrics() vfs.RegistryMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &mountMetrics{
		mounts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ramfs_mounts_total",
				Help: "Total number of successful mounts by filesystem type",
			},
			[]string{"fs_type"},
		),
		unmounts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ramfs_unmounts_total",
				Help: "Total number of unmounts by filesystem type",
			},
			[]string{"fs_type"},
		),
		liveMounts: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "ramfs_live_mounts",
				Help: "Current number of live mounts",
			},
		),
	}
}

// ObserveMount records one successful mount.
func (m *mountMetrics) ObserveMount(fstype string) {
	if m == nil {
		return
	}
	m.mounts.WithLabelValues(fstype).Inc()
}

// ObserveUnmount records one unmount.
func (m *mountMetrics) ObserveUnmount(fstype string) {
	if m == nil {
		return
	}
	m.unmounts.WithLabelValues(fstype).Inc()
}

// SetMounts records the current number of live mounts.
func (m *mountMetrics) SetMounts(n int) {
	if m == nil {
		return
	}
	m.liveMounts.Set(float64(n))
}
