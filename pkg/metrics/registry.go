// Package metrics provides the process-wide Prometheus registry and
// the metric sinks the filesystem layers report into.
//
// Metrics are opt-in: call InitRegistry once at startup to enable
// collection. The New* constructors return nil sinks when the registry
// was never initialized, and every sink method tolerates a nil
// receiver, so instrumented code needs no enablement checks.
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry atomic.Pointer[prometheus.Registry]

// InitRegistry creates the process-wide registry with the standard Go
// runtime and process collectors. Calling it again keeps the first
// registry.
func InitRegistry() {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry.CompareAndSwap(nil, reg)
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return registry.Load() != nil
}

// GetRegistry returns the process-wide registry, or nil when metrics
// are disabled.
func GetRegistry() *prometheus.Registry {
	return registry.Load()
}

// Handler returns the scrape endpoint handler. When metrics are
// disabled it answers 404.
func Handler() http.Handler {
	reg := registry.Load()
	if reg == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
