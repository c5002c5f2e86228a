package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Optimizer Metrics
	OptimizationsTotal       *prometheus.CounterVec
	OptimizationDuration     prometheus.Histogram
	CycleLengthSeconds       prometheus.Histogram
	SaturationDegree         prometheus.Histogram
	OversaturatedTotal       prometheus.Counter
	CycleClampsTotal         *prometheus.CounterVec
	MinGreenExtensionsTotal  prometheus.Counter
	LaneGreenSeconds         *prometheus.GaugeVec
	UnknownClassIgnoredTotal prometheus.Counter

	// Integration Metrics
	BroadcastsTotal       *prometheus.CounterVec
	BroadcastBytesTotal   prometheus.Counter
	HistoryInsertsTotal   *prometheus.CounterVec
	StreamSubscribersOpen prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// NewRegistry creates a new metrics registry with all metrics registered
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initHTTPMetrics()
	r.initOptimizerMetrics()
	r.initIntegrationMetrics()
	return r
}

// Default returns the global metrics registry
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// PrometheusRegistry returns the underlying prometheus registry for
// handler exposure and test scraping.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}
