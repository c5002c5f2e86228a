package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initOptimizerMetrics() {
	r.OptimizationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_optimizations_total",
			Help: "Total number of signal timing optimizations",
		},
		[]string{"status"},
	)

	r.OptimizationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signal_optimization_duration_seconds",
			Help:    "Timing optimization latency in seconds",
			Buckets: []float64{.00001, .0001, .001, .01, .1},
		},
	)

	r.CycleLengthSeconds = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signal_cycle_length_seconds",
			Help:    "Distribution of computed cycle lengths",
			Buckets: []float64{40, 60, 80, 100, 120, 150, 180},
		},
	)

	r.SaturationDegree = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signal_saturation_degree",
			Help:    "Distribution of critical flow ratio sums (Y)",
			Buckets: []float64{.1, .25, .5, .75, .9, 1},
		},
	)

	r.OversaturatedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "signal_oversaturated_total",
			Help: "Optimizations that hit the oversaturation condition",
		},
	)

	r.CycleClampsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_cycle_clamps_total",
			Help: "Cycle lengths clamped to a configured bound",
		},
		[]string{"bound"},
	)

	r.MinGreenExtensionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "signal_min_green_extensions_total",
			Help: "Cycles extended so every phase meets the minimum green",
		},
	)

	r.LaneGreenSeconds = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "signal_lane_green_seconds",
			Help: "Most recent green allocation per approach",
		},
		[]string{"direction"},
	)

	r.UnknownClassIgnoredTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "signal_unknown_class_ignored_total",
			Help: "Counts dropped under the lenient unknown-class policy",
		},
	)
}
