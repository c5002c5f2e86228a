package metrics

import (
	"time"

	"github.com/dd0wney/cluso-signal/pkg/signal"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordOptimization records a completed optimization and its result shape.
func (r *Registry) RecordOptimization(timing *signal.IntersectionTiming, duration time.Duration) {
	r.OptimizationsTotal.WithLabelValues("ok").Inc()
	r.OptimizationDuration.Observe(duration.Seconds())
	r.CycleLengthSeconds.Observe(float64(timing.CycleLength))
	r.SaturationDegree.Observe(timing.SaturationDegree)

	for _, phase := range timing.Phases {
		r.LaneGreenSeconds.WithLabelValues(string(phase.Direction)).Set(float64(phase.Green))
		if phase.Ignored > 0 {
			r.UnknownClassIgnoredTotal.Add(float64(phase.Ignored))
		}
	}

	if timing.HasFlag(signal.FlagOversaturated) {
		r.OversaturatedTotal.Inc()
	}
	if timing.HasFlag(signal.FlagClampedToMinimum) {
		r.CycleClampsTotal.WithLabelValues("minimum").Inc()
	}
	if timing.HasFlag(signal.FlagClampedToMaximum) {
		r.CycleClampsTotal.WithLabelValues("maximum").Inc()
	}
	if timing.HasFlag(signal.FlagMinGreenExtended) {
		r.MinGreenExtensionsTotal.Inc()
	}
}

// RecordOptimizationError records a failed optimization by error kind.
func (r *Registry) RecordOptimizationError(kind string) {
	r.OptimizationsTotal.WithLabelValues(kind).Inc()
	if kind == "oversaturated" {
		r.OversaturatedTotal.Inc()
	}
}

// RecordBroadcast records one publish attempt on the broadcast socket.
func (r *Registry) RecordBroadcast(bytes int, err error) {
	if err != nil {
		r.BroadcastsTotal.WithLabelValues("error").Inc()
		return
	}
	r.BroadcastsTotal.WithLabelValues("ok").Inc()
	r.BroadcastBytesTotal.Add(float64(bytes))
}

// RecordHistoryInsert records one history store write.
func (r *Registry) RecordHistoryInsert(err error) {
	if err != nil {
		r.HistoryInsertsTotal.WithLabelValues("error").Inc()
		return
	}
	r.HistoryInsertsTotal.WithLabelValues("ok").Inc()
}
