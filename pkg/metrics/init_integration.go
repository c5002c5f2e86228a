package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initIntegrationMetrics() {
	r.BroadcastsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_broadcasts_total",
			Help: "Timing results published to downstream subscribers",
		},
		[]string{"status"},
	)

	r.BroadcastBytesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "signal_broadcast_bytes_total",
			Help: "Bytes published on the broadcast socket after framing",
		},
	)

	r.HistoryInsertsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_history_inserts_total",
			Help: "Timing results written to the history store",
		},
		[]string{"status"},
	)

	r.StreamSubscribersOpen = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "signal_stream_subscribers_open",
			Help: "Open SSE timing stream subscriptions",
		},
	)
}
