// Package metrics exposes the engine's ambient observability surface:
// Prometheus counters and a histogram mounted on a plain net/http
// handler, entirely separate from the matching path and the TCP
// transport. Nothing in internal/engine or internal/book imports this
// package; it observes by being handed explicit call-outs from
// internal/transport and from the engine/fan-out hooks that cmd/server
// wires up, the same separation the spec draws between the
// core and everything around it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the small set of counters/histograms this repo
// cares about: submissions by order type, trades, triggers fired, and
// fan-out drops, plus a submit-latency histogram.
type Metrics struct {
	Submissions   *prometheus.CounterVec
	Trades        prometheus.Counter
	TriggersFired prometheus.Counter
	FanoutDrops   *prometheus.CounterVec
	SubmitLatency prometheus.Histogram
}

// New registers and returns a fresh Metrics set against the default
// Prometheus registry.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skoll",
			Name:      "submissions_total",
			Help:      "Order submissions accepted by the engine, by order type.",
		}, []string{"order_type"}),
		Trades: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "skoll",
			Name:      "trades_total",
			Help:      "Trades produced by the matching engine.",
		}),
		TriggersFired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "skoll",
			Name:      "triggers_fired_total",
			Help:      "Stop/take-profit triggers activated.",
		}),
		FanoutDrops: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skoll",
			Name:      "fanout_drops_total",
			Help:      "Events dropped because a subscriber queue was full, by topic.",
		}, []string{"topic"}),
		SubmitLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skoll",
			Name:      "submit_latency_seconds",
			Help:      "Wall-clock duration of Engine.Submit.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
	}
}

// Handler returns the /metrics HTTP handler for mounting by cmd/server.
func Handler() http.Handler {
	return promhttp.Handler()
}
