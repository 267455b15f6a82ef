package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder groups the service's Prometheus collectors.
//
// Each Recorder owns its registry so that several app instances (tests) can
// coexist without duplicate registration panics.
type Recorder struct {
	registry        *prometheus.Registry
	upstreamLatency *prometheus.HistogramVec
	upstreamResults *prometheus.CounterVec
	calculations    *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		upstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockreturn_upstream_duration_seconds",
				Help:    "Duration of market data provider calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		upstreamResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockreturn_upstream_requests_total",
				Help: "Market data provider calls by outcome",
			},
			[]string{"provider", "outcome"},
		),
		calculations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockreturn_calculations_total",
				Help: "Investment return calculations by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveUpstream records one provider call.
// outcome is one of "ok", "no_data", "unavailable".
func (r *Recorder) ObserveUpstream(provider, outcome string, elapsed time.Duration) {
	r.upstreamLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
	r.upstreamResults.WithLabelValues(provider, outcome).Inc()
}

// CountCalculation records the outcome of one calculate request.
func (r *Recorder) CountCalculation(outcome string) {
	r.calculations.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
