package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultBuckets are the latency buckets, in seconds, for call durations.
var DefaultBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}

// RPC records JSON-RPC and document reload activity on its own registry.
type RPC struct {
	registry *prometheus.Registry

	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Reloads  *prometheus.CounterVec
	Loaded   prometheus.GaugeFunc
}

// NewRPC creates the server metrics. loaded is sampled on every scrape and
// reports whether a parsed document is cached.
func NewRPC(loaded func() bool) *RPC {
	m := &RPC{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specdocs_rpc_requests_total",
				Help: "Total number of JSON-RPC calls handled",
			},
			[]string{"method", "code"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specdocs_rpc_request_duration_seconds",
				Help:    "Duration of JSON-RPC calls in seconds",
				Buckets: DefaultBuckets,
			},
			[]string{"method"},
		),
		Reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specdocs_spec_reloads_total",
				Help: "Number of document reload attempts",
			},
			[]string{"result"},
		),
		Loaded: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "specdocs_spec_loaded",
				Help: "1 while a parsed document is cached",
			},
			func() float64 {
				if loaded != nil && loaded() {
					return 1
				}
				return 0
			},
		),
	}
	m.registry.MustRegister(
		m.Requests,
		m.Duration,
		m.Reloads,
		m.Loaded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding the server metrics.
func (m *RPC) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *RPC) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveCall records one handled call. code is 0 on success.
func (m *RPC) ObserveCall(method string, code int, elapsed time.Duration) {
	m.Requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.Duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveReload counts a reload attempt by result.
func (m *RPC) ObserveReload(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Reloads.WithLabelValues(result).Inc()
}
