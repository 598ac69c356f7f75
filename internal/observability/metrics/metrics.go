// Package metrics exposes the HTTP-level Prometheus instruments. The
// dialogue pipeline registers its own domain metrics; this package only
// covers the transport surface.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics exposes counters/histograms for the webhook transport.
type HTTPMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	inFlight       prometheus.Gauge
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chatpi",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"route", "method", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chatpi",
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "Latency of HTTP request handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chatpi",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being handled",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.inFlight)
	return m
}

func (m *HTTPMetrics) ObserveRequest(route, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(route).Observe(seconds)
}

func (m *HTTPMetrics) RequestStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *HTTPMetrics) RequestFinished() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}
