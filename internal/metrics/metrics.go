// Package metrics exposes Prometheus collectors for inbound routes and upstream Spotify calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spotwidget"

// Recorder captures request and upstream metrics.
type Recorder interface {
	ObserveRequest(route, method string, status int, elapsed time.Duration)
	ObserveUpstream(endpoint, outcome string, elapsed time.Duration)
}

// Prom implements Recorder on its own registry so that several instances can coexist in tests.
type Prom struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	upstream         *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

// NewProm creates collectors and registers them, along with the Go and process collectors.
func NewProm() *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route/method/status",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route/method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Spotify API requests by endpoint/outcome",
		}, []string{"endpoint", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Spotify API latency by endpoint",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	p.registry.MustRegister(
		p.requests, p.latency, p.upstream, p.upstreamDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

// Registry returns the registry backing p.
func (p *Prom) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prom) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	p.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	p.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (p *Prom) ObserveUpstream(endpoint, outcome string, elapsed time.Duration) {
	p.upstream.WithLabelValues(endpoint, outcome).Inc()
	p.upstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler for /metrics.
func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
