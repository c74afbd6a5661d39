// Package metrics exposes Prometheus instruments for the pricing service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jafarshop/configurator/internal/domain"
)

const namespace = "configurator"

// Metrics holds the service's instruments on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	confirmationsTotal   *prometheus.CounterVec
	pollAttempts         prometheus.Histogram
	confirmationDuration prometheus.Histogram
	quotesTotal          *prometheus.CounterVec
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
}

// New creates the instruments and registers them
func New() *Metrics {
	// Own registry to avoid conflicts with default metrics
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		confirmationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_confirmations_total",
				Help:      "Price confirmations by terminal state.",
			},
			[]string{"state"},
		),
		pollAttempts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "price_confirmation_poll_attempts",
				Help:      "Variant price reads per confirmation.",
				Buckets:   []float64{1, 2, 3, 5, 8, 10, 15, 20},
			},
		),
		confirmationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "price_confirmation_duration_seconds",
				Help:      "Wall time from variant creation to confirmation outcome.",
				Buckets:   []float64{1, 2, 5, 10, 20, 30, 45, 60},
			},
		),
		quotesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quotes_total",
				Help:      "Price quotes by kind and completeness.",
			},
			[]string{"kind", "complete"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(
		m.confirmationsTotal,
		m.pollAttempts,
		m.confirmationDuration,
		m.quotesTotal,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveConfirmation(state domain.ConfirmationState, attempts int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.confirmationsTotal.WithLabelValues(string(state)).Inc()
	m.pollAttempts.Observe(float64(attempts))
	m.confirmationDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveQuote(kind string, complete bool) {
	if m == nil {
		return
	}
	m.quotesTotal.WithLabelValues(kind, strconv.FormatBool(complete)).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
