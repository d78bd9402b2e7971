// Package metrics holds the Prometheus collectors of the dashboard backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stock-dashboard-backend/internal/model"
)

// Metrics groups all collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	PredictionsTotal  *prometheus.CounterVec // labels: trend, fallback
	IndicatorDuration prometheus.Histogram
	QuoteRefreshes    prometheus.Counter
	WSClients         prometheus.Gauge
	WSDropped         prometheus.Counter
	HTTPRequests      *prometheus.CounterVec // labels: method, route, status
	HTTPDuration      *prometheus.HistogramVec
	TasksTotal        *prometheus.CounterVec // labels: status
}

// New registers and returns all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_predictions_total",
			Help: "Predictions generated, by trend and fallback flag",
		}, []string{"trend", "fallback"}),
		IndicatorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_indicator_compute_seconds",
			Help:    "Time spent computing an indicator overlay set",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
		QuoteRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_quote_refreshes_total",
			Help: "Quote board refresh ticks",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_ws_clients",
			Help: "Connected websocket clients",
		}),
		WSDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_ws_dropped_total",
			Help: "Websocket clients dropped for falling behind",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		TasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_predict_tasks_total",
			Help: "Finished batch prediction tasks by final status",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.PredictionsTotal,
		m.IndicatorDuration,
		m.QuoteRefreshes,
		m.WSClients,
		m.WSDropped,
		m.HTTPRequests,
		m.HTTPDuration,
		m.TasksTotal,
	)
	return m
}

// ObservePrediction counts p.
func (m *Metrics) ObservePrediction(p model.Prediction) {
	m.PredictionsTotal.WithLabelValues(string(p.Trend), strconv.FormatBool(p.Fallback)).Inc()
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler exposes the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
