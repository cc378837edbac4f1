// Package metrics exposes Prometheus instrumentation for the portal API.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors used by the server.
type Metrics struct {
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	PredictionsTotal      *prometheus.CounterVec
	ReportsGeneratedTotal *prometheus.CounterVec
	PanicsTotal           prometheus.Counter
}

// New registers and returns the portal's metric collectors.
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		PredictionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_predictions_total",
			Help: "Total prediction requests by outcome.",
		}, []string{"outcome"}),
		ReportsGeneratedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_reports_generated_total",
			Help: "Total diagnostic reports generated by analysis source.",
		}, []string{"source"}),
		PanicsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "portal_panics_recovered_total",
			Help: "Total handler panics recovered by the middleware.",
		}),
	}
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			m.HTTPRequestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler returns the /metrics scrape endpoint handler.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
