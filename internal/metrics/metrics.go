// Package metrics provides Prometheus metrics for the golf trips API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "golf_trips"

// Metrics owns a private registry so tests never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	scorecardSaves     *prometheus.CounterVec
	scorecardRows      *prometheus.CounterVec
	scorecardConflicts prometheus.Counter

	clubhouseLogins *prometheus.CounterVec
}

// New registers every metric on a fresh registry, along with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		scorecardSaves: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scorecard",
			Name:      "saves_total",
			Help:      "Scorecard save attempts by outcome",
		}, []string{"outcome"}),
		scorecardRows: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scorecard",
			Name:      "rows_written_total",
			Help:      "Scorecard rows written by kind (insert or update)",
		}, []string{"kind"}),
		scorecardConflicts: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scorecard",
			Name:      "conflicting_holes_total",
			Help:      "Holes rejected because another session edited them first",
		}),
		clubhouseLogins: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clubhouse",
			Name:      "logins_total",
			Help:      "Clubhouse login attempts by result",
		}, []string{"result"}),
	}
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveSave records one scorecard save.
func (m *Metrics) ObserveSave(outcome string, inserted, updated, conflicts int) {
	m.scorecardSaves.WithLabelValues(outcome).Inc()
	m.scorecardRows.WithLabelValues("insert").Add(float64(inserted))
	m.scorecardRows.WithLabelValues("update").Add(float64(updated))
	m.scorecardConflicts.Add(float64(conflicts))
}

// ObserveLogin records a clubhouse login attempt ("ok", "denied", "limited").
func (m *Metrics) ObserveLogin(result string) {
	m.clubhouseLogins.WithLabelValues(result).Inc()
}

// Middleware counts and times every request. The matched route pattern is
// used as the label so slugs and ids don't explode cardinality.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler runs after us and sets the final status.
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Route().Path
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
