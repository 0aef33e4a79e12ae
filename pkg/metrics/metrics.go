package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nna-wms/wmsconsole/pkg/httputil"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "wms_console"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the console collectors.
type Metrics struct {
	registry *prometheus.Registry

	storeActions  *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	notifications *prometheus.CounterVec
	menuRoutes    prometheus.Histogram
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		storeActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "actions_total",
				Help:      "Total number of store actions.",
			},
			[]string{"store", "action", "result"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "action_duration_seconds",
				Help:      "Duration of store actions including the API round trip.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"store", "action"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "route"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Total number of user notifications.",
			},
			[]string{"kind"},
		),
		menuRoutes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "menu",
				Name:      "routes",
				Help:      "Number of routes produced per menu build.",
				Buckets:   prometheus.LinearBuckets(0, 10, 10),
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.storeActions,
		m.storeDuration,
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
		m.notifications,
		m.menuRoutes,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAction records one store action. It implements crud.Observer.
func (m *Metrics) ObserveAction(store, action string, success bool, elapsed time.Duration) {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}
	m.storeActions.WithLabelValues(store, action, result).Inc()
	m.storeDuration.WithLabelValues(store, action).Observe(elapsed.Seconds())
}

// ObserveRoutes records the size of a built route table.
func (m *Metrics) ObserveRoutes(n int) {
	m.menuRoutes.Observe(float64(n))
}

// NotifySuccess counts a success notification. Together with NotifyError it
// implements crud.Notifier so Metrics can sit in a notify.Multi.
func (m *Metrics) NotifySuccess(string) {
	m.notifications.WithLabelValues("success").Inc()
}

// NotifyError counts an error notification.
func (m *Metrics) NotifyError(string) {
	m.notifications.WithLabelValues("error").Inc()
}

// Middleware records request count, latency and in-flight requests.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		wrapped := httputil.NewStatusRecorder(w)
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.Status())).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
