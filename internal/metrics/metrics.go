// Package metrics holds the Prometheus collectors of the service. Every method is safe on a nil *Metrics so
// components built without metrics (tests, one-off commands) need no special casing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fuelstation"

type Metrics struct {
	gatherer prometheus.Gatherer

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	TransactionsPosted  *prometheus.CounterVec
	LitresDispensed     *prometheus.CounterVec
	InventoryAlerts     *prometheus.CounterVec
	Notifications       *prometheus.CounterVec
	RateLimited         *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests to keep suites independent.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		TransactionsPosted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_posted_total",
			Help:      "Sales committed, by fuel type and payment method.",
		}, []string{"fuel_type", "payment_method"}),
		LitresDispensed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "litres_dispensed_total",
			Help:      "Litres sold, by fuel type.",
		}, []string{"fuel_type"}),
		InventoryAlerts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_alerts_total",
			Help:      "Inventory alerts opened and resolved by the threshold engine.",
		}, []string{"action"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by outcome.",
		}, []string{"outcome"}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter, by route.",
		}, []string{"route"}),
	}
}

func (m *Metrics) TransactionPosted(fuelType, paymentMethod string, litres float64) {
	if m == nil {
		return
	}
	m.TransactionsPosted.WithLabelValues(fuelType, paymentMethod).Inc()
	m.LitresDispensed.WithLabelValues(fuelType).Add(litres)
}

func (m *Metrics) AlertOpened() {
	if m == nil {
		return
	}
	m.InventoryAlerts.WithLabelValues("opened").Inc()
}

func (m *Metrics) AlertResolved() {
	if m == nil {
		return
	}
	m.InventoryAlerts.WithLabelValues("resolved").Inc()
}

func (m *Metrics) Notification(outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Limited(route string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(route).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency. Routes are labelled by their chi pattern, not the raw path,
// so ids do not explode the label space.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		route := routePattern(r)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(wrapped.statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
