package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
)

type Metrics struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	opLatency   *prometheus.HistogramVec
	events      *prometheus.CounterVec
	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
}

// New crea las métricas sobre un registro propio.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docuprex_operations_total",
			Help: "Approval operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docuprex_operation_duration_seconds",
			Help:    "Approval operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docuprex_notification_events_total",
			Help: "Notification events handed to delivery by type and status.",
		}, []string{"type", "status"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docuprex_api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docuprex_api_request_duration_seconds",
			Help:    "API request latency by method/route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.operations,
		m.opLatency,
		m.events,
		m.apiRequests,
		m.apiLatency,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveOperation implementa ports.OperationObserver.
func (m *Metrics) ObserveOperation(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, outcome).Inc()
	m.opLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveEvent implementa ports.OperationObserver.
func (m *Metrics) ObserveEvent(eventType domain.EventType, err error) {
	if m == nil {
		return
	}
	status := "delivered"
	if err != nil {
		status = "failed"
	}
	m.events.WithLabelValues(string(eventType), status).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler expone el registro en formato de texto de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ ports.OperationObserver = (*Metrics)(nil)
