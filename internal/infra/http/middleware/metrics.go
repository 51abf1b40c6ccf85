package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	webhookLeads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_leads_total",
			Help: "Total number of leads ingested from the Qhare webhook",
		},
		[]string{"result"}, // ok, error
	)

	qharePushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qhare_pushes_total",
			Help: "Total number of outbound Qhare updates",
		},
		[]string{"origin", "status"},
	)

	appointmentConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "appointment_conflicts_total",
			Help: "Total number of bookings rejected by the same-day rule",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordWebhookLead(result string) {
	webhookLeads.WithLabelValues(result).Inc()
}

func RecordQharePush(origin, status string) {
	qharePushes.WithLabelValues(origin, status).Inc()
}

func RecordAppointmentConflict() {
	appointmentConflicts.Inc()
}
