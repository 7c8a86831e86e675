package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_http_requests_total",
			Help: "Total number of HTTP requests by endpoint, method, and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habits_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	storeOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_store_operations_total",
			Help: "Total habit store operations by operation and result",
		},
		[]string{"op", "result"},
	)

	sessionChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_session_checks_total",
			Help: "Total session checks by result",
		},
		[]string{"result"},
	)

	activeHabits = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "habits_active_habits",
			Help: "Number of live habits per profile",
		},
		[]string{"profile"},
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

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		// route patterns keep habit ids out of the label set
		endpoint := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			endpoint = rc.RoutePattern()
		}
		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(endpoint, r.Method, statusCode).Inc()
		httpRequestDuration.WithLabelValues(endpoint, r.Method, statusCode).Observe(duration)
	})
}

func RecordStoreOperation(op, result string) {
	storeOperationsTotal.WithLabelValues(op, result).Inc()
}

func RecordSessionCheck(result string) {
	sessionChecksTotal.WithLabelValues(result).Inc()
}

func UpdateActiveHabits(profile string, count int) {
	activeHabits.WithLabelValues(profile).Set(float64(count))
}
