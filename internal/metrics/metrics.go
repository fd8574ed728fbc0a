// Package metrics holds the prometheus collectors shared by the HTTP surfaces
// and the inference client.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors registered by the service.
type Metrics struct {
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	inference *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "costadvisor",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests served.",
		}, []string{"handler", "method", "path", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "costadvisor",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler", "method", "path", "status"}),
		inference: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "costadvisor",
			Subsystem: "inference",
			Name:      "calls_total",
			Help:      "Calls to the inference service by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.durations, m.inference)
	}
	return m
}

// ObserveInference counts one inference call.
func (m *Metrics) ObserveInference(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.inference.WithLabelValues(endpoint, outcome).Inc()
}

// Middleware records request count and latency labelled with the chi route pattern.
func (m *Metrics) Middleware(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(sw, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}
			labels := prometheus.Labels{
				"handler": name,
				"method":  r.Method,
				"path":    path,
				"status":  strconv.Itoa(sw.code),
			}
			m.requests.With(labels).Inc()
			m.durations.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(p)
}
