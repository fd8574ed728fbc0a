package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware("api"))
	r.Get("/projects/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/abc", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	count := testutil.ToFloat64(m.requests.WithLabelValues("api", "GET", "/projects/{id}", "418"))
	require.Equal(t, 1.0, count)
}

func TestObserveInference_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveInference("predict", "ok")

	m = New(nil)
	m.ObserveInference("predict", "ok")
	m.ObserveInference("predict", "ok")
	require.Equal(t, 2.0, testutil.ToFloat64(m.inference.WithLabelValues("predict", "ok")))
}
