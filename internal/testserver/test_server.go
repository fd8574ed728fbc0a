// Package testserver runs the full HTTP stack over an in-memory store and a
// fake inference service.
package testserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/costadvisor/internal/app"
	"github.com/rpggio/costadvisor/internal/config"
	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/rpggio/costadvisor/internal/sqlite"
)

type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	App       *app.App
	Inference *FakeInference
	Config    config.Config
}

// New starts a server. mutate may adjust the configuration before wiring.
func New(t *testing.T, mutate func(*config.Config)) *TestServer {
	t.Helper()

	fake := NewFakeInference(t)

	cfg := config.Default()
	cfg.DB.Path = ":memory:"
	cfg.Inference.BaseURL = fake.URL()
	cfg.Session.TTL = time.Hour
	if mutate != nil {
		mutate(&cfg)
	}

	db, err := app.Open(cfg)
	require.NoError(t, err)

	a := app.New(cfg, db, nil)
	handler, err := a.Handler(context.Background())
	require.NoError(t, err)
	server := httptest.NewServer(handler)

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &TestServer{Server: server, DB: db, App: a, Inference: fake, Config: cfg}
}

// Client returns an HTTP client with a cookie jar that does not follow
// redirects.
func (ts *TestServer) Client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// FakeInference serves the predict, scenarios and health endpoints.
type FakeInference struct {
	server *httptest.Server

	mu       sync.Mutex
	down     bool
	payloads []inference.Payload
	result   inference.PredictResult
}

// NewFakeInference starts a fake that predicts a 15% contingency.
func NewFakeInference(t *testing.T) *FakeInference {
	t.Helper()
	f := &FakeInference{
		result: inference.PredictResult{
			Success: true,
			Prediction: inference.Prediction{
				PredictedCost:      1150000,
				BaseCost:           1000000,
				RiskAdjustment:     150000,
				ContingencyPercent: 15,
				HighRiskAreas:      []string{"material costs"},
			},
			Recommendations: []string{"Maintain 15% contingency budget"},
		},
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *FakeInference) URL() string {
	return f.server.URL
}

// SetDown makes every endpoint fail with 503.
func (f *FakeInference) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// Payloads returns the predict payloads received so far.
func (f *FakeInference) Payloads() []inference.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]inference.Payload(nil), f.payloads...)
}

func (f *FakeInference) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	down := f.down
	result := f.result
	f.mu.Unlock()

	if down {
		http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/inference/predict/":
		var payload inference.Payload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.payloads = append(f.payloads, payload)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(result)
	case "/api/inference/scenarios/":
		_, _ = w.Write([]byte(`{"success":true,"scenario_analysis":{"baseline_cost":1150000,"scenarios":[{"name":"Material +10%","cost":1250000}]}}`))
	case "/api/inference/health/":
		_, _ = w.Write([]byte(`{"status":"healthy","service":"fake","loaded_companies":[]}`))
	default:
		http.NotFound(w, r)
	}
}
