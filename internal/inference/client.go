// Package inference is the client for the external cost-prediction service.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rpggio/costadvisor/internal/metrics"
)

// DefaultBaseURL is the local address the inference service listens on.
const DefaultBaseURL = "http://localhost:8000"

const (
	predictPath   = "/api/inference/predict/"
	scenariosPath = "/api/inference/scenarios/"
	healthPath    = "/api/inference/health/"
)

// Client calls the predict and scenarios endpoints.
type Client struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithMetrics counts calls by endpoint and outcome.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client. A zero timeout leaves the transport default in place.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Predict requests a cost prediction for the payload.
func (c *Client) Predict(ctx context.Context, payload Payload) (*PredictResult, error) {
	var result PredictResult
	if err := c.post(ctx, "predict", predictPath, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Scenarios requests scenario analysis for the payload. The analysis is
// returned verbatim.
func (c *Client) Scenarios(ctx context.Context, payload Payload) (json.RawMessage, error) {
	var resp scenariosResponse
	if err := c.post(ctx, "scenarios", scenariosPath, payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.ScenarioAnalysis) == 0 {
		return json.RawMessage("null"), nil
	}
	return resp.ScenarioAnalysis, nil
}

// Health queries the inference service health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveInference("health", "unreachable")
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveInference("health", "error_status")
		return nil, fmt.Errorf("%w: health returned status %d", ErrBackendUnavailable, resp.StatusCode)
	}

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		c.metrics.ObserveInference("health", "bad_response")
		return nil, fmt.Errorf("%w: decoding health response: %v", ErrBackendUnavailable, err)
	}
	c.metrics.ObserveInference("health", "ok")
	return &status, nil
}

func (c *Client) post(ctx context.Context, endpoint, path string, payload Payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling inference service", "endpoint", endpoint, "payload", string(body))

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveInference(endpoint, "unreachable")
		c.logger.Warn("inference call failed", "endpoint", endpoint, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveInference(endpoint, "error_status")
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("inference service error", "endpoint", endpoint, "status", resp.StatusCode, "body", string(detail))
		return fmt.Errorf("%w: %s returned status %d", ErrBackendUnavailable, endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.ObserveInference(endpoint, "bad_response")
		c.logger.Warn("undecodable inference response", "endpoint", endpoint, "error", err)
		return fmt.Errorf("%w: decoding %s response: %v", ErrBackendUnavailable, endpoint, err)
	}

	c.metrics.ObserveInference(endpoint, "ok")
	return nil
}
