package project

import (
	"context"
	"encoding/json"

	"github.com/rpggio/costadvisor/internal/inference"
)

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, opts ListOptions) ([]Project, error)
}

// Predictor calls the inference service.
type Predictor interface {
	Predict(ctx context.Context, payload inference.Payload) (*inference.PredictResult, error)
	Scenarios(ctx context.Context, payload inference.Payload) (json.RawMessage, error)
}
