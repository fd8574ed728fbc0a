package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/costadvisor/internal/domain/project"
)

// DefaultVendorReliability seeds the what-if form.
const DefaultVendorReliability = 5

// Service handles prediction records and what-if analysis.
type Service struct {
	repo     Repository
	projects ProjectReader
	logger   *slog.Logger
}

// NewService creates a new prediction service.
func NewService(repo Repository, projects ProjectReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, projects: projects, logger: logger}
}

// WhatIfParams is the what-if form. A nil HistoricalDelays is derived from
// the project's historical data.
type WhatIfParams struct {
	MaterialCost      float64  `json:"material_cost"`
	LaborCost         float64  `json:"labor_cost"`
	VendorReliability float64  `json:"vendor_reliability"`
	HistoricalDelays  *float64 `json:"historical_delays,omitempty"`
}

// WhatIfResult pairs the stored prediction with the estimate behind it.
type WhatIfResult struct {
	Prediction *Prediction `json:"prediction"`
	Estimate   Estimate    `json:"estimate"`
}

// Defaults returns the initial what-if form values for a project.
func Defaults(proj *project.Project) WhatIfParams {
	delays := HistoricalDelays(proj)
	return WhatIfParams{
		MaterialCost:      proj.BackendInput.MaterialCost,
		LaborCost:         proj.BackendInput.LaborCost,
		VendorReliability: DefaultVendorReliability,
		HistoricalDelays:  &delays,
	}
}

// HistoricalDelays is the number of delayed projects in the uploaded history,
// or zero without history.
func HistoricalDelays(proj *project.Project) float64 {
	if proj.HistoricalDelayFrequency == nil || proj.HistoricalProjectCount == nil {
		return 0
	}
	return math.Round(*proj.HistoricalDelayFrequency * float64(*proj.HistoricalProjectCount))
}

// WhatIf runs the local estimator for a project and stores the result as a
// new prediction.
func (s *Service) WhatIf(ctx context.Context, userID, projectID string, params WhatIfParams) (*WhatIfResult, error) {
	proj, err := s.projects.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	delays := HistoricalDelays(proj)
	if params.HistoricalDelays != nil {
		delays = *params.HistoricalDelays
	}

	estimate, err := EstimateWhatIf(WhatIfInput{
		MaterialCost:      params.MaterialCost,
		LaborCost:         params.LaborCost,
		VendorReliability: params.VendorReliability,
		HistoricalDelays:  delays,
		Terrain:           proj.Terrain,
	})
	if err != nil {
		return nil, err
	}

	breakdown, err := json.Marshal(estimate.Factors)
	if err != nil {
		return nil, fmt.Errorf("encoding factor breakdown: %w", err)
	}

	pred := &Prediction{
		ID:                uuid.NewString(),
		UserID:            userID,
		ProjectID:         proj.ID,
		PredictedCost:     estimate.PredictedCost,
		PredictedTimeline: estimate.PredictedTimeline,
		RiskProbability:   estimate.DelayRisk,
		FactorBreakdown:   string(breakdown),
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, pred); err != nil {
		return nil, fmt.Errorf("creating prediction: %w", err)
	}

	s.logger.Info("what-if prediction stored", "prediction_id", pred.ID, "project_id", proj.ID)
	return &WhatIfResult{Prediction: pred, Estimate: estimate}, nil
}

// ListForProject returns a project's predictions, newest first.
func (s *Service) ListForProject(ctx context.Context, userID, projectID string) ([]Prediction, error) {
	proj, err := s.projects.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	return s.ListByProject(ctx, proj)
}

// ListByProject returns the predictions of a project the caller has already
// loaded through the ownership check, newest first.
func (s *Service) ListByProject(ctx context.Context, proj *project.Project) ([]Prediction, error) {
	preds, err := s.repo.List(ctx, ListOptions{UserID: proj.UserID, ProjectID: proj.ID})
	if err != nil {
		return nil, fmt.Errorf("listing predictions: %w", err)
	}
	return preds, nil
}

// ListForUser returns all of a user's predictions, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Prediction, error) {
	preds, err := s.repo.List(ctx, ListOptions{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("listing predictions: %w", err)
	}
	return preds, nil
}
