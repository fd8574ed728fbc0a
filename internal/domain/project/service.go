package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/costadvisor/internal/history"
	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/rpggio/costadvisor/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo      Repository
	predictor Predictor
	logger    *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, predictor Predictor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, predictor: predictor, logger: logger}
}

// SubmitResult is the outcome of a submission.
type SubmitResult struct {
	Project *Project
	// History carries every aggregate computed from the upload, including
	// those not stored on the project.
	History history.Summary
}

// Submit validates the form, runs the AI prediction and scenario analysis
// and stores the project. Nothing is stored if either inference call fails.
func (s *Service) Submit(ctx context.Context, userID string, req SubmitRequest) (*SubmitResult, error) {
	terrain, err := ValidateSubmit(req)
	if err != nil {
		return nil, err
	}

	payload := inference.Normalize(req.Params)

	var summary history.Summary
	if req.HasHistoricalData && req.History != nil {
		rows, err := history.Parse(req.History)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		summary = history.Summarize(rows)
	}

	prediction, err := s.predictor.Predict(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("predicting cost: %w", err)
	}
	scenarios, err := s.predictor.Scenarios(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("running scenario analysis: %w", err)
	}

	budget, _ := inference.ParseNumber(req.Params.EstimatedBudget)
	duration, _ := inference.ParseNumber(req.Params.EstimatedDuration)

	proj := &Project{
		ID:                uuid.NewString(),
		UserID:            userID,
		CompanyName:       strings.TrimSpace(req.CompanyName),
		ProjectName:       strings.TrimSpace(req.ProjectName),
		ProjectType:       ProjectType(payload.ProjectType),
		Location:          payload.Region,
		Terrain:           terrain,
		Category:          payload.Category,
		EstimatedBudget:   budget,
		EstimatedDuration: int(math.Trunc(duration)),
		ScopeDescription:  strings.TrimSpace(req.ScopeDescription),
		RiskFactors:       strings.TrimSpace(req.RiskFactors),
		HasHistoricalData: req.HasHistoricalData,
		RiskScore:         prediction.RiskScore(),
		AIPrediction: AIPrediction{
			PredictedCost:      prediction.Prediction.PredictedCost,
			BaseCost:           prediction.Prediction.BaseCost,
			RiskAdjustment:     prediction.Prediction.RiskAdjustment,
			ContingencyPercent: prediction.Prediction.ContingencyPercent,
			HighRiskAreas:      prediction.Prediction.HighRiskAreas,
			Recommendations:    prediction.Recommendations,
		},
		ScenarioAnalysis:         scenarios,
		HistoricalProjectCount:   summary.ProjectCount,
		HistoricalAvgDuration:    summary.AvgDuration,
		HistoricalAvgCost:        summary.AvgCost,
		HistoricalDelayFrequency: summary.DelayFrequency,
		BackendInput:             payload,
		CreatedAt:                time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project submitted", "project_id", proj.ID, "user_id", userID, "risk_score", proj.RiskScore)
	return &SubmitResult{Project: proj, History: summary}, nil
}

// Get fetches a project owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrProjectNotFound
	}

	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if proj.UserID != userID {
		s.logger.Warn("project owner mismatch", "project_id", id, "user_id", userID)
		return nil, ErrPermissionDenied
	}
	return proj, nil
}

// List returns the user's projects, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	projects, err := s.repo.List(ctx, ListOptions{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}
