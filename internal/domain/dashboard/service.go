// Package dashboard summarizes a user's projects and predictions.
package dashboard

import (
	"context"
	"fmt"

	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
)

const (
	// HighRiskThreshold is the risk probability above which a prediction counts as high risk.
	HighRiskThreshold = 0.7
	recentLimit       = 5
)

// ProjectLister lists a user's projects newest first.
type ProjectLister interface {
	List(ctx context.Context, userID string) ([]project.Project, error)
}

// PredictionLister lists a user's predictions.
type PredictionLister interface {
	ListForUser(ctx context.Context, userID string) ([]prediction.Prediction, error)
}

// Summary is the dashboard view model.
type Summary struct {
	TotalProjects  int               `json:"total_projects"`
	RecentProjects []project.Project `json:"recent_projects"`
	HighRiskCount  int               `json:"high_risk_predictions"`
}

// Service builds dashboard summaries.
type Service struct {
	projects    ProjectLister
	predictions PredictionLister
}

// NewService creates a new dashboard service.
func NewService(projects ProjectLister, predictions PredictionLister) *Service {
	return &Service{projects: projects, predictions: predictions}
}

// Summary returns the project count, the most recent projects and the number
// of high-risk predictions.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	projects, err := s.projects.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	preds, err := s.predictions.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading predictions: %w", err)
	}

	recent := projects
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	highRisk := 0
	for _, p := range preds {
		if p.RiskProbability > HighRiskThreshold {
			highRisk++
		}
	}

	return &Summary{
		TotalProjects:  len(projects),
		RecentProjects: recent,
		HighRiskCount:  highRisk,
	}, nil
}
