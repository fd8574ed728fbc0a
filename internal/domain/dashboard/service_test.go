package dashboard_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rpggio/costadvisor/internal/domain/dashboard"
	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/stretchr/testify/require"
)

type stubProjects struct {
	projects []project.Project
	err      error
}

func (s stubProjects) List(context.Context, string) ([]project.Project, error) {
	return s.projects, s.err
}

type stubPredictions []prediction.Prediction

func (s stubPredictions) ListForUser(context.Context, string) ([]prediction.Prediction, error) {
	return s, nil
}

func TestSummary(t *testing.T) {
	var projects []project.Project
	for i := 0; i < 7; i++ {
		projects = append(projects, project.Project{ID: fmt.Sprintf("p%d", i)})
	}
	preds := stubPredictions{
		{RiskProbability: 0.95},
		{RiskProbability: 0.7},
		{RiskProbability: 0.71},
		{RiskProbability: 0.1},
	}

	svc := dashboard.NewService(stubProjects{projects: projects}, preds)
	summary, err := svc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 7, summary.TotalProjects)
	require.Len(t, summary.RecentProjects, 5)
	require.Equal(t, "p0", summary.RecentProjects[0].ID)
	require.Equal(t, 2, summary.HighRiskCount)
}

func TestSummary_ProjectError(t *testing.T) {
	svc := dashboard.NewService(stubProjects{err: errors.New("boom")}, stubPredictions{})
	_, err := svc.Summary(context.Background(), "u1")
	require.Error(t, err)
}
