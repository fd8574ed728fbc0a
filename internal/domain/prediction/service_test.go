package prediction_test

import (
	"context"
	"testing"

	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/rpggio/costadvisor/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type projectReader struct {
	projects map[string]*project.Project
}

func (r projectReader) Get(_ context.Context, userID, id string) (*project.Project, error) {
	proj, ok := r.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	if proj.UserID != userID {
		return nil, project.ErrPermissionDenied
	}
	return proj, nil
}

func urbanProject() *project.Project {
	count := 4
	freq := 0.5
	return &project.Project{
		ID:                       "p1",
		UserID:                   "u1",
		Terrain:                  project.TerrainUrban,
		HistoricalProjectCount:   &count,
		HistoricalDelayFrequency: &freq,
		BackendInput:             inference.Payload{MaterialCost: 200000, LaborCost: 300000},
	}
}

func TestPredictionService_WhatIf(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.PredictionRepository{}
	var stored *prediction.Prediction
	repo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*prediction.Prediction)
	}).Return(nil)

	reader := projectReader{projects: map[string]*project.Project{"p1": urbanProject()}}
	svc := prediction.NewService(repo, reader, nil)

	zero := 0.0
	res, err := svc.WhatIf(ctx, "u1", "p1", prediction.WhatIfParams{
		MaterialCost:      200000,
		LaborCost:         300000,
		VendorReliability: 8,
		HistoricalDelays:  &zero,
	})
	require.NoError(t, err)
	require.Same(t, stored, res.Prediction)
	require.Equal(t, "p1", stored.ProjectID)
	require.Equal(t, "u1", stored.UserID)
	require.InDelta(t, 715000, stored.PredictedCost, 1e-6)
	require.InDelta(t, 0.05, stored.RiskProbability, 1e-9)

	factors, err := stored.Factors()
	require.NoError(t, err)
	require.Len(t, factors, 4)
}

func TestPredictionService_WhatIf_DerivesDelaysFromHistory(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.PredictionRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	reader := projectReader{projects: map[string]*project.Project{"p1": urbanProject()}}
	svc := prediction.NewService(repo, reader, nil)

	res, err := svc.WhatIf(ctx, "u1", "p1", prediction.WhatIfParams{VendorReliability: 10})
	require.NoError(t, err)
	// two delayed projects, no reliability penalty
	require.InDelta(t, 0.4, res.Estimate.DelayRisk, 1e-9)
}

func TestPredictionService_WhatIf_PermissionDenied(t *testing.T) {
	repo := &mocks.PredictionRepository{}
	reader := projectReader{projects: map[string]*project.Project{"p1": urbanProject()}}
	svc := prediction.NewService(repo, reader, nil)

	_, err := svc.WhatIf(context.Background(), "u2", "p1", prediction.WhatIfParams{VendorReliability: 5})
	require.ErrorIs(t, err, project.ErrPermissionDenied)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPredictionService_WhatIf_SoftwareTerrain(t *testing.T) {
	repo := &mocks.PredictionRepository{}
	proj := urbanProject()
	proj.Terrain = project.TerrainNotApplicable
	reader := projectReader{projects: map[string]*project.Project{"p1": proj}}
	svc := prediction.NewService(repo, reader, nil)

	_, err := svc.WhatIf(context.Background(), "u1", "p1", prediction.WhatIfParams{VendorReliability: 5})
	require.ErrorIs(t, err, prediction.ErrUnknownTerrain)
}

func TestPredictionService_ListForProject(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.PredictionRepository{}
	repo.On("List", ctx, prediction.ListOptions{UserID: "u1", ProjectID: "p1"}).
		Return([]prediction.Prediction{{ID: "b"}, {ID: "a"}}, nil)

	reader := projectReader{projects: map[string]*project.Project{"p1": urbanProject()}}
	svc := prediction.NewService(repo, reader, nil)

	preds, err := svc.ListForProject(ctx, "u1", "p1")
	require.NoError(t, err)
	require.Len(t, preds, 2)

	_, err = svc.ListForProject(ctx, "u2", "p1")
	require.ErrorIs(t, err, project.ErrPermissionDenied)
}

func TestPredictionService_ListByProject(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.PredictionRepository{}
	repo.On("List", ctx, prediction.ListOptions{UserID: "u1", ProjectID: "p1"}).
		Return([]prediction.Prediction{{ID: "a"}}, nil)

	// No project reader: the caller already holds the owned project.
	svc := prediction.NewService(repo, projectReader{}, nil)

	preds, err := svc.ListByProject(ctx, &project.Project{ID: "p1", UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, preds, 1)
	repo.AssertExpectations(t)
}

func TestPredictionService_ListForUser(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.PredictionRepository{}
	repo.On("List", ctx, prediction.ListOptions{UserID: "u1"}).
		Return([]prediction.Prediction{{ID: "c"}}, nil)

	svc := prediction.NewService(repo, projectReader{}, nil)

	preds, err := svc.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, preds, 1)
	repo.AssertExpectations(t)
}

func TestDefaults(t *testing.T) {
	params := prediction.Defaults(urbanProject())
	require.Equal(t, 200000.0, params.MaterialCost)
	require.Equal(t, 300000.0, params.LaborCost)
	require.Equal(t, float64(prediction.DefaultVendorReliability), params.VendorReliability)
	require.NotNil(t, params.HistoricalDelays)
	require.Equal(t, 2.0, *params.HistoricalDelays)

	require.Equal(t, 0.0, prediction.HistoricalDelays(&project.Project{}))
}
