package project

import (
	"testing"

	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/stretchr/testify/require"
)

func TestValidateSubmit(t *testing.T) {
	base := SubmitRequest{
		CompanyName: "Acme",
		ProjectName: "Tower",
		Params: inference.ProjectParams{
			ProjectType:       "Construction",
			Region:            "Mumbai",
			EstimatedBudget:   "500000",
			EstimatedDuration: "6",
		},
	}

	terrain, err := ValidateSubmit(base)
	require.NoError(t, err)
	require.Equal(t, TerrainFlat, terrain)

	tests := []struct {
		name   string
		mutate func(*SubmitRequest)
	}{
		{"missing company", func(r *SubmitRequest) { r.CompanyName = " " }},
		{"missing project name", func(r *SubmitRequest) { r.ProjectName = "" }},
		{"unknown type", func(r *SubmitRequest) { r.Params.ProjectType = "Farming" }},
		{"unknown region", func(r *SubmitRequest) { r.Params.Region = "Paris" }},
		{"unknown category", func(r *SubmitRequest) { r.Params.Category = "Maritime" }},
		{"zero budget", func(r *SubmitRequest) { r.Params.EstimatedBudget = "0" }},
		{"non-numeric duration", func(r *SubmitRequest) { r.Params.EstimatedDuration = "soon" }},
		{"history without file", func(r *SubmitRequest) { r.HasHistoricalData = true }},
		{"unknown terrain", func(r *SubmitRequest) { r.Terrain = "swamp" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := ValidateSubmit(req)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestResolveTerrain(t *testing.T) {
	terrain, err := resolveTerrain(TypeSoftware, "urban")
	require.NoError(t, err)
	require.Equal(t, TerrainNotApplicable, terrain)

	terrain, err = resolveTerrain(TypeInfrastructure, "Urban")
	require.NoError(t, err)
	require.Equal(t, TerrainUrban, terrain)

	terrain, err = resolveTerrain(TypeConstruction, "na_software")
	require.NoError(t, err)
	require.Equal(t, TerrainFlat, terrain)
}
