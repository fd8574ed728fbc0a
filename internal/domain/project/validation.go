package project

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/rpggio/costadvisor/internal/inference"
)

// SubmitRequest is the project submission form.
type SubmitRequest struct {
	CompanyName       string
	ProjectName       string
	Terrain           string
	ScopeDescription  string
	RiskFactors       string
	HasHistoricalData bool
	// History is the optional uploaded historical data file.
	History io.Reader

	Params inference.ProjectParams
}

// ValidateSubmit checks the form before any external call and returns the
// terrain to store.
func ValidateSubmit(req SubmitRequest) (Terrain, error) {
	if strings.TrimSpace(req.CompanyName) == "" {
		return "", fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.ProjectName) == "" {
		return "", fmt.Errorf("%w: project name is required", ErrInvalidInput)
	}

	projectType := ProjectType(strings.TrimSpace(req.Params.ProjectType))
	if !slices.Contains(ProjectTypes, projectType) {
		return "", fmt.Errorf("%w: unknown project type %q", ErrInvalidInput, req.Params.ProjectType)
	}
	if !slices.Contains(Regions, strings.TrimSpace(req.Params.Region)) {
		return "", fmt.Errorf("%w: unknown location %q", ErrInvalidInput, req.Params.Region)
	}
	if category := strings.TrimSpace(req.Params.Category); category != "" && !slices.Contains(Categories, category) {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}

	budget, ok := inference.ParseNumber(req.Params.EstimatedBudget)
	if !ok || budget <= 0 {
		return "", fmt.Errorf("%w: estimated budget must be a positive number", ErrInvalidInput)
	}
	duration, ok := inference.ParseNumber(req.Params.EstimatedDuration)
	if !ok || math.Trunc(duration) < 1 {
		return "", fmt.Errorf("%w: estimated duration must be at least one month", ErrInvalidInput)
	}

	if req.HasHistoricalData && req.History == nil {
		return "", fmt.Errorf("%w: historical data file is required", ErrInvalidInput)
	}

	return resolveTerrain(projectType, req.Terrain)
}

func resolveTerrain(projectType ProjectType, raw string) (Terrain, error) {
	if projectType == TypeSoftware {
		return TerrainNotApplicable, nil
	}
	terrain := Terrain(strings.ToLower(strings.TrimSpace(raw)))
	if terrain == "" || terrain == TerrainNotApplicable {
		return TerrainFlat, nil
	}
	if !slices.Contains(Terrains, terrain) {
		return "", fmt.Errorf("%w: unknown terrain %q", ErrInvalidInput, raw)
	}
	return terrain, nil
}
