package project

import (
	"encoding/json"
	"time"

	"github.com/rpggio/costadvisor/internal/inference"
)

// ProjectType enumerates the supported kinds of project.
type ProjectType string

const (
	TypeConstruction   ProjectType = "Construction"
	TypeSoftware       ProjectType = "Software"
	TypeInfrastructure ProjectType = "Infrastructure"
	TypeIT             ProjectType = "IT"
	TypeEngineering    ProjectType = "Engineering"
)

// Terrain is the site terrain of a project.
type Terrain string

const (
	TerrainFlat        Terrain = "flat"
	TerrainHilly       Terrain = "hilly"
	TerrainMountainous Terrain = "mountainous"
	TerrainUrban       Terrain = "urban"
	// TerrainNotApplicable is forced for software projects.
	TerrainNotApplicable Terrain = "na_software"
)

var (
	ProjectTypes = []ProjectType{TypeConstruction, TypeSoftware, TypeInfrastructure, TypeIT, TypeEngineering}
	Terrains     = []Terrain{TerrainFlat, TerrainHilly, TerrainMountainous, TerrainUrban}
	Regions      = []string{"Delhi", "Mumbai", "Bangalore", "Chennai", "Kolkata", "Hyderabad"}
	Categories   = []string{"Residential", "Commercial", "Industrial", "Web", "Mobile", "Road", "Bridge"}
)

// AIPrediction is the stored summary of the inference service prediction.
type AIPrediction struct {
	PredictedCost      float64  `json:"predicted_cost"`
	BaseCost           float64  `json:"base_cost"`
	RiskAdjustment     float64  `json:"risk_adjustment"`
	ContingencyPercent float64  `json:"contingency_percent"`
	HighRiskAreas      []string `json:"high_risk_areas"`
	Recommendations    []string `json:"recommendations"`
}

// Project is a submitted project with its AI analysis. It is never mutated
// after creation.
type Project struct {
	ID                string      `json:"id"`
	UserID            string      `json:"user_id"`
	CompanyName       string      `json:"company_name"`
	ProjectName       string      `json:"project_name"`
	ProjectType       ProjectType `json:"project_type"`
	Location          string      `json:"location"`
	Terrain           Terrain     `json:"terrain"`
	Category          string      `json:"category,omitempty"`
	EstimatedBudget   float64     `json:"estimated_budget"`
	EstimatedDuration int         `json:"estimated_duration"`
	ScopeDescription  string      `json:"scope_description,omitempty"`
	RiskFactors       string      `json:"risk_factors,omitempty"`
	HasHistoricalData bool        `json:"has_historical_data"`
	RiskScore         float64     `json:"risk_score"`

	AIPrediction     AIPrediction    `json:"ai_prediction"`
	ScenarioAnalysis json.RawMessage `json:"scenario_analysis,omitempty"`

	HistoricalProjectCount   *int     `json:"historical_project_count"`
	HistoricalAvgDuration    *float64 `json:"historical_avg_duration"`
	HistoricalAvgCost        *float64 `json:"historical_avg_cost"`
	HistoricalDelayFrequency *float64 `json:"historical_delay_frequency"`

	// BackendInput is the exact payload sent to the inference service.
	BackendInput inference.Payload `json:"backend_input"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ListOptions narrows a project listing. Results are newest first.
type ListOptions struct {
	UserID string
	Limit  int
}
