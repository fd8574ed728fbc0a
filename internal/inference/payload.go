package inference

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Fallback fractions of the estimated budget for missing cost-breakdown fields.
const (
	LaborFraction     = 0.30
	MaterialFraction  = 0.40
	EquipmentFraction = 0.20
	OverheadFraction  = 0.10

	// ProjectSizeDivisor derives project size from the estimated budget.
	ProjectSizeDivisor = 100000
)

// ProjectParams is the raw project-parameter form input. Every numeric
// field is kept as submitted so that parsing stays permissive.
type ProjectParams struct {
	ProjectType       string
	Category          string
	Region            string
	EstimatedBudget   string
	EstimatedDuration string

	ProjectSize     string
	LaborCost       string
	MaterialCost    string
	EquipmentCost   string
	OverheadCost    string
	Year            string
	InflationRate   string
	Delays          string
	ReworkPercent   string
	SafetyIncidents string
}

// Payload is the fixed request schema of the predict and scenarios endpoints.
type Payload struct {
	ProjectType     string  `json:"project_type"`
	Category        string  `json:"category"`
	ProjectSize     float64 `json:"project_size"`
	ProjectDuration float64 `json:"project_duration"`
	LaborCost       float64 `json:"labor_cost"`
	MaterialCost    float64 `json:"material_cost"`
	EquipmentCost   float64 `json:"equipment_cost"`
	OverheadCost    float64 `json:"overhead_cost"`
	Region          string  `json:"region"`
	Year            int     `json:"year"`
	InflationRate   float64 `json:"inflation_rate"`
	Delays          float64 `json:"delays"`
	ReworkPercent   float64 `json:"rework_percent"`
	SafetyIncidents int     `json:"safety_incidents"`
}

// Normalize builds the inference payload from raw form input.
//
// A cost-breakdown field that is absent, non-numeric or zero is derived from
// the estimated budget using the fixed fractions; a missing project size is
// budget / 100000. No field ever fails normalization.
func Normalize(p ProjectParams) Payload {
	return normalize(p, time.Now())
}

func normalize(p ProjectParams, now time.Time) Payload {
	budget := numberOr(p.EstimatedBudget, 0)

	year := now.Year()
	if v, ok := ParseNumber(p.Year); ok {
		year = int(math.Trunc(v))
	}

	return Payload{
		ProjectType:     strings.TrimSpace(p.ProjectType),
		Category:        strings.TrimSpace(p.Category),
		ProjectSize:     numberOr(p.ProjectSize, budget/ProjectSizeDivisor),
		ProjectDuration: numberOr(p.EstimatedDuration, 0),
		LaborCost:       numberOr(p.LaborCost, budget*LaborFraction),
		MaterialCost:    numberOr(p.MaterialCost, budget*MaterialFraction),
		EquipmentCost:   numberOr(p.EquipmentCost, budget*EquipmentFraction),
		OverheadCost:    numberOr(p.OverheadCost, budget*OverheadFraction),
		Region:          strings.TrimSpace(p.Region),
		Year:            year,
		InflationRate:   numberOr(p.InflationRate, 0),
		Delays:          numberOr(p.Delays, 0),
		ReworkPercent:   numberOr(p.ReworkPercent, 0),
		SafetyIncidents: int(math.Trunc(numberOr(p.SafetyIncidents, 0))),
	}
}

// ParseNumber parses a form value permissively. Blank, non-numeric and
// non-finite input reports ok=false.
func ParseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// numberOr mirrors a falsy fallback: zero counts as absent.
func numberOr(raw string, fallback float64) float64 {
	if v, ok := ParseNumber(raw); ok && v != 0 {
		return v
	}
	return fallback
}
