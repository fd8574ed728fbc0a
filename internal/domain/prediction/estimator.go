package prediction

import (
	"fmt"
	"math"

	"github.com/rpggio/costadvisor/internal/domain/project"
)

// Estimator constants.
const (
	MaxDelayRisk          = 0.95
	MaxVendorReliability  = 10.0
	reliabilityStep       = 0.05
	timelineDaysPerDollar = 0.0001
	projectComplexity     = 0.1
)

// Factor breakdown keys.
const (
	FactorTerrain           = "terrain"
	FactorVendorReliability = "vendorReliability"
	FactorHistoricalDelays  = "historicalDelays"
	FactorComplexity        = "projectComplexity"
)

var terrainMultipliers = map[project.Terrain]float64{
	project.TerrainFlat:        1.0,
	project.TerrainHilly:       1.2,
	project.TerrainMountainous: 1.5,
	project.TerrainUrban:       1.3,
}

// WhatIfInput holds everything the local estimator reads.
type WhatIfInput struct {
	MaterialCost      float64
	LaborCost         float64
	VendorReliability float64
	HistoricalDelays  float64
	Terrain           project.Terrain
}

// Estimate is the local what-if result.
type Estimate struct {
	ReliabilityFactor float64            `json:"reliability_factor"`
	TerrainFactor     float64            `json:"terrain_factor"`
	DelayRisk         float64            `json:"delay_risk"`
	PredictedCost     float64            `json:"predicted_cost"`
	PredictedTimeline int                `json:"predicted_timeline"`
	Factors           map[string]float64 `json:"factors"`
}

// TerrainMultiplier returns the fixed multiplier for terrain. Terrains without
// a multiplier, including the software sentinel, are rejected.
func TerrainMultiplier(terrain project.Terrain) (float64, error) {
	m, ok := terrainMultipliers[terrain]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownTerrain, terrain)
	}
	return m, nil
}

// EstimateWhatIf computes the what-if estimate. It never calls the inference
// service.
func EstimateWhatIf(in WhatIfInput) (Estimate, error) {
	if in.MaterialCost < 0 || in.LaborCost < 0 || in.HistoricalDelays < 0 {
		return Estimate{}, fmt.Errorf("%w: costs and delays must not be negative", ErrInvalidInput)
	}
	if in.VendorReliability < 0 || in.VendorReliability > MaxVendorReliability {
		return Estimate{}, fmt.Errorf("%w: vendor reliability must be between 0 and 10", ErrInvalidInput)
	}

	terrainFactor, err := TerrainMultiplier(in.Terrain)
	if err != nil {
		return Estimate{}, err
	}

	baseline := in.MaterialCost + in.LaborCost
	reliabilityFactor := (MaxVendorReliability - in.VendorReliability) * reliabilityStep
	delayRisk := math.Min(in.HistoricalDelays*0.2+reliabilityFactor*0.5, MaxDelayRisk)
	predictedCost := baseline * (1 + reliabilityFactor) * terrainFactor
	predictedTimeline := baseline * timelineDaysPerDollar * terrainFactor * (1 + reliabilityFactor)

	return Estimate{
		ReliabilityFactor: reliabilityFactor,
		TerrainFactor:     terrainFactor,
		DelayRisk:         delayRisk,
		PredictedCost:     predictedCost,
		PredictedTimeline: int(math.Round(predictedTimeline)),
		Factors: map[string]float64{
			FactorTerrain:           (terrainFactor - 1) * 0.4,
			FactorVendorReliability: reliabilityFactor * 0.3,
			FactorHistoricalDelays:  in.HistoricalDelays * 0.05 * 0.2,
			FactorComplexity:        projectComplexity,
		},
	}, nil
}
