package inference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestNormalize_DefaultsFromBudget(t *testing.T) {
	payload := normalize(ProjectParams{
		ProjectType:       "Construction",
		Region:            "Delhi",
		EstimatedBudget:   "1000000",
		EstimatedDuration: "12",
	}, fixedNow)

	require.Equal(t, 300000.0, payload.LaborCost)
	require.Equal(t, 400000.0, payload.MaterialCost)
	require.Equal(t, 200000.0, payload.EquipmentCost)
	require.Equal(t, 100000.0, payload.OverheadCost)
	require.Equal(t, 10.0, payload.ProjectSize)
	require.Equal(t, 12.0, payload.ProjectDuration)
	require.Equal(t, 2025, payload.Year)
	require.Equal(t, "Construction", payload.ProjectType)
	require.Equal(t, "Delhi", payload.Region)
}

func TestNormalize_EachFieldFallsBackIndependently(t *testing.T) {
	cases := []struct {
		name   string
		params ProjectParams
		get    func(Payload) float64
		want   float64
	}{
		{"labor absent", ProjectParams{EstimatedBudget: "500", MaterialCost: "1"}, func(p Payload) float64 { return p.LaborCost }, 150},
		{"material non-numeric", ProjectParams{EstimatedBudget: "500", MaterialCost: "lots"}, func(p Payload) float64 { return p.MaterialCost }, 200},
		{"equipment zero", ProjectParams{EstimatedBudget: "500", EquipmentCost: "0"}, func(p Payload) float64 { return p.EquipmentCost }, 100},
		{"overhead blank", ProjectParams{EstimatedBudget: "500", OverheadCost: "  "}, func(p Payload) float64 { return p.OverheadCost }, 50},
		{"labor supplied", ProjectParams{EstimatedBudget: "500", LaborCost: "42.5"}, func(p Payload) float64 { return p.LaborCost }, 42.5},
		{"size supplied", ProjectParams{EstimatedBudget: "500", ProjectSize: "7"}, func(p Payload) float64 { return p.ProjectSize }, 7},
		{"size NaN", ProjectParams{EstimatedBudget: "200000", ProjectSize: "NaN"}, func(p Payload) float64 { return p.ProjectSize }, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, tc.get(normalize(tc.params, fixedNow)), 1e-9)
		})
	}
}

func TestNormalize_PermissiveOptionalFields(t *testing.T) {
	payload := normalize(ProjectParams{
		EstimatedBudget: "100",
		Year:            "2027.9",
		InflationRate:   "abc",
		Delays:          "9",
		ReworkPercent:   "",
		SafetyIncidents: "2.7",
	}, fixedNow)

	require.Equal(t, 2027, payload.Year)
	require.Equal(t, 0.0, payload.InflationRate)
	require.Equal(t, 9.0, payload.Delays)
	require.Equal(t, 0.0, payload.ReworkPercent)
	require.Equal(t, 2, payload.SafetyIncidents)
}

func TestNormalize_MissingBudget(t *testing.T) {
	payload := normalize(ProjectParams{EstimatedBudget: "n/a"}, fixedNow)
	require.Equal(t, 0.0, payload.LaborCost)
	require.Equal(t, 0.0, payload.ProjectSize)
}

func TestParseNumber(t *testing.T) {
	v, ok := ParseNumber(" 12.5 ")
	require.True(t, ok)
	require.Equal(t, 12.5, v)

	for _, raw := range []string{"", "x", "Inf", "NaN"} {
		_, ok := ParseNumber(raw)
		require.False(t, ok, raw)
	}
}

func TestRiskScore(t *testing.T) {
	for _, pct := range []float64{0, 12.5, 37, 100, 140} {
		result := PredictResult{Prediction: Prediction{ContingencyPercent: pct}}
		require.InDelta(t, pct/100, result.RiskScore(), 1e-12)
	}
}
