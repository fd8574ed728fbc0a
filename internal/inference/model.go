package inference

import "encoding/json"

// Prediction is the prediction block of a predict response.
type Prediction struct {
	PredictedCost      float64  `json:"predicted_cost"`
	BaseCost           float64  `json:"base_cost"`
	RiskAdjustment     float64  `json:"risk_adjustment"`
	ContingencyPercent float64  `json:"contingency_percent"`
	HighRiskAreas      []string `json:"high_risk_areas"`
}

// PredictResult is the decoded predict response.
type PredictResult struct {
	Success         bool       `json:"success"`
	CompanyUsed     string     `json:"company_used,omitempty"`
	Prediction      Prediction `json:"prediction"`
	CompanyInsights []string   `json:"company_insights,omitempty"`
	Recommendations []string   `json:"recommendations"`
}

// RiskScore treats contingency as the canonical risk proxy.
func (r PredictResult) RiskScore() float64 {
	return r.Prediction.ContingencyPercent / 100
}

type scenariosResponse struct {
	Success          bool            `json:"success"`
	ScenarioAnalysis json.RawMessage `json:"scenario_analysis"`
}

// HealthStatus is the inference service health response.
type HealthStatus struct {
	Status          string   `json:"status"`
	Service         string   `json:"service"`
	Message         string   `json:"message"`
	LoadedCompanies []string `json:"loaded_companies"`
}
