package prediction

import (
	"encoding/json"
	"fmt"
	"time"
)

// Prediction is an immutable cost/timeline/risk prediction for a project.
type Prediction struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	ProjectID         string    `json:"project_id"`
	PredictedCost     float64   `json:"predicted_cost"`
	PredictedTimeline int       `json:"predicted_timeline"`
	RiskProbability   float64   `json:"risk_probability"`
	FactorBreakdown   string    `json:"factor_breakdown"` // JSON object of name -> weight
	CreatedAt         time.Time `json:"created_at"`
}

// Factors decodes the factor breakdown.
func (p Prediction) Factors() (map[string]float64, error) {
	factors := map[string]float64{}
	if p.FactorBreakdown == "" {
		return factors, nil
	}
	if err := json.Unmarshal([]byte(p.FactorBreakdown), &factors); err != nil {
		return nil, fmt.Errorf("decoding factor breakdown: %w", err)
	}
	return factors, nil
}

// ListOptions narrows a prediction listing. Results are newest first.
type ListOptions struct {
	UserID    string
	ProjectID string
	Limit     int
}
