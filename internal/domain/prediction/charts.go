package prediction

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// FactorSlice is one slice of the factor breakdown chart, in percent.
type FactorSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// HistoryPoint is one point of the prediction history chart.
type HistoryPoint struct {
	Name          string  `json:"name"`
	Timeline      int     `json:"timeline"`
	CostThousands float64 `json:"cost"`
}

// FactorSlices converts a prediction's breakdown into chart slices.
func FactorSlices(pred Prediction) ([]FactorSlice, error) {
	factors, err := pred.Factors()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(factors))
	for name := range factors {
		names = append(names, name)
	}
	sort.Strings(names)

	slices := make([]FactorSlice, 0, len(names))
	for _, name := range names {
		slices = append(slices, FactorSlice{Name: FactorLabel(name), Value: factors[name] * 100})
	}
	return slices, nil
}

// HistorySeries orders newest-first predictions oldest first for charting.
func HistorySeries(preds []Prediction) []HistoryPoint {
	points := make([]HistoryPoint, 0, len(preds))
	for i := len(preds) - 1; i >= 0; i-- {
		points = append(points, HistoryPoint{
			Name:          fmt.Sprintf("Prediction %d", len(points)+1),
			Timeline:      preds[i].PredictedTimeline,
			CostThousands: preds[i].PredictedCost / 1000,
		})
	}
	return points
}

// FactorLabel turns a camelCase factor key into a title: "vendorReliability"
// becomes "Vendor Reliability".
func FactorLabel(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
