// Package history parses uploaded historical project data and computes the
// aggregates attached to a submitted project.
package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
)

// Column names read from the uploaded file.
const (
	ColumnDuration      = "duration"
	ColumnCost          = "cost"
	ColumnDelayed       = "delayed"
	ColumnActualCost    = "actualCost"
	ColumnEstimatedCost = "estimatedCost"
)

// overrunThreshold marks a project as over budget when actual > estimated * threshold.
const overrunThreshold = 1.1

// ErrMalformed indicates the file could not be read as delimited text.
var ErrMalformed = errors.New("malformed historical data")

// Row is one data row keyed by the header row.
type Row map[string]string

// Summary holds the historical aggregates. A nil field means no row carried
// a usable value for it.
type Summary struct {
	ProjectCount         *int     `json:"project_count"`
	AvgDuration          *float64 `json:"avg_duration"`
	AvgCost              *float64 `json:"avg_cost"`
	DelayFrequency       *float64 `json:"delay_frequency"`
	CostOverrunFrequency *float64 `json:"cost_overrun_frequency"`
}

// IsCSV reports whether an uploaded filename looks like comma-separated data.
func IsCSV(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".csv")
}

// Parse reads comma-delimited text whose first row names the columns.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		row := make(Row, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(record) {
				row[key] = strings.TrimSpace(record[i])
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Summarize computes the aggregates over rows.
func Summarize(rows []Row) Summary {
	if len(rows) == 0 {
		return Summary{}
	}

	count := len(rows)
	return Summary{
		ProjectCount:         &count,
		AvgDuration:          Average(rows, ColumnDuration),
		AvgCost:              Average(rows, ColumnCost),
		DelayFrequency:       DelayFrequency(rows),
		CostOverrunFrequency: CostOverrunFrequency(rows),
	}
}

// Average is the mean of the numeric values in column. Rows whose value is
// missing or non-numeric are ignored; with no numeric values it returns nil.
func Average(rows []Row, column string) *float64 {
	var sum float64
	var n int
	for _, row := range rows {
		if v, ok := number(row[column]); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// DelayFrequency is the fraction of rows flagged as delayed.
func DelayFrequency(rows []Row) *float64 {
	if len(rows) == 0 {
		return nil
	}
	var delayed int
	for _, row := range rows {
		if truthy(row[ColumnDelayed]) {
			delayed++
		}
	}
	freq := float64(delayed) / float64(len(rows))
	return &freq
}

// CostOverrunFrequency is the fraction of rows whose actual cost exceeded
// the estimate by more than 10%. Rows lacking either cost do not count as
// overruns; with no row carrying both it returns nil.
func CostOverrunFrequency(rows []Row) *float64 {
	var comparable, overruns int
	for _, row := range rows {
		actual, okA := number(row[ColumnActualCost])
		estimated, okE := number(row[ColumnEstimatedCost])
		if !okA || !okE {
			continue
		}
		comparable++
		if actual > estimated*overrunThreshold {
			overruns++
		}
	}
	if comparable == 0 {
		return nil
	}
	freq := float64(overruns) / float64(len(rows))
	return &freq
}

func truthy(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1"
}

func number(raw string) (float64, bool) {
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
