package projection

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

const (
	monthsPerQuarter = 3
	monthsPerYear    = 12
)

// InputRow is a user-edited projection request for one route.
type InputRow struct {
	AirlineID              string `json:"airline_id"`
	Destination            string `json:"destination"`
	MonthlyOperationsCount int    `json:"monthly_operations_count"`
}

// ClampOperationsCount returns the row with a negative count raised to zero.
func ClampOperationsCount(row InputRow) InputRow {
	if row.MonthlyOperationsCount < 0 {
		row.MonthlyOperationsCount = 0
	}
	return row
}

// ValidateRow rejects rows missing the airline, the destination or a positive count.
func ValidateRow(row InputRow) error {
	if strings.TrimSpace(row.AirlineID) == "" || strings.TrimSpace(row.Destination) == "" {
		return fueling.ErrIncompleteInputRow
	}
	if row.MonthlyOperationsCount <= 0 {
		return fueling.ErrIncompleteInputRow
	}
	return nil
}

// Result is the projected consumption of one route.
type Result struct {
	AirlineName             string  `json:"airline_name"`
	Destination             string  `json:"destination"`
	AverageFuelPerOperation float64 `json:"average_fuel_per_operation"`
	MonthlyOperationsCount  int     `json:"monthly_operations_count"`
	MonthlyConsumption      float64 `json:"monthly_consumption"`
	QuarterlyConsumption    float64 `json:"quarterly_consumption"`
	YearlyConsumption       float64 `json:"yearly_consumption"`
	OperationsAnalyzed      int     `json:"operations_analyzed"`
}

// Total sums every projected route.
type Total struct {
	Monthly   float64 `json:"monthly"`
	Quarterly float64 `json:"quarterly"`
	Yearly    float64 `json:"yearly"`
}

// Input pairs a validated row with its historical average.
type Input struct {
	Row         InputRow
	AirlineName string
	Average     Average
}

// Engine turns averages and planned operation counts into projections.
type Engine struct {
	locale language.Tag
}

// NewEngine constructs an engine ordering results with the collation rules of locale.
func NewEngine(locale language.Tag) *Engine {
	return &Engine{locale: locale}
}

// Project computes the projection of one route.
func (e *Engine) Project(in Input) Result {
	monthly := in.Average.Value * float64(in.Row.MonthlyOperationsCount)
	name := in.AirlineName
	if name == "" {
		name = in.Row.AirlineID
	}
	return Result{
		AirlineName:             name,
		Destination:             in.Row.Destination,
		AverageFuelPerOperation: in.Average.Value,
		MonthlyOperationsCount:  in.Row.MonthlyOperationsCount,
		MonthlyConsumption:      monthly,
		QuarterlyConsumption:    monthly * monthsPerQuarter,
		YearlyConsumption:       monthly * monthsPerYear,
		OperationsAnalyzed:      in.Average.SampleSize,
	}
}

// ProjectBatch projects every input, ordered by airline name then destination.
func (e *Engine) ProjectBatch(inputs []Input) ([]Result, Total) {
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		results = append(results, e.Project(in))
	}

	// Collators keep internal buffers, so each batch gets its own.
	collator := collate.New(e.locale)
	sort.SliceStable(results, func(i, j int) bool {
		if c := collator.CompareString(results[i].AirlineName, results[j].AirlineName); c != 0 {
			return c < 0
		}
		return collator.CompareString(results[i].Destination, results[j].Destination) < 0
	})

	var total Total
	for _, r := range results {
		total.Monthly += r.MonthlyConsumption
		total.Quarterly += r.QuarterlyConsumption
		total.Yearly += r.YearlyConsumption
	}
	return results, total
}
