package projection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

func TestProject_ScenarioC(t *testing.T) {
	got := NewEngine(language.Und).Project(Input{
		Row:         InputRow{AirlineID: "a1", Destination: "FRA", MonthlyOperationsCount: 4},
		AirlineName: "Air One",
		Average:     Average{Value: 1000, SampleSize: 4},
	})
	assert.Equal(t, Result{
		AirlineName:             "Air One",
		Destination:             "FRA",
		AverageFuelPerOperation: 1000,
		MonthlyOperationsCount:  4,
		MonthlyConsumption:      4000,
		QuarterlyConsumption:    12000,
		YearlyConsumption:       48000,
		OperationsAnalyzed:      4,
	}, got)
}

func TestProject_ScenarioD_NoHistory(t *testing.T) {
	got := NewEngine(language.Und).Project(Input{
		Row:         InputRow{AirlineID: "a1", Destination: "FRA", MonthlyOperationsCount: 7},
		AirlineName: "Air One",
	})
	assert.Zero(t, got.OperationsAnalyzed)
	assert.Zero(t, got.AverageFuelPerOperation)
	assert.Zero(t, got.MonthlyConsumption)
	assert.Zero(t, got.QuarterlyConsumption)
	assert.Zero(t, got.YearlyConsumption)
}

func TestProject_FallsBackToAirlineID(t *testing.T) {
	got := NewEngine(language.Und).Project(Input{Row: InputRow{AirlineID: "a9", Destination: "SJJ", MonthlyOperationsCount: 1}})
	assert.Equal(t, "a9", got.AirlineName)
}

func TestProjectBatch_SortsAndTotals(t *testing.T) {
	inputs := []Input{
		{Row: InputRow{AirlineID: "b", Destination: "VIE", MonthlyOperationsCount: 1}, AirlineName: "Blue Wings", Average: Average{Value: 100, SampleSize: 1}},
		{Row: InputRow{AirlineID: "a", Destination: "IST", MonthlyOperationsCount: 2}, AirlineName: "Air One", Average: Average{Value: 50, SampleSize: 2}},
		{Row: InputRow{AirlineID: "a", Destination: "FRA", MonthlyOperationsCount: 3}, AirlineName: "Air One", Average: Average{Value: 10, SampleSize: 3}},
		{Row: InputRow{AirlineID: "c", Destination: "ZAG", MonthlyOperationsCount: 1}, AirlineName: "Čelik Air", Average: Average{}},
	}

	results, total := NewEngine(language.Und).ProjectBatch(inputs)
	require.Len(t, results, 4)

	var order []string
	for _, r := range results {
		order = append(order, r.AirlineName+"/"+r.Destination)
	}
	assert.Equal(t, []string{"Air One/FRA", "Air One/IST", "Blue Wings/VIE", "Čelik Air/ZAG"}, order)

	assert.InDelta(t, 230, total.Monthly, 1e-9)
	assert.InDelta(t, 690, total.Quarterly, 1e-9)
	assert.InDelta(t, 2760, total.Yearly, 1e-9)
}

func TestProjectBatch_CaseSensitive(t *testing.T) {
	inputs := []Input{
		{Row: InputRow{AirlineID: "1", Destination: "X", MonthlyOperationsCount: 1}, AirlineName: "Air"},
		{Row: InputRow{AirlineID: "2", Destination: "X", MonthlyOperationsCount: 1}, AirlineName: "air"},
	}
	results, _ := NewEngine(language.Und).ProjectBatch(inputs)
	require.Len(t, results, 2)
	assert.NotEqual(t, results[0].AirlineName, results[1].AirlineName)
	// Lowercase sorts first under the root collation.
	assert.Equal(t, "air", results[0].AirlineName)
}

func TestProjectBatch_Empty(t *testing.T) {
	results, total := NewEngine(language.Und).ProjectBatch(nil)
	assert.Empty(t, results)
	assert.Equal(t, Total{}, total)
}

func TestValidateRow(t *testing.T) {
	cases := []struct {
		name string
		row  InputRow
		ok   bool
	}{
		{"complete", InputRow{AirlineID: "a", Destination: "FRA", MonthlyOperationsCount: 1}, true},
		{"missing airline", InputRow{Destination: "FRA", MonthlyOperationsCount: 1}, false},
		{"blank destination", InputRow{AirlineID: "a", Destination: "  ", MonthlyOperationsCount: 1}, false},
		{"zero count", InputRow{AirlineID: "a", Destination: "FRA"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRow(tc.row)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, fueling.ErrIncompleteInputRow))
		})
	}
}

func TestClampOperationsCount(t *testing.T) {
	assert.Equal(t, 0, ClampOperationsCount(InputRow{MonthlyOperationsCount: -3}).MonthlyOperationsCount)
	assert.Equal(t, 5, ClampOperationsCount(InputRow{MonthlyOperationsCount: 5}).MonthlyOperationsCount)
}
