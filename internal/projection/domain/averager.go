package projection

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

const (
	// DefaultLookbackMonths is the history window ending at the calculation time.
	DefaultLookbackMonths = 3
	// DefaultSampleCap bounds the number of operations averaged per route.
	DefaultSampleCap = 10
)

// Average is the mean fuel quantity per operation over a bounded sample.
type Average struct {
	Value      float64 `json:"value"`
	SampleSize int     `json:"sample_size"`
}

// HistoricalAverager averages recent operations for an airline and destination.
type HistoricalAverager struct {
	lookbackMonths int
	sampleCap      int
}

// NewHistoricalAverager constructs an averager; non-positive values use the defaults.
func NewHistoricalAverager(lookbackMonths, sampleCap int) *HistoricalAverager {
	if lookbackMonths <= 0 {
		lookbackMonths = DefaultLookbackMonths
	}
	if sampleCap <= 0 {
		sampleCap = DefaultSampleCap
	}
	return &HistoricalAverager{lookbackMonths: lookbackMonths, sampleCap: sampleCap}
}

// SampleCap returns the configured sample cap.
func (a *HistoricalAverager) SampleCap() int { return a.sampleCap }

// Window returns the inclusive lookback window ending at now.
func (a *HistoricalAverager) Window(now time.Time) (time.Time, time.Time) {
	return now.AddDate(0, -a.lookbackMonths, 0), now
}

// Query builds the history query that covers a route's window.
func (a *HistoricalAverager) Query(airlineID, destination string, now time.Time) fueling.HistoryQuery {
	from, to := a.Window(now)
	return fueling.HistoryQuery{From: from, To: to, AirlineID: airlineID, Destination: destination}
}

// Average selects the most recent matching operations inside the window, at most
// SampleCap of them, and returns their mean liters. Newer operations win when the
// cap truncates the set; equal timestamps keep their history order.
func (a *HistoricalAverager) Average(history []fueling.FuelOperation, airlineID, destination string, now time.Time) Average {
	query := a.Query(airlineID, destination, now)

	matched := make([]fueling.FuelOperation, 0, len(history))
	for _, op := range history {
		if op.AirlineID != airlineID || op.Destination != destination {
			continue
		}
		if !query.Matches(op) {
			continue
		}
		matched = append(matched, op)
	}
	if len(matched) == 0 {
		return Average{}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].DateTime.After(matched[j].DateTime)
	})
	if len(matched) > a.sampleCap {
		matched = matched[:a.sampleCap]
	}

	liters := make([]float64, len(matched))
	for i, op := range matched {
		liters[i] = op.QuantityLiters
	}
	return Average{Value: stat.Mean(liters, nil), SampleSize: len(liters)}
}
