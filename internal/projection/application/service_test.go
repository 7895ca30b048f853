package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
)

var serviceNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func historyOps() []fueling.FuelOperation {
	op := func(id, airline, name, dest string, daysAgo int, liters float64) fueling.FuelOperation {
		return fueling.FuelOperation{
			ID:             id,
			DateTime:       serviceNow.AddDate(0, 0, -daysAgo),
			AirlineID:      airline,
			AirlineName:    name,
			Destination:    dest,
			QuantityLiters: liters,
		}
	}
	return []fueling.FuelOperation{
		op("1", "b", "Blue Wings", "VIE", 2, 800),
		op("2", "a", "", "FRA", 3, 900),
		op("3", "a", "", "FRA", 10, 1100),
		op("4", "a", "", "IST", 5, 1000),
		op("5", "a", "", "FRA", 200, 5000),
	}
}

func newTestService(t *testing.T, history *fakeHistory) *Service {
	t.Helper()
	svc, err := NewService(history, fakeAirlines{"a": "Air One"}, WithClock(func() time.Time { return serviceNow }))
	require.NoError(t, err)
	return svc
}

func TestNewService_NilHistory(t *testing.T) {
	_, err := NewService(nil, nil)
	require.Error(t, err)
}

func TestCalculate_ProjectsAndSorts(t *testing.T) {
	history := &fakeHistory{ops: historyOps()}
	svc := newTestService(t, history)

	calc, err := svc.Calculate(context.Background(), []projection.InputRow{
		{AirlineID: "b", Destination: "VIE", MonthlyOperationsCount: 2},
		{AirlineID: "a", Destination: "IST", MonthlyOperationsCount: 1},
		{AirlineID: "a", Destination: "FRA", MonthlyOperationsCount: 4},
		{AirlineID: "a", Destination: "FRA", MonthlyOperationsCount: 1},
		{AirlineID: "c", Destination: "SJJ", MonthlyOperationsCount: 3},
	})
	require.NoError(t, err)
	require.Len(t, calc.Results, 5)
	assert.Equal(t, 4, history.calls, "duplicate routes share one history query")

	first := calc.Results[0]
	assert.Equal(t, "Air One", first.AirlineName)
	assert.Equal(t, "FRA", first.Destination)
	assert.InDelta(t, 1000, first.AverageFuelPerOperation, 1e-9)
	assert.Equal(t, 2, first.OperationsAnalyzed)

	last := calc.Results[4]
	assert.Equal(t, "c", last.AirlineName)
	assert.Zero(t, last.OperationsAnalyzed)
	assert.Zero(t, last.MonthlyConsumption)

	// 4000 + 1000 + 1000 + 1600 + 0
	assert.InDelta(t, 7600, calc.Total.Monthly, 1e-9)
	assert.InDelta(t, 7600*12, calc.Total.Yearly, 1e-9)
	assert.Equal(t, serviceNow, calc.CalculatedAt)
}

func TestCalculate_RejectsIncompleteRow(t *testing.T) {
	svc := newTestService(t, &fakeHistory{})
	_, err := svc.Calculate(context.Background(), []projection.InputRow{
		{AirlineID: "a", Destination: "FRA", MonthlyOperationsCount: -2},
	})
	assert.ErrorIs(t, err, fueling.ErrIncompleteInputRow)
}

func TestCalculate_HistoryFailure(t *testing.T) {
	cause := errors.New("connection refused")
	svc := newTestService(t, &fakeHistory{err: cause})
	_, err := svc.Calculate(context.Background(), rowsWithCount(2))
	assert.ErrorIs(t, err, fueling.ErrHistoryUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestCalculateAndSave_PersistsCachedResults(t *testing.T) {
	svc := newTestService(t, &fakeHistory{ops: historyOps()})
	store := &fakeStore{}
	ps := newTestSync(t, store, &fakeClock{})
	_, err := ps.Load(context.Background())
	require.NoError(t, err)

	calc, err := svc.CalculateAndSave(context.Background(), ps, []projection.InputRow{
		{AirlineID: "a", Destination: "FRA", MonthlyOperationsCount: 4},
	})
	require.NoError(t, err)

	saves := store.saved()
	require.Len(t, saves, 1)
	require.NotNil(t, saves[0].Cached)
	assert.Equal(t, calc.Results, saves[0].Cached.Results)
	assert.InDelta(t, 4000, saves[0].Cached.Total.Monthly, 1e-9)
}

func TestCalculateAndSave_ReturnsResultsOnSaveFailure(t *testing.T) {
	svc := newTestService(t, &fakeHistory{ops: historyOps()})
	ps := newTestSync(t, &fakeStore{saveErr: errors.New("write failed")}, &fakeClock{})
	_, err := ps.Load(context.Background())
	require.NoError(t, err)

	calc, err := svc.CalculateAndSave(context.Background(), ps, rowsWithCount(1))
	assert.ErrorIs(t, err, fueling.ErrPersistenceFailure)
	assert.Len(t, calc.Results, 1)
}
