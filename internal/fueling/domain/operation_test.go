package fueling

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ClampsDiscountAndRecomputesDensity(t *testing.T) {
	cases := []struct {
		name     string
		discount float64
		want     float64
	}{
		{"negative", -5, 0},
		{"above hundred", 140, 100},
		{"nan", math.NaN(), 0},
		{"inside range", 12.5, 12.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op := FuelOperation{QuantityKg: 800, QuantityLiters: 1000, DiscountPercent: tc.discount}.Normalize()
			assert.Equal(t, tc.want, op.DiscountPercent)
			assert.InDelta(t, 0.8, op.SpecificDensity, 1e-12)
		})
	}
}

func TestSpecificDensity_ZeroWhenQuantityMissing(t *testing.T) {
	assert.Equal(t, 0.0, SpecificDensity(0, 1000))
	assert.Equal(t, 0.0, SpecificDensity(800, 0))
	assert.Equal(t, 0.0, SpecificDensity(math.NaN(), 10))
}

func TestValidate(t *testing.T) {
	valid := FuelOperation{QuantityKg: 10, QuantityLiters: 12, PricePerKg: 1, TrafficType: TrafficExport}
	require.NoError(t, valid.Validate())

	bad := []FuelOperation{
		{QuantityKg: -1, PricePerKg: 1, TrafficType: TrafficExport},
		{QuantityKg: 1, PricePerKg: -1, TrafficType: TrafficExport},
		{QuantityKg: math.NaN(), PricePerKg: 1, TrafficType: TrafficExport},
		{QuantityKg: 1, PricePerKg: math.Inf(1), TrafficType: TrafficExport},
		{QuantityKg: 1, QuantityLiters: -3, PricePerKg: 1, TrafficType: TrafficExport},
		{QuantityKg: 1, PricePerKg: 1, TrafficType: "charter"},
	}
	for i, op := range bad {
		assert.ErrorIs(t, op.Validate(), ErrInvalidOperationData, "case %d", i)
	}
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" eur ")
	require.NoError(t, err)
	assert.Equal(t, CurrencyEUR, c)

	_, err = ParseCurrency("GBP")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestRound5(t *testing.T) {
	assert.Equal(t, 76.5, Round5(450*0.17))
	assert.Equal(t, 50.0, Round5(500*0.1))
	assert.Equal(t, 1.23457, Round5(1.234565))
	assert.Equal(t, -1.23457, Round5(-1.234565))
	assert.True(t, math.IsNaN(Round5(math.NaN())))
}

func TestHistoryQueryMatches(t *testing.T) {
	at := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	op := FuelOperation{DateTime: at, AirlineID: "A1", Destination: "FRA", TrafficType: TrafficExport}

	assert.True(t, HistoryQuery{}.Matches(op))
	assert.True(t, HistoryQuery{From: at, To: at}.Matches(op))
	assert.False(t, HistoryQuery{From: at.Add(time.Second)}.Matches(op))
	assert.False(t, HistoryQuery{To: at.Add(-time.Second)}.Matches(op))
	assert.False(t, HistoryQuery{AirlineID: "A2"}.Matches(op))
	assert.False(t, HistoryQuery{Destination: "VIE"}.Matches(op))
	assert.False(t, HistoryQuery{TrafficType: TrafficDomestic}.Matches(op))
}
