package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(DefaultRates())
	require.NoError(t, err)
	return calc
}

func TestCalculate_ExportOperation(t *testing.T) {
	calc := newTestCalculator(t)
	got, err := calc.Calculate(fueling.FuelOperation{
		ID:              "op-1",
		QuantityKg:      1000,
		PricePerKg:      0.5,
		DiscountPercent: 10,
		Currency:        fueling.CurrencyEUR,
		TrafficType:     fueling.TrafficExport,
	})
	require.NoError(t, err)

	assert.Equal(t, MonetaryBreakdown{
		BaseAmount:     500,
		DiscountAmount: 50,
		NetAmount:      450,
		VATAmount:      0,
		ExciseAmount:   0,
		GrossAmount:    450,
		Currency:       fueling.CurrencyEUR,
	}, got)
}

func TestCalculate_DomesticOperation(t *testing.T) {
	calc := newTestCalculator(t)
	got, err := calc.Calculate(fueling.FuelOperation{
		QuantityKg:      1000,
		QuantityLiters:  1250,
		PricePerKg:      0.5,
		DiscountPercent: 10,
		Currency:        fueling.CurrencyBAM,
		TrafficType:     fueling.TrafficDomestic,
	})
	require.NoError(t, err)

	assert.Equal(t, 450.0, got.NetAmount)
	assert.Equal(t, 76.5, got.VATAmount)
	assert.Equal(t, 375.0, got.ExciseAmount)
	assert.Equal(t, 901.5, got.GrossAmount)
}

func TestCalculate_ExportGrossEqualsNet(t *testing.T) {
	calc := newTestCalculator(t)
	for _, liters := range []float64{0, 1, 1250, 98765.4321} {
		for _, kg := range []float64{0, 3.3, 800, 77777.7} {
			got, err := calc.Calculate(fueling.FuelOperation{
				QuantityKg:      kg,
				QuantityLiters:  liters,
				PricePerKg:      0.731,
				DiscountPercent: 3,
				TrafficType:     fueling.TrafficExport,
			})
			require.NoError(t, err)
			assert.Equal(t, got.NetAmount, got.GrossAmount)
			assert.Zero(t, got.VATAmount)
			assert.Zero(t, got.ExciseAmount)
		}
	}
}

func TestCalculate_ClampsDiscount(t *testing.T) {
	calc := newTestCalculator(t)
	base := fueling.FuelOperation{QuantityKg: 100, PricePerKg: 2, TrafficType: fueling.TrafficExport}

	over := base
	over.DiscountPercent = 250
	got, err := calc.Calculate(over)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.DiscountAmount)
	assert.Equal(t, 0.0, got.NetAmount)

	under := base
	under.DiscountPercent = -20
	got, err = calc.Calculate(under)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.DiscountAmount)
	assert.Equal(t, 200.0, got.NetAmount)
}

func TestCalculate_TotalAmountIsAuthoritative(t *testing.T) {
	calc := newTestCalculator(t)
	total := 420.12345
	got, err := calc.Calculate(fueling.FuelOperation{
		QuantityKg:      1000,
		QuantityLiters:  1250,
		PricePerKg:      0.5,
		DiscountPercent: 10,
		TotalAmount:     &total,
		TrafficType:     fueling.TrafficDomestic,
	})
	require.NoError(t, err)
	assert.Equal(t, total, got.NetAmount)
	assert.Equal(t, fueling.Round5(total*DefaultVATRate), got.VATAmount)

	zero := 0.0
	got, err = calc.Calculate(fueling.FuelOperation{QuantityKg: 10, PricePerKg: 1, TotalAmount: &zero, TrafficType: fueling.TrafficExport})
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.NetAmount)
}

func TestCalculate_InvalidData(t *testing.T) {
	calc := newTestCalculator(t)
	for _, op := range []fueling.FuelOperation{
		{QuantityKg: -1, PricePerKg: 1, TrafficType: fueling.TrafficExport},
		{QuantityKg: 1, PricePerKg: -0.1, TrafficType: fueling.TrafficExport},
		{QuantityKg: math.NaN(), PricePerKg: 1, TrafficType: fueling.TrafficExport},
	} {
		_, err := calc.Calculate(op)
		assert.ErrorIs(t, err, fueling.ErrInvalidOperationData)
	}
}

func TestCalculate_RejectsUnsupportedCurrency(t *testing.T) {
	calc := newTestCalculator(t)
	_, err := calc.Calculate(fueling.FuelOperation{ID: "op-gbp", QuantityKg: 1, PricePerKg: 1, Currency: "GBP", TrafficType: fueling.TrafficExport})
	assert.ErrorIs(t, err, fueling.ErrInvalidCurrency)

	got, err := calc.Calculate(fueling.FuelOperation{QuantityKg: 1, PricePerKg: 1, Currency: " eur ", TrafficType: fueling.TrafficExport})
	require.NoError(t, err)
	assert.Equal(t, fueling.CurrencyEUR, got.Currency)
}

func TestCalculate_DefaultsCurrencyToHome(t *testing.T) {
	calc := newTestCalculator(t)
	got, err := calc.Calculate(fueling.FuelOperation{QuantityKg: 1, PricePerKg: 1, TrafficType: fueling.TrafficExport})
	require.NoError(t, err)
	assert.Equal(t, fueling.CurrencyBAM, got.Currency)
}

func TestNewCalculator_RejectsNegativeRates(t *testing.T) {
	_, err := NewCalculator(Rates{VATRate: -0.1})
	assert.Error(t, err)
	_, err = NewCalculator(Rates{VATRate: 0.17, ExcisePerLiter: math.NaN()})
	assert.Error(t, err)
}
