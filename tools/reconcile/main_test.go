package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billing "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/domain"
	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

func ptr(v float64) *float64 { return &v }

func TestFindDrifts(t *testing.T) {
	calc, err := billing.NewCalculator(billing.DefaultRates())
	require.NoError(t, err)

	base := fueling.FuelOperation{
		DateTime: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), AirlineID: "a1", Destination: "FRA",
		QuantityKg: 1000, QuantityLiters: 1250, PricePerKg: 0.5, DiscountPercent: 10,
		Currency: fueling.CurrencyBAM, TrafficType: fueling.TrafficExport,
	}
	matching := base
	matching.ID, matching.TotalAmount = "match", ptr(450)
	drifting := base
	drifting.ID, drifting.TotalAmount = "drift", ptr(470)
	unset := base
	unset.ID = "unset"
	invalid := base
	invalid.ID, invalid.QuantityKg, invalid.TotalAmount = "invalid", -1, ptr(10)

	drifts, skipped := findDrifts(calc, []fueling.FuelOperation{matching, drifting, unset, invalid}, 0.01)
	require.Len(t, drifts, 1)
	assert.Equal(t, "drift", drifts[0].Operation.ID)
	assert.Equal(t, 450.0, drifts[0].ComputedNet)
	assert.Equal(t, 1, skipped)

	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, writeDrifts(path, drifts))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], ",450,470,20"))
}
