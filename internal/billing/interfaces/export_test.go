package interfaces

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	billingapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/application"
	billing "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/domain"
	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

func sampleConsolidation(t *testing.T) billing.Consolidation {
	t.Helper()
	calc, err := billing.NewCalculator(billing.DefaultRates())
	require.NoError(t, err)
	agg, err := billing.NewAggregator(calc, nil)
	require.NoError(t, err)
	c, err := agg.Consolidate([]fueling.FuelOperation{
		{
			ID: "op-1", DateTime: time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC),
			AirlineID: "a1", AirlineName: "Air One", Destination: "FRA",
			QuantityKg: 1000, QuantityLiters: 1250, PricePerKg: 0.5, DiscountPercent: 10,
			Currency: fueling.CurrencyBAM, TrafficType: fueling.TrafficDomestic,
		},
		{
			ID: "op-2", DateTime: time.Date(2024, 5, 11, 8, 0, 0, 0, time.UTC),
			AirlineID: "a2", Destination: "IST",
			QuantityKg: 400, QuantityLiters: 500, PricePerKg: 0.5,
			Currency: fueling.CurrencyUSD, TrafficType: fueling.TrafficExport,
		},
	}, "May 2024")
	require.NoError(t, err)
	return c
}

func sampleInvoice() billingapp.Invoice {
	b := billing.MonetaryBreakdown{BaseAmount: 200, NetAmount: 200, GrossAmount: 200, Currency: fueling.CurrencyUSD}
	rate := billing.ExchangeRate{Currency: fueling.CurrencyUSD, Rate: 1.8, Provenance: billing.RateEstimated}
	return billingapp.Invoice{
		Operation: fueling.FuelOperation{
			ID: "op-2", DateTime: time.Date(2024, 5, 11, 8, 0, 0, 0, time.UTC),
			AirlineID: "a2", Destination: "IST", Registration: "E7-AAA",
			QuantityKg: 400, QuantityLiters: 500, SpecificDensity: 0.8, PricePerKg: 0.5,
			Currency: fueling.CurrencyUSD, TrafficType: fueling.TrafficExport,
		},
		Breakdown:     b,
		ExchangeRate:  rate,
		HomeBreakdown: billing.ConvertBreakdown(b, rate),
		IssuedAt:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildSummaryPDF(t *testing.T) {
	data, err := BuildSummaryPDF(sampleConsolidation(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBuildSummaryPDF_Empty(t *testing.T) {
	data, err := BuildSummaryPDF(billing.Consolidation{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestBuildSummaryXLSX(t *testing.T) {
	data, err := BuildSummaryXLSX(sampleConsolidation(t))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"summary", "airlines", "destinations", "operations"}, f.GetSheetList())
	v, err := f.GetCellValue("summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "May 2024", v)
	v, err = f.GetCellValue("airlines", "A3")
	require.NoError(t, err)
	assert.Equal(t, "a2", v)
	v, err = f.GetCellValue("operations", "P3")
	require.NoError(t, err)
	assert.Equal(t, "estimated", v)
}

func TestBuildSummaryCSV(t *testing.T) {
	data, err := BuildSummaryCSV(sampleConsolidation(t))
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "901.50000", records[1][13])
	assert.Equal(t, "TOTAL", records[3][0])
	assert.Equal(t, "1101.50000", records[3][13])
}

func TestBuildInvoicePDF(t *testing.T) {
	data, err := BuildInvoicePDF(sampleInvoice())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBuildInvoiceXML(t *testing.T) {
	data, err := BuildInvoiceXML(sampleInvoice())
	require.NoError(t, err)

	var doc invoiceXML
	require.NoError(t, xml.Unmarshal(data, &doc))
	assert.Equal(t, "op-2", doc.ID)
	assert.Equal(t, "E7-AAA", doc.Registration)
	assert.Equal(t, "a2", doc.AirlineName)
	assert.Equal(t, "USD", doc.Amounts.Currency)
	assert.Equal(t, "BAM", doc.HomeAmounts.Currency)
	assert.Equal(t, "360.00000", doc.HomeAmounts.Gross)
	assert.Equal(t, "estimated", doc.ExchangeRate.Provenance)
}
