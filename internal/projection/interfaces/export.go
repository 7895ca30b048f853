package interfaces

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	projection "github.com/emirmehmedovic/dataavioservis-sub001/internal/projection/domain"
)

const sheetName = "projection"

// BuildProjectionXLSX renders projection results with a total row.
func BuildProjectionXLSX(cached projection.CachedProjection) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	header := []any{"Airline", "Destination", "Avg fuel / operation (L)", "Operations / month", "Monthly (L)", "Quarterly (L)", "Yearly (L)", "Operations analyzed"}
	_ = f.SetSheetRow(sheetName, "A1", &header)
	for i, r := range cached.Results {
		row := []any{
			r.AirlineName, r.Destination, r.AverageFuelPerOperation, r.MonthlyOperationsCount,
			r.MonthlyConsumption, r.QuarterlyConsumption, r.YearlyConsumption, r.OperationsAnalyzed,
		}
		_ = f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+2), &row)
	}
	totalRow := len(cached.Results) + 2
	total := []any{"Total", "", "", "", cached.Total.Monthly, cached.Total.Quarterly, cached.Total.Yearly}
	_ = f.SetSheetRow(sheetName, fmt.Sprintf("A%d", totalRow), &total)
	if !cached.CalculatedAt.IsZero() {
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", totalRow+2), "Calculated at")
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", totalRow+2), cached.CalculatedAt.Format("2006-01-02 15:04 MST"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
