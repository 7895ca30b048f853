package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	billing "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/domain"
)

const dateTimeLayout = "2006-01-02 15:04"

// BuildSummaryPDF renders a consolidated summary with its airline and destination groups.
func BuildSummaryPDF(c billing.Consolidation) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	s := c.Summary
	pdf.Cell(0, 8, "Consolidated Fueling Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr("Filter: "+c.FilterDescription))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Operations: %d", s.Operations))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Quantity: %.2f L / %.2f kg", s.QuantityLiters, s.QuantityKg))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Dominant currency: %s", s.DominantCurrency))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Gross in BAM: %.2f", s.HomeGrossAmount))
	pdf.Ln(5)
	if s.EstimatedRates {
		pdf.Cell(0, 6, "Note: includes estimated exchange rates")
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Per currency")
	pdf.Ln(7)
	amountHeader(pdf, "Currency")
	pdf.SetFont("Arial", "", 9)
	for _, ct := range s.PerCurrency {
		amountRow(pdf, string(ct.Currency), ct.Totals)
	}

	for _, section := range []struct {
		title  string
		groups []billing.Group
	}{
		{"By airline", c.ByAirline},
		{"By destination", c.ByDestination},
	} {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, section.title)
		pdf.Ln(7)
		amountHeader(pdf, "Key")
		pdf.SetFont("Arial", "", 9)
		for _, g := range section.groups {
			amountRow(pdf, tr(g.Key), g.Totals)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func amountHeader(pdf *gofpdf.Fpdf, key string) {
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(40, 6, key, "1", 0, "C", false, 0, "")
	pdf.CellFormat(15, 6, "Ops", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Liters", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Net", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "VAT", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Excise", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Gross", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
}

func amountRow(pdf *gofpdf.Fpdf, key string, t billing.Totals) {
	pdf.CellFormat(40, 6, key, "1", 0, "L", false, 0, "")
	pdf.CellFormat(15, 6, strconv.Itoa(t.Operations), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", t.QuantityLiters), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", t.NetAmount), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", t.VATAmount), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", t.ExciseAmount), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", t.GrossAmount), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
}

var totalsHeader = []any{"Operations", "Liters", "Kg", "Base", "Discount", "Net", "VAT", "Excise", "Gross"}

func totalsValues(t billing.Totals) []any {
	return []any{t.Operations, t.QuantityLiters, t.QuantityKg, t.BaseAmount, t.DiscountAmount, t.NetAmount, t.VATAmount, t.ExciseAmount, t.GrossAmount}
}

// BuildSummaryXLSX renders a consolidation as a workbook with summary, group and line sheets.
func BuildSummaryXLSX(c billing.Consolidation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	airlineSheet := "airlines"
	destinationSheet := "destinations"
	linesSheet := "operations"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	for _, name := range []string{airlineSheet, destinationSheet, linesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	s := c.Summary
	_ = f.SetCellValue(summarySheet, "A1", "Consolidated Fueling Summary")
	_ = f.SetCellValue(summarySheet, "A2", "Filter")
	_ = f.SetCellValue(summarySheet, "B2", c.FilterDescription)
	_ = f.SetCellValue(summarySheet, "A3", "Dominant currency")
	_ = f.SetCellValue(summarySheet, "B3", string(s.DominantCurrency))
	_ = f.SetCellValue(summarySheet, "A4", "Gross in BAM")
	_ = f.SetCellValue(summarySheet, "B4", s.HomeGrossAmount)
	_ = f.SetCellValue(summarySheet, "A5", "Estimated rates")
	_ = f.SetCellValue(summarySheet, "B5", s.EstimatedRates)

	_ = f.SetSheetRow(summarySheet, "A7", &[]any{"Currency"})
	_ = f.SetSheetRow(summarySheet, "B7", &totalsHeader)
	_ = f.SetSheetRow(summarySheet, "A8", &[]any{"All"})
	all := totalsValues(s.Totals)
	_ = f.SetSheetRow(summarySheet, "B8", &all)
	for i, ct := range s.PerCurrency {
		row := append([]any{string(ct.Currency)}, totalsValues(ct.Totals)...)
		_ = f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+9), &row)
	}

	writeGroups(f, airlineSheet, "Airline", c.ByAirline)
	writeGroups(f, destinationSheet, "Destination", c.ByDestination)

	header := []any{"ID", "Date", "Airline", "Destination", "Traffic", "Currency", "Liters", "Kg", "Price/kg", "Discount %", "Net", "VAT", "Excise", "Gross", "Rate", "Rate provenance"}
	_ = f.SetSheetRow(linesSheet, "A1", &header)
	for i, line := range c.Lines {
		op := line.Operation
		b := line.Breakdown
		row := []any{
			op.ID, op.DateTime.Format(dateTimeLayout), op.AirlineLabel(), op.Destination, string(op.TrafficType),
			string(b.Currency), op.QuantityLiters, op.QuantityKg, op.PricePerKg, op.DiscountPercent,
			b.NetAmount, b.VATAmount, b.ExciseAmount, b.GrossAmount, line.Rate.Rate, string(line.Rate.Provenance),
		}
		_ = f.SetSheetRow(linesSheet, fmt.Sprintf("A%d", i+2), &row)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeGroups(f *excelize.File, sheet, keyTitle string, groups []billing.Group) {
	header := append([]any{keyTitle}, totalsHeader...)
	_ = f.SetSheetRow(sheet, "A1", &header)
	for i, g := range groups {
		row := append([]any{g.Key}, totalsValues(g.Totals)...)
		_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row)
	}
}

// BuildSummaryCSV renders the priced lines of a consolidation followed by a total row.
func BuildSummaryCSV(c billing.Consolidation) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{"id", "date_time", "airline", "destination", "traffic_type", "currency", "quantity_liters", "quantity_kg", "base_amount", "discount_amount", "net_amount", "vat_amount", "excise_amount", "gross_amount", "exchange_rate", "rate_provenance"})
	for _, line := range c.Lines {
		op := line.Operation
		b := line.Breakdown
		_ = writer.Write([]string{
			op.ID,
			op.DateTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
			op.AirlineLabel(),
			op.Destination,
			string(op.TrafficType),
			string(b.Currency),
			formatAmount(op.QuantityLiters),
			formatAmount(op.QuantityKg),
			formatAmount(b.BaseAmount),
			formatAmount(b.DiscountAmount),
			formatAmount(b.NetAmount),
			formatAmount(b.VATAmount),
			formatAmount(b.ExciseAmount),
			formatAmount(b.GrossAmount),
			strconv.FormatFloat(line.Rate.Rate, 'f', -1, 64),
			string(line.Rate.Provenance),
		})
	}
	t := c.Summary.Totals
	_ = writer.Write([]string{
		"TOTAL", "", "", "", "", string(c.Summary.DominantCurrency),
		formatAmount(t.QuantityLiters), formatAmount(t.QuantityKg),
		formatAmount(t.BaseAmount), formatAmount(t.DiscountAmount), formatAmount(t.NetAmount),
		formatAmount(t.VATAmount), formatAmount(t.ExciseAmount), formatAmount(t.GrossAmount),
		"", "",
	})
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}
