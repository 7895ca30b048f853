package interfaces

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	billingapp "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/application"
	billing "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/domain"
)

// BuildInvoicePDF renders a minimal invoice for one operation.
func BuildInvoicePDF(inv billingapp.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	op := inv.Operation
	pdf.Cell(0, 8, fmt.Sprintf("Fueling Invoice %s", op.ID))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Issued: %s", inv.IssuedAt.Format(time.RFC3339)),
		fmt.Sprintf("Operation date: %s", op.DateTime.Format(dateTimeLayout)),
		tr(fmt.Sprintf("Airline: %s", op.AirlineLabel())),
		tr(fmt.Sprintf("Destination: %s", op.Destination)),
		fmt.Sprintf("Traffic: %s", op.TrafficType),
	}
	if op.Registration != "" {
		lines = append(lines, tr("Aircraft: "+op.Registration))
	}
	if op.DeliveryNote != "" {
		lines = append(lines, tr("Delivery note: "+op.DeliveryNote))
	}
	lines = append(lines,
		fmt.Sprintf("Quantity: %.2f L / %.2f kg (density %.4f)", op.QuantityLiters, op.QuantityKg, op.SpecificDensity),
		fmt.Sprintf("Price per kg: %.5f %s", op.PricePerKg, inv.Breakdown.Currency),
		fmt.Sprintf("Discount: %.2f%%", op.DiscountPercent),
	)
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, string(inv.Breakdown.Currency), "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, string(inv.HomeBreakdown.Currency), "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range breakdownRows(inv.Breakdown, inv.HomeBreakdown) {
		pdf.CellFormat(60, 6, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", row.amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, fmt.Sprintf("%.2f", row.home), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
	pdf.Cell(0, 6, fmt.Sprintf("Exchange rate %s/BAM: %.5f (%s)", inv.ExchangeRate.Currency, inv.ExchangeRate.Rate, inv.ExchangeRate.Provenance))
	pdf.Ln(5)
	if inv.ExchangeRate.Estimated() {
		pdf.Cell(0, 6, "Note: the exchange rate is an estimate")
		pdf.Ln(5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type breakdownRow struct {
	label  string
	amount float64
	home   float64
}

func breakdownRows(b, home billing.MonetaryBreakdown) []breakdownRow {
	return []breakdownRow{
		{"Base amount", b.BaseAmount, home.BaseAmount},
		{"Discount", b.DiscountAmount, home.DiscountAmount},
		{"Net amount", b.NetAmount, home.NetAmount},
		{"VAT", b.VATAmount, home.VATAmount},
		{"Excise", b.ExciseAmount, home.ExciseAmount},
		{"Gross amount", b.GrossAmount, home.GrossAmount},
	}
}

type invoiceXML struct {
	XMLName       xml.Name   `xml:"Invoice"`
	ID            string     `xml:"id,attr"`
	IssuedAt      string     `xml:"IssuedAt"`
	OperationDate string     `xml:"OperationDate"`
	AirlineID     string     `xml:"Airline>ID"`
	AirlineName   string     `xml:"Airline>Name"`
	Destination   string     `xml:"Destination"`
	Registration  string     `xml:"Registration,omitempty"`
	DeliveryNote  string     `xml:"DeliveryNote,omitempty"`
	TrafficType   string     `xml:"TrafficType"`
	Liters        string     `xml:"Quantity>Liters"`
	Kg            string     `xml:"Quantity>Kg"`
	Density       string     `xml:"Quantity>Density"`
	PricePerKg    string     `xml:"PricePerKg"`
	Discount      string     `xml:"DiscountPercent"`
	Amounts       amountsXML `xml:"Amounts"`
	HomeAmounts   amountsXML `xml:"HomeAmounts"`
	ExchangeRate  rateXML    `xml:"ExchangeRate"`
}

type amountsXML struct {
	Currency string `xml:"currency,attr"`
	Base     string `xml:"Base"`
	Discount string `xml:"Discount"`
	Net      string `xml:"Net"`
	VAT      string `xml:"VAT"`
	Excise   string `xml:"Excise"`
	Gross    string `xml:"Gross"`
}

type rateXML struct {
	Currency   string `xml:"currency,attr"`
	Provenance string `xml:"provenance,attr"`
	Value      string `xml:",chardata"`
}

func toAmountsXML(b billing.MonetaryBreakdown) amountsXML {
	return amountsXML{
		Currency: string(b.Currency),
		Base:     formatAmount(b.BaseAmount),
		Discount: formatAmount(b.DiscountAmount),
		Net:      formatAmount(b.NetAmount),
		VAT:      formatAmount(b.VATAmount),
		Excise:   formatAmount(b.ExciseAmount),
		Gross:    formatAmount(b.GrossAmount),
	}
}

// BuildInvoiceXML renders an invoice as XML for accounting imports.
func BuildInvoiceXML(inv billingapp.Invoice) ([]byte, error) {
	op := inv.Operation
	doc := invoiceXML{
		ID:            op.ID,
		IssuedAt:      inv.IssuedAt.UTC().Format(time.RFC3339),
		OperationDate: op.DateTime.UTC().Format(time.RFC3339),
		AirlineID:     op.AirlineID,
		AirlineName:   op.AirlineLabel(),
		Destination:   op.Destination,
		Registration:  op.Registration,
		DeliveryNote:  op.DeliveryNote,
		TrafficType:   string(op.TrafficType),
		Liters:        formatAmount(op.QuantityLiters),
		Kg:            formatAmount(op.QuantityKg),
		Density:       formatAmount(op.SpecificDensity),
		PricePerKg:    formatAmount(op.PricePerKg),
		Discount:      formatAmount(op.DiscountPercent),
		Amounts:       toAmountsXML(inv.Breakdown),
		HomeAmounts:   toAmountsXML(inv.HomeBreakdown),
		ExchangeRate: rateXML{
			Currency:   string(inv.ExchangeRate.Currency),
			Provenance: string(inv.ExchangeRate.Provenance),
			Value:      formatAmount(inv.ExchangeRate.Rate),
		},
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
