package fueling

import (
	"strings"
	"time"
)

// Currency is an ISO code accepted on fueling operations.
type Currency string

const (
	CurrencyBAM Currency = "BAM"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
)

// HomeCurrency is the currency all exchange rates convert into.
const HomeCurrency = CurrencyBAM

// ParseCurrency normalises a currency code.
func ParseCurrency(value string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(value)))
	if !c.IsValid() {
		return "", ErrInvalidCurrency
	}
	return c, nil
}

// IsValid reports whether the currency is supported.
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyBAM, CurrencyEUR, CurrencyUSD:
		return true
	default:
		return false
	}
}

// TrafficType distinguishes taxed domestic deliveries from export deliveries.
type TrafficType string

const (
	TrafficExport   TrafficType = "export"
	TrafficDomestic TrafficType = "domestic"
)

// IsValid reports whether the traffic type is supported.
func (t TrafficType) IsValid() bool {
	return t == TrafficExport || t == TrafficDomestic
}

// FuelOperation is a single refueling event as recorded by operators.
// Calculators treat it as read-only.
type FuelOperation struct {
	ID               string      `json:"id"`
	DateTime         time.Time   `json:"date_time"`
	AirlineID        string      `json:"airline_id"`
	AirlineName      string      `json:"airline_name,omitempty"`
	Destination      string      `json:"destination"`
	Registration     string      `json:"registration,omitempty"`
	DeliveryNote     string      `json:"delivery_note,omitempty"`
	QuantityLiters   float64     `json:"quantity_liters"`
	QuantityKg       float64     `json:"quantity_kg"`
	SpecificDensity  float64     `json:"specific_density"`
	PricePerKg       float64     `json:"price_per_kg"`
	DiscountPercent  float64     `json:"discount_percent"`
	Currency         Currency    `json:"currency"`
	HomeExchangeRate *float64    `json:"home_exchange_rate,omitempty"`
	TotalAmount      *float64    `json:"total_amount,omitempty"`
	TrafficType      TrafficType `json:"traffic_type"`
}

// Normalize returns a copy with the discount clamped and density recomputed.
func (o FuelOperation) Normalize() FuelOperation {
	o.DiscountPercent = ClampPercent(o.DiscountPercent)
	o.SpecificDensity = SpecificDensity(o.QuantityKg, o.QuantityLiters)
	return o
}

// AirlineLabel returns the airline name, falling back to its id.
func (o FuelOperation) AirlineLabel() string {
	if o.AirlineName != "" {
		return o.AirlineName
	}
	return o.AirlineID
}

// Validate checks the quantities and price used by monetary calculations.
func (o FuelOperation) Validate() error {
	if !IsFinite(o.QuantityKg) || o.QuantityKg < 0 {
		return ErrInvalidOperationData
	}
	if !IsFinite(o.QuantityLiters) || o.QuantityLiters < 0 {
		return ErrInvalidOperationData
	}
	if !IsFinite(o.PricePerKg) || o.PricePerKg < 0 {
		return ErrInvalidOperationData
	}
	if !o.TrafficType.IsValid() {
		return ErrInvalidOperationData
	}
	return nil
}

// SpecificDensity returns kg per liter, or 0 when either quantity is unknown.
func SpecificDensity(kg, liters float64) float64 {
	if kg == 0 || liters == 0 || !IsFinite(kg) || !IsFinite(liters) {
		return 0
	}
	return kg / liters
}
