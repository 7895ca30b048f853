package billing

import (
	"errors"
	"fmt"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

const (
	// DefaultVATRate applies to domestic deliveries.
	DefaultVATRate = 0.17
	// DefaultExcisePerLiter is the fixed excise levy per liter on domestic deliveries.
	DefaultExcisePerLiter = 0.30
)

// Rates holds the tax parameters of the calculator.
type Rates struct {
	VATRate        float64 `yaml:"vat_rate" json:"vat_rate"`
	ExcisePerLiter float64 `yaml:"excise_per_liter" json:"excise_per_liter"`
}

// DefaultRates returns the statutory defaults.
func DefaultRates() Rates {
	return Rates{VATRate: DefaultVATRate, ExcisePerLiter: DefaultExcisePerLiter}
}

// MonetaryBreakdown is the priced view of one operation, in the operation currency.
type MonetaryBreakdown struct {
	BaseAmount     float64          `json:"base_amount"`
	DiscountAmount float64          `json:"discount_amount"`
	NetAmount      float64          `json:"net_amount"`
	VATAmount      float64          `json:"vat_amount"`
	ExciseAmount   float64          `json:"excise_amount"`
	GrossAmount    float64          `json:"gross_amount"`
	Currency       fueling.Currency `json:"currency"`
}

// Calculator prices fueling operations. It holds no mutable state.
type Calculator struct {
	rates Rates
}

// NewCalculator constructs a calculator.
func NewCalculator(rates Rates) (*Calculator, error) {
	if !fueling.IsFinite(rates.VATRate) || rates.VATRate < 0 {
		return nil, errors.New("billing calculator: invalid vat rate")
	}
	if !fueling.IsFinite(rates.ExcisePerLiter) || rates.ExcisePerLiter < 0 {
		return nil, errors.New("billing calculator: invalid excise rate")
	}
	return &Calculator{rates: rates}, nil
}

// Rates returns the configured tax parameters.
func (c *Calculator) Rates() Rates { return c.rates }

// Calculate derives the monetary breakdown of a single operation.
func (c *Calculator) Calculate(op fueling.FuelOperation) (MonetaryBreakdown, error) {
	if err := op.Validate(); err != nil {
		return MonetaryBreakdown{}, fmt.Errorf("billing: operation %q: %w", op.ID, err)
	}
	op = op.Normalize()

	currency := fueling.HomeCurrency
	if op.Currency != "" {
		parsed, err := fueling.ParseCurrency(string(op.Currency))
		if err != nil {
			return MonetaryBreakdown{}, fmt.Errorf("billing: operation %q: %w", op.ID, err)
		}
		currency = parsed
	}

	base := fueling.Round5(op.QuantityKg * op.PricePerKg)
	discount := fueling.Round5(base * (op.DiscountPercent / 100))
	net := fueling.Round5(base - discount)
	if op.TotalAmount != nil && fueling.IsFinite(*op.TotalAmount) && *op.TotalAmount > 0 {
		net = *op.TotalAmount
	}

	out := MonetaryBreakdown{
		BaseAmount:     base,
		DiscountAmount: discount,
		NetAmount:      net,
		GrossAmount:    net,
		Currency:       currency,
	}
	if op.TrafficType != fueling.TrafficDomestic {
		return out, nil
	}

	out.VATAmount = fueling.Round5(net * c.rates.VATRate)
	out.ExciseAmount = fueling.Round5(op.QuantityLiters * c.rates.ExcisePerLiter)
	out.GrossAmount = fueling.Round5(net + out.VATAmount + out.ExciseAmount)
	return out, nil
}
