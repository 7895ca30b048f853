package billing

import (
	"fmt"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

const (
	// DefaultEURFallbackRate is the fixed BAM/EUR currency board rate.
	DefaultEURFallbackRate = 1.95583
	// DefaultUSDFallbackRate is an estimate used when no stored USD rate exists.
	DefaultUSDFallbackRate = 1.8
)

// RateProvenance tells callers whether a rate can be trusted for documents.
type RateProvenance string

const (
	RateSystem    RateProvenance = "system"
	RateEstimated RateProvenance = "estimated"
)

// ExchangeRate converts one unit of Currency into the home currency.
type ExchangeRate struct {
	Currency   fueling.Currency `json:"currency"`
	Rate       float64          `json:"rate"`
	Provenance RateProvenance   `json:"provenance"`
}

// Estimated reports whether the rate is a fallback estimate.
func (r ExchangeRate) Estimated() bool { return r.Provenance == RateEstimated }

// FallbackRates are used when an operation carries no usable stored rate.
type FallbackRates struct {
	EUR float64 `yaml:"eur" json:"eur"`
	USD float64 `yaml:"usd" json:"usd"`
}

// DefaultFallbackRates returns the built-in fallback rates.
func DefaultFallbackRates() FallbackRates {
	return FallbackRates{EUR: DefaultEURFallbackRate, USD: DefaultUSDFallbackRate}
}

// CurrencyNormalizer resolves effective home-currency exchange rates.
type CurrencyNormalizer struct {
	fallback FallbackRates
}

// NewCurrencyNormalizer constructs a normalizer. Unset or invalid fallbacks use the defaults.
func NewCurrencyNormalizer(fallback FallbackRates) *CurrencyNormalizer {
	if !validRate(fallback.EUR) {
		fallback.EUR = DefaultEURFallbackRate
	}
	if !validRate(fallback.USD) {
		fallback.USD = DefaultUSDFallbackRate
	}
	return &CurrencyNormalizer{fallback: fallback}
}

// Fallback returns the effective fallback rates.
func (n *CurrencyNormalizer) Fallback() FallbackRates { return n.fallback }

// Resolve returns the rate to BAM for currency, preferring a valid stored rate.
func (n *CurrencyNormalizer) Resolve(currency fueling.Currency, stored *float64) (ExchangeRate, error) {
	if currency == "" {
		currency = fueling.HomeCurrency
	}
	switch currency {
	case fueling.CurrencyBAM:
		return ExchangeRate{Currency: currency, Rate: 1, Provenance: RateSystem}, nil
	case fueling.CurrencyEUR:
		if stored != nil && validRate(*stored) {
			return ExchangeRate{Currency: currency, Rate: *stored, Provenance: RateSystem}, nil
		}
		return ExchangeRate{Currency: currency, Rate: n.fallback.EUR, Provenance: RateSystem}, nil
	case fueling.CurrencyUSD:
		if stored != nil && validRate(*stored) {
			return ExchangeRate{Currency: currency, Rate: *stored, Provenance: RateSystem}, nil
		}
		return ExchangeRate{Currency: currency, Rate: n.fallback.USD, Provenance: RateEstimated}, nil
	default:
		return ExchangeRate{}, fmt.Errorf("billing: currency %q: %w", currency, fueling.ErrInvalidCurrency)
	}
}

// ConvertBreakdown expresses a breakdown in the home currency.
func ConvertBreakdown(b MonetaryBreakdown, rate ExchangeRate) MonetaryBreakdown {
	return MonetaryBreakdown{
		BaseAmount:     fueling.Round5(b.BaseAmount * rate.Rate),
		DiscountAmount: fueling.Round5(b.DiscountAmount * rate.Rate),
		NetAmount:      fueling.Round5(b.NetAmount * rate.Rate),
		VATAmount:      fueling.Round5(b.VATAmount * rate.Rate),
		ExciseAmount:   fueling.Round5(b.ExciseAmount * rate.Rate),
		GrossAmount:    fueling.Round5(b.GrossAmount * rate.Rate),
		Currency:       fueling.HomeCurrency,
	}
}

func validRate(rate float64) bool {
	return fueling.IsFinite(rate) && rate > 0
}
