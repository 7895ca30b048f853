package rates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	billing "github.com/emirmehmedovic/dataavioservis-sub001/internal/billing/domain"
)

// File is the billing rates file layout.
//
//	taxes:
//	  vat_rate: 0.17
//	  excise_per_liter: 0.30
//	fallback_rates:
//	  eur: 1.95583
//	  usd: 1.8
type File struct {
	Taxes         billing.Rates         `yaml:"taxes"`
	FallbackRates billing.FallbackRates `yaml:"fallback_rates"`
}

// Defaults returns the built-in rates.
func Defaults() File {
	return File{Taxes: billing.DefaultRates(), FallbackRates: billing.DefaultFallbackRates()}
}

// Load reads a rates file. An empty path returns the defaults; keys missing
// from the file keep their default values.
func Load(path string) (File, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("billing rates: %w", err)
	}
	return Parse(data)
}

// Parse decodes rates YAML over the defaults.
func Parse(data []byte) (File, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("billing rates: %w", err)
	}
	if cfg.Taxes.VATRate < 0 || cfg.Taxes.ExcisePerLiter < 0 {
		return Defaults(), fmt.Errorf("billing rates: negative tax rate")
	}
	return cfg, nil
}

// Build constructs the calculator, normalizer and aggregator for the rates.
func (f File) Build() (*billing.Calculator, *billing.CurrencyNormalizer, *billing.Aggregator, error) {
	calc, err := billing.NewCalculator(f.Taxes)
	if err != nil {
		return nil, nil, nil, err
	}
	normalizer := billing.NewCurrencyNormalizer(f.FallbackRates)
	aggregator, err := billing.NewAggregator(calc, normalizer)
	if err != nil {
		return nil, nil, nil, err
	}
	return calc, normalizer, aggregator, nil
}
