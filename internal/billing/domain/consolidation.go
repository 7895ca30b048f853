package billing

import (
	"errors"

	fueling "github.com/emirmehmedovic/dataavioservis-sub001/internal/fueling/domain"
)

// Totals accumulates volumes and amounts over a set of operations.
type Totals struct {
	Operations     int     `json:"operations"`
	QuantityLiters float64 `json:"quantity_liters"`
	QuantityKg     float64 `json:"quantity_kg"`
	BaseAmount     float64 `json:"base_amount"`
	DiscountAmount float64 `json:"discount_amount"`
	NetAmount      float64 `json:"net_amount"`
	VATAmount      float64 `json:"vat_amount"`
	ExciseAmount   float64 `json:"excise_amount"`
	GrossAmount    float64 `json:"gross_amount"`
}

func (t *Totals) add(op fueling.FuelOperation, b MonetaryBreakdown) {
	t.Operations++
	t.QuantityLiters += op.QuantityLiters
	t.QuantityKg += op.QuantityKg
	t.BaseAmount = fueling.Round5(t.BaseAmount + b.BaseAmount)
	t.DiscountAmount = fueling.Round5(t.DiscountAmount + b.DiscountAmount)
	t.NetAmount = fueling.Round5(t.NetAmount + b.NetAmount)
	t.VATAmount = fueling.Round5(t.VATAmount + b.VATAmount)
	t.ExciseAmount = fueling.Round5(t.ExciseAmount + b.ExciseAmount)
	t.GrossAmount = fueling.Round5(t.GrossAmount + b.GrossAmount)
}

// CurrencyTotals are the totals of the operations billed in one currency.
type CurrencyTotals struct {
	Currency fueling.Currency `json:"currency"`
	Totals
}

// ConsolidatedSummary is the grand total of a consolidation.
// Totals sums raw amounts regardless of currency; PerCurrency keeps them apart.
type ConsolidatedSummary struct {
	Totals
	PerCurrency      []CurrencyTotals `json:"per_currency"`
	DominantCurrency fueling.Currency `json:"dominant_currency"`
	HomeGrossAmount  float64          `json:"home_gross_amount"`
	EstimatedRates   bool             `json:"estimated_rates"`
}

// Group holds totals for one airline or destination.
type Group struct {
	Key string `json:"key"`
	Totals
}

// Line is one priced operation of a consolidation.
type Line struct {
	Operation fueling.FuelOperation `json:"operation"`
	Breakdown MonetaryBreakdown     `json:"breakdown"`
	Rate      ExchangeRate          `json:"rate"`
}

// Consolidation is the report payload for a filtered set of operations.
type Consolidation struct {
	FilterDescription string              `json:"filter_description"`
	Summary           ConsolidatedSummary `json:"summary"`
	ByAirline         []Group             `json:"by_airline"`
	ByDestination     []Group             `json:"by_destination"`
	Lines             []Line              `json:"lines"`
}

// Aggregator folds operations into consolidated summaries.
type Aggregator struct {
	calculator *Calculator
	normalizer *CurrencyNormalizer
}

// NewAggregator constructs an aggregator.
func NewAggregator(calculator *Calculator, normalizer *CurrencyNormalizer) (*Aggregator, error) {
	if calculator == nil {
		return nil, errors.New("billing aggregator: nil calculator")
	}
	if normalizer == nil {
		normalizer = NewCurrencyNormalizer(DefaultFallbackRates())
	}
	return &Aggregator{calculator: calculator, normalizer: normalizer}, nil
}

// Consolidate prices every operation and accumulates the results in input order.
// An empty input yields zero totals.
func (a *Aggregator) Consolidate(ops []fueling.FuelOperation, filterDescription string) (Consolidation, error) {
	out := Consolidation{
		FilterDescription: filterDescription,
		Summary: ConsolidatedSummary{
			PerCurrency:      []CurrencyTotals{},
			DominantCurrency: fueling.HomeCurrency,
		},
		ByAirline:     []Group{},
		ByDestination: []Group{},
		Lines:         make([]Line, 0, len(ops)),
	}

	currencyIndex := make(map[fueling.Currency]int)
	airlineIndex := make(map[string]int)
	destinationIndex := make(map[string]int)

	for _, op := range ops {
		breakdown, err := a.calculator.Calculate(op)
		if err != nil {
			return Consolidation{}, err
		}
		rate, err := a.normalizer.Resolve(breakdown.Currency, op.HomeExchangeRate)
		if err != nil {
			return Consolidation{}, err
		}

		out.Lines = append(out.Lines, Line{Operation: op, Breakdown: breakdown, Rate: rate})
		out.Summary.Totals.add(op, breakdown)
		out.Summary.HomeGrossAmount = fueling.Round5(out.Summary.HomeGrossAmount + fueling.Round5(breakdown.GrossAmount*rate.Rate))
		if rate.Estimated() {
			out.Summary.EstimatedRates = true
		}

		idx, ok := currencyIndex[breakdown.Currency]
		if !ok {
			idx = len(out.Summary.PerCurrency)
			currencyIndex[breakdown.Currency] = idx
			out.Summary.PerCurrency = append(out.Summary.PerCurrency, CurrencyTotals{Currency: breakdown.Currency})
		}
		out.Summary.PerCurrency[idx].add(op, breakdown)

		out.ByAirline = addToGroup(out.ByAirline, airlineIndex, op.AirlineLabel(), op, breakdown)
		out.ByDestination = addToGroup(out.ByDestination, destinationIndex, op.Destination, op, breakdown)
	}

	out.Summary.DominantCurrency = dominantCurrency(out.Summary.PerCurrency)
	return out, nil
}

func addToGroup(groups []Group, index map[string]int, key string, op fueling.FuelOperation, b MonetaryBreakdown) []Group {
	idx, ok := index[key]
	if !ok {
		idx = len(groups)
		index[key] = idx
		groups = append(groups, Group{Key: key})
	}
	groups[idx].add(op, b)
	return groups
}

// dominantCurrency picks the most frequent currency; ties keep the first encountered.
func dominantCurrency(perCurrency []CurrencyTotals) fueling.Currency {
	dominant := fueling.HomeCurrency
	best := 0
	for _, c := range perCurrency {
		if c.Operations > best {
			best = c.Operations
			dominant = c.Currency
		}
	}
	return dominant
}
