package fueling

import (
	"math"

	"github.com/shopspring/decimal"
)

// MonetaryPrecision is the number of decimals kept for every computed amount.
const MonetaryPrecision = 5

// Round5 rounds a value half away from zero to MonetaryPrecision decimals.
// Non-finite values are returned unchanged.
func Round5(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	return decimal.NewFromFloat(value).Round(MonetaryPrecision).InexactFloat64()
}

// ClampPercent clamps a percentage into [0,100]. NaN becomes 0.
func ClampPercent(value float64) float64 {
	switch {
	case math.IsNaN(value), value < 0:
		return 0
	case value > 100:
		return 100
	default:
		return value
	}
}

// IsFinite reports whether value is neither NaN nor infinite.
func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
