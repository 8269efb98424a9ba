package payment

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a decimal currency amount to the processor's integer
// minor-unit representation (e.g. 12.50 EUR → 1250 cents), rounding half
// away from zero. Decimal arithmetic keeps the conversion exact and
// deterministic: 2-decimal inputs never pick up float drift, and repeated
// calls for the same amount always yield the same integer.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
