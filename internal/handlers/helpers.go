package handlers

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// parsePrice parses a decimal money amount from its string form, rejecting
// negatives. Prices travel as strings so no float ever touches them.
func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("not a decimal amount: %q", s)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("amount must not be negative: %q", s)
	}
	return d, nil
}
