package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultFraction is used for currencies go-money does not know about
const DefaultFraction = 2

// Fraction returns the number of minor-unit digits for an ISO currency code
func Fraction(code string) int {
	if cur := gomoney.GetCurrency(strings.ToUpper(code)); cur != nil {
		return cur.Fraction
	}
	return DefaultFraction
}

// ToMinorUnits converts a human-readable decimal amount to integer minor units.
// "12.34" with 2 fraction digits → 1234. Amounts with more digits than the
// currency allows are rejected rather than rounded.
func ToMinorUnits(amount string, fraction int) (int64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, fmt.Errorf("amount is required")
	}
	if fraction < 0 {
		return 0, fmt.Errorf("invalid fraction %d", fraction)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount format: %q", amount)
	}

	shifted := d.Shift(int32(fraction))
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", amount, fraction)
	}

	bi := shifted.BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("amount %s is out of range", amount)
	}
	return bi.Int64(), nil
}

// FromMinorUnits renders minor units as a fixed-point decimal string.
// 1234 with 2 fraction digits → "12.34"
func FromMinorUnits(units int64, fraction int) string {
	return decimal.New(units, -int32(fraction)).StringFixed(int32(fraction))
}

// Display formats minor units with the currency's symbol and grouping, e.g. "£1,234.56"
func Display(units int64, code string) string {
	return gomoney.New(units, strings.ToUpper(code)).Display()
}
