package currency

import (
	"strings"

	"golang.org/x/text/currency"
)

// MaxMinorUnit is the largest number of decimal places stored for a currency
const MaxMinorUnit = 4

// Currency is one row of ISO-4217 master data
type Currency struct {
	Code        string `json:"code"`
	NumericCode int    `json:"numeric_code"`
	MinorUnit   int    `json:"minor_unit"`
	Name        string `json:"name"`
}

// NormalizeCode upper-cases and trims a currency code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks a currency before it is written to master data
func (c *Currency) Validate() error {
	c.Code = NormalizeCode(c.Code)
	if _, err := currency.ParseISO(c.Code); err != nil {
		return ErrInvalidCurrencyCode
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrMissingCurrencyName
	}
	if c.MinorUnit < 0 || c.MinorUnit > MaxMinorUnit {
		return ErrInvalidMinorUnit
	}
	return nil
}
