// Package core holds the ledger, conversion and aggregation engine.
//
// This file contains the currency conversion functions. Conversion is pure:
// an entered amount plus the exchange rate at that instant yields both
// currency representations, rounded half-up to two decimals exactly once.
package core

import "github.com/shopspring/decimal"

// ParseAmount converts a user-typed amount string into a decimal. It accepts
// both dot (12.34) and comma (12,34) separators and rejects anything that is
// not a finite positive number.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = trimAmount(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

func trimAmount(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t':
			continue
		case ',':
			out = append(out, '.')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

// Convert maps an entered amount in one currency to both representations
// using the given rate (local units per one reference unit).
//
// Entered in reference: amountLocal = entered * rate.
// Entered in local:     amountReference = entered / rate.
// Both outputs are rounded half-up to 2 decimals; intermediate division runs
// at full precision so rounding happens once, at the boundary.
func Convert(entered decimal.Decimal, currency Currency, rate decimal.Decimal) (amountReference, amountLocal decimal.Decimal, err error) {
	if !entered.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrInvalidAmount
	}
	if !rate.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrInvalidRate
	}
	switch currency {
	case CurrencyReference:
		amountReference = entered.Round(2)
		amountLocal = entered.Mul(rate).Round(2)
	case CurrencyLocal:
		amountLocal = entered.Round(2)
		amountReference = entered.Div(rate).Round(2)
	default:
		return decimal.Zero, decimal.Zero, ErrInvalidInput
	}
	return amountReference, amountLocal, nil
}
