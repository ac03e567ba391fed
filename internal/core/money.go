// Package core provides the domain types shared by the API, the worker and
// the client.
//
// This file contains amount parsing and formatting helpers. Amounts are
// currency-agnostic decimals.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The API speaks plain JSON numbers for amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseAmount converts user input to a positive decimal amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted.
// Signs, exponents, zero and anything non-numeric yield ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if s == "." {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
