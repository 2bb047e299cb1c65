// Package decimals holds the rounding helpers used wherever prices and quantities are computed.
package decimals

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MetaPrecision is the precision venue reference values (tick, min size, lot) are kept at.
const MetaPrecision = 8

// Round rounds d half away from zero to the given number of decimal places.
func Round(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// RoundDown truncates d towards negative infinity at the given number of decimal places.
// It never rounds a quantity up, so an order sized with it can't exceed the balance it was derived from.
func RoundDown(d decimal.Decimal, places int32) decimal.Decimal {
	return d.RoundFloor(places)
}

// Places returns the number of significant decimal places of d (trailing zeros are ignored).
func Places(d decimal.Decimal) int32 {
	s := d.String()
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}

	return int32(len(s) - i - 1)
}

// FromScaled decodes a venue (value, scale) pair into value * 10^-scale, rounded to MetaPrecision.
func FromScaled(value int64, scale int32) decimal.Decimal {
	return Round(decimal.New(value, -scale), MetaPrecision)
}
