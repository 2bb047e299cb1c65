// Package domain defines core data structures used throughout the trading client.
package domain

import (
	"sort"
	"strings"
)

// symbolSeparator joins the two currency codes of a symbol.
const symbolSeparator = "-"

// Symbol tradable instrument, e.g. BTC-USD.
type Symbol string

// String returns the string representation.
func (s Symbol) String() string {
	return string(s)
}

// AskCurrency returns the currency before the separator, the one that is sold on the ask side.
// Returns empty string if the symbol has no separator.
func (s Symbol) AskCurrency() string {
	ask, _, found := strings.Cut(string(s), symbolSeparator)
	if !found {
		return ""
	}
	return ask
}

// BidCurrency returns the currency after the separator, the one that is spent on the bid side.
// Returns empty string if the symbol has no separator.
func (s Symbol) BidCurrency() string {
	_, bid, found := strings.Cut(string(s), symbolSeparator)
	if !found {
		return ""
	}
	return bid
}

// Trades reports whether currency is one of the two sides of the symbol.
func (s Symbol) Trades(currency string) bool {
	if currency == "" {
		return false
	}
	return currency == s.AskCurrency() || currency == s.BidCurrency()
}

// SortSymbols sorts symbols in place lexicographically.
func SortSymbols(symbols []Symbol) {
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })
}
