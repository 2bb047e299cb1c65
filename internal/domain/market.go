package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SymbolStatus trading status of a symbol.
type SymbolStatus string

// SymbolStatusOpen the only status orders can be placed in.
const SymbolStatusOpen SymbolStatus = "open"

// SymbolMeta venue reference data for one symbol.
type SymbolMeta struct {
	Status       SymbolStatus
	MinIncrement decimal.Decimal
	MinOrderSize decimal.Decimal
	LotSize      decimal.Decimal
}

// IsOpen reports whether the symbol accepts orders.
func (m SymbolMeta) IsOpen() bool {
	return m.Status == SymbolStatusOpen
}

// BookSide bids or asks.
type BookSide int

const (
	BookSideBid BookSide = iota
	BookSideAsk
)

// String returns the string representation.
func (s BookSide) String() string {
	if s == BookSideAsk {
		return "asks"
	}
	return "bids"
}

// Level aggregated price level of an order book side.
type Level struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Count    int
}

// IsEmpty reports whether the level carries no orders and must not be kept in a book.
func (l Level) IsEmpty() bool {
	return l.Count == 0
}

// PriceRecord last candle received for a symbol; Last is the last traded price.
type PriceRecord struct {
	ObservedAt time.Time
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
	Last       decimal.Decimal
}

// Age returns how old the record is at now.
func (r PriceRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.ObservedAt)
}

// IsFresh reports whether the record is at most window old at now.
func (r PriceRecord) IsFresh(now time.Time, window time.Duration) bool {
	return r.Age(now) <= window
}

// Balance available amount of a currency.
type Balance struct {
	Currency  string
	Available decimal.Decimal
}
