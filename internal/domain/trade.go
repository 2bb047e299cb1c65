package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Command is an order placement or cancellation emitted by the strategy.
type Command struct {
	// Action place or cancel.
	Action Action
	// Symbol instrument of a placement.
	Symbol Symbol
	// Side buy or sell.
	Side Side
	// TimeInForce lifetime of a placement.
	TimeInForce TimeInForce
	// Quantity base currency quantity of a placement.
	Quantity decimal.Decimal
	// Price limit price of a placement.
	Price decimal.Decimal
	// OrderID venue order id of a cancellation.
	OrderID string
}

// NewLimitOrderCommand creates a placement command.
func NewLimitOrderCommand(symbol Symbol, tif TimeInForce, side Side, quantity, price decimal.Decimal) Command {
	return Command{
		Action:      ActionPlaceLimit,
		Symbol:      symbol,
		Side:        side,
		TimeInForce: tif,
		Quantity:    quantity,
		Price:       price,
	}
}

// NewCancelCommand creates a cancellation command for a resting order.
func NewCancelCommand(order Order) Command {
	return Command{
		Action:  ActionCancel,
		Symbol:  order.Symbol,
		Side:    order.Side,
		Price:   order.Price,
		OrderID: order.OrderID,
	}
}

// String returns a human-readable string representation.
func (c Command) String() string {
	if c.Action == ActionCancel {
		return fmt.Sprintf("%s order %s (%s %s @ %s)", c.Action, c.OrderID, c.Symbol, c.Side, c.Price)
	}
	return fmt.Sprintf("%s %s %s %s qty: %s price: %s", c.Action, c.Symbol, c.Side, c.TimeInForce, c.Quantity, c.Price)
}
