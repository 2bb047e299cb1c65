package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus venue order status.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusPartial   OrderStatus = "partial"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusExpired   OrderStatus = "expired"
)

// IsActive reports whether an order with this status still rests on the book.
func (s OrderStatus) IsActive() bool {
	return s == OrderStatusOpen || s == OrderStatusPartial
}

// Order one of the account's orders as reported by the venue.
type Order struct {
	OrderID      string
	ClOrdID      string
	Symbol       Symbol
	Side         Side
	OrdType      string
	TimeInForce  TimeInForce
	Status       OrderStatus
	Price        decimal.Decimal
	OrderQty     decimal.Decimal
	LeavesQty    decimal.Decimal
	CumQty       decimal.Decimal
	AvgPx        decimal.Decimal
	Text         string
	TransactTime time.Time
}

// Merge applies an execution report to the order. The status is always taken from the report;
// other fields only when the report carries them, since cancel and status reports are often partial.
func (o *Order) Merge(report Order) {
	o.Status = report.Status
	if report.ClOrdID != "" {
		o.ClOrdID = report.ClOrdID
	}
	if report.Symbol != "" {
		o.Symbol = report.Symbol
	}
	if report.Side != "" {
		o.Side = report.Side
	}
	if report.OrdType != "" {
		o.OrdType = report.OrdType
	}
	if report.TimeInForce != "" {
		o.TimeInForce = report.TimeInForce
	}
	if !report.Price.IsZero() {
		o.Price = report.Price
	}
	if !report.OrderQty.IsZero() {
		o.OrderQty = report.OrderQty
	}
	if !report.LeavesQty.IsZero() || report.Status == OrderStatusFilled {
		o.LeavesQty = report.LeavesQty
	}
	if !report.CumQty.IsZero() {
		o.CumQty = report.CumQty
	}
	if !report.AvgPx.IsZero() {
		o.AvgPx = report.AvgPx
	}
	if report.Text != "" {
		o.Text = report.Text
	}
	if !report.TransactTime.IsZero() {
		o.TransactTime = report.TransactTime
	}
}
