// Package ledger tracks the account's own orders as reported by the venue.
package ledger

import (
	"iter"
	"sync"

	"github.com/vadiminshakov/tobmaker/internal/domain"
)

// Outcome what applying an execution report did to the ledger.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeUpdated
	OutcomeRemoved
	// OutcomeIgnored a cancel report for an order the ledger never knew about.
	OutcomeIgnored
)

// String returns the string representation.
func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	case OutcomeRemoved:
		return "removed"
	case OutcomeIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Ledger the account's orders in the order they became known.
type Ledger struct {
	mu     sync.RWMutex
	orders []domain.Order
}

// New creates a ledger seeded with initial orders.
func New(initial ...domain.Order) *Ledger {
	l := &Ledger{}
	l.ReplaceSnapshot(initial)
	return l
}

// ReplaceSnapshot replaces all tracked orders with the venue snapshot.
func (l *Ledger) ReplaceSnapshot(orders []domain.Order) {
	cp := make([]domain.Order, len(orders))
	copy(cp, orders)

	l.mu.Lock()
	l.orders = cp
	l.mu.Unlock()
}

// ApplyUpdate reconciles one execution report. A known order is removed when cancelled and
// merged otherwise; an unknown order is inserted unless the report is a cancel.
func (l *Ledger) ApplyUpdate(report domain.Order) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(report.OrderID)
	switch {
	case i >= 0 && report.Status == domain.OrderStatusCancelled:
		l.orders = append(l.orders[:i], l.orders[i+1:]...)
		return OutcomeRemoved
	case i >= 0:
		l.orders[i].Merge(report)
		return OutcomeUpdated
	case report.Status == domain.OrderStatusCancelled:
		return OutcomeIgnored
	default:
		l.orders = append(l.orders, report)
		return OutcomeInserted
	}
}

func (l *Ledger) indexOf(orderID string) int {
	for i := range l.orders {
		if l.orders[i].OrderID == orderID {
			return i
		}
	}
	return -1
}

// Get returns the order with the given id.
func (l *Ledger) Get(orderID string) (domain.Order, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := l.indexOf(orderID)
	if i < 0 {
		return domain.Order{}, false
	}
	return l.orders[i], true
}

// Len returns the number of tracked orders.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.orders)
}

// OrdersFor yields the symbol's orders, only open and partially filled ones if activeOnly is set.
// Every iteration works on a fresh copy taken under the read lock, so the sequence can be ranged
// over again and the caller may touch the ledger while iterating.
func (l *Ledger) OrdersFor(symbol domain.Symbol, activeOnly bool) iter.Seq[domain.Order] {
	return func(yield func(domain.Order) bool) {
		l.mu.RLock()
		matched := make([]domain.Order, 0, len(l.orders))
		for _, o := range l.orders {
			if o.Symbol != symbol || activeOnly && !o.Status.IsActive() {
				continue
			}
			matched = append(matched, o)
		}
		l.mu.RUnlock()

		for _, o := range matched {
			if !yield(o) {
				return
			}
		}
	}
}
