// Package balances keeps the latest balances snapshot of the account.
package balances

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tobmaker/internal/domain"
)

// Store latest balances snapshot; each snapshot replaces the previous one wholesale.
type Store struct {
	mu       sync.RWMutex
	balances []domain.Balance
}

// NewStore creates a store seeded with initial balances.
func NewStore(initial ...domain.Balance) *Store {
	s := &Store{}
	s.ReplaceAll(initial)
	return s
}

// ReplaceAll replaces the whole collection.
func (s *Store) ReplaceAll(balances []domain.Balance) {
	cp := make([]domain.Balance, len(balances))
	copy(cp, balances)

	s.mu.Lock()
	s.balances = cp
	s.mu.Unlock()
}

// AvailableFor returns the available amount of the currency, false if there is no entry for it.
func (s *Store) AvailableFor(currency string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.balances {
		if b.Currency == currency {
			return b.Available, true
		}
	}

	return decimal.Zero, false
}

// All returns a copy of the current snapshot.
func (s *Store) All() []domain.Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]domain.Balance, len(s.balances))
	copy(cp, s.balances)
	return cp
}

// Len returns the number of entries in the current snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.balances)
}
