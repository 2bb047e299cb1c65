// Package prices keeps the latest price record per symbol.
package prices

import (
	"sync"

	"github.com/vadiminshakov/tobmaker/internal/domain"
)

// Store latest price record per symbol; records are replaced, never merged.
type Store struct {
	mu      sync.RWMutex
	records map[domain.Symbol]domain.PriceRecord
}

// NewStore creates an empty price store.
func NewStore() *Store {
	return &Store{records: make(map[domain.Symbol]domain.PriceRecord)}
}

// Update replaces the symbol's record.
func (s *Store) Update(symbol domain.Symbol, record domain.PriceRecord) {
	s.mu.Lock()
	s.records[symbol] = record
	s.mu.Unlock()
}

// Latest returns the symbol's record, false if none has arrived yet.
func (s *Store) Latest(symbol domain.Symbol) (domain.PriceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[symbol]
	return r, ok
}
