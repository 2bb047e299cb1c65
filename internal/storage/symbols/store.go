// Package symbols keeps venue reference data for tradable symbols.
package symbols

import (
	"sync"

	"github.com/vadiminshakov/tobmaker/internal/domain"
)

// Store symbol metadata, replaced atomically on every symbols snapshot.
type Store struct {
	mu    sync.RWMutex
	metas map[domain.Symbol]domain.SymbolMeta
	ready bool
}

// NewStore creates an empty metadata store.
func NewStore() *Store {
	return &Store{metas: make(map[domain.Symbol]domain.SymbolMeta)}
}

// ReplaceAll replaces all metadata with the snapshot.
func (s *Store) ReplaceAll(metas map[domain.Symbol]domain.SymbolMeta) {
	cp := make(map[domain.Symbol]domain.SymbolMeta, len(metas))
	for symbol, m := range metas {
		cp[symbol] = m
	}

	s.mu.Lock()
	s.metas = cp
	s.ready = true
	s.mu.Unlock()
}

// Ready reports whether at least one snapshot has been applied.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.ready
}

// Meta returns the metadata of the symbol.
func (s *Store) Meta(symbol domain.Symbol) (domain.SymbolMeta, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.metas[symbol]
	return m, ok
}

// Open returns the symbols currently open for trading, sorted.
func (s *Store) Open() []domain.Symbol {
	s.mu.RLock()
	open := make([]domain.Symbol, 0, len(s.metas))
	for symbol, m := range s.metas {
		if m.IsOpen() {
			open = append(open, symbol)
		}
	}
	s.mu.RUnlock()

	domain.SortSymbols(open)
	return open
}

// Funded returns the open symbols for which at least one of the two currencies
// has a positive available balance, sorted and without duplicates.
func (s *Store) Funded(balances []domain.Balance) []domain.Symbol {
	funded := make([]domain.Symbol, 0)
	for _, symbol := range s.Open() {
		for _, b := range balances {
			if b.Available.IsPositive() && symbol.Trades(b.Currency) {
				funded = append(funded, symbol)
				break
			}
		}
	}

	return funded
}
