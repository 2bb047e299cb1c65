// Package orderbook keeps per-symbol L2 books rebuilt from snapshot and delta messages.
package orderbook

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/tobmaker/internal/domain"
)

// side price levels keyed by the canonical price string.
type side map[string]domain.Level

type book struct {
	bids side
	asks side
}

func (b *book) side(s domain.BookSide) side {
	if s == domain.BookSideAsk {
		return b.asks
	}
	return b.bids
}

// Store holds the books of all subscribed symbols. One writer (the feed) and many readers.
type Store struct {
	mu    sync.RWMutex
	books map[domain.Symbol]*book
	stale atomic.Uint64
}

// NewStore creates an empty book store.
func NewStore() *Store {
	return &Store{books: make(map[domain.Symbol]*book)}
}

func priceKey(l domain.Level) string {
	return l.Price.String()
}

func newSide(levels []domain.Level) side {
	s := make(side, len(levels))
	apply(s, levels)
	return s
}

// apply upserts levels in arrival order, dropping the ones without orders.
func apply(s side, levels []domain.Level) {
	for _, l := range levels {
		if l.IsEmpty() {
			delete(s, priceKey(l))
			continue
		}
		s[priceKey(l)] = l
	}
}

// ApplySnapshot replaces both sides of the symbol's book.
func (s *Store) ApplySnapshot(symbol domain.Symbol, bids, asks []domain.Level) {
	b := &book{bids: newSide(bids), asks: newSide(asks)}

	s.mu.Lock()
	s.books[symbol] = b
	s.mu.Unlock()
}

// ApplyUpdate applies a delta message touching both sides atomically.
// A zero order count removes the level at that price; anything else inserts or overwrites it.
func (s *Store) ApplyUpdate(symbol domain.Symbol, bids, asks []domain.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.books[symbol]
	if !ok {
		s.stale.Add(1)
		return errors.Wrapf(domain.ErrStaleFeedData, "l2 update for %s before snapshot", symbol)
	}

	apply(b.bids, bids)
	apply(b.asks, asks)

	return nil
}

// applyDelta applies updates to a single side of the symbol's book.
func (s *Store) applyDelta(symbol domain.Symbol, bookSide domain.BookSide, updates []domain.Level) error {
	if bookSide == domain.BookSideAsk {
		return s.ApplyUpdate(symbol, nil, updates)
	}
	return s.ApplyUpdate(symbol, updates, nil)
}

// BestBid returns the highest bid level, false if the side is empty or unknown.
func (s *Store) BestBid(symbol domain.Symbol) (domain.Level, bool) {
	return s.best(symbol, domain.BookSideBid)
}

// BestAsk returns the lowest ask level, false if the side is empty or unknown.
func (s *Store) BestAsk(symbol domain.Symbol) (domain.Level, bool) {
	return s.best(symbol, domain.BookSideAsk)
}

func (s *Store) best(symbol domain.Symbol, bookSide domain.BookSide) (domain.Level, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[symbol]
	if !ok {
		return domain.Level{}, false
	}

	var (
		best  domain.Level
		found bool
	)
	for _, l := range b.side(bookSide) {
		if !found {
			best, found = l, true
			continue
		}
		if bookSide == domain.BookSideBid && l.Price.GreaterThan(best.Price) ||
			bookSide == domain.BookSideAsk && l.Price.LessThan(best.Price) {
			best = l
		}
	}

	return best, found
}

// levels returns a copy of one side ordered best first.
func (s *Store) levels(symbol domain.Symbol, bookSide domain.BookSide) []domain.Level {
	s.mu.RLock()
	b, ok := s.books[symbol]
	if !ok {
		s.mu.RUnlock()
		return nil
	}
	levels := make([]domain.Level, 0, len(b.side(bookSide)))
	for _, l := range b.side(bookSide) {
		levels = append(levels, l)
	}
	s.mu.RUnlock()

	sort.Slice(levels, func(i, j int) bool {
		if bookSide == domain.BookSideAsk {
			return levels[i].Price.LessThan(levels[j].Price)
		}
		return levels[i].Price.GreaterThan(levels[j].Price)
	})

	return levels
}

// HasBook reports whether a snapshot has been received for the symbol.
func (s *Store) HasBook(symbol domain.Symbol) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.books[symbol]
	return ok
}

// StaleUpdates returns how many deltas were dropped for arriving before a snapshot.
func (s *Store) StaleUpdates() uint64 {
	return s.stale.Load()
}
