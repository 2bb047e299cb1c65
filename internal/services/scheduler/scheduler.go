// Package scheduler runs one periodic strategy task per symbol.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/vadiminshakov/tobmaker/internal/domain"
	"go.uber.org/zap"
)

// TickFunc one strategy run for a symbol.
type TickFunc func(ctx context.Context, symbol domain.Symbol) error

// Scheduler owns a cancellable ticker loop per symbol. After Stop returns no tick fires again.
type Scheduler struct {
	l        *zap.Logger
	interval time.Duration
	tick     TickFunc

	mu      sync.Mutex
	wg      sync.WaitGroup
	tasks   map[domain.Symbol]context.CancelFunc
	stopped bool
}

// New creates a scheduler that calls tick every interval for each started symbol.
func New(l *zap.Logger, interval time.Duration, tick TickFunc) *Scheduler {
	return &Scheduler{
		l:        l.With(zap.String("component", "scheduler")),
		interval: interval,
		tick:     tick,
		tasks:    make(map[domain.Symbol]context.CancelFunc),
	}
}

// Start launches the symbol's task. It returns false if the task already runs or the scheduler was stopped.
func (s *Scheduler) Start(ctx context.Context, symbol domain.Symbol) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if _, ok := s.tasks[symbol]; ok {
		return false
	}

	taskCtx, cancel := context.WithCancel(ctx)
	s.tasks[symbol] = cancel
	s.wg.Add(1)
	go s.run(taskCtx, symbol)

	return true
}

func (s *Scheduler) run(ctx context.Context, symbol domain.Symbol) {
	defer s.wg.Done()

	l := s.l.With(zap.String("symbol", symbol.String()))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	l.Info("starting strategy loop", zap.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			l.Info("strategy loop stopped")
			return
		case <-ticker.C:
			// a tick racing with cancellation must not fire
			if ctx.Err() != nil {
				return
			}
			if err := s.tick(ctx, symbol); err != nil {
				l.Error("strategy tick failed", zap.Error(err))
			}
		}
	}
}

// Symbols returns the symbols with a running task.
func (s *Scheduler) Symbols() []domain.Symbol {
	s.mu.Lock()
	symbols := make([]domain.Symbol, 0, len(s.tasks))
	for symbol := range s.tasks {
		symbols = append(symbols, symbol)
	}
	s.mu.Unlock()

	domain.SortSymbols(symbols)
	return symbols
}

// Stop cancels every task and waits for running ticks to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for symbol, cancel := range s.tasks {
		cancel()
		delete(s.tasks, symbol)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
