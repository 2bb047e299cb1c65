package trader

import (
	"context"
	"sync"

	"github.com/vadiminshakov/tobmaker/internal/domain"
	"go.uber.org/zap"
)

// SimulateSender is the dry run sender: it logs requests instead of writing them to the venue.
type SimulateSender struct {
	mu      sync.Mutex
	logger  *zap.Logger
	orders  map[string]domain.Command
	cancels []string
}

// NewSimulateSender creates a new SimulateSender.
func NewSimulateSender(logger *zap.Logger) *SimulateSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulateSender{
		logger: logger.With(zap.String("component", "simulate")),
		orders: make(map[string]domain.Command),
	}
}

// NewOrderSingle records the order.
func (s *SimulateSender) NewOrderSingle(_ context.Context, clOrdID string, cmd domain.Command) error {
	s.mu.Lock()
	s.orders[clOrdID] = cmd
	s.mu.Unlock()

	s.logger.Info("simulated new order", zap.String("cl_ord_id", clOrdID), zap.String("command", cmd.String()))
	return nil
}

// CancelOrderRequest records the cancel.
func (s *SimulateSender) CancelOrderRequest(_ context.Context, orderID string) error {
	s.mu.Lock()
	s.cancels = append(s.cancels, orderID)
	s.mu.Unlock()

	s.logger.Info("simulated cancel", zap.String("order_id", orderID))
	return nil
}

// Orders returns the simulated orders by client order id.
func (s *SimulateSender) Orders() map[string]domain.Command {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string]domain.Command, len(s.orders))
	for id, cmd := range s.orders {
		cp[id] = cmd
	}
	return cp
}

// Cancels returns the simulated cancels in request order.
func (s *SimulateSender) Cancels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.cancels...)
}
