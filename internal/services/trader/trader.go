// Package trader turns strategy commands into venue requests.
package trader

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tobmaker/internal/domain"
	"github.com/vadiminshakov/tobmaker/internal/storage/actions"
	"github.com/vadiminshakov/tobmaker/pkg/decimals"
	"go.uber.org/zap"
)

// clOrdIDLength the venue limit for client order ids.
const clOrdIDLength = 20

// Sender writes requests to the venue without waiting for their execution reports.
type Sender interface {
	NewOrderSingle(ctx context.Context, clOrdID string, cmd domain.Command) error
	CancelOrderRequest(ctx context.Context, orderID string) error
}

type journal interface {
	Save(record actions.Record) error
}

// Trader journals every command and hands it to the sender. The ledger is not touched here:
// orders appear in and leave the ledger only through venue execution reports.
type Trader struct {
	l       *zap.Logger
	sender  Sender
	journal journal
	cancels *dedup
	now     func() time.Time
}

// NewTrader creates a trader. Cancels for the same order within cancelTTL are sent once.
func NewTrader(l *zap.Logger, sender Sender, journal journal, cancelTTL time.Duration) (*Trader, error) {
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	if journal == nil {
		return nil, errors.New("journal is required")
	}

	return &Trader{
		l:       l.With(zap.String("component", "trader")),
		sender:  sender,
		journal: journal,
		cancels: newDedup(cancelTTL),
		now:     time.Now,
	}, nil
}

// NewLimitOrder sends a limit order with a fresh client order id.
func (t *Trader) NewLimitOrder(ctx context.Context, symbol domain.Symbol, tif domain.TimeInForce, side domain.Side, quantity, price decimal.Decimal) error {
	cmd := domain.NewLimitOrderCommand(symbol, tif, side, quantity, price)
	if err := validate(cmd); err != nil {
		return err
	}

	clOrdID := newClOrdID()
	if err := t.journal.Save(actions.NewRecord(t.now(), cmd, clOrdID)); err != nil {
		return errors.Wrap(err, "journal new order")
	}

	if err := t.sender.NewOrderSingle(ctx, clOrdID, cmd); err != nil {
		return errors.Wrapf(err, "send new order %s", clOrdID)
	}

	t.l.Info("new order sent",
		zap.String("cl_ord_id", clOrdID),
		zap.String("symbol", symbol.String()),
		zap.String("side", string(side)),
		zap.String("qty", quantity.String()),
		zap.String("price", price.String()))

	return nil
}

// CancelOrder requests cancellation of a resting order. A repeat within the dedup window is dropped.
func (t *Trader) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return errors.Wrap(domain.ErrInvalidOrderParameters, "cancel without order id")
	}
	if t.cancels.seenRecently(orderID) {
		t.l.Debug("cancel already requested", zap.String("order_id", orderID))
		return nil
	}

	cmd := domain.Command{Action: domain.ActionCancel, OrderID: orderID}
	if err := t.journal.Save(actions.NewRecord(t.now(), cmd, "")); err != nil {
		t.cancels.forget(orderID)
		return errors.Wrap(err, "journal cancel")
	}

	if err := t.sender.CancelOrderRequest(ctx, orderID); err != nil {
		t.cancels.forget(orderID)
		return errors.Wrapf(err, "send cancel %s", orderID)
	}

	t.l.Info("cancel sent", zap.String("order_id", orderID))
	return nil
}

func validate(cmd domain.Command) error {
	switch {
	case cmd.Symbol == "":
		return errors.Wrap(domain.ErrInvalidOrderParameters, "symbol is required")
	case !cmd.Side.IsValid():
		return errors.Wrapf(domain.ErrInvalidOrderParameters, "invalid side %q", cmd.Side)
	case cmd.TimeInForce == "":
		return errors.Wrap(domain.ErrInvalidOrderParameters, "time in force is required")
	case !cmd.Quantity.IsPositive():
		return errors.Wrapf(domain.ErrInvalidOrderParameters, "quantity must be positive, got %s", cmd.Quantity)
	case !cmd.Price.IsPositive():
		return errors.Wrapf(domain.ErrInvalidOrderParameters, "price must be positive, got %s", cmd.Price)
	case decimals.Places(cmd.Quantity) > decimals.MetaPrecision:
		return errors.Wrapf(domain.ErrInvalidOrderParameters, "quantity %s exceeds %d decimal places", cmd.Quantity, decimals.MetaPrecision)
	case decimals.Places(cmd.Price) > decimals.MetaPrecision:
		return errors.Wrapf(domain.ErrInvalidOrderParameters, "price %s exceeds %d decimal places", cmd.Price, decimals.MetaPrecision)
	}
	return nil
}

func newClOrdID() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:clOrdIDLength]
}
