// Package maker implements the top-of-book market making strategy.
//
// Every tick the strategy joins the best bid or ask one tick inside the spread when the last traded
// price leaves enough room, and cancels resting orders that were outbid or lost that room.
package maker

import (
	"context"
	"iter"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tobmaker/internal/domain"
	"github.com/vadiminshakov/tobmaker/pkg/decimals"
	"go.uber.org/zap"
)

const (
	pricePrecision    = 8
	quantityPrecision = 6

	defaultPlaceFreshness  = 180 * time.Second
	defaultCancelFreshness = 300 * time.Second
)

// feeReserve share of the quote balance spent on a buy, the rest covers trading fees.
var feeReserve = decimal.RequireFromString("0.997")

type books interface {
	BestBid(symbol domain.Symbol) (domain.Level, bool)
	BestAsk(symbol domain.Symbol) (domain.Level, bool)
}

type priceSource interface {
	Latest(symbol domain.Symbol) (domain.PriceRecord, bool)
}

type balanceSource interface {
	AvailableFor(currency string) (decimal.Decimal, bool)
	Len() int
}

type symbolSource interface {
	Meta(symbol domain.Symbol) (domain.SymbolMeta, bool)
}

type orderSource interface {
	OrdersFor(symbol domain.Symbol, activeOnly bool) iter.Seq[domain.Order]
}

// dispatcher accepts the commands the strategy emits. It must not block on venue confirmation.
type dispatcher interface {
	NewLimitOrder(ctx context.Context, symbol domain.Symbol, tif domain.TimeInForce, side domain.Side, quantity, price decimal.Decimal) error
	CancelOrder(ctx context.Context, orderID string) error
}

// Config engine-wide strategy parameters.
type Config struct {
	// QuoteRate minimum distance from the last traded price required to place an order.
	QuoteRate decimal.Decimal
	// CancelRate tolerance band around the last traded price before a resting order is cancelled.
	CancelRate decimal.Decimal
	// PlaceFreshness maximum price age to place an order.
	PlaceFreshness time.Duration
	// CancelFreshness price age after which resting orders are cancelled.
	CancelFreshness time.Duration
}

// Sources read-only views of the stores the strategy decides from.
type Sources struct {
	Books    books
	Prices   priceSource
	Balances balanceSource
	Symbols  symbolSource
	Orders   orderSource
}

// Strategy evaluates the market making rules for any symbol. It never writes to the stores.
type Strategy struct {
	l          *zap.Logger
	cfg        Config
	src        Sources
	dispatcher dispatcher
	now        func() time.Time
}

// NewStrategy creates a strategy. Zero freshness windows fall back to 180s for placing and 300s for cancelling.
func NewStrategy(l *zap.Logger, cfg Config, src Sources, d dispatcher) (*Strategy, error) {
	if cfg.QuoteRate.IsNegative() || cfg.QuoteRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, errors.Errorf("quote rate must be in [0, 1), got %s", cfg.QuoteRate)
	}
	if cfg.CancelRate.IsNegative() || cfg.CancelRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, errors.Errorf("cancel rate must be in [0, 1), got %s", cfg.CancelRate)
	}
	if cfg.PlaceFreshness <= 0 {
		cfg.PlaceFreshness = defaultPlaceFreshness
	}
	if cfg.CancelFreshness <= 0 {
		cfg.CancelFreshness = defaultCancelFreshness
	}

	return &Strategy{
		l:          l.With(zap.String("component", "maker")),
		cfg:        cfg,
		src:        src,
		dispatcher: d,
		now:        time.Now,
	}, nil
}

// Trade runs one tick for the symbol: evaluates the rules and hands the commands to the dispatcher.
// Missing reference data skips the tick and is not an error.
func (s *Strategy) Trade(ctx context.Context, symbol domain.Symbol) error {
	l := s.l.With(zap.String("symbol", symbol.String()))

	cmds, err := s.Evaluate(symbol, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrMissingReferenceData) {
			l.Debug("skipping tick", zap.Error(err))
			return nil
		}
		return err
	}

	var dispatchErr error
	for _, cmd := range cmds {
		if err := s.dispatch(ctx, cmd); err != nil {
			l.Error("failed to dispatch command", zap.String("command", cmd.String()), zap.Error(err))
			if dispatchErr == nil {
				dispatchErr = errors.Wrapf(err, "dispatch %s", cmd.Action)
			}
			continue
		}
		l.Info("command dispatched", zap.String("command", cmd.String()))
	}

	return dispatchErr
}

func (s *Strategy) dispatch(ctx context.Context, cmd domain.Command) error {
	switch cmd.Action {
	case domain.ActionPlaceLimit:
		return s.dispatcher.NewLimitOrder(ctx, cmd.Symbol, cmd.TimeInForce, cmd.Side, cmd.Quantity, cmd.Price)
	case domain.ActionCancel:
		return s.dispatcher.CancelOrder(ctx, cmd.OrderID)
	default:
		return errors.Errorf("unsupported action %q", cmd.Action)
	}
}

// Evaluate returns the placements and cancellations the symbol needs at now: bid placement first,
// then ask placement, then cancellations in ledger order.
func (s *Strategy) Evaluate(symbol domain.Symbol, now time.Time) ([]domain.Command, error) {
	if s.src.Balances.Len() == 0 {
		return nil, errors.Wrap(domain.ErrMissingReferenceData, "no balances")
	}
	bestBid, ok := s.src.Books.BestBid(symbol)
	if !ok {
		return nil, errors.Wrapf(domain.ErrMissingReferenceData, "no bids for %s", symbol)
	}
	bestAsk, ok := s.src.Books.BestAsk(symbol)
	if !ok {
		return nil, errors.Wrapf(domain.ErrMissingReferenceData, "no asks for %s", symbol)
	}

	record, hasPrice := s.src.Prices.Latest(symbol)
	meta, hasMeta := s.src.Symbols.Meta(symbol)

	cmds := make([]domain.Command, 0, 2)
	if hasPrice && hasMeta && meta.IsOpen() && record.IsFresh(now, s.cfg.PlaceFreshness) {
		if cmd, ok := s.bid(symbol, meta, record, bestBid.Price); ok {
			cmds = append(cmds, cmd)
		}
		if cmd, ok := s.ask(symbol, meta, record, bestAsk.Price); ok {
			cmds = append(cmds, cmd)
		}
	}

	for o := range s.src.Orders.OrdersFor(symbol, true) {
		if s.shouldCancel(o, bestBid.Price, bestAsk.Price, record, hasPrice, now) {
			cmds = append(cmds, domain.NewCancelCommand(o))
		}
	}

	return cmds, nil
}

// bid one tick above the best bid with the whole quote balance less the fee reserve.
func (s *Strategy) bid(symbol domain.Symbol, meta domain.SymbolMeta, record domain.PriceRecord, bestBid decimal.Decimal) (domain.Command, bool) {
	available, ok := s.src.Balances.AvailableFor(symbol.BidCurrency())
	if !ok || !available.IsPositive() {
		return domain.Command{}, false
	}

	floor := record.Last.Mul(decimal.NewFromInt(1).Sub(s.cfg.QuoteRate))
	if !floor.GreaterThan(bestBid) {
		return domain.Command{}, false
	}

	price := decimals.Round(bestBid.Add(meta.MinIncrement), pricePrecision)
	if !price.IsPositive() {
		return domain.Command{}, false
	}
	qty := decimals.RoundDown(feeReserve.Mul(available).Div(price), quantityPrecision)
	if !qty.GreaterThan(meta.MinOrderSize) {
		s.l.Debug("bid below minimum order size",
			zap.String("symbol", symbol.String()),
			zap.String("qty", qty.String()),
			zap.Error(domain.ErrInvalidOrderParameters))
		return domain.Command{}, false
	}

	return domain.NewLimitOrderCommand(symbol, domain.TimeInForceGTC, domain.SideBuy, qty, price), true
}

// ask one tick below the best ask with the whole base balance.
func (s *Strategy) ask(symbol domain.Symbol, meta domain.SymbolMeta, record domain.PriceRecord, bestAsk decimal.Decimal) (domain.Command, bool) {
	available, ok := s.src.Balances.AvailableFor(symbol.AskCurrency())
	if !ok || !available.IsPositive() {
		return domain.Command{}, false
	}

	ceiling := record.Last.Mul(decimal.NewFromInt(1).Add(s.cfg.QuoteRate))
	if !ceiling.LessThan(bestAsk) {
		return domain.Command{}, false
	}

	price := decimals.Round(bestAsk.Sub(meta.MinIncrement), pricePrecision)
	if !price.IsPositive() {
		return domain.Command{}, false
	}
	qty := available
	if !qty.GreaterThan(meta.MinOrderSize) {
		s.l.Debug("ask below minimum order size",
			zap.String("symbol", symbol.String()),
			zap.String("qty", qty.String()),
			zap.Error(domain.ErrInvalidOrderParameters))
		return domain.Command{}, false
	}

	return domain.NewLimitOrderCommand(symbol, domain.TimeInForceGTC, domain.SideSell, qty, price), true
}

// shouldCancel reports whether a resting order was improved on, lost its margin to the last traded
// price, or rests on a price that is too old. Without any price record only the book is checked.
func (s *Strategy) shouldCancel(o domain.Order, bestBid, bestAsk decimal.Decimal, record domain.PriceRecord, hasPrice bool, now time.Time) bool {
	one := decimal.NewFromInt(1)

	switch o.Side {
	case domain.SideBuy:
		if bestBid.GreaterThan(o.Price) {
			return true
		}
		if !hasPrice {
			return false
		}
		return record.Last.Mul(one.Sub(s.cfg.CancelRate)).LessThan(o.Price) ||
			record.Age(now) > s.cfg.CancelFreshness
	case domain.SideSell:
		if bestAsk.LessThan(o.Price) {
			return true
		}
		if !hasPrice {
			return false
		}
		return record.Last.Mul(one.Add(s.cfg.CancelRate)).GreaterThan(o.Price) ||
			record.Age(now) > s.cfg.CancelFreshness
	default:
		return false
	}
}
