package feed

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/tobmaker/internal/domain"
	"github.com/vadiminshakov/tobmaker/internal/events"
	"github.com/vadiminshakov/tobmaker/internal/storage/ledger"
	"go.uber.org/zap"
)

type bookWriter interface {
	ApplySnapshot(symbol domain.Symbol, bids, asks []domain.Level)
	ApplyUpdate(symbol domain.Symbol, bids, asks []domain.Level) error
}

type priceWriter interface {
	Update(symbol domain.Symbol, record domain.PriceRecord)
}

type balanceWriter interface {
	ReplaceAll(balances []domain.Balance)
	All() []domain.Balance
}

type symbolWriter interface {
	ReplaceAll(metas map[domain.Symbol]domain.SymbolMeta)
	Ready() bool
	Funded(balances []domain.Balance) []domain.Symbol
}

type orderWriter interface {
	ReplaceSnapshot(orders []domain.Order)
	ApplyUpdate(report domain.Order) ledger.Outcome
}

// Stores the state the router writes into. The router is their only writer.
type Stores struct {
	Books    bookWriter
	Prices   priceWriter
	Balances balanceWriter
	Symbols  symbolWriter
	Orders   orderWriter
}

// subscriber sends the follow-up subscriptions of a session.
type subscriber interface {
	SubscribeTrading(ctx context.Context) error
	SubscribeBalances(ctx context.Context) error
	SubscribeMarket(ctx context.Context, symbol domain.Symbol) error
}

// taskStarter starts the periodic strategy task of a symbol.
type taskStarter interface {
	Start(ctx context.Context, symbol domain.Symbol) bool
}

type alertPublisher interface {
	Publish(a events.Alert)
}

// Router applies decoded messages to the stores strictly in receive order.
// It belongs to a single session: build a new one for every connection.
type Router struct {
	l      *zap.Logger
	stores Stores
	subs   subscriber
	tasks  taskStarter
	alerts alertPublisher
	now    func() time.Time

	balancesSeen bool
	selected     bool
	ledgerSeeded bool
	funded       []domain.Symbol
}

// NewRouter creates a router for one session.
func NewRouter(l *zap.Logger, stores Stores, subs subscriber, tasks taskStarter, alerts alertPublisher) *Router {
	return &Router{
		l:      l.With(zap.String("component", "feed")),
		stores: stores,
		subs:   subs,
		tasks:  tasks,
		alerts: alerts,
		now:    time.Now,
	}
}

// Run consumes raw frames until the channel is closed or ctx is done.
func (r *Router) Run(ctx context.Context, frames <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-frames:
			if !ok {
				r.l.Info("feed closed")
				return nil
			}
			r.Handle(ctx, raw)
		}
	}
}

// Handle decodes and applies one raw frame. Bad frames are logged and dropped.
func (r *Router) Handle(ctx context.Context, raw []byte) {
	msg, err := Decode(raw)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownMessage) {
			r.l.Debug("skipping message", zap.Error(err))
			return
		}
		r.l.Warn("failed to decode message", zap.Error(err), zap.ByteString("raw", raw))
		return
	}

	r.Apply(ctx, msg)
}

// Apply routes a decoded message to the store responsible for its channel.
func (r *Router) Apply(ctx context.Context, msg Message) {
	switch m := msg.(type) {
	case Subscribed:
		r.onSubscribed(ctx, m)
	case Unsubscribed:
		r.l.Info("unsubscribed", zap.String("channel", string(m.Channel())))
	case Rejected:
		r.l.Warn("request rejected by venue",
			zap.String("channel", string(m.Channel())),
			zap.Error(errors.Wrap(domain.ErrVenueRejection, m.Text)))
		r.publish(events.Alert{Kind: events.AlertRejection, Channel: string(m.Channel()), Text: m.Text})
	case SymbolsSnapshot:
		r.stores.Symbols.ReplaceAll(m.Symbols)
		r.l.Info("symbols snapshot applied", zap.Int("symbols", len(m.Symbols)))
		r.selectFunded(ctx)
	case BalancesSnapshot:
		r.stores.Balances.ReplaceAll(m.Balances)
		r.balancesSeen = true
		r.selectFunded(ctx)
	case PriceUpdate:
		r.stores.Prices.Update(m.Symbol, m.Record)
	case BookSnapshot:
		r.stores.Books.ApplySnapshot(m.Symbol, m.Bids, m.Asks)
	case BookUpdate:
		if err := r.stores.Books.ApplyUpdate(m.Symbol, m.Bids, m.Asks); err != nil {
			r.l.Warn("dropping l2 update", zap.String("symbol", m.Symbol.String()), zap.Error(err))
		}
	case OrdersSnapshot:
		r.onOrdersSnapshot(m)
	case OrderUpdate:
		r.onOrderUpdate(m.Order)
	default:
		r.l.Warn("unhandled message", zap.String("channel", string(msg.Channel())), zap.String("event", string(msg.Event())))
	}
}

// Funded returns the symbols selected for trading in this session.
func (r *Router) Funded() []domain.Symbol {
	return r.funded
}

func (r *Router) onSubscribed(ctx context.Context, m Subscribed) {
	switch m.Channel() {
	case ChannelAuth:
		r.l.Info("websocket authentication successful")
		if err := r.subs.SubscribeTrading(ctx); err != nil {
			r.l.Error("failed to subscribe to trading", zap.Error(err))
		}
		if err := r.subs.SubscribeBalances(ctx); err != nil {
			r.l.Error("failed to subscribe to balances", zap.Error(err))
		}
	case ChannelTrading:
		r.l.Info("ready to trade")
	default:
		r.l.Debug("subscribed", zap.String("channel", string(m.Channel())))
	}
}

// selectFunded picks the funded symbols once per session, as soon as both
// symbol metadata and balances are known, and starts trading them.
func (r *Router) selectFunded(ctx context.Context) {
	if r.selected || !r.balancesSeen || !r.stores.Symbols.Ready() {
		return
	}
	r.selected = true

	r.funded = r.stores.Symbols.Funded(r.stores.Balances.All())
	if len(r.funded) == 0 {
		r.l.Warn("no open symbol has a positive balance, strategy will not run")
		return
	}

	for _, symbol := range r.funded {
		r.l.Info("subscribing to symbol", zap.String("symbol", symbol.String()))
		if err := r.subs.SubscribeMarket(ctx, symbol); err != nil {
			r.l.Error("failed to subscribe to market data", zap.String("symbol", symbol.String()), zap.Error(err))
			continue
		}
		r.tasks.Start(ctx, symbol)
	}
}

func (r *Router) onOrdersSnapshot(m OrdersSnapshot) {
	if !r.ledgerSeeded {
		r.stores.Orders.ReplaceSnapshot(m.Orders)
		r.ledgerSeeded = true
		r.l.Info("orders snapshot applied", zap.Int("orders", len(m.Orders)))
		return
	}

	for _, o := range m.Orders {
		r.onOrderUpdate(o)
	}
}

func (r *Router) onOrderUpdate(o domain.Order) {
	outcome := r.stores.Orders.ApplyUpdate(o)
	r.l.Info("order updated",
		zap.String("order_id", o.OrderID),
		zap.String("symbol", o.Symbol.String()),
		zap.String("status", string(o.Status)),
		zap.String("outcome", outcome.String()),
		zap.String("text", o.Text))

	if o.Status == domain.OrderStatusRejected {
		r.l.Warn("order rejected by venue",
			zap.String("order_id", o.OrderID),
			zap.Error(errors.Wrap(domain.ErrVenueRejection, o.Text)))
		r.publish(events.Alert{
			Kind:    events.AlertOrderRejected,
			Channel: string(ChannelTrading),
			Text:    o.Text,
			OrderID: o.OrderID,
		})
	}
}

func (r *Router) publish(a events.Alert) {
	if r.alerts == nil {
		return
	}
	a.Time = r.now()
	r.alerts.Publish(a)
}
