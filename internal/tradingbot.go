package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/tobmaker/config"
	"github.com/vadiminshakov/tobmaker/internal/domain"
	"github.com/vadiminshakov/tobmaker/internal/events"
	"github.com/vadiminshakov/tobmaker/internal/feed"
	"github.com/vadiminshakov/tobmaker/internal/services/scheduler"
	"github.com/vadiminshakov/tobmaker/internal/services/strategy/maker"
	"github.com/vadiminshakov/tobmaker/internal/services/trader"
	"github.com/vadiminshakov/tobmaker/internal/storage/actions"
	"github.com/vadiminshakov/tobmaker/internal/storage/balances"
	"github.com/vadiminshakov/tobmaker/internal/storage/ledger"
	"github.com/vadiminshakov/tobmaker/internal/storage/orderbook"
	"github.com/vadiminshakov/tobmaker/internal/storage/prices"
	"github.com/vadiminshakov/tobmaker/internal/storage/symbols"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// frameBuffer inbound frames queued between the socket reader and the router.
const frameBuffer = 256

// VenueClient the exchange session: feed source, subscription requests and, unless dry run, order sink.
type VenueClient interface {
	trader.Sender
	Connect(ctx context.Context) error
	ReadLoop(ctx context.Context, out chan<- []byte) error
	SubscribeTrading(ctx context.Context) error
	SubscribeBalances(ctx context.Context) error
	SubscribeMarket(ctx context.Context, symbol domain.Symbol) error
	Close() error
}

// TradingBot runs market making sessions against one venue.
type TradingBot struct {
	l       *zap.Logger
	conf    config.Config
	client  VenueClient
	trader  *trader.Trader
	journal *actions.WALStore
	alerts  *events.Broadcaster
}

// NewTradingBot creates a bot. In dry run orders go to a SimulateSender instead of the client.
func NewTradingBot(l *zap.Logger, conf config.Config, client VenueClient, alerts *events.Broadcaster) (*TradingBot, error) {
	if client == nil {
		return nil, errors.New("venue client is required")
	}
	if alerts == nil {
		alerts = events.NewBroadcaster(0)
	}

	journal, err := actions.NewWALStore(conf.JournalDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open action journal")
	}

	var sender trader.Sender = client
	if conf.DryRun {
		sender = trader.NewSimulateSender(l)
	}

	t, err := trader.NewTrader(l, sender, journal, conf.CancelDedupTTL)
	if err != nil {
		_ = journal.Close()
		return nil, errors.Wrap(err, "failed to create trader")
	}

	return &TradingBot{
		l:       l,
		conf:    conf,
		client:  client,
		trader:  t,
		journal: journal,
		alerts:  alerts,
	}, nil
}

// Close closes the bot
func (b *TradingBot) Close() error {
	return b.journal.Close()
}

// Serve runs sessions until ctx is done, reconnecting after RestartWait when one ends.
func (b *TradingBot) Serve(ctx context.Context) error {
	for {
		err := b.Run(ctx)
		if ctx.Err() != nil {
			b.l.Info("Context done, stopping trading bot.")
			return ctx.Err()
		}
		b.l.Error("Session ended, reconnecting", zap.Error(err), zap.Duration("wait", b.conf.RestartWait))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.conf.RestartWait):
		}
	}
}

// Run executes one session: connects, feeds the router and ticks the strategy until the
// connection drops or ctx is done. All session state is rebuilt from the feed.
func (b *TradingBot) Run(ctx context.Context) error {
	books := orderbook.NewStore()
	priceStore := prices.NewStore()
	balanceStore := balances.NewStore()
	symbolStore := symbols.NewStore()
	orders := ledger.New()

	strategy, err := maker.NewStrategy(b.l, maker.Config{
		QuoteRate:       b.conf.QuoteRate,
		CancelRate:      b.conf.CancelRate,
		PlaceFreshness:  b.conf.PlaceFreshness,
		CancelFreshness: b.conf.CancelFreshness,
	}, maker.Sources{
		Books:    books,
		Prices:   priceStore,
		Balances: balanceStore,
		Symbols:  symbolStore,
		Orders:   orders,
	}, b.trader)
	if err != nil {
		return errors.Wrap(err, "failed to create strategy")
	}

	sched := scheduler.New(b.l, b.conf.EvalInterval, strategy.Trade)
	defer sched.Stop()

	router := feed.NewRouter(b.l, feed.Stores{
		Books:    books,
		Prices:   priceStore,
		Balances: balanceStore,
		Symbols:  symbolStore,
		Orders:   orders,
	}, b.client, sched, b.alerts)

	if err := b.client.Connect(ctx); err != nil {
		return errors.Wrap(err, "failed to connect")
	}
	defer b.client.Close()

	b.l.Info("Starting session", zap.Bool("dry_run", b.conf.DryRun), zap.Duration("eval_interval", b.conf.EvalInterval))

	g, gctx := errgroup.WithContext(ctx)
	frames := make(chan []byte, frameBuffer)
	g.Go(func() error {
		return b.client.ReadLoop(gctx, frames)
	})
	g.Go(func() error {
		return router.Run(gctx, frames)
	})

	err = g.Wait()
	sched.Stop()
	b.l.Info("Session stopped",
		zap.Int("funded_symbols", len(router.Funded())),
		zap.Int("tracked_orders", orders.Len()),
		zap.Uint64("stale_l2_updates", books.StaleUpdates()))

	return err
}
