// Command tobmaker runs a top-of-book market maker on the Blockchain.com exchange.
// It streams the exchange websocket feed, keeps books, prices, balances and own orders in memory,
// and every evaluation interval joins the best bid and ask of each funded symbol.
//
// Usage:
//
//	tobmaker --config config.yaml
//	tobmaker --quoterate 0.01 --cancelrate 0.005 (uses CLI arguments)
//
// Required environment variables (unless --dryrun):
//
//	BLOCKCHAIN_API_KEY
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/tobmaker/config"
	"github.com/vadiminshakov/tobmaker/internal"
	"github.com/vadiminshakov/tobmaker/internal/clients"
	"github.com/vadiminshakov/tobmaker/internal/events"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(conf.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	client, err := clients.NewBlockchainClient(logger, clients.BlockchainConfig{
		URL:         conf.WSURL,
		Origin:      conf.Origin,
		APIKey:      conf.APIKey,
		Granularity: conf.PriceGranularity,
	}, nil)
	if err != nil {
		logger.Fatal("failed to create exchange client", zap.Error(err))
	}

	alerts := events.NewBroadcaster(64)
	bot, err := internal.NewTradingBot(logger, conf, client, alerts)
	if err != nil {
		logger.Fatal("failed to create trading bot", zap.Error(err))
	}
	defer bot.Close()

	if conf.DryRun && conf.APIKey == "" {
		logger.Warn("dry run without an API key: balances and orders are unavailable, no symbol will be traded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go logAlerts(ctx, logger, alerts)

	if err := bot.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("trading bot stopped", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func logAlerts(ctx context.Context, logger *zap.Logger, alerts *events.Broadcaster) {
	ch := alerts.Subscribe()
	defer alerts.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case a := <-ch:
			logger.Warn("venue alert",
				zap.String("kind", string(a.Kind)),
				zap.String("channel", a.Channel),
				zap.String("order_id", a.OrderID),
				zap.String("text", a.Text),
				zap.Time("ts", a.Time))
		}
	}
}
