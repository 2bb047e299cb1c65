package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/tobmaker/internal/domain"
	"github.com/vadiminshakov/tobmaker/pkg/retrier"
	"go.uber.org/zap"
)

const (
	DefaultURL    = "wss://ws.prod.blockchain.info/mercury-gateway/v1/ws"
	DefaultOrigin = "https://exchange.blockchain.com"

	channelAuth     = "auth"
	channelSymbols  = "symbols"
	channelBalances = "balances"
	channelTrading  = "trading"
	channelPrices   = "prices"
	channelL2       = "l2"

	handshakeTimeout = 10 * time.Second
	writeTimeout     = 10 * time.Second
)

var errNotConnected = errors.New("websocket is not connected")

// BlockchainConfig connection settings of the exchange websocket.
type BlockchainConfig struct {
	URL    string
	Origin string
	APIKey string
	// Granularity candle width in seconds for price subscriptions.
	Granularity int
}

// BlockchainClient websocket session with the Blockchain.com exchange. It is both the feed source
// and the sink for order requests. Writes are serialized; ReadLoop must run in a single goroutine.
type BlockchainClient struct {
	l       *zap.Logger
	cfg     BlockchainConfig
	retrier *retrier.Retrier
	dialer  *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewBlockchainClient creates a client. Connect must be called before anything else.
func NewBlockchainClient(l *zap.Logger, cfg BlockchainConfig, r *retrier.Retrier) (*BlockchainClient, error) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	if !ValidGranularity(cfg.Granularity) {
		return nil, errors.Errorf("granularity %d is not one of %v", cfg.Granularity, Granularities)
	}

	c := &BlockchainClient{
		l:       l.With(zap.String("component", "blockchain_client")),
		cfg:     cfg,
		retrier: r,
		dialer:  &websocket.Dialer{HandshakeTimeout: handshakeTimeout, Proxy: http.ProxyFromEnvironment},
	}
	if c.retrier == nil {
		c.retrier = retrier.New(retrier.WithOnRetry(func(attempt int, err error, wait time.Duration) {
			c.l.Warn("websocket dial failed, retrying",
				zap.String("url", c.cfg.URL),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err))
		}))
	}

	return c, nil
}

// Connect dials the websocket with backoff, then authenticates and subscribes to symbols.
func (c *BlockchainClient) Connect(ctx context.Context) error {
	header := http.Header{}
	header.Set("Origin", c.cfg.Origin)

	conn, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (*websocket.Conn, error) {
		conn, resp, err := c.dialer.DialContext(ctx, c.cfg.URL, header)
		if err != nil && resp != nil && resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
			// the venue refused the handshake itself, another dial gets the same answer
			return nil, retrier.Permanent(errors.Wrapf(err, "handshake status %d", resp.StatusCode))
		}
		return conn, err
	})
	if err != nil {
		return errors.Wrapf(err, "dial %s", c.cfg.URL)
	}

	c.mu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = conn
	c.mu.Unlock()

	c.l.Info("websocket connected", zap.String("url", c.cfg.URL))

	if c.cfg.APIKey != "" {
		if err := c.SubscribeAuth(ctx); err != nil {
			return err
		}
	}

	return c.SubscribeSymbols(ctx)
}

// SubscribeAuth authenticates the session with the API key.
func (c *BlockchainClient) SubscribeAuth(ctx context.Context) error {
	return c.write(ctx, subscribeRequest{Action: actionSubscribe, Channel: channelAuth, Token: c.cfg.APIKey})
}

// SubscribeSymbols subscribes to symbol reference data.
func (c *BlockchainClient) SubscribeSymbols(ctx context.Context) error {
	return c.write(ctx, subscribeRequest{Action: actionSubscribe, Channel: channelSymbols})
}

// SubscribeBalances subscribes to account balances.
func (c *BlockchainClient) SubscribeBalances(ctx context.Context) error {
	return c.write(ctx, subscribeRequest{Action: actionSubscribe, Channel: channelBalances})
}

// SubscribeTrading subscribes to the account's orders.
func (c *BlockchainClient) SubscribeTrading(ctx context.Context) error {
	return c.write(ctx, subscribeRequest{Action: actionSubscribe, Channel: channelTrading})
}

// SubscribePrices subscribes to candles of the symbol.
func (c *BlockchainClient) SubscribePrices(ctx context.Context, symbol domain.Symbol, granularity int) error {
	if !ValidGranularity(granularity) {
		return errors.Errorf("granularity %d is not one of %v", granularity, Granularities)
	}
	return c.write(ctx, subscribeRequest{
		Action:      actionSubscribe,
		Channel:     channelPrices,
		Symbol:      symbol.String(),
		Granularity: granularity,
	})
}

// SubscribeL2 subscribes to the symbol's aggregated order book.
func (c *BlockchainClient) SubscribeL2(ctx context.Context, symbol domain.Symbol) error {
	return c.write(ctx, subscribeRequest{Action: actionSubscribe, Channel: channelL2, Symbol: symbol.String()})
}

// SubscribeMarket subscribes to everything the strategy reads for the symbol.
func (c *BlockchainClient) SubscribeMarket(ctx context.Context, symbol domain.Symbol) error {
	if err := c.SubscribePrices(ctx, symbol, c.cfg.Granularity); err != nil {
		return err
	}
	return c.SubscribeL2(ctx, symbol)
}

// NewOrderSingle sends a limit order.
func (c *BlockchainClient) NewOrderSingle(ctx context.Context, clOrdID string, cmd domain.Command) error {
	return c.write(ctx, newOrderSingle(clOrdID, cmd))
}

// CancelOrderRequest sends a cancel for the venue order id.
func (c *BlockchainClient) CancelOrderRequest(ctx context.Context, orderID string) error {
	return c.write(ctx, cancelOrderRequest{Action: actionCancelOrder, Channel: channelTrading, OrderID: orderID})
}

func (c *BlockchainClient) write(ctx context.Context, req any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errNotConnected
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return errors.Wrap(err, "set write deadline")
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return errors.Wrap(err, "write message")
	}

	c.l.Debug("request sent", zap.ByteString("payload", payload))
	return nil
}

// ReadLoop forwards every inbound frame to out in receive order and closes out when it returns.
// It returns ctx.Err() on cancellation and the read error when the connection fails or closes.
func (c *BlockchainClient) ReadLoop(ctx context.Context, out chan<- []byte) error {
	defer close(out)

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errNotConnected
	}

	// unblocks ReadMessage on shutdown
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "read message")
		}

		select {
		case out <- frame:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close closes the connection.
func (c *BlockchainClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
