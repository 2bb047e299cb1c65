package maker

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/tobmaker/internal/domain"
	"github.com/vadiminshakov/tobmaker/internal/storage/balances"
	"github.com/vadiminshakov/tobmaker/internal/storage/ledger"
	"github.com/vadiminshakov/tobmaker/internal/storage/orderbook"
	"github.com/vadiminshakov/tobmaker/internal/storage/prices"
	"github.com/vadiminshakov/tobmaker/internal/storage/symbols"
	dispatcherMock "github.com/vadiminshakov/tobmaker/mocks/dispatcher"
	"go.uber.org/zap"
)

const btcusd = domain.Symbol("BTC-USD")

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decimalMatcher(expected string) interface{} {
	return mock.MatchedBy(func(actual decimal.Decimal) bool {
		return d(expected).Equal(actual)
	})
}

func level(px string) domain.Level {
	return domain.Level{Price: d(px), Quantity: d("1"), Count: 1}
}

type fixture struct {
	books    *orderbook.Store
	prices   *prices.Store
	balances *balances.Store
	symbols  *symbols.Store
	orders   *ledger.Ledger
	trader   *dispatcherMock.Dispatcher
	strategy *Strategy
}

func newFixture(t *testing.T, quoteRate, cancelRate string) *fixture {
	f := &fixture{
		books:    orderbook.NewStore(),
		prices:   prices.NewStore(),
		balances: balances.NewStore(),
		symbols:  symbols.NewStore(),
		orders:   ledger.New(),
		trader:   dispatcherMock.NewDispatcher(t),
	}
	f.symbols.ReplaceAll(map[domain.Symbol]domain.SymbolMeta{
		btcusd: {Status: domain.SymbolStatusOpen, MinIncrement: d("0.01"), MinOrderSize: d("0.001")},
	})

	s, err := NewStrategy(zap.NewNop(), Config{
		QuoteRate:  d(quoteRate),
		CancelRate: d(cancelRate),
	}, Sources{
		Books:    f.books,
		Prices:   f.prices,
		Balances: f.balances,
		Symbols:  f.symbols,
		Orders:   f.orders,
	}, f.trader)
	require.NoError(t, err)
	s.now = func() time.Time { return now }
	f.strategy = s

	return f
}

func (f *fixture) market(bid, ask, last string, age time.Duration) {
	f.books.ApplySnapshot(btcusd, []domain.Level{level(bid)}, []domain.Level{level(ask)})
	f.prices.Update(btcusd, domain.PriceRecord{ObservedAt: now.Add(-age), Close: d(last), Last: d(last)})
}

func restingOrder(id string, side domain.Side, price string) domain.Order {
	return domain.Order{OrderID: id, Symbol: btcusd, Side: side, Status: domain.OrderStatusOpen, Price: d(price)}
}

func TestStrategy_PlacesBidOneTickAboveBest(t *testing.T) {
	f := newFixture(t, "0.01", "0.01")
	f.market("100.00", "200", "102", 10*time.Second)
	f.balances.ReplaceAll([]domain.Balance{{Currency: "USD", Available: d("50")}})

	cmds, err := f.strategy.Evaluate(btcusd, now)
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	cmd := cmds[0]
	require.Equal(t, domain.ActionPlaceLimit, cmd.Action)
	require.Equal(t, domain.SideBuy, cmd.Side)
	require.Equal(t, domain.TimeInForceGTC, cmd.TimeInForce)
	require.True(t, cmd.Price.Equal(d("100.01")), cmd.Price.String())
	// floor(0.997 * 50 / 100.01, 6)
	require.True(t, cmd.Quantity.Equal(d("0.49845")), cmd.Quantity.String())
}

func TestStrategy_NoBidWithoutEnoughRoomToLastPrice(t *testing.T) {
	f := newFixture(t, "0.02", "0.01")
	// 102 * 0.98 = 99.96 is not above the best bid
	f.market("100.00", "200", "102", 10*time.Second)
	f.balances.ReplaceAll([]domain.Balance{{Currency: "USD", Available: d("50")}})

	cmds, err := f.strategy.Evaluate(btcusd, now)
	require.NoError(t, err)
	require.Empty(t, cmds)
}

func TestStrategy_PlacesAskOneTickBelowBest(t *testing.T) {
	f := newFixture(t, "0.01", "0.01")
	f.market("90", "110", "102", 10*time.Second)
	f.balances.ReplaceAll([]domain.Balance{{Currency: "BTC", Available: d("0.5000009")}})

	cmds, err := f.strategy.Evaluate(btcusd, now)
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	cmd := cmds[0]
	require.Equal(t, domain.SideSell, cmd.Side)
	require.True(t, cmd.Price.Equal(d("109.99")), cmd.Price.String())
	require.True(t, cmd.Quantity.Equal(d("0.5000009")), cmd.Quantity.String())
}

func TestStrategy_AskSellsFullBalance(t *testing.T) {
	f := newFixture(t, "0.01", "0.01")
	f.market("90", "110", "100", 10*time.Second)
	f.balances.ReplaceAll([]domain.Balance{{Currency: "BTC", Available: d("0.12345678")}})

	cmds, err := f.strategy.Evaluate(btcusd, now)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	require.Equal(t, domain.SideSell, cmds[0].Side)
	require.True(t, cmds[0].Quantity.Equal(d("0.12345678")), cmds[0].Quantity.String())
}

func TestStrategy_BothSidesBidFirst(t *testing.T) {
	f := newFixture(t, "0.01", "0.5")
	f.market("90", "110", "100", 0)
	f.balances.ReplaceAll([]domain.Balance{
		{Currency: "BTC", Available: d("1")},
		{Currency: "USD", Available: d("1000")},
	})

	cmds, err := f.strategy.Evaluate(btcusd, now)
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	require.Equal(t, domain.SideBuy, cmds[0].Side)
	require.True(t, cmds[0].Price.Equal(d("90.01")))
	require.Equal(t, domain.SideSell, cmds[1].Side)
	require.True(t, cmds[1].Price.Equal(d("109.99")))
}

func TestStrategy_MinimumOrderSizeGate(t *testing.T) {
	tests := []struct {
		name    string
		balance domain.Balance
	}{
		{name: "bid below minimum", balance: domain.Balance{Currency: "USD", Available: d("0.05")}},
		{name: "ask equal to minimum", balance: domain.Balance{Currency: "BTC", Available: d("0.001")}},
		{name: "zero balance", balance: domain.Balance{Currency: "USD", Available: decimal.Zero}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "0.01", "0.01")
			f.market("90", "110", "100", 0)
			f.balances.ReplaceAll([]domain.Balance{tt.balance})

			cmds, err := f.strategy.Evaluate(btcusd, now)
			require.NoError(t, err)
			require.Empty(t, cmds)
		})
	}
}

func TestStrategy_FreshnessWindows(t *testing.T) {
	tests := []struct {
		name       string
		age        time.Duration
		wantPlace  bool
		wantCancel bool
	}{
		{name: "fresh", age: 10 * time.Second, wantPlace: true},
		{name: "at place window", age: 180 * time.Second, wantPlace: true},
		{name: "too old to place", age: 200 * time.Second},
		{name: "at cancel window", age: 300 * time.Second},
		{name: "stale", age: 301 * time.Second, wantCancel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "0.01", "0.01")
			f.market("100", "200", "102", tt.age)
			f.balances.ReplaceAll([]domain.Balance{{Currency: "USD", Available: d("50")}})
			// rests at the best bid, well inside the cancel band
			f.orders.ReplaceSnapshot([]domain.Order{restingOrder("1", domain.SideBuy, "100")})

			cmds, err := f.strategy.Evaluate(btcusd, now)
			require.NoError(t, err)

			var placed, cancelled bool
			for _, c := range cmds {
				placed = placed || c.Action == domain.ActionPlaceLimit
				cancelled = cancelled || c.Action == domain.ActionCancel
			}
			require.Equal(t, tt.wantPlace, placed)
			require.Equal(t, tt.wantCancel, cancelled)
		})
	}
}

func TestStrategy_CancelsOutbidBuy(t *testing.T) {
	f := newFixture(t, "0.02", "0.01")
	f.market("100.00", "200", "102", 10*time.Second)
	f.balances.ReplaceAll([]domain.Balance{{Currency: "USD", Available: d("50")}})
	f.orders.ReplaceSnapshot([]domain.Order{restingOrder("1", domain.SideBuy, "100.00")})

	cmds, err := f.strategy.Evaluate(btcusd, now)
	require.NoError(t, err)
	require.Empty(t, cmds)

	// someone improved on us
	require.NoError(t, f.books.ApplyUpdate(btcusd, []domain.Level{level("100.05")}, nil))

	f.trader.On("CancelOrder", mock.Anything, "1").Return(nil).Once()
	require.NoError(t, f.strategy.Trade(context.Background(), btcusd))

	_, ok := f.orders.Get("1")
	require.True(t, ok, "ledger entry stays until the venue confirms the cancel")
}

func TestStrategy_CancelRules(t *testing.T) {
	tests := []struct {
		name  string
		order domain.Order
		want  bool
	}{
		{name: "buy at best bid", order: restingOrder("b", domain.SideBuy, "100"), want: false},
		{name: "buy below best bid", order: restingOrder("b", domain.SideBuy, "99.99"), want: true},
		// 102 * 0.98 = 99.96 < 100
		{name: "buy lost margin", order: restingOrder("b", domain.SideBuy, "100"), want: true},
		{name: "sell at best ask", order: restingOrder("s", domain.SideSell, "110"), want: false},
		{name: "sell above best ask", order: restingOrder("s", domain.SideSell, "110.01"), want: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cancelRate := "0.01"
			if i == 2 {
				cancelRate = "0.02"
			}
			f := newFixture(t, "0.5", cancelRate)
			f.market("100", "110", "102", 0)
			f.balances.ReplaceAll([]domain.Balance{{Currency: "EUR", Available: d("1")}})
			f.orders.ReplaceSnapshot([]domain.Order{tt.order})

			cmds, err := f.strategy.Evaluate(btcusd, now)
			require.NoError(t, err)
			if !tt.want {
				require.Empty(t, cmds)
				return
			}
			require.Len(t, cmds, 1)
			require.Equal(t, domain.ActionCancel, cmds[0].Action)
			require.Equal(t, tt.order.OrderID, cmds[0].OrderID)
		})
	}
}

func TestStrategy_SellLostMargin(t *testing.T) {
	f := newFixture(t, "0.5", "0.1")
	// 102 * 1.1 = 112.2 > 110
	f.market("100", "110", "102", 0)
	f.balances.ReplaceAll([]domain.Balance{{Currency: "EUR", Available: d("1")}})
	f.orders.ReplaceSnapshot([]domain.Order{restingOrder("s", domain.SideSell, "110")})

	cmds, err := f.strategy.Evaluate(btcusd, now)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	require.Equal(t, "s", cmds[0].OrderID)
}

func TestStrategy_OnlyActiveOrdersOfSymbolAreCancelled(t *testing.T) {
	f := newFixture(t, "0.5", "0.01")
	f.market("100.05", "110", "102", 0)
	f.balances.ReplaceAll([]domain.Balance{{Currency: "EUR", Available: d("1")}})

	filled := restingOrder("filled", domain.SideBuy, "100")
	filled.Status = domain.OrderStatusFilled
	partial := restingOrder("partial", domain.SideBuy, "100")
	partial.Status = domain.OrderStatusPartial
	other := restingOrder("other", domain.SideBuy, "100")
	other.Symbol = "ETH-USD"
	f.orders.ReplaceSnapshot([]domain.Order{filled, partial, other})

	cmds, err := f.strategy.Evaluate(btcusd, now)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	require.Equal(t, "partial", cmds[0].OrderID)
}

func TestStrategy_WithoutPriceRecord(t *testing.T) {
	f := newFixture(t, "0.01", "0.01")
	f.books.ApplySnapshot(btcusd, []domain.Level{level("100.05")}, []domain.Level{level("110")})
	f.balances.ReplaceAll([]domain.Balance{{Currency: "USD", Available: d("50")}})
	f.orders.ReplaceSnapshot([]domain.Order{
		restingOrder("outbid", domain.SideBuy, "100"),
		restingOrder("top", domain.SideBuy, "100.05"),
	})

	cmds, err := f.strategy.Evaluate(btcusd, now)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	require.Equal(t, domain.ActionCancel, cmds[0].Action)
	require.Equal(t, "outbid", cmds[0].OrderID)
}

func TestStrategy_MissingReferenceDataSkipsTick(t *testing.T) {
	t.Run("no balances", func(t *testing.T) {
		f := newFixture(t, "0.01", "0.01")
		f.market("100", "200", "102", 0)

		_, err := f.strategy.Evaluate(btcusd, now)
		require.ErrorIs(t, err, domain.ErrMissingReferenceData)
		require.NoError(t, f.strategy.Trade(context.Background(), btcusd))
	})

	t.Run("one sided book", func(t *testing.T) {
		f := newFixture(t, "0.01", "0.01")
		f.books.ApplySnapshot(btcusd, []domain.Level{level("100")}, nil)
		f.balances.ReplaceAll([]domain.Balance{{Currency: "USD", Available: d("50")}})

		_, err := f.strategy.Evaluate(btcusd, now)
		require.ErrorIs(t, err, domain.ErrMissingReferenceData)
		require.NoError(t, f.strategy.Trade(context.Background(), btcusd))
	})

	t.Run("unknown symbol", func(t *testing.T) {
		f := newFixture(t, "0.01", "0.01")
		f.balances.ReplaceAll([]domain.Balance{{Currency: "USD", Available: d("50")}})

		_, err := f.strategy.Evaluate("ETH-USD", now)
		require.ErrorIs(t, err, domain.ErrMissingReferenceData)
	})
}

func TestStrategy_TradeDispatchesAll(t *testing.T) {
	f := newFixture(t, "0.01", "0.01")
	f.market("100.00", "200", "102", 10*time.Second)
	f.balances.ReplaceAll([]domain.Balance{{Currency: "USD", Available: d("50")}})
	f.orders.ReplaceSnapshot([]domain.Order{restingOrder("old", domain.SideBuy, "99")})

	f.trader.On("NewLimitOrder", mock.Anything, btcusd, domain.TimeInForceGTC, domain.SideBuy,
		decimalMatcher("0.49845"), decimalMatcher("100.01")).Return(errors.New("socket closed")).Once()
	f.trader.On("CancelOrder", mock.Anything, "old").Return(nil).Once()

	err := f.strategy.Trade(context.Background(), btcusd)
	require.Error(t, err)
	require.Contains(t, err.Error(), "socket closed")
}

func TestNewStrategy_Validation(t *testing.T) {
	src := Sources{}
	_, err := NewStrategy(zap.NewNop(), Config{QuoteRate: d("1"), CancelRate: d("0.01")}, src, nil)
	require.Error(t, err)

	_, err = NewStrategy(zap.NewNop(), Config{QuoteRate: d("0.01"), CancelRate: d("-0.1")}, src, nil)
	require.Error(t, err)

	s, err := NewStrategy(zap.NewNop(), Config{QuoteRate: d("0.01"), CancelRate: d("0.01")}, src, nil)
	require.NoError(t, err)
	require.Equal(t, 180*time.Second, s.cfg.PlaceFreshness)
	require.Equal(t, 300*time.Second, s.cfg.CancelFreshness)
}
