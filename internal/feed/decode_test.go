package feed

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/tobmaker/internal/domain"
)

func TestDecode_Acks(t *testing.T) {
	msg, err := Decode([]byte(`{"seqnum":0,"event":"subscribed","channel":"auth"}`))
	require.NoError(t, err)
	require.Equal(t, Subscribed{channel: ChannelAuth}, msg)

	msg, err = Decode([]byte(`{"seqnum":4,"event":"rejected","channel":"trading","text":"Invalid symbol"}`))
	require.NoError(t, err)
	rejected, ok := msg.(Rejected)
	require.True(t, ok)
	require.Equal(t, ChannelTrading, rejected.Channel())
	require.Equal(t, "Invalid symbol", rejected.Text)
	require.Equal(t, int64(4), rejected.Seqnum())
}

func TestDecode_Symbols(t *testing.T) {
	raw := `{"seqnum":1,"event":"snapshot","channel":"symbols","symbols":{
		"BTC-USD":{"status":"open","min_price_increment":1,"min_price_increment_scale":2,
			"min_order_size":1,"min_order_size_scale":3,"lot_size":5,"lot_size_scale":8},
		"ETH-EUR":{"status":"halt","min_price_increment":10,"min_price_increment_scale":2,
			"min_order_size":50,"min_order_size_scale":2,"lot_size":0,"lot_size_scale":0}}}`

	msg, err := Decode([]byte(raw))
	require.NoError(t, err)
	snap, ok := msg.(SymbolsSnapshot)
	require.True(t, ok)
	require.Len(t, snap.Symbols, 2)

	btc := snap.Symbols["BTC-USD"]
	require.True(t, btc.IsOpen())
	require.True(t, btc.MinIncrement.Equal(decimal.RequireFromString("0.01")))
	require.True(t, btc.MinOrderSize.Equal(decimal.RequireFromString("0.001")))
	require.True(t, btc.LotSize.Equal(decimal.RequireFromString("0.00000005")))

	eth := snap.Symbols["ETH-EUR"]
	require.False(t, eth.IsOpen())
	require.True(t, eth.MinOrderSize.Equal(decimal.RequireFromString("0.5")))
}

func TestDecode_Balances(t *testing.T) {
	msg, err := Decode([]byte(`{"seqnum":2,"event":"snapshot","channel":"balances",
		"balances":[{"currency":"BTC","balance":0.00366963,"available":0.00266963},{"currency":"USD","available":50}]}`))
	require.NoError(t, err)

	snap, ok := msg.(BalancesSnapshot)
	require.True(t, ok)
	require.Len(t, snap.Balances, 2)
	require.Equal(t, "BTC", snap.Balances[0].Currency)
	require.True(t, snap.Balances[0].Available.Equal(decimal.RequireFromString("0.00266963")))
	require.True(t, snap.Balances[1].Available.Equal(decimal.NewFromInt(50)))
}

func TestDecode_Price(t *testing.T) {
	msg, err := Decode([]byte(`{"seqnum":3,"event":"updated","channel":"prices","symbol":"BTC-USD",
		"price":[1559039640000,8697.24,8700.98,8697.27,8700.98,0.431]}`))
	require.NoError(t, err)

	upd, ok := msg.(PriceUpdate)
	require.True(t, ok)
	require.Equal(t, domain.Symbol("BTC-USD"), upd.Symbol)
	require.True(t, upd.Record.ObservedAt.Equal(time.UnixMilli(1559039640000)))
	require.True(t, upd.Record.Open.Equal(decimal.RequireFromString("8697.24")))
	require.True(t, upd.Record.Low.Equal(decimal.RequireFromString("8697.27")))
	require.True(t, upd.Record.Last.Equal(decimal.RequireFromString("8700.98")))
	require.True(t, upd.Record.Last.Equal(upd.Record.Close))
}

func TestDecode_PriceRequiresCandle(t *testing.T) {
	_, err := Decode([]byte(`{"event":"updated","channel":"prices","symbol":"BTC-USD","price":[1559039640000,1]}`))
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrUnknownMessage)
}

func TestDecode_Book(t *testing.T) {
	msg, err := Decode([]byte(`{"seqnum":5,"event":"snapshot","channel":"l2","symbol":"BTC-USD",
		"bids":[{"px":8723.45,"qty":1.45,"num":1},{"px":8124.45,"qty":123.45,"num":1}],
		"asks":[{"px":8730.0,"qty":1.55,"num":2}]}`))
	require.NoError(t, err)
	snap, ok := msg.(BookSnapshot)
	require.True(t, ok)
	require.Len(t, snap.Bids, 2)
	require.Len(t, snap.Asks, 1)
	require.Equal(t, 2, snap.Asks[0].Count)

	msg, err = Decode([]byte(`{"seqnum":6,"event":"updated","channel":"l2","symbol":"BTC-USD",
		"bids":[{"px":8723.45,"qty":0,"num":0}],"asks":[]}`))
	require.NoError(t, err)
	upd, ok := msg.(BookUpdate)
	require.True(t, ok)
	require.Len(t, upd.Bids, 1)
	require.True(t, upd.Bids[0].IsEmpty())
}

func TestDecode_Trading(t *testing.T) {
	msg, err := Decode([]byte(`{"seqnum":7,"event":"snapshot","channel":"trading","orders":[
		{"orderID":"12891851020","clOrdID":"78502a08-c8f1-4eff-b","symbol":"BTC-USD","side":"sell",
		 "ordType":"limit","orderQty":5.0e-4,"leavesQty":5.0e-4,"cumQty":0.0,"avgPx":0.0,
		 "ordStatus":"open","timeInForce":"GTC","text":"New order","price":15000.0,
		 "transactTime":"2019-08-13T13:15:08.215Z"}]}`))
	require.NoError(t, err)
	snap, ok := msg.(OrdersSnapshot)
	require.True(t, ok)
	require.Len(t, snap.Orders, 1)

	o := snap.Orders[0]
	require.Equal(t, "12891851020", o.OrderID)
	require.Equal(t, domain.SideSell, o.Side)
	require.Equal(t, domain.OrderStatusOpen, o.Status)
	require.Equal(t, domain.TimeInForceGTC, o.TimeInForce)
	require.True(t, o.Price.Equal(decimal.NewFromInt(15000)))
	require.True(t, o.LeavesQty.Equal(decimal.RequireFromString("0.0005")))
	require.Equal(t, 2019, o.TransactTime.Year())

	msg, err = Decode([]byte(`{"seqnum":8,"event":"updated","channel":"trading","orderID":"12891851020","ordStatus":"cancelled"}`))
	require.NoError(t, err)
	upd, ok := msg.(OrderUpdate)
	require.True(t, ok)
	require.Equal(t, domain.OrderStatusCancelled, upd.Order.Status)
}

func TestDecode_OrderUpdateRequiresID(t *testing.T) {
	_, err := Decode([]byte(`{"event":"updated","channel":"trading","ordStatus":"open"}`))
	require.Error(t, err)
}

func TestDecode_Unknown(t *testing.T) {
	for _, raw := range []string{
		`{"event":"snapshot","channel":"heartbeat"}`,
		`{"event":"updated","channel":"symbols"}`,
		`{"event":"updated","channel":"balances"}`,
	} {
		_, err := Decode([]byte(raw))
		require.ErrorIs(t, err, domain.ErrUnknownMessage, raw)
	}

	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrUnknownMessage)
}
