package feed

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tobmaker/internal/domain"
	"github.com/vadiminshakov/tobmaker/pkg/decimals"
)

// candleFields timestamp, open, high, low, close.
const candleFields = 5

type envelope struct {
	Seqnum  int64   `json:"seqnum"`
	Channel Channel `json:"channel"`
	Event   Event   `json:"event"`
	Text    string  `json:"text"`
}

type wireSymbol struct {
	Status                 string `json:"status"`
	MinPriceIncrement      int64  `json:"min_price_increment"`
	MinPriceIncrementScale int32  `json:"min_price_increment_scale"`
	MinOrderSize           int64  `json:"min_order_size"`
	MinOrderSizeScale      int32  `json:"min_order_size_scale"`
	LotSize                int64  `json:"lot_size"`
	LotSizeScale           int32  `json:"lot_size_scale"`
}

type wireBalance struct {
	Currency  string          `json:"currency"`
	Available decimal.Decimal `json:"available"`
}

type wireLevel struct {
	Px  decimal.Decimal `json:"px"`
	Qty decimal.Decimal `json:"qty"`
	Num int             `json:"num"`
}

type wireOrder struct {
	OrderID      string          `json:"orderID"`
	ClOrdID      string          `json:"clOrdID"`
	Symbol       string          `json:"symbol"`
	Side         string          `json:"side"`
	OrdType      string          `json:"ordType"`
	TimeInForce  string          `json:"timeInForce"`
	OrdStatus    string          `json:"ordStatus"`
	Price        decimal.Decimal `json:"price"`
	OrderQty     decimal.Decimal `json:"orderQty"`
	LeavesQty    decimal.Decimal `json:"leavesQty"`
	CumQty       decimal.Decimal `json:"cumQty"`
	AvgPx        decimal.Decimal `json:"avgPx"`
	Text         string          `json:"text"`
	TransactTime string          `json:"transactTime"`
}

// Decode parses one raw frame into its typed message.
// Unrecognised channel/event combinations return ErrUnknownMessage.
func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(err, "decode envelope")
	}
	h := header{seqnum: env.Seqnum}

	switch env.Event {
	case EventSubscribed:
		return Subscribed{header: h, channel: env.Channel}, nil
	case EventUnsubscribed:
		return Unsubscribed{header: h, channel: env.Channel}, nil
	case EventRejected:
		return Rejected{header: h, channel: env.Channel, Text: env.Text}, nil
	}

	switch env.Channel {
	case ChannelSymbols:
		if env.Event == EventSnapshot {
			return decodeSymbols(h, raw)
		}
	case ChannelBalances:
		if env.Event == EventSnapshot {
			return decodeBalances(h, raw)
		}
	case ChannelPrices:
		return decodePrice(h, raw)
	case ChannelL2:
		if env.Event == EventSnapshot || env.Event == EventUpdated {
			return decodeBook(h, env.Event, raw)
		}
	case ChannelTrading:
		switch env.Event {
		case EventSnapshot:
			return decodeOrders(h, raw)
		case EventUpdated:
			return decodeOrderUpdate(h, raw)
		}
	}

	return nil, errors.Wrapf(domain.ErrUnknownMessage, "channel %q event %q", env.Channel, env.Event)
}

func decodeSymbols(h header, raw []byte) (Message, error) {
	var msg struct {
		Symbols map[string]wireSymbol `json:"symbols"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, errors.Wrap(err, "decode symbols snapshot")
	}

	metas := make(map[domain.Symbol]domain.SymbolMeta, len(msg.Symbols))
	for name, s := range msg.Symbols {
		metas[domain.Symbol(name)] = domain.SymbolMeta{
			Status:       domain.SymbolStatus(s.Status),
			MinIncrement: decimals.FromScaled(s.MinPriceIncrement, s.MinPriceIncrementScale),
			MinOrderSize: decimals.FromScaled(s.MinOrderSize, s.MinOrderSizeScale),
			LotSize:      decimals.FromScaled(s.LotSize, s.LotSizeScale),
		}
	}

	return SymbolsSnapshot{header: h, Symbols: metas}, nil
}

func decodeBalances(h header, raw []byte) (Message, error) {
	var msg struct {
		Balances []wireBalance `json:"balances"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, errors.Wrap(err, "decode balances snapshot")
	}

	balances := make([]domain.Balance, 0, len(msg.Balances))
	for _, b := range msg.Balances {
		balances = append(balances, domain.Balance{Currency: b.Currency, Available: b.Available})
	}

	return BalancesSnapshot{header: h, Balances: balances}, nil
}

func decodePrice(h header, raw []byte) (Message, error) {
	var msg struct {
		Symbol string        `json:"symbol"`
		Price  []json.Number `json:"price"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, errors.Wrap(err, "decode price")
	}
	if msg.Symbol == "" || len(msg.Price) < candleFields {
		return nil, errors.Errorf("decode price: expected symbol and %d candle fields, got %q and %d",
			candleFields, msg.Symbol, len(msg.Price))
	}

	ts, err := millis(msg.Price[0])
	if err != nil {
		return nil, errors.Wrap(err, "decode price timestamp")
	}
	ohlc := make([]decimal.Decimal, candleFields-1)
	for i := range ohlc {
		if ohlc[i], err = decimal.NewFromString(msg.Price[i+1].String()); err != nil {
			return nil, errors.Wrapf(err, "decode price field %d", i+1)
		}
	}

	return PriceUpdate{
		header: h,
		Symbol: domain.Symbol(msg.Symbol),
		Record: domain.PriceRecord{
			ObservedAt: time.UnixMilli(ts),
			Open:       ohlc[0],
			High:       ohlc[1],
			Low:        ohlc[2],
			Close:      ohlc[3],
			Last:       ohlc[3],
		},
	}, nil
}

func millis(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func decodeBook(h header, event Event, raw []byte) (Message, error) {
	var msg struct {
		Symbol string      `json:"symbol"`
		Bids   []wireLevel `json:"bids"`
		Asks   []wireLevel `json:"asks"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, errors.Wrapf(err, "decode l2 %s", event)
	}
	if msg.Symbol == "" {
		return nil, errors.Errorf("decode l2 %s: symbol is required", event)
	}

	symbol := domain.Symbol(msg.Symbol)
	bids, asks := levels(msg.Bids), levels(msg.Asks)
	if event == EventSnapshot {
		return BookSnapshot{header: h, Symbol: symbol, Bids: bids, Asks: asks}, nil
	}
	return BookUpdate{header: h, Symbol: symbol, Bids: bids, Asks: asks}, nil
}

func levels(wire []wireLevel) []domain.Level {
	out := make([]domain.Level, 0, len(wire))
	for _, l := range wire {
		out = append(out, domain.Level{Price: l.Px, Quantity: l.Qty, Count: l.Num})
	}
	return out
}

func decodeOrders(h header, raw []byte) (Message, error) {
	var msg struct {
		Orders []wireOrder `json:"orders"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, errors.Wrap(err, "decode orders snapshot")
	}

	orders := make([]domain.Order, 0, len(msg.Orders))
	for _, o := range msg.Orders {
		orders = append(orders, o.toDomain())
	}

	return OrdersSnapshot{header: h, Orders: orders}, nil
}

func decodeOrderUpdate(h header, raw []byte) (Message, error) {
	var o wireOrder
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, errors.Wrap(err, "decode order update")
	}
	if o.OrderID == "" {
		return nil, errors.New("decode order update: orderID is required")
	}

	return OrderUpdate{header: h, Order: o.toDomain()}, nil
}

func (o wireOrder) toDomain() domain.Order {
	order := domain.Order{
		OrderID:     o.OrderID,
		ClOrdID:     o.ClOrdID,
		Symbol:      domain.Symbol(o.Symbol),
		Side:        domain.Side(o.Side),
		OrdType:     o.OrdType,
		TimeInForce: domain.TimeInForce(o.TimeInForce),
		Status:      domain.OrderStatus(o.OrdStatus),
		Price:       o.Price,
		OrderQty:    o.OrderQty,
		LeavesQty:   o.LeavesQty,
		CumQty:      o.CumQty,
		AvgPx:       o.AvgPx,
		Text:        o.Text,
	}
	if ts, err := time.Parse(time.RFC3339Nano, o.TransactTime); err == nil {
		order.TransactTime = ts
	}
	return order
}
