package clients

import (
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tobmaker/internal/domain"
)

const (
	actionSubscribe      = "subscribe"
	actionNewOrderSingle = "NewOrderSingle"
	actionCancelOrder    = "CancelOrderRequest"

	ordTypeLimit = "limit"
)

// Granularities candle widths in seconds accepted by the prices channel.
var Granularities = []int{60, 300, 900, 3600, 21600, 86400}

// ValidGranularity reports whether the venue accepts the candle width.
func ValidGranularity(seconds int) bool {
	return slices.Contains(Granularities, seconds)
}

type subscribeRequest struct {
	Action      string `json:"action"`
	Channel     string `json:"channel"`
	Token       string `json:"token,omitempty"`
	Symbol      string `json:"symbol,omitempty"`
	Granularity int    `json:"granularity,omitempty"`
}

type newOrderSingleRequest struct {
	Action      string      `json:"action"`
	Channel     string      `json:"channel"`
	ClOrdID     string      `json:"clOrdID"`
	Symbol      string      `json:"symbol"`
	TimeInForce string      `json:"timeInForce"`
	Side        string      `json:"side"`
	OrderQty    json.Number `json:"orderQty"`
	OrdType     string      `json:"ordType"`
	Price       json.Number `json:"price"`
}

type cancelOrderRequest struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
	OrderID string `json:"orderID"`
}

func newOrderSingle(clOrdID string, cmd domain.Command) newOrderSingleRequest {
	return newOrderSingleRequest{
		Action:      actionNewOrderSingle,
		Channel:     channelTrading,
		ClOrdID:     clOrdID,
		Symbol:      cmd.Symbol.String(),
		TimeInForce: string(cmd.TimeInForce),
		Side:        string(cmd.Side),
		OrderQty:    number(cmd.Quantity),
		OrdType:     ordTypeLimit,
		Price:       number(cmd.Price),
	}
}

// number keeps the exact decimal digits while encoding a JSON number rather than a string.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
